package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownRef = errors.New("reference does not belong to this store")

// StoredFile is a file currently held by the store.
type StoredFile struct {
	Ref     string
	ModTime time.Time
}

type AvatarStore interface {
	// Save writes r under a fresh name with extension ext and returns the
	// public reference.
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
	List(ctx context.Context) ([]StoredFile, error)
}

// LocalAvatarStore keeps avatars in a directory served under urlPrefix.
type LocalAvatarStore struct {
	dir       string
	urlPrefix string
}

func NewLocalAvatarStore(dir, urlPrefix string) (*LocalAvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar directory: %w", err)
	}
	return &LocalAvatarStore{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

func (s *LocalAvatarStore) Dir() string {
	return s.dir
}

func (s *LocalAvatarStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	name := uuid.NewString() + strings.ToLower(ext)
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create avatar file: %w", err)
	}

	if _, err := io.Copy(f, readerWithContext(ctx, r)); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("close avatar file: %w", err)
	}

	return s.urlPrefix + "/" + name, nil
}

// Delete removes the file behind ref. Missing files are not an error.
func (s *LocalAvatarStore) Delete(_ context.Context, ref string) error {
	name, err := s.fileName(ref)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove avatar file: %w", err)
	}
	return nil
}

func (s *LocalAvatarStore) List(_ context.Context) ([]StoredFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read avatar directory: %w", err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, StoredFile{
			Ref:     s.urlPrefix + "/" + entry.Name(),
			ModTime: info.ModTime(),
		})
	}
	return files, nil
}

// fileName maps a public reference back to a file in dir. Only references
// under urlPrefix naming a plain file are accepted.
func (s *LocalAvatarStore) fileName(ref string) (string, error) {
	if !strings.HasPrefix(ref, s.urlPrefix+"/") {
		return "", ErrUnknownRef
	}
	name := path.Base(ref)
	if name == "." || name == "/" || name == ".." || strings.TrimPrefix(ref, s.urlPrefix+"/") != name {
		return "", ErrUnknownRef
	}
	return name, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
