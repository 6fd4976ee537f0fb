package services

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "taskboard.com/taskboard/internal/errors"
	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
	repository "taskboard.com/taskboard/internal/repositories"
	"taskboard.com/taskboard/internal/storage"
)

// AvatarUpload is a received avatar file.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ProfileService struct {
	store    repository.Store
	avatars  storage.AvatarStore
	maxBytes int64
	log      *logrus.Logger
}

func NewProfileService(store repository.Store, avatars storage.AvatarStore, maxBytes int64, log *logrus.Logger) *ProfileService {
	return &ProfileService{
		store:    store,
		avatars:  avatars,
		maxBytes: maxBytes,
		log:      log,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, identity policy.Identity) (*model.User, error) {
	return s.self(ctx, identity)
}

func (s *ProfileService) UpdateAvatar(ctx context.Context, identity policy.Identity, upload AvatarUpload) (*model.User, error) {
	if upload.Body == nil {
		return nil, apperrors.ErrAvatarRequired
	}
	mediaType, _, err := mime.ParseMediaType(upload.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, apperrors.ErrAvatarNotImage
	}
	if upload.Size > s.maxBytes {
		return nil, apperrors.ErrAvatarTooLarge
	}

	current, err := s.self(ctx, identity)
	if err != nil {
		return nil, err
	}

	body := &limitedReader{r: upload.Body, remaining: s.maxBytes}
	ref, err := s.avatars.Save(ctx, avatarExt(upload.Filename, mediaType), body)
	if err != nil {
		if errors.Is(err, errAvatarTooLarge) {
			return nil, apperrors.ErrAvatarTooLarge
		}
		return nil, err
	}

	user, err := s.store.Users().UpdateAvatar(ctx, current.ID, &ref)
	if err != nil {
		releaseAvatar(ctx, s.avatars, s.log, ref)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if current.Avatar != nil && *current.Avatar != ref {
		releaseAvatar(ctx, s.avatars, s.log, *current.Avatar)
	}
	return user, nil
}

func (s *ProfileService) RemoveAvatar(ctx context.Context, identity policy.Identity) (*model.User, error) {
	current, err := s.self(ctx, identity)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users().UpdateAvatar(ctx, current.ID, nil)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}

	if current.Avatar != nil {
		releaseAvatar(ctx, s.avatars, s.log, *current.Avatar)
	}
	return user, nil
}

func (s *ProfileService) self(ctx context.Context, identity policy.Identity) (*model.User, error) {
	user, err := s.store.Users().FindByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

func avatarExt(filename, mediaType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); len(ext) > 1 && len(ext) <= 6 && isAlnum(ext[1:]) {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

var errAvatarTooLarge = errors.New("avatar exceeds size limit")

// limitedReader fails once more than remaining bytes are read, so a body
// that lied about its size is rejected instead of truncated.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errAvatarTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errAvatarTooLarge
	}
	return n, err
}
