package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	repository "taskboard.com/taskboard/internal/repositories"
	"taskboard.com/taskboard/internal/storage"
)

// avatarGracePeriod protects files that were just saved but whose user
// record is not updated yet.
const avatarGracePeriod = 10 * time.Minute

// AvatarSweeper periodically deletes stored avatar files that no user
// references any more.
type AvatarSweeper struct {
	store   repository.Store
	avatars storage.AvatarStore
	log     *logrus.Logger
	cron    *cron.Cron
	now     func() time.Time
}

func NewAvatarSweeper(store repository.Store, avatars storage.AvatarStore, log *logrus.Logger) *AvatarSweeper {
	return &AvatarSweeper{
		store:   store,
		avatars: avatars,
		log:     log,
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		now:     time.Now,
	}
}

// Start schedules the sweep every interval.
func (s *AvatarSweeper) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("schedule avatar sweep: %w", err)
	}
	s.cron.Start()
	s.log.WithField("interval", interval.String()).Info("avatar sweeper started")
	return nil
}

// Stop waits for a running sweep to finish or ctx to expire.
func (s *AvatarSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("avatar sweeper stopped")
	case <-ctx.Done():
		s.log.Warn("avatar sweeper shutdown timed out")
	}
}

func (s *AvatarSweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := s.Sweep(ctx)
	if err != nil {
		s.log.WithError(err).Error("avatar sweep failed")
		return
	}
	if removed > 0 {
		s.log.WithField("removed", removed).Info("orphan avatars removed")
	}
}

// Sweep removes unreferenced files older than the grace period and returns
// how many were removed.
func (s *AvatarSweeper) Sweep(ctx context.Context) (int, error) {
	refs, err := s.store.Users().AvatarRefs(ctx)
	if err != nil {
		return 0, err
	}
	inUse := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		inUse[ref] = struct{}{}
	}

	files, err := s.avatars.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-avatarGracePeriod)
	removed := 0
	for _, file := range files {
		if _, ok := inUse[file.Ref]; ok || file.ModTime.After(cutoff) {
			continue
		}
		if err := s.avatars.Delete(ctx, file.Ref); err != nil {
			s.log.WithError(err).WithField("avatar", file.Ref).Warn("failed to remove orphan avatar")
			continue
		}
		removed++
	}
	return removed, nil
}
