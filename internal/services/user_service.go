package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	apperrors "taskboard.com/taskboard/internal/errors"
	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
	repository "taskboard.com/taskboard/internal/repositories"
	"taskboard.com/taskboard/internal/storage"
)

type UserService struct {
	store   repository.Store
	avatars storage.AvatarStore
	log     *logrus.Logger
}

func NewUserService(store repository.Store, avatars storage.AvatarStore, log *logrus.Logger) *UserService {
	return &UserService{
		store:   store,
		avatars: avatars,
		log:     log,
	}
}

func (s *UserService) ListUsers(ctx context.Context, identity policy.Identity) ([]model.User, error) {
	if err := policy.AuthorizeAdmin(identity); err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx)
}

func (s *UserService) ChangeRole(ctx context.Context, identity policy.Identity, rawID, rawRole string) (*model.User, error) {
	change, err := policy.NewRoleChange(identity, rawID, rawRole)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users().UpdateRole(ctx, change.UserID, change.Role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user and every task they own, are assigned to or
// created. It returns the number of tasks removed.
func (s *UserService) DeleteUser(ctx context.Context, identity policy.Identity, rawID string) (int64, error) {
	id, err := policy.UserDeletionTarget(identity, rawID)
	if err != nil {
		return 0, err
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperrors.ErrUserNotFound
		}
		return 0, err
	}

	var removed int64
	err = s.store.WithinTx(ctx, func(tasks repository.TaskRepository, users repository.UserRepository) error {
		n, err := tasks.DeleteByParticipant(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return users.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, apperrors.ErrUserNotFound
		}
		return 0, err
	}

	if user.Avatar != nil {
		releaseAvatar(ctx, s.avatars, s.log, *user.Avatar)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":       id,
		"deleted_by":    identity.UserID,
		"tasks_removed": removed,
	}).Info("user deleted")

	return removed, nil
}

// releaseAvatar deletes a stored avatar file. Failures are logged only; the
// orphan sweeper retries later.
func releaseAvatar(ctx context.Context, avatars storage.AvatarStore, log *logrus.Logger, ref string) {
	if ref == "" {
		return
	}
	if err := avatars.Delete(ctx, ref); err != nil {
		log.WithError(err).WithField("avatar", ref).Warn("failed to release avatar file")
	}
}
