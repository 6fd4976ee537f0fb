package repository

import (
	"context"
	"errors"

	"taskboard.com/taskboard/internal/constants"
	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	// List returns one page of tasks matching filter, newest first, and the
	// total number of matches.
	List(ctx context.Context, filter policy.TaskFilter, offset, limit int) ([]model.Task, int64, error)
	Update(ctx context.Context, id string, changes policy.TaskChanges) (*model.Task, error)
	SetAssignee(ctx context.Context, id, assigneeID string) (*model.Task, error)
	Delete(ctx context.Context, id string) error
	// DeleteByParticipant removes every task the user owns, is assigned to or
	// created.
	DeleteByParticipant(ctx context.Context, userID string) (int64, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id string, role constants.Role) (*model.User, error)
	UpdateAvatar(ctx context.Context, id string, avatar *string) (*model.User, error)
	Delete(ctx context.Context, id string) error
	AvatarRefs(ctx context.Context) ([]string, error)
}

// Store groups the repositories over one backend.
type Store interface {
	Tasks() TaskRepository
	Users() UserRepository
	// WithinTx runs fn against repositories bound to a single unit of work.
	// On the SQL backend this is a transaction; see the document backend for
	// its weaker guarantee.
	WithinTx(ctx context.Context, fn func(tasks TaskRepository, users UserRepository) error) error
	Close(ctx context.Context) error
}
