package repository

import (
	"context"

	"gorm.io/gorm"
)

type GormStore struct {
	db    *gorm.DB
	tasks *GormTaskRepository
	users *GormUserRepository
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db:    db,
		tasks: NewTaskRepository(db),
		users: NewUserRepository(db),
	}
}

func (s *GormStore) Tasks() TaskRepository { return s.tasks }

func (s *GormStore) Users() UserRepository { return s.users }

func (s *GormStore) WithinTx(ctx context.Context, fn func(tasks TaskRepository, users UserRepository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewTaskRepository(tx), NewUserRepository(tx))
	})
}

func (s *GormStore) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
