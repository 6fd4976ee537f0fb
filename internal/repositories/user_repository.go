package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskboard.com/taskboard/internal/constants"
	model "taskboard.com/taskboard/internal/models"
)

type GormUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *GormUserRepository) findOne(ctx context.Context, cond string, arg any) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	users := []model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *GormUserRepository) UpdateRole(ctx context.Context, id string, role constants.Role) (*model.User, error) {
	return r.updateColumns(ctx, id, map[string]any{"role": string(role)})
}

func (r *GormUserRepository) UpdateAvatar(ctx context.Context, id string, avatar *string) (*model.User, error) {
	var value any
	if avatar != nil {
		value = *avatar
	}
	return r.updateColumns(ctx, id, map[string]any{"avatar": value})
}

func (r *GormUserRepository) updateColumns(ctx context.Context, id string, cols map[string]any) (*model.User, error) {
	cols["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *GormUserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) AvatarRefs(ctx context.Context) ([]string, error) {
	refs := []string{}
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("avatar IS NOT NULL AND avatar <> ''").
		Pluck("avatar", &refs).Error
	if err != nil {
		return nil, fmt.Errorf("list avatars: %w", err)
	}
	return refs, nil
}
