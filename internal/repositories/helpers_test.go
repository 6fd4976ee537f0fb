package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard.com/taskboard/internal/constants"
	model "taskboard.com/taskboard/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Task{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func seedUser(t *testing.T, users UserRepository, name string) *model.User {
	t.Helper()

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         constants.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

type taskOption func(*model.Task)

func withAssignee(id string) taskOption {
	return func(task *model.Task) { task.AssigneeID = &id }
}

func withCreator(id string) taskOption {
	return func(task *model.Task) { task.CreatorID = &id }
}

func withTags(tags ...string) taskOption {
	return func(task *model.Task) { task.Tags = tags }
}

func withStatus(status constants.TaskStatus) taskOption {
	return func(task *model.Task) { task.Status = status }
}

func withCreatedAt(at time.Time) taskOption {
	return func(task *model.Task) {
		task.CreatedAt = at
		task.UpdatedAt = at
	}
}

func seedTask(t *testing.T, tasks TaskRepository, ownerID, description string, opts ...taskOption) *model.Task {
	t.Helper()

	now := time.Now().UTC()
	task := &model.Task{
		ID:          uuid.NewString(),
		Description: description,
		Status:      constants.StatusPending,
		Priority:    constants.PriorityMedium,
		OwnerID:     ownerID,
		CreatorID:   &ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, opt := range opts {
		opt(task)
	}
	if err := tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}
