package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard.com/taskboard/internal/auth"
	"taskboard.com/taskboard/internal/constants"
	applog "taskboard.com/taskboard/internal/logger"
	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
	repository "taskboard.com/taskboard/internal/repositories"
	"taskboard.com/taskboard/internal/storage"
)

type testEnv struct {
	store    *repository.GormStore
	avatars  *storage.LocalAvatarStore
	tasks    *TaskService
	users    *UserService
	profiles *ProfileService
	auth     *AuthService
}

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

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := repository.NewGormStore(setupTestDB(t))
	avatars, err := storage.NewLocalAvatarStore(t.TempDir(), "/uploads/avatars")
	if err != nil {
		t.Fatalf("avatar store: %v", err)
	}
	log := applog.Discard()

	return &testEnv{
		store:    store,
		avatars:  avatars,
		tasks:    NewTaskService(store),
		users:    NewUserService(store, avatars, log),
		profiles: NewProfileService(store, avatars, 1024, log),
		auth:     NewAuthService(store, auth.NewTokenIssuer("test-secret", time.Hour), log),
	}
}

func (e *testEnv) addUser(t *testing.T, name string, role constants.Role) policy.Identity {
	t.Helper()

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return policy.Identity{UserID: user.ID, Role: role}
}

func (e *testEnv) addTask(t *testing.T, owner policy.Identity, description string) *model.Task {
	t.Helper()

	view, err := e.tasks.CreateTask(context.Background(), owner, policy.CreateTaskInput{Description: description})
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return &view.Task
}

func (e *testEnv) assign(t *testing.T, admin policy.Identity, task *model.Task, assignee policy.Identity) {
	t.Helper()

	if _, err := e.tasks.AssignTask(context.Background(), admin, task.ID, assignee.UserID); err != nil {
		t.Fatalf("failed to assign task: %v", err)
	}
}

func strPtr(s string) *string {
	return &s
}
