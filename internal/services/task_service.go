package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "taskboard.com/taskboard/internal/errors"
	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
	repository "taskboard.com/taskboard/internal/repositories"
)

// TaskView is a task with its user references resolved. A reference whose
// user no longer exists is left nil.
type TaskView struct {
	Task     model.Task
	Owner    *model.User
	Creator  *model.User
	Assignee *model.User
}

type TaskPage struct {
	Tasks []TaskView
	Total int64
	Page  int
	Limit int
}

type TaskService struct {
	store repository.Store
	now   func() time.Time
}

func NewTaskService(store repository.Store) *TaskService {
	return &TaskService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskService) ListTasks(ctx context.Context, identity policy.Identity, params policy.ListParams) (*TaskPage, error) {
	query, err := policy.NewListQuery(params)
	if err != nil {
		return nil, err
	}

	filter := policy.TaskListFilter(identity, query)
	tasks, total, err := s.store.Tasks().List(ctx, filter, query.Offset(), query.Limit)
	if err != nil {
		return nil, err
	}

	views, err := s.resolve(ctx, tasks...)
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Tasks: views,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

func (s *TaskService) GetTask(ctx context.Context, identity policy.Identity, rawID string) (*TaskView, error) {
	task, err := s.findTask(ctx, rawID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeRead(identity, task); err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, task)
}

func (s *TaskService) CreateTask(ctx context.Context, identity policy.Identity, input policy.CreateTaskInput) (*TaskView, error) {
	task, ownerLookup, err := policy.NewTaskDraft(identity, input, s.now())
	if err != nil {
		return nil, err
	}

	if ownerLookup != "" {
		if _, err := s.store.Users().FindByID(ctx, ownerLookup); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.ErrTargetUserNotFound
			}
			return nil, err
		}
	}

	task.ID = uuid.NewString()
	if err := s.store.Tasks().Create(ctx, task); err != nil {
		return nil, err
	}

	return s.resolveOne(ctx, task)
}

func (s *TaskService) UpdateTask(ctx context.Context, identity policy.Identity, rawID string, patch policy.TaskPatch) (*TaskView, error) {
	id, ok := policy.ParseID(rawID)
	if !ok {
		return nil, apperrors.ErrInvalidTaskID
	}

	changes, err := policy.NewTaskChanges(patch)
	if err != nil {
		return nil, err
	}

	task, err := s.lookupTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeUpdate(identity, task); err != nil {
		return nil, err
	}

	updated, err := s.store.Tasks().Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}

	return s.resolveOne(ctx, updated)
}

func (s *TaskService) DeleteTask(ctx context.Context, identity policy.Identity, rawID string) error {
	task, err := s.findTask(ctx, rawID)
	if err != nil {
		return err
	}
	if err := policy.AuthorizeDelete(identity, task); err != nil {
		return err
	}

	if err := s.store.Tasks().Delete(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) AssignTask(ctx context.Context, identity policy.Identity, rawTaskID, rawUserID string) (*TaskView, error) {
	if err := policy.AuthorizeAssign(identity); err != nil {
		return nil, err
	}

	taskID, ok := policy.ParseID(rawTaskID)
	if !ok {
		return nil, apperrors.ErrInvalidTaskID
	}
	userID, ok := policy.ParseID(rawUserID)
	if !ok {
		return nil, apperrors.ErrInvalidUserID
	}

	if _, err := s.lookupTask(ctx, taskID); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().FindByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrAssigneeNotFound
		}
		return nil, err
	}

	updated, err := s.store.Tasks().SetAssignee(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}

	return s.resolveOne(ctx, updated)
}

func (s *TaskService) findTask(ctx context.Context, rawID string) (*model.Task, error) {
	id, ok := policy.ParseID(rawID)
	if !ok {
		return nil, apperrors.ErrInvalidTaskID
	}
	return s.lookupTask(ctx, id)
}

func (s *TaskService) lookupTask(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *TaskService) resolveOne(ctx context.Context, task *model.Task) (*TaskView, error) {
	views, err := s.resolve(ctx, *task)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// resolve loads every referenced user with a single query.
func (s *TaskService) resolve(ctx context.Context, tasks ...model.Task) ([]TaskView, error) {
	views := make([]TaskView, 0, len(tasks))
	if len(tasks) == 0 {
		return views, nil
	}

	seen := map[string]struct{}{}
	var ids []string
	for i := range tasks {
		for _, id := range tasks[i].ParticipantIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	users, err := s.store.Users().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*model.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	lookup := func(id *string) *model.User {
		if id == nil {
			return nil
		}
		return byID[*id]
	}

	for _, task := range tasks {
		views = append(views, TaskView{
			Task:     task,
			Owner:    byID[task.OwnerID],
			Creator:  lookup(task.CreatorID),
			Assignee: lookup(task.AssigneeID),
		})
	}
	return views, nil
}
