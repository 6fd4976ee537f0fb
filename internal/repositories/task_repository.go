package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/policy"
)

type GormTaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.Tags == nil {
		task.Tags = model.StringList{}
	}
	task.SearchText = searchFold(task.Description)
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

func (r *GormTaskRepository) List(ctx context.Context, filter policy.TaskFilter, offset, limit int) ([]model.Task, int64, error) {
	var total int64
	if err := applyTaskFilter(r.db.WithContext(ctx).Model(&model.Task{}), filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	tasks := []model.Task{}
	if total == 0 {
		return tasks, 0, nil
	}

	err := applyTaskFilter(r.db.WithContext(ctx).Model(&model.Task{}), filter).
		Order("created_at desc").Order("id desc").
		Offset(offset).Limit(limit).
		Find(&tasks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, total, nil
}

func applyTaskFilter(query *gorm.DB, filter policy.TaskFilter) *gorm.DB {
	if filter.ParticipantID != "" {
		query = query.Where("(owner_id = ? OR assignee_id = ?)", filter.ParticipantID, filter.ParticipantID)
	}
	if filter.Search != "" {
		query = query.Where("search_text LIKE ? ESCAPE '\\'", "%"+escapeLike(searchFold(filter.Search))+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", string(filter.Priority))
	}
	if len(filter.Tags) > 0 {
		query = query.Where("EXISTS (SELECT 1 FROM json_each(tasks.tags) WHERE json_each.value IN ?)", filter.Tags)
	}
	return query
}

// searchFold lowercases with Unicode rules. SQLite's LOWER and LIKE only
// fold ASCII, so search runs against a column folded here instead.
func searchFold(s string) string {
	return strings.ToLower(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *GormTaskRepository) Update(ctx context.Context, id string, changes policy.TaskChanges) (*model.Task, error) {
	return r.updateColumns(ctx, id, changes.Columns(time.Now().UTC()))
}

func (r *GormTaskRepository) SetAssignee(ctx context.Context, id, assigneeID string) (*model.Task, error) {
	return r.updateColumns(ctx, id, map[string]any{
		"assignee_id": assigneeID,
		"updated_at":  time.Now().UTC(),
	})
}

func (r *GormTaskRepository) updateColumns(ctx context.Context, id string, cols map[string]any) (*model.Task, error) {
	if description, ok := cols["description"].(string); ok {
		cols["search_text"] = searchFold(description)
	}
	res := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTaskRepository) DeleteByParticipant(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("owner_id = ? OR assignee_id = ? OR creator_id = ?", userID, userID, userID).
		Delete(&model.Task{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete tasks of user: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// BackfillSearchText fills the search column of rows written before it
// existed and returns how many rows were updated.
func (r *GormTaskRepository) BackfillSearchText(ctx context.Context) (int64, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Select("id", "description").
		Where("search_text = '' AND description <> ''").
		Find(&tasks).Error
	if err != nil {
		return 0, fmt.Errorf("find tasks to backfill: %w", err)
	}

	for _, task := range tasks {
		err := r.db.WithContext(ctx).Model(&model.Task{}).
			Where("id = ?", task.ID).
			Update("search_text", searchFold(task.Description)).Error
		if err != nil {
			return 0, fmt.Errorf("backfill task %s: %w", task.ID, err)
		}
	}
	return int64(len(tasks)), nil
}
