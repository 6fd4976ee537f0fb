package policy

import (
	"strings"
	"time"

	"taskboard.com/taskboard/internal/constants"
	apperrors "taskboard.com/taskboard/internal/errors"
	model "taskboard.com/taskboard/internal/models"
)

// CreateTaskInput is a decoded create request.
type CreateTaskInput struct {
	Description string
	Title       string
	Priority    string
	DueDate     *string
	Tags        []string
	// OnBehalfOf is honoured for admins only.
	OnBehalfOf string
}

// NewTaskDraft validates input and returns the task to insert. ownerLookup
// is the user id whose existence the caller must confirm before inserting,
// or "" when the owner is the caller.
func NewTaskDraft(identity Identity, input CreateTaskInput, now time.Time) (task *model.Task, ownerLookup string, err error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, "", apperrors.ErrDescriptionRequired
	}

	ownerID := identity.UserID
	if identity.IsAdmin() && input.OnBehalfOf != "" {
		target, ok := ParseID(input.OnBehalfOf)
		if !ok {
			return nil, "", apperrors.ErrInvalidUserID
		}
		ownerID = target
		if target != identity.UserID {
			ownerLookup = target
		}
	}

	priority := constants.PriorityMedium
	if input.Priority != "" {
		priority = constants.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, "", apperrors.ErrInvalidPriority
		}
	}

	var dueDate *time.Time
	if input.DueDate != nil {
		dueDate, err = ParseDueDate(*input.DueDate)
		if err != nil {
			return nil, "", err
		}
	}

	creatorID := identity.UserID
	task = &model.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      constants.StatusPending,
		Priority:    priority,
		DueDate:     dueDate,
		Tags:        model.StringList(NormalizeTags(input.Tags)),
		OwnerID:     ownerID,
		CreatorID:   &creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return task, ownerLookup, nil
}

// TaskPatch is a decoded update request. Nil pointers and unset flags mean
// the field was absent from the request.
type TaskPatch struct {
	Description *string
	Status      *string
	Title       *string
	Priority    *string

	DueDateSet bool
	DueDate    *string

	TagsSet bool
	Tags    []string
}

func (p TaskPatch) Empty() bool {
	return p.Description == nil && p.Status == nil && p.Title == nil &&
		p.Priority == nil && !p.DueDateSet && !p.TagsSet
}

// TaskChanges is a validated partial update.
type TaskChanges struct {
	Description *string
	Status      *constants.TaskStatus
	Title       *string
	Priority    *constants.TaskPriority

	DueDateSet bool
	DueDate    *time.Time

	TagsSet bool
	Tags    model.StringList
}

// NewTaskChanges validates patch. It never touches storage, so an empty or
// invalid patch is rejected before any lookup happens.
func NewTaskChanges(patch TaskPatch) (TaskChanges, error) {
	if patch.Empty() {
		return TaskChanges{}, apperrors.ErrNoUpdateData
	}

	var changes TaskChanges

	if patch.Status != nil {
		status := constants.TaskStatus(*patch.Status)
		if !status.Valid() {
			return TaskChanges{}, apperrors.ErrInvalidStatus
		}
		changes.Status = &status
	}

	if patch.Priority != nil {
		priority := constants.TaskPriority(*patch.Priority)
		if !priority.Valid() {
			return TaskChanges{}, apperrors.ErrInvalidPriority
		}
		changes.Priority = &priority
	}

	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return TaskChanges{}, apperrors.ErrDescriptionRequired
		}
		description := *patch.Description
		changes.Description = &description
	}

	if patch.Title != nil {
		title := *patch.Title
		changes.Title = &title
	}

	if patch.DueDateSet {
		changes.DueDateSet = true
		if patch.DueDate != nil {
			dueDate, err := ParseDueDate(*patch.DueDate)
			if err != nil {
				return TaskChanges{}, err
			}
			changes.DueDate = dueDate
		}
	}

	if patch.TagsSet {
		changes.TagsSet = true
		changes.Tags = model.StringList(NormalizeTags(patch.Tags))
	}

	return changes, nil
}

// Columns maps the changes onto stored field names. Only present fields are
// included; updated_at is always refreshed.
func (c TaskChanges) Columns(now time.Time) map[string]any {
	cols := map[string]any{"updated_at": now}
	if c.Description != nil {
		cols["description"] = *c.Description
	}
	if c.Status != nil {
		cols["status"] = string(*c.Status)
	}
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.Priority != nil {
		cols["priority"] = string(*c.Priority)
	}
	if c.DueDateSet {
		if c.DueDate == nil {
			cols["due_date"] = nil
		} else {
			cols["due_date"] = *c.DueDate
		}
	}
	if c.TagsSet {
		cols["tags"] = c.Tags
	}
	return cols
}

// Apply writes the changes onto task.
func (c TaskChanges) Apply(task *model.Task, now time.Time) {
	if c.Description != nil {
		task.Description = *c.Description
	}
	if c.Status != nil {
		task.Status = *c.Status
	}
	if c.Title != nil {
		task.Title = *c.Title
	}
	if c.Priority != nil {
		task.Priority = *c.Priority
	}
	if c.DueDateSet {
		task.DueDate = c.DueDate
	}
	if c.TagsSet {
		task.Tags = c.Tags
	}
	task.UpdatedAt = now
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDueDate parses a due date. An empty or blank value clears the date.
func ParseDueDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.ErrInvalidDueDate
}
