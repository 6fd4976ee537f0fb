package policy

import (
	"taskboard.com/taskboard/internal/constants"
	model "taskboard.com/taskboard/internal/models"
)

// TaskFilter is the conjunction of every clause a task must satisfy to be
// returned. Zero-valued fields impose no restriction. Repositories must AND
// all non-empty clauses.
type TaskFilter struct {
	// ParticipantID restricts to tasks owned by or assigned to this user.
	ParticipantID string
	// Search is a case-insensitive substring of the description.
	Search   string
	Status   constants.TaskStatus
	Priority constants.TaskPriority
	// Tags matches tasks carrying at least one of these tags.
	Tags []string
}

// VisibilityFilter is the base predicate for everything identity may see.
func VisibilityFilter(identity Identity) TaskFilter {
	if identity.IsAdmin() {
		return TaskFilter{}
	}
	return TaskFilter{ParticipantID: identity.UserID}
}

// TaskListFilter narrows the visibility filter with the caller's list
// criteria. The participant clause always comes from the identity.
func TaskListFilter(identity Identity, query ListQuery) TaskFilter {
	filter := VisibilityFilter(identity)
	filter.Search = query.Search
	filter.Status = query.Status
	filter.Priority = query.Priority
	if len(query.Tags) > 0 {
		filter.Tags = append([]string(nil), query.Tags...)
	}
	return filter
}

// Matches evaluates the filter against a single task in memory. The stores
// evaluate the same predicate server side; this is the reference semantics.
func (f TaskFilter) Matches(task *model.Task) bool {
	if f.ParticipantID != "" && !task.IsOwnedBy(f.ParticipantID) && !task.IsAssignedTo(f.ParticipantID) {
		return false
	}
	if f.Search != "" && !containsFold(task.Description, f.Search) {
		return false
	}
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	if len(f.Tags) > 0 && !intersects(task.Tags, f.Tags) {
		return false
	}
	return true
}

// CanView reports whether identity may read task.
func CanView(identity Identity, task *model.Task) bool {
	if identity.IsAdmin() {
		return true
	}
	return task.IsOwnedBy(identity.UserID) || task.IsAssignedTo(identity.UserID)
}

func intersects(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
