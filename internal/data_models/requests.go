package dto

import "taskboard.com/taskboard/internal/policy"

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateTaskRequest struct {
	Description string         `json:"description"`
	Title       string         `json:"title"`
	Priority    string         `json:"priority"`
	DueDate     OptionalString `json:"dueDate"`
	Tags        Tags           `json:"tags"`
	UserID      string         `json:"userId"`
}

func (r CreateTaskRequest) Input() policy.CreateTaskInput {
	return policy.CreateTaskInput{
		Description: r.Description,
		Title:       r.Title,
		Priority:    r.Priority,
		DueDate:     r.DueDate.Value,
		Tags:        r.Tags.Values,
		OnBehalfOf:  r.UserID,
	}
}

type UpdateTaskRequest struct {
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Title       *string        `json:"title"`
	Priority    *string        `json:"priority"`
	DueDate     OptionalString `json:"dueDate"`
	Tags        Tags           `json:"tags"`
}

func (r UpdateTaskRequest) Patch() policy.TaskPatch {
	return policy.TaskPatch{
		Description: r.Description,
		Status:      r.Status,
		Title:       r.Title,
		Priority:    r.Priority,
		DueDateSet:  r.DueDate.Set,
		DueDate:     r.DueDate.Value,
		TagsSet:     r.Tags.Set,
		Tags:        r.Tags.Values,
	}
}

type AssignTaskRequest struct {
	UserID string `json:"userId"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}
