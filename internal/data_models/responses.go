package dto

import (
	"time"

	model "taskboard.com/taskboard/internal/models"
	"taskboard.com/taskboard/internal/services"
)

// Ids are emitted as "_id" to stay compatible with the existing frontend.

type UserRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UserResponse struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type TaskResponse struct {
	ID          string     `json:"_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
	User        *UserRef   `json:"user"`
	Creator     *UserRef   `json:"creator"`
	Assignee    *UserRef   `json:"assignee"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type TaskEnvelope struct {
	Task TaskResponse `json:"task"`
	Msg  string       `json:"msg"`
}

type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
	Msg   string         `json:"msg"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
	Msg  string       `json:"msg"`
}

type UserListResponse struct {
	Users []UserResponse `json:"users"`
	Msg   string         `json:"msg"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
	Msg   string       `json:"msg"`
}

type DeleteUserResponse struct {
	TasksRemoved int64  `json:"tasksRemoved"`
	Msg          string `json:"msg"`
}

type MessageResponse struct {
	Msg string `json:"msg"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func NewUserResponses(users []model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}

func NewTaskResponse(v *services.TaskView) TaskResponse {
	tags := []string(v.Task.Tags)
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:          v.Task.ID,
		Title:       v.Task.Title,
		Description: v.Task.Description,
		Status:      string(v.Task.Status),
		Priority:    string(v.Task.Priority),
		DueDate:     v.Task.DueDate,
		Tags:        tags,
		User:        newUserRef(v.Owner),
		Creator:     newUserRef(v.Creator),
		Assignee:    newUserRef(v.Assignee),
		CreatedAt:   v.Task.CreatedAt,
		UpdatedAt:   v.Task.UpdatedAt,
	}
}

func NewTaskListResponse(page *services.TaskPage) TaskListResponse {
	tasks := make([]TaskResponse, 0, len(page.Tasks))
	for i := range page.Tasks {
		tasks = append(tasks, NewTaskResponse(&page.Tasks[i]))
	}
	return TaskListResponse{
		Tasks: tasks,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
		Msg:   "Tasks found successfully",
	}
}

func newUserRef(u *model.User) *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
