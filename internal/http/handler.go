package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	dto "taskboard.com/taskboard/internal/data_models"
	apperrors "taskboard.com/taskboard/internal/errors"
	middleware "taskboard.com/taskboard/internal/http/middlewares"
	"taskboard.com/taskboard/internal/http/validators"
	"taskboard.com/taskboard/internal/policy"
	"taskboard.com/taskboard/internal/services"
)

type Handler struct {
	taskService    *services.TaskService
	userService    *services.UserService
	profileService *services.ProfileService
	authService    *services.AuthService
}

func NewHandler(
	taskService *services.TaskService,
	userService *services.UserService,
	profileService *services.ProfileService,
	authService *services.AuthService,
) *Handler {
	return &Handler{
		taskService:    taskService,
		userService:    userService,
		profileService: profileService,
		authService:    authService,
	}
}

func (h *Handler) ListTasks(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	page, err := h.taskService.ListTasks(c.Request().Context(), identity, policy.ListParams{
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Tags:     c.QueryParam("tags"),
		Page:     c.QueryParam("page"),
		Limit:    c.QueryParam("limit"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.NewTaskListResponse(page))
}

func (h *Handler) GetTask(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	view, err := h.taskService.GetTask(c.Request().Context(), identity, c.Param("taskId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.TaskEnvelope{
		Task: dto.NewTaskResponse(view),
		Msg:  "Task found successfully",
	})
}

func (h *Handler) CreateTask(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req dto.CreateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateCreateTaskRequest(&req); err != nil {
		return err
	}

	view, err := h.taskService.CreateTask(c.Request().Context(), identity, req.Input())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.TaskEnvelope{
		Task: dto.NewTaskResponse(view),
		Msg:  "Task created successfully",
	})
}

func (h *Handler) UpdateTask(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	view, err := h.taskService.UpdateTask(c.Request().Context(), identity, c.Param("taskId"), req.Patch())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.TaskEnvelope{
		Task: dto.NewTaskResponse(view),
		Msg:  "Task updated successfully",
	})
}

func (h *Handler) DeleteTask(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	if err := h.taskService.DeleteTask(c.Request().Context(), identity, c.Param("taskId")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Msg: "Task deleted successfully"})
}

func (h *Handler) AssignTask(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req dto.AssignTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateAssignTaskRequest(&req); err != nil {
		return err
	}

	view, err := h.taskService.AssignTask(c.Request().Context(), identity, c.Param("taskId"), req.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.TaskEnvelope{
		Task: dto.NewTaskResponse(view),
		Msg:  "Task assigned successfully",
	})
}

func currentIdentity(c echo.Context) (policy.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return policy.Identity{}, apperrors.ErrUnauthorized
	}
	return identity, nil
}

// bind decodes the request body. Field level errors raised while decoding
// are kept, anything else becomes a generic invalid payload error.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		var appErr *apperrors.Exception
		if errors.As(err, &appErr) {
			return appErr
		}
		return apperrors.ErrInvalidJSON
	}
	return nil
}
