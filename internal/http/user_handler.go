package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "taskboard.com/taskboard/internal/data_models"
	"taskboard.com/taskboard/internal/http/validators"
)

func (h *Handler) ListUsers(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	users, err := h.userService.ListUsers(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.UserListResponse{
		Users: dto.NewUserResponses(users),
		Msg:   "Users found successfully",
	})
}

func (h *Handler) ChangeUserRole(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req dto.ChangeRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateChangeRoleRequest(&req); err != nil {
		return err
	}

	user, err := h.userService.ChangeRole(c.Request().Context(), identity, c.Param("id"), req.Role)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.UserEnvelope{
		User: dto.NewUserResponse(user),
		Msg:  "User role updated successfully",
	})
}

func (h *Handler) DeleteUser(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	removed, err := h.userService.DeleteUser(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.DeleteUserResponse{
		TasksRemoved: removed,
		Msg:          "User deleted successfully",
	})
}
