package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	dto "taskboard.com/taskboard/internal/data_models"
	"taskboard.com/taskboard/internal/http/validators"
	"taskboard.com/taskboard/internal/services"
)

func (h *Handler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateSignupRequest(&req); err != nil {
		return err
	}

	user, token, err := h.authService.Signup(c.Request().Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
		Msg:   "Congratulations!! Account has been created for you..",
	})
}

func (h *Handler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := validators.ValidateLoginRequest(&req); err != nil {
		return err
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.AuthResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
		Msg:   "Login successful",
	})
}
