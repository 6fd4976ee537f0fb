package validators

import (
	"strings"

	dto "taskboard.com/taskboard/internal/data_models"
	apperrors "taskboard.com/taskboard/internal/errors"
)

func ValidateChangeRoleRequest(r *dto.ChangeRoleRequest) error {
	if strings.TrimSpace(r.Role) == "" {
		return apperrors.Validation("role is required")
	}
	return nil
}

func ValidateSignupRequest(r *dto.SignupRequest) error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.ErrNameRequired
	}
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return apperrors.ErrCredentialsRequired
	}
	return nil
}

func ValidateLoginRequest(r *dto.LoginRequest) error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return apperrors.ErrCredentialsRequired
	}
	return nil
}
