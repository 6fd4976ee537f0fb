package validators

import (
	"strings"

	dto "taskboard.com/taskboard/internal/data_models"
	apperrors "taskboard.com/taskboard/internal/errors"
)

func ValidateCreateTaskRequest(r *dto.CreateTaskRequest) error {
	if strings.TrimSpace(r.Description) == "" {
		return apperrors.ErrDescriptionRequired
	}
	return nil
}

func ValidateAssignTaskRequest(r *dto.AssignTaskRequest) error {
	if strings.TrimSpace(r.UserID) == "" {
		return apperrors.Validation("userId is required")
	}
	return nil
}
