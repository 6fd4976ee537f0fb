package policy

import (
	apperrors "taskboard.com/taskboard/internal/errors"
	model "taskboard.com/taskboard/internal/models"
)

// AuthorizeRead hides tasks the caller cannot see behind not-found.
func AuthorizeRead(identity Identity, task *model.Task) error {
	if task == nil || !CanView(identity, task) {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

// AuthorizeUpdate allows admins, the owner and the current assignee. A task
// that exists but belongs to someone else is reported as forbidden.
func AuthorizeUpdate(identity Identity, task *model.Task) error {
	if task == nil {
		return apperrors.ErrTaskNotFound
	}
	if !CanView(identity, task) {
		return apperrors.ErrTaskUpdateForbidden
	}
	return nil
}

// AuthorizeDelete allows admins and the owner. An assignee can see the task
// but may not delete it, which is reported as forbidden.
func AuthorizeDelete(identity Identity, task *model.Task) error {
	if err := AuthorizeRead(identity, task); err != nil {
		return err
	}
	if identity.IsAdmin() || task.IsOwnedBy(identity.UserID) {
		return nil
	}
	return apperrors.ErrTaskDeleteForbidden
}

// AuthorizeAssign is admin only. The route is already gated; this is the
// policy's own check.
func AuthorizeAssign(identity Identity) error {
	return AuthorizeAdmin(identity)
}

func AuthorizeAdmin(identity Identity) error {
	if !identity.IsAdmin() {
		return apperrors.ErrAdminOnly
	}
	return nil
}
