package policy

import (
	"taskboard.com/taskboard/internal/constants"
	apperrors "taskboard.com/taskboard/internal/errors"
)

// RoleChange is a validated role change request.
type RoleChange struct {
	UserID string
	Role   constants.Role
}

// NewRoleChange checks the caller, the role and the id, in that order, before
// any lookup.
func NewRoleChange(identity Identity, rawID, rawRole string) (RoleChange, error) {
	if err := AuthorizeAdmin(identity); err != nil {
		return RoleChange{}, err
	}
	role := constants.Role(rawRole)
	if !role.Valid() {
		return RoleChange{}, apperrors.ErrInvalidRole
	}
	id, ok := ParseID(rawID)
	if !ok {
		return RoleChange{}, apperrors.ErrInvalidUserID
	}
	return RoleChange{UserID: id, Role: role}, nil
}

// UserDeletionTarget validates an admin's request to delete rawID.
func UserDeletionTarget(identity Identity, rawID string) (string, error) {
	if err := AuthorizeAdmin(identity); err != nil {
		return "", err
	}
	id, ok := ParseID(rawID)
	if !ok {
		return "", apperrors.ErrInvalidUserID
	}
	return id, nil
}
