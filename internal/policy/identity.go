package policy

import (
	"github.com/google/uuid"

	"taskboard.com/taskboard/internal/constants"
)

// Identity is the authenticated caller resolved for a single request.
type Identity struct {
	UserID string
	Role   constants.Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == constants.RoleAdmin
}

// ParseID validates raw as an entity identifier and returns its canonical
// form. ok is false for anything that is not a UUID.
func ParseID(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
