package model

import (
	"time"

	"taskboard.com/taskboard/internal/constants"
)

type Task struct {
	ID          string                 `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Title       string                 `gorm:"not null;default:''" bson:"title" json:"title"`
	Description string                 `gorm:"not null" bson:"description" json:"description"`
	// SearchText is the lowercased description the SQL store searches on.
	SearchText  string                 `gorm:"not null;default:''" bson:"-" json:"-"`
	Status      constants.TaskStatus   `gorm:"type:varchar(20);not null;index" bson:"status" json:"status"`
	Priority    constants.TaskPriority `gorm:"type:varchar(10);not null;index" bson:"priority" json:"priority"`
	DueDate     *time.Time             `bson:"due_date" json:"dueDate"`
	Tags        StringList             `gorm:"type:text;not null" bson:"tags" json:"tags"`
	OwnerID     string                 `gorm:"size:36;not null;index" bson:"owner_id" json:"ownerId"`
	CreatorID   *string                `gorm:"size:36;index" bson:"creator_id" json:"creatorId"`
	AssigneeID  *string                `gorm:"size:36;index" bson:"assignee_id" json:"assigneeId"`
	CreatedAt   time.Time              `gorm:"index" bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time              `bson:"updated_at" json:"updatedAt"`
}

// IsOwnedBy reports whether userID is the task owner.
func (t *Task) IsOwnedBy(userID string) bool {
	return t.OwnerID == userID
}

// IsAssignedTo reports whether userID is the current assignee.
func (t *Task) IsAssignedTo(userID string) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// ParticipantIDs lists the distinct user ids referenced by the task.
func (t *Task) ParticipantIDs() []string {
	ids := []string{t.OwnerID}
	for _, id := range []*string{t.AssigneeID, t.CreatorID} {
		if id == nil || *id == "" {
			continue
		}
		seen := false
		for _, existing := range ids {
			if existing == *id {
				seen = true
				break
			}
		}
		if !seen {
			ids = append(ids, *id)
		}
	}
	return ids
}
