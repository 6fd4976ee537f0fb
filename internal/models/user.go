package model

import (
	"time"

	"taskboard.com/taskboard/internal/constants"
)

type User struct {
	ID           string         `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Name         string         `gorm:"size:128;not null" bson:"name" json:"name"`
	Email        string         `gorm:"size:191;not null;uniqueIndex" bson:"email" json:"email"`
	PasswordHash string         `gorm:"size:191;not null" bson:"password" json:"-"`
	Role         constants.Role `gorm:"type:varchar(10);not null;default:user" bson:"role" json:"role"`
	Avatar       *string        `bson:"avatar" json:"avatar"`
	CreatedAt    time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == constants.RoleAdmin
}
