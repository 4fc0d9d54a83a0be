package model

import (
	"time"

	"task-tracker.com/task-tracker/pkg/constants"
)

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Username     string         `gorm:"size:255;uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         constants.Role `gorm:"type:varchar(50);not null" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"-"`
}

// PublicUser is the identity shape returned by the auth endpoints.
type PublicUser struct {
	ID       string         `json:"id"`
	Username string         `json:"username"`
	Role     constants.Role `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}
