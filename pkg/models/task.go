package model

import "time"

type Task struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Designation string    `gorm:"size:255;not null" json:"designation"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"-"`
}
