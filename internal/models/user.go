package models

import (
	"time"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:16" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:40;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"` // Hash
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	// No DeletedAt for hard delete
}
