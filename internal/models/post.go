package models

import (
	"time"
)

type Post struct {
	ID      int64   `gorm:"primaryKey" json:"id"`
	UserID  string  `gorm:"not null;index" json:"-"`
	Author  User    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Title   string  `gorm:"not null" json:"title"`
	URL     *string `json:"url"`
	Content *string `gorm:"type:text" json:"content"`
	// Hostname extracted from URL at submit time, for the ?site= filter
	Site         string    `gorm:"index" json:"site,omitempty"`
	Points       int       `gorm:"default:0" json:"points"`
	CommentCount int       `gorm:"default:0" json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`

	// Per-viewer state, filled at query time
	IsUpvoted bool `gorm:"-" json:"isUpvoted"`

	// Sanitized HTML rendering of Content, filled at query time
	ContentHTML string `gorm:"-" json:"contentHtml,omitempty"`
}
