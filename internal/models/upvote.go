package models

import (
	"time"
)

// Row presence is the sole source of truth for "has this user voted".
// Toggling alternates create/delete; there is no vote weight.

type PostUpvote struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_post_upvote" json:"userId"`
	PostID    int64     `gorm:"not null;uniqueIndex:idx_post_upvote;index" json:"-"`
	Post      Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"-"`
}

type CommentUpvote struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_comment_upvote" json:"userId"`
	CommentID int64     `gorm:"not null;uniqueIndex:idx_comment_upvote;index" json:"-"`
	Comment   Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt time.Time `json:"-"`
}
