package models

import (
	"time"
)

type Comment struct {
	ID              int64  `gorm:"primaryKey" json:"id"`
	PostID          int64  `gorm:"not null;index" json:"postId"`
	Post            Post   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	ParentCommentID *int64 `gorm:"index" json:"parentCommentId"` // Nullable for top-level comments
	UserID          string `gorm:"not null;index" json:"userId"`
	Author          User   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Content         string `gorm:"type:text;not null" json:"content"`
	Points          int    `gorm:"default:0" json:"points"`
	Depth           int    `gorm:"default:0" json:"depth"`
	// Number of direct replies
	CommentCount int       `gorm:"default:0" json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`

	// Preloaded scoped to the viewer; non-empty means "viewer has upvoted"
	CommentUpvotes []CommentUpvote `gorm:"foreignKey:CommentID" json:"commentUpvotes"`

	// Sanitized HTML rendering of Content, filled at query time
	ContentHTML string `gorm:"-" json:"contentHtml,omitempty"`

	// Derived, never persisted; filled by the thread builder
	ChildComments []Comment `gorm:"-" json:"childComments,omitempty"`

	// Client-side only: marks a locally-synthesized placeholder that is
	// replaced by the authoritative comment once the create confirms
	Draft bool `gorm:"-" json:"-"`
}
