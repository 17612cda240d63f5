package optimistic

import (
	"emberlink/internal/client"
	"fmt"
)

// RootKind says where a comment tree is rooted: directly under a post
// (top-level thread) or under a parent comment (nested replies).
type RootKind int

const (
	RootPost RootKind = iota
	RootComment
)

// Root is the key a comment tree is cached under. Comment pages are
// cached per-root, not globally by comment id.
type Root struct {
	Kind RootKind
	ID   int64
}

func PostRoot(postID int64) Root {
	return Root{Kind: RootPost, ID: postID}
}

func CommentRoot(parentCommentID int64) Root {
	return Root{Kind: RootComment, ID: parentCommentID}
}

func (r Root) String() string {
	if r.Kind == RootComment {
		return fmt.Sprintf("comment:%d", r.ID)
	}
	return fmt.Sprintf("post:%d", r.ID)
}

func postKey(postID int64) string {
	return fmt.Sprintf("post:%d", postID)
}

func postListKey(p client.ListPostsParams) string {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("posts:%s:%s:%s:%s:page:%d", p.SortBy, p.Order, p.Author, p.Site, page)
}

func commentsKey(r Root, page int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("comments:%s:page:%d", r, page)
}
