package optimistic

import (
	"context"
	"emberlink/internal/models"
)

// CreateComment posts a comment under root, optimistically prepending a
// draft to the first cached page. On success the draft is replaced by
// the authoritative comment (a replace, not a merge, so the same
// logical comment never renders twice), and the parent post's cache
// entries are invalidated since its comment count changed. On failure
// the pre-draft snapshot is restored, so no orphaned placeholder can
// persist.
func (s *Synchronizer) CreateComment(ctx context.Context, root Root, content string) State {
	firstPage := commentsKey(root, 1)
	m := s.begin("create:"+root.String(), firstPage)

	draft := models.Comment{
		Draft:          true,
		Content:        content,
		Points:         0,
		Depth:          0,
		CreatedAt:      now(),
		CommentUpvotes: []models.CommentUpvote{},
		ChildComments:  []models.Comment{},
	}
	if root.Kind == RootPost {
		draft.PostID = root.ID
	} else {
		parentID := root.ID
		draft.ParentCommentID = &parentID
	}
	if u := s.CurrentUser(); u != nil {
		draft.UserID = u.ID
		draft.Author = *u
	}

	m.patch(firstPage, func(old interface{}) interface{} {
		page, ok := old.(*models.CommentPage)
		if !ok {
			return &models.CommentPage{
				Data:       []models.Comment{draft},
				Pagination: models.Pagination{Page: 1, TotalPages: 1},
			}
		}
		np := *page
		np.Data = make([]models.Comment, 0, len(page.Data)+1)
		np.Data = append(np.Data, draft)
		np.Data = append(np.Data, page.Data...)
		return &np
	})

	created, err := s.api.CreateComment(ctx, root.ID, content, root.Kind == RootComment)
	if err != nil {
		state := m.rollback()
		s.report(err)
		return state
	}

	return m.commit(func() {
		m.patch(firstPage, func(old interface{}) interface{} {
			page, ok := old.(*models.CommentPage)
			if !ok {
				return old
			}
			np := *page
			np.Data = make([]models.Comment, 0, len(page.Data))
			np.Data = append(np.Data, *created)
			for _, c := range page.Data {
				if c.Draft {
					continue
				}
				np.Data = append(np.Data, c)
			}
			return &np
		})

		// The post's commentCount changed; the authoritative response
		// does not echo it, so invalidate rather than compute locally.
		s.dropKey(postKey(created.PostID))
		for _, lk := range s.listKeys() {
			s.dropKey(lk)
		}
	})
}
