package optimistic

import (
	"context"
	"emberlink/internal/models"
)

// TogglePostUpvote flips the viewer's vote on a post. Every cache entry
// showing the post (the single-post entry and any list pages) is
// patched immediately; on success the server-returned count overwrites
// the optimistic guess, on failure everything is restored and the
// single-post entry invalidated in case the post no longer exists.
func (s *Synchronizer) TogglePostUpvote(ctx context.Context, postID int64) State {
	pk := postKey(postID)
	keys := append(s.listKeys(), pk)
	m := s.begin(pk, keys...)

	patchEverywhere := func(fn func(p *models.Post)) {
		m.patch(pk, func(old interface{}) interface{} {
			post, ok := old.(*models.Post)
			if !ok {
				return old
			}
			np := *post
			fn(&np)
			return &np
		})
		for _, lk := range keys[:len(keys)-1] {
			m.patch(lk, func(old interface{}) interface{} {
				return patchPostInPage(old, postID, fn)
			})
		}
	}

	patchEverywhere(func(p *models.Post) {
		if p.IsUpvoted {
			p.IsUpvoted = false
			p.Points--
		} else {
			p.IsUpvoted = true
			p.Points++
		}
	})

	res, err := s.api.TogglePostUpvote(ctx, postID)
	if err != nil {
		state := m.rollback()
		// The failure may mean the post is gone; force a refetch
		s.dropKey(pk)
		s.report(err)
		return state
	}

	return m.commit(func() {
		patchEverywhere(func(p *models.Post) {
			p.Points = res.Count
			p.IsUpvoted = res.IsUpvoted
		})
	})
}

// ToggleCommentUpvote flips the viewer's vote on a comment cached under
// root. Voted-ness is the non-emptiness of the comment's upvote list:
// pending, a placeholder row stands in for the viewer's vote until the
// server returns the authoritative list.
func (s *Synchronizer) ToggleCommentUpvote(ctx context.Context, root Root, commentID int64) State {
	entity := "vote:" + CommentRoot(commentID).String()
	keys := s.rootKeys(root)
	m := s.begin(entity, keys...)

	patchPages := func(fn func(c *models.Comment)) {
		for _, k := range keys {
			m.patch(k, func(old interface{}) interface{} {
				return patchCommentInPage(old, commentID, fn)
			})
		}
	}

	userID := ""
	if u := s.CurrentUser(); u != nil {
		userID = u.ID
	}

	patchPages(func(c *models.Comment) {
		if len(c.CommentUpvotes) > 0 {
			c.CommentUpvotes = []models.CommentUpvote{}
			c.Points--
		} else {
			c.CommentUpvotes = []models.CommentUpvote{{UserID: userID, CommentID: commentID}}
			c.Points++
		}
	})

	res, err := s.api.ToggleCommentUpvote(ctx, commentID)
	if err != nil {
		state := m.rollback()
		s.report(err)
		return state
	}

	return m.commit(func() {
		patchPages(func(c *models.Comment) {
			c.Points = res.Count
			c.CommentUpvotes = res.CommentUpvotes
		})
	})
}

// patchPostInPage returns a copy of the cached list page with fn
// applied to the post, or the page unchanged when the post is absent.
func patchPostInPage(old interface{}, postID int64, fn func(p *models.Post)) interface{} {
	page, ok := old.(*models.PostPage)
	if !ok {
		return old
	}
	idx := -1
	for i := range page.Data {
		if page.Data[i].ID == postID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return old
	}

	np := *page
	np.Data = make([]models.Post, len(page.Data))
	copy(np.Data, page.Data)
	fn(&np.Data[idx])
	return &np
}

// patchCommentInPage returns a copy of the cached comment page with fn
// applied to the comment, searching top-level entries and their
// embedded first-level children.
func patchCommentInPage(old interface{}, commentID int64, fn func(c *models.Comment)) interface{} {
	page, ok := old.(*models.CommentPage)
	if !ok {
		return old
	}

	top, child := -1, -1
	for i := range page.Data {
		if page.Data[i].ID == commentID {
			top = i
			break
		}
		for j := range page.Data[i].ChildComments {
			if page.Data[i].ChildComments[j].ID == commentID {
				top, child = i, j
				break
			}
		}
		if child >= 0 {
			break
		}
	}
	if top < 0 {
		return old
	}

	np := *page
	np.Data = make([]models.Comment, len(page.Data))
	copy(np.Data, page.Data)

	if child < 0 {
		fn(&np.Data[top])
		return &np
	}

	kids := make([]models.Comment, len(page.Data[top].ChildComments))
	copy(kids, page.Data[top].ChildComments)
	fn(&kids[child])
	np.Data[top].ChildComments = kids
	return &np
}
