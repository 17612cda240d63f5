package optimistic

import (
	"context"
	"emberlink/internal/models"
)

// DeletePost removes the viewer's own post: it disappears from every
// cached list immediately and the single-post entry is dropped. The
// server cascades comment and upvote removal. On failure the cached
// entries come back untouched.
func (s *Synchronizer) DeletePost(ctx context.Context, postID int64) State {
	pk := postKey(postID)
	keys := append(s.listKeys(), pk)
	m := s.begin(pk, keys...)

	for _, lk := range keys[:len(keys)-1] {
		m.patch(lk, func(old interface{}) interface{} {
			return removePostFromPage(old, postID)
		})
	}
	// Returning nil drops the entry
	m.patch(pk, func(old interface{}) interface{} { return nil })

	if err := s.api.DeletePost(ctx, postID); err != nil {
		state := m.rollback()
		s.report(err)
		return state
	}
	return m.commit(nil)
}

func removePostFromPage(old interface{}, postID int64) interface{} {
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
	np.Data = make([]models.Post, 0, len(page.Data)-1)
	np.Data = append(np.Data, page.Data[:idx]...)
	np.Data = append(np.Data, page.Data[idx+1:]...)
	return &np
}
