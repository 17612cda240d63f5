// Package optimistic keeps a local read cache in sync with the remote
// store across upvote and comment mutations. Each mutation immediately
// patches every cache entry that shows the affected entity, then
// reconciles with the server-confirmed values on success or restores
// the pre-mutation snapshot on failure.
package optimistic

import (
	"context"
	"emberlink/internal/cache"
	"emberlink/internal/client"
	"emberlink/internal/models"
	"errors"
	"sync"
	"time"
)

// API is the remote-call collaborator; *client.Client implements it.
type API interface {
	FetchPosts(ctx context.Context, params client.ListPostsParams) (*models.PostPage, error)
	FetchPost(ctx context.Context, postID int64) (*models.Post, error)
	FetchComments(ctx context.Context, postID int64, params client.ListCommentsParams) (*models.CommentPage, error)
	FetchReplies(ctx context.Context, parentCommentID int64, page, limit int) (*models.CommentPage, error)
	TogglePostUpvote(ctx context.Context, postID int64) (*models.VoteResult, error)
	ToggleCommentUpvote(ctx context.Context, commentID int64) (*models.CommentVoteResult, error)
	CreateComment(ctx context.Context, targetID int64, content string, isReplyToComment bool) (*models.Comment, error)
	DeletePost(ctx context.Context, postID int64) error
}

// Synchronizer owns all writes to the read cache. Cached values are
// immutable: patches build new values, so concurrent reads never see a
// partial write and snapshots stay valid by reference.
type Synchronizer struct {
	store  cache.Store
	api    API
	notify Notifier

	mu        sync.Mutex
	gens      map[string]*entityGen
	postLists map[string]struct{}
	rootPages map[string]map[string]struct{}
	user      *models.User
}

// maxTrackedKeys caps the key registries; reaching it triggers a prune
// of entries whose cache value has expired or been evicted.
const maxTrackedKeys = 256

func New(store cache.Store, api API, notify Notifier) *Synchronizer {
	if notify == nil {
		notify = NopNotifier{}
	}
	return &Synchronizer{
		store:     store,
		api:       api,
		notify:    notify,
		gens:      make(map[string]*entityGen),
		postLists: make(map[string]struct{}),
		rootPages: make(map[string]map[string]struct{}),
	}
}

// SetCurrentUser caches the authenticated identity used to stamp
// optimistic comment drafts.
func (s *Synchronizer) SetCurrentUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// CurrentUser returns the cached identity, or nil when signed out.
func (s *Synchronizer) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Posts returns a post list page, fetching through the cache.
func (s *Synchronizer) Posts(ctx context.Context, params client.ListPostsParams) (*models.PostPage, error) {
	key := postListKey(params)
	if v, ok := s.store.Get(key); ok {
		if page, ok := v.(*models.PostPage); ok {
			return page, nil
		}
	}

	page, err := s.api.FetchPosts(ctx, params)
	if err != nil {
		return nil, err
	}
	s.store.Put(key, page, 0)

	s.mu.Lock()
	if len(s.postLists) >= maxTrackedKeys {
		s.pruneLocked()
	}
	s.postLists[key] = struct{}{}
	s.mu.Unlock()
	return page, nil
}

// Post returns a single post, fetching through the cache.
func (s *Synchronizer) Post(ctx context.Context, postID int64) (*models.Post, error) {
	key := postKey(postID)
	if v, ok := s.store.Get(key); ok {
		if post, ok := v.(*models.Post); ok {
			return post, nil
		}
	}

	post, err := s.api.FetchPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	s.store.Put(key, post, 0)
	return post, nil
}

// Comments returns one page of the comment tree under root, fetching
// through the cache. For post roots the first level of children comes
// back inline; for comment roots the page holds direct replies.
func (s *Synchronizer) Comments(ctx context.Context, root Root, params client.ListCommentsParams) (*models.CommentPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	key := commentsKey(root, page)
	if v, ok := s.store.Get(key); ok {
		if cp, ok := v.(*models.CommentPage); ok {
			return cp, nil
		}
	}

	var cp *models.CommentPage
	var err error
	if root.Kind == RootComment {
		cp, err = s.api.FetchReplies(ctx, root.ID, page, params.Limit)
	} else {
		cp, err = s.api.FetchComments(ctx, root.ID, params)
	}
	if err != nil {
		return nil, err
	}
	s.store.Put(key, cp, 0)
	s.registerRootPage(root, key)
	return cp, nil
}

func (s *Synchronizer) registerRootPage(root Root, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.rootPages) >= maxTrackedKeys {
		s.pruneLocked()
	}
	pages, ok := s.rootPages[root.String()]
	if !ok {
		pages = make(map[string]struct{})
		s.rootPages[root.String()] = pages
	}
	pages[key] = struct{}{}
}

// pruneLocked drops registry entries whose cache key no longer resolves
// to a value. Called with s.mu held.
func (s *Synchronizer) pruneLocked() {
	for k := range s.postLists {
		if _, ok := s.store.Get(k); !ok {
			delete(s.postLists, k)
		}
	}
	for root, pages := range s.rootPages {
		for k := range pages {
			if _, ok := s.store.Get(k); !ok {
				delete(pages, k)
			}
		}
		if len(pages) == 0 {
			delete(s.rootPages, root)
		}
	}
}

// dropKey invalidates a cache entry and forgets any registry reference
// to it, so the registries track only keys that can still hold a value.
func (s *Synchronizer) dropKey(key string) {
	s.store.Invalidate(key)
	s.mu.Lock()
	delete(s.postLists, key)
	for root, pages := range s.rootPages {
		delete(pages, key)
		if len(pages) == 0 {
			delete(s.rootPages, root)
		}
	}
	s.mu.Unlock()
}

func (s *Synchronizer) listKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.postLists))
	for k := range s.postLists {
		keys = append(keys, k)
	}
	return keys
}

func (s *Synchronizer) rootKeys(root Root) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := s.rootPages[root.String()]
	keys := make([]string, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	return keys
}

// report routes a mutation failure to the right notification surface.
func (s *Synchronizer) report(err error) {
	var ve *client.ValidationError
	if errors.As(err, &ve) {
		s.notify.FieldError(ve.Message)
		return
	}
	var nf *client.NotFoundError
	if errors.As(err, &nf) {
		s.notify.Toast("That no longer exists.")
		return
	}
	var ae *client.AuthError
	if errors.As(err, &ae) {
		if ae.Forbidden {
			s.notify.Toast("You can't do that.")
		} else {
			s.notify.Toast("Please log in first.")
		}
		return
	}
	s.notify.Toast("Something went wrong. Please try again.")
}

func now() time.Time {
	return time.Now()
}
