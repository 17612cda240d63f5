package client

import (
	"context"
	"emberlink/internal/models"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPostsSendsQueryAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "points", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		assert.Equal(t, "ada", r.URL.Query().Get("author"))
		assert.Equal(t, "example.com", r.URL.Query().Get("site"))

		json.NewEncoder(w).Encode(models.PostPage{
			Data:       []models.Post{{ID: 1, Title: "hello", Points: 4}},
			Pagination: models.Pagination{Page: 2, TotalPages: 3},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	page, err := c.FetchPosts(context.Background(), ListPostsParams{
		Page: 2, SortBy: "points", Order: "desc", Author: "ada", Site: "example.com",
	})

	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "hello", page.Data[0].Title)
	assert.Equal(t, 3, page.Pagination.TotalPages)
}

func TestFetchCommentsIncludeChildren(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts/9/comments", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeChildren"))
		json.NewEncoder(w).Encode(models.CommentPage{
			Data: []models.Comment{{ID: 10, PostID: 9, ChildComments: []models.Comment{{ID: 20, PostID: 9}}}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	page, err := c.FetchComments(context.Background(), 9, ListCommentsParams{IncludeChildren: true})

	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Len(t, page.Data[0].ChildComments, 1)
	assert.Equal(t, int64(20), page.Data[0].ChildComments[0].ID)
}

func TestTogglePostUpvoteDecodesResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/posts/7/upvote", r.URL.Path)
		json.NewEncoder(w).Encode(models.VoteResult{Count: 12, IsUpvoted: true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.TogglePostUpvote(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 12, res.Count)
	assert.True(t, res.IsUpvoted)
}

func TestCreateCommentTargetsPostOrParent(t *testing.T) {
	var gotPath, gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			Content string `json:"content"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotContent = body.Content
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Comment{ID: 55, Content: body.Content})
	}))
	defer srv.Close()

	c := New(srv.URL)

	created, err := c.CreateComment(context.Background(), 9, "top level", false)
	require.NoError(t, err)
	assert.Equal(t, "/posts/9/comments", gotPath)
	assert.Equal(t, "top level", gotContent)
	assert.Equal(t, int64(55), created.ID)

	_, err = c.CreateComment(context.Background(), 10, "a reply", true)
	require.NoError(t, err)
	assert.Equal(t, "/comments/10", gotPath)
	assert.Equal(t, "a reply", gotContent)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   models.APIError
		check  func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   models.APIError{Error: "post not found"},
			check: func(t *testing.T, err error) {
				var nf *NotFoundError
				require.True(t, errors.As(err, &nf))
				assert.Equal(t, "post not found", nf.Message)
			},
		},
		{
			name:   "unauthenticated",
			status: http.StatusUnauthorized,
			body:   models.APIError{Error: "login required"},
			check: func(t *testing.T, err error) {
				var ae *AuthError
				require.True(t, errors.As(err, &ae))
				assert.False(t, ae.Forbidden)
			},
		},
		{
			name:   "forbidden",
			status: http.StatusForbidden,
			body:   models.APIError{Error: "you can only delete your own posts"},
			check: func(t *testing.T, err error) {
				var ae *AuthError
				require.True(t, errors.As(err, &ae))
				assert.True(t, ae.Forbidden)
			},
		},
		{
			name:   "form error",
			status: http.StatusBadRequest,
			body:   models.APIError{Error: "title is required", IsFormError: true},
			check: func(t *testing.T, err error) {
				var ve *ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, "title is required", ve.Message)
			},
		},
		{
			name:   "server failure",
			status: http.StatusInternalServerError,
			body:   models.APIError{Error: "could not record vote"},
			check: func(t *testing.T, err error) {
				var te *TransportError
				require.True(t, errors.As(err, &te))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			c := New(srv.URL)
			_, err := c.FetchPost(context.Background(), 1)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // refuse connections from now on

	c := New(srv.URL)
	_, err := c.FetchPost(context.Background(), 1)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Error(t, te.Unwrap())
}

func TestSessionCookieCarriesAcrossCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "emberlink_session", Value: "abc"})
			json.NewEncoder(w).Encode(models.User{ID: "u1", Username: "ada"})
		case "/me":
			cookie, err := r.Cookie("emberlink_session")
			if err != nil || cookie.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(models.APIError{Error: "login required"})
				return
			}
			json.NewEncoder(w).Encode(models.User{ID: "u1", Username: "ada"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	user, err := c.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)
}
