// Package client is the typed HTTP client for the emberlink API. It is
// the network-call collaborator the mutation synchronizer depends on.
package client

import (
	"bytes"
	"context"
	"emberlink/internal/models"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the API at baseURL. A cookie jar carries the
// session across calls.
func New(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
	}
}

// ListPostsParams are the query parameters of GET /posts.
type ListPostsParams struct {
	Page   int
	SortBy string // "points" or "recent"
	Order  string // "asc" or "desc"
	Author string
	Site   string
}

func (p ListPostsParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	if p.Author != "" {
		q.Set("author", p.Author)
	}
	if p.Site != "" {
		q.Set("site", p.Site)
	}
	return q
}

// ListCommentsParams are the query parameters of GET /posts/:id/comments.
type ListCommentsParams struct {
	Page            int
	Limit           int
	IncludeChildren bool
	SortBy          string
	Order           string
}

func (p ListCommentsParams) query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.IncludeChildren {
		q.Set("includeChildren", "true")
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	return q
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Err: err}
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &TransportError{Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &TransportError{Err: err}
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var apiErr models.APIError
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	msg := apiErr.Error
	if msg == "" {
		msg = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Message: msg}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Message: msg, Forbidden: resp.StatusCode == http.StatusForbidden}
	case apiErr.IsFormError:
		return &ValidationError{Message: msg}
	default:
		return &TransportError{Err: fmt.Errorf("%s: %s", resp.Status, msg)}
	}
}

// FetchPosts lists posts with pagination, sorting and optional
// author/site filters.
func (c *Client) FetchPosts(ctx context.Context, params ListPostsParams) (*models.PostPage, error) {
	var page models.PostPage
	if err := c.do(ctx, http.MethodGet, "/posts", params.query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchPost returns a single post with the viewer's upvote state.
func (c *Client) FetchPost(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d", postID), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// FetchComments lists a post's top-level comments; when
// params.IncludeChildren each entry embeds its first page of children.
func (c *Client) FetchComments(ctx context.Context, postID int64, params ListCommentsParams) (*models.CommentPage, error) {
	var page models.CommentPage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postID), params.query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchReplies pages through one comment's direct replies, for
// on-demand deeper nesting.
func (c *Client) FetchReplies(ctx context.Context, parentCommentID int64, page, limit int) (*models.CommentPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out models.CommentPage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/comments/%d/comments", parentCommentID), q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TogglePostUpvote alternates the viewer's vote on a post and returns
// the authoritative count.
func (c *Client) TogglePostUpvote(ctx context.Context, postID int64) (*models.VoteResult, error) {
	var res models.VoteResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/upvote", postID), nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ToggleCommentUpvote alternates the viewer's vote on a comment.
func (c *Client) ToggleCommentUpvote(ctx context.Context, commentID int64) (*models.CommentVoteResult, error) {
	var res models.CommentVoteResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/comments/%d/upvote", commentID), nil, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// CreateComment posts a comment under a post, or a reply under another
// comment when isReplyToComment is set. Returns the authoritative
// comment carrying the real id, author and timestamp.
func (c *Client) CreateComment(ctx context.Context, targetID int64, content string, isReplyToComment bool) (*models.Comment, error) {
	path := fmt.Sprintf("/posts/%d/comments", targetID)
	if isReplyToComment {
		path = fmt.Sprintf("/comments/%d", targetID)
	}
	var comment models.Comment
	if err := c.do(ctx, http.MethodPost, path, nil, createCommentRequest{Content: content}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// CreatePost submits a new link or text post.
func (c *Client) CreatePost(ctx context.Context, title, postURL, content string) (*models.Post, error) {
	body := map[string]string{"title": title, "url": postURL, "content": content}
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/posts", nil, body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes the viewer's own post; the server cascades comment
// and upvote removal.
func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", postID), nil, nil, nil)
}

type credentials struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new account and starts a session.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/signup", nil, credentials{Username: username, Email: email, Password: password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login starts a session for an existing account.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/login", nil, credentials{Email: email, Password: password}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the cached-session identity, used to stamp optimistic
// comment drafts before the server confirms the author.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
