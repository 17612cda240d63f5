package models

// Wire envelopes shared by the HTTP handlers and the API client.

type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
}

type PostPage struct {
	Data       []Post     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type CommentPage struct {
	Data       []Comment  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// VoteResult is the authoritative outcome of a post upvote toggle.
type VoteResult struct {
	Count     int  `json:"count"`
	IsUpvoted bool `json:"isUpvoted"`
}

// CommentVoteResult additionally carries the viewer's upvote rows,
// since "has voted" on a comment is the non-emptiness of that list.
type CommentVoteResult struct {
	Count          int             `json:"count"`
	IsUpvoted      bool            `json:"isUpvoted"`
	CommentUpvotes []CommentUpvote `json:"commentUpvotes"`
}

// APIError is the error envelope every handler returns.
type APIError struct {
	Error       string `json:"error"`
	IsFormError bool   `json:"isFormError"`
}
