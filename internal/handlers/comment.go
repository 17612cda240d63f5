package handlers

import (
	"emberlink/internal/db"
	"emberlink/internal/models"
	"emberlink/internal/services"
	"emberlink/internal/thread"
	"emberlink/internal/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultCommentLimit = 10

type CommentHandler struct{}

func NewCommentHandler() *CommentHandler {
	return &CommentHandler{}
}

type commentQuery struct {
	page            int
	limit           int
	includeChildren bool
	column          string
	order           string
}

func parseCommentQuery(c *gin.Context) (commentQuery, bool) {
	q := commentQuery{
		page:            utils.StringToInt(c.DefaultQuery("page", "1")),
		limit:           utils.StringToInt(c.DefaultQuery("limit", "")),
		includeChildren: c.Query("includeChildren") == "true",
	}
	if q.page < 1 {
		q.page = 1
	}
	if q.limit < 1 {
		q.limit = defaultCommentLimit
	}

	sortBy := c.DefaultQuery("sortBy", "points")
	switch sortBy {
	case "points":
		q.column = "points"
	case "recent":
		q.column = "created_at"
	default:
		FailForm(c, http.StatusBadRequest, "sortBy must be points or recent")
		return q, false
	}

	q.order = c.DefaultQuery("order", "desc")
	if q.order != "asc" && q.order != "desc" {
		FailForm(c, http.StatusBadRequest, "order must be asc or desc")
		return q, false
	}
	return q, true
}

// viewerScope preloads author info plus the viewer's own upvote rows,
// so non-empty commentUpvotes means "this viewer has voted".
func viewerScope(userID string) *gorm.DB {
	return db.DB.Preload("Author").
		Preload("CommentUpvotes", "user_id = ?", userID)
}

// limitedChildIDs returns the ids of the first page of replies under
// each parent, ranked in SQL so one oversized thread cannot blow up the
// response. The full rows are loaded separately with the viewer's
// preloads. column and order are validated against fixed sets before
// they reach the query text.
func limitedChildIDs(tx *gorm.DB, parentIDs []int64, column, order string, perParent int) []int64 {
	var ids []int64
	tx.Raw(`
		SELECT id FROM (
			SELECT id, ROW_NUMBER() OVER (
				PARTITION BY parent_comment_id
				ORDER BY `+column+` `+order+`, id ASC
			) AS rn
			FROM comments
			WHERE parent_comment_id IN ?
		) ranked
		WHERE rn <= ?`, parentIDs, perParent).Scan(&ids)
	return ids
}

func renderComments(comments []models.Comment) {
	for i := range comments {
		comments[i].ContentHTML = utils.RenderMarkdown(comments[i].Content)
		if comments[i].CommentUpvotes == nil {
			comments[i].CommentUpvotes = []models.CommentUpvote{}
		}
	}
}

// List returns a post's top-level comments; with includeChildren each
// entry embeds its first level of replies, assembled by the thread
// builder from one extra flat query.
func (h *CommentHandler) List(c *gin.Context) {
	postID := utils.StringToInt64(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Fail(c, http.StatusNotFound, "post not found")
		return
	}

	q, ok := parseCommentQuery(c)
	if !ok {
		return
	}

	userID := ""
	if user := CurrentUser(c); user != nil {
		userID = user.ID
	}

	var total int64
	db.DB.Model(&models.Comment{}).
		Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Count(&total)

	var topLevel []models.Comment
	viewerScope(userID).
		Where("post_id = ? AND parent_comment_id IS NULL", postID).
		Order(q.column + " " + q.order + ", id ASC").
		Limit(q.limit).
		Offset((q.page - 1) * q.limit).
		Find(&topLevel)

	var children []models.Comment
	if q.includeChildren && len(topLevel) > 0 {
		parentIDs := make([]int64, len(topLevel))
		for i, tc := range topLevel {
			parentIDs[i] = tc.ID
		}
		childIDs := limitedChildIDs(db.DB, parentIDs, q.column, q.order, q.limit)
		if len(childIDs) > 0 {
			viewerScope(userID).
				Where("id IN ?", childIDs).
				Order(q.column + " " + q.order + ", id ASC").
				Find(&children)
		}
	}

	renderComments(topLevel)
	renderComments(children)

	c.JSON(http.StatusOK, models.CommentPage{
		Data: thread.Build(topLevel, children, q.includeChildren),
		Pagination: models.Pagination{
			Page:       q.page,
			TotalPages: totalPages(total, q.limit),
		},
	})
}

// Replies pages through one comment's direct replies, for on-demand
// deeper nesting.
func (h *CommentHandler) Replies(c *gin.Context) {
	parentID := utils.StringToInt64(c.Param("id"))

	var parent models.Comment
	if err := db.DB.First(&parent, parentID).Error; err != nil {
		Fail(c, http.StatusNotFound, "comment not found")
		return
	}

	q, ok := parseCommentQuery(c)
	if !ok {
		return
	}

	userID := ""
	if user := CurrentUser(c); user != nil {
		userID = user.ID
	}

	var total int64
	db.DB.Model(&models.Comment{}).
		Where("parent_comment_id = ?", parentID).
		Count(&total)

	var replies []models.Comment
	viewerScope(userID).
		Where("parent_comment_id = ?", parentID).
		Order(q.column + " " + q.order + ", id ASC").
		Limit(q.limit).
		Offset((q.page - 1) * q.limit).
		Find(&replies)

	renderComments(replies)

	c.JSON(http.StatusOK, models.CommentPage{
		Data: thread.Build(replies, nil, false),
		Pagination: models.Pagination{
			Page:       q.page,
			TotalPages: totalPages(total, q.limit),
		},
	})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// CreateForPost adds a top-level comment to a post.
func (h *CommentHandler) CreateForPost(c *gin.Context) {
	postID := utils.StringToInt64(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Fail(c, http.StatusNotFound, "post not found")
		return
	}

	h.create(c, post.ID, nil, 0)
}

// CreateReply adds a nested reply under an existing comment.
func (h *CommentHandler) CreateReply(c *gin.Context) {
	parentID := utils.StringToInt64(c.Param("id"))

	var parent models.Comment
	if err := db.DB.First(&parent, parentID).Error; err != nil {
		Fail(c, http.StatusNotFound, "comment not found")
		return
	}

	h.create(c, parent.PostID, &parent.ID, parent.Depth+1)
}

func (h *CommentHandler) create(c *gin.Context, postID int64, parentID *int64, depth int) {
	user := CurrentUser(c)

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailForm(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		FailForm(c, http.StatusBadRequest, "comment content is required")
		return
	}

	comment := models.Comment{
		PostID:          postID,
		ParentCommentID: parentID,
		UserID:          user.ID,
		Content:         req.Content,
		Depth:           depth,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
			return err
		}
		if parentID != nil {
			if err := tx.Model(&models.Comment{}).Where("id = ?", *parentID).
				UpdateColumn("comment_count", gorm.Expr("comment_count + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "could not create comment")
		return
	}

	comment.Author = *user
	comment.CommentUpvotes = []models.CommentUpvote{}
	comment.ContentHTML = utils.RenderMarkdown(comment.Content)

	services.GetReconciler().SchedulePost(postID)

	c.JSON(http.StatusCreated, comment)
}
