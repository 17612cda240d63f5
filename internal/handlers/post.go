package handlers

import (
	"emberlink/internal/cache"
	"emberlink/internal/db"
	"emberlink/internal/models"
	"emberlink/internal/utils"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const postsPerPage = 30

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// fillUpvoted batch-fills the viewer's upvote state for a page of posts
func fillUpvoted(posts []models.Post, userID string) {
	if len(posts) == 0 || userID == "" {
		return
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	var votes []models.PostUpvote
	db.DB.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&votes)

	voted := make(map[int64]bool, len(votes))
	for _, v := range votes {
		voted[v.PostID] = true
	}

	for i := range posts {
		posts[i].IsUpvoted = voted[posts[i].ID]
	}
}

func listCacheKey(page int, sortBy, order, author, site string) string {
	return fmt.Sprintf("posts:%s:%s:%s:%s:page:%d", sortBy, order, author, site, page)
}

func (h *PostHandler) List(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	sortBy := c.DefaultQuery("sortBy", "points")
	if sortBy != "points" && sortBy != "recent" {
		FailForm(c, http.StatusBadRequest, "sortBy must be points or recent")
		return
	}
	order := c.DefaultQuery("order", "desc")
	if order != "asc" && order != "desc" {
		FailForm(c, http.StatusBadRequest, "order must be asc or desc")
		return
	}
	author := c.Query("author")
	site := c.Query("site")

	user := CurrentUser(c)

	// Anonymous pages are shared; cache them briefly. Signed-in views
	// carry per-viewer vote state and skip the cache.
	cacheKey := listCacheKey(page, sortBy, order, author, site)
	if user == nil {
		if cached, ok := cache.Default().Get(cacheKey); ok {
			if pageData, ok := cached.(*models.PostPage); ok {
				c.JSON(http.StatusOK, pageData)
				return
			}
		}
	}

	query := db.DB.Model(&models.Post{})
	if author != "" {
		query = query.Joins("JOIN users ON users.id = posts.user_id").
			Where("users.username = ?", author)
	}
	if site != "" {
		query = query.Where("site = ?", site)
	}

	var total int64
	query.Count(&total)

	column := "points"
	if sortBy == "recent" {
		column = "created_at"
	}

	var posts []models.Post
	query.Preload("Author").
		Order(fmt.Sprintf("%s %s, posts.id DESC", column, order)).
		Limit(postsPerPage).
		Offset((page - 1) * postsPerPage).
		Find(&posts)

	if user != nil {
		fillUpvoted(posts, user.ID)
	}

	result := &models.PostPage{
		Data: posts,
		Pagination: models.Pagination{
			Page:       page,
			TotalPages: totalPages(total, postsPerPage),
		},
	}

	if user == nil {
		cache.Default().Put(cacheKey, result, 1*time.Minute)
	}

	c.JSON(http.StatusOK, result)
}

func (h *PostHandler) Get(c *gin.Context) {
	id := utils.StringToInt64(c.Param("id"))

	var post models.Post
	if err := db.DB.Preload("Author").First(&post, id).Error; err != nil {
		Fail(c, http.StatusNotFound, "post not found")
		return
	}

	if user := CurrentUser(c); user != nil {
		var count int64
		db.DB.Model(&models.PostUpvote{}).
			Where("user_id = ? AND post_id = ?", user.ID, post.ID).
			Count(&count)
		post.IsUpvoted = count > 0
	}

	if post.Content != nil {
		post.ContentHTML = utils.RenderMarkdown(*post.Content)
	}

	c.JSON(http.StatusOK, post)
}

type createPostRequest struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

func (h *PostHandler) Create(c *gin.Context) {
	user := CurrentUser(c)

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailForm(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.URL = strings.TrimSpace(req.URL)

	if req.Title == "" {
		FailForm(c, http.StatusBadRequest, "title is required")
		return
	}
	if req.URL == "" && strings.TrimSpace(req.Content) == "" {
		FailForm(c, http.StatusBadRequest, "a url or text content is required")
		return
	}

	post := models.Post{
		UserID: user.ID,
		Title:  req.Title,
	}
	if req.URL != "" {
		site := utils.ExtractSite(req.URL)
		if site == "" {
			FailForm(c, http.StatusBadRequest, "invalid url")
			return
		}
		post.URL = &req.URL
		post.Site = site
	}
	if req.Content != "" {
		post.Content = &req.Content
	}

	if err := db.DB.Create(&post).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "could not create post")
		return
	}
	post.Author = *user

	// First page of the default listings changed
	cache.Default().Invalidate(listCacheKey(1, "points", "desc", "", ""))
	cache.Default().Invalidate(listCacheKey(1, "recent", "desc", "", ""))

	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := CurrentUser(c)
	id := utils.StringToInt64(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, id).Error; err != nil {
		Fail(c, http.StatusNotFound, "post not found")
		return
	}
	if post.UserID != user.ID {
		Fail(c, http.StatusForbidden, "only the author can delete a post")
		return
	}

	// Hard delete; comments and upvotes cascade via FK constraints
	if err := db.DB.Delete(&post).Error; err != nil {
		Fail(c, http.StatusInternalServerError, "could not delete post")
		return
	}

	cache.Default().Invalidate(listCacheKey(1, "points", "desc", "", ""))
	cache.Default().Invalidate(listCacheKey(1, "recent", "desc", "", ""))

	c.Status(http.StatusNoContent)
}
