package handlers

import (
	"emberlink/internal/db"
	"emberlink/internal/models"
	"emberlink/internal/services"
	"emberlink/internal/utils"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

// TogglePost alternates the caller's upvote on a post. The direction of
// the points change is computed from the stored vote row, not from
// anything the client claims, so client and server can never
// double-count after a disagreement about prior state.
func (h *VoteHandler) TogglePost(c *gin.Context) {
	user := CurrentUser(c)
	postID := utils.StringToInt64(c.Param("id"))

	var post models.Post
	if err := db.DB.First(&post, postID).Error; err != nil {
		Fail(c, http.StatusNotFound, "post not found")
		return
	}

	var isUpvoted bool
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PostUpvote
		err := tx.Where("user_id = ? AND post_id = ?", user.ID, postID).First(&existing).Error

		pointsChange := 1
		if err == nil {
			// Un-vote: the row is the sole source of truth
			pointsChange = -1
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		} else {
			vote := models.PostUpvote{UserID: user.ID, PostID: postID}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		}
		isUpvoted = pointsChange > 0

		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("points", gorm.Expr("points + ?", pointsChange)).Error
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "could not record vote")
		return
	}

	services.GetReconciler().SchedulePost(postID)

	var points int
	db.DB.Model(&models.Post{}).Where("id = ?", postID).
		Select("points").Scan(&points)

	c.JSON(http.StatusOK, models.VoteResult{Count: points, IsUpvoted: isUpvoted})
}

// ToggleComment alternates the caller's upvote on a comment and returns
// the viewer-scoped upvote rows alongside the authoritative count.
func (h *VoteHandler) ToggleComment(c *gin.Context) {
	user := CurrentUser(c)
	commentID := utils.StringToInt64(c.Param("id"))

	var comment models.Comment
	if err := db.DB.First(&comment, commentID).Error; err != nil {
		Fail(c, http.StatusNotFound, "comment not found")
		return
	}

	var isUpvoted bool
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.CommentUpvote
		err := tx.Where("user_id = ? AND comment_id = ?", user.ID, commentID).First(&existing).Error

		pointsChange := 1
		if err == nil {
			pointsChange = -1
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		} else {
			vote := models.CommentUpvote{UserID: user.ID, CommentID: commentID}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		}
		isUpvoted = pointsChange > 0

		return tx.Model(&models.Comment{}).Where("id = ?", commentID).
			UpdateColumn("points", gorm.Expr("points + ?", pointsChange)).Error
	})
	if err != nil {
		Fail(c, http.StatusInternalServerError, "could not record vote")
		return
	}

	services.GetReconciler().ScheduleComment(commentID)

	var points int
	db.DB.Model(&models.Comment{}).Where("id = ?", commentID).
		Select("points").Scan(&points)

	upvotes := []models.CommentUpvote{}
	if isUpvoted {
		db.DB.Where("user_id = ? AND comment_id = ?", user.ID, commentID).Find(&upvotes)
	}

	c.JSON(http.StatusOK, models.CommentVoteResult{
		Count:          points,
		IsUpvoted:      isUpvoted,
		CommentUpvotes: upvotes,
	})
}
