package handlers

import (
	"emberlink/internal/middleware"
	"emberlink/internal/models"
	"math"

	"github.com/gin-gonic/gin"
)

// Fail writes the JSON error envelope every endpoint shares.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, models.APIError{Error: message})
}

// FailForm writes a field-level validation error (isFormError = true),
// which clients surface inline rather than as a toast.
func FailForm(c *gin.Context, code int, message string) {
	c.JSON(code, models.APIError{Error: message, IsFormError: true})
}

// CurrentUser returns the session user loaded by middleware, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if user, exists := c.Get(middleware.CheckUserKey); exists {
		return user.(*models.User)
	}
	return nil
}

func totalPages(total int64, perPage int) int {
	pages := int(math.Ceil(float64(total) / float64(perPage)))
	if pages == 0 {
		pages = 1
	}
	return pages
}
