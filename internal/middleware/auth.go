package middleware

import (
	"emberlink/internal/db"
	"emberlink/internal/models"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// LoadUser retrieves the user from the session and sets it on the context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get("user_id").(string)
		if !ok || userID == "" {
			c.Next()
			return
		}

		var user models.User
		if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
			// Stale session; drop it
			session.Delete("user_id")
			_ = session.Save()
			c.Next()
			return
		}

		c.Set(CheckUserKey, &user)
		c.Next()
	}
}

// AuthRequired rejects unauthenticated requests with a JSON 401
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.APIError{Error: "authentication required"})
			return
		}
		c.Next()
	}
}
