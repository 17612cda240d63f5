package handlers

import (
	"emberlink/internal/db"
	"emberlink/internal/models"
	"emberlink/internal/utils"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailForm(c, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Username == "" {
		FailForm(c, http.StatusBadRequest, "username is required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		FailForm(c, http.StatusBadRequest, "invalid email address")
		return
	}
	if len(req.Password) < 6 {
		FailForm(c, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		Fail(c, http.StatusInternalServerError, "signup failed")
		return
	}

	user := models.User{
		ID:       utils.RandString(16),
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		FailForm(c, http.StatusConflict, "username or email already taken")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		Fail(c, http.StatusInternalServerError, "signup failed")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		FailForm(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var user models.User
	if err := db.DB.First(&user, "email = ?", strings.TrimSpace(strings.ToLower(req.Email))).Error; err != nil {
		Fail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if !utils.CheckPasswordHash(req.Password, user.Password) {
		Fail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		Fail(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated identity, used by clients to stamp
// optimistic comment drafts.
func (h *AuthHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		Fail(c, http.StatusUnauthorized, "not logged in")
		return
	}
	c.JSON(http.StatusOK, user)
}
