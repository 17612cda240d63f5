package router

import (
	"emberlink/internal/handlers"
	"emberlink/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	commentHandler := handlers.NewCommentHandler()
	voteHandler := handlers.NewVoteHandler()

	// Public routes
	r.GET("/posts", postHandler.List)
	r.GET("/posts/:id", postHandler.Get)
	r.GET("/posts/:id/comments", commentHandler.List)
	r.GET("/comments/:id/comments", commentHandler.Replies)

	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)
	r.GET("/me", authHandler.Me)

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/posts", postHandler.Create)
		authorized.DELETE("/posts/:id", postHandler.Delete)

		authorized.POST("/posts/:id/comments", commentHandler.CreateForPost)
		authorized.POST("/comments/:id", commentHandler.CreateReply)

		authorized.POST("/posts/:id/upvote", voteHandler.TogglePost)
		authorized.POST("/comments/:id/upvote", voteHandler.ToggleComment)
	}
}
