package router

import (
	"modernblog/internal/handlers"
	"modernblog/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, adminHandler *handlers.AdminHandler) {
	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	likeHandler := handlers.NewLikeHandler()

	// Public Routes
	r.GET("/", postHandler.Home)
	r.GET("/blog", postHandler.Blog)
	r.GET("/post/:id", postHandler.Detail)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)

	// Protected Routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/logout", authHandler.Logout)
		authorized.GET("/create_post", postHandler.ShowCreate)
		authorized.POST("/create_post", postHandler.Create)
		authorized.POST("/like/:id", likeHandler.Toggle)
		authorized.POST("/comment/:id", postHandler.CreateComment)
	}

	// Admin Routes, role checked once before dispatch
	admin := r.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("", adminHandler.Dashboard)
		admin.GET("/posts", adminHandler.ListPosts)
		admin.DELETE("/post/:id", adminHandler.DeletePost)
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/user/:id", adminHandler.UpdateUser)
		admin.GET("/comments", adminHandler.ListComments)
		admin.DELETE("/comment/:id", adminHandler.DeleteComment)
		admin.GET("/profile", adminHandler.GetProfile)
		admin.PUT("/profile", adminHandler.UpdateProfile)
		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings", adminHandler.PutSettings)
	}
}
