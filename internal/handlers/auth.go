package handlers

import (
	"net/http"
	"strings"

	"modernblog/internal/db"
	"modernblog/internal/models"
	"modernblog/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	Render(c, http.StatusOK, "auth/register.html", nil)
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if username == "" || email == "" || password == "" {
		Render(c, http.StatusBadRequest, "auth/register.html", gin.H{"Error": "All fields are required!"})
		return
	}

	var existing models.User
	if err := db.DB.Where("username = ?", username).First(&existing).Error; err == nil {
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "Username already exists!"})
		return
	}
	if err := db.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "Email already registered!"})
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		Render(c, http.StatusInternalServerError, "auth/register.html", gin.H{"Error": "Registration failed"})
		return
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		// Unique index may still trip under a concurrent signup
		Render(c, http.StatusConflict, "auth/register.html", gin.H{"Error": "Username or email already taken!"})
		return
	}

	Flash(c, "Registration successful!")
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Next": c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	// Single generic message for unknown user and bad password alike
	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid username or password!", "Next": next})
		return
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		Render(c, http.StatusUnauthorized, "auth/login.html", gin.H{"Error": "Invalid username or password!", "Next": next})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Save()

	// Only admins get sent on to a requested admin destination; everyone
	// else lands on the home page.
	if user.IsAdmin && next != "" && strings.Contains(next, "/admin") {
		c.Redirect(http.StatusFound, next)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
