package middleware

import (
	"net/http"
	"net/url"

	"modernblog/internal/db"
	"modernblog/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// LoadUser retrieves the session user and sets it on the context.
// Downstream handlers read the caller identity from here, never from
// the session directly.
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")

		if userID != nil {
			var user models.User
			if err := db.DB.First(&user, userID).Error; err == nil {
				c.Set(CheckUserKey, &user)
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in, preserving the requested
// destination so login can send the caller back.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request.URL.Path))
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired rejects anyone without the admin flag, authenticated
// or not. Always a 403, never a redirect.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, exists := c.Get(CheckUserKey)
		if !exists || !u.(*models.User).IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the resolved caller, or nil for anonymous.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CheckUserKey); exists {
		return u.(*models.User)
	}
	return nil
}
