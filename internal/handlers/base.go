package handlers

import (
	"modernblog/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user, exists := c.Get(middleware.CheckUserKey); exists {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	session := sessions.Default(c)
	if flashes := session.Flashes(); len(flashes) > 0 {
		session.Save()
		obj["Flash"] = flashes[0]
	}

	c.HTML(code, name, obj)
}

// RenderError renders the shared error page.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Error": message})
}

// Flash stores a one-shot message shown on the next rendered page.
func Flash(c *gin.Context, message string) {
	session := sessions.Default(c)
	session.AddFlash(message)
	session.Save()
}
