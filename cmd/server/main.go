package main

import (
	"html/template"
	"log"
	"os"
	"path/filepath"
	"time"

	"modernblog/internal/db"
	"modernblog/internal/handlers"
	"modernblog/internal/middleware"
	"modernblog/internal/router"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Initialize Database
	db.Init()

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("modernblog_session", store))

	// Load Templates
	r.HTMLRender = loadTemplates("./web/templates")

	// Static Assets
	r.Static("/static", "./web/static")

	// Middleware
	r.Use(middleware.LoadUser())

	// Routes
	router.RegisterRoutes(r, handlers.NewAdminHandler())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("ModernBlog server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+1)
		files = append(files, layouts...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	r.AddFromFilesFuncs("home.html", funcMap, assemble(templatesDir+"/views/home.html")...)
	r.AddFromFilesFuncs("blog.html", funcMap, assemble(templatesDir+"/views/blog.html")...)
	r.AddFromFilesFuncs("post.html", funcMap, assemble(templatesDir+"/views/post.html")...)
	r.AddFromFilesFuncs("create_post.html", funcMap, assemble(templatesDir+"/views/create_post.html")...)

	r.AddFromFilesFuncs("auth/login.html", funcMap, assemble(templatesDir+"/views/auth/login.html")...)
	r.AddFromFilesFuncs("auth/register.html", funcMap, assemble(templatesDir+"/views/auth/register.html")...)

	r.AddFromFilesFuncs("admin/dashboard.html", funcMap, assemble(templatesDir+"/views/admin/dashboard.html")...)

	r.AddFromFilesFuncs("error.html", funcMap, assemble(templatesDir+"/views/error.html")...)

	return r
}
