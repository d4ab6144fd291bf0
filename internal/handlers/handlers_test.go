package handlers_test

import (
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"modernblog/internal/db"
	"modernblog/internal/handlers"
	"modernblog/internal/middleware"
	"modernblog/internal/models"
	"modernblog/internal/router"
	"modernblog/internal/services"
	"modernblog/internal/utils"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))

	db.DB = conn
	utils.GetCache().Purge()
}

// setupRouter wires the real routes with sessions and templates, the
// same shape the server builds in main.
func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("modernblog_session", store))
	r.HTMLRender = loadTestTemplates()
	r.Use(middleware.LoadUser())

	settings := services.NewSettingsServiceWithPath(filepath.Join(t.TempDir(), "settings.json"))
	router.RegisterRoutes(r, handlers.NewAdminHandlerWithSettings(settings))
	return r
}

func loadTestTemplates() multitemplate.Renderer {
	templatesDir := "../../web/templates"
	layouts, _ := filepath.Glob(templatesDir + "/layouts/*.html")

	assemble := func(view string) []string {
		return append(append([]string{}, layouts...), view)
	}

	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"formatDate": func(tm time.Time) string { return tm.Format("Jan 2, 2006") },
		"safeHTML":   func(s string) template.HTML { return template.HTML(s) },
	}

	r := multitemplate.NewRenderer()
	for name, view := range map[string]string{
		"home.html":            "/views/home.html",
		"blog.html":            "/views/blog.html",
		"post.html":            "/views/post.html",
		"create_post.html":     "/views/create_post.html",
		"auth/login.html":      "/views/auth/login.html",
		"auth/register.html":   "/views/auth/register.html",
		"admin/dashboard.html": "/views/admin/dashboard.html",
		"error.html":           "/views/error.html",
	} {
		r.AddFromFilesFuncs(name, funcMap, assemble(templatesDir+view)...)
	}
	return r
}

// createUser inserts a user directly, bypassing the register handler.
func createUser(t *testing.T, username, email, password string, isAdmin bool) *models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		IsAdmin:  isAdmin,
	}
	require.NoError(t, db.DB.Create(&user).Error)
	return &user
}

// createPost inserts a post with an explicit creation time so listing
// order is deterministic.
func createPost(t *testing.T, userID uint, title, content string, createdAt time.Time) *models.Post {
	t.Helper()

	post := models.Post{
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: createdAt,
	}
	require.NoError(t, db.DB.Create(&post).Error)
	return &post
}

// login posts the credentials and returns the session cookies.
func login(t *testing.T, r *gin.Engine, username, password string) []*http.Cookie {
	t.Helper()

	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusFound, w.Code, "login should succeed")
	return w.Result().Cookies()
}

// doRequest performs a request with optional cookies and body.
func doRequest(r *gin.Engine, method, path string, body io.Reader, contentType string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
