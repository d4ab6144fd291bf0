package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"modernblog/internal/db"
	"modernblog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postForm(r http.Handler, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)

	createUser(t, "alice", "alice@example.com", "pw1", false)

	tests := []struct {
		name           string
		form           url.Values
		expectedStatus int
		wantUserCount  int64
	}{
		{
			name:           "valid signup",
			form:           url.Values{"username": {"bob"}, "email": {"bob@example.com"}, "password": {"pw2"}},
			expectedStatus: http.StatusFound,
			wantUserCount:  2,
		},
		{
			name:           "duplicate username",
			form:           url.Values{"username": {"alice"}, "email": {"other@example.com"}, "password": {"pw"}},
			expectedStatus: http.StatusConflict,
			wantUserCount:  2,
		},
		{
			name:           "duplicate email",
			form:           url.Values{"username": {"carol"}, "email": {"alice@example.com"}, "password": {"pw"}},
			expectedStatus: http.StatusConflict,
			wantUserCount:  2,
		},
		{
			name:           "missing password",
			form:           url.Values{"username": {"dave"}, "email": {"dave@example.com"}},
			expectedStatus: http.StatusBadRequest,
			wantUserCount:  2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postForm(r, "/register", tt.form, nil)
			assert.Equal(t, tt.expectedStatus, w.Code)

			var count int64
			db.DB.Model(&models.User{}).Count(&count)
			assert.Equal(t, tt.wantUserCount, count, "no row may be added on failure")
		})
	}

	// Stored credential is a hash, never the plaintext
	var bob models.User
	require.NoError(t, db.DB.Where("username = ?", "bob").First(&bob).Error)
	assert.NotEqual(t, "pw2", bob.Password)
	assert.True(t, strings.HasPrefix(bob.Password, "$2"), "expected a bcrypt hash")
}

func TestLoginSessionLifecycle(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)

	createUser(t, "alice", "alice@example.com", "pw1", false)

	// Anonymous access to a protected route redirects to login
	w := doRequest(r, "GET", "/create_post", nil, "", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")

	// Login establishes the session
	cookies := login(t, r, "alice", "pw1")
	w = doRequest(r, "GET", "/create_post", nil, "", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")

	// Logout invalidates it
	w = doRequest(r, "GET", "/logout", nil, "", cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	loggedOut := w.Result().Cookies()

	w = doRequest(r, "GET", "/create_post", nil, "", loggedOut)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "/login")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)

	createUser(t, "alice", "alice@example.com", "pw1", false)

	// Same generic message for wrong password and unknown user
	w := postForm(r, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")

	w = postForm(r, "/login", url.Values{"username": {"nobody"}, "password": {"pw1"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestLoginNextRedirect(t *testing.T) {
	setupTestDB(t)
	r := setupRouter(t)

	createUser(t, "carol", "carol@example.com", "adminpw", true)
	createUser(t, "bob", "bob@example.com", "pw", false)

	// Admin requesting an admin destination is sent there
	w := postForm(r, "/login", url.Values{"username": {"carol"}, "password": {"adminpw"}, "next": {"/admin"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	// Non-admin with the same next lands on the home page
	w = postForm(r, "/login", url.Values{"username": {"bob"}, "password": {"pw"}, "next": {"/admin"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	// Admin with a non-admin next also lands on the home page
	w = postForm(r, "/login", url.Values{"username": {"carol"}, "password": {"adminpw"}, "next": {"/blog"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}
