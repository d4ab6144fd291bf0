package handlers

import (
	"net/http"

	"modernblog/internal/db"
	"modernblog/internal/middleware"
	"modernblog/internal/models"
	"modernblog/internal/services"
	"modernblog/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const adminPostsPerPage = 10

type AdminHandler struct {
	settings *services.SettingsService
}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{
		settings: services.NewSettingsService(),
	}
}

// NewAdminHandlerWithSettings lets tests supply a settings store
// backed by a temp file.
func NewAdminHandlerWithSettings(s *services.SettingsService) *AdminHandler {
	return &AdminHandler{settings: s}
}

// Dashboard shows aggregate counts plus the five most recent posts
// and comments.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	var totalPosts, totalUsers, totalComments int64
	db.DB.Model(&models.Post{}).Count(&totalPosts)
	db.DB.Model(&models.User{}).Count(&totalUsers)
	db.DB.Model(&models.Comment{}).Count(&totalComments)

	var recentPosts []models.Post
	db.DB.Preload("User").Order("created_at DESC").Limit(5).Find(&recentPosts)

	var recentComments []models.Comment
	db.DB.Preload("User").Preload("Post").Order("created_at DESC").Limit(5).Find(&recentComments)

	Render(c, http.StatusOK, "admin/dashboard.html", gin.H{
		"Title":          "Admin Dashboard",
		"TotalPosts":     totalPosts,
		"TotalUsers":     totalUsers,
		"TotalComments":  totalComments,
		"RecentPosts":    recentPosts,
		"RecentComments": recentComments,
	})
}

// ListPosts returns one JSON page of posts with denormalized author
// and count fields for the moderation table.
func (h *AdminHandler) ListPosts(c *gin.Context) {
	page := utils.ParsePage(c.Query("page"))

	var total int64
	db.DB.Model(&models.Post{}).Count(&total)
	pg := utils.Paginate(total, page, adminPostsPerPage)

	var posts []models.Post
	db.DB.Preload("User").
		Order("created_at DESC").
		Limit(pg.PerPage).
		Offset(pg.Offset()).
		Find(&posts)

	fillCounts(posts)

	items := make([]gin.H, 0, len(posts))
	for _, p := range posts {
		items = append(items, gin.H{
			"id":       p.ID,
			"title":    p.Title,
			"author":   p.User.Username,
			"date":     p.CreatedAt.Format("2006-01-02"),
			"likes":    p.LikeCount,
			"comments": p.CommentCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":       items,
		"has_next":    pg.HasNext,
		"has_prev":    pg.HasPrev,
		"total_pages": pg.TotalPages,
	})
}

// DeletePost removes a post together with its comments and likes in
// one transaction, so no orphan rows survive on either database.
func (h *AdminHandler) DeletePost(c *gin.Context) {
	var post models.Post
	if err := db.DB.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not delete post"})
		return
	}

	utils.GetCache().Delete("posts:home:page:1")

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListUsers returns user summaries with a joined post count.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var users []models.User
	db.DB.Order("id ASC").Find(&users)

	type postCount struct {
		UserID uint
		Count  int
	}
	var counts []postCount
	db.DB.Model(&models.Post{}).
		Select("user_id, COUNT(*) as count").
		Group("user_id").
		Scan(&counts)
	countMap := make(map[uint]int, len(counts))
	for _, r := range counts {
		countMap[r.UserID] = r.Count
	}

	items := make([]gin.H, 0, len(users))
	for _, u := range users {
		items = append(items, gin.H{
			"id":         u.ID,
			"username":   u.Username,
			"email":      u.Email,
			"is_admin":   u.IsAdmin,
			"post_count": countMap[u.ID],
		})
	}

	c.JSON(http.StatusOK, items)
}

// UpdateUser applies the is_admin flag only; any other fields in the
// payload are ignored.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var user models.User
	if err := db.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if v, ok := body["is_admin"].(bool); ok {
		if err := db.DB.Model(&user).Update("is_admin", v).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not update user"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListComments returns every comment, newest first, with the author
// username and post title joined in.
func (h *AdminHandler) ListComments(c *gin.Context) {
	var comments []models.Comment
	db.DB.Preload("User").Preload("Post").
		Order("created_at DESC").
		Find(&comments)

	items := make([]gin.H, 0, len(comments))
	for _, cm := range comments {
		items = append(items, gin.H{
			"id":         cm.ID,
			"content":    cm.Content,
			"author":     cm.User.Username,
			"post_title": cm.Post.Title,
			"date":       cm.CreatedAt.Format("2006-01-02"),
		})
	}

	c.JSON(http.StatusOK, items)
}

func (h *AdminHandler) DeleteComment(c *gin.Context) {
	var comment models.Comment
	if err := db.DB.First(&comment, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Comment not found"})
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetProfile returns the calling admin's own account summary.
func (h *AdminHandler) GetProfile(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var postCount int64
	db.DB.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&postCount)

	c.JSON(http.StatusOK, gin.H{
		"username":   user.Username,
		"email":      user.Email,
		"post_count": postCount,
		"join_date":  user.CreatedAt.Format("2006-01-02"),
	})
}

// UpdateProfile lets the calling admin change their email and/or
// password. A password change requires the current password to verify.
func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var body struct {
		Email           string `json:"email"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	updates := make(map[string]interface{})

	if body.Email != "" && body.Email != user.Email {
		var existing models.User
		if err := db.DB.Where("email = ? AND id != ?", body.Email, user.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email already taken"})
			return
		}
		updates["email"] = body.Email
	}

	if body.CurrentPassword != "" && body.NewPassword != "" {
		if !utils.CheckPasswordHash(body.CurrentPassword, user.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Current password is incorrect"})
			return
		}
		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not update password"})
			return
		}
		updates["password"] = hash
	}

	if len(updates) > 0 {
		if err := db.DB.Model(user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not update profile"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSettings serves the stored site settings, falling back to the
// defaults while nothing has been saved yet.
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not read settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PutSettings overwrites the stored settings wholesale.
func (h *AdminHandler) PutSettings(c *gin.Context) {
	var settings services.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request body"})
		return
	}

	if err := h.settings.Put(settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not save settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
