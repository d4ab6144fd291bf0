package handlers

import (
	"net/http"

	"modernblog/internal/db"
	"modernblog/internal/middleware"
	"modernblog/internal/models"

	"github.com/gin-gonic/gin"
)

type LikeHandler struct{}

func NewLikeHandler() *LikeHandler {
	return &LikeHandler{}
}

// Toggle creates the like if the (user, post) pair has none, removes
// it otherwise, and returns the post's new like total. Check and act
// run in one transaction; the unique index on (user_id, post_id)
// catches a racing insert, which we fold into the recount.
func (h *LikeHandler) Toggle(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var post models.Post
	if err := db.DB.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
		return
	}

	tx := db.DB.Begin()

	var existing models.Like
	if err := tx.Where("user_id = ? AND post_id = ?", user.ID, post.ID).First(&existing).Error; err == nil {
		// Toggle off
		if err := tx.Delete(&existing).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not remove like"})
			return
		}
		tx.Commit()
	} else {
		// Toggle on
		like := models.Like{UserID: user.ID, PostID: post.ID}
		if err := tx.Create(&like).Error; err != nil {
			// A concurrent toggle won the insert; the pair stays at one row
			tx.Rollback()
		} else {
			tx.Commit()
		}
	}

	var likes int64
	db.DB.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likes)

	c.JSON(http.StatusOK, gin.H{"success": true, "likes": likes})
}
