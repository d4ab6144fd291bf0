package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"modernblog/internal/db"
	"modernblog/internal/middleware"
	"modernblog/internal/models"
	"modernblog/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	homePerPage = 5
	blogPerPage = 10
)

type PostHandler struct{}

func NewPostHandler() *PostHandler {
	return &PostHandler{}
}

// fillCounts batch-fills like and comment counts for a page of posts.
func fillCounts(posts []models.Post) {
	if len(posts) == 0 {
		return
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}

	var likeCounts []countResult
	db.DB.Model(&models.Like{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&likeCounts)

	var commentCounts []countResult
	db.DB.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&commentCounts)

	likeMap := make(map[uint]int, len(likeCounts))
	for _, r := range likeCounts {
		likeMap[r.PostID] = r.Count
	}
	commentMap := make(map[uint]int, len(commentCounts))
	for _, r := range commentCounts {
		commentMap[r.PostID] = r.Count
	}

	for i := range posts {
		posts[i].LikeCount = likeMap[posts[i].ID]
		posts[i].CommentCount = commentMap[posts[i].ID]
	}
}

// feedPage is the cacheable portion of a listing page. Render data is
// rebuilt per request so session state never ends up in the cache.
type feedPage struct {
	Posts      []models.Post
	Pagination utils.Pagination
}

// listPage fetches one page of posts newest-first.
func listPage(page, perPage int) ([]models.Post, utils.Pagination) {
	var total int64
	db.DB.Model(&models.Post{}).Count(&total)

	pg := utils.Paginate(total, page, perPage)

	var posts []models.Post
	db.DB.Preload("User").
		Order("created_at DESC").
		Limit(pg.PerPage).
		Offset(pg.Offset()).
		Find(&posts)

	fillCounts(posts)
	return posts, pg
}

// Home is the landing feed, five posts per page.
func (h *PostHandler) Home(c *gin.Context) {
	page := utils.ParsePage(c.Query("page"))

	cacheKey := fmt.Sprintf("posts:home:page:%d", page)
	fp, ok := utils.GetCache().Get(cacheKey).(feedPage)
	if !ok {
		posts, pg := listPage(page, homePerPage)
		fp = feedPage{Posts: posts, Pagination: pg}
		utils.GetCache().Set(cacheKey, fp, 1*time.Minute)
	}

	Render(c, http.StatusOK, "home.html", gin.H{
		"Title":      "Home",
		"Posts":      fp.Posts,
		"Pagination": fp.Pagination,
	})
}

// Blog is the full listing, ten posts per page.
func (h *PostHandler) Blog(c *gin.Context) {
	posts, pg := listPage(utils.ParsePage(c.Query("page")), blogPerPage)

	Render(c, http.StatusOK, "blog.html", gin.H{
		"Title":      "Blog",
		"Posts":      posts,
		"Pagination": pg,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id := c.Param("id")

	var post models.Post
	if err := db.DB.Preload("User").First(&post, id).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Post not found")
		return
	}

	var comments []models.Comment
	db.DB.Preload("User").
		Where("post_id = ?", post.ID).
		Order("created_at ASC").
		Find(&comments)

	var likeCount int64
	db.DB.Model(&models.Like{}).Where("post_id = ?", post.ID).Count(&likeCount)

	Render(c, http.StatusOK, "post.html", gin.H{
		"Title":       post.Title,
		"Post":        post,
		"PostContent": utils.RenderMarkdown(post.Content),
		"Comments":    comments,
		"LikeCount":   likeCount,
	})
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "create_post.html", gin.H{
		"Title":       "New Post",
		"FormTitle":   "",
		"FormContent": "",
	})
}

func (h *PostHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	title := strings.TrimSpace(c.PostForm("title"))
	content := strings.TrimSpace(c.PostForm("content"))

	if title == "" || content == "" {
		Render(c, http.StatusBadRequest, "create_post.html", gin.H{
			"Title":       "New Post",
			"Error":       "Title and content are required!",
			"FormTitle":   title,
			"FormContent": content,
		})
		return
	}

	post := models.Post{
		UserID:  user.ID,
		Title:   title,
		Content: content,
	}
	if err := db.DB.Create(&post).Error; err != nil {
		Render(c, http.StatusInternalServerError, "create_post.html", gin.H{
			"Title":       "New Post",
			"Error":       "Could not create post",
			"FormTitle":   title,
			"FormContent": content,
		})
		return
	}

	// New post changes the first feed page
	utils.GetCache().Delete("posts:home:page:1")

	Flash(c, "Your post has been created!")
	c.Redirect(http.StatusFound, "/blog")
}

/// CreateComment accepts a JSON body {"content": ...} and persists a
// write-once comment against an existing post.
func (h *PostHandler) CreateComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var post models.Post
	if err := db.DB.First(&post, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Post not found"})
		return
	}

	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Comment cannot be empty"})
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: body.Content,
	}
	if err := db.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not save comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
