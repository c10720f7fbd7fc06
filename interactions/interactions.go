package interactions

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"writeuphub/auth"
	"writeuphub/common"
	"writeuphub/models"
)

type InteractionModule struct {
	db *gorm.DB
}

func NewInteractionModule(db *gorm.DB) *InteractionModule {
	return &InteractionModule{db: db}
}

func (m *InteractionModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/posts/:id/likes", m.likes)
	router.GET("/api/posts/:id/comments", m.comments)

	authed := router.Group("/api")
	authed.Use(auth.RequireAuth)
	{
		authed.POST("/posts/:id/like", m.toggleLike)
		authed.POST("/posts/:id/comments", m.addComment)
	}
}

type LikeStatus struct {
	Likes    int64 `json:"likes"`
	HasLiked bool  `json:"hasLiked"`
}

// ToggleLike flips the user's like on a post. HasLiked reports the new
// state: true when this call added the like. The check-then-write pair is
// not atomic; two racing toggles can both insert.
func (m *InteractionModule) ToggleLike(postID, userID string) (*LikeStatus, error) {
	if userID == "" {
		return nil, fmt.Errorf("like requires a session: %w", common.ErrUnauthorized)
	}

	var existing []models.Like
	if err := m.db.Where("post_id = ? AND user_id = ?", postID, userID).Find(&existing).Error; err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		err := m.db.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Like{}).Error
		if err != nil {
			return nil, err
		}
	} else {
		like := models.Like{PostID: postID, UserID: userID, CreatedAt: time.Now()}
		if err := m.db.Create(&like).Error; err != nil {
			return nil, err
		}
	}

	count, err := m.likeCount(postID)
	if err != nil {
		return nil, err
	}

	return &LikeStatus{Likes: count, HasLiked: len(existing) == 0}, nil
}

// Likes reports the total and, when userID is set, whether that user has
// liked the post. Anonymous callers always get HasLiked false.
func (m *InteractionModule) Likes(postID, userID string) (*LikeStatus, error) {
	hasLiked := false
	if userID != "" {
		var n int64
		err := m.db.Model(&models.Like{}).
			Where("post_id = ? AND user_id = ?", postID, userID).
			Count(&n).Error
		if err != nil {
			return nil, err
		}
		hasLiked = n > 0
	}

	count, err := m.likeCount(postID)
	if err != nil {
		return nil, err
	}

	return &LikeStatus{Likes: count, HasLiked: hasLiked}, nil
}

func (m *InteractionModule) likeCount(postID string) (int64, error) {
	var n int64
	err := m.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

type CommentAuthor struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type CommentView struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	User      CommentAuthor `json:"user"`
}

type commentRow struct {
	ID        string
	Content   string
	CreatedAt time.Time
	UserName  string `gorm:"column:user_name"`
	UserImage string `gorm:"column:user_image"`
}

func toCommentView(r commentRow) CommentView {
	author := CommentAuthor{Name: r.UserName, Image: r.UserImage}
	if author.Name == "" {
		// orphaned comment rows keep rendering under a placeholder author
		author.Name = "Unknown"
	}
	return CommentView{
		ID:        r.ID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		User:      author,
	}
}

func (m *InteractionModule) AddComment(postID, userID, content string) (*CommentView, error) {
	if userID == "" {
		return nil, fmt.Errorf("comment requires a session: %w", common.ErrUnauthorized)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content is required: %w", common.ErrValidation)
	}

	comment := models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := m.db.Create(&comment).Error; err != nil {
		return nil, err
	}

	var rows []commentRow
	err := m.db.Table("comments").
		Select("comments.id, comments.content, comments.created_at, users.name AS user_name, users.image AS user_image").
		Joins("LEFT JOIN users ON users.id = comments.user_id").
		Where("comments.id = ?", comment.ID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("comment %s: %w", comment.ID, common.ErrNotFound)
	}

	view := toCommentView(rows[0])
	return &view, nil
}

func (m *InteractionModule) Comments(postID string) ([]CommentView, error) {
	var rows []commentRow
	err := m.db.Table("comments").
		Select("comments.id, comments.content, comments.created_at, users.name AS user_name, users.image AS user_image").
		Joins("LEFT JOIN users ON users.id = comments.user_id").
		Where("comments.post_id = ?", postID).
		Order("comments.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(rows))
	for _, r := range rows {
		views = append(views, toCommentView(r))
	}
	return views, nil
}

func respondError(c *gin.Context, err error) {
	c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error(), "kind": common.Kind(err)})
}

func (m *InteractionModule) toggleLike(c *gin.Context) {
	status, err := m.ToggleLike(c.Param("id"), auth.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (m *InteractionModule) likes(c *gin.Context) {
	status, err := m.Likes(c.Param("id"), auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load likes"})
		return
	}
	c.JSON(http.StatusOK, status)
}

type commentRequest struct {
	Content string `json:"content"`
}

func (m *InteractionModule) addComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "kind": "validation"})
		return
	}

	comment, err := m.AddComment(c.Param("id"), auth.CurrentUserID(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (m *InteractionModule) comments(c *gin.Context) {
	comments, err := m.Comments(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comments"})
		return
	}
	c.JSON(http.StatusOK, comments)
}
