package writeups

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"writeuphub/auth"
	"writeuphub/cache"
	"writeuphub/categories"
	"writeuphub/common"
)

type WriteupModule struct {
	db         *gorm.DB
	categories *categories.CategoryModule
	cache      *cache.Store
}

// markdown renderer configured with Goldmark and useful extensions
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithUnsafe(), // allow raw HTML passthrough in Markdown
	),
)

func NewWriteupModule(db *gorm.DB, cats *categories.CategoryModule, store *cache.Store) *WriteupModule {
	return &WriteupModule{db: db, categories: cats, cache: store}
}

func (m *WriteupModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/posts", m.postsByTag)

	api := router.Group("/api")
	{
		api.GET("/writeups", m.cache.Middleware(), m.list)
		api.GET("/writeups/latest", m.cache.Middleware(), m.latest)
		api.GET("/writeups/:slug", m.bySlug)
	}

	authed := router.Group("/api")
	authed.Use(auth.RequireAuth)
	{
		authed.POST("/writeups", m.create)
		authed.PUT("/writeups/:id", m.update)
		authed.POST("/writeups/drafts", m.saveDraft)
		authed.DELETE("/writeups/:id", m.remove)
		authed.GET("/writeups/id/:id", m.byID)
		authed.GET("/me/writeups", m.mine)
	}
}

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// on renderer failure, fall back to the raw content
		return content
	}
	return buf.String()
}

func respondError(c *gin.Context, err error) {
	c.JSON(common.ErrorStatus(err), gin.H{"error": err.Error(), "kind": common.Kind(err)})
}

func (m *WriteupModule) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := m.FetchAll(ListParams{
		Page:       page,
		Limit:      limit,
		CategoryID: c.Query("category"),
		Search:     c.Query("search"),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load writeups"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (m *WriteupModule) latest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))

	posts, err := m.Latest(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load writeups"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

func (m *WriteupModule) bySlug(c *gin.Context) {
	post, err := m.BySlug(c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load writeup"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Writeup not found", "kind": "not_found"})
		return
	}

	related, err := m.Related(post.ID, post.CategoryID, 2)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load writeup"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":         post,
		"content_html": renderMarkdown(post.Content),
		"related":      related,
	})
}

// postsByTag backs GET /api/posts?tagId=<id>.
func (m *WriteupModule) postsByTag(c *gin.Context) {
	tagID := c.Query("tagId")
	if tagID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing tagId"})
		return
	}

	posts, err := m.ByTag(tagID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load posts"})
		return
	}

	c.JSON(http.StatusOK, posts)
}

type createRequest struct {
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Content  string   `json:"content"`
	IsDraft  bool     `json:"is_draft"`
	Tags     []string `json:"tags"`
}

func (m *WriteupModule) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "kind": "validation"})
		return
	}

	post, err := m.Create(CreateInput{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		AuthorID: auth.CurrentUserID(c),
		IsDraft:  req.IsDraft,
		Tags:     req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	m.cache.Clear()
	c.JSON(http.StatusCreated, post)
}

type updateRequest struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Excerpt    string    `json:"excerpt"`
	IsDraft    bool      `json:"is_draft"`
	CategoryID string    `json:"category_id"`
	Tags       *[]string `json:"tags"` // pointer so an absent field is distinct from []
}

func (m *WriteupModule) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "kind": "validation"})
		return
	}

	in := UpdateInput{
		ID:         c.Param("id"),
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		IsDraft:    req.IsDraft,
		CategoryID: req.CategoryID,
	}
	if req.Tags != nil {
		tags := *req.Tags
		if tags == nil {
			tags = []string{}
		}
		in.Tags = tags
	}

	post, err := m.Update(in)
	if err != nil {
		respondError(c, err)
		return
	}

	m.cache.Clear()
	c.JSON(http.StatusOK, post)
}

type draftRequest struct {
	Title    string    `json:"title"`
	Category string    `json:"category"`
	Content  string    `json:"content"`
	DraftID  string    `json:"draft_id"`
	Tags     *[]string `json:"tags"`
}

func (m *WriteupModule) saveDraft(c *gin.Context) {
	var req draftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "kind": "validation"})
		return
	}

	in := DraftInput{
		Title:    req.Title,
		Category: req.Category,
		Content:  req.Content,
		AuthorID: auth.CurrentUserID(c),
		DraftID:  req.DraftID,
	}
	if req.Tags != nil {
		tags := *req.Tags
		if tags == nil {
			tags = []string{}
		}
		in.Tags = tags
	}

	post, err := m.SaveDraft(in)
	if err != nil {
		respondError(c, err)
		return
	}

	m.cache.Clear()
	c.JSON(http.StatusOK, post)
}

func (m *WriteupModule) remove(c *gin.Context) {
	if err := m.Delete(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	m.cache.Clear()
	c.JSON(http.StatusOK, gin.H{"message": "Writeup deleted"})
}

func (m *WriteupModule) byID(c *gin.Context) {
	post, err := m.ByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load writeup"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Writeup not found", "kind": "not_found"})
		return
	}

	c.JSON(http.StatusOK, post)
}

func (m *WriteupModule) mine(c *gin.Context) {
	posts, err := m.ByAuthor(auth.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load writeups"})
		return
	}

	c.JSON(http.StatusOK, posts)
}
