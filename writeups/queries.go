package writeups

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"writeuphub/models"
)

type Summary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Excerpt      string    `json:"excerpt"`
	CreatedAt    time.Time `json:"created_at"`
	CategoryName string    `json:"category_name"`
	Author       string    `json:"author"`
	Tags         []string  `json:"tags"`
}

type Detail struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Excerpt      string    `json:"excerpt"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	CategoryID   string    `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Author       string    `json:"author"`
	IsDraft      bool      `json:"is_draft"`
	Tags         []string  `json:"tags"`
}

type AuthorPost struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Slug         string    `json:"slug"`
	Excerpt      string    `json:"excerpt"`
	CreatedAt    time.Time `json:"created_at"`
	CategoryName string    `json:"category_name"`
	IsDraft      bool      `json:"is_draft"`
}

type RelatedPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	CreatedAt time.Time `json:"created_at"`
}

type ListParams struct {
	Page       int
	Limit      int
	CategoryID string
	Search     string
}

type ListResult struct {
	Posts      []Summary `json:"posts"`
	TotalCount int64     `json:"total_count"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
}

type summaryRow struct {
	ID           string
	Title        string
	Slug         string
	Excerpt      string
	CreatedAt    time.Time
	CategoryName string `gorm:"column:category_name"`
	AuthorName   string `gorm:"column:author_name"`
	TagNames     string `gorm:"column:tag_names"`
}

const summarySelect = "posts.id, posts.title, posts.slug, posts.excerpt, posts.created_at, " +
	"categories.name AS category_name, users.name AS author_name, " +
	"GROUP_CONCAT(DISTINCT tags.name) AS tag_names"

// summaryQuery builds the shared shape of the listing reads: posts joined
// with category and author names plus a de-duplicated aggregated tag list.
func (m *WriteupModule) summaryQuery() *gorm.DB {
	return m.db.Table("posts").
		Select(summarySelect).
		Joins("LEFT JOIN categories ON categories.id = posts.category_id").
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("LEFT JOIN tags ON tags.id = post_tags.tag_id").
		Group("posts.id")
}

func splitTagNames(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func toSummaries(rows []summaryRow) []Summary {
	summaries := make([]Summary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, Summary{
			ID:           r.ID,
			Title:        r.Title,
			Slug:         r.Slug,
			Excerpt:      r.Excerpt,
			CreatedAt:    r.CreatedAt,
			CategoryName: r.CategoryName,
			Author:       r.AuthorName,
			Tags:         splitTagNames(r.TagNames),
		})
	}
	return summaries
}

// FetchAll returns one page of published posts plus the total count under
// the same filter, so callers can derive a page count.
func (m *WriteupModule) FetchAll(params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}
	offset := (params.Page - 1) * params.Limit

	q := m.summaryQuery().Where("posts.is_draft = ?", false)
	countQ := m.db.Model(&models.Post{}).Where("is_draft = ?", false)

	if params.CategoryID != "" {
		q = q.Where("posts.category_id = ?", params.CategoryID)
		countQ = countQ.Where("category_id = ?", params.CategoryID)
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		q = q.Where("posts.title LIKE ?", pattern)
		countQ = countQ.Where("title LIKE ?", pattern)
	}

	var rows []summaryRow
	err := q.Order("posts.created_at DESC").
		Limit(params.Limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var total int64
	if err := countQ.Count(&total).Error; err != nil {
		return nil, err
	}

	return &ListResult{
		Posts:      toSummaries(rows),
		TotalCount: total,
		Page:       params.Page,
		Limit:      params.Limit,
	}, nil
}

func (m *WriteupModule) Latest(limit int) ([]Summary, error) {
	if limit < 1 {
		limit = 3
	}

	var rows []summaryRow
	err := m.summaryQuery().
		Where("posts.is_draft = ?", false).
		Order("posts.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toSummaries(rows), nil
}

type detailRow struct {
	ID           string
	Title        string
	Slug         string
	Excerpt      string
	Content      string
	CreatedAt    time.Time
	CategoryID   string `gorm:"column:category_id"`
	CategoryName string `gorm:"column:category_name"`
	AuthorName   string `gorm:"column:author_name"`
	IsDraft      bool   `gorm:"column:is_draft"`
	TagNames     string `gorm:"column:tag_names"`
}

const detailSelect = "posts.id, posts.title, posts.slug, posts.excerpt, posts.content, " +
	"posts.created_at, posts.category_id, posts.is_draft, " +
	"categories.name AS category_name, users.name AS author_name, " +
	"GROUP_CONCAT(DISTINCT tags.name) AS tag_names"

func (m *WriteupModule) detailQuery() *gorm.DB {
	return m.db.Table("posts").
		Select(detailSelect).
		Joins("LEFT JOIN categories ON categories.id = posts.category_id").
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("LEFT JOIN tags ON tags.id = post_tags.tag_id").
		Group("posts.id")
}

func toDetail(r detailRow) *Detail {
	return &Detail{
		ID:           r.ID,
		Title:        r.Title,
		Slug:         r.Slug,
		Excerpt:      r.Excerpt,
		Content:      r.Content,
		CreatedAt:    r.CreatedAt,
		CategoryID:   r.CategoryID,
		CategoryName: r.CategoryName,
		Author:       r.AuthorName,
		IsDraft:      r.IsDraft,
		Tags:         splitTagNames(r.TagNames),
	}
}

// BySlug fetches a single published post. The slug is URL-decoded first
// since it arrives straight from a path segment. Returns nil, nil when
// nothing matches.
func (m *WriteupModule) BySlug(slug string) (*Detail, error) {
	decoded, err := url.PathUnescape(slug)
	if err != nil {
		decoded = slug
	}

	var rows []detailRow
	err = m.detailQuery().
		Where("posts.slug = ? AND posts.is_draft = ?", decoded, false).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDetail(rows[0]), nil
}

// ByID does not exclude drafts: it backs the author's own edit view.
func (m *WriteupModule) ByID(id string) (*Detail, error) {
	var rows []detailRow
	err := m.detailQuery().
		Where("posts.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDetail(rows[0]), nil
}

// ByTag lists every published writeup carrying the given tag, which is
// the set of posts belonging to one competition.
func (m *WriteupModule) ByTag(tagID string) ([]Summary, error) {
	var rows []summaryRow
	err := m.db.Table("posts").
		Select(summarySelect).
		Joins("INNER JOIN post_tags AS wanted ON wanted.post_id = posts.id AND wanted.tag_id = ?", tagID).
		Joins("LEFT JOIN categories ON categories.id = posts.category_id").
		Joins("LEFT JOIN users ON users.id = posts.author_id").
		Joins("LEFT JOIN post_tags ON post_tags.post_id = posts.id").
		Joins("LEFT JOIN tags ON tags.id = post_tags.tag_id").
		Where("posts.is_draft = ?", false).
		Group("posts.id").
		Order("posts.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return toSummaries(rows), nil
}

func (m *WriteupModule) Related(currentPostID, categoryID string, limit int) ([]RelatedPost, error) {
	if limit < 1 {
		limit = 2
	}

	var related []RelatedPost
	err := m.db.Model(&models.Post{}).
		Select("id, title, slug, excerpt, created_at").
		Where("category_id = ? AND id <> ? AND is_draft = ?", categoryID, currentPostID, false).
		Order("created_at DESC").
		Limit(limit).
		Scan(&related).Error
	if err != nil {
		return nil, err
	}
	return related, nil
}

// ByAuthor returns the author's posts, drafts included, newest first.
// A malformed user id yields an empty list rather than an error.
func (m *WriteupModule) ByAuthor(userID string) ([]AuthorPost, error) {
	if uuid.Validate(userID) != nil {
		return []AuthorPost{}, nil
	}

	var posts []AuthorPost
	err := m.db.Table("posts").
		Select("posts.id, posts.title, posts.slug, posts.excerpt, posts.created_at, posts.is_draft, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = posts.category_id").
		Where("posts.author_id = ?", userID).
		Order("posts.created_at DESC").
		Scan(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
