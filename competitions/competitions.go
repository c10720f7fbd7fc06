package competitions

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"writeuphub/cache"
)

type CompetitionModule struct {
	db    *gorm.DB
	cache *cache.Store
}

func NewCompetitionModule(db *gorm.DB, store *cache.Store) *CompetitionModule {
	return &CompetitionModule{db: db, cache: store}
}

// Competition is a derived view over tags: every tag with at least one
// published post stands in for a CTF event. Nothing is persisted.
type Competition struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PostCount  int64     `json:"post_count"`
	LatestPost time.Time `json:"latest_post"`
}

func (m *CompetitionModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/competitions", m.cache.Middleware(), m.latest)
}

type competitionRow struct {
	ID         string `gorm:"column:id"`
	Name       string `gorm:"column:name"`
	PostCount  int64  `gorm:"column:post_count"`
	LatestPost string `gorm:"column:latest_post"`
}

// sqlite hands aggregate expressions back as text, so MAX(created_at) is
// scanned as a string and parsed against the driver's timestamp layouts.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	time.RFC3339Nano,
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Latest summarizes tag activity: published-post count and most recent
// post date per tag, most recently active first. Tags whose posts are all
// drafts never appear since the inner join drops them.
func (m *CompetitionModule) Latest(limit int) ([]Competition, error) {
	if limit < 1 {
		limit = 5
	}

	var rows []competitionRow
	err := m.db.Table("tags").
		Select("tags.id, tags.name, COUNT(posts.id) AS post_count, MAX(posts.created_at) AS latest_post").
		Joins("INNER JOIN post_tags ON post_tags.tag_id = tags.id").
		Joins("INNER JOIN posts ON posts.id = post_tags.post_id").
		Where("posts.is_draft = ?", false).
		Group("tags.id").
		Order("latest_post DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	competitions := make([]Competition, 0, len(rows))
	for _, r := range rows {
		competitions = append(competitions, Competition{
			ID:         r.ID,
			Name:       r.Name,
			PostCount:  r.PostCount,
			LatestPost: parseTimestamp(r.LatestPost),
		})
	}
	return competitions, nil
}

func (m *CompetitionModule) latest(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	competitions, err := m.Latest(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load competitions"})
		return
	}

	c.JSON(http.StatusOK, competitions)
}
