package competitions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"writeuphub/cache"
	"writeuphub/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.User{}, &models.Post{}, &models.Tag{}, &models.PostTag{})
	return db
}

func setupTestModule(db *gorm.DB) *CompetitionModule {
	return NewCompetitionModule(db, cache.New(time.Minute))
}

func createTaggedPost(db *gorm.DB, tagID string, draft bool, createdAt time.Time) *models.Post {
	post := &models.Post{
		Title:      "Post",
		Slug:       "post-" + tagID + "-" + createdAt.Format("20060102150405"),
		Excerpt:    "excerpt",
		Content:    "content",
		CategoryID: "11111111-1111-1111-1111-111111111111",
		AuthorID:   "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		IsDraft:    draft,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	db.Create(post)
	db.Create(&models.PostTag{PostID: post.ID, TagID: tagID})
	return post
}

func TestLatest_OrdersByMostRecentPost(t *testing.T) {
	db := setupTestDB()
	m := setupTestModule(db)

	defcon := models.Tag{Name: "DEF CON"}
	pico := models.Tag{Name: "PicoCTF"}
	db.Create(&defcon)
	db.Create(&pico)

	createTaggedPost(db, defcon.ID, false, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))
	createTaggedPost(db, defcon.ID, false, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	createTaggedPost(db, defcon.ID, false, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	createTaggedPost(db, pico.ID, false, time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC))

	competitions, err := m.Latest(5)

	assert.NoError(t, err)
	assert.Len(t, competitions, 2)
	assert.Equal(t, "DEF CON", competitions[0].Name)
	assert.Equal(t, int64(3), competitions[0].PostCount)
	assert.Equal(t, "PicoCTF", competitions[1].Name)
	assert.Equal(t, int64(1), competitions[1].PostCount)
}

func TestLatest_DraftsNeverCounted(t *testing.T) {
	db := setupTestDB()
	m := setupTestModule(db)

	tag := models.Tag{Name: "HTB"}
	db.Create(&tag)

	createTaggedPost(db, tag.ID, false, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	createTaggedPost(db, tag.ID, true, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	competitions, err := m.Latest(5)

	assert.NoError(t, err)
	assert.Len(t, competitions, 1)
	assert.Equal(t, int64(1), competitions[0].PostCount)
}

func TestLatest_TagWithOnlyDraftsExcluded(t *testing.T) {
	db := setupTestDB()
	m := setupTestModule(db)

	tag := models.Tag{Name: "GhostCTF"}
	db.Create(&tag)
	createTaggedPost(db, tag.ID, true, time.Now())

	orphan := models.Tag{Name: "NoPosts"}
	db.Create(&orphan)

	competitions, err := m.Latest(5)

	assert.NoError(t, err)
	assert.Empty(t, competitions)
}

func TestLatest_Limit(t *testing.T) {
	db := setupTestDB()
	m := setupTestModule(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		tag := models.Tag{Name: "ctf-" + string(rune('a'+i))}
		db.Create(&tag)
		createTaggedPost(db, tag.ID, false, base.Add(time.Duration(i)*time.Hour))
	}

	competitions, err := m.Latest(2)

	assert.NoError(t, err)
	assert.Len(t, competitions, 2)
	assert.Equal(t, "ctf-d", competitions[0].Name)
	assert.Equal(t, "ctf-c", competitions[1].Name)
}
