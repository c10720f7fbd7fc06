package interactions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"writeuphub/common"
	"writeuphub/models"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&models.User{}, &models.Post{}, &models.Like{}, &models.Comment{})
	return db
}

func createTestUser(db *gorm.DB, email string) *models.User {
	user := &models.User{
		Name:     "Commenter",
		Email:    email,
		Password: "hashedpassword",
		Image:    "https://example.com/avatar.png",
	}
	db.Create(user)
	return user
}

func createTestPost(db *gorm.DB, authorID string) *models.Post {
	post := &models.Post{
		Title:      "Post",
		Slug:       "post-slug",
		Excerpt:    "excerpt",
		Content:    "content",
		CategoryID: "11111111-1111-1111-1111-111111111111",
		AuthorID:   authorID,
	}
	db.Create(post)
	return post
}

func TestToggleLike_Pair(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)
	user := createTestUser(db, "a@example.com")
	post := createTestPost(db, user.ID)

	first, err := m.ToggleLike(post.ID, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), first.Likes)
	assert.True(t, first.HasLiked)

	second, err := m.ToggleLike(post.ID, user.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), second.Likes)
	assert.False(t, second.HasLiked)
}

func TestToggleLike_IndependentUsers(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)
	alice := createTestUser(db, "alice@example.com")
	bob := createTestUser(db, "bob@example.com")
	post := createTestPost(db, alice.ID)

	_, err := m.ToggleLike(post.ID, alice.ID)
	assert.NoError(t, err)

	status, err := m.ToggleLike(post.ID, bob.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), status.Likes)
	assert.True(t, status.HasLiked)
}

func TestToggleLike_RequiresUser(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)

	_, err := m.ToggleLike("some-post", "")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestLikes_AnonymousNeverHasLiked(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)
	user := createTestUser(db, "a@example.com")
	post := createTestPost(db, user.ID)

	_, err := m.ToggleLike(post.ID, user.ID)
	assert.NoError(t, err)

	status, err := m.Likes(post.ID, "")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), status.Likes)
	assert.False(t, status.HasLiked)

	own, err := m.Likes(post.ID, user.ID)
	assert.NoError(t, err)
	assert.True(t, own.HasLiked)
}

func TestAddComment_ReturnsAuthorInfo(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)
	user := createTestUser(db, "a@example.com")
	post := createTestPost(db, user.ID)

	comment, err := m.AddComment(post.ID, user.ID, "great writeup")

	assert.NoError(t, err)
	assert.Equal(t, "great writeup", comment.Content)
	assert.Equal(t, "Commenter", comment.User.Name)
	assert.Equal(t, "https://example.com/avatar.png", comment.User.Image)
}

func TestAddComment_RequiresContent(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)
	user := createTestUser(db, "a@example.com")
	post := createTestPost(db, user.ID)

	_, err := m.AddComment(post.ID, user.ID, "   ")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAddComment_RequiresUser(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)

	_, err := m.AddComment("some-post", "", "content")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestComments_NewestFirst(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)
	user := createTestUser(db, "a@example.com")
	post := createTestPost(db, user.ID)

	old := models.Comment{
		PostID:    post.ID,
		UserID:    user.ID,
		Content:   "first",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	db.Create(&old)

	recent := models.Comment{
		PostID:    post.ID,
		UserID:    user.ID,
		Content:   "second",
		CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	db.Create(&recent)

	comments, err := m.Comments(post.ID)

	assert.NoError(t, err)
	assert.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, "first", comments[1].Content)
}

func TestComments_OrphanedUserFallsBackToUnknown(t *testing.T) {
	db := setupTestDB()
	m := NewInteractionModule(db)
	user := createTestUser(db, "a@example.com")
	post := createTestPost(db, user.ID)

	orphan := models.Comment{
		PostID:  post.ID,
		UserID:  "dddddddd-dddd-dddd-dddd-dddddddddddd",
		Content: "who wrote this",
	}
	db.Create(&orphan)

	comments, err := m.Comments(post.ID)

	assert.NoError(t, err)
	assert.Len(t, comments, 1)
	assert.Equal(t, "Unknown", comments[0].User.Name)
	assert.Equal(t, "", comments[0].User.Image)
}
