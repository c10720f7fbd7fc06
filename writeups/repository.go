package writeups

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"writeuphub/common"
	"writeuphub/models"
)

const (
	excerptLimit       = 150
	slugSuffixLength   = 5
	slugSuffixAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slug lowercases the title, collapses whitespace runs into hyphens and
// appends a short random suffix. Uniqueness is not re-checked before insert;
// the unique constraint on posts.slug is the backstop.
func Slug(title string) string {
	base := whitespaceRun.ReplaceAllString(strings.ToLower(title), "-")
	return base + "-" + randomSuffix(slugSuffixLength)
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("slug suffix: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = slugSuffixAlphabet[int(b)%len(slugSuffixAlphabet)]
	}
	return string(buf)
}

// Excerpt returns the content unchanged when it fits, otherwise the first
// 150 characters with an ellipsis marker. Pure function of the content.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLimit {
		return content
	}
	return string(runes[:excerptLimit]) + "..."
}

type CreateInput struct {
	Title    string
	Category string
	Content  string
	AuthorID string
	IsDraft  bool
	Tags     []string
}

type UpdateInput struct {
	ID         string
	Title      string
	Content    string
	Excerpt    string
	IsDraft    bool
	CategoryID string
	Tags       []string // nil leaves existing tag links untouched; non-nil replaces them
}

type DraftInput struct {
	Title    string
	Category string
	Content  string
	AuthorID string
	DraftID  string
	Tags     []string
}

func (m *WriteupModule) Create(in CreateInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("title and content are required: %w", common.ErrValidation)
	}

	categoryID, err := m.categories.Resolve(in.Category)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		Title:      in.Title,
		Slug:       Slug(in.Title),
		Excerpt:    Excerpt(in.Content),
		Content:    in.Content,
		CategoryID: categoryID,
		AuthorID:   in.AuthorID,
		IsDraft:    in.IsDraft,
	}

	if err := m.db.Create(&post).Error; err != nil {
		return nil, err
	}

	if err := m.attachTags(post.ID, in.Tags); err != nil {
		return nil, err
	}

	return &post, nil
}

func (m *WriteupModule) Update(in UpdateInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("title and content are required: %w", common.ErrValidation)
	}

	updates := map[string]interface{}{
		"title":       in.Title,
		"content":     in.Content,
		"excerpt":     in.Excerpt,
		"is_draft":    in.IsDraft,
		"category_id": in.CategoryID,
		"updated_at":  time.Now(),
	}

	result := m.db.Model(&models.Post{}).Where("id = ?", in.ID).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("post %s: %w", in.ID, common.ErrNotFound)
	}

	if in.Tags != nil {
		if err := m.replaceTags(in.ID, in.Tags); err != nil {
			return nil, err
		}
	}

	var post models.Post
	if err := m.db.First(&post, "id = ?", in.ID).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// SaveDraft updates the named draft when DraftID is set, leaving the draft
// flag alone so publishing stays a separate, explicit step. Without a
// DraftID it inserts a new draft post.
func (m *WriteupModule) SaveDraft(in DraftInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", common.ErrValidation)
	}

	categoryID, err := m.categories.Resolve(in.Category)
	if err != nil {
		return nil, err
	}

	if in.DraftID != "" {
		updates := map[string]interface{}{
			"title":       in.Title,
			"content":     in.Content,
			"excerpt":     Excerpt(in.Content),
			"category_id": categoryID,
			"updated_at":  time.Now(),
		}

		result := m.db.Model(&models.Post{}).Where("id = ?", in.DraftID).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, fmt.Errorf("draft %s: %w", in.DraftID, common.ErrNotFound)
		}

		if in.Tags != nil {
			if err := m.replaceTags(in.DraftID, in.Tags); err != nil {
				return nil, err
			}
		}

		var post models.Post
		if err := m.db.First(&post, "id = ?", in.DraftID).Error; err != nil {
			return nil, err
		}
		return &post, nil
	}

	post := models.Post{
		Title:      in.Title,
		Slug:       Slug(in.Title),
		Excerpt:    Excerpt(in.Content),
		Content:    in.Content,
		CategoryID: categoryID,
		AuthorID:   in.AuthorID,
		IsDraft:    true,
	}

	if err := m.db.Create(&post).Error; err != nil {
		return nil, err
	}

	if err := m.attachTags(post.ID, in.Tags); err != nil {
		return nil, err
	}

	return &post, nil
}

// Delete removes the post's tag links first, then the post itself.
// The two statements are not wrapped in a transaction, matching the
// per-statement atomicity model of the rest of the write paths.
func (m *WriteupModule) Delete(id string) error {
	if err := m.db.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}

	result := m.db.Where("id = ?", id).Delete(&models.Post{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("post %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// attachTags upserts each tag by exact name and links it to the post.
// The lookup-then-insert pair is not atomic; concurrent writers proposing
// the same new name can produce duplicate tag rows.
func (m *WriteupModule) attachTags(postID string, tagNames []string) error {
	for _, name := range tagNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var tag models.Tag
		err := m.db.Where("name = ?", name).First(&tag).Error
		if err == gorm.ErrRecordNotFound {
			tag = models.Tag{Name: name}
			if err := m.db.Create(&tag).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var existing models.PostTag
		err = m.db.Where("post_id = ? AND tag_id = ?", postID, tag.ID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			link := models.PostTag{PostID: postID, TagID: tag.ID}
			if err := m.db.Create(&link).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

// replaceTags implements full-replace semantics: all existing links go,
// then the supplied set is attached. An empty set leaves the post untagged.
func (m *WriteupModule) replaceTags(postID string, tagNames []string) error {
	if err := m.db.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	return m.attachTags(postID, tagNames)
}
