package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Email     string    `gorm:"size:256;unique;not null" json:"email"`
	Password  string    `gorm:"type:text" json:"-"` // json:"-" prevents the hash from being exposed in API responses
	Image     string    `gorm:"size:256" json:"image"`
	Role      string    `gorm:"size:50;default:viewer" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Category is static reference data. Icon and Color are the display
// descriptor, assigned when the category is created, not matched at render time.
type Category struct {
	ID    string `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string `gorm:"size:256;not null" json:"name"`
	Icon  string `gorm:"size:50" json:"icon"`
	Color string `gorm:"size:50" json:"color"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

type Post struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string    `gorm:"size:256;not null" json:"title"`
	Slug       string    `gorm:"size:256;unique;not null" json:"slug"` // generated once at creation, never regenerated
	Excerpt    string    `gorm:"type:text;not null" json:"excerpt"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CategoryID string    `gorm:"type:uuid;not null;index" json:"category_id"`
	AuthorID   string    `gorm:"type:uuid;not null;index" json:"author_id"`
	IsDraft    bool      `gorm:"not null;default:false;index" json:"is_draft"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Tag names are effectively unique: writes look up by name before inserting.
// No database-level unique constraint, matching the lazy upsert semantics.
type Tag struct {
	ID   string `gorm:"type:uuid;primaryKey" json:"id"`
	Name string `gorm:"size:256;not null;index" json:"name"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

type PostTag struct {
	ID     uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID string `gorm:"type:uuid;not null;index" json:"post_id"`
	TagID  string `gorm:"type:uuid;not null;index" json:"tag_id"`
}

// Like has no uniqueness constraint on (post, user); at-most-one is
// enforced by the check-then-insert toggle in the interactions module.
type Like struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    string    `gorm:"type:uuid;not null;index" json:"post_id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
