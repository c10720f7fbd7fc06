package categories

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"writeuphub/common"
	"writeuphub/models"
)

type CategoryModule struct {
	db *gorm.DB
}

func NewCategoryModule(db *gorm.DB) *CategoryModule {
	return &CategoryModule{db: db}
}

// Descriptor is the display information for a canonical category,
// assigned once when the category row is created.
type Descriptor struct {
	Label string
	Icon  string
	Color string
}

var descriptors = map[string]Descriptor{
	"web":       {Label: "Web Exploitation", Icon: "globe", Color: "#22d3ee"},
	"crypto":    {Label: "Cryptography", Icon: "key", Color: "#a78bfa"},
	"forensics": {Label: "Digital Forensics", Icon: "search", Color: "#34d399"},
	"reverse":   {Label: "Reverse Engineering", Icon: "binary", Color: "#fbbf24"},
	"pwn":       {Label: "Binary Exploitation", Icon: "terminal", Color: "#f87171"},
	"misc":      {Label: "Miscellaneous", Icon: "puzzle", Color: "#9ca3af"},
}

// Fixed identifiers for the canonical set, so a fresh database resolves the
// same category names to the same ids as an existing one.
var canonicalIDs = map[string]string{
	"web":       "11111111-1111-1111-1111-111111111111",
	"crypto":    "22222222-2222-2222-2222-222222222222",
	"forensics": "33333333-3333-3333-3333-333333333333",
	"reverse":   "44444444-4444-4444-4444-444444444444",
	"pwn":       "55555555-5555-5555-5555-555555555555",
	"misc":      "66666666-6666-6666-6666-666666666666",
}

// Defaults returns the canonical categories with their display descriptors,
// used to seed the categories table.
func Defaults() []models.Category {
	var cats []models.Category
	for name, id := range canonicalIDs {
		d := descriptors[name]
		cats = append(cats, models.Category{
			ID:    id,
			Name:  name,
			Icon:  d.Icon,
			Color: d.Color,
		})
	}
	return cats
}

// DescriptorFor returns the display descriptor for a category name,
// falling back to the misc descriptor for anything unrecognized.
func DescriptorFor(name string) Descriptor {
	if d, ok := descriptors[strings.ToLower(name)]; ok {
		return d
	}
	return descriptors["misc"]
}

func (m *CategoryModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/categories", m.list)
}

func (m *CategoryModule) List() ([]models.Category, error) {
	var cats []models.Category
	err := m.db.Find(&cats).Error
	return cats, err
}

// Resolve maps a free-form category token to a canonical category id.
// A token that is already a valid UUID is returned as-is without checking
// that the row exists; anything else is matched case-insensitively against
// the category names in the table.
func (m *CategoryModule) Resolve(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		token = "misc"
	}

	if uuid.Validate(token) == nil {
		return token, nil
	}

	cats, err := m.List()
	if err != nil {
		return "", err
	}

	for _, cat := range cats {
		if strings.EqualFold(cat.Name, token) {
			if uuid.Validate(cat.ID) != nil {
				return "", fmt.Errorf("category %q has malformed id %q: %w", token, cat.ID, common.ErrInvalidCategory)
			}
			return cat.ID, nil
		}
	}

	return "", fmt.Errorf("unknown category %q: %w", token, common.ErrInvalidCategory)
}

func (m *CategoryModule) list(c *gin.Context) {
	cats, err := m.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, cats)
}
