package database

import (
	"log"

	"gorm.io/gorm"

	"writeuphub/categories"
	"writeuphub/models"
)

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Post{},
		&models.Tag{},
		&models.PostTag{},
		&models.Like{},
		&models.Comment{},
	)

	if err != nil {
		log.Printf("Error running migrations: %v", err)
		return err
	}

	if err := SeedCategories(db); err != nil {
		log.Printf("Error seeding categories: %v", err)
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}

// SeedCategories inserts the canonical category set if missing. Existing
// rows are left alone so renames done by operators survive restarts.
func SeedCategories(db *gorm.DB) error {
	for _, cat := range categories.Defaults() {
		var existing models.Category
		err := db.Where("id = ?", cat.ID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := db.Create(&cat).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
