package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"writeuphub/auth"
	"writeuphub/cache"
	"writeuphub/categories"
	"writeuphub/common"
	"writeuphub/competitions"
	"writeuphub/database"
	"writeuphub/interactions"
	"writeuphub/writeups"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	db := common.ConnectDb()
	if db == nil {
		log.Fatal("Failed to connect to database")
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	router := gin.Default()

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET environment variable not set")
	}

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   false,
	})

	router.Use(sessions.Sessions("writeuphub-session", store))

	listingCache := cache.New(5 * time.Minute)

	authModule := auth.NewAuthModule(db)
	authModule.RegisterRoutes(router)

	categoryModule := categories.NewCategoryModule(db)
	categoryModule.RegisterRoutes(router)

	writeupModule := writeups.NewWriteupModule(db, categoryModule, listingCache)
	writeupModule.RegisterRoutes(router)

	competitionModule := competitions.NewCompetitionModule(db, listingCache)
	competitionModule.RegisterRoutes(router)

	interactionModule := interactions.NewInteractionModule(db)
	interactionModule.RegisterRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
