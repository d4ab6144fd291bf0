package db

import (
	"log"
	"os"

	"modernblog/internal/models"
	"modernblog/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=modernblog port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedAdmin()
}

// Migrate runs AutoMigrate for all entities. Split out so tests can
// run it against their own connection.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
	)
}

// seedAdmin creates the initial administrator account from the
// environment when no admin exists yet.
func seedAdmin() {
	var count int64
	DB.Model(&models.User{}).Where("is_admin = ?", true).Count(&count)
	if count > 0 {
		return
	}

	username := os.Getenv("ADMIN_USERNAME")
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || email == "" || password == "" {
		log.Println("No admin account found and ADMIN_* env vars not set, skipping admin seed")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}

	admin := models.User{
		Username: username,
		Email:    email,
		Password: hash,
		IsAdmin:  true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Failed to create admin user %s: %v", username, err)
		return
	}
	log.Printf("Initial admin user %s created", username)
}
