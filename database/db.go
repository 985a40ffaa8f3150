package database

import (
	"fmt"
	"os"

	"barangay-portal-backend/config"
	"barangay-portal-backend/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Connect() {
	if err := godotenv.Load(); err != nil {
		config.GetLogger().Warn("no .env file found, using process environment")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Manila",
		envDefault("DB_HOST", "db"),
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"),
		envDefault("DB_PORT", "5432"))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		config.GetLogger().WithError(err).Error("database connection failed")
		panic("Could not connect to database")
	}
}

func AutoMigrate() {
	if err := DB.AutoMigrate(
		&models.DocumentRequest{},
		&models.ReportEntry{},
		&models.TransitionLog{},
		&models.IdempotencyKey{},
	); err != nil {
		config.GetLogger().WithError(err).Error("automigrate failed")
		panic("Could not migrate database")
	}
}
