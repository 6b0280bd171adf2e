package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Skotchmaster/stores_api/internal/models"
)

type Config struct {
	DB_HOST     string
	DB_PORT     string
	DB_USER     string
	DB_PASSWORD string
	DB_NAME     string

	ES_URL      string
	ES_USER     string
	ES_PASSWORD string

	KAFKA_ADDRESS string

	JWT_SECRET       string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	ResetTTL         time.Duration
	FrontendResetURL string

	MAILER_API_KEY string
	MAILER_FROM    string

	HTTP_ADDR string
	LOG_LEVEL string
}

// Load reads .env if present and then the environment. An empty JWT_SECRET
// is a configuration error: callers treat it as fatal at startup.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_HOST:          os.Getenv("DB_HOST"),
		DB_PORT:          os.Getenv("DB_PORT"),
		DB_USER:          os.Getenv("DB_USER"),
		DB_PASSWORD:      os.Getenv("DB_PASSWORD"),
		DB_NAME:          os.Getenv("DB_NAME"),
		ES_URL:           os.Getenv("ES_URL"),
		ES_USER:          os.Getenv("ES_USER"),
		ES_PASSWORD:      os.Getenv("ES_PASSWORD"),
		KAFKA_ADDRESS:    os.Getenv("KAFKA_ADDRESS"),
		JWT_SECRET:       os.Getenv("JWT_SECRET"),
		FrontendResetURL: os.Getenv("FRONTEND_RESET_URL"),
		MAILER_API_KEY:   os.Getenv("MAILER_API_KEY"),
		MAILER_FROM:      os.Getenv("MAILER_FROM"),
		HTTP_ADDR:        getDefault("HTTP_ADDR", ":8080"),
		LOG_LEVEL:        getDefault("LOG_LEVEL", "info"),
		AccessTTL:        time.Duration(getIntDefault("JWT_ACCESS_MINUTES", 60)) * time.Minute,
		RefreshTTL:       time.Duration(getIntDefault("JWT_REFRESH_DAYS", 30)) * 24 * time.Hour,
		ResetTTL:         time.Duration(getIntDefault("PASSWORD_RESET_TTL_MINUTES", 60)) * time.Minute,
	}

	if config.JWT_SECRET == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}

	return config, nil
}

func getDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Notice: %s=%q is not a number, using %d", key, v, def)
		return def
	}
	return n
}

func (c *Config) InitDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB_USER, c.DB_PASSWORD, c.DB_HOST, c.DB_PORT, c.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("не удалось выполнить миграцию: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.TokenBlocklistEntry{},
		&models.PasswordResetToken{},
		&models.Store{},
		&models.Item{},
		&models.Tag{},
	)
}
