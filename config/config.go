package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadENV loads the environment variables from .env when GO_ENV is unset or development.
// A missing .env file is not an error; the process environment is used as-is.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	return nil
}

type EnvironmentVariable struct {
	GO_ENV       string
	DB_DRIVER    string // postgres (default) or sqlite
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// JWT Configuration
	JWT_SECRET string
	JWT_ISSUER string
	JWT_EXPIRY time.Duration
	// HTTP
	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int // 0 disables the global limiter
	RATE_LIMIT_WINDOW   time.Duration
	// Redis Configuration (login brute force protection)
	REDIS_URL string
	// Bulk instructor import
	DEFAULT_PASSWORD string
	// Seeding
	ADMIN_EMAIL    string
	ADMIN_PASSWORD string
	// SMTP Configuration
	SMTP_HOST     string
	SMTP_PORT     int
	SMTP_USERNAME string
	SMTP_PASSWORD string
	SMTP_FROM     string
	// Roster archive (S3 compatible)
	ROSTER_BUCKET     string
	SPACES_ACCESS_KEY string
	SPACES_SECRET_KEY string
	SPACES_REGION     string
	SPACES_ENDPOINT   string
}

// IsDevelopment reports whether error details may be exposed to clients.
// Only an explicit GO_ENV=development enables it.
func (e *EnvironmentVariable) IsDevelopment() bool {
	return e.GO_ENV == "development"
}

func Get() (*EnvironmentVariable, error) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 5000
	}

	smtpPort, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		smtpPort = 587
	}

	jwtExpiry, err := time.ParseDuration(os.Getenv("JWT_EXPIRY"))
	if err != nil || jwtExpiry <= 0 {
		jwtExpiry = 24 * time.Hour
	}

	rateLimit, err := strconv.Atoi(os.Getenv("RATE_LIMIT_REQUESTS"))
	if err != nil || rateLimit < 0 {
		rateLimit = 100
	}

	rateWindow, err := time.ParseDuration(os.Getenv("RATE_LIMIT_WINDOW"))
	if err != nil || rateWindow <= 0 {
		rateWindow = time.Minute
	}

	envVariables := &EnvironmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_DRIVER:    strings.ToLower(getEnvOrDefault("DB_DRIVER", "postgres")),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getEnvOrDefault("DB_HOST", "localhost"),
		DB_PORT:      getEnvOrDefault("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnvOrDefault("DB_SSL_MODE", "disable"),
		PORT:         port,
		// JWT
		JWT_SECRET: os.Getenv("JWT_SECRET"),
		JWT_ISSUER: getEnvOrDefault("JWT_ISSUER", "noticeboard-api"),
		JWT_EXPIRY: jwtExpiry,
		// HTTP
		ALLOWED_ORIGINS:     getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173"),
		RATE_LIMIT_REQUESTS: rateLimit,
		RATE_LIMIT_WINDOW:   rateWindow,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Import
		DEFAULT_PASSWORD: os.Getenv("DEFAULT_PASSWORD"),
		// Seeding
		ADMIN_EMAIL:    strings.TrimSpace(os.Getenv("ADMIN_EMAIL")),
		ADMIN_PASSWORD: os.Getenv("ADMIN_PASSWORD"),
		// SMTP
		SMTP_HOST:     os.Getenv("SMTP_HOST"),
		SMTP_PORT:     smtpPort,
		SMTP_USERNAME: os.Getenv("SMTP_USERNAME"),
		SMTP_PASSWORD: os.Getenv("SMTP_PASSWORD"),
		SMTP_FROM:     getEnvOrDefault("SMTP_FROM", "noreply@noticeboard.local"),
		// Roster archive
		ROSTER_BUCKET:     os.Getenv("ROSTER_BUCKET"),
		SPACES_ACCESS_KEY: os.Getenv("SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY: os.Getenv("SPACES_SECRET_KEY"),
		SPACES_REGION:     getEnvOrDefault("SPACES_REGION", "us-east-1"),
		SPACES_ENDPOINT:   os.Getenv("SPACES_ENDPOINT"),
	}

	if envVariables.JWT_SECRET == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set")
	}

	return envVariables, nil
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
