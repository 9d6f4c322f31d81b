package database

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/config"
	"github.com/sahilchouksey/noticeboard-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage defines the lifecycle of the relational store backing the API
type Storage interface {
	Init() error
	Close() error
	HealthCheck() error
	GetDB() *gorm.DB
}

type GORMStore struct {
	db *gorm.DB
}

// NewGORMStore wraps an already opened connection, used by tests and tools
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{db: db}
}

// StartGORM opens the store selected by DB_DRIVER
func StartGORM(env *config.EnvironmentVariable) (*GORMStore, error) {
	if env.DB_DRIVER == "sqlite" {
		return OpenSQLite(env.DB_NAME, gormLoggerFor(env))
	}
	return startPostgres(env)
}

func gormLoggerFor(env *config.EnvironmentVariable) logger.Interface {
	if env.GO_ENV == "production" {
		return logger.Default.LogMode(logger.Error)
	}
	return logger.Default.LogMode(logger.Info)
}

// PostgresDSN builds the key/value connection string understood by both
// pgx and lib/pq
func PostgresDSN(env *config.EnvironmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// startPostgres initializes a pooled GORM connection to PostgreSQL. Errors
// are left untranslated; see errors.go.
func startPostgres(env *config.EnvironmentVariable) (*GORMStore, error) {
	db, err := gorm.Open(postgres.Open(PostgresDSN(env)), &gorm.Config{
		Logger:      gormLoggerFor(env),
		PrepareStmt: true,
	})
	if err != nil {
		log.Errorw("unable to connect to PostgreSQL", "error", err)
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info("Successfully connected to PostgreSQL Database with GORM.")

	return &GORMStore{db: db}, nil
}

// Init runs the AutoMigrate to create/update tables
func (s *GORMStore) Init() error {
	log.Info("Running GORM AutoMigrate for all models...")
	if err := Migrate(s.db); err != nil {
		log.Errorw("AutoMigrate failed", "error", err)
		return err
	}
	log.Info("GORM AutoMigrate completed successfully!")
	return nil
}

// Migrate creates or updates every table the API owns
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseInstructor{},
		&model.Notice{},
		&model.Response{},
		&model.NoticeView{},
		&model.RosterImport{},
	)
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	log.Info("Closing GORM database connection...")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in services/handlers
func (s *GORMStore) GetDB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
