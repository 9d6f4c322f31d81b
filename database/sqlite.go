package database

import (
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite opens a SQLite store at path, for local development and tests.
// An in-memory database lives on a single connection, so the pool is
// pinned to one.
func OpenSQLite(path string, gormLogger logger.Interface) (*GORMStore, error) {
	if path == "" {
		path = "noticeboard.db"
	}
	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(withForeignKeys(path)), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Errorw("unable to open SQLite database", "path", path, "error", err)
		return nil, err
	}

	if strings.Contains(path, ":memory:") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	log.Infof("Opened SQLite database at %s", path)
	return &GORMStore{db: db}, nil
}

// withForeignKeys turns on foreign key enforcement, which SQLite leaves off
// per connection unless asked
func withForeignKeys(path string) string {
	if strings.Contains(path, "_foreign_keys=") || strings.Contains(path, "_fk=") {
		return path
	}
	if strings.Contains(path, "?") {
		return path + "&_foreign_keys=on"
	}
	return path + "?_foreign_keys=on"
}
