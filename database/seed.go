package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/model"
	"github.com/sahilchouksey/noticeboard-api/utils/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMissingAdminCredentials is returned when ADMIN_EMAIL or ADMIN_PASSWORD is unset
var ErrMissingAdminCredentials = errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment variables")

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll(adminEmail, adminPassword string) error {
	log.Info("Starting database seeding...")

	if _, err := s.SeedAdminUser(adminEmail, adminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Info("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the admin account if no user holds the e-mail yet.
// An existing account is left untouched.
func (s *Seeder) SeedAdminUser(adminEmail, adminPassword string) (*model.User, error) {
	adminEmail = strings.TrimSpace(adminEmail)
	if adminEmail == "" || adminPassword == "" {
		return nil, ErrMissingAdminCredentials
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Name:          "Admin User",
		Gender:        model.GenderMale,
		Email:         adminEmail,
		PasswordHash:  passwordHash,
		Role:          model.RoleAdmin,
		EmailVerified: true,
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(admin).Error
	if err != nil {
		return nil, err
	}

	var seeded model.User
	if err := s.db.Where("email = ?", adminEmail).First(&seeded).Error; err != nil {
		return nil, err
	}

	log.Infof("Admin user seeded: %s", seeded.Email)
	return &seeded, nil
}
