package model

import (
	"fmt"
	"strings"
	"time"
)

// Role is the authorization scope of a user
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor:
		return true
	}
	return false
}

// ParseRole converts user input into a Role, defaulting to INSTRUCTOR when empty
func ParseRole(s string) (Role, error) {
	if s == "" {
		return RoleInstructor, nil
	}
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

// Gender of a user
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Valid reports whether g is one of the known genders
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// ParseGender converts user input into a Gender, defaulting to MALE when empty
func ParseGender(s string) (Gender, error) {
	if s == "" {
		return GenderMale, nil
	}
	g := Gender(strings.ToUpper(strings.TrimSpace(s)))
	if !g.Valid() {
		return "", fmt.Errorf("invalid gender %q", s)
	}
	return g, nil
}

// User represents an admin or instructor account
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Name          string    `gorm:"not null" json:"name"`
	Gender        Gender    `gorm:"type:varchar(10);not null;default:'MALE'" json:"gender"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string    `gorm:"not null" json:"-"` // Never expose password in JSON
	Role          Role      `gorm:"type:varchar(20);not null;default:'INSTRUCTOR';index" json:"role"`
	EmailVerified bool      `gorm:"default:false" json:"emailVerified"`

	// Relationships
	CourseInstructors []CourseInstructor `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Notices           []Notice           `gorm:"foreignKey:PostedByID;constraint:OnDelete:CASCADE" json:"-"`
	Responses         []Response         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	NoticeViews       []NoticeView       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// UserSummary is the public projection of a user embedded in other payloads
type UserSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role,omitempty"`
	Gender Gender `json:"gender,omitempty"`
}
