package model

import (
	"time"
)

// Course is a unit that instructors are assigned to and notices are posted on.
// Courses are never hard-deleted; IsDeleted hides them from listings while
// keeping their notices intact.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `gorm:"not null" json:"name"`
	Code        string    `gorm:"uniqueIndex;not null" json:"code"` // e.g. COURSE-7GQ2ZK
	Description string    `gorm:"type:text" json:"description"`
	IsDeleted   bool      `gorm:"default:false;index" json:"isDeleted"`

	// Relationships
	Instructors []CourseInstructor `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Notices     []Notice           `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// CourseInstructor assigns a user to a course. The composite primary key
// allows one row per (course, user) pair.
type CourseInstructor struct {
	CourseID  uint      `gorm:"primaryKey;autoIncrement:false" json:"courseId"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}
