package model

import (
	"time"
)

// Notice is an announcement posted to a course. Notices have no edit path.
type Notice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CourseID   uint      `gorm:"not null;index" json:"courseId"`
	PostedByID uint      `gorm:"not null;index" json:"postedById"`

	// Relationships
	Responses []Response   `gorm:"foreignKey:NoticeID;constraint:OnDelete:CASCADE" json:"-"`
	Views     []NoticeView `gorm:"foreignKey:NoticeID;constraint:OnDelete:CASCADE" json:"-"`
}

// Response is an append-only reply in a notice thread
type Response struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	NoticeID  uint      `gorm:"not null;index" json:"noticeId"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
}

// NoticeView records that a user has opened a notice. At most one row exists
// per (user, notice); the first view wins.
type NoticeView struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	NoticeID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"noticeId"`
	CreatedAt time.Time `json:"createdAt"`
}
