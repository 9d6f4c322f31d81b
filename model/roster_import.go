package model

import (
	"time"

	"gorm.io/datatypes"
)

// RosterImport is the audit record of one bulk instructor upload
type RosterImport struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"createdAt"`
	UploadedByID uint           `gorm:"not null;index" json:"uploadedById"`
	FileName     string         `gorm:"type:varchar(255)" json:"fileName"`
	ArchiveURL   string         `gorm:"type:varchar(512)" json:"archiveUrl,omitempty"`
	Succeeded    int            `gorm:"not null;default:0" json:"succeeded"`
	Failed       int            `gorm:"not null;default:0" json:"failed"`
	Errors       datatypes.JSON `json:"errors,omitempty"` // []string of per-row failure reasons
}
