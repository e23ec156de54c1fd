package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment is a receipt image stored for a transaction. One receipt per
// transaction; re-uploading returns the existing record.
type Attachment struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"-"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"transaction_id"`
	WorkspaceID   uuid.UUID `gorm:"type:uuid;not null;index" json:"workspace_id"`
	FileName      string    `gorm:"size:255;not null" json:"file_name"`
	StorePath     string    `gorm:"size:512;not null" json:"store_path"`
	ThumbPath     string    `gorm:"size:512" json:"thumb_path"`
	ContentType   string    `gorm:"size:128" json:"content_type"`
	SizeBytes     int64     `json:"size_bytes"`
}

func (a *Attachment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
