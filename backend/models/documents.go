package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document holds the extracted text of an uploaded PDF. Summary is filled in
// lazily on first request, like lesson content.
type Document struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"user_id"`
	Name      string    `json:"name"`
	Text      string    `json:"-"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
