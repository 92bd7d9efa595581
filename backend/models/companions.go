package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Companion is a user-defined voice/chat tutor persona.
type Companion struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"index" json:"user_id"`
	Name            string    `json:"name"`
	Subject         string    `json:"subject"`
	Topic           string    `json:"topic"`
	Style           string    `json:"style"` // formal, casual
	Voice           string    `json:"voice"` // male, female
	DurationMinutes int       `json:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionRecord marks one completed or started voice session with a companion,
// used for the "recent sessions" list.
type SessionRecord struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	CompanionID string    `gorm:"index" json:"companion_id"`
	UserID      string    `gorm:"index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type Bookmark struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	CompanionID string    `gorm:"index" json:"companion_id"`
	UserID      string    `gorm:"index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Companion) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (s *SessionRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
