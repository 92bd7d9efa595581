package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage rows are append-only: never updated, never deleted individually.
// The only delete path is the bulk cleanup per companion.
type ChatMessage struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	CompanionID string    `gorm:"index" json:"companion_id"`
	UserID      string    `gorm:"index" json:"user_id"`
	SessionID   string    `gorm:"index" json:"session_id"`
	Role        ChatRole  `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// ChatTurn is a display-level grouping of adjacent same-role messages. It is
// derived on read; the stored rows are untouched.
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}
