package services

import (
	"context"
	"fmt"

	"mentora/backend/models"

	"gorm.io/gorm"
)

// ChatService stores the companion conversation log. Messages are append-only:
// rows are never updated and never deleted individually. The bulk cleanup per
// companion is the only delete path.
type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

func (s *ChatService) Append(ctx context.Context, message *models.ChatMessage) error {
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

// SessionMessages returns the session's messages ordered by creation time.
func (s *ChatService) SessionMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list session messages: %w", err)
	}
	return messages, nil
}

// DeleteCompanionMessages removes every message for a companion. This is the
// administrative cleanup path; there is no per-row delete.
func (s *ChatService) DeleteCompanionMessages(ctx context.Context, companionID string) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("companion_id = ?", companionID).
		Delete(&models.ChatMessage{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete companion messages: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CoalesceTurns merges adjacent same-role messages into display turns. Purely
// a read-side transformation; stored rows are untouched.
func CoalesceTurns(messages []models.ChatMessage) []models.ChatTurn {
	var turns []models.ChatTurn
	for _, msg := range messages {
		if n := len(turns); n > 0 && turns[n-1].Role == msg.Role {
			turns[n-1].Content += " " + msg.Content
			continue
		}
		turns = append(turns, models.ChatTurn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}
