package voice

import (
	"context"
	"time"

	"mentora/backend/models"

	"go.uber.org/zap"
)

// Appender is the slice of the chat store the recorder needs.
type Appender interface {
	Append(ctx context.Context, message *models.ChatMessage) error
}

// Recorder subscribes to the dispatcher and persists final transcripts as
// chat messages, building the append-only conversation log for a session.
type Recorder struct {
	chat Appender
	log  *zap.Logger
}

func NewRecorder(chat Appender, log *zap.Logger) *Recorder {
	return &Recorder{chat: chat, log: log.With(zap.String("service", "voice_recorder"))}
}

func (r *Recorder) Handle(event Event) {
	if event.Type != EventMessage || !event.Final || event.Transcript == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	message := models.ChatMessage{
		CompanionID: event.CompanionID,
		UserID:      event.UserID,
		SessionID:   event.SessionID,
		Role:        event.Role,
		Content:     event.Transcript,
	}
	if err := r.chat.Append(ctx, &message); err != nil {
		r.log.Error("failed to persist transcript",
			zap.String("session_id", event.SessionID),
			zap.Error(err),
		)
	}
}
