package controllers

import (
	"crypto/subtle"
	"errors"

	"mentora/backend/config"
	"mentora/backend/models"
	"mentora/backend/utils"
	"mentora/backend/voice"

	"github.com/gofiber/fiber/v2"
)

// VoiceController ingests event callbacks from the realtime voice provider
// and republishes them as typed events on the dispatcher.
type VoiceController struct {
	dispatcher *voice.Dispatcher
	cfg        *config.Config
}

func NewVoiceController(dispatcher *voice.Dispatcher, cfg *config.Config) *VoiceController {
	return &VoiceController{dispatcher: dispatcher, cfg: cfg}
}

type voiceEventRequest struct {
	Type        string `json:"type"`
	CompanionID string `json:"companion_id"`
	UserID      string `json:"user_id"`
	SessionID   string `json:"session_id"`
	Role        string `json:"role"`
	Transcript  string `json:"transcript"`
	Final       bool   `json:"final"`
	Error       string `json:"error"`
}

func (r *voiceEventRequest) validate() error {
	switch voice.EventType(r.Type) {
	case voice.EventCallStart, voice.EventCallEnd, voice.EventMessage,
		voice.EventSpeechStart, voice.EventSpeechEnd, voice.EventError:
	default:
		return errors.New("unknown event type")
	}
	if r.SessionID == "" {
		return errors.New("session_id is required")
	}
	if voice.EventType(r.Type) == voice.EventMessage {
		switch models.ChatRole(r.Role) {
		case models.RoleUser, models.RoleAssistant:
		default:
			return errors.New("message events require role user or assistant")
		}
	}
	return nil
}

func (vc *VoiceController) HandleEvent(c *fiber.Ctx) error {
	secret := vc.cfg.VoiceWebhookSecret
	if secret == "" || subtle.ConstantTimeCompare([]byte(c.Get("X-Webhook-Secret")), []byte(secret)) != 1 {
		return utils.Unauthorized(c, "Invalid webhook secret")
	}

	var req voiceEventRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := req.validate(); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	vc.dispatcher.Publish(voice.Event{
		Type:        voice.EventType(req.Type),
		CompanionID: req.CompanionID,
		UserID:      req.UserID,
		SessionID:   req.SessionID,
		Role:        models.ChatRole(req.Role),
		Transcript:  req.Transcript,
		Final:       req.Final,
		Err:         req.Error,
	})

	return c.JSON(fiber.Map{"message": "Event accepted"})
}
