package controllers

import (
	"mentora/backend/services"
	"mentora/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ChatController struct {
	chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

// SessionMessages returns a session's messages in creation order. With
// ?coalesce=true adjacent same-role messages are merged into display turns;
// the stored rows are never altered.
func (cc *ChatController) SessionMessages(c *fiber.Ctx) error {
	messages, err := cc.chat.SessionMessages(c.Context(), c.Params("sessionId"))
	if err != nil {
		return utils.InternalServerError(c, "Could not load messages")
	}

	if c.QueryBool("coalesce") {
		return c.JSON(fiber.Map{"turns": services.CoalesceTurns(messages)})
	}
	return c.JSON(fiber.Map{"messages": messages})
}

// DeleteCompanionMessages is the administrative bulk cleanup: it removes every
// stored message for a companion.
func (cc *ChatController) DeleteCompanionMessages(c *fiber.Ctx) error {
	deleted, err := cc.chat.DeleteCompanionMessages(c.Context(), c.Params("id"))
	if err != nil {
		return utils.InternalServerError(c, "Could not delete messages")
	}
	return c.JSON(fiber.Map{"deleted": deleted})
}
