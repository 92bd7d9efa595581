package controllers

import (
	"errors"
	"strings"

	"mentora/backend/config"
	"mentora/backend/models"
	"mentora/backend/services"
	"mentora/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type CompanionsController struct {
	companions *services.CompanionService
	cfg        *config.Config
}

func NewCompanionsController(companions *services.CompanionService, cfg *config.Config) *CompanionsController {
	return &CompanionsController{companions: companions, cfg: cfg}
}

type createCompanionRequest struct {
	Name            string `json:"name"`
	Subject         string `json:"subject"`
	Topic           string `json:"topic"`
	Style           string `json:"style"`
	Voice           string `json:"voice"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (r *createCompanionRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Subject) == "" {
		return errors.New("subject is required")
	}
	if strings.TrimSpace(r.Topic) == "" {
		return errors.New("topic is required")
	}
	if r.DurationMinutes <= 0 {
		return errors.New("duration_minutes must be positive")
	}
	return nil
}

func (cc *CompanionsController) CreateCompanion(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var req createCompanionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := req.validate(); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	companion := models.Companion{
		UserID:          userID,
		Name:            req.Name,
		Subject:         req.Subject,
		Topic:           req.Topic,
		Style:           req.Style,
		Voice:           req.Voice,
		DurationMinutes: req.DurationMinutes,
	}
	if err := cc.companions.Create(c.Context(), &companion); err != nil {
		return utils.InternalServerError(c, "Could not create companion")
	}

	return utils.Created(c, companion)
}

func (cc *CompanionsController) ListCompanions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	companions, err := cc.companions.List(c.Context(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load companions")
	}
	return c.JSON(fiber.Map{"companions": companions})
}

func (cc *CompanionsController) GetCompanion(c *fiber.Ctx) error {
	companion, err := cc.companions.Get(c.Context(), c.Params("id"))
	if errors.Is(err, services.ErrCompanionNotFound) {
		return utils.NotFound(c, "Companion not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"companion": companion})
}

func (cc *CompanionsController) RecordSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	err = cc.companions.RecordSession(c.Context(), c.Params("id"), userID)
	if errors.Is(err, services.ErrCompanionNotFound) {
		return utils.NotFound(c, "Companion not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not record session")
	}
	return c.JSON(fiber.Map{"message": "Session recorded"})
}

func (cc *CompanionsController) RecentSessions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	companions, err := cc.companions.RecentSessions(c.Context(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load sessions")
	}
	return c.JSON(fiber.Map{"companions": companions})
}

func (cc *CompanionsController) AddBookmark(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	err = cc.companions.AddBookmark(c.Context(), c.Params("id"), userID)
	if errors.Is(err, services.ErrCompanionNotFound) {
		return utils.NotFound(c, "Companion not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not add bookmark")
	}
	return c.JSON(fiber.Map{"message": "Bookmarked"})
}

func (cc *CompanionsController) RemoveBookmark(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	if err := cc.companions.RemoveBookmark(c.Context(), c.Params("id"), userID); err != nil {
		return utils.InternalServerError(c, "Could not remove bookmark")
	}
	return c.JSON(fiber.Map{"message": "Bookmark removed"})
}

func (cc *CompanionsController) BookmarkedCompanions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	companions, err := cc.companions.Bookmarked(c.Context(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load bookmarks")
	}
	return c.JSON(fiber.Map{"companions": companions})
}
