package controllers

import (
	"errors"
	"io"
	"strings"

	"mentora/backend/config"
	"mentora/backend/services"
	"mentora/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type DocumentsController struct {
	documents *services.DocumentService
	cfg       *config.Config
}

func NewDocumentsController(documents *services.DocumentService, cfg *config.Config) *DocumentsController {
	return &DocumentsController{documents: documents, cfg: cfg}
}

// UploadDocument accepts a multipart PDF under the "file" field, extracts its
// text and stores it.
func (dc *DocumentsController) UploadDocument(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequest(c, "A PDF file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.BadRequest(c, "Could not read uploaded file")
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return utils.BadRequest(c, "Could not read uploaded file")
	}

	doc, err := dc.documents.Upload(c.Context(), userID, fileHeader.Filename, raw)
	if errors.Is(err, services.ErrEmptyDocument) {
		return utils.BadRequest(c, "Document contains no extractable text")
	}
	if err != nil {
		return utils.BadRequest(c, "Could not parse PDF: "+err.Error())
	}

	return utils.Created(c, doc)
}

func (dc *DocumentsController) ListDocuments(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, dc.cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	docs, err := dc.documents.List(c.Context(), userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load documents")
	}
	return c.JSON(fiber.Map{"documents": docs})
}

func (dc *DocumentsController) GetDocument(c *fiber.Ctx) error {
	doc, err := dc.documents.Get(c.Context(), c.Params("id"))
	if errors.Is(err, services.ErrDocumentNotFound) {
		return utils.NotFound(c, "Document not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"document": doc})
}

// Summarize returns the cached summary, generating it on first request.
func (dc *DocumentsController) Summarize(c *fiber.Ctx) error {
	summary, err := dc.documents.EnsureSummary(c.Context(), c.Params("id"))
	if errors.Is(err, services.ErrDocumentNotFound) {
		return utils.NotFound(c, "Document not found")
	}
	if err != nil {
		return utils.BadGateway(c, "Summary generation failed: "+err.Error())
	}
	return c.JSON(fiber.Map{"summary": summary})
}

type questionRequest struct {
	Question string `json:"question"`
}

func (dc *DocumentsController) AskQuestion(c *fiber.Ctx) error {
	var req questionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if strings.TrimSpace(req.Question) == "" {
		return utils.BadRequest(c, "question is required")
	}

	answer, err := dc.documents.Answer(c.Context(), c.Params("id"), req.Question)
	if errors.Is(err, services.ErrDocumentNotFound) {
		return utils.NotFound(c, "Document not found")
	}
	if err != nil {
		return utils.BadGateway(c, "Answer generation failed: "+err.Error())
	}
	return c.JSON(fiber.Map{"answer": answer})
}

func (dc *DocumentsController) GenerateQuiz(c *fiber.Ctx) error {
	quiz, err := dc.documents.GenerateQuiz(c.Context(), c.Params("id"))
	if errors.Is(err, services.ErrDocumentNotFound) {
		return utils.NotFound(c, "Document not found")
	}
	if err != nil {
		return utils.BadGateway(c, "Quiz generation failed: "+err.Error())
	}
	return c.JSON(fiber.Map{"quiz": quiz})
}
