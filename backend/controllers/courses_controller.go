package controllers

import (
	"errors"
	"strings"

	"mentora/backend/llm"
	"mentora/backend/models"
	"mentora/backend/services"
	"mentora/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CoursesController struct {
	courses *services.CourseService
	content *services.ContentService
	gen     llm.Generator
	log     *zap.Logger
}

func NewCoursesController(courses *services.CourseService, content *services.ContentService, gen llm.Generator, log *zap.Logger) *CoursesController {
	return &CoursesController{courses: courses, content: content, gen: gen, log: log}
}

func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	courses, err := cc.courses.List(c.Context())
	if err != nil {
		return utils.InternalServerError(c, "Could not load courses")
	}
	return c.JSON(fiber.Map{"courses": courses})
}

type generateCourseRequest struct {
	Query      string            `json:"query"`
	Difficulty models.Difficulty `json:"difficulty"`
}

func (r *generateCourseRequest) validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query is required")
	}
	if !r.Difficulty.Valid() {
		return errors.New("difficulty must be Beginner, Intermediate or Advanced")
	}
	return nil
}

// SearchOrGenerate runs the full search-or-generate flow: an existing course
// matching the query and difficulty is returned as-is, otherwise a new one is
// generated and persisted.
func (cc *CoursesController) SearchOrGenerate(c *fiber.Ctx) error {
	var req generateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := req.validate(); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	onStatus := func(msg string) {
		cc.log.Info(msg, zap.String("query", req.Query))
	}

	course, isNew, err := cc.courses.SearchOrGenerate(c.Context(), req.Query, req.Difficulty, onStatus)
	if err != nil {
		return utils.BadGateway(c, "Course generation failed: "+err.Error())
	}

	return c.JSON(fiber.Map{
		"course": course,
		"is_new": isNew,
	})
}

func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	course, err := cc.courses.Get(c.Context(), c.Params("id"))
	if errors.Is(err, services.ErrCourseNotFound) {
		return utils.NotFound(c, "Course not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"course": course})
}

type updateCourseRequest struct {
	ModuleID    string `json:"module_id"`
	LessonID    string `json:"lesson_id"`
	Content     string `json:"content"`
	ImageBase64 string `json:"image_base64"`
}

func (r *updateCourseRequest) validate() error {
	if r.Content == "" && r.ImageBase64 == "" {
		return errors.New("nothing to update: supply content and/or image_base64")
	}
	if r.Content != "" && (r.ModuleID == "" || r.LessonID == "") {
		return errors.New("module_id and lesson_id are required when updating lesson content")
	}
	return nil
}

// UpdateCourse is a partial update: content writes exactly one lesson's body,
// image_base64 replaces the cover image. Both may be supplied together.
func (cc *CoursesController) UpdateCourse(c *fiber.Ctx) error {
	courseID := c.Params("id")

	var req updateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := req.validate(); err != nil {
		return utils.BadRequest(c, err.Error())
	}

	if req.Content != "" {
		err := cc.courses.UpdateLesson(c.Context(), courseID, req.ModuleID, req.LessonID, req.Content)
		if errors.Is(err, services.ErrLessonNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		if err != nil {
			return utils.InternalServerError(c, "Could not update lesson")
		}
	}

	if req.ImageBase64 != "" {
		err := cc.courses.UpdateCover(c.Context(), courseID, req.ImageBase64)
		if errors.Is(err, services.ErrCourseNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		if err != nil {
			return utils.InternalServerError(c, "Could not update cover image")
		}
	}

	course, err := cc.courses.Get(c.Context(), courseID)
	if errors.Is(err, services.ErrCourseNotFound) {
		return utils.NotFound(c, "Course not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"course": course})
}

type viewLessonRequest struct {
	ModuleIndex int `json:"module_index"`
	LessonIndex int `json:"lesson_index"`
}

// ViewLesson positions a viewer on one lesson, materializing its content on
// first view, and returns the lesson with the tutor greeting.
func (cc *CoursesController) ViewLesson(c *fiber.Ctx) error {
	course, err := cc.courses.Get(c.Context(), c.Params("id"))
	if errors.Is(err, services.ErrCourseNotFound) {
		return utils.NotFound(c, "Course not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var req viewLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	viewer := services.NewViewer(course, cc.content, cc.gen)
	lesson, err := viewer.Select(c.Context(), req.ModuleIndex, req.LessonIndex)
	if err != nil {
		if errors.Is(err, services.ErrIndexOutOfRange) {
			return utils.BadRequest(c, err.Error())
		}
		if errors.Is(err, services.ErrLessonNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.BadGateway(c, "Lesson could not be prepared: "+err.Error())
	}

	return c.JSON(fiber.Map{
		"lesson":       lesson,
		"greeting":     viewer.Greeting(),
		"module_index": req.ModuleIndex,
		"lesson_index": req.LessonIndex,
	})
}

type lessonChatRequest struct {
	ModuleIndex int               `json:"module_index"`
	LessonIndex int               `json:"lesson_index"`
	Message     string            `json:"message"`
	History     []models.ChatTurn `json:"history"`
}

// LessonChat answers one tutoring question grounded in the active lesson.
func (cc *CoursesController) LessonChat(c *fiber.Ctx) error {
	course, err := cc.courses.Get(c.Context(), c.Params("id"))
	if errors.Is(err, services.ErrCourseNotFound) {
		return utils.NotFound(c, "Course not found")
	}
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var req lessonChatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if strings.TrimSpace(req.Message) == "" {
		return utils.BadRequest(c, "message is required")
	}

	viewer := services.NewViewer(course, cc.content, cc.gen)
	if _, err := viewer.Select(c.Context(), req.ModuleIndex, req.LessonIndex); err != nil {
		if errors.Is(err, services.ErrIndexOutOfRange) {
			return utils.BadRequest(c, err.Error())
		}
		if errors.Is(err, services.ErrLessonNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.BadGateway(c, "Lesson could not be prepared: "+err.Error())
	}
	viewer.RestoreTranscript(req.History)

	reply, err := viewer.Ask(c.Context(), req.Message)
	if err != nil {
		return utils.BadGateway(c, "Tutor reply failed: "+err.Error())
	}

	return c.JSON(fiber.Map{
		"reply":      reply,
		"transcript": viewer.Transcript(),
	})
}
