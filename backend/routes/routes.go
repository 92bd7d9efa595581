package routes

import (
	"time"

	"mentora/backend/config"
	"mentora/backend/controllers"
	"mentora/backend/llm"
	"mentora/backend/middleware"
	"mentora/backend/services"
	"mentora/backend/voice"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, gen llm.Generator, logger *zap.Logger) {
	timeout := time.Duration(cfg.GenerationTimeoutSeconds) * time.Second

	structure := services.NewStructureGenerator(gen)
	courseService := services.NewCourseService(db, structure, logger, timeout)
	contentService := services.NewContentService(courseService, gen, logger, timeout)
	companionService := services.NewCompanionService(db)
	chatService := services.NewChatService(db)
	documentService := services.NewDocumentService(db, gen, logger, timeout)

	dispatcher := voice.NewDispatcher()
	recorder := voice.NewRecorder(chatService, logger)
	dispatcher.Subscribe(recorder.Handle)

	authMiddleware := middleware.AuthMiddleware(cfg)

	// Courses
	coursesController := controllers.NewCoursesController(courseService, contentService, gen, logger)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.ListCourses)
	courses.Post("/", coursesController.SearchOrGenerate)
	courses.Get("/:id", coursesController.GetCourse)
	courses.Put("/:id", coursesController.UpdateCourse)
	courses.Post("/:id/viewer", coursesController.ViewLesson)
	courses.Post("/:id/chat", coursesController.LessonChat)

	// Companions
	companionsController := controllers.NewCompanionsController(companionService, cfg)
	companions := app.Group("/api/companions", authMiddleware)
	companions.Post("/", companionsController.CreateCompanion)
	companions.Get("/", companionsController.ListCompanions)
	companions.Get("/bookmarked", companionsController.BookmarkedCompanions)
	companions.Get("/:id", companionsController.GetCompanion)
	companions.Post("/:id/bookmark", companionsController.AddBookmark)
	companions.Delete("/:id/bookmark", companionsController.RemoveBookmark)
	companions.Post("/:id/sessions", companionsController.RecordSession)

	// Chat log
	chatController := controllers.NewChatController(chatService)
	companions.Delete("/:id/messages", chatController.DeleteCompanionMessages)
	app.Get("/api/sessions/recent", authMiddleware, companionsController.RecentSessions)
	app.Get("/api/sessions/:sessionId/messages", authMiddleware, chatController.SessionMessages)

	// Voice webhook: authenticated by the provider's shared secret, not a user token.
	voiceController := controllers.NewVoiceController(dispatcher, cfg)
	app.Post("/api/voice/events", voiceController.HandleEvent)

	// Documents
	documentsController := controllers.NewDocumentsController(documentService, cfg)
	documents := app.Group("/api/documents", authMiddleware)
	documents.Post("/", documentsController.UploadDocument)
	documents.Get("/", documentsController.ListDocuments)
	documents.Get("/:id", documentsController.GetDocument)
	documents.Post("/:id/summary", documentsController.Summarize)
	documents.Post("/:id/question", documentsController.AskQuestion)
	documents.Post("/:id/quiz", documentsController.GenerateQuiz)
}
