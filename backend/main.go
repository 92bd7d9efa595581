package main

import (
	"context"
	"log"

	"mentora/backend/config"
	"mentora/backend/llm"
	"mentora/backend/middleware"
	"mentora/backend/routes"
	"mentora/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(cfg.LogFormat)
	defer logger.Sync()

	// Initialize the Gemini generator
	gen, err := llm.NewGeminiGenerator(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("Error initializing generator: %v", err)
	}
	defer gen.Close()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20, // PDF uploads
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, gen, logger)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
