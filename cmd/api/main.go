package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"jobfit/candidate-matcher/internal/config"
	"jobfit/candidate-matcher/internal/handlers"
	"jobfit/candidate-matcher/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	// Initialize pipeline services
	extractor := services.NewDocumentExtractor()
	composer := services.NewPromptComposer(cfg.Pipeline.MaxDocumentChars)

	completionClient, err := services.NewCompletionClient(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Pipeline.CompletionTimeout,
		cfg.Pipeline.MaxRetries,
		cfg.Pipeline.RetryInitialDelay,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize completion client: %v", err)
	}

	validator, err := services.NewResponseValidator()
	if err != nil {
		log.Fatalf("❌ Failed to initialize response validator: %v", err)
	}

	pipeline := services.NewScoringPipeline(extractor, composer, completionClient, validator)
	log.Println("✅ Scoring pipeline initialized")

	// Initialize handlers
	scoreHandler := handlers.NewScoreHandler(pipeline, cfg.Server.MaxFileSize)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Candidate Matching API",
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    int(cfg.Server.MaxFileSize) * 2,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	// Routes
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/score", scoreHandler.HandleScore)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Candidate Matching API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/score",
				"GET /api/v1/health",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
