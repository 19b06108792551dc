package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"go.uber.org/zap"

	"github.com/nutricart/nutricart-api/internal/compute"
	"github.com/nutricart/nutricart-api/internal/config"
	"github.com/nutricart/nutricart-api/internal/database"
	"github.com/nutricart/nutricart-api/internal/handlers"
	"github.com/nutricart/nutricart-api/internal/logger"
	"github.com/nutricart/nutricart-api/internal/middleware"
	"github.com/nutricart/nutricart-api/internal/services"
	"github.com/nutricart/nutricart-api/internal/types"

	_ "github.com/nutricart/nutricart-api/docs/api" // Swagger docs
)

// @title NutriCart API
// @version 1.0.0
// @description Nutrition logging and grocery price comparison service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/nutricart/nutricart-api

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	computeClient := compute.New(compute.Config{
		BaseURL:        cfg.ComputeURL,
		Timeout:        cfg.ComputeTimeout,
		MaxAttempts:    cfg.ComputeMaxAttempts,
		InitialBackoff: cfg.ComputeBackoff,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("nutricart")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		result := services.HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status == "unhealthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	// API routes under /api
	api := app.Group("/api")
	api.Use(middleware.Version())

	nutritionHandler := &handlers.NutritionHandler{DB: db}
	computeHandler := &handlers.ComputeHandler{DB: db, Compute: computeClient}
	productHandler := &handlers.ProductHandler{DB: db}

	// Product catalog routes (public)
	products := api.Group("/products")
	products.Get("/search", productHandler.Search)
	products.Get("/item-code/:itemCode", productHandler.GetByItemCode)
	products.Get("/:id", productHandler.GetByID)

	// Nutrition routes (all require authentication)
	auth := middleware.Auth(cfg.JWTSecret)
	nutrition := api.Group("/nutrition", auth)
	nutrition.Post("/calculate", computeHandler.Calculate)
	nutrition.Post("/log", nutritionHandler.LogNutrition)
	nutrition.Get("/log/:date", nutritionHandler.GetDailyLog)
	nutrition.Delete("/log/:date/meals/:mealID", nutritionHandler.RemoveMeal)
	nutrition.Get("/history", nutritionHandler.GetHistory)
	nutrition.Get("/summary", nutritionHandler.GetSummary)
	nutrition.Put("/water", nutritionHandler.UpdateWater)
	nutrition.Get("/recommendations", computeHandler.Recommendations)
	nutrition.Get("/trends", computeHandler.Trends)

	// Price routes (authenticated, proxied to the computation service)
	price := api.Group("/price", auth)
	price.Post("/compare", computeHandler.ComparePrices)
	price.Post("/cheapest-combination", computeHandler.CheapestCombination)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("gracefully shutting down")
		_ = app.Shutdown()
	}()

	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	logger.Info("server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fiberErr *fiber.Error
	var validationErr *types.ValidationError
	var notFoundErr *types.NotFoundError
	var upstreamErr *types.UpstreamError

	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.As(err, &validationErr):
		code = fiber.StatusBadRequest
		errorType = "validation"
	case errors.As(err, &notFoundErr):
		code = fiber.StatusNotFound
		errorType = "notfound"
	case errors.As(err, &upstreamErr):
		code = fiber.StatusServiceUnavailable
		errorType = "upstream"
		message = "Computation service temporarily unavailable"
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
