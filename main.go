package main

import (
	"os"
	"strconv"
	"time"

	"barangay-portal-backend/config"
	"barangay-portal-backend/controllers"
	"barangay-portal-backend/database"
	"barangay-portal-backend/mailer"
	"barangay-portal-backend/middlewares"
	"barangay-portal-backend/routes"
	"barangay-portal-backend/workflow"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// envInt reads an int env var with a default fallback.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	// ---- Database
	database.Connect()
	database.AutoMigrate()
	if err := database.Migrate(); err != nil {
		config.GetLogger().WithError(err).Error("schema migration failed")
		panic(err)
	}

	// ---- Status transition orchestration
	// Stores are in-process here; the workflow only sees the collaborator
	// interfaces, so a split deployment swaps in client.New(...) instead.
	controllers.Dispatcher = mailer.FromEnv()
	controllers.Transition = &workflow.Transitioner{
		Requests:       &database.RequestStore{DB: database.DB},
		Ledger:         &database.LedgerStore{DB: database.DB},
		Notifier:       controllers.Dispatcher,
		Log:            config.GetLogger(),
		PickupLocation: os.Getenv("PICKUP_LOCATION"),
		CallTimeout:    time.Duration(envInt("CALL_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	// ---- Limits (configurable via env)
	bodyLimitBytes := envInt("BODY_LIMIT_BYTES", 0)
	if bodyLimitBytes <= 0 {
		bodyLimitBytes = envInt("BODY_LIMIT_MB", 4) * 1024 * 1024
	}

	// ---- Fiber app with global error handler + body limit
	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    bodyLimitBytes,
	})

	// ---- CORS
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: false,
		AllowHeaders:     "Origin, Content-Type, Accept, Idempotency-Key",
	}))

	// ---- Global rate limiter (applies to all routes; tune via env)
	rlMax := envInt("RATE_LIMIT_MAX", 60)
	rlWindow := time.Duration(envInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
	app.Use(limiter.New(limiter.Config{
		Max:        rlMax,
		Expiration: rlWindow,
	}))

	// ---- Routes
	routes.Register(app)

	// ---- Start
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	config.GetLogger().WithField("port", port).Info("starting records API")
	if err := app.Listen(":" + port); err != nil {
		panic(err)
	}
}
