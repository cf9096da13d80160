// Package api builds the Fiber application with its global middleware.
package api

import (
	"errors"
	"strings"
	"time"

	"github.com/clonos/dashboard-backend/database"
	events "github.com/clonos/dashboard-backend/events/modules/dashboards"
	"github.com/clonos/dashboard-backend/graphql"
	"github.com/clonos/dashboard-backend/internal/config"
	"github.com/clonos/dashboard-backend/internal/middleware"
	"github.com/clonos/dashboard-backend/restapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// NewFiberApp creates and configures a Fiber app with REST and GraphQL routes.
// limiter may be nil.
func NewFiberApp(cfg *config.Config, store database.DashboardStore, publisher events.Publisher, limiter *middleware.IPRateLimit, log *zap.Logger) (*fiber.App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	schema, err := graphql.CreateSchema(store, cfg.DefaultUserID)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "dashboard-backend API v1.0",
		BodyLimit:    cfg.BodyLimit(),
		ReadTimeout:  60 * time.Second,
		ErrorHandler: errorHandler(cfg, log),
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	app.Use(logger.New())
	if limiter != nil && limiter.Enabled() {
		app.Use(limiter.Handler())
	}

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	restapi.SetupRoutes(app, restapi.Services{
		Config: cfg,
		Store:  store,
		Events: publisher,
		Schema: schema,
		Logger: log,
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Route not found",
		})
	})

	return app, nil
}

// corsConfig allows the configured origins. Credentials are only allowed for
// an explicit origin list, never for the wildcard.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowMethods: "GET, POST, HEAD, PUT, DELETE, PATCH, OPTIONS",
	}
	var list []string
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return cfg
		}
		if o != "" {
			list = append(list, o)
		}
	}
	if len(list) > 0 {
		cfg.AllowOrigins = strings.Join(list, ",")
		cfg.AllowCredentials = true
	}
	return cfg
}

// errorHandler renders unhandled errors in the API envelope. Details are only
// exposed in development.
func errorHandler(cfg *config.Config, log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{
				"success": false,
				"error":   fe.Message,
			})
		}

		log.Error("Unhandled request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))

		body := fiber.Map{
			"success": false,
			"error":   "Internal server error",
		}
		if cfg.IsDevelopment() {
			body["message"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
