// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"context"
	"time"

	"github.com/clonos/dashboard-backend/database"
	events "github.com/clonos/dashboard-backend/events/modules/dashboards"
	"github.com/clonos/dashboard-backend/internal/config"
	"github.com/clonos/dashboard-backend/restapi/modules/auth"
	"github.com/clonos/dashboard-backend/restapi/modules/charts"
	"github.com/clonos/dashboard-backend/restapi/modules/dashboards"
	"github.com/clonos/dashboard-backend/restapi/modules/templates"
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Services are the collaborators the routes are built from.
type Services struct {
	Config *config.Config
	Store  database.DashboardStore
	Events events.Publisher
	Schema graphql.Schema
	Logger *zap.Logger
}

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
func SetupRoutes(app *fiber.App, svc Services) {
	logger := svc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// guard protects dashboard routes; guests are allowed unless AUTH_REQUIRED is set
	guard := auth.OptionalAuth
	if svc.Config.AuthRequired {
		guard = auth.RequireAuth
	}

	api := app.Group("/api")
	api.Get("/health", Health(svc.Store))

	// GraphQL Route
	api.Post("/graphql", guard, GraphQLHandler(svc.Schema))

	// Auth Routes
	authGroup := api.Group("/auth")
	authGroup.Post("/login", auth.Login(logger))
	authGroup.Post("/logout", auth.Logout())
	authGroup.Get("/me", auth.OptionalAuth, auth.Me())

	// Dashboard Routes
	dash := dashboards.NewService(svc.Store, svc.Events, logger, svc.Config.DefaultUserID)
	dashGroup := api.Group("/dashboards", guard)
	dashGroup.Get("/", dash.List())
	dashGroup.Post("/", dash.Create())
	dashGroup.Post("/import", dash.Import())
	dashGroup.Get("/:id", dash.Get())
	dashGroup.Put("/:id", dash.Update())
	dashGroup.Delete("/:id", dash.Delete())
	dashGroup.Post("/:id/duplicate", dash.Duplicate())
	dashGroup.Get("/:id/export", dash.Export())

	// Chart helper Routes
	chartGroup := api.Group("/charts")
	chartGroup.Get("/types", charts.ListTypes)
	chartGroup.Get("/themes", charts.ListThemes)
	chartGroup.Get("/themes/:name/colors", charts.ThemeColors)
	chartGroup.Get("/themes/:name/gradient", charts.ThemeGradient)
	chartGroup.Get("/default/:type", charts.DefaultChart)
	chartGroup.Get("/sample/:type", charts.SampleData)
	chartGroup.Post("/csv", charts.ParseCSV)

	// Template Routes
	templateGroup := api.Group("/templates")
	templateGroup.Get("/", templates.List)
	templateGroup.Post("/:id/instantiate", guard, templates.Instantiate(dash))

	logger.Info("API routes initialized successfully", zap.String("driver", svc.Store.Driver()))
}

// Health reports whether the backing database answers.
func Health(store database.DashboardStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		status := "connected"
		if err := store.Ping(ctx); err != nil {
			status = "disconnected"
		}
		return c.JSON(fiber.Map{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  status,
			"driver":    store.Driver(),
		})
	}
}
