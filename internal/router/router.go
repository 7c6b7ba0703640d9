package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/checkin-go-api/internal/config"
	"github.com/noah-isme/checkin-go-api/internal/handler"
	"github.com/noah-isme/checkin-go-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	CheckInHandler     *handler.CheckInHandler
	EventHandler       *handler.EventHandler
	ParticipantHandler *handler.ParticipantHandler
	AnalyticsHandler   *handler.AnalyticsHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.EventHandler != nil {
		events := api.Group("/events", jwtMiddleware)
		deps.EventHandler.Register(events)

		// The ledger dump and cached statistics hang off the event resource.
		if deps.CheckInHandler != nil {
			deps.CheckInHandler.RegisterEventRoutes(events)
		}
		if deps.AnalyticsHandler != nil {
			deps.AnalyticsHandler.RegisterEventRoutes(events)
		}
	}

	// Participant directory and the check-in ledger share the
	// /participants prefix to keep the wire contract stable.
	if deps.ParticipantHandler != nil {
		participants := api.Group("/participants", jwtMiddleware)
		deps.ParticipantHandler.Register(participants)

		if deps.CheckInHandler != nil {
			deps.CheckInHandler.Register(participants)
		}
	}

	if deps.AnalyticsHandler != nil {
		analytics := api.Group("/analytics", jwtMiddleware)
		deps.AnalyticsHandler.Register(analytics)
	}
}
