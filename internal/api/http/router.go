package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Tickets *handlers.TicketsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/user", cfg.Users.List)
	app.Post("/user", cfg.Users.Register)
	app.Delete("/user", cfg.Users.Delete)

	app.Get("/ticket", cfg.Tickets.List)
	app.Post("/ticket", cfg.Tickets.Raise)
	app.Delete("/ticket", cfg.Tickets.Delete)
}
