package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/classroom-gateway/internal/api/http/handlers"
	"github.com/spec-kit/classroom-gateway/internal/auth"
	"github.com/spec-kit/classroom-gateway/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Access *auth.AccessMiddleware
	Hub    *realtime.Hub
}

// RegisterRoutes wires HTTP routes. Every protected route names its
// access tier here; there is no default tier.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/register", cfg.Auth.Register)

	app.Post("/modify-permission", cfg.Access.Require(auth.TierAdmin), cfg.Auth.ModifyPermission)
	app.Get("/protected", cfg.Access.Require(auth.TierStudent), cfg.Auth.Protected)

	app.Use("/ws", realtime.UpgradeRequired())
	app.Get("/ws", cfg.Hub.Handler())
}
