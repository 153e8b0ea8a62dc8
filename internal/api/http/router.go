package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/clubhouse/internal/api/http/handlers"
	"github.com/spec-kit/clubhouse/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Feed           *handlers.FeedHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Use(cfg.AuthMiddleware.LoadPrincipal)

	app.Get("/", cfg.Feed.Index)

	app.Get("/sign-up", cfg.Auth.SignUpForm)
	app.Post("/sign-up", cfg.Auth.SignUp)
	app.Post("/log-in", cfg.Auth.Login)
	app.Get("/log-out", cfg.Auth.Logout)

	app.Get("/member-up", auth.RequireAuth, cfg.Auth.MemberUpForm)
	app.Post("/member-up", auth.RequireAuth, cfg.Auth.MemberUp)

	app.Get("/message", auth.RequireAuth, cfg.Feed.MessageForm)
	app.Post("/message", auth.RequireAuth, cfg.Feed.PostMessage)
	app.Post("/delete", auth.RequireAuth, cfg.Feed.Delete)
}
