package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/accounts-service/internal/api/http/handlers"
	"github.com/spec-kit/accounts-service/internal/auth"
	"github.com/spec-kit/accounts-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Items          *handlers.ItemsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health", cfg.Health.Live)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")
	requireAuth := cfg.AuthMiddleware.Handle

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/access-token", cfg.Auth.AccessToken)
	authGroup.Post("/refresh-token", cfg.Auth.RefreshToken)
	authGroup.Post("/logout", requireAuth, cfg.Auth.Logout)

	users := api.Group("/users", requireAuth)
	users.Get("/me", cfg.Users.Me)
	users.Delete("/me", cfg.Users.DeleteMe)
	users.Post("/reset-password", cfg.Users.ResetPassword)
	users.Get("/", auth.RequirePolicy(auth.AdminOnly), cfg.Users.List)
	users.Post("/", auth.RequirePolicy(auth.AdminOnly), cfg.Users.Create)
	users.Delete("/:id", auth.RequirePolicy(auth.AdminOnly), cfg.Users.Delete)

	items := api.Group("/items", requireAuth)
	items.Get("/", cfg.Items.List)
	items.Get("/:id", cfg.Items.Get)
	items.Post("/", auth.RequirePolicy(auth.EditorOrAdmin), cfg.Items.Create)
	items.Put("/:id", auth.RequirePolicy(auth.EditorOrAdmin), cfg.Items.Update)
	items.Delete("/:id", auth.RequirePolicy(auth.AdminOnly), cfg.Items.Delete)
}
