package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketflow/internal/api/http/handlers"
	"github.com/spec-kit/ticketflow/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Tickets        *handlers.TicketsHandler
	Users          *handlers.UsersHandler
	Subjects       *handlers.SubjectsHandler
	Data           *handlers.DataHandler
	Settings       *handlers.SettingsHandler
	Advisory       *handlers.AdvisoryHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	session := app.Group("/session")
	session.Post("/admin", cfg.Session.AdminLogin)
	session.Post("/identity", cfg.Session.SelectIdentity)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Optional)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/stats", cfg.Tickets.Stats)
	tickets.Get("/mine", cfg.Tickets.Mine)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/resolve", auth.RequireAdmin(), cfg.Tickets.Resolve)
	tickets.Post("/:id/reopen", auth.RequireAdmin(), cfg.Tickets.Reopen)
	tickets.Post("/:id/insight", auth.RequireAdmin(), cfg.Tickets.Insight)

	users := app.Group("/users", cfg.AuthMiddleware.Optional)
	users.Get("/", cfg.Users.List)
	users.Post("/", cfg.Users.Create)
	users.Delete("/:id", cfg.Users.Delete)

	subjects := app.Group("/subjects", cfg.AuthMiddleware.Optional)
	subjects.Get("/", cfg.Subjects.List)
	subjects.Post("/", cfg.Subjects.Create)
	subjects.Delete("/:id", cfg.Subjects.Delete)

	data := app.Group("/data", cfg.AuthMiddleware.Optional)
	data.Get("/export", cfg.Data.ExportJSON)
	data.Get("/export/csv", cfg.Data.ExportCSV)
	data.Post("/import", cfg.Data.Import)

	settings := app.Group("/settings", cfg.AuthMiddleware.Optional)
	settings.Get("/", cfg.Settings.Get)
	settings.Put("/", cfg.Settings.Update)

	advisory := app.Group("/advisory", cfg.AuthMiddleware.Optional)
	advisory.Post("/topic", cfg.Advisory.SuggestTopic)
	advisory.Post("/priority", cfg.Advisory.SuggestPriority)
	advisory.Post("/rewrite", cfg.Advisory.ImproveDescription)
	advisory.Post("/reply", cfg.Advisory.SuggestReply)
}
