package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-maintenance/internal/api/http/handlers"
	"github.com/spec-kit/asset-maintenance/internal/auth"
	"github.com/spec-kit/asset-maintenance/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Uploads        *handlers.UploadsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	if cfg.Health != nil {
		app.Get("/health/live", cfg.Health.Live)
		app.Get("/health/ready", cfg.Health.Ready)
	}

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())

	if cfg.Health != nil {
		api.Get("/metrics", auth.RequireRole(domain.RoleAdmin, domain.RoleSuperuser), cfg.Health.Metrics)
	}

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/counters", cfg.Tickets.Counters)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Delete("/:id", cfg.Tickets.DeleteTicket)

	tickets.Post("/:id/send", cfg.Tickets.SendTicket)
	tickets.Post("/:id/accept", cfg.Tickets.AcceptTicket)
	tickets.Post("/:id/start", cfg.Tickets.StartTicket)
	tickets.Post("/:id/escalate", cfg.Tickets.EscalateTicket)
	tickets.Post("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Post("/:id/reject", cfg.Tickets.RejectTicket)
	tickets.Post("/:id/complete", cfg.Tickets.CompleteTicket)
	tickets.Post("/:id/cancel", cfg.Tickets.CancelTicket)

	tickets.Patch("/:id/work", cfg.Tickets.UpdateWork)
	tickets.Delete("/:id/supplies/:lineId", cfg.Tickets.RemoveSupply)

	tickets.Post("/:id/notes", cfg.Tickets.AddNote)
	tickets.Patch("/:id/notes/:noteId", cfg.Tickets.UpdateNote)
	tickets.Delete("/:id/notes/:noteId", cfg.Tickets.DeleteNote)

	if cfg.Uploads != nil {
		api.Post("/uploads/photos", cfg.Uploads.UploadPhotos)
	}
}
