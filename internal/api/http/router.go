package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Users          *handlers.UsersHandler
	Reports        *handlers.ReportsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Ticket creation, reads, and commenting
// are public for requesters; ticket mutations and account management require
// staff authentication.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	api.Post("/auth/login", cfg.Users.Login)

	api.Post("/tickets", cfg.Tickets.CreateTicket)
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/number/:number", cfg.Tickets.GetTicketByNumber)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)

	api.Post("/comments", cfg.AuthMiddleware.OptionalHandle, cfg.Comments.CreateComment)

	staff := api.Group("", cfg.AuthMiddleware.Handle)
	staff.Patch("/tickets/:id/status", cfg.Tickets.UpdateStatus)
	staff.Patch("/tickets/:id/priority", cfg.Tickets.UpdatePriority)
	staff.Patch("/tickets/:id/assign", cfg.Tickets.AssignTicket)
	staff.Patch("/tickets/:id/unassign", cfg.Tickets.UnassignTicket)

	staff.Get("/users/technicians", cfg.Users.ListTechnicians)
	staff.Get("/stats", cfg.Reports.GetStats)
	staff.Get("/technician-performance", cfg.Reports.GetTechnicianPerformance)

	admin := staff.Group("", auth.RequireRole(domain.UserRoleAdmin))
	admin.Post("/users", cfg.Users.CreateUser)
	admin.Delete("/users/:id", cfg.Users.DeleteUser)
	admin.Delete("/tickets/:id", cfg.Tickets.DeleteTicket)
}
