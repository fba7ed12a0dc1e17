package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketsHandler serves ticket endpoints. Creation and reads are public so
// requesters can open and follow tickets without an account; mutations sit
// behind the staff auth middleware.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewInvalidArgument("title and description are required", nil)
	}
	if strings.TrimSpace(req.RequesterName) == "" || strings.TrimSpace(req.RequesterEmail) == "" {
		return apperrors.NewInvalidArgument("requesterName and requesterEmail are required", nil)
	}

	ticket, err := h.service.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:          req.Title,
		Description:    req.Description,
		Sector:         req.Sector,
		ProblemType:    req.ProblemType,
		Priority:       req.Priority,
		RequesterName:  req.RequesterName,
		RequesterEmail: req.RequesterEmail,
		Attachments:    req.Attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTicket(ticket))
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.TicketStatus(statusStr)
		if !domain.ValidTicketStatus(status) {
			return apperrors.NewInvalidArgument("invalid status filter", map[string]any{"status": statusStr})
		}
		filter.Status = &status
	}
	if technicianID := c.Query("technicianId"); technicianID != "" {
		filter.TechnicianID = &technicianID
	}

	tickets, err := h.service.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketDetailResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.FromTicketDetail(&tickets[i]))
	}
	return c.JSON(items)
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicketDetail(ticket))
}

// GetTicketByNumber GET /api/tickets/number/:number.
func (h *TicketsHandler) GetTicketByNumber(c *fiber.Ctx) error {
	number, err := strconv.ParseInt(c.Params("number"), 10, 64)
	if err != nil {
		return apperrors.NewInvalidArgument("invalid ticket number", map[string]any{"number": c.Params("number")})
	}
	ticket, err := h.service.GetTicketByNumber(c.UserContext(), number)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicketDetail(ticket))
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if !domain.ValidTicketStatus(req.Status) {
		return apperrors.NewInvalidArgument("invalid status", map[string]any{"status": req.Status})
	}

	ticket, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, principal.Role, principal.User.Name)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// UpdatePriority PATCH /api/tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	ticket, err := h.service.UpdatePriority(c.UserContext(), c.Params("id"), req.Priority, principal.User.Name)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// AssignTicket PATCH /api/tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	technicianID := req.TechnicianID
	if technicianID == "" {
		// Technicians pulling from the queue assign to themselves.
		technicianID = principal.User.ID
	}

	ticket, err := h.service.AssignTicket(c.UserContext(), c.Params("id"), technicianID, principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// UnassignTicket PATCH /api/tickets/:id/unassign.
func (h *TicketsHandler) UnassignTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := h.service.UnassignTicket(c.UserContext(), c.Params("id"), principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.FromTicket(ticket))
}

// DeleteTicket DELETE /api/tickets/:id. Admin only.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	if err := h.service.DeleteTicket(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseDate(val string, loc *time.Location) *time.Time {
	if val == "" {
		return nil
	}
	if t, err := time.ParseInLocation("2006-01-02", val, loc); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t
	}
	return nil
}
