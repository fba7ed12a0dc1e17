package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ReportsHandler serves the dashboard report endpoints. Date filters accept
// YYYY-MM-DD (interpreted in the reference timezone) or RFC 3339; unparseable
// values are ignored, matching the dashboard's lenient query building.
type ReportsHandler struct {
	service *service.ReportService
	clock   domain.Clock
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService, clock domain.Clock) *ReportsHandler {
	return &ReportsHandler{service: reportService, clock: clock}
}

// GetStats GET /api/stats.
func (h *ReportsHandler) GetStats(c *fiber.Ctx) error {
	report, err := h.service.GetStats(c.UserContext(), h.parseFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// GetTechnicianPerformance GET /api/technician-performance.
func (h *ReportsHandler) GetTechnicianPerformance(c *fiber.Ctx) error {
	performance, err := h.service.GetTechnicianPerformance(c.UserContext(), h.parseFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(performance)
}

func (h *ReportsHandler) parseFilter(c *fiber.Ctx) service.ReportFilter {
	loc := h.clock.Location()
	return service.ReportFilter{
		From:   parseDate(c.Query("startDate"), loc),
		To:     parseDate(c.Query("endDate"), loc),
		Sector: c.Query("sector"),
	}
}
