package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/noticeboard-api/services"
	"github.com/sahilchouksey/noticeboard-api/utils/response"
)

// DashboardHandler serves the admin statistics
type DashboardHandler struct {
	dashboard *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetAdminStats handles GET /api/dashboard/admin/stats
func (h *DashboardHandler) GetAdminStats(c *fiber.Ctx) error {
	stats, err := h.dashboard.GetAdminStats(c.UserContext())
	if err != nil {
		log.Errorw("failed to compute dashboard stats", "error", err)
		return response.InternalServerError(c, "Failed to fetch dashboard statistics")
	}
	return response.Success(c, stats)
}
