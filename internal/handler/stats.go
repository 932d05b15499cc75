package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/randomdance/api/internal/service"
	"github.com/randomdance/api/pkg/response"
)

type StatsHandler struct {
	analytics *service.AnalyticsService
}

func NewStatsHandler(analytics *service.AnalyticsService) *StatsHandler {
	return &StatsHandler{analytics: analytics}
}

// Stats handles GET /api/stats
func (h *StatsHandler) Stats(c *fiber.Ctx) error {
	if h.analytics == nil {
		return response.ServiceError(c, "Analytics not available")
	}

	stats, err := h.analytics.Stats(c.Context())
	if err != nil {
		return response.ServiceError(c, err.Error())
	}
	return response.OK(c, stats)
}
