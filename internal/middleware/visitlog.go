package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/randomdance/api/internal/service"
)

// NewVisitLogger records a visit for each front-page load. Logging is
// best-effort and never blocks the request.
func NewVisitLogger(analytics *service.AnalyticsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if analytics != nil && c.Method() == fiber.MethodGet && c.Path() == "/" {
			analytics.LogVisit(c.Context(), c.Get(fiber.HeaderUserAgent), c.IP())
		}
		return c.Next()
	}
}
