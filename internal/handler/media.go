package handler

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"github.com/randomdance/api/internal/service"
	"github.com/randomdance/api/pkg/response"
)

type MediaHandler struct {
	service   *service.MediaService
	assetsDir string
}

func NewMediaHandler(svc *service.MediaService, assetsDir string) *MediaHandler {
	return &MediaHandler{
		service:   svc,
		assetsDir: assetsDir,
	}
}

// Info handles GET /api/youtube/info?url=...
func (h *MediaHandler) Info(c *fiber.Ctx) error {
	url := c.Query("url")

	info, err := h.service.Info(c.Context(), url)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return response.ValidationError(c, ve.Reason, nil)
		}
		return response.ServiceError(c, "Failed to fetch video info")
	}

	return response.OK(c, info)
}

// Search handles GET /api/youtube/search?q=...&limit=...
func (h *MediaHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	limit := c.QueryInt("limit", service.DefaultSearchLimit)

	results, err := h.service.Search(c.Context(), query, limit)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return response.ValidationError(c, ve.Reason, nil)
		}
		return response.ServiceError(c, "Failed to search videos")
	}

	return response.OK(c, results)
}

// Bands handles GET /api/bands, serving the band list asset used by the
// UI for variety tracking.
func (h *MediaHandler) Bands(c *fiber.Ctx) error {
	data, err := os.ReadFile(filepath.Join(h.assetsDir, "band-list.txt"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("")
	}

	c.Type("txt")
	return c.Send(data)
}
