package handler

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/randomdance/api/internal/model"
	"github.com/randomdance/api/internal/service"
	"github.com/randomdance/api/pkg/response"
)

type GenerateHandler struct {
	service   *service.GenerateService
	validator *validator.Validate
}

func NewGenerateHandler(svc *service.GenerateService, v *validator.Validate) *GenerateHandler {
	return &GenerateHandler{
		service:   svc,
		validator: v,
	}
}

// Start handles POST /api/generate
func (h *GenerateHandler) Start(c *fiber.Ctx) error {
	var req model.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	jobID, err := h.service.Submit(c.Context(), req.Segments)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return response.ValidationError(c, ve.Reason, nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, model.GenerateResponse{JobID: jobID})
}

// Status handles GET /api/status/:jobId
func (h *GenerateHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	job, err := h.service.Status(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, job)
}

// Download handles GET /api/download/:jobId
func (h *GenerateHandler) Download(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	path, err := h.service.OutputPath(c.Context(), jobID)
	if err != nil {
		return h.artifactError(c, err)
	}

	return c.Download(path, fmt.Sprintf("random-dance-%s.mp3", shortID(jobID)))
}

// DownloadReport handles GET /api/download-report/:jobId
func (h *GenerateHandler) DownloadReport(c *fiber.Ctx) error {
	jobID := c.Params("jobId")

	path, err := h.service.ReportPath(c.Context(), jobID)
	if err != nil {
		return h.artifactError(c, err)
	}

	return c.Download(path, fmt.Sprintf("random-dance-report-%s.json", shortID(jobID)))
}

func (h *GenerateHandler) artifactError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, service.ErrJobNotReady):
		return response.NotReady(c, "Job not complete yet")
	default:
		return response.ServiceError(c, err.Error())
	}
}

func shortID(jobID string) string {
	if len(jobID) > 8 {
		return jobID[:8]
	}
	return jobID
}
