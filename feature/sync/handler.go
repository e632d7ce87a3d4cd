package sync

import (
	"context"
	"errors"
	"time"

	"price-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes the sync service over HTTP.
type Handler struct {
	service *Service
	timeout time.Duration
	logger  *zap.Logger
}

// NewHandler creates a handler bounding every run by timeout.
func NewHandler(service *Service, timeout time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, timeout: timeout, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/sources", h.HandleSources)
	group.Post("/:source/:job", h.HandleRun)
	group.Get("/:source/:job", h.HandleRun)
}

// HandleSources lists the configured sources.
// @Summary List Sources
// @Description Lists the configured sources and the jobs each one supports.
// @Tags sync
// @Produce json
// @Success 200 {array} sources.Info
// @Router /sync/sources [get]
func (h *Handler) HandleSources(c *fiber.Ctx) error {
	return c.JSON(h.service.Sources())
}

// HandleRun runs a job synchronously.
// @Summary Run Sync Job
// @Description Reads the job from the source and reconciles it into the catalog. The request returns when every partition finished.
// @Tags sync
// @Produce json
// @Param source path string true "Source client name"
// @Param job path string true "Job (products, prices, catalog, promotions)"
// @Success 200 {object} Report "Run report"
// @Failure 400 {object} map[string]string "Unsupported job"
// @Failure 404 {object} map[string]string "Unknown source"
// @Failure 409 {object} map[string]string "Run in progress"
// @Failure 502 {object} map[string]interface{} "Run failed"
// @Router /sync/{source}/{job} [post]
func (h *Handler) HandleRun(c *fiber.Ctx) error {
	source, job := c.Params("source"), c.Params("job")
	l := logger.WithRayID(h.logger, c).With(zap.String("source", source), zap.String("job", job))
	l.Info("Sync requested")

	ctx := context.Background()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	report, err := h.service.Run(ctx, source, job)
	switch {
	case err == nil:
		return c.JSON(report)
	case errors.Is(err, ErrUnknownSource):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrUnsupportedJob):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrRunInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Sync failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error(), "report": report})
	}
}
