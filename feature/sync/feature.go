package sync

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature mounts the sync routes.
type Feature struct {
	service *Service
	timeout time.Duration
	logger  *zap.Logger
}

// NewFeature creates the sync feature. A nil service disables it.
func NewFeature(service *Service, timeout time.Duration, logger *zap.Logger) *Feature {
	return &Feature{service: service, timeout: timeout, logger: logger}
}

// Name returns the feature name.
func (f *Feature) Name() string { return "sync" }

// IsEnabled reports whether a catalog store is available.
func (f *Feature) IsEnabled() bool { return f.service != nil }

// Load registers the routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service, f.timeout, f.logger).RegisterRoutes(app)
	return nil
}
