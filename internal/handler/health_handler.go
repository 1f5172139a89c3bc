package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/cache"
	"storefront/internal/db"
)

const healthCheckTimeout = 2 * time.Second

// HealthHandler reports whether the process can reach its stores.
type HealthHandler struct {
	pingDB    func(ctx context.Context) error
	pingCache func(ctx context.Context) error
	now       func() time.Time
}

// NewHealthHandler checks MySQL (required) and Redis (reported only).
func NewHealthHandler(gdb *gorm.DB, cacheClient *cache.Client) *HealthHandler {
	return NewHealthCheck(func(ctx context.Context) error {
		return db.Ping(ctx, gdb)
	}, cacheClient.Ping)
}

// NewHealthCheck builds a health handler over arbitrary ping functions.
func NewHealthCheck(pingDB, pingCache func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{
		pingDB:    pingDB,
		pingCache: pingCache,
		now:       time.Now,
	}
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Cache     string    `json:"cache,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Health answers 200 while MySQL is reachable and 500 otherwise. Redis status
// is reported but does not affect the result.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := h.pingDB(ctx); err != nil {
		c.Logger().Errorf("health check: database unreachable: %v", err)
		return c.JSON(http.StatusInternalServerError, HealthResponse{
			Status:    "unhealthy",
			Timestamp: h.now().UTC(),
			Error:     "database connection failed",
		})
	}

	cacheStatus := "up"
	if err := h.pingCache(ctx); err != nil {
		cacheStatus = "down"
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: h.now().UTC(),
		Cache:     cacheStatus,
	})
}
