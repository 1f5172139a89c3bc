package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"storefront/internal/cache"
	apperrors "storefront/internal/errors"
)

const rateLimitKeyPrefix = "ratelimit:"

// RedisRateLimiterStore is a fixed-window store for Echo's rate limiter.
// Counters live in Redis so every replica shares the same budget.
type RedisRateLimiterStore struct {
	cache  *cache.Client
	limit  int
	window time.Duration
	now    func() time.Time
	logger echo.Logger
}

var _ echomw.RateLimiterStore = (*RedisRateLimiterStore)(nil)

// NewRedisRateLimiterStore allows limit requests per identifier in each window.
func NewRedisRateLimiterStore(c *cache.Client, limit int, window time.Duration, logger echo.Logger) *RedisRateLimiterStore {
	if logger == nil {
		logger = log.New("ratelimit")
	}
	return &RedisRateLimiterStore{
		cache:  c,
		limit:  limit,
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// Allow counts the request against the identifier's current window.
// If Redis cannot be reached the request is let through.
func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	windowStart := s.now().Truncate(s.window)
	key := fmt.Sprintf("%s%s:%d", rateLimitKeyPrefix, identifier, windowStart.Unix())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	count, err := s.cache.IncrWindow(ctx, key, s.window)
	if err != nil {
		s.logger.Warnf("rate limiter unavailable, allowing request: %v", err)
		return true, nil
	}
	return count <= int64(s.limit), nil
}

// RateLimit returns Echo's rate limiter middleware over store, keyed by client IP.
func RateLimit(store echomw.RateLimiterStore) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewHTTPError(http.StatusForbidden, "unable to identify client", "RATE_LIMITED")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later", "RATE_LIMITED")
		},
	})
}
