package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cache"
	apperrors "storefront/internal/errors"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *cache.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := cache.New(mr.Addr(), "", 0)
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisRateLimiterStore_FixedWindow(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisRateLimiterStore(client, 3, 15*time.Minute, nil)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow("10.0.0.1")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
	}

	allowed, err := store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Other clients have their own budget.
	allowed, _ = store.Allow("10.0.0.2")
	assert.True(t, allowed)

	// A new window starts a new count.
	store.now = func() time.Time { return start.Add(15 * time.Minute) }
	allowed, _ = store.Allow("10.0.0.1")
	assert.True(t, allowed)
}

func TestRedisRateLimiterStore_FailsOpen(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisRateLimiterStore(client, 1, time.Minute, nil)
	mr.Close()

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow("10.0.0.1")
		assert.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	_, client := setupTestRedis(t)
	store := NewRedisRateLimiterStore(client, 1, time.Minute, nil)

	e := echo.New()
	h := RateLimit(store)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	newContext := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		return e.NewContext(req, httptest.NewRecorder())
	}

	require.NoError(t, h(newContext()))

	err := h(newContext())
	httpErr := apperrors.MapErrorToHTTP(err)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, "RATE_LIMITED", httpErr.Code)
}
