package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLimitedApp(perMinute int) *fiber.App {
	app := fiber.New()
	app.Use(NewIPRateLimiter(perMinute, zap.NewNop()).Handler())
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Get("/healthz", ok)
	app.Get("/metrics", ok)
	app.Get("/api/me", ok)
	return app
}

func TestIPRateLimiter_BurstThenDeny(t *testing.T) {
	app := newLimitedApp(60) // burst of 5

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/me", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestIPRateLimiter_ProbePathsExempt(t *testing.T) {
	app := newLimitedApp(60)

	for _, path := range []string{"/healthz", "/metrics"} {
		for i := 0; i < 20; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, "probe path %s must never be throttled", path)
		}
	}
}
