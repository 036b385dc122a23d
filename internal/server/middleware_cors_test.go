package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/huzidev/dev-forum-api/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limitedApp(cfg *config.Config) *fiber.App {
	srv := &Server{config: cfg}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.All("/limited", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestSetupMiddleware_RateLimitedResponseIncludesCORSHeaders(t *testing.T) {
	app := limitedApp(&config.Config{
		Env:                      "production",
		AllowedOrigins:           "http://localhost:5173",
		RateLimitGlobalPerMinute: 5,
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestSetupMiddleware_PreflightBypassesLimiter(t *testing.T) {
	app := limitedApp(&config.Config{
		Env:                      "production",
		AllowedOrigins:           "http://localhost:5173",
		RateLimitGlobalPerMinute: 2,
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/limited", nil)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	limitedResp, err := app.Test(httptest.NewRequest(http.MethodPost, "/limited", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, limitedResp.StatusCode)
	_ = limitedResp.Body.Close()

	preflightReq := httptest.NewRequest(http.MethodOptions, "/limited", nil)
	preflightReq.Header.Set("Origin", "http://localhost:5173")
	preflightReq.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflightReq.Header.Set("Access-Control-Request-Headers", "content-type,clerk-signature,x-clerk-origin")
	preflightResp, err := app.Test(preflightReq, -1)
	require.NoError(t, err)
	defer func() { _ = preflightResp.Body.Close() }()

	assert.Equal(t, fiber.StatusNoContent, preflightResp.StatusCode)
	assert.Equal(t, "http://localhost:5173", preflightResp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, preflightResp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Contains(t, preflightResp.Header.Get("Access-Control-Allow-Headers"), "clerk-signature")
}

func TestSetupMiddleware_LimiterOffOutsideProduction(t *testing.T) {
	app := limitedApp(&config.Config{Env: "development", RateLimitGlobalPerMinute: 1})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/limited", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	}
}
