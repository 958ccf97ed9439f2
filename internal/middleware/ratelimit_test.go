package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/parking-spot-reservation/internal/config"
)

func TestBuildRateKeyPerUserAndRoute(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "parking:rl", KeyStrategy: "user_route"}
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/reservations")
	c.Set("user_id", uint64(7))
	assert.Equal(t, "parking:rl:7:POST /v1/reservations", buildRateKey(cfg, c))

	// Same user, different route: separate bucket.
	req = httptest.NewRequest(http.MethodGet, "/v1/status/week", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/status/week")
	c.Set("user_id", uint64(7))
	assert.Equal(t, "parking:rl:7:GET /v1/status/week", buildRateKey(cfg, c))
}

func TestBuildRateKeyAnonymousFallsBackToIP(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "parking:rl", KeyStrategy: "user"}
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", nil)
	req.RemoteAddr = "203.0.113.9:4242"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/reservations")
	assert.Equal(t, "parking:rl:ip_203.0.113.9", buildRateKey(cfg, c))
}

func TestUserIDFromContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	assert.Equal(t, "guest", userID(c))

	c.Set("user_id", float64(42)) // jwt claims decode numbers as float64
	assert.Equal(t, "42", userID(c))

	c.Set("user_id", uint64(9))
	assert.Equal(t, "9", userID(c))
}
