package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/me", Auth("secret"), func(c *fiber.Ctx) error {
		return c.SendString(PlayerID(c) + "/" + Username(c))
	})

	valid := signed(t, "secret", jwt.MapClaims{"sub": "p1", "username": "ace", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signed(t, "secret", jwt.MapClaims{"sub": "p1", "exp": time.Now().Add(-time.Hour).Unix()})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", 401},
		{"not bearer", "Token " + valid, 401},
		{"expired", "Bearer " + expired, 401},
		{"wrong secret", "Bearer " + signed(t, "other", jwt.MapClaims{"sub": "p1"}), 401},
		{"valid", "Bearer " + valid, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAdminKey(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminKey("k3y"), func(c *fiber.Ctx) error { return c.SendStatus(204) })

	for key, want := range map[string]int{"": 403, "nope": 403, "k3y": 204} {
		req := httptest.NewRequest("GET", "/admin", nil)
		if key != "" {
			req.Header.Set("X-Admin-Key", key)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, "key %q", key)
	}

	empty := fiber.New()
	empty.Get("/admin", AdminKey(""), func(c *fiber.Ctx) error { return c.SendStatus(204) })
	resp, err := empty.Test(httptest.NewRequest("GET", "/admin", nil))
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestLogger_OnlyFailures(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	app := fiber.New()
	app.Use(Logger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(200) })
	app.Get("/bad", func(c *fiber.Ctx) error { return c.Status(400).JSON(fiber.Map{"error": "bad"}) })
	app.Get("/boom", func(c *fiber.Ctx) error { return fiber.NewError(503, "down") })

	for _, path := range []string{"/ok", "/bad", "/boom"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/bad", entries[0].ContextMap()["path"])
	assert.Equal(t, int64(503), entries[1].ContextMap()["status"])
}

func TestLogger_KeepsFieldsAfterLaterRequests(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	app := fiber.New()
	app.Use(Logger(zap.New(core)))
	app.Post("/api/v1/battle/fire", func(c *fiber.Ctx) error { return c.SendStatus(422) })
	app.Get("/x", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	_, err := app.Test(httptest.NewRequest("POST", "/api/v1/battle/fire", nil))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err = app.Test(httptest.NewRequest("GET", "/x", nil))
		require.NoError(t, err)
	}

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "POST", entries[0].ContextMap()["method"])
	assert.Equal(t, "/api/v1/battle/fire", entries[0].ContextMap()["path"])
}

func TestRateLimit(t *testing.T) {
	app := fiber.New()
	app.Use(RateLimit(2, time.Minute))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}
