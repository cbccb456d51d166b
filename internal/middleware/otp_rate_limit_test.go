package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestOTPRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/request-otp", OTPRateLimit(cache, 5), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/request-otp", strings.NewReader(`{"username":"admin"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		return resp.StatusCode
	}

	for i := 0; i < 5; i++ {
		if status := send(); status != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := send(); status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", status)
	}
}

func TestOTPRateLimitNoRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/request-otp", OTPRateLimit(nil, 5), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/request-otp", strings.NewReader(`{"username":"admin"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected pass-through without redis, got %d", resp.StatusCode)
		}
	}
}
