package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterHealthRoutes adds the store connectivity probe. It pings the
// stores directly on every call instead of trusting a flag set at startup.
func RegisterHealthRoutes(r fiber.Router, d Deps) {
	r.Get("/health-check", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if d.DB != nil {
			if err := d.DB.Ping(ctx); err != nil {
				d.Logger.Error("health check: postgres ping failed", "error", err)
				return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
					"status":  "error",
					"message": "Database connection failed",
				})
			}
		}
		if d.Cache != nil {
			if err := d.Cache.Ping(ctx).Err(); err != nil {
				d.Logger.Error("health check: redis ping failed", "error", err)
				return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
					"status":  "error",
					"message": "Cache connection failed",
				})
			}
		}

		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Database connection successful",
		})
	})
}
