package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/psoni/portfolio-api/internal/auth"
)

// RegisterAuthRoutes wires the OTP login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter, guard fiber.Handler) {
	if rateLimiter != nil {
		r.Post("/request-otp", rateLimiter, h.RequestOTP)
	} else {
		r.Post("/request-otp", h.RequestOTP)
	}
	r.Post("/verify-otp", h.VerifyOTP)
	r.Post("/logout", h.Logout)
	r.Get("/check-auth", guard, h.CheckAuth)
}
