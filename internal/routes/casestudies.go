package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/psoni/portfolio-api/internal/casestudy"
)

// RegisterCaseStudyRoutes wires case study endpoints: reads are public,
// writes and uploads sit behind the admin guard.
func RegisterCaseStudyRoutes(r fiber.Router, h *casestudy.Handler, guard fiber.Handler) {
	r.Get("/case-studies", h.List)
	r.Get("/case-studies/:id", h.Get)
	r.Post("/case-studies", guard, h.Create)
	r.Put("/case-studies/:id", guard, h.Update)
	r.Delete("/case-studies/:id", guard, h.Delete)
	r.Post("/case-studies/:id/upload", guard, h.Upload)
}
