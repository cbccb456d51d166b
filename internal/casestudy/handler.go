package casestudy

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/psoni/portfolio-api/internal/notebook"
)

// Handler exposes case study HTTP endpoints.
type Handler struct {
	service   *Service
	uploadDir string
	logger    *slog.Logger
}

// NewHandler builds a case study HTTP handler.
func NewHandler(service *Service, uploadDir string, logger *slog.Logger) *Handler {
	return &Handler{service: service, uploadDir: uploadDir, logger: logger}
}

type writeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TechStack   string `json:"techStack"`
}

type studyResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TechStack   string    `json:"techStack"`
	Content     string    `json:"content,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toResponse(study CaseStudy) studyResponse {
	return studyResponse{
		ID:          study.ID,
		Title:       study.Title,
		Description: study.Description,
		TechStack:   study.TechStack,
		Content:     study.Content,
		CreatedAt:   study.CreatedAt,
		UpdatedAt:   study.UpdatedAt,
	}
}

// List returns every case study. Public.
func (h *Handler) List(c *fiber.Ctx) error {
	studies, err := h.service.List(c.UserContext())
	if err != nil {
		h.logger.Error("list case studies", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "Failed to fetch case studies")
	}
	out := make([]studyResponse, 0, len(studies))
	for _, study := range studies {
		out = append(out, toResponse(study))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Get returns a single case study. Public.
func (h *Handler) Get(c *fiber.Ctx) error {
	study, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "Case study not found")
		}
		h.logger.Error("get case study", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "Failed to fetch case study")
	}
	return c.Status(http.StatusOK).JSON(toResponse(study))
}

// Create stores a new case study. Guarded.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req writeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	study, err := h.service.Create(c.UserContext(), Input{Title: req.Title, Description: req.Description, TechStack: req.TechStack})
	if err != nil {
		if errors.Is(err, ErrMissingFields) {
			return fiber.NewError(http.StatusBadRequest, "Missing required fields")
		}
		h.logger.Error("create case study", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "Failed to create case study")
	}
	return c.Status(http.StatusCreated).JSON(toResponse(study))
}

// Update overwrites an existing case study. Guarded.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req writeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	study, err := h.service.Update(c.UserContext(), c.Params("id"), Input{Title: req.Title, Description: req.Description, TechStack: req.TechStack})
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFields):
			return fiber.NewError(http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "Case study not found")
		default:
			h.logger.Error("update case study", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "Failed to update case study")
		}
	}
	return c.Status(http.StatusOK).JSON(toResponse(study))
}

// Delete removes a case study. Guarded.
func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "Case study not found")
		}
		h.logger.Error("delete case study", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "Failed to delete case study")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Case study deleted successfully"})
}

// Upload accepts one notebook file, converts it to HTML and stores the
// result on the case study. Guarded.
func (h *Handler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "file is required")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.Error("create upload dir", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "Error processing upload")
	}

	tmpPath := filepath.Join(h.uploadDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(file.Filename)))
	if err := c.SaveFile(file, tmpPath); err != nil {
		h.logger.Error("save upload", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "Error processing upload")
	}
	defer os.Remove(tmpPath)

	if err := h.service.AttachNotebook(c.UserContext(), c.Params("id"), tmpPath); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, "Case study not found")
		case errors.Is(err, notebook.ErrConversion):
			h.logger.Error("notebook conversion", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "Error converting notebook")
		default:
			h.logger.Error("attach notebook", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "Error processing upload")
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Notebook uploaded and associated with case study",
	})
}
