package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/psoni/portfolio-api/internal/user"
)

// Handler exposes the OTP login endpoints.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

// NewHandler builds the auth HTTP handler.
func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type requestOTPRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type requestOTPResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	RequestID string `json:"requestId"`
}

// RequestOTP validates credentials and emails a one-time code.
func (h *Handler) RequestOTP(c *fiber.Ctx) error {
	var req requestOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "username and password are required")
	}

	challenge, err := h.svc.RequestOTP(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return fiber.NewError(http.StatusUnauthorized, "Invalid credentials")
		}
		h.logger.Error("otp request failed", "error", err)
		return fiber.NewError(http.StatusInternalServerError, "Failed to send OTP")
	}

	return c.Status(http.StatusOK).JSON(requestOTPResponse{
		Message:   "OTP sent successfully",
		Email:     challenge.MaskedEmail,
		RequestID: challenge.RequestID,
	})
}

type verifyOTPRequest struct {
	RequestID string `json:"requestId"`
	OTP       string `json:"otp"`
}

// VerifyOTP checks the submitted code and issues a session token, delivered
// both in the response body and as an HTTP-only cookie.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	if req.RequestID == "" || req.OTP == "" {
		return fiber.NewError(http.StatusBadRequest, "requestId and otp are required")
	}

	token, err := h.svc.VerifyOTP(c.UserContext(), req.RequestID, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUser):
			return fiber.NewError(http.StatusUnauthorized, "Invalid user")
		case errors.Is(err, ErrOTPExpired):
			return fiber.NewError(http.StatusUnauthorized, "OTP expired or invalid")
		case errors.Is(err, ErrInvalidOTP):
			return fiber.NewError(http.StatusUnauthorized, "Invalid OTP")
		default:
			h.logger.Error("otp verification failed", "error", err)
			return fiber.NewError(http.StatusInternalServerError, "Server error")
		}
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		MaxAge:   int(SessionTTL.Seconds()),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// Logout clears the session cookie. It does not revoke the token value
// itself; a bearer copy stays valid until its natural expiry.
func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		MaxAge:   -1,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Logout successful"})
}

// CheckAuth reports the authenticated admin behind a valid session. The
// guard middleware has already resolved the user.
func (h *Handler) CheckAuth(c *fiber.Ctx) error {
	u, ok := c.Locals("user").(user.User)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"authenticated": true,
		"username":      u.Username,
	})
}
