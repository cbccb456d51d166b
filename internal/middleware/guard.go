package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/psoni/portfolio-api/internal/auth"
	"github.com/psoni/portfolio-api/internal/user"
)

// AdminGuard returns a middleware that authorizes protected operations. The
// token is read from the session cookie first, then from a bearer
// Authorization header. A valid token is not trusted on its own: the user is
// re-fetched from the store so an admin flag revoked after issuance locks
// the token out with 403.
func AdminGuard(tokens *auth.TokenIssuer, repo user.Repository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(auth.SessionCookie)
		if token == "" {
			authz := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("Bearer "):])
			}
		}
		if token == "" {
			return fiber.NewError(http.StatusUnauthorized, "Unauthorized: No token provided")
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "Unauthorized: Invalid token")
		}

		u, err := repo.FindByID(c.UserContext(), claims.Subject)
		if err != nil || !u.IsAdmin {
			return fiber.NewError(http.StatusForbidden, "Forbidden: Not an admin")
		}

		c.Locals("user", u)
		c.Locals("user_id", u.ID)
		return c.Next()
	}
}
