package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/psoni/portfolio-api/internal/auth"
	"github.com/psoni/portfolio-api/internal/user"
)

func newGuardedApp(t *testing.T, tokens *auth.TokenIssuer, repo user.Repository) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/protected", AdminGuard(tokens, repo), func(c *fiber.Ctx) error {
		u, _ := c.Locals("user").(user.User)
		return c.JSON(fiber.Map{"username": u.Username})
	})
	return app
}

func seedGuardUser(t *testing.T, repo user.Repository, id, username string, admin bool) user.User {
	t.Helper()
	u := user.User{ID: id, Username: username, Email: username + "@example.com", IsAdmin: admin, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestGuardRejectsMissingToken(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	app := newGuardedApp(t, tokens, user.NewMemoryRepository())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGuardRejectsInvalidToken(t *testing.T) {
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	app := newGuardedApp(t, tokens, user.NewMemoryRepository())

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not-a-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGuardRejectsExpiredToken(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedGuardUser(t, repo, "id-admin", "admin", true)

	expired := auth.NewTokenIssuer("test-secret", -time.Minute)
	token, err := expired.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	app := newGuardedApp(t, tokens, repo)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGuardForbidsNonAdmin(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedGuardUser(t, repo, "id-visitor", "visitor", false)

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	token, err := tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	app := newGuardedApp(t, tokens, repo)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGuardForbidsRevokedAdmin(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedGuardUser(t, repo, "id-admin", "admin", true)

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	token, err := tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Token is valid, but the record no longer exists: the guard must not
	// trust the embedded admin flag.
	app := newGuardedApp(t, tokens, user.NewMemoryRepository())
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestGuardAcceptsCookieAndBearer(t *testing.T) {
	repo := user.NewMemoryRepository()
	u := seedGuardUser(t, repo, "id-admin", "admin", true)

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	token, err := tokens.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	app := newGuardedApp(t, tokens, repo)

	bearer := httptest.NewRequest(http.MethodGet, "/protected", nil)
	bearer.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	resp, err := app.Test(bearer)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("bearer: expected 200, got %d", resp.StatusCode)
	}

	cookie := httptest.NewRequest(http.MethodGet, "/protected", nil)
	cookie.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	resp, err = app.Test(cookie)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cookie: expected 200, got %d", resp.StatusCode)
	}
}
