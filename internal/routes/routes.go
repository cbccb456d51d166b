package routes

import (
	"log/slog"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/psoni/portfolio-api/internal/auth"
	"github.com/psoni/portfolio-api/internal/casestudy"
	"github.com/psoni/portfolio-api/internal/config"
	"github.com/psoni/portfolio-api/internal/middleware"
	"github.com/psoni/portfolio-api/internal/notebook"
	"github.com/psoni/portfolio-api/internal/notification"
	"github.com/psoni/portfolio-api/internal/user"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Notifier notification.Notifier
	Logger   *slog.Logger
}

// Setup configures middlewares and all application routes. Without a
// database the repositories fall back to in-memory stores, which keeps the
// full route surface testable.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     d.Cfg.CORSOrigins,
			AllowCredentials: true,
			ExposeHeaders:    fiber.HeaderSetCookie,
		}))
	}
	app.Use(middleware.Audit(d.Logger))

	var userRepo user.Repository
	if d.DB != nil {
		userRepo = user.NewPostgresRepository(d.DB)
	} else {
		userRepo = user.NewMemoryRepository()
	}

	var studyRepo casestudy.Repository
	if d.DB != nil {
		studyRepo = casestudy.NewPostgresRepository(d.DB)
	} else {
		studyRepo = casestudy.NewMemoryRepository()
	}

	converter, err := notebook.NewNBConvert(filepath.Join(d.Cfg.UploadDir, "notebooks"), d.Cfg.ConvertTimeout)
	if err != nil {
		return err
	}

	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLogNotifier(d.Logger)
	}

	tokens := auth.NewTokenIssuer(d.Cfg.JWTSecret, auth.SessionTTL)
	authSvc := auth.NewService(userRepo, notifier, tokens, d.Logger)
	authHandler := auth.NewHandler(authSvc, d.Logger)

	studySvc := casestudy.NewService(studyRepo, converter)
	studyHandler := casestudy.NewHandler(studySvc, d.Cfg.UploadDir, d.Logger)

	guard := middleware.AdminGuard(tokens, userRepo)
	rateLimiter := middleware.OTPRateLimit(d.Cache, 5)

	api := app.Group("/api")
	RegisterHealthRoutes(api, d)
	RegisterAuthRoutes(api, authHandler, rateLimiter, guard)
	RegisterCaseStudyRoutes(api, studyHandler, guard)

	return nil
}
