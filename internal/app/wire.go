package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/designcode/backoffice/internal/auth"
	"github.com/designcode/backoffice/internal/credential"
	"github.com/designcode/backoffice/internal/domain"
	"github.com/designcode/backoffice/internal/guard"
	"github.com/designcode/backoffice/internal/handler"
	adminhandler "github.com/designcode/backoffice/internal/handler/admin"
	"github.com/designcode/backoffice/internal/repository"
	"github.com/designcode/backoffice/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Admins   repository.AdminRepository
	Attempts repository.LoginAttemptRepository
	DB       handler.Pinger
	Hasher   credential.Hasher
	JWTMgr   *auth.JWTManager
	Logger   *slog.Logger

	CORSAllowedOrigins string
	// LoginRateLimit caps login requests per client IP per minute.
	LoginRateLimit int
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	loginLimit := deps.LoginRateLimit
	if loginLimit <= 0 {
		loginLimit = 20
	}

	// Guards
	lockout := guard.NewLockout(deps.Attempts, logger)
	throttle := guard.NewRateLimiter(loginLimit, time.Minute)

	// Services
	adminSvc := service.NewAdminService(deps.Admins, deps.Hasher, logger)
	authSvc := service.NewAuthService(deps.Admins, deps.Hasher, deps.JWTMgr, lockout, throttle, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	adminsHandler := adminhandler.NewAdminsHandler(adminSvc)
	profileHandler := adminhandler.NewProfileHandler(adminSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(deps.DB))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.With(httprate.Limit(loginLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				handler.RespondError(w, domain.ErrAccountLocked("too many login attempts, try again later"))
			}),
		)).Post("/login", authHandler.Login)
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(deps.JWTMgr, authSvc.ResolveActor))

		r.Get("/profile", profileHandler.Get)
		r.Patch("/profile", profileHandler.Update)
		r.Post("/change-password", profileHandler.ChangePassword)

		r.Route("/admins", func(r chi.Router) {
			r.Get("/", adminsHandler.List)
			r.Post("/", adminsHandler.Create)
			r.Get("/{id}", adminsHandler.Get)
			r.Patch("/{id}", adminsHandler.Update)
			r.Delete("/{id}", adminsHandler.Delete)
			r.With(handler.NoStore).Post("/{id}/reset-password", adminsHandler.ResetPassword)
		})
	})

	return r
}
