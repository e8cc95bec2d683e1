package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/fixapp/fixapp-api/internal/api/handler"
	"github.com/fixapp/fixapp-api/internal/api/middleware"
	"github.com/fixapp/fixapp-api/internal/core/ports"
	"github.com/fixapp/fixapp-api/internal/infrastructure/config"
	"github.com/fixapp/fixapp-api/internal/infrastructure/db/sqlite"
	"github.com/fixapp/fixapp-api/pkg/token"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	cfg *config.Config,
	backend *sqlite.Backend,
	identity ports.IdentityService,
	sessions ports.SessionService,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("fixapp"))

	// --- Dependencies ---
	tokens := token.NewGenerator(cfg.Session.TokenBytes)
	authHandler := handler.NewAuthHandler(identity, sessions, tokens, cfg.Session.TTL)
	authMiddleware := middleware.Auth(sessions)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/me", authHandler.Me, authMiddleware)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(backend)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
