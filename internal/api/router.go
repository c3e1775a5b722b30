package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/pixelmuse/imagevault/internal/api/handler"
	"github.com/pixelmuse/imagevault/internal/api/middleware"
	"github.com/pixelmuse/imagevault/internal/core/ports"
	mongodb "github.com/pixelmuse/imagevault/internal/infrastructure/db/mongo"
)

// RouterConfig carries everything the HTTP layer needs. Services are injected
// rather than constructed here so tests can swap them for stubs.
type RouterConfig struct {
	Users     ports.UserService
	Images    ports.ImageService
	Mongo     *mongodb.Manager
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("imagevault"))
	// Page-style protected prefixes (credits, profile, transformations).
	e.Use(middleware.Guard(cfg.JWTSecret))

	authMW := middleware.Auth(cfg.JWTSecret)

	userHandler := handler.NewUserHandler(cfg.Users)
	imageHandler := handler.NewImageHandler(cfg.Images, cfg.Users, cfg.Logger)

	// --- Public catalog reads ---
	e.GET("/v1/images", imageHandler.Search)
	e.GET("/v1/images/:id", imageHandler.Get)

	// --- Authenticated catalog mutations ---
	images := e.Group("/v1/images", authMW)
	images.POST("", imageHandler.Create)
	images.PATCH("/:id", imageHandler.Update)
	images.DELETE("/:id", imageHandler.Delete)

	// --- User ledger (identity provider lifecycle + credits) ---
	users := e.Group("/v1/users", authMW)
	users.POST("", userHandler.Create)
	users.GET("/:external_id", userHandler.Get)
	users.PATCH("/:external_id", userHandler.Update)
	users.DELETE("/:external_id", userHandler.Delete)
	users.POST("/:id/credits", userHandler.AdjustCredits)

	// Guarded by the protected-path prefix matcher, not a group middleware.
	e.GET("/profile/images", imageHandler.ListMine)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(cfg.Mongo, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
