package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/destru/catalog-api/internal/api/handler"
	"github.com/destru/catalog-api/internal/api/middleware"
	"github.com/destru/catalog-api/internal/core/ports"
	"github.com/destru/catalog-api/internal/core/service"
	"github.com/destru/catalog-api/internal/infrastructure/config"
	mongodb "github.com/destru/catalog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/destru/catalog-api/internal/infrastructure/db/redis"
	"github.com/destru/catalog-api/internal/infrastructure/token"
	"github.com/destru/catalog-api/pkg/opaqueid"
	"github.com/destru/catalog-api/pkg/passhash"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The audit recorder is constructed and started by the caller so its worker
// lifecycle is tied to the process context.
func NewRouter(cfg *config.Config, client *mongo.Client, db *mongo.Database, rdb *redis.Client, audit ports.AuditRecorder, log zerolog.Logger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("catalog"))

	// --- Dependencies ---
	codec, err := opaqueid.New(opaqueid.Config{})
	if err != nil {
		return nil, err
	}

	authService := service.NewAuthService(service.AuthDeps{
		Users:    mongodb.NewUserRepository(db),
		Sessions: service.NewSessionManager(mongodb.NewSessionStore(client, db), log),
		Hasher:   passhash.New(passhash.DefaultParams()),
		Codec:    codec,
		Signer:   token.NewJWTSigner(cfg.JWTSecret),
		Limiter:  redisdb.NewLoginLimiter(rdb),
		Audit:    audit,
	}, cfg.Session.TTL, cfg.Session.RememberTTL, log)

	authHandler := handler.NewAuthHandler(authService, cookiePolicy(cfg))

	// --- Auth routes ---
	e.POST("/auths/register", authHandler.Register)
	e.POST("/auths/login", authHandler.Login)
	e.POST("/auths/logout", authHandler.Logout, middleware.RequireTokenCookie())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational surface ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e, nil
}

// cookiePolicy selects the session-cookie scoping for the deployment mode.
func cookiePolicy(cfg *config.Config) handler.CookiePolicy {
	if cfg.IsProduction() {
		return handler.CookiePolicy{
			SameSite: http.SameSiteLaxMode,
			Domain:   cfg.CookieDomain,
		}
	}
	return handler.CookiePolicy{SameSite: http.SameSiteNoneMode}
}
