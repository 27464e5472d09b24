package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/config"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"github.com/salesdesk/backend/internal/interfaces/http/handler"
	"github.com/salesdesk/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers mounted by NewEngine
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	Records     *handler.RecordHandler
	Bulk        *handler.BulkHandler
	Imports     *handler.ImportHandler
	Preferences *handler.PreferenceHandler
	Users       *handler.UserHandler
}

// EngineConfig carries what the middleware chain needs
type EngineConfig struct {
	Logger      *zap.Logger
	JWTService  *auth.JWTService
	Revocations auth.RevocationList
	HTTP        config.HTTPConfig
	Tracing     middleware.TracingConfig
	Security    middleware.SecurityConfig
}

const (
	// loginPath is public; every other versioned route needs a token.
	loginPath = "/auth/login"

	defaultMaxBodySize    = 32 << 20
	defaultLoginRateLimit = 10
)

// NewEngine builds the gin engine with the global middleware chain, the
// health check and every API route.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	maxBody := cfg.HTTP.MaxBodySize
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}
	limit := cfg.HTTP.LoginRateLimit
	if limit <= 0 {
		limit = defaultLoginRateLimit
	}

	engine := gin.New()
	engine.Use(
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.TracingWithConfig(cfg.Tracing),
		logger.GinMiddleware(cfg.Logger),
		middleware.SpanErrorMarker(),
		middleware.Secure(cfg.Security),
		middleware.CORSWithConfig(corsConfig(cfg.HTTP)),
		middleware.BodyLimit(maxBody),
	)

	engine.GET("/health", h.Health.Check)

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			JWTService:  cfg.JWTService,
			Revocations: cfg.Revocations,
			SkipPaths:   []string{r.Prefix() + loginPath},
			Logger:      cfg.Logger,
		}),
		middleware.TracingAttributeInjector(),
	)

	r.Register(DomainGroups(h, middleware.NewRateLimiter(limit, time.Minute))...)
	r.Setup()
	return engine
}

// DomainGroups returns the API route groups. Login is throttled per client
// IP by loginLimiter; user creation is limited to administrators.
func DomainGroups(h Handlers, loginLimiter *middleware.RateLimiter) []RouteRegistrar {
	authGroup := NewDomainGroup("auth", "/auth")
	authGroup.POST("/login", middleware.RateLimit(loginLimiter), h.Auth.Login).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.GetCurrentUser)

	schemas := NewDomainGroup("schemas", "/schemas")
	schemas.GET("", h.Records.ListSchemas)

	records := NewDomainGroup("records", "/records/:kind")
	records.GET("", h.Records.List).
		POST("", h.Records.Create).
		GET("/schema", h.Records.GetSchema).
		GET("/export", h.Imports.Export).
		POST("/import", h.Imports.Import).
		POST("/batch", h.Imports.Batch).
		GET("/:id", h.Records.Get).
		PUT("/:id", h.Records.Update).
		DELETE("/:id", h.Records.Delete).
		PUT("/:id/status", h.Records.ChangeStatus)
	records.Group("bulk", "/bulk").
		POST("/delete", h.Bulk.Delete).
		PUT("/:mode", h.Bulk.Apply)

	imports := NewDomainGroup("imports", "/imports")
	imports.GET("", h.Imports.ListHistory).
		GET("/:id", h.Imports.GetHistory)

	prefs := NewDomainGroup("preferences", "/preferences/:kind")
	prefs.GET("", h.Preferences.Get).
		PUT("", h.Preferences.Update).
		POST("/pins/:id", h.Preferences.TogglePin)

	users := NewDomainGroup("users", "/users")
	users.GET("/agents", h.Users.ListAgents).
		POST("", middleware.RequireRoles(identity.RoleSuperAdmin, identity.RoleAdmin), h.Users.Create)

	return []RouteRegistrar{authGroup, schemas, records, imports, prefs, users}
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.CORSAllowOrigins
	}
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}
