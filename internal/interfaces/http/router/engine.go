package router

import (
	"fmt"
	"net/http"

	"github.com/customeridentity/backend/internal/infrastructure/logger"
	"github.com/customeridentity/backend/internal/interfaces/http/dto"
	"github.com/customeridentity/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Config holds the cross-cutting settings of the engine
type Config struct {
	Logger         *zap.Logger
	Authenticator  middleware.Authenticator
	Tracing        middleware.TracingConfig
	Metrics        middleware.HTTPMetricsConfig
	Security       middleware.SecurityConfig
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
}

// New builds the gin engine with the global middleware chain and every route.
//
// Middleware order: RequestID, Recovery, Tracing, SpanEnricher, request
// logging, metrics, security headers, CORS, body limit, auth filter.
func New(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log, panicResponse),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(cfg.Metrics),
		middleware.SecureWithConfig(cfg.Security),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.BodyLimit(cfg.MaxBodySize),
		middleware.AuthFilter(middleware.AuthFilterConfig{
			Authenticator: cfg.Authenticator,
			SkipPaths:     middleware.DefaultSkipPaths(),
			Logger:        log,
		}),
	)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound,
			"No route for "+c.Request.Method+" "+c.Request.URL.Path))
	})

	engine.GET("/health", h.Health.Check)

	NewRouter(engine).
		Register(authRoutes(h)).
		Register(customerRoutes(h)).
		Setup()

	return engine, nil
}

func panicResponse(c *gin.Context, _ any) {
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(http.StatusInternalServerError, dto.MessageUnexpected))
}
