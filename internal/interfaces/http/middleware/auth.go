package middleware

import (
	"context"
	"net/http"
	"strings"

	appidentity "github.com/customeridentity/backend/internal/application/identity"
	"github.com/customeridentity/backend/internal/domain/identity"
	"github.com/customeridentity/backend/internal/infrastructure/logger"
	"github.com/customeridentity/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth context keys and header values
const (
	PrincipalKey  = "principal"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator resolves a bearer token to a principal
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (identity.Principal, error)
}

// AuthFilterConfig holds configuration for the authentication filter
type AuthFilterConfig struct {
	Authenticator Authenticator
	// SkipPaths are never inspected, even when they carry a header
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultSkipPaths lists the routes reachable without a token
func DefaultSkipPaths() []string {
	return []string{
		"/health",
		"/api/v1/auth/login",
	}
}

// AuthFilter attaches a principal to requests carrying a valid bearer token.
// It never rejects: missing or bad tokens leave the request unauthenticated
// and RequireAuth decides per route.
func AuthFilter(cfg AuthFilterConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		principal, err := cfg.Authenticator.Authenticate(ctx, token)
		if err != nil {
			logger.Enrich(ctx, log).Info("Bearer token rejected",
				zap.String("reason", string(appidentity.RejectionOf(err))),
				zap.String("path", c.Request.URL.Path))
			c.Next()
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(logger.GinUsernameKey, principal.Username)

		ctx = logger.WithUsername(ctx, principal.Username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAuth aborts with 401 unless AuthFilter attached a principal
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetPrincipal(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				http.StatusUnauthorized,
				"Authentication required",
				"A valid bearer token must be supplied in the Authorization header.",
			))
			return
		}
		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from gin.Context
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(identity.Principal); ok {
			return p, true
		}
	}
	return identity.Principal{}, false
}

// bearerToken extracts the token of a "Bearer <token>" Authorization header
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}
