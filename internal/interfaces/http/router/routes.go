package router

import (
	"github.com/customeridentity/backend/internal/interfaces/http/handler"
	"github.com/customeridentity/backend/internal/interfaces/http/middleware"
)

// Handlers groups the handlers mounted by the engine
type Handlers struct {
	Auth     *handler.AuthHandler
	Customer *handler.CustomerHandler
	Health   *handler.HealthHandler
	// LoginLimiter throttles POST /auth/login per client IP; nil disables it
	LoginLimiter *middleware.RateLimiter
}

func authRoutes(h Handlers) *DomainGroup {
	login := h.Auth.Login
	g := NewDomainGroup("auth", "/auth")
	if h.LoginLimiter != nil {
		g.POST("/login", middleware.RateLimit(h.LoginLimiter), login)
	} else {
		g.POST("/login", login)
	}
	// validate reports on whatever the auth filter found, so it is not gated
	g.POST("/validate", h.Auth.Validate)
	g.POST("/logout", middleware.RequireAuth(), h.Auth.Logout)
	return g
}

func customerRoutes(h Handlers) *DomainGroup {
	g := NewDomainGroup("customers", "/customers").Use(middleware.RequireAuth())
	g.GET("", h.Customer.List)
	g.POST("", h.Customer.Create)
	g.GET("/:id", h.Customer.GetByID)
	g.PUT("/:id", h.Customer.Update)
	g.DELETE("/:id", h.Customer.Delete)

	g.Group("maintenance", "/maintenance").
		POST("/refresh-timestamps", h.Customer.RefreshTimestamps)
	return g
}
