package handler

import (
	"context"
	"net/http"

	appidentity "github.com/customeridentity/backend/internal/application/identity"
	"github.com/customeridentity/backend/internal/domain/identity"
	"github.com/customeridentity/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthService is the part of the authentication service the handler needs
type AuthService interface {
	Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.LoginResult, error)
	Logout(ctx context.Context, principal identity.Principal) error
}

// AuthHandler handles authentication-related API endpoints
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), appidentity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     result.Token,
		Type:      result.TokenType,
		Username:  result.Username,
		ExpiresIn: result.ExpiresIn,
	})
}

// Validate handles POST /auth/validate. The auth filter has already checked
// the token; this only reports the outcome.
func (h *AuthHandler) Validate(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Token is invalid or expired")
		return
	}
	c.JSON(http.StatusOK, ValidateResponse{
		Valid:    true,
		Username: principal.Username,
		Message:  "Token is valid for user: " + principal.Username,
	})
}

// Logout handles POST /auth/logout by revoking the presented token
func (h *AuthHandler) Logout(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), principal); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
