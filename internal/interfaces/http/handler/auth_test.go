package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appidentity "github.com/customeridentity/backend/internal/application/identity"
	"github.com/customeridentity/backend/internal/domain/identity"
	"github.com/customeridentity/backend/internal/domain/shared"
	"github.com/customeridentity/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.LoginResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, principal identity.Principal) error {
	args := m.Called(ctx, principal)
	return args.Error(0)
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, mock.MatchedBy(func(in appidentity.LoginInput) bool {
		return in.Username == "admin" && in.Password == "admin123"
	})).Return(&appidentity.LoginResult{
		Token:     "signed.jwt.token",
		TokenType: appidentity.TokenTypeBearer,
		Username:  "admin",
		ExpiresIn: 3600,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	h := NewAuthHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = postJSON("/api/v1/auth/login", `{"username":"admin","password":"admin123"}`)

	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, LoginResponse{Token: "signed.jwt.token", Type: "Bearer", Username: "admin", ExpiresIn: 3600}, resp)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Login", mock.Anything, mock.Anything).Return(nil, shared.ErrInvalidCredentials)

	h := NewAuthHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = postJSON("/api/v1/auth/login", `{"username":"admin","password":"nope"}`)

	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid username or password", decodeError(t, w).Message)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	svc := new(MockAuthService)
	h := NewAuthHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = postJSON("/api/v1/auth/login", `{"username":"admin"}`)

	h.Login(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Validation failed", resp.Message)
	assert.Equal(t, []string{"password: This field is required"}, resp.Details)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthHandler_Validate(t *testing.T) {
	h := NewAuthHandler(new(MockAuthService))

	t.Run("with principal", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/validate", nil)
		c.Set(middleware.PrincipalKey, identity.Principal{Username: "demo"})

		h.Validate(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp ValidateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Equal(t, "demo", resp.Username)
		assert.Equal(t, "Token is valid for user: demo", resp.Message)
	})

	t.Run("without principal", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/validate", nil)

		h.Validate(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Token is invalid or expired", decodeError(t, w).Message)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	principal := identity.Principal{Username: "user", TokenID: "jti-9"}
	svc := new(MockAuthService)
	svc.On("Logout", mock.Anything, principal).Return(nil)

	h := NewAuthHandler(svc)
	router := gin.New()
	router.POST("/api/v1/auth/logout", func(c *gin.Context) {
		c.Set(middleware.PrincipalKey, principal)
		h.Logout(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	svc.AssertExpectations(t)
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	svc := new(MockAuthService)
	h := NewAuthHandler(svc)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)

	h.Logout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}
