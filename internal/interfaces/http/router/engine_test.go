package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	appcustomer "github.com/customeridentity/backend/internal/application/customer"
	appidentity "github.com/customeridentity/backend/internal/application/identity"
	"github.com/customeridentity/backend/internal/infrastructure/auth"
	"github.com/customeridentity/backend/internal/infrastructure/config"
	"github.com/customeridentity/backend/internal/infrastructure/orderclient"
	"github.com/customeridentity/backend/internal/infrastructure/persistence"
	"github.com/customeridentity/backend/internal/infrastructure/telemetry"
	"github.com/customeridentity/backend/internal/interfaces/http/dto"
	"github.com/customeridentity/backend/internal/interfaces/http/handler"
	"github.com/customeridentity/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testServer struct {
	engine *gin.Engine
}

// newTestServer wires the real services over a private in-memory SQLite database
func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	middleware.SetupValidator()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	database := persistence.NewDatabaseFromGorm(db)
	require.NoError(t, database.AutoMigrate())

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	directory, err := auth.NewDirectory(hasher, config.DefaultUsers())
	require.NoError(t, err)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "engine-test-secret-with-at-least-32-chars",
		Expiration: time.Hour,
		Issuer:     "customer-identity-test",
	})
	metrics := telemetry.NewNopServiceMetrics()
	authService := appidentity.NewAuthService(directory, hasher, jwtService, auth.NewInMemoryTokenBlacklist(), metrics, zap.NewNop())
	customerService := appcustomer.NewService(persistence.NewGormCustomerRepository(db), orderclient.NoopClient{}, metrics, zap.NewNop())

	engine, err := New(Config{
		Logger:        zap.NewNop(),
		Authenticator: authService,
		Security:      middleware.DefaultSecurityConfig(),
		CORS:          middleware.DefaultCORSConfig(),
		MaxBodySize:   1 << 20,
	}, Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Customer:     handler.NewCustomerHandler(customerService),
		Health:       handler.NewHealthHandler(database, time.Second),
		LoginLimiter: limiter,
	})
	require.NoError(t, err)
	return &testServer{engine: engine}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", "",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handler.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestEngine_CustomerLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "admin", "admin123")

	w := s.do(http.MethodPost, "/api/v1/customers", token, `{
		"firstName": "Grace", "lastName": "Hopper",
		"email": "grace@example.com", "ssn": "111-22-3333",
		"addresses": [{"street": "1 Navy Way", "city": "Arlington", "state": "VA", "zipCode": "22202", "addressType": "WORK"}]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created appcustomer.CustomerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Positive(t, created.ID)
	assert.Equal(t, "PENDING_VERIFICATION", created.Status)
	require.Len(t, created.Addresses, 1)
	assert.Empty(t, created.Orders)

	path := fmt.Sprintf("/api/v1/customers/%d", created.ID)

	w = s.do(http.MethodGet, path, token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/v1/customers", token,
		`{"firstName":"Other","lastName":"Person","email":"grace@example.com","ssn":"999-99-9999"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/v1/customers?page=1&page_size=10", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, float64(1), page["total"])

	w = s.do(http.MethodDelete, path, token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, path, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var notFound dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &notFound))
	assert.Equal(t, fmt.Sprintf("Customer not found with id: %d", created.ID), notFound.Message)

	// the soft-deleted customer's email is free again
	w = s.do(http.MethodPost, "/api/v1/customers", token,
		`{"firstName":"Grace","lastName":"Hopper","email":"grace@example.com","ssn":"111-22-3333"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEngine_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name  string
		token string
	}{
		{"no header", ""},
		{"garbage token", "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/api/v1/customers", tt.token, "")
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Unauthorized", resp.Error)
		})
	}
}

func TestEngine_LoginRejected(t *testing.T) {
	s := newTestServer(t, nil)

	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"nobody","password":"admin123"}`,
		`{"username":"ADMIN","password":"admin123"}`,
	} {
		w := s.do(http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, body)
	}
}

func TestEngine_ValidateAndLogout(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "demo", "demo123")

	w := s.do(http.MethodPost, "/api/v1/auth/validate", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true,"username":"demo","message":"Token is valid for user: demo"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/auth/logout", token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/validate", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, "/api/v1/customers", token, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEngine_LoginRateLimited(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(60, 2))

	body := `{"username":"admin","password":"wrong"}`
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(http.MethodPost, "/api/v1/auth/login", "", body).Code)
}

func TestEngine_HealthAndHeaders(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var health dto.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "UP", health.Status)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestEngine_UnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/api/v1/nothing-here", "", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 404, resp.Status)
}

func TestEngine_PanicRecovered(t *testing.T) {
	s := newTestServer(t, nil)
	s.engine.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := s.do(http.MethodGet, "/boom", "", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.MessageUnexpected, resp.Message)
}
