package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brotodesk/internal/config"
	"brotodesk/internal/models"
	"brotodesk/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthService() *services.AuthService {
	return services.NewAuthService(nil, &config.Config{
		JWT: config.JWTConfig{Secret: "middleware-test-secret", ExpiresIn: "1h"},
	})
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthenticate(t *testing.T) {
	authService := testAuthService()
	token, err := authService.IssueToken(&models.User{ID: "u-1", Email: "asha@example.com", Role: models.RoleStudent})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Authenticate(authService), func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": actor.ID, "role": actor.Role})
	})

	t.Run("valid token", func(t *testing.T) {
		w := perform(r, http.MethodGet, "/me", "Bearer "+token)
		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "u-1", body["id"])
		assert.Equal(t, "STUDENT", body["role"])
	})

	tests := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing header", "", "Authorization header required"},
		{"wrong scheme", "Basic " + token, "Invalid authorization header format"},
		{"garbage token", "Bearer abc.def.ghi", "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, "/me", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.msg, decode(t, w)["error"])
		})
	}
}

func TestRequireRole(t *testing.T) {
	authService := testAuthService()
	r := gin.New()
	r.GET("/admin", Authenticate(authService), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for role, want := range map[models.Role]int{
		models.RoleStudent:    http.StatusForbidden,
		models.RoleAdmin:      http.StatusNoContent,
		models.RoleSuperAdmin: http.StatusNoContent,
	} {
		token, err := authService.IssueToken(&models.User{ID: "u-" + string(role), Role: role})
		require.NoError(t, err)
		w := perform(r, http.MethodGet, "/admin", "Bearer "+token)
		assert.Equal(t, want, w.Code, role)
	}

	bare := gin.New()
	bare.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusUnauthorized, perform(bare, http.MethodGet, "/admin", "").Code)
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/validation", func(c *gin.Context) {
		c.Error(services.NewValidationError("Title must be at least 5 characters",
			services.FieldError{Field: "title", Message: "Title must be at least 5 characters"}))
	})
	r.GET("/missing", func(c *gin.Context) { c.Error(services.ErrComplaintNotFound) })
	r.GET("/conflict", func(c *gin.Context) { c.Error(services.ErrEmailTaken) })
	r.GET("/denied", func(c *gin.Context) { c.Error(services.ErrAccessDenied) })
	r.GET("/boom", func(c *gin.Context) { c.Error(errors.New("database is locked")) })
	r.GET("/ok", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := perform(r, http.MethodGet, "/validation", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Title must be at least 5 characters", body["error"])
	require.Len(t, body["details"], 1)

	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/missing", "").Code)
	assert.Equal(t, http.StatusConflict, perform(r, http.MethodGet, "/conflict", "").Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/denied", "").Code)

	w = perform(r, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body = decode(t, w)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, body, "details")

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/ok", "").Code)
}

func TestTranslateHidesInternalCause(t *testing.T) {
	status, body := Translate(services.Internal(errors.New("UNIQUE constraint failed: users.email")))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, errorResponse{Error: "Internal server error"}, body)
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(nil, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)
	}
}

func TestRateLimitFailsOpenWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	r := gin.New()
	r.POST("/login", RateLimit(rdb, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)
}
