package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coop-pos/internal/auth"
	"coop-pos/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *auth.Tokens) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	api := r.Group("/api", AuthMiddleware(tokens))
	api.GET("/whoami", func(c *gin.Context) {
		op, ok := Operator(c)
		c.JSON(http.StatusOK, gin.H{"ok": ok, "user_id": op.UserID, "role": op.Role})
	})
	api.GET("/admin", RequireRole(models.RoleAdmin, models.RoleManager), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokens("0123456789abcdef0123456789abcdef", time.Hour)
	r := newRouter(tokens)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/whoami", "garbage").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := tokens.GenerateToken(3, models.RoleCashier)
	require.NoError(t, err)
	w = do(r, http.MethodGet, "/api/whoami", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true,"user_id":3,"role":"cashier"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequireRole(t *testing.T) {
	tokens := auth.NewTokens("0123456789abcdef0123456789abcdef", time.Hour)
	r := newRouter(tokens)

	cashier, err := tokens.GenerateToken(3, models.RoleCashier)
	require.NoError(t, err)
	manager, err := tokens.GenerateToken(2, models.RoleManager)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/admin", cashier).Code)
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/api/admin", manager).Code)
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "till-7")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "till-7", w.Header().Get(RequestIDHeader))
}

func TestLoginLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/login", NewLoginLimiter(2).Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(r, http.MethodPost, "/login", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLoginLimiterDropsIdleClients(t *testing.T) {
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(2)
	l.now = func() time.Time { return clock }
	l.lastSweep = clock

	for i := 0; i < 100; i++ {
		assert.True(t, l.allow(fmt.Sprintf("10.0.%d.%d", i/250, i%250)))
	}
	assert.Len(t, l.clients, 100)

	clock = clock.Add(5 * time.Minute)
	assert.True(t, l.allow("10.0.0.1"))
	assert.Len(t, l.clients, 100)

	clock = clock.Add(6 * time.Minute)
	assert.True(t, l.allow("192.168.1.7"))
	assert.Len(t, l.clients, 2)
	assert.Contains(t, l.clients, "10.0.0.1")

	// the surviving client is still limited
	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
}
