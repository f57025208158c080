package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"easybook/database/repository/memory"
	"easybook/models"
	"easybook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *memory.UserRepo) {
	t.Helper()
	users := memory.NewUserRepo()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &models.User{ID: "u-1", Email: "a@example.com", Role: models.RoleCustomer, IsActive: true}))
	require.NoError(t, users.Create(ctx, &models.User{ID: "u-2", Email: "b@example.com", Role: models.RoleProvider, IsActive: false}))

	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(users), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextUserID))
	})
	r.GET("/providers-only", JWTAuthMiddleware(users), RequireRole(models.RoleProvider, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, users
}

func call(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	r, _ := newRouter(t)

	assert.Equal(t, http.StatusUnauthorized, call(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/me", "garbage").Code)

	token, err := utils.GenerateToken("u-1", "customer", time.Hour)
	require.NoError(t, err)
	w := call(r, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())

	ghost, err := utils.GenerateToken("u-404", "customer", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, call(r, "/me", ghost).Code)

	inactive, err := utils.GenerateToken("u-2", "provider", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(r, "/me", inactive).Code)
}

func TestRequireRoleUsesStoredRole(t *testing.T) {
	r, _ := newRouter(t)

	// The token claims provider but the stored role is customer.
	token, err := utils.GenerateToken("u-1", "provider", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, call(r, "/providers-only", token).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0.001, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, call(r, "/", "").Code)
	assert.Equal(t, http.StatusOK, call(r, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(r, "/", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLimiterStoreDropsIdleVisitors(t *testing.T) {
	store := newRateLimiterStore(1, 1)
	start := time.Now()
	store.getLimiter("198.51.100.1", start)
	store.getLimiter("198.51.100.2", start.Add(limiterIdleTTL+time.Second))
	store.getLimiter("198.51.100.2", start.Add(2*limiterIdleTTL+2*time.Second))

	assert.Len(t, store.visitors, 1)
	assert.Contains(t, store.visitors, "198.51.100.2")
}
