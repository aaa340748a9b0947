package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mietlink_backend/internal/auth"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append(mw, func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})
	r.GET("/x", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	auth.Configure("mw-secret", time.Hour)
	token, _, err := auth.GenerateToken("u-1", auth.RoleTenant)
	require.NoError(t, err)

	r := newRouter(AuthMiddleware())

	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")

	w = do(r, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")

	w = do(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1", w.Body.String())
}

func TestRequireLandlordSide(t *testing.T) {
	auth.Configure("mw-secret", time.Hour)
	tenant, _, _ := auth.GenerateToken("t", string(models.UserRoleTenant))
	regie, _, _ := auth.GenerateToken("r", string(models.UserRoleRegie))

	r := newRouter(AuthMiddleware(), RequireLandlordSide())

	assert.Equal(t, http.StatusForbidden, do(r, tenant).Code)
	assert.Equal(t, http.StatusOK, do(r, regie).Code)
}

func TestRateLimit(t *testing.T) {
	r := newRouter(RateLimit(ratelimit.NewMemoryLimiter(), "ai", 2, time.Minute))

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "").Code)
	w := do(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://app.local"}))
	r.OPTIONS("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://app.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))
}
