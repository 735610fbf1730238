package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealshare/backend/internal/types"
)

type stubValidator struct {
	userID uuid.UUID
}

func (s stubValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &types.TokenClaims{UserID: s.userID, Username: "tester"}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func whoami(c *gin.Context) {
	id, ok := CurrentUserID(c)
	if !ok {
		c.String(http.StatusOK, "anonymous")
		return
	}
	c.String(http.StatusOK, id.String())
}

func do(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	id := uuid.New()
	r := gin.New()
	r.GET("/me", AuthMiddleware(stubValidator{userID: id}), whoami)

	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/me", "Token good").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "GET", "/me", "Bearer bad").Code)

	w := do(r, "GET", "/me", "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	id := uuid.New()
	r := gin.New()
	r.GET("/me", OptionalAuth(stubValidator{userID: id}), whoami)

	assert.Equal(t, "anonymous", do(r, "GET", "/me", "").Body.String())
	assert.Equal(t, "anonymous", do(r, "GET", "/me", "Bearer bad").Body.String())
	assert.Equal(t, id.String(), do(r, "GET", "/me", "Bearer good").Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRecipeCreationRateLimiter(client, time.Hour, 2)
	r := gin.New()
	r.POST("/recipes", AuthMiddleware(stubValidator{userID: uuid.New()}), limiter.RateLimitMiddleware(), whoami)

	first := do(r, "POST", "/recipes", "Bearer good")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do(r, "POST", "/recipes", "Bearer good").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "POST", "/recipes", "Bearer good").Code)

	// redis failures fail open
	mr.Close()
	assert.Equal(t, http.StatusOK, do(r, "POST", "/recipes", "Bearer good").Code)
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	limiter := NewSocialWriteRateLimiter(nil, time.Hour, 1)
	r := gin.New()
	r.POST("/follow", limiter.RateLimitMiddleware(), whoami)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, "POST", "/follow", "").Code)
	}
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := do(r, "GET", "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest("GET", "/ok", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
