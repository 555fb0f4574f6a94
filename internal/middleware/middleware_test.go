package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/gotrue-go/types"

	"github.com/joshua-takyi/spk/internal/helpers"
)

const testUserID = "6f1c2a8e-3b7d-4c1e-9a55-0d2f7b8e4c11"

type fakeValidator struct {
	valid map[string]bool
}

func (f *fakeValidator) ValidateToken(token string) (*helpers.CustomClaims, error) {
	if !f.valid[token] {
		return nil, errors.New("token is expired")
	}
	return &helpers.CustomClaims{
		Role:             "authenticated",
		Email:            "student@njit.edu",
		RegisteredClaims: jwt.RegisteredClaims{Subject: testUserID},
	}, nil
}

type fakeRefresher struct {
	calls int
	res   *types.TokenResponse
	err   error
}

func (f *fakeRefresher) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	f.calls++
	return f.res, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authRouter(v TokenValidator, r TokenRefresher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(AuthMiddleware(v, r, false, discardLogger()))
	router.GET("/me", func(c *gin.Context) {
		claims := c.MustGet("user").(*helpers.EnhancedClaims)
		c.String(http.StatusOK, claims.UserID)
	})
	return router
}

func TestAuthMiddlewareAcceptsCookieAndBearer(t *testing.T) {
	router := authRouter(&fakeValidator{valid: map[string]bool{"good": true}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "good"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUserID, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	router := authRouter(&fakeValidator{}, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestAuthMiddlewareRefreshesExpiredSession(t *testing.T) {
	refresher := &fakeRefresher{res: &types.TokenResponse{Session: types.Session{
		AccessToken:  "fresh",
		RefreshToken: "next-refresh",
		ExpiresIn:    3600,
	}}}
	router := authRouter(&fakeValidator{valid: map[string]bool{"fresh": true}}, refresher)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "stale"})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "r1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, refresher.calls)
	cookies := w.Result().Cookies()
	names := map[string]string{}
	for _, ck := range cookies {
		names[ck.Name] = ck.Value
	}
	assert.Equal(t, "fresh", names[AccessTokenCookie])
	assert.Equal(t, "next-refresh", names[RefreshTokenCookie])
}

func TestAuthMiddlewareFailedRefresh(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("invalid refresh token")}
	router := authRouter(&fakeValidator{}, refresher)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "stale"})
	req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "r1"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(NewRateLimiter(0.001, 2)))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2"))
}

func TestRateLimitDisabled(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("10.0.0.1"))
	}
	var nilLimiter *RateLimiter
	assert.True(t, nilLimiter.Allow("x"))
}

func TestRequestIDAndErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), ErrorHandler(discardLogger()))
	router.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("db down")) })

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.NotContains(t, w.Body.String(), "db down")
}
