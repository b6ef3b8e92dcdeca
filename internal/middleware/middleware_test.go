package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func do(r http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := newEngine(RequestID())

	w := do(r, http.MethodGet, "/ok", nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get("X-Request-ID")
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	w = do(r, http.MethodGet, "/ok", map[string]string{"X-Request-ID": "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRecovery_ReturnsGeneric500(t *testing.T) {
	r := newEngine(RequestID(), Recovery())

	w := do(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestCORS_Preflight(t *testing.T) {
	r := newEngine(CORS())

	w := do(r, http.MethodOptions, "/ok", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestErrorHandler_AttachedError(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/fail", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := do(r, http.MethodGet, "/fail", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	r := newEngine(RateLimiter(2, time.Minute))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ok", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ok", nil).Code)
	w := do(r, http.MethodGet, "/ok", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiter_DisabledWhenZero(t *testing.T) {
	r := newEngine(RateLimiter(0, time.Minute))
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ok", nil).Code)
	}
}

func TestRateLimiter_WindowResetAndPurge(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newRateLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	ok, _ := l.allow("10.0.0.1")
	assert.True(t, ok)
	ok, _ = l.allow("10.0.0.1")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, l.purge())

	ok, _ = l.allow("10.0.0.1")
	assert.True(t, ok)
}
