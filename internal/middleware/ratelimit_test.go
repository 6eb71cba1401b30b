package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newRateLimitEngine(limiter *rateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.POST("/datasets/:name/chat", limiter.handle, func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return engine
}

func doChatRequest(engine *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/datasets/conf/chat", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksWithinWindow(t *testing.T) {
	current := time.Unix(1000, 0)
	limiter := &rateLimiter{
		window:        time.Second,
		sweepInterval: 10 * time.Second,
		last:          make(map[string]time.Time),
		now:           func() time.Time { return current },
	}
	engine := newRateLimitEngine(limiter)

	require.Equal(t, http.StatusOK, doChatRequest(engine, "10.0.0.1").Code)

	w := doChatRequest(engine, "10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), http.StatusText(http.StatusTooManyRequests))

	// a different client is not affected
	require.Equal(t, http.StatusOK, doChatRequest(engine, "10.0.0.2").Code)

	current = current.Add(time.Second)
	w = doChatRequest(engine, "10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestRateLimitDisabled(t *testing.T) {
	limiter := &rateLimiter{
		window: 0,
		last:   make(map[string]time.Time),
		now:    time.Now,
	}
	engine := newRateLimitEngine(limiter)
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, doChatRequest(engine, "10.0.0.1").Code)
	}
}

func TestRateLimitCleanupExpired(t *testing.T) {
	now := time.Unix(2000, 0)
	limiter := &rateLimiter{
		window: time.Second,
		last: map[string]time.Time{
			"old":    now.Add(-5 * time.Second),
			"recent": now.Add(-100 * time.Millisecond),
		},
	}
	limiter.cleanupExpiredLocked(now)
	require.NotContains(t, limiter.last, "old")
	require.Contains(t, limiter.last, "recent")
}
