package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/tabforge/tabforge/internal/infrastructure/logging"
)

func tabRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)
	router.GET("/tabs/:id/render", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tab_id": c.Param("id"), "html": "<div></div>"})
	})
	return router
}

func renderRequest(clientAddr string) *http.Request {
	req := httptest.NewRequest("GET", "/tabs/tab_1/render", nil)
	req.RemoteAddr = clientAddr
	return req
}

func TestCORSAllowsHostUI(t *testing.T) {
	router := tabRouter(CORS(DefaultCORSConfig()))

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantHeader bool
	}{
		{"host UI fetch", "GET", "http://localhost:3000", http.StatusOK, true},
		{"preflight before refine", "OPTIONS", "http://localhost:3000", http.StatusNoContent, true},
		{"same-origin request", "GET", "", http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/tabs/tab_1/render", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantHeader {
				assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
			} else {
				assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestCORSRestrictedOrigin(t *testing.T) {
	router := tabRouter(CORS(CORSConfig{
		AllowOrigins: []string{"https://host.example"},
		AllowMethods: []string{"GET", "POST", "DELETE"},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       time.Hour,
	}))

	req := renderRequest("10.0.0.1:4000")
	req.Header.Set("Origin", "https://host.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://host.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitPerClient(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping rate limit test in short mode")
	}

	router := tabRouter(RateLimit(RateLimitConfig{
		RequestsPerSecond: 2,
		Burst:             2,
	}))

	// A host UI polling render stays within its burst
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, renderRequest("192.168.1.1:1234"))
		assert.Equal(t, http.StatusOK, w.Code, "poll %d should pass", i+1)
	}

	// The next immediate poll from the same client is limited
	w := httptest.NewRecorder()
	router.ServeHTTP(w, renderRequest("192.168.1.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different host is unaffected
	w = httptest.NewRecorder()
	router.ServeHTTP(w, renderRequest("192.168.1.2:1234"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGlobalRateLimitSharesBudget(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping rate limit test in short mode")
	}

	router := tabRouter(GlobalRateLimit(RateLimitConfig{
		RequestsPerSecond: 2,
		Burst:             2,
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, renderRequest("192.168.1."+strconv.Itoa(i)+":1234"))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	// Budget is shared, so a fresh client is still limited
	w := httptest.NewRecorder()
	router.ServeHTTP(w, renderRequest("192.168.1.9:1234"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(logging.NewDevelopment()))
	router.GET("/tabs/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"tab_id": c.Param("id")})
	})
	router.GET("/missing", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "tab not found"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/tabs/tab_1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDefaultConfigs(t *testing.T) {
	cors := DefaultCORSConfig()
	assert.Contains(t, cors.AllowOrigins, "*")
	assert.Contains(t, cors.AllowMethods, "GET")
	assert.Contains(t, cors.AllowMethods, "DELETE")
	assert.Equal(t, 12*time.Hour, cors.MaxAge)

	rl := DefaultRateLimitConfig()
	assert.Equal(t, 100, rl.RequestsPerSecond)
	assert.Equal(t, 200, rl.Burst)
}

func BenchmarkRenderThroughMiddleware(b *testing.B) {
	router := tabRouter(CORS(DefaultCORSConfig()), RateLimit(DefaultRateLimitConfig()))

	req := renderRequest("192.168.1.1:1234")
	req.Header.Set("Origin", "http://localhost:3000")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}
