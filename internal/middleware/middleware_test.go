package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/model"
	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator map[string]*service.Claims

func (s stubValidator) ValidateToken(tokenStr string) (*service.Claims, error) {
	if c, ok := s[tokenStr]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

type stubChecker struct{ err error }

func (s stubChecker) ValidateCandidateToken(context.Context, *service.Claims) error { return s.err }

var tokens = stubValidator{
	"cand":  {TokenType: service.TokenTypeCandidate, SessionID: "s-1"},
	"admin": {TokenType: service.TokenTypeAdmin, UserID: 1, Permissions: []string{string(model.PermissionQuestionsRead)}},
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func okHandler(c *gin.Context) { c.String(http.StatusOK, "ok") }

func TestRequireCandidateJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/exam", RequireCandidateJWT(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, GetClaims(c).SessionID)
	})

	cases := []struct {
		name   string
		header string
		query  string
		code   int
	}{
		{"bearer", "Bearer cand", "", http.StatusOK},
		{"lowercase scheme", "bearer cand", "", http.StatusOK},
		{"query fallback", "", "?token=cand", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"invalid", "Bearer nope", "", http.StatusUnauthorized},
		{"admin token", "Bearer admin", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/exam"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := serve(r, req)
			assert.Equal(t, tc.code, w.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "s-1", w.Body.String())
			}
		})
	}
}

func TestRequireCandidateWSAuthIgnoresHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", RequireCandidateWSAuth(tokens), okHandler)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Authorization", "Bearer cand")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/ws?token=cand", nil)).Code)
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin := r.Group("/admin", RequireAdminJWT(tokens))
	admin.GET("/questions", RequirePermission(model.PermissionQuestionsRead), okHandler)
	admin.POST("/questions", RequirePermission(model.PermissionQuestionsWrite), okHandler)
	admin.GET("/any", RequireAnyPermission(model.PermissionMonitorRead, model.PermissionQuestionsRead), okHandler)

	do := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer admin")
		return serve(r, req).Code
	}
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/admin/questions"))
	assert.Equal(t, http.StatusForbidden, do(http.MethodPost, "/admin/questions"))
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/admin/any"))
}

func TestCheckSingleDeviceSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(err error) int {
		r := gin.New()
		r.GET("/exam", RequireCandidateJWT(tokens), CheckSingleDeviceSession(stubChecker{err}), okHandler)
		req := httptest.NewRequest(http.MethodGet, "/exam", nil)
		req.Header.Set("Authorization", "Bearer cand")
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, run(nil))
	assert.Equal(t, http.StatusUnauthorized, run(service.ErrSessionInvalidated))
	assert.Equal(t, http.StatusServiceUnavailable, run(errors.New("redis down")))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "buckets are per key")

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("1.2.3.4"))

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/join", NewRateLimiter(1, time.Hour).Middleware(), okHandler)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodPost, "/join", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodPost, "/join", nil)).Code)
}

func TestBrotli(t *testing.T) {
	gin.SetMode(gin.TestMode)
	long := strings.Repeat("question ", 500)
	r := gin.New()
	r.Use(Brotli(brotli.DefaultCompression))
	r.GET("/long", func(c *gin.Context) { c.String(http.StatusOK, long) })
	r.GET("/short", func(c *gin.Context) { c.String(http.StatusOK, "tiny") })

	req := httptest.NewRequest(http.MethodGet, "/long", nil)
	req.Header.Set("Accept-Encoding", "gzip, br;q=1.0")
	w := serve(r, req)
	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	body, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, long, string(body))

	req = httptest.NewRequest(http.MethodGet, "/short", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, "tiny", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/long", nil)
	req.Header.Set("Accept-Encoding", "br")
	req.Header.Set("Accept", "text/event-stream")
	w = serve(r, req)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}

func TestNoStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/state", NoStore(), okHandler)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/state", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
