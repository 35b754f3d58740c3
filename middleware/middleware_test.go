package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestProfileRequired(t *testing.T) {
	r := gin.New()
	r.GET("/p/:profile", ProfileRequired(), func(ctx *gin.Context) {
		id, ok := ProfileID(ctx)
		assert.True(t, ok)
		ctx.String(http.StatusOK, id)
	})

	cases := []struct {
		path string
		code int
		body string
	}{
		{"/p/5F0C7A4E-2B1D-4C3E-9A8F-1D2E3F4A5B6C", http.StatusOK, "5f0c7a4e-2b1d-4c3e-9a8f-1d2e3f4a5b6c"},
		{"/p/42", http.StatusBadRequest, ""},
		{"/p/%20", http.StatusBadRequest, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.code, rec.Code, tc.path)
		if tc.body != "" {
			assert.Equal(t, tc.body, rec.Body.String())
		}
	}
}

func TestProfileID_MissingInContext(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := ProfileID(ctx)
	assert.False(t, ok)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/limited", RateLimitMiddleware(2), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"), "buckets are per client")
}

func TestRateLimitMiddleware_IndependentInstances(t *testing.T) {
	r := gin.New()
	r.GET("/a", RateLimitMiddleware(2), func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	r.GET("/b", RateLimitMiddleware(2), func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })

	for _, path := range []string{"/a", "/b"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.9:1"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
	}
}
