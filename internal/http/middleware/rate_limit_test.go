package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkeditor/spark/pkg/ratelimiter"
)

func TestRateLimitMiddleware(t *testing.T) {
	rl := ratelimiter.New()
	defer rl.Stop()
	rl.SetPolicy("conversion", 2, time.Minute)

	namespaceFor := func(r *http.Request) string {
		if r.URL.Path == "/healthz" {
			return ""
		}
		return "conversion"
	}
	handler := RateLimitMiddleware(rl, namespaceFor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	request := func(path, remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, request("/api/documents.import", "10.0.0.1:1000").Code)
	// a new port from the same host counts against the same client
	assert.Equal(t, http.StatusOK, request("/api/documents.import", "10.0.0.1:2000").Code)

	rec := request("/api/documents.import", "10.0.0.1:3000")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, request("/api/documents.import", "10.0.0.2:1000").Code)
	assert.Equal(t, http.StatusOK, request("/healthz", "10.0.0.1:1000").Code)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.RemoteAddr = "192.168.1.5:4242"
	assert.Equal(t, "192.168.1.5", clientIP(req))

	req.RemoteAddr = "[::1]:80"
	assert.Equal(t, "::1", clientIP(req))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", clientIP(req))
}
