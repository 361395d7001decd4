package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"infinite-experiment/hangar/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "11111111-1111-1111-1111-111111111111"

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(auth.UserIDFrom(r.Context())))
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenService([]byte("secret"))
	valid, err := tokens.Issue(testUser, time.Hour)
	require.NoError(t, err)

	handler := AuthMiddleware(tokens)(echoUser())

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + valid, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/alerts", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.status, rr.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, testUser, rr.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(0.001, 2, "10.0.0.9")
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5002"))

	// Buckets are per IP
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:5000"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, call("10.0.0.9:5000"))
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFrom(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "abc", seen)
}

func TestNormalizeEndpoint(t *testing.T) {
	assert.Equal(t, "/api/v1/notifications/{id}/complete", NormalizeEndpoint("/api/v1/notifications/"+testUser+"/complete"))
	assert.Equal(t, "/api/v1/directives/{id}", NormalizeEndpoint("/api/v1/directives/42"))
	assert.Equal(t, "/api/v1/alerts/summary", NormalizeEndpoint("/api/v1/alerts/summary"))
}
