package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSecurityHeaders_StaticHeaders(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
		{"Cache-Control", "no-store"},
		{"Content-Security-Policy", "default-src 'none'; style-src 'self'; frame-ancestors 'none'"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			rec := httptest.NewRecorder()
			okHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.expected, rec.Header().Get(tt.header))
		})
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	tests := []struct {
		name    string
		proto   string
		tls     bool
		wantSet bool
	}{
		{"plain http", "", false, false},
		{"forwarded http", "http", false, false},
		{"forwarded https", "https", false, true},
		{"direct tls", "", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}
			if tt.tls {
				req.TLS = &tls.ConnectionState{}
			}
			rec := httptest.NewRecorder()
			okHandler().ServeHTTP(rec, req)

			hsts := rec.Header().Get("Strict-Transport-Security")
			if tt.wantSet {
				assert.Equal(t, "max-age=31536000; includeSubDomains", hsts)
			} else {
				assert.Empty(t, hsts)
			}
		})
	}
}

func TestSecurityHeaders_PassesThrough(t *testing.T) {
	handler := SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("test response"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "test response", rec.Body.String())
}
