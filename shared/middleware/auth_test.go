package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireSecret(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		header   string
		provided string
		want     int
	}{
		{"correct secret", "s3cret", AdminSecretHeader, "s3cret", http.StatusOK},
		{"wrong secret", "s3cret", AdminSecretHeader, "guess", http.StatusUnauthorized},
		{"missing header", "s3cret", AdminSecretHeader, "", http.StatusUnauthorized},
		{"unconfigured secret", "", AdminSecretHeader, "", http.StatusUnauthorized},
		{"reminders header", "r3m", RemindersSecretHeader, "r3m", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireSecret(tt.header, tt.secret)(okHandler())

			req := httptest.NewRequest("POST", "/api/admin/reminders", nil)
			if tt.provided != "" {
				req.Header.Set(tt.header, tt.provided)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestRequireSecret_WrongHeaderName(t *testing.T) {
	handler := RequireSecret(RemindersSecretHeader, "r3m")(okHandler())

	req := httptest.NewRequest("POST", "/api/admin/reminders", nil)
	req.Header.Set(AdminSecretHeader, "r3m")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSecurityHeaders(t *testing.T) {
	t.Run("production", func(t *testing.T) {
		handler := SecurityHeaders(SecurityHeadersConfig{HSTS: true, CSP: "default-src 'none'"})(okHandler())

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "default-src 'none'", rr.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "cross-origin", rr.Header().Get("Cross-Origin-Resource-Policy"))
		assert.NotEmpty(t, rr.Header().Get("Strict-Transport-Security"))
	})

	t.Run("development", func(t *testing.T) {
		handler := SecurityHeaders(SecurityHeadersConfig{ResourcePolicy: "same-site"})(okHandler())

		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

		assert.Empty(t, rr.Header().Get("Strict-Transport-Security"))
		assert.Empty(t, rr.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "same-site", rr.Header().Get("Cross-Origin-Resource-Policy"))
	})
}
