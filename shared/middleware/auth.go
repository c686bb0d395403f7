package middleware

import (
	"net/http"

	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/middleware/metrics"
	"github.com/ptchurch/site/shared/utils"
)

const (
	AdminSecretHeader     = "x-admin-secret"
	RemindersSecretHeader = "x-reminders-secret"
)

// RequireSecret gates moderation endpoints behind a static shared secret sent
// in header. An unconfigured secret locks the endpoints.
func RequireSecret(header, secret string) func(http.Handler) http.Handler {
	if secret == "" {
		logger.Log.Warn("shared secret not configured, endpoints disabled", "header", header)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !utils.CompareSecret(secret, r.Header.Get(header)) {
				logger.Log.Warn("shared secret rejected", "path", r.URL.Path, "header", header)
				metrics.SecurityRejection("admin")
				utils.WriteErrorAndStatusCode(w, errors.Unauthorized())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
