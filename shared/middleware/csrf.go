package middleware

import (
	"net/http"

	"github.com/ptchurch/site/shared/csrf"
	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/middleware/metrics"
	"github.com/ptchurch/site/shared/utils"
)

// CSRFConfig holds CSRF middleware configuration
type CSRFConfig struct {
	SecureCookies bool // Use Secure flag on cookies (requires HTTPS)
}

type csrfTokenResponse struct {
	Ok    bool   `json:"ok"`
	Token string `json:"token"`
}

// CSRFTokenHandler returns the token already held in the pt_csrf cookie, or
// mints a new one and sets the cookie. Clients echo the value in the
// x-csrf-token header on mutating requests.
func CSRFTokenHandler(config CSRFConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(csrf.CookieName); err == nil && cookie.Value != "" {
			w.Header().Set("Cache-Control", "no-store")
			utils.WriteJSON(w, csrfTokenResponse{Ok: true, Token: cookie.Value})
			return
		}

		token, err := csrf.GenerateToken()
		if err != nil {
			logger.Log.Error("failed to generate CSRF token", "error", err)
			utils.WriteErrorAndStatusCode(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     csrf.CookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   config.SecureCookies,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   csrf.MaxAge,
		})
		w.Header().Set("Cache-Control", "no-store")
		utils.WriteJSON(w, csrfTokenResponse{Ok: true, Token: token})
	}
}

// ValidateCSRFToken rejects requests whose cookie and header tokens are
// missing or differ.
func ValidateCSRFToken() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cookieToken string
			if cookie, err := r.Cookie(csrf.CookieName); err == nil {
				cookieToken = cookie.Value
			}
			headerToken := r.Header.Get(csrf.HeaderName)

			if !csrf.ValidateToken(cookieToken, headerToken) {
				logger.Log.Warn("CSRF token validation failed",
					"path", r.URL.Path,
					"has_cookie", cookieToken != "",
					"has_header", headerToken != "")
				metrics.SecurityRejection("csrf")
				utils.WriteErrorAndStatusCode(w, errors.Forbidden(errors.CodeCSRFFailed, "Invalid CSRF token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
