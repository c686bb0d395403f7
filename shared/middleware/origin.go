package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/middleware/metrics"
	"github.com/ptchurch/site/shared/utils"
)

// DevOrigins are accepted outside production so local front-end servers can
// post to the API.
var DevOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
}

type OriginConfig struct {
	SiteOrigin     string
	AllowedOrigins []string
	Production     bool
	// Strict turns the missing-Origin fallback from allow into reject unless
	// Sec-Fetch-Site says same-origin or same-site.
	Strict bool
}

// SameOrigin rejects mutating requests whose Origin is not on the allow-list.
// Requests without an Origin header pass when Sec-Fetch-Site marks them as
// same-origin/same-site/none, and otherwise pass unless cfg.Strict is set;
// server-to-server callers send neither header.
func SameOrigin(cfg OriginConfig) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	add := func(o string) {
		if n := normalizeOrigin(o); n != "" {
			allowed[n] = struct{}{}
		}
	}
	add(cfg.SiteOrigin)
	for _, o := range cfg.AllowedOrigins {
		add(o)
	}
	if !cfg.Production {
		for _, o := range DevOrigins {
			add(o)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ok := originAllowed(r, allowed, cfg.Strict); !ok {
				logger.Log.Warn("origin check failed",
					"path", r.URL.Path,
					"origin", r.Header.Get("Origin"),
					"fetch_site", r.Header.Get("Sec-Fetch-Site"))
				metrics.SecurityRejection("origin")
				utils.WriteErrorAndStatusCode(w, errors.Forbidden(errors.CodeForbiddenOrigin, "Forbidden"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(r *http.Request, allowed map[string]struct{}, strict bool) bool {
	if origin := r.Header.Get("Origin"); origin != "" {
		_, ok := allowed[normalizeOrigin(origin)]
		return ok
	}
	switch strings.ToLower(r.Header.Get("Sec-Fetch-Site")) {
	case "same-origin", "same-site", "none":
		return true
	}
	return !strict
}

// normalizeOrigin reduces an origin or URL to lower-case scheme://host[:port].
func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
