package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ptchurch/site/shared/errors"
	"github.com/ptchurch/site/shared/logger"
	"github.com/ptchurch/site/shared/middleware/metrics"
	"github.com/ptchurch/site/shared/middleware/ratelimiter"
	"github.com/ptchurch/site/shared/utils"
)

// RateLimitRule names the endpoint bucket and its fixed window.
type RateLimitRule struct {
	Endpoint string
	Max      int
	Window   time.Duration
	// Resource optionally narrows the bucket to one entity, e.g. a post id.
	Resource func(r *http.Request) string
}

type rateLimitedResponse struct {
	Ok                bool   `json:"ok"`
	Error             string `json:"error"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
}

// RateLimit rejects requests over the rule's budget with 429 and Retry-After.
// Limiter failures fail open: throttling is best-effort and the origin and
// csrf checks still apply.
func RateLimit(rl ratelimiter.Limiter, rule RateLimitRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := RateLimitKey(r, rule)
			decision, err := rl.Check(r.Context(), key, rule.Max, rule.Window)
			if err != nil {
				logger.Log.Error("rate limiter unavailable", "key", key, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !decision.Allowed {
				secs := decision.RetryAfterSeconds()
				metrics.SecurityRejection("rate_limit")
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				utils.WriteJSONStatus(w, http.StatusTooManyRequests, rateLimitedResponse{
					Error:             errors.CodeRateLimited,
					RetryAfterSeconds: secs,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitKey builds "<endpoint>:<clientIp>[:<resourceId>]".
func RateLimitKey(r *http.Request, rule RateLimitRule) string {
	key := rule.Endpoint + ":" + utils.ClientIP(r)
	if rule.Resource != nil {
		if id := rule.Resource(r); id != "" {
			key += ":" + id
		}
	}
	return key
}

// URLParamResource keys the bucket by a chi URL parameter.
func URLParamResource(name string) func(r *http.Request) string {
	return func(r *http.Request) string {
		return chi.URLParam(r, name)
	}
}
