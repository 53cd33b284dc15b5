package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
	"github.com/frahmantamala/hospital-management/internal/metrics"
	"github.com/frahmantamala/hospital-management/internal/transport"
)

type KeyFunc func(r *http.Request) string

// ClientKey identifies the caller by authenticated user id, falling back to
// the connection address. Forwarding headers are never read here; behind a
// trusted proxy chi's RealIP rewrites RemoteAddr before this runs.
func ClientKey(r *http.Request) string {
	if userID := internal.UserIDFromContext(r.Context()); userID != 0 {
		return "user:" + strconv.FormatInt(userID, 10)
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware enforces policy per key. Limiter errors let the request through.
func Middleware(limiter Limiter, policy Policy, keyFn KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientKey
	}
	base := transport.NewBaseHandler(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := policy.Name + ":" + keyFn(r)

			res, err := limiter.Allow(r.Context(), key, policy.Limit, policy.Window)
			if err != nil {
				logger.WarnContext(r.Context(), "rate limiter unavailable, allowing request",
					"policy", policy.Name,
					"error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", res.ResetAt.UTC().Format(time.RFC3339))

			if !res.Allowed {
				retryAfter := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				metrics.RateLimitRejections.WithLabelValues(policy.Name).Inc()

				base.WriteAppError(w, internal.NewRateLimitedError("Too many requests, please try again later."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
