package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts finished requests by route pattern and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hospital_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hospital_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthzDecisions tracks role/permission gate outcomes, labelled by the deny code when denied
	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hospital_authz_decisions_total",
			Help: "Authorization decisions by gate kind and outcome",
		},
		[]string{"gate", "outcome", "reason"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hospital_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter, by policy",
		},
		[]string{"policy"},
	)

	MailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hospital_mail_deliveries_total",
			Help: "Outgoing mail attempts by kind and status",
		},
		[]string{"kind", "status"},
	)
)

func RecordDecision(gate string, allowed bool, reason string) {
	outcome := "allow"
	if !allowed {
		outcome = "deny"
	}
	AuthzDecisions.WithLabelValues(gate, outcome, reason).Inc()
}

func RecordMail(kind string, err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	MailDeliveries.WithLabelValues(kind, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency. The route label is the chi
// pattern, so ids in paths do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}
