package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	HTTPRequests         *prometheus.CounterVec
	VerificationAttempts *prometheus.CounterVec
	LeaveTransitions     *prometheus.CounterVec
	NotificationDelivery *prometheus.CounterVec
}

// New creates the service collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status"},
		),
		VerificationAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ems_verification_attempts_total",
				Help: "Verification code checks by result",
			},
			[]string{"result"},
		),
		LeaveTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ems_leave_transitions_total",
				Help: "Leave request transitions by resulting status",
			},
			[]string{"status"},
		),
		NotificationDelivery: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ems_notifications_total",
				Help: "Outbound notifications by kind and result",
			},
			[]string{"kind", "result"},
		),
	}

	reg.MustRegister(m.HTTPRequests, m.VerificationAttempts, m.LeaveTransitions, m.NotificationDelivery)

	return m
}

// Middleware counts requests by route pattern, method and status. Requests
// that match no route share the "unmatched" pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}

		m.HTTPRequests.WithLabelValues(pattern, r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}
