package observability

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "social"

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, matched route and status.",
	}, []string{"method", "route", "status"})

	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by matched route.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"route"})

	auditPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_published_total",
		Help:      "Audit envelopes handed to the broker, by level.",
	}, []string{"level"})

	amqpPublishErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "amqp_publish_errors_total",
		Help:      "Failed broker publishes, by exchange.",
	}, []string{"exchange"})

	notificationsEmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_emitted_total",
		Help:      "Notifications emitted, by type and outcome.",
	}, []string{"type", "status"})

	registerOnce sync.Once
	registerErr  error
)

// InitMetrics registers the collectors once. Collectors that are already
// registered with reg are not an error.
func InitMetrics(reg prometheus.Registerer) error {
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{httpRequests, httpLatency, auditPublished, amqpPublishErrors, notificationsEmitted} {
			if err := reg.Register(c); err != nil {
				var already prometheus.AlreadyRegisteredError
				if errors.As(err, &already) {
					continue
				}
				registerErr = err
				return
			}
		}
	})
	return registerErr
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(route).Observe(duration.Seconds())
}

func IncAuditEventPublished(level string) {
	if level == "" {
		level = "unknown"
	}
	auditPublished.WithLabelValues(level).Inc()
}

func IncAMQPPublishError(exchange string) {
	amqpPublishErrors.WithLabelValues(exchange).Inc()
}

func IncNotificationEmitted(kind, status string) {
	notificationsEmitted.WithLabelValues(kind, status).Inc()
}
