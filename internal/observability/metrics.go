package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steerctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "steerctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	offerProxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "steerctl",
			Subsystem: "offer_proxy",
			Name:      "requests_total",
			Help:      "Session offers proxied to the signaling daemon.",
		},
		[]string{"service", "upstream", "status", "success"},
	)
	offerProxyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "steerctl",
			Subsystem: "offer_proxy",
			Name:      "request_duration_seconds",
			Help:      "Offer proxy round-trip duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "upstream", "status", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, offerProxyRequests, offerProxyDuration)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordOfferProxy(service, upstream string, status int, duration time.Duration, success bool) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	successLabel := strconv.FormatBool(success)
	offerProxyRequests.WithLabelValues(service, upstream, statusLabel, successLabel).Inc()
	offerProxyDuration.WithLabelValues(service, upstream, statusLabel, successLabel).
		Observe(duration.Seconds())
}
