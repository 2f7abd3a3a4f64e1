// Package metrics exposes Prometheus collectors for the ordering service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"resto-collect/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resto"

type checkoutMetrics struct {
	attempts *prometheus.CounterVec
	points   prometheus.Counter
	revenue  prometheus.Counter
}

type httpMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

type realtimeMetrics struct {
	events      *prometheus.CounterVec
	subscribers prometheus.Gauge
}

var (
	checkoutOnce     sync.Once
	checkoutRegistry *checkoutMetrics

	httpOnce     sync.Once
	httpRegistry *httpMetrics

	realtimeOnce     sync.Once
	realtimeRegistry *realtimeMetrics
)

// Checkout returns the lazily-initialised checkout metrics.
func Checkout() *checkoutMetrics {
	checkoutOnce.Do(func() {
		checkoutRegistry = &checkoutMetrics{
			attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "attempts_total",
				Help:      "Checkout attempts segmented by outcome.",
			}, []string{"outcome"}),
			points: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "loyalty",
				Name:      "points_credited_total",
				Help:      "Loyalty points credited by successful checkouts.",
			}),
			revenue: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "checkout",
				Name:      "revenue_total",
				Help:      "Sum of charged totals of successful checkouts.",
			}),
		}
		prometheus.MustRegister(
			checkoutRegistry.attempts,
			checkoutRegistry.points,
			checkoutRegistry.revenue,
		)
	})
	return checkoutRegistry
}

// Observe records one checkout attempt. receipt is nil for failures.
func (m *checkoutMetrics) Observe(outcome string, receipt *model.Receipt) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
	if receipt == nil {
		return
	}
	m.points.Add(float64(receipt.PointsEarned))
	m.revenue.Add(receipt.Quote.Total.InexactFloat64())
}

// HTTP returns the lazily-initialised HTTP request metrics.
func HTTP() *httpMetrics {
	httpOnce.Do(func() {
		httpRegistry = &httpMetrics{
			requests: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests segmented by route, method and status.",
			}, []string{"route", "method", "status"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Latency distribution of HTTP handlers.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route", "method"}),
		}
		prometheus.MustRegister(httpRegistry.requests, httpRegistry.latency)
	})
	return httpRegistry
}

// Observe records a served request.
func (m *httpMetrics) Observe(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(route, method).Observe(duration.Seconds())
}

// Realtime returns the lazily-initialised change-notification metrics.
func Realtime() *realtimeMetrics {
	realtimeOnce.Do(func() {
		realtimeRegistry = &realtimeMetrics{
			events: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "realtime",
				Name:      "events_total",
				Help:      "Change notifications received segmented by collection and kind.",
			}, []string{"collection", "kind"}),
			subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "realtime",
				Name:      "subscriptions",
				Help:      "Active change-notification subscriptions.",
			}),
		}
		prometheus.MustRegister(realtimeRegistry.events, realtimeRegistry.subscribers)
	})
	return realtimeRegistry
}

// Event counts a published change notification.
func (m *realtimeMetrics) Event(collection, kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(collection, kind).Inc()
}

// Subscribed adjusts the active subscription gauge by delta.
func (m *realtimeMetrics) Subscribed(delta int) {
	if m == nil {
		return
	}
	m.subscribers.Add(float64(delta))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
