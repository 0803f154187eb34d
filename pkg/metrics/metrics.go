// Package metrics provides Prometheus instrumentation for the catalog
// service.
//
// Besides the standard HTTP metrics it exposes counters for the fan-out
// steps that are deliberately swallowed on failure (index sync, event
// publish, blob deletion). Those counters are the only operational signal
// that the search index or downstream consumers have diverged from the
// primary store, so alert on them.
//
// Wire it up once in internal/server:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ─────────────────────────────────────────────
// Built-in HTTP metrics
// ─────────────────────────────────────────────

var (
	// RequestDuration tracks how long each HTTP request takes,
	// broken down by method, route path, and status code.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vipani",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vipani",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vipani",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})
)

// ─────────────────────────────────────────────
// Catalog fan-out metrics
// ─────────────────────────────────────────────

var (
	// IndexSyncFailures counts search-index operations that failed after a
	// durable write. Label op is "upsert" or "remove".
	IndexSyncFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vipani",
			Subsystem: "search",
			Name:      "sync_failures_total",
			Help:      "Search index operations that failed after the durable write.",
		},
		[]string{"op"},
	)

	// PublishFailures counts events that could not be handed to the broker.
	PublishFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vipani",
			Subsystem: "bus",
			Name:      "publish_failures_total",
			Help:      "Events that could not be published, by topic.",
		},
		[]string{"topic"},
	)

	// EventsPublished counts successfully published events by topic.
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vipani",
			Subsystem: "bus",
			Name:      "events_published_total",
			Help:      "Events successfully published, by topic.",
		},
		[]string{"topic"},
	)

	// BlobDeleteFailures counts blob deletions that failed during product
	// deletion. Label kind is "product_image" or "profile_image".
	BlobDeleteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vipani",
			Subsystem: "blob",
			Name:      "delete_failures_total",
			Help:      "Blob deletions that failed and left data behind.",
		},
		[]string{"kind"},
	)

	// OrphanedBlobs counts stored blobs stranded when an uploaded image is
	// replaced by an external URL. Feed for out-of-band cleanup.
	OrphanedBlobs = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vipani",
		Subsystem: "blob",
		Name:      "orphaned_total",
		Help:      "Blobs left behind after their product switched to a URL image.",
	})

	// CacheHits / CacheMisses track the product read cache.
	CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vipani",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits.",
	})
	CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vipani",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses.",
	})
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry is the Prometheus registry used by the service.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	// Go runtime metrics (GC, goroutines, memory)
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	// OS process metrics (CPU, open FDs)
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		IndexSyncFailures,
		PublishFailures,
		EventsPublished,
		BlobDeleteFailures,
		OrphanedBlobs,
		CacheHits,
		CacheMisses,
	)
}

// Register adds a custom prometheus.Collector to the service registry.
func Register(c prometheus.Collector) error {
	return DefaultRegistry.Register(c)
}

// MustRegister panics if registration fails.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// ─────────────────────────────────────────────
// HTTP middleware
// ─────────────────────────────────────────────

// responseRecorder wraps http.ResponseWriter to capture the status code.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records Prometheus metrics for every request: duration
// histogram, total counter, in-flight gauge.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path // raw path; normalize in high-cardinality APIs

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(rr.status)

			RequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
			RequestTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// Handler returns an http.HandlerFunc that exposes the Prometheus metrics
// page. Mount it on GET /metrics.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}
