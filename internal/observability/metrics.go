// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	PostsReceived  prometheus.Counter
	PostsStored    prometheus.Counter
	PostsDropped   *prometheus.CounterVec
	FeedReconnects prometheus.Counter

	// Widget metrics
	WidgetRequests      *prometheus.CounterVec
	WidgetBuildDuration *prometheus.HistogramVec
	RateLimitedRequests prometheus.Counter

	// Snapshot pipeline metrics
	SnapshotRunsTotal   *prometheus.CounterVec
	SnapshotRunDuration prometheus.Histogram
	SnapshotsStored     prometheus.Counter

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulSnapshot  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "social_velocity_lab"
	}

	return &Metrics{
		// Ingestion metrics
		PostsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "posts_received_total",
			Help:      "Total number of posts received from the feed",
		}),
		PostsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "posts_stored_total",
			Help:      "Total number of posts stored to database",
		}),
		PostsDropped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "posts_dropped_total",
			Help:      "Total number of posts dropped by reason",
		}, []string{"reason"}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "feed_reconnects_total",
			Help:      "Total number of feed reconnect attempts",
		}),

		// Widget metrics
		WidgetRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widgets",
			Name:      "requests_total",
			Help:      "Total number of widget requests by widget and cache outcome",
		}, []string{"widget", "cache"}),
		WidgetBuildDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "widgets",
			Name:      "build_duration_seconds",
			Help:      "Widget data build duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"widget"}),
		RateLimitedRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "widgets",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}),

		// Snapshot pipeline metrics
		SnapshotRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "runs_total",
			Help:      "Total number of snapshot pipeline runs by status",
		}, []string{"status"}),
		SnapshotRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "run_duration_seconds",
			Help:      "Snapshot pipeline run duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		SnapshotsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "stored_total",
			Help:      "Total number of velocity snapshots stored",
		}),

		// Health metrics
		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful post batch flush",
		}),
		LastSuccessfulSnapshot: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_snapshot_timestamp",
			Help:      "Unix timestamp of last successful snapshot run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPostReceived increments the posts received counter.
func RecordPostReceived() {
	DefaultMetrics.PostsReceived.Inc()
}

// RecordPostsStored adds to the posts stored counter and updates the
// last successful ingestion timestamp.
func RecordPostsStored(count int, unixTime float64) {
	DefaultMetrics.PostsStored.Add(float64(count))
	DefaultMetrics.LastSuccessfulIngestion.Set(unixTime)
}

// RecordPostDropped increments the dropped counter for a reason.
func RecordPostDropped(reason string) {
	DefaultMetrics.PostsDropped.WithLabelValues(reason).Inc()
}

// RecordFeedReconnect increments the feed reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordWidgetRequest increments the widget request counter.
// cache is "hit" or "miss".
func RecordWidgetRequest(widget, cache string) {
	DefaultMetrics.WidgetRequests.WithLabelValues(widget, cache).Inc()
}

// RecordWidgetBuild observes a widget build duration.
func RecordWidgetBuild(widget string, seconds float64) {
	DefaultMetrics.WidgetBuildDuration.WithLabelValues(widget).Observe(seconds)
}

// RecordRateLimited increments the rate limited counter.
func RecordRateLimited() {
	DefaultMetrics.RateLimitedRequests.Inc()
}

// RecordSnapshotRun records a snapshot pipeline run.
func RecordSnapshotRun(status string, seconds float64) {
	DefaultMetrics.SnapshotRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.SnapshotRunDuration.Observe(seconds)
}

// RecordSnapshotsStored adds to the snapshots stored counter and updates
// the last successful snapshot timestamp.
func RecordSnapshotsStored(count int, unixTime float64) {
	DefaultMetrics.SnapshotsStored.Add(float64(count))
	DefaultMetrics.LastSuccessfulSnapshot.Set(unixTime)
}
