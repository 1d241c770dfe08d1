// +build prometheus

package hookwave

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/riverbough/hookwave/pkg/hookwave/server"
)

// Prometheus metrics for buffer pool
var (
	// Buffer pool operations
	bufferPoolGets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "gets_total",
			Help:      "Total number of buffer Get operations",
		},
		[]string{"size"},
	)

	bufferPoolPuts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "puts_total",
			Help:      "Total number of buffer Put operations",
		},
		[]string{"size"},
	)

	bufferPoolHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "hits_total",
			Help:      "Total number of buffer pool hits (reuse)",
		},
		[]string{"size"},
	)

	bufferPoolMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "misses_total",
			Help:      "Total number of buffer pool misses (new allocation)",
		},
		[]string{"size"},
	)

	bufferPoolDiscards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "discards_total",
			Help:      "Total number of buffers discarded (wrong size)",
		},
		[]string{"size"},
	)

	// Buffer pool gauge metrics
	bufferPoolHitRate = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "hit_rate",
			Help:      "Current buffer pool hit rate (0-100%)",
		},
		[]string{"size"},
	)

	bufferPoolBytesAllocated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "bytes_allocated_total",
			Help:      "Total bytes allocated",
		},
		[]string{"size"},
	)

	bufferPoolBytesReused = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "bytes_reused_total",
			Help:      "Total bytes reused from pool",
		},
		[]string{"size"},
	)

	// Global metrics
	bufferPoolGlobalHitRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "global_hit_rate",
			Help:      "Global buffer pool hit rate across all sizes (0-100%)",
		},
	)

	bufferPoolMemoryAllocated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "memory_allocated_bytes",
			Help:      "Total memory allocated across all pools",
		},
	)

	bufferPoolMemoryReused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "memory_reused_bytes",
			Help:      "Total memory reused across all pools",
		},
	)

	bufferPoolReuseEfficiency = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "buffer_pool",
			Name:      "reuse_efficiency",
			Help:      "Memory reuse efficiency (0-100%)",
		},
	)

	// Server-level metrics (see UpdateServerMetrics)
	serverTotalConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "server",
			Name:      "connections_total",
			Help:      "Total number of connections accepted",
		},
	)

	serverActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "server",
			Name:      "connections_active",
			Help:      "Current number of active connections",
		},
	)

	serverTotalRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total number of requests handled",
		},
	)

	serverBytesRead = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "server",
			Name:      "bytes_read_total",
			Help:      "Total number of bytes read from connections",
		},
	)

	serverBytesWritten = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "server",
			Name:      "bytes_written_total",
			Help:      "Total number of bytes written to connections",
		},
	)

	serverConnectionErrors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "server",
			Name:      "connection_errors_total",
			Help:      "Number of connection-level errors",
		},
	)

	serverRequestErrors = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hookwave",
			Subsystem: "server",
			Name:      "request_errors_total",
			Help:      "Number of request-level errors",
		},
	)
)

// UpdateServerMetrics mirrors stats' atomic counters into the server_*
// Prometheus gauges above. Like UpdatePrometheusMetrics, call this
// periodically (or from a PrometheusCollector.Collect implementation) since
// stats is a plain snapshot, not a push source.
func UpdateServerMetrics(stats *server.Stats) {
	serverTotalConnections.Set(float64(stats.TotalConnections.Load()))
	serverActiveConnections.Set(float64(stats.ActiveConnections.Load()))
	serverTotalRequests.Set(float64(stats.TotalRequests.Load()))
	serverBytesRead.Set(float64(stats.BytesRead.Load()))
	serverBytesWritten.Set(float64(stats.BytesWritten.Load()))
	serverConnectionErrors.Set(float64(stats.ConnectionErrors.Load()))
	serverRequestErrors.Set(float64(stats.RequestErrors.Load()))
}

// UpdatePrometheusMetrics updates all Prometheus metrics from current pool state
// Call this periodically (e.g., every 10 seconds) from a background goroutine
func UpdatePrometheusMetrics() {
	metrics := GetBufferPoolMetrics()

	// Update per-size metrics
	updateSizedPrometheusMetrics("2kb", metrics.Pool2KB)
	updateSizedPrometheusMetrics("4kb", metrics.Pool4KB)
	updateSizedPrometheusMetrics("8kb", metrics.Pool8KB)
	updateSizedPrometheusMetrics("16kb", metrics.Pool16KB)
	updateSizedPrometheusMetrics("32kb", metrics.Pool32KB)
	updateSizedPrometheusMetrics("64kb", metrics.Pool64KB)

	// Update global metrics
	bufferPoolGlobalHitRate.Set(metrics.GlobalHitRate)
	bufferPoolMemoryAllocated.Set(float64(metrics.MemoryAllocated))
	bufferPoolMemoryReused.Set(float64(metrics.MemoryReused))
	bufferPoolReuseEfficiency.Set(metrics.ReuseEfficiency)
}

func updateSizedPrometheusMetrics(label string, m SizedPoolMetrics) {
	// Counters (add delta since last update)
	bufferPoolGets.WithLabelValues(label).Add(float64(m.Gets))
	bufferPoolPuts.WithLabelValues(label).Add(float64(m.Puts))
	bufferPoolHits.WithLabelValues(label).Add(float64(m.Hits))
	bufferPoolMisses.WithLabelValues(label).Add(float64(m.Misses))
	bufferPoolDiscards.WithLabelValues(label).Add(float64(m.Discards))
	bufferPoolBytesAllocated.WithLabelValues(label).Add(float64(m.Allocated))
	bufferPoolBytesReused.WithLabelValues(label).Add(float64(m.Reused))

	// Gauges (set current value)
	bufferPoolHitRate.WithLabelValues(label).Set(m.HitRate)
}

// PrometheusCollector implements prometheus.Collector for custom collection
type PrometheusCollector struct {
	pool *BufferPool
}

// NewPrometheusCollector creates a new Prometheus collector for a buffer pool
func NewPrometheusCollector(pool *BufferPool) *PrometheusCollector {
	return &PrometheusCollector{pool: pool}
}

// Describe implements prometheus.Collector
func (pc *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	// Metrics are already registered via promauto
	// This is a no-op for compatibility
}

// Collect implements prometheus.Collector
func (pc *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	// Update metrics on each scrape
	UpdatePrometheusMetrics()
}

// Example usage:
//
//	import (
//	    "net/http"
//	    "time"
//	    "github.com/prometheus/client_golang/prometheus/promhttp"
//	)
//
//	func main() {
//	    // Register custom collector
//	    prometheus.MustRegister(NewPrometheusCollector(globalBufferPool))
//
//	    // Start periodic updates (optional if using custom collector)
//	    go func() {
//	        ticker := time.NewTicker(10 * time.Second)
//	        defer ticker.Stop()
//	        for range ticker.C {
//	            UpdatePrometheusMetrics()
//	        }
//	    }()
//
//	    // Expose metrics endpoint
//	    http.Handle("/metrics", promhttp.Handler())
//	    http.ListenAndServe(":9090", nil)
//	}
