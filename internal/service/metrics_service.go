package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

const metricsNamespace = "placement"

// runningMean accumulates a count and a total duration without locking.
type runningMean struct {
	count atomic.Uint64
	total atomic.Int64
}

func (r *runningMean) add(d time.Duration) {
	r.count.Add(1)
	r.total.Add(int64(d))
}

func (r *runningMean) meanMs() (uint64, float64) {
	n := r.count.Load()
	if n == 0 {
		return 0, 0
	}
	return n, float64(r.total.Load()) / float64(n) / float64(time.Millisecond)
}

// MetricsService owns a private Prometheus registry and keeps running totals for the admin system view.
// Every method is safe on a nil receiver.
type MetricsService struct {
	handler http.Handler

	httpDuration   *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	cacheLatency   *prometheus.HistogramVec
	dbDuration     *prometheus.HistogramVec
	computeTime    *prometheus.HistogramVec
	omittedAdvisor *prometheus.CounterVec

	requests  runningMean
	queries   runningMean
	cacheHits atomic.Uint64
	cacheMiss atomic.Uint64
	omitted   atomic.Uint64
}

// NewMetricsService registers the HTTP, cache, database and analytics collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &MetricsService{
		handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		cacheLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "cache",
			Name:      "operation_seconds",
			Help:      "Latency of cache reads and writes.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"op"}),
		dbDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of repository queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		computeTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "analytics",
			Name:      "compute_duration_seconds",
			Help:      "Time spent resolving cohorts and aggregating metrics.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		omittedAdvisor: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "analytics",
			Name:      "fanout_omitted_total",
			Help:      "Advisors dropped from a department overview because their computation failed.",
		}, []string{"operation"}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "goroutines",
		Help:      "Number of live goroutines.",
	}, func() float64 { return float64(runtime.NumGoroutine()) })

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
	m.requests.add(duration)
}

// RecordCacheOperation records a cache read and whether it hit.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
		m.cacheHits.Add(1)
	} else {
		m.cacheMiss.Add(1)
	}
	m.cacheLookups.WithLabelValues(result).Inc()
	m.cacheLatency.WithLabelValues("get").Observe(duration.Seconds())
}

// ObserveCacheWrite records a cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.WithLabelValues("set").Observe(duration.Seconds())
}

// ObserveDBQuery records a repository query under label.
func (m *MetricsService) ObserveDBQuery(label string, duration time.Duration) {
	if m == nil {
		return
	}
	m.dbDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.queries.add(duration)
}

// ObserveAnalytics records how long one analytics operation took to compute.
func (m *MetricsService) ObserveAnalytics(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.computeTime.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordFanOutOmission counts an advisor left out of a fan-out result.
func (m *MetricsService) RecordFanOutOmission(operation string) {
	if m == nil {
		return
	}
	m.omittedAdvisor.WithLabelValues(operation).Inc()
	m.omitted.Add(1)
}

// Snapshot returns the running totals for the admin system view.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{GeneratedAt: time.Now().UTC()}
	}
	hits, misses := m.cacheHits.Load(), m.cacheMiss.Load()
	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	requests, requestMs := m.requests.meanMs()
	queries, queryMs := m.queries.meanMs()

	return models.SystemMetrics{
		CacheHitRatio:            ratio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: requestMs,
		DBQueryCount:             queries,
		AverageDBQueryDurationMs: queryMs,
		FanOutOmitted:            m.omitted.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
