package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records filter cache efficiency, order flow and refresh
// passes. A nil receiver or one built without a registerer is a no-op.
type StorefrontMetrics struct {
	cacheLookups    *prometheus.CounterVec
	ordersCreated   *prometheus.CounterVec
	statusAdvances  prometheus.Counter
	refreshPasses   *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	storageFailures *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	m := &StorefrontMetrics{
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filter_cache_lookups_total",
			Help: "Filter result cache lookups by outcome.",
		}, []string{"result"}),
		ordersCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders created, by source.",
		}, []string{"source"}),
		statusAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_status_advances_total",
			Help: "Simulated order status advances.",
		}),
		refreshPasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refresh_passes_total",
			Help: "Coalesced refresh passes, by view region.",
		}, []string{"region"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "refresh_pass_duration_seconds",
			Help:    "Duration of coalesced refresh passes in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "state_storage_failures_total",
			Help: "Persistence gateway failures, by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.cacheLookups, m.ordersCreated, m.statusAdvances, m.refreshPasses, m.refreshDuration, m.storageFailures)
	return m
}

// ObserveCacheLookup counts a filter cache hit or miss.
func (m *StorefrontMetrics) ObserveCacheLookup(hit bool) {
	if m == nil || m.cacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// IncOrdersCreated counts orders produced by checkout or demo seeding.
func (m *StorefrontMetrics) IncOrdersCreated(source string, n int) {
	if m == nil || m.ordersCreated == nil || n <= 0 {
		return
	}
	m.ordersCreated.WithLabelValues(normalizeLabel(source)).Add(float64(n))
}

// IncStatusAdvance counts one simulated status advance.
func (m *StorefrontMetrics) IncStatusAdvance() {
	if m == nil || m.statusAdvances == nil {
		return
	}
	m.statusAdvances.Inc()
}

// ObserveRefresh records a coalesced refresh pass covering the given regions.
func (m *StorefrontMetrics) ObserveRefresh(regions []string, duration time.Duration) {
	if m == nil || m.refreshPasses == nil {
		return
	}
	for _, region := range regions {
		m.refreshPasses.WithLabelValues(normalizeLabel(region)).Inc()
	}
	m.refreshDuration.Observe(duration.Seconds())
}

// IncStorageFailure counts a failed load/save/reset.
func (m *StorefrontMetrics) IncStorageFailure(op string) {
	if m == nil || m.storageFailures == nil {
		return
	}
	m.storageFailures.WithLabelValues(normalizeLabel(op)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
