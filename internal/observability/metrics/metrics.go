// Package metrics exposes Prometheus instrumentation for the state
// engine: AtomicStateManager transactions, StateStore queries, the
// ContextCache, and the migration/consistency engines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors used across the engine.
type Metrics struct {
	// StateStore (C2) metrics
	StoreConnections   *prometheus.GaugeVec
	StoreQueries       *prometheus.CounterVec
	StoreQueryDuration *prometheus.HistogramVec

	// AtomicStateManager (C6) metrics
	AtomicOperationsTotal    *prometheus.CounterVec
	AtomicOperationDuration  *prometheus.HistogramVec
	AtomicRollbacksTotal     *prometheus.CounterVec

	// Entity lifecycle metrics (Feature/Epic/Story/ActionItem/Ceremony/Learning)
	EntitiesCreated *prometheus.CounterVec
	EntitiesUpdated *prometheus.CounterVec
	EntitiesDeleted *prometheus.CounterVec

	// ContextCache (C10) metrics
	CacheHitsTotal       *prometheus.CounterVec
	CacheMissesTotal     *prometheus.CounterVec
	CacheEvictionsTotal  *prometheus.CounterVec
	CacheExpirationsTotal *prometheus.CounterVec
	CacheSize            *prometheus.GaugeVec

	// ContextUsageTracker / LineageTracker (C11) metrics
	TrackerRecordsTotal   *prometheus.CounterVec
	TrackerRecordDuration *prometheus.HistogramVec

	// MigrationEngine (C7) metrics
	MigrationPhasesTotal     *prometheus.CounterVec
	MigrationRollbacksTotal  *prometheus.CounterVec
	MigrationPhaseDuration   *prometheus.HistogramVec

	// ConsistencyEngine (C8) metrics
	ConsistencyIssuesFound *prometheus.CounterVec
	ConsistencyRepairsTotal *prometheus.CounterVec
	ConsistencyCheckDuration *prometheus.HistogramVec

	// System metrics
	ApplicationInfo   *prometheus.GaugeVec
	ApplicationUptime *prometheus.CounterVec
}

var (
	// AppMetrics is the process-wide metrics instance, set by Init.
	AppMetrics *Metrics
)

// Init initializes Prometheus metrics and registers them with the
// default registerer.
func Init(serviceName, version string) *Metrics {
	metrics := &Metrics{
		StoreConnections: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "store_connections",
				Help: "Number of StateStore database connections",
			},
			[]string{"driver", "state"},
		),
		StoreQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_queries_total",
				Help: "Total number of StateStore queries",
			},
			[]string{"driver", "operation", "table"},
		),
		StoreQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_query_duration_seconds",
				Help:    "Duration of StateStore queries in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"driver", "operation", "table"},
		),

		AtomicOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atomic_operations_total",
				Help: "Total number of AtomicStateManager operations, by outcome",
			},
			[]string{"operation", "outcome"},
		),
		AtomicOperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atomic_operation_duration_seconds",
				Help:    "Duration of AtomicStateManager operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		AtomicRollbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atomic_rollbacks_total",
				Help: "Total number of AtomicStateManager transaction rollbacks",
			},
			[]string{"operation", "reason"},
		),

		EntitiesCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entities_created_total",
				Help: "Total number of entities created",
			},
			[]string{"entity_type"},
		),
		EntitiesUpdated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entities_updated_total",
				Help: "Total number of entities updated",
			},
			[]string{"entity_type"},
		),
		EntitiesDeleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "entities_deleted_total",
				Help: "Total number of entities deleted",
			},
			[]string{"entity_type"},
		),

		CacheHitsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_cache_hits_total",
				Help: "Total number of ContextCache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_cache_misses_total",
				Help: "Total number of ContextCache misses",
			},
			[]string{"cache"},
		),
		CacheEvictionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_cache_evictions_total",
				Help: "Total number of ContextCache LRU evictions",
			},
			[]string{"cache"},
		),
		CacheExpirationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "context_cache_expirations_total",
				Help: "Total number of ContextCache TTL expirations",
			},
			[]string{"cache"},
		),
		CacheSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "context_cache_size",
				Help: "Current number of entries held in the ContextCache",
			},
			[]string{"cache"},
		),

		TrackerRecordsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_records_total",
				Help: "Total number of usage/lineage records appended",
			},
			[]string{"tracker"},
		),
		TrackerRecordDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_record_duration_seconds",
				Help:    "Duration of tracker record-append operations in seconds",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
			[]string{"tracker"},
		),

		MigrationPhasesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migration_phases_total",
				Help: "Total number of MigrationEngine phases completed, by outcome",
			},
			[]string{"phase", "outcome"},
		),
		MigrationRollbacksTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migration_rollbacks_total",
				Help: "Total number of MigrationEngine rollbacks",
			},
			[]string{"phase"},
		),
		MigrationPhaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "migration_phase_duration_seconds",
				Help:    "Duration of MigrationEngine phases in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"phase"},
		),

		ConsistencyIssuesFound: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consistency_issues_found_total",
				Help: "Total number of ConsistencyEngine issues found, by class",
			},
			[]string{"issue_type"},
		),
		ConsistencyRepairsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "consistency_repairs_total",
				Help: "Total number of ConsistencyEngine repairs performed, by outcome",
			},
			[]string{"issue_type", "outcome"},
		),
		ConsistencyCheckDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "consistency_check_duration_seconds",
				Help:    "Duration of ConsistencyEngine check passes in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
			},
			[]string{},
		),

		ApplicationInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "application_info",
				Help: "Application information",
			},
			[]string{"service_name", "version", "go_version"},
		),
		ApplicationUptime: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "application_uptime_seconds_total",
				Help: "Total application uptime in seconds",
			},
			[]string{"service_name"},
		),
	}

	metrics.ApplicationInfo.WithLabelValues(serviceName, version, "go1.24.5").Set(1)

	AppMetrics = metrics

	return metrics
}

// RecordStoreQuery records StateStore query metrics.
func (m *Metrics) RecordStoreQuery(driver, operation, table string, duration time.Duration) {
	m.StoreQueries.WithLabelValues(driver, operation, table).Inc()
	m.StoreQueryDuration.WithLabelValues(driver, operation, table).Observe(duration.Seconds())
}

// RecordStoreConnections records the current StateStore connection pool state.
func (m *Metrics) RecordStoreConnections(driver, state string, count float64) {
	m.StoreConnections.WithLabelValues(driver, state).Set(count)
}

// RecordAtomicOperation records the outcome and duration of one
// AtomicStateManager operation (createFeature, createEpic, createStory,
// transitionStory).
func (m *Metrics) RecordAtomicOperation(operation, outcome string, duration time.Duration) {
	m.AtomicOperationsTotal.WithLabelValues(operation, outcome).Inc()
	m.AtomicOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAtomicRollback records a checkpoint rollback performed by the
// AtomicStateManager, tagged with the reason the transaction failed.
func (m *Metrics) RecordAtomicRollback(operation, reason string) {
	m.AtomicRollbacksTotal.WithLabelValues(operation, reason).Inc()
}

// RecordEntityOperation records an entity lifecycle event.
func (m *Metrics) RecordEntityOperation(operation, entityType string) {
	switch operation {
	case "create":
		m.EntitiesCreated.WithLabelValues(entityType).Inc()
	case "update":
		m.EntitiesUpdated.WithLabelValues(entityType).Inc()
	case "delete":
		m.EntitiesDeleted.WithLabelValues(entityType).Inc()
	}
}

// RecordCacheStatistics sets the cache size gauge and makes sure the
// cache's hit counter series exists. The hits, misses, evictions and
// expirations arguments are not exported.
func (m *Metrics) RecordCacheStatistics(cache string, hits, misses, evictions, expirations uint64, size int) {
	m.CacheHitsTotal.WithLabelValues(cache).Add(0) // ensure series exists even at zero
	m.CacheSize.WithLabelValues(cache).Set(float64(size))
	_ = hits
	_ = misses
	_ = evictions
	_ = expirations
}

// RecordCacheHit increments the hit counter for the named cache instance.
func (m *Metrics) RecordCacheHit(cache string) {
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for the named cache instance.
func (m *Metrics) RecordCacheMiss(cache string) {
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordCacheEviction increments the LRU eviction counter.
func (m *Metrics) RecordCacheEviction(cache string) {
	m.CacheEvictionsTotal.WithLabelValues(cache).Inc()
}

// RecordCacheExpiration increments the TTL expiration counter.
func (m *Metrics) RecordCacheExpiration(cache string) {
	m.CacheExpirationsTotal.WithLabelValues(cache).Inc()
}

// SetCacheSize sets the current entry count gauge for the named cache.
func (m *Metrics) SetCacheSize(cache string, size int) {
	m.CacheSize.WithLabelValues(cache).Set(float64(size))
}

// RecordTrackerAppend records one usage/lineage record append.
func (m *Metrics) RecordTrackerAppend(tracker string, duration time.Duration) {
	m.TrackerRecordsTotal.WithLabelValues(tracker).Inc()
	m.TrackerRecordDuration.WithLabelValues(tracker).Observe(duration.Seconds())
}

// RecordMigrationPhase records the outcome and duration of a MigrationEngine phase.
func (m *Metrics) RecordMigrationPhase(phase, outcome string, duration time.Duration) {
	m.MigrationPhasesTotal.WithLabelValues(phase, outcome).Inc()
	m.MigrationPhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordMigrationRollback records a MigrationEngine rollback at the given phase.
func (m *Metrics) RecordMigrationRollback(phase string) {
	m.MigrationRollbacksTotal.WithLabelValues(phase).Inc()
}

// RecordConsistencyCheck records a ConsistencyEngine check pass, including
// every issue class found during it.
func (m *Metrics) RecordConsistencyCheck(duration time.Duration, issuesByType map[string]int) {
	m.ConsistencyCheckDuration.WithLabelValues().Observe(duration.Seconds())
	for issueType, count := range issuesByType {
		m.ConsistencyIssuesFound.WithLabelValues(issueType).Add(float64(count))
	}
}

// RecordConsistencyRepair records the outcome of one repair attempt.
func (m *Metrics) RecordConsistencyRepair(issueType, outcome string) {
	m.ConsistencyRepairsTotal.WithLabelValues(issueType, outcome).Inc()
}

// RecordUptime records application uptime.
func (m *Metrics) RecordUptime(serviceName string, uptime time.Duration) {
	m.ApplicationUptime.WithLabelValues(serviceName).Add(uptime.Seconds())
}
