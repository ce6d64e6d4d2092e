package observe

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records events as Prometheus series labelled with the chain name.
type Metrics struct {
	ChunksTotal      *prometheus.CounterVec
	ChunkDuration    *prometheus.HistogramVec
	RecordsSkipped   *prometheus.CounterVec
	ProviderFailures *prometheus.CounterVec
	RejectedTotal    *prometheus.CounterVec
	PoolsLoadedLast  *prometheus.GaugeVec
}

// NewMetrics creates and registers the metrics on reg.
func NewMetrics(reg prometheus.Registerer, chain string) *Metrics {
	labels := prometheus.Labels{"chain": chain}
	return &Metrics{
		ChunksTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace:   "poolscope",
			Name:        "multicall_chunks_total",
			Help:        "Aggregation invocations by operation and outcome.",
			ConstLabels: labels,
		}, []string{"op", "status"}),
		ChunkDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "poolscope",
			Name:        "multicall_chunk_duration_seconds",
			Help:        "Round-trip time of successful aggregation invocations.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"op"}),
		RecordsSkipped: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace:   "poolscope",
			Name:        "records_skipped_total",
			Help:        "Addresses dropped because a call reverted or failed to decode.",
			ConstLabels: labels,
		}, []string{"op"}),
		ProviderFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace:   "poolscope",
			Name:        "discovery_provider_failures_total",
			Help:        "Discovery provider calls that returned an error.",
			ConstLabels: labels,
		}, []string{"provider"}),
		RejectedTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace:   "poolscope",
			Name:        "addresses_rejected_total",
			Help:        "Candidate addresses that failed validation.",
			ConstLabels: labels,
		}, []string{}),
		PoolsLoadedLast: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   "poolscope",
			Name:        "pools_loaded",
			Help:        "Number of records returned by the last retrieval.",
			ConstLabels: labels,
		}, []string{"op"}),
	}
}

func (m *Metrics) ChunkDone(op string, _, _ int, elapsed time.Duration) {
	m.ChunksTotal.WithLabelValues(op, "ok").Inc()
	m.ChunkDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *Metrics) ChunkFailed(op string, _, _ int, _ error) {
	m.ChunksTotal.WithLabelValues(op, "failed").Inc()
}

func (m *Metrics) RecordSkipped(op string, _ common.Address, _ error) {
	m.RecordsSkipped.WithLabelValues(op).Inc()
}

func (m *Metrics) ProviderFailed(provider string, _ error) {
	m.ProviderFailures.WithLabelValues(provider).Inc()
}

func (m *Metrics) AddressRejected(string) {
	m.RejectedTotal.WithLabelValues().Inc()
}

func (m *Metrics) PoolsLoaded(op string, count int) {
	m.PoolsLoadedLast.WithLabelValues(op).Set(float64(count))
}
