package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus collectors of the sales pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	eventsProcessed *prometheus.CounterVec
	eventsSkipped   *prometheus.CounterVec
	salesWritten    *prometheus.CounterVec
	failures        *prometheus.CounterVec
	blockCursor     *prometheus.GaugeVec
}

var (
	once    sync.Once
	metrics *Metrics
)

// Init initializes global metrics on the default registry (idempotent).
func Init() *Metrics {
	once.Do(func() {
		metrics = New(prometheus.DefaultRegisterer)
	})
	return metrics
}

// New creates metrics registered on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		eventsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_indexer_events_processed_total",
			Help: "Total number of marketplace events normalized",
		}, []string{"chain_id", "market"}),
		eventsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_indexer_events_skipped_total",
			Help: "Total number of marketplace events that produced no sale by design",
		}, []string{"chain_id", "market"}),
		salesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_indexer_sales_written_total",
			Help: "Total number of sale records written",
		}, []string{"chain_id", "market"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_indexer_failures_total",
			Help: "Total number of pipeline failures",
		}, []string{"chain_id"}),
		blockCursor: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sales_indexer_block_cursor",
			Help: "Last persisted block cursor",
		}, []string{"chain_id"}),
	}
	reg.MustRegister(
		m.eventsProcessed,
		m.eventsSkipped,
		m.salesWritten,
		m.failures,
		m.blockCursor,
	)
	return m
}

func chainLabel(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}

// EventProcessed increments the processed events counter.
func (m *Metrics) EventProcessed(chainID uint64, market string) {
	if m != nil {
		m.eventsProcessed.WithLabelValues(chainLabel(chainID), market).Inc()
	}
}

// EventSkipped increments the skipped events counter.
func (m *Metrics) EventSkipped(chainID uint64, market string) {
	if m != nil {
		m.eventsSkipped.WithLabelValues(chainLabel(chainID), market).Inc()
	}
}

// SalesWritten adds n to the written sales counter.
func (m *Metrics) SalesWritten(chainID uint64, market string, n int) {
	if m != nil && n > 0 {
		m.salesWritten.WithLabelValues(chainLabel(chainID), market).Add(float64(n))
	}
}

// Failure increments the failures counter.
func (m *Metrics) Failure(chainID uint64) {
	if m != nil {
		m.failures.WithLabelValues(chainLabel(chainID)).Inc()
	}
}

// BlockCursor records the last persisted block.
func (m *Metrics) BlockCursor(chainID uint64, block uint64) {
	if m != nil {
		m.blockCursor.WithLabelValues(chainLabel(chainID)).Set(float64(block))
	}
}

// Handler returns an HTTP handler for /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
