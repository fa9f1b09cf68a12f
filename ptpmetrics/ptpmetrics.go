// Package ptpmetrics implements rtlink.Metrics on top of
// prometheus/client_golang, grounded on runZeroInc-sockstats's exporter
// package (one struct bundling related Desc/Collector fields) and
// ghjramos-aistore's direct use of the same library for runtime stats.
package ptpmetrics

import (
	"math"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements both rtlink.Metrics and
// prometheus.Collector. Counts are kept twice on purpose: once in the
// prometheus primitives for scraping, once in plain atomics so
// GetTicks/GetPublished/GetNodePanics/GetLastPTPOffsetUS (part of the
// rtlink.Metrics contract) don't need a scrape round-trip to answer.
type PrometheusMetrics struct {
	ticks      prometheus.Counter
	published  prometheus.Counter
	nodePanics prometheus.Counter
	offsetUS   prometheus.Gauge

	ticksCount      int64
	publishedCount  int64
	nodePanicsCount int64
	lastOffsetBits  atomic.Uint32
}

// New builds a PrometheusMetrics labeled with linkID, so multiple
// Links can share one registry without collisions.
func New(linkID string) *PrometheusMetrics {
	labels := prometheus.Labels{"link_id": linkID}
	return &PrometheusMetrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rtlink",
			Name:        "ticks_total",
			Help:        "Total Link.Tick cycles executed.",
			ConstLabels: labels,
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rtlink",
			Name:        "published_total",
			Help:        "Total packets published from the data cache.",
			ConstLabels: labels,
		}),
		nodePanics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rtlink",
			Name:        "node_panics_total",
			Help:        "Total node panics observed, counted once per panicking node per tick.",
			ConstLabels: labels,
		}),
		offsetUS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rtlink",
			Name:        "ptp_offset_microseconds",
			Help:        "Most recent combined PTP offset estimate.",
			ConstLabels: labels,
		}),
	}
}

func (m *PrometheusMetrics) IncrementTicks() {
	m.ticks.Inc()
	atomic.AddInt64(&m.ticksCount, 1)
}

func (m *PrometheusMetrics) IncrementPublished() {
	m.published.Inc()
	atomic.AddInt64(&m.publishedCount, 1)
}

func (m *PrometheusMetrics) IncrementNodePanics() {
	m.nodePanics.Inc()
	atomic.AddInt64(&m.nodePanicsCount, 1)
}

func (m *PrometheusMetrics) ObservePTPOffsetUS(v float32) {
	m.offsetUS.Set(float64(v))
	m.lastOffsetBits.Store(math.Float32bits(v))
}

func (m *PrometheusMetrics) GetTicks() int64      { return atomic.LoadInt64(&m.ticksCount) }
func (m *PrometheusMetrics) GetPublished() int64  { return atomic.LoadInt64(&m.publishedCount) }
func (m *PrometheusMetrics) GetNodePanics() int64 { return atomic.LoadInt64(&m.nodePanicsCount) }

func (m *PrometheusMetrics) GetLastPTPOffsetUS() float32 {
	return math.Float32frombits(m.lastOffsetBits.Load())
}

// Describe implements prometheus.Collector.
func (m *PrometheusMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.ticks.Describe(ch)
	m.published.Describe(ch)
	m.nodePanics.Describe(ch)
	m.offsetUS.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *PrometheusMetrics) Collect(ch chan<- prometheus.Metric) {
	m.ticks.Collect(ch)
	m.published.Collect(ch)
	m.nodePanics.Collect(ch)
	m.offsetUS.Collect(ch)
}
