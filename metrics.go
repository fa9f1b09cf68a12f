package rtlink

import (
	"math"
	"sync/atomic"
)

// Metrics is an interface for tracking link statistics. A Link calls
// Increment*/Observe* once per tick; collectors read via Get*.
type Metrics interface {
	IncrementTicks()
	IncrementPublished()
	IncrementNodePanics()
	ObservePTPOffsetUS(v float32)

	GetTicks() int64
	GetPublished() int64
	GetNodePanics() int64
	GetLastPTPOffsetUS() float32
}

// DefaultMetrics implements Metrics with atomic counters, mirroring the
// teacher's DefaultMetrics shape (package-level struct + atomic fields
// + Increment*/Get* pairs).
type DefaultMetrics struct {
	ticks      int64
	published  int64
	nodePanics int64
	lastOffset atomic.Uint32 // float32 bits
}

// NewDefaultMetrics creates a new DefaultMetrics instance.
func NewDefaultMetrics() *DefaultMetrics { return &DefaultMetrics{} }

func (m *DefaultMetrics) IncrementTicks()      { atomic.AddInt64(&m.ticks, 1) }
func (m *DefaultMetrics) IncrementPublished()  { atomic.AddInt64(&m.published, 1) }
func (m *DefaultMetrics) IncrementNodePanics() { atomic.AddInt64(&m.nodePanics, 1) }

func (m *DefaultMetrics) ObservePTPOffsetUS(v float32) {
	m.lastOffset.Store(math.Float32bits(v))
}

func (m *DefaultMetrics) GetTicks() int64      { return atomic.LoadInt64(&m.ticks) }
func (m *DefaultMetrics) GetPublished() int64  { return atomic.LoadInt64(&m.published) }
func (m *DefaultMetrics) GetNodePanics() int64 { return atomic.LoadInt64(&m.nodePanics) }

func (m *DefaultMetrics) GetLastPTPOffsetUS() float32 {
	return math.Float32frombits(m.lastOffset.Load())
}
