package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	ordersCreated       atomic.Uint64
	ordersFilled        atomic.Uint64
	partialFills        atomic.Uint64
	ordersCancelled     atomic.Uint64
	ordersExpired       atomic.Uint64
	instructionsEmitted atomic.Uint64
	transferFailures    atomic.Uint64
	errorsTotal         atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	relayConnected atomic.Int32 // 1 = connected
}

// RecordCommand records one engine command with its latency.
func (m *Metrics) RecordCommand(latencyNs int64) {
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordOrderCreated counts a successful create.
func (m *Metrics) RecordOrderCreated() { m.ordersCreated.Add(1) }

// RecordOrderFilled counts a fill; partial marks fills that left the order open.
func (m *Metrics) RecordOrderFilled(partial bool) {
	m.ordersFilled.Add(1)
	if partial {
		m.partialFills.Add(1)
	}
}

// RecordOrderCancelled counts a cancellation.
func (m *Metrics) RecordOrderCancelled() { m.ordersCancelled.Add(1) }

// RecordOrderExpired counts an expiration-sweep transition.
func (m *Metrics) RecordOrderExpired() { m.ordersExpired.Add(1) }

// RecordInstruction counts an emitted bridge instruction.
func (m *Metrics) RecordInstruction() { m.instructionsEmitted.Add(1) }

// RecordTransferFailure counts a bridge-reported failure.
func (m *Metrics) RecordTransferFailure() { m.transferFailures.Add(1) }

// RecordError counts a rejected command.
func (m *Metrics) RecordError() { m.errorsTotal.Add(1) }

// SetRelayConnected sets the relay connection gauge.
func (m *Metrics) SetRelayConnected(up bool) {
	if up {
		m.relayConnected.Store(1)
	} else {
		m.relayConnected.Store(0)
	}
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	OrdersCreated       uint64
	OrdersFilled        uint64
	PartialFills        uint64
	OrdersCancelled     uint64
	OrdersExpired       uint64
	InstructionsEmitted uint64
	TransferFailures    uint64
	ErrorsTotal         uint64
	AvgLatencyNs        int64
	RelayConnected      bool
	Timestamp           time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		OrdersCreated:       m.ordersCreated.Load(),
		OrdersFilled:        m.ordersFilled.Load(),
		PartialFills:        m.partialFills.Load(),
		OrdersCancelled:     m.ordersCancelled.Load(),
		OrdersExpired:       m.ordersExpired.Load(),
		InstructionsEmitted: m.instructionsEmitted.Load(),
		TransferFailures:    m.transferFailures.Load(),
		ErrorsTotal:         m.errorsTotal.Load(),
		AvgLatencyNs:        avgLatency,
		RelayConnected:      m.relayConnected.Load() == 1,
		Timestamp:           time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.ordersCreated.Store(0)
	m.ordersFilled.Store(0)
	m.partialFills.Store(0)
	m.ordersCancelled.Store(0)
	m.ordersExpired.Store(0)
	m.instructionsEmitted.Store(0)
	m.transferFailures.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.relayConnected.Store(0)
}
