package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	quotesFetched      atomic.Uint64
	transfersCompleted atomic.Uint64
	transfersFailed    atomic.Uint64
	ordersOrphaned     atomic.Uint64
	ratesStreamed      atomic.Uint64

	// Gauges
	activeConnections atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordQuoteFetched records a successfully built quote.
func (m *Metrics) RecordQuoteFetched() {
	m.quotesFetched.Add(1)
}

// RecordTransferCompleted records a transfer reaching its terminal success state.
func (m *Metrics) RecordTransferCompleted() {
	m.transfersCompleted.Add(1)
}

// RecordTransferFailed records a transfer attempt terminated by an error.
func (m *Metrics) RecordTransferFailed() {
	m.transfersFailed.Add(1)
}

// RecordOrderOrphaned records a withdrawal failure after a submitted
// provider order.
func (m *Metrics) RecordOrderOrphaned() {
	m.ordersOrphaned.Add(1)
}

// RecordRateStreamed records one live rate tick received.
func (m *Metrics) RecordRateStreamed() {
	m.ratesStreamed.Add(1)
}

// IncrementConnections increments active stream connections by 1.
func (m *Metrics) IncrementConnections() {
	m.activeConnections.Add(1)
}

// DecrementConnections decrements active stream connections by 1.
func (m *Metrics) DecrementConnections() {
	m.activeConnections.Add(-1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	QuotesFetched      uint64
	TransfersCompleted uint64
	TransfersFailed    uint64
	OrdersOrphaned     uint64
	RatesStreamed      uint64
	ActiveConnections  int32
}

// Read returns a consistent-enough snapshot for logging and tests.
func (m *Metrics) Read() Snapshot {
	return Snapshot{
		QuotesFetched:      m.quotesFetched.Load(),
		TransfersCompleted: m.transfersCompleted.Load(),
		TransfersFailed:    m.transfersFailed.Load(),
		OrdersOrphaned:     m.ordersOrphaned.Load(),
		RatesStreamed:      m.ratesStreamed.Load(),
		ActiveConnections:  m.activeConnections.Load(),
	}
}
