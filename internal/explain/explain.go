package explain

import (
	"sync"

	"riskstream/internal/types"
)

// Explainer turns a risk event plus recent metrics context into a
// human-readable explanation. Implementations must be deterministic for
// the same inputs unless wired to an external service.
type Explainer interface {
	// Explain describes why the event fired given the recent snapshots,
	// oldest first
	Explain(event types.RiskEvent, context []types.MetricsSnapshot) (string, error)

	// Name identifies the provider
	Name() string
}

// ContextBuffer is a fixed-capacity ring of recent metrics snapshots kept
// as explanation context. It lives beside the engine, not inside it; the
// core pipeline has no dependency on explanation.
type ContextBuffer struct {
	snapshots []types.MetricsSnapshot
	capacity  int
	head      int
	size      int
	mu        sync.RWMutex
}

// NewContextBuffer creates a ring buffer of the given capacity
func NewContextBuffer(capacity int) *ContextBuffer {
	if capacity <= 0 {
		capacity = 10
	}
	return &ContextBuffer{
		snapshots: make([]types.MetricsSnapshot, capacity),
		capacity:  capacity,
	}
}

// Push records a snapshot, evicting the oldest when full
func (cb *ContextBuffer) Push(snapshot types.MetricsSnapshot) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.snapshots[cb.head] = snapshot
	cb.head = (cb.head + 1) % cb.capacity
	if cb.size < cb.capacity {
		cb.size++
	}
}

// Recent returns the held snapshots, oldest first
func (cb *ContextBuffer) Recent() []types.MetricsSnapshot {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	out := make([]types.MetricsSnapshot, cb.size)
	start := cb.head - cb.size
	if start < 0 {
		start += cb.capacity
	}
	for i := 0; i < cb.size; i++ {
		out[i] = cb.snapshots[(start+i)%cb.capacity]
	}
	return out
}

// Len returns the number of held snapshots
func (cb *ContextBuffer) Len() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.size
}
