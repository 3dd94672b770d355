package publish

import (
	"context"

	"riskstream/internal/types"
)

// Publisher delivers engine output to a downstream sink. Implementations
// must be safe for concurrent use; the engine calls them from multiple
// instrument workers.
type Publisher interface {
	// PublishMetrics delivers a per-tick metrics snapshot
	PublishMetrics(ctx context.Context, snapshot types.MetricsSnapshot) error

	// PublishEvent delivers a risk event
	PublishEvent(ctx context.Context, event types.RiskEvent) error

	// Close flushes and releases the sink
	Close() error
}
