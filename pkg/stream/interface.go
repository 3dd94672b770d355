package stream

import (
	"context"

	"riskstream/internal/types"
)

// TickProvider defines the interface for market data tick sources. A
// provider delivers normalized ticks in commitment order per instrument;
// the engine enforces the monotonicity invariant on top.
type TickProvider interface {
	// Start begins streaming ticks for the given instruments
	Start(ctx context.Context, instruments []string) error

	// Stop stops the provider and closes the tick channel
	Stop() error

	// Ticks returns the channel of normalized ticks
	Ticks() <-chan types.Tick

	// IsConnected returns true if the provider is delivering data
	IsConnected() bool

	// GetLastError returns the last error that occurred
	GetLastError() error
}
