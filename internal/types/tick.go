package types

import (
	"time"
)

// Tick represents a normalized market data tick for a single instrument.
// Ticks are immutable once received; the engine requires strictly
// increasing timestamps per instrument.
type Tick struct {
	InstrumentID string    `json:"instrument_id"`
	Timestamp    time.Time `json:"timestamp"`
	Price        float64   `json:"price"`
	Volatility   float64   `json:"volatility"`
	Bid          float64   `json:"bid,omitempty"`
	Ask          float64   `json:"ask,omitempty"`
}

// NewTick creates a new tick instance
func NewTick(instrumentID string, timestamp time.Time, price, volatility float64) Tick {
	return Tick{
		InstrumentID: instrumentID,
		Timestamp:    timestamp,
		Price:        price,
		Volatility:   volatility,
	}
}

// GetSpread returns the bid-ask spread
func (t *Tick) GetSpread() float64 {
	return t.Ask - t.Bid
}

// GetMidPrice returns the midpoint price, falling back to the last price
// when no quote is attached
func (t *Tick) GetMidPrice() float64 {
	if t.Bid == 0 || t.Ask == 0 {
		return t.Price
	}
	return (t.Bid + t.Ask) / 2
}

// HasVolatility returns true if the feed supplied an implied volatility
func (t *Tick) HasVolatility() bool {
	return t.Volatility > 0
}
