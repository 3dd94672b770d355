package types

import (
	"time"
)

// Regime is the discrete risk bucket derived from the risk score.
// The enumeration is ordered: STABLE < SENSITIVE < FRAGILE.
type Regime string

const (
	RegimeStable    Regime = "STABLE"
	RegimeSensitive Regime = "SENSITIVE"
	RegimeFragile   Regime = "FRAGILE"
)

// Level returns the ordinal position of the regime
func (r Regime) Level() int {
	switch r {
	case RegimeStable:
		return 0
	case RegimeSensitive:
		return 1
	case RegimeFragile:
		return 2
	}
	return 1
}

// Distance returns the number of regime boundaries between two regimes
func (r Regime) Distance(other Regime) int {
	d := r.Level() - other.Level()
	if d < 0 {
		return -d
	}
	return d
}

// ShockResult holds the delta of the option after repricing at a shifted
// underlying price
type ShockResult struct {
	ShockPct float64 `json:"shock_pct"` // e.g. 0.05 for +5%
	Delta    float64 `json:"delta"`
}

// MetricsSnapshot is the per-tick output record published for every
// successfully processed tick: the Greeks, the rolled-up risk score, the
// classified regime and the shock scenarios.
type MetricsSnapshot struct {
	InstrumentID    string         `json:"instrument_id"`
	Timestamp       time.Time      `json:"timestamp"`
	UnderlyingPrice float64        `json:"underlying_price"`
	Volatility      float64        `json:"volatility"`
	Greeks          GreeksSnapshot `json:"greeks"`
	RiskScore       float64        `json:"risk_score"`
	Regime          Regime         `json:"regime"`
	Shocks          []ShockResult  `json:"shocks,omitempty"`
}
