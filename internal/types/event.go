package types

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies the type of a risk event
type EventKind string

const (
	EventDeltaSpike   EventKind = "DELTA_SPIKE"
	EventGammaSpike   EventKind = "GAMMA_SPIKE"
	EventRegimeChange EventKind = "REGIME_CHANGE"
)

// Severity grades how far past its threshold a risk event landed
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// RiskEvent is a discrete risk notification emitted when a threshold is
// crossed or the regime changes. Events are emitted at most once per
// qualifying condition per tick and never retroactively corrected.
type RiskEvent struct {
	ID           string    `json:"id"`
	InstrumentID string    `json:"instrument_id"`
	Timestamp    time.Time `json:"timestamp"`
	Kind         EventKind `json:"kind"`
	Severity     Severity  `json:"severity"`
	OldValue     float64   `json:"old_value"`
	NewValue     float64   `json:"new_value"`
	ChangePct    float64   `json:"change_pct"`
	Description  string    `json:"description"`
}

// NewRiskEvent creates an event with a fresh identifier
func NewRiskEvent(instrumentID string, ts time.Time, kind EventKind) RiskEvent {
	return RiskEvent{
		ID:           uuid.NewString(),
		InstrumentID: instrumentID,
		Timestamp:    ts,
		Kind:         kind,
	}
}
