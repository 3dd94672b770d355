package risk

import (
	"fmt"
	"math"
	"time"

	"riskstream/internal/config"
	"riskstream/internal/types"
)

// EventDetector decides which risk events fire for a tick and deduplicates
// repeated firings. Spike conditions are edge-triggered: a condition that
// was already true on the immediately preceding tick does not re-fire; it
// re-arms once a tick observes the condition false. One detector instance
// per instrument, owned by its engine lane.
type EventDetector struct {
	cfg config.ThresholdsConfig

	// Condition state from the preceding tick, for edge triggering
	deltaActive bool
	gammaActive bool
}

// NewEventDetector creates a detector with the given thresholds, applying
// the standard defaults for unset values
func NewEventDetector(cfg config.ThresholdsConfig) *EventDetector {
	if cfg.DeltaChangeThreshold == 0 {
		cfg.DeltaChangeThreshold = 0.05
	}
	if cfg.GammaChangeThreshold == 0 {
		cfg.GammaChangeThreshold = 0.10
	}
	if cfg.NearZeroEpsilon == 0 {
		cfg.NearZeroEpsilon = 1e-10
	}
	return &EventDetector{cfg: cfg}
}

// Detect evaluates one tick's snapshots and regime transition candidate and
// returns the events to emit, in priority order: DELTA_SPIKE, GAMMA_SPIKE,
// REGIME_CHANGE. All are independently eligible; zero, one or several may
// fire. Nothing fires on an instrument's first tick (hasPrevious false).
func (d *EventDetector) Detect(
	instrumentID string,
	ts time.Time,
	current, previous types.GreeksSnapshot,
	hasPrevious bool,
	transition *RegimeTransition,
) []types.RiskEvent {
	if !hasPrevious {
		// First tick: record nothing, arm nothing
		return nil
	}

	var events []types.RiskEvent

	deltaHit := d.exceeds(previous.Delta, current.Delta, d.cfg.DeltaChangeThreshold)
	if deltaHit && !d.deltaActive {
		ev := types.NewRiskEvent(instrumentID, ts, types.EventDeltaSpike)
		ev.OldValue = previous.Delta
		ev.NewValue = current.Delta
		ev.ChangePct = changePct(previous.Delta, current.Delta, d.cfg.NearZeroEpsilon)
		ev.Severity = d.gradeSeverity(previous.Delta, current.Delta, d.cfg.DeltaChangeThreshold)
		ev.Description = fmt.Sprintf("Delta moved from %.4f to %.4f", previous.Delta, current.Delta)
		events = append(events, ev)
	}
	d.deltaActive = deltaHit

	gammaHit := d.exceeds(previous.Gamma, current.Gamma, d.cfg.GammaChangeThreshold)
	if gammaHit && !d.gammaActive {
		ev := types.NewRiskEvent(instrumentID, ts, types.EventGammaSpike)
		ev.OldValue = previous.Gamma
		ev.NewValue = current.Gamma
		ev.ChangePct = changePct(previous.Gamma, current.Gamma, d.cfg.NearZeroEpsilon)
		ev.Severity = d.gradeSeverity(previous.Gamma, current.Gamma, d.cfg.GammaChangeThreshold)
		ev.Description = fmt.Sprintf("Gamma moved from %.6f to %.6f", previous.Gamma, current.Gamma)
		events = append(events, ev)
	}
	d.gammaActive = gammaHit

	if transition != nil {
		ev := types.NewRiskEvent(instrumentID, ts, types.EventRegimeChange)
		ev.OldValue = float64(transition.From.Level())
		ev.NewValue = float64(transition.To.Level())
		ev.Severity = regimeSeverity(transition.From, transition.To)
		ev.Description = fmt.Sprintf("Risk regime transitioned from %s to %s", transition.From, transition.To)
		events = append(events, ev)
	}

	return events
}

// exceeds applies the relative-change rule with the near-zero fallback:
// when the previous value is within epsilon of zero, the comparison is
// against the absolute change instead.
func (d *EventDetector) exceeds(oldValue, newValue, threshold float64) bool {
	change := math.Abs(newValue - oldValue)
	if math.Abs(oldValue) < d.cfg.NearZeroEpsilon {
		return change > threshold
	}
	return change/math.Abs(oldValue) > threshold
}

// gradeSeverity classifies how far past its threshold the change landed
func (d *EventDetector) gradeSeverity(oldValue, newValue, threshold float64) types.Severity {
	if math.Abs(oldValue) < d.cfg.NearZeroEpsilon {
		return types.SeverityMedium
	}
	ratio := math.Abs(newValue-oldValue) / math.Abs(oldValue)
	switch {
	case ratio >= threshold*3:
		return types.SeverityHigh
	case ratio >= threshold*1.5:
		return types.SeverityMedium
	default:
		return types.SeverityLow
	}
}

// regimeSeverity grades a regime transition by its distance: a jump over
// two boundaries is HIGH, one boundary MEDIUM
func regimeSeverity(from, to types.Regime) types.Severity {
	if from.Distance(to) >= 2 {
		return types.SeverityHigh
	}
	return types.SeverityMedium
}

// changePct returns the signed percentage change, 0 when transitioning from
// a near-zero base
func changePct(oldValue, newValue, epsilon float64) float64 {
	if math.Abs(oldValue) < epsilon {
		if math.Abs(newValue) < epsilon {
			return 0
		}
		return 100
	}
	return (newValue - oldValue) / oldValue * 100
}
