package risk

import (
	"riskstream/internal/config"
	"riskstream/internal/types"
)

// RegimeTransition is a confirmed regime change handed to the event
// detector as a REGIME_CHANGE candidate
type RegimeTransition struct {
	From  types.Regime
	To    types.Regime
	Score float64
}

// RegimeClassifier maps risk scores onto the ordered regime enumeration
// with configurable hysteresis. One classifier instance per instrument,
// owned by its engine lane.
//
// Boundary semantics: a boundary value belongs to the higher regime, so
// score 30.0 is SENSITIVE and 65.0 is FRAGILE. The first observed score
// classifies directly and produces no transition. A differing implied
// regime must persist for ConfirmationTicks consecutive scores before the
// stored regime changes; ConfirmationTicks == 1 confirms immediately on the
// crossing tick.
type RegimeClassifier struct {
	cfg config.RegimeConfig

	regime      types.Regime
	initialized bool

	// Hysteresis tracking
	candidate      types.Regime
	candidateTicks int
}

// NewRegimeClassifier creates a classifier with the given boundaries,
// applying the standard defaults for unset values
func NewRegimeClassifier(cfg config.RegimeConfig) *RegimeClassifier {
	if cfg.StableMax == 0 {
		cfg.StableMax = 30.0
	}
	if cfg.SensitiveMax == 0 {
		cfg.SensitiveMax = 65.0
	}
	if cfg.ConfirmationTicks == 0 {
		cfg.ConfirmationTicks = 1
	}
	return &RegimeClassifier{cfg: cfg}
}

// Classify returns the regime implied by a score, independent of any state
func (rc *RegimeClassifier) Classify(score float64) types.Regime {
	switch {
	case score < rc.cfg.StableMax:
		return types.RegimeStable
	case score < rc.cfg.SensitiveMax:
		return types.RegimeSensitive
	default:
		return types.RegimeFragile
	}
}

// Observe feeds the next score through the hysteresis state machine. It
// returns a transition when a regime change is confirmed on this tick, nil
// otherwise. The initial classification never produces a transition.
func (rc *RegimeClassifier) Observe(score float64) *RegimeTransition {
	implied := rc.Classify(score)

	if !rc.initialized {
		rc.regime = implied
		rc.initialized = true
		return nil
	}

	if implied == rc.regime {
		// Back inside the stored regime, abandon any pending candidate
		rc.candidate = rc.regime
		rc.candidateTicks = 0
		return nil
	}

	if implied == rc.candidate {
		rc.candidateTicks++
	} else {
		rc.candidate = implied
		rc.candidateTicks = 1
	}

	if rc.candidateTicks < rc.cfg.ConfirmationTicks {
		return nil
	}

	from := rc.regime
	rc.regime = implied
	rc.candidate = implied
	rc.candidateTicks = 0
	return &RegimeTransition{From: from, To: implied, Score: score}
}

// Regime returns the stored regime and whether the classifier has seen a
// score yet
func (rc *RegimeClassifier) Regime() (types.Regime, bool) {
	return rc.regime, rc.initialized
}
