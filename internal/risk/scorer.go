package risk

import (
	"math"

	"riskstream/internal/config"
	"riskstream/internal/types"
)

// RiskScorer maps a Greeks snapshot and its rate of change onto a bounded
// health score in [0,100].
//
// The score is the weighted sum of two components, each itself in [0,100]:
//
//	magnitude = (min(|gamma|*GammaScale, 100) + min(|vega|*VegaScale, 100)) / 2
//	velocity  = (min(|Δdelta|*DeltaVelocityScale, 100) + min(|Δgamma|*GammaVelocityScale, 100)) / 2
//	score     = clamp(MagnitudeWeight*magnitude + VelocityWeight*velocity, 0, 100)
//
// All constants come from configuration. When no previous snapshot exists
// the velocity component is zero, so a new instrument never manufactures a
// spike on its first observation. The arithmetic is plain float64 in a fixed
// order: identical inputs and configuration reproduce the score bit for bit.
type RiskScorer struct {
	cfg config.ScoringConfig
}

// NewRiskScorer creates a scorer with the given weights and scales,
// applying the standard defaults for unset values
func NewRiskScorer(cfg config.ScoringConfig) *RiskScorer {
	if cfg.MagnitudeWeight == 0 && cfg.VelocityWeight == 0 {
		cfg.MagnitudeWeight = 0.6
		cfg.VelocityWeight = 0.4
	}
	if cfg.GammaScale == 0 {
		cfg.GammaScale = 1000
	}
	if cfg.VegaScale == 0 {
		cfg.VegaScale = 5
	}
	if cfg.DeltaVelocityScale == 0 {
		cfg.DeltaVelocityScale = 500
	}
	if cfg.GammaVelocityScale == 0 {
		cfg.GammaVelocityScale = 5000
	}
	return &RiskScorer{cfg: cfg}
}

// Score computes the risk score for the current snapshot. previous is
// ignored when hasPrevious is false.
func (rs *RiskScorer) Score(current, previous types.GreeksSnapshot, hasPrevious bool) float64 {
	magnitude := (capped(math.Abs(current.Gamma)*rs.cfg.GammaScale) +
		capped(math.Abs(current.Vega)*rs.cfg.VegaScale)) / 2

	velocity := 0.0
	if hasPrevious {
		velocity = (capped(math.Abs(current.Delta-previous.Delta)*rs.cfg.DeltaVelocityScale) +
			capped(math.Abs(current.Gamma-previous.Gamma)*rs.cfg.GammaVelocityScale)) / 2
	}

	score := rs.cfg.MagnitudeWeight*magnitude + rs.cfg.VelocityWeight*velocity
	return clamp(score, 0, 100)
}

// capped limits a component to the 0-100 band
func capped(v float64) float64 {
	if v > 100 {
		return 100
	}
	return v
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
