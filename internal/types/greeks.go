package types

import (
	"math"
	"time"
)

// GreeksSnapshot holds the option price and the five Greeks computed for a
// single (contract, tick) pair. All values are finite real numbers; two
// snapshots for the same instrument are comparable only when contiguous in
// processing order.
type GreeksSnapshot struct {
	Timestamp   time.Time `json:"timestamp"`
	OptionPrice float64   `json:"option_price"`
	Delta       float64   `json:"delta"`
	Gamma       float64   `json:"gamma"`
	Theta       float64   `json:"theta"`
	Vega        float64   `json:"vega"`
	Rho         float64   `json:"rho"`
}

// IsFinite returns true if every field of the snapshot is a finite number
func (g *GreeksSnapshot) IsFinite() bool {
	for _, v := range []float64{g.OptionPrice, g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Field returns the named Greek value. Unknown names return 0.
func (g *GreeksSnapshot) Field(name string) float64 {
	switch name {
	case "delta":
		return g.Delta
	case "gamma":
		return g.Gamma
	case "theta":
		return g.Theta
	case "vega":
		return g.Vega
	case "rho":
		return g.Rho
	case "option_price":
		return g.OptionPrice
	}
	return 0
}
