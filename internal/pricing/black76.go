package pricing

import (
	"math"
	"time"

	"riskstream/internal/types"
)

// Black-76 pricing for options on futures. The model is parameterized by the
// futures price directly, with no dividend or carry adjustment. All
// functions are stateless and safe to call concurrently.

// PriceAndGreeks computes the option price and all five Greeks for the given
// inputs. Vega is quoted per volatility point, theta per calendar day and
// rho per rate point.
//
// timeToExpiry == 0 is a defined degenerate case: the option collapses to
// intrinsic value with delta in {0, 1} (call) or {0, -1} (put) and all other
// Greeks exactly 0.
func PriceAndGreeks(futuresPrice, strike, timeToExpiry, volatility, riskFreeRate float64, isCall bool) (types.GreeksSnapshot, error) {
	if err := validateInputs(futuresPrice, strike, timeToExpiry, volatility); err != nil {
		return types.GreeksSnapshot{}, err
	}

	if timeToExpiry == 0 {
		return expiredSnapshot(futuresPrice, strike, isCall), nil
	}

	sqrtT := math.Sqrt(timeToExpiry)
	d1 := (math.Log(futuresPrice/strike) + (volatility*volatility/2)*timeToExpiry) / (volatility * sqrtT)
	d2 := d1 - volatility*sqrtT
	discount := math.Exp(-riskFreeRate * timeToExpiry)

	nd1 := normCDF(d1)
	nd2 := normCDF(d2)
	pd1 := normPDF(d1)

	var price, delta, theta float64
	if isCall {
		price = discount * (futuresPrice*nd1 - strike*nd2)
		delta = discount * nd1
		theta = (-futuresPrice*discount*pd1*volatility/(2*sqrtT) -
			riskFreeRate*futuresPrice*nd1*discount +
			riskFreeRate*strike*discount*nd2) / 365.0
	} else {
		nmd1 := normCDF(-d1)
		nmd2 := normCDF(-d2)
		price = discount * (strike*nmd2 - futuresPrice*nmd1)
		delta = -discount * nmd1
		theta = (-futuresPrice*discount*pd1*volatility/(2*sqrtT) +
			riskFreeRate*futuresPrice*nmd1*discount -
			riskFreeRate*strike*discount*nmd2) / 365.0
	}

	// Gamma and vega share their form between call and put
	gamma := discount * pd1 / (futuresPrice * volatility * sqrtT)
	vega := futuresPrice * discount * pd1 * sqrtT / 100.0

	// Under Black-76 the discounted price depends on the rate only through
	// the discount factor, so rho is -T times the price
	rho := -timeToExpiry * price / 100.0

	return types.GreeksSnapshot{
		OptionPrice: price,
		Delta:       delta,
		Gamma:       gamma,
		Theta:       theta,
		Vega:        vega,
		Rho:         rho,
	}, nil
}

// SnapshotFor prices the contract against a tick and stamps the result with
// the tick's timestamp.
func SnapshotFor(contract *types.Contract, tick types.Tick) (types.GreeksSnapshot, error) {
	snap, err := PriceAndGreeks(
		tick.Price,
		contract.Strike,
		contract.TimeToExpiry(tick.Timestamp),
		tick.Volatility,
		contract.RiskFreeRate,
		contract.IsCall(),
	)
	if err != nil {
		return types.GreeksSnapshot{}, err
	}
	snap.Timestamp = tick.Timestamp
	return snap, nil
}

// Shock reprices the contract at a shifted underlying price and returns the
// shocked delta. Used for the what-if scenario fields on each metrics
// snapshot.
func Shock(contract *types.Contract, tick types.Tick, shockPct float64) (types.ShockResult, error) {
	shocked := tick
	shocked.Price = tick.Price * (1.0 + shockPct)

	snap, err := SnapshotFor(contract, shocked)
	if err != nil {
		return types.ShockResult{}, err
	}
	return types.ShockResult{ShockPct: shockPct, Delta: snap.Delta}, nil
}

// validateInputs rejects economically nonsensical parameters
func validateInputs(futuresPrice, strike, timeToExpiry, volatility float64) error {
	if futuresPrice <= 0 || math.IsNaN(futuresPrice) {
		return &types.InvalidInputError{Field: "underlying_price", Value: futuresPrice, Reason: "must be positive"}
	}
	if strike <= 0 || math.IsNaN(strike) {
		return &types.InvalidInputError{Field: "strike", Value: strike, Reason: "must be positive"}
	}
	if timeToExpiry < 0 || math.IsNaN(timeToExpiry) {
		return &types.InvalidInputError{Field: "time_to_expiry", Value: timeToExpiry, Reason: "cannot be negative"}
	}
	if volatility <= 0 || math.IsNaN(volatility) {
		return &types.InvalidInputError{Field: "volatility", Value: volatility, Reason: "must be positive"}
	}
	return nil
}

// expiredSnapshot returns the intrinsic-only snapshot for an expired option
func expiredSnapshot(futuresPrice, strike float64, isCall bool) types.GreeksSnapshot {
	snap := types.GreeksSnapshot{}
	if isCall {
		if futuresPrice > strike {
			snap.OptionPrice = futuresPrice - strike
			snap.Delta = 1
		}
	} else {
		if futuresPrice < strike {
			snap.OptionPrice = strike - futuresPrice
			snap.Delta = -1
		}
	}
	return snap
}

// normCDF is the standard normal cumulative distribution function
func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPDF is the standard normal probability density function
func normPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// TimeToExpiryAt is a convenience wrapper used by callers that hold raw
// expiration timestamps rather than a Contract
func TimeToExpiryAt(expiration, now time.Time) float64 {
	remaining := expiration.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return remaining.Hours() / (24 * 365)
}
