package types

import (
	"time"
)

// OptionType identifies the side of an option contract
type OptionType string

const (
	OptionCall OptionType = "call"
	OptionPut  OptionType = "put"
)

// Contract is the static option contract specification for an instrument.
// It is loaded once at registration and immutable for the lifetime of the
// engine instance; changing a contract means re-registering the instrument.
type Contract struct {
	Symbol       string     `json:"symbol"`        // e.g. "GC_C_2100"
	Underlying   string     `json:"underlying"`    // futures symbol, e.g. "GC"
	OptionType   OptionType `json:"option_type"`
	Strike       float64    `json:"strike"`
	Expiration   time.Time  `json:"expiration"`
	RiskFreeRate float64    `json:"risk_free_rate"` // annualized, e.g. 0.045
}

// IsCall returns true for call contracts
func (c *Contract) IsCall() bool {
	return c.OptionType == OptionCall
}

// TimeToExpiry returns the time to expiration in years as of now.
// Expired contracts return 0.
func (c *Contract) TimeToExpiry(now time.Time) float64 {
	remaining := c.Expiration.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return remaining.Hours() / (24 * 365)
}
