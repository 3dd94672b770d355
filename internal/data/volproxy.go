package data

import (
	"math"
	"sync"

	"github.com/cinar/indicator"

	"riskstream/internal/config"
)

// VolProxy estimates realized volatility per instrument from tick prices.
// It keeps a rolling window of log returns and annualizes their standard
// deviation. Used as a fallback when the feed carries no implied volatility.
type VolProxy struct {
	cfg    config.VolProxyConfig
	prices map[string][]float64
	mu     sync.RWMutex
}

// NewVolProxy creates a realized volatility estimator
func NewVolProxy(cfg config.VolProxyConfig) *VolProxy {
	if cfg.Window <= 1 {
		cfg.Window = 20
	}
	if cfg.TicksPerYear <= 0 {
		cfg.TicksPerYear = 252 * 78
	}
	if cfg.MinVolatility <= 0 {
		cfg.MinVolatility = 0.01
	}
	if cfg.DefaultVol <= 0 {
		cfg.DefaultVol = 0.20
	}

	return &VolProxy{
		cfg:    cfg,
		prices: make(map[string][]float64),
	}
}

// Observe records a new price for the instrument
func (vp *VolProxy) Observe(instrumentID string, price float64) {
	if price <= 0 {
		return
	}

	vp.mu.Lock()
	defer vp.mu.Unlock()

	history := append(vp.prices[instrumentID], price)
	// Window returns need window+1 prices
	if maxLen := vp.cfg.Window + 1; len(history) > maxLen {
		history = history[len(history)-maxLen:]
	}
	vp.prices[instrumentID] = history
}

// Estimate returns the annualized realized volatility for the instrument.
// Before the window fills it returns the configured default.
func (vp *VolProxy) Estimate(instrumentID string) float64 {
	vp.mu.RLock()
	history := vp.prices[instrumentID]
	vp.mu.RUnlock()

	if len(history) < vp.cfg.Window+1 {
		return vp.cfg.DefaultVol
	}

	returns := make([]float64, len(history)-1)
	for i := 1; i < len(history); i++ {
		returns[i-1] = math.Log(history[i] / history[i-1])
	}

	stds := indicator.Std(vp.cfg.Window, returns)
	perTick := stds[len(stds)-1]

	annualized := perTick * math.Sqrt(vp.cfg.TicksPerYear)
	if annualized < vp.cfg.MinVolatility {
		return vp.cfg.MinVolatility
	}
	return annualized
}

// Ready reports whether the instrument has a full return window
func (vp *VolProxy) Ready(instrumentID string) bool {
	vp.mu.RLock()
	defer vp.mu.RUnlock()
	return len(vp.prices[instrumentID]) >= vp.cfg.Window+1
}
