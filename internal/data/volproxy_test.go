package data

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"riskstream/internal/config"
)

func TestVolProxyDefaultBeforeWindowFills(t *testing.T) {
	vp := NewVolProxy(config.VolProxyConfig{Window: 5, DefaultVol: 0.22})

	vp.Observe("GC_C_2100", 2050)
	vp.Observe("GC_C_2100", 2051)

	assert.False(t, vp.Ready("GC_C_2100"))
	assert.Equal(t, 0.22, vp.Estimate("GC_C_2100"))
}

func TestVolProxyConstantPricesFloorAtMinimum(t *testing.T) {
	vp := NewVolProxy(config.VolProxyConfig{Window: 5, MinVolatility: 0.01})

	for i := 0; i < 10; i++ {
		vp.Observe("GC_C_2100", 2050)
	}

	assert.True(t, vp.Ready("GC_C_2100"))
	assert.Equal(t, 0.01, vp.Estimate("GC_C_2100"))
}

func TestVolProxyScalesWithPriceDispersion(t *testing.T) {
	calm := NewVolProxy(config.VolProxyConfig{Window: 5, TicksPerYear: 252 * 78})
	wild := NewVolProxy(config.VolProxyConfig{Window: 5, TicksPerYear: 252 * 78})

	price := 2050.0
	for i := 0; i < 10; i++ {
		move := 0.5
		if i%2 == 0 {
			move = -0.5
		}
		calm.Observe("X", price+move)
		wild.Observe("X", price+move*20)
	}

	assert.Greater(t, wild.Estimate("X"), calm.Estimate("X"))
}

func TestVolProxyAnnualization(t *testing.T) {
	// Alternating +1%/-1% log returns have a known per-tick std
	vp := NewVolProxy(config.VolProxyConfig{Window: 4, TicksPerYear: 10000})

	price := 100.0
	vp.Observe("X", price)
	for i := 0; i < 6; i++ {
		if i%2 == 0 {
			price *= math.Exp(0.01)
		} else {
			price *= math.Exp(-0.01)
		}
		vp.Observe("X", price)
	}

	estimate := vp.Estimate("X")
	// Population std of {+0.01,-0.01,...} is 0.01; annualized by sqrt(10000)
	assert.InDelta(t, 0.01*100, estimate, 0.05)
}

func TestVolProxyIgnoresBadPrices(t *testing.T) {
	vp := NewVolProxy(config.VolProxyConfig{Window: 3})

	vp.Observe("X", 0)
	vp.Observe("X", -5)

	assert.False(t, vp.Ready("X"))
}

func TestVolProxyIndependentInstruments(t *testing.T) {
	vp := NewVolProxy(config.VolProxyConfig{Window: 3, DefaultVol: 0.20})

	for i := 0; i < 5; i++ {
		vp.Observe("A", 100+float64(i))
	}

	assert.True(t, vp.Ready("A"))
	assert.False(t, vp.Ready("B"))
	assert.Equal(t, 0.20, vp.Estimate("B"))
}
