package pricing

import (
	"errors"
	"math"
	"testing"
	"time"

	"riskstream/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceAndGreeksGoldCall(t *testing.T) {
	// 90-day gold call, underlying below strike
	snap, err := PriceAndGreeks(2050.0, 2100.0, 90.0/365.0, 0.20, 0.045, true)
	require.NoError(t, err)

	assert.InDelta(t, 58.9255, snap.OptionPrice, 1e-3)
	assert.InDelta(t, 0.418812, snap.Delta, 1e-5)
	assert.InDelta(t, 0.00190215, snap.Gamma, 1e-7)
	assert.InDelta(t, -0.445281, snap.Theta, 1e-5)
	assert.InDelta(t, 3.94214, snap.Vega, 1e-4)
	assert.InDelta(t, -0.145296, snap.Rho, 1e-5)
	assert.True(t, snap.IsFinite())
}

func TestPriceAndGreeksGoldPut(t *testing.T) {
	snap, err := PriceAndGreeks(2050.0, 2100.0, 90.0/365.0, 0.20, 0.045, false)
	require.NoError(t, err)

	assert.InDelta(t, 108.3738, snap.OptionPrice, 1e-3)
	assert.InDelta(t, -0.570154, snap.Delta, 1e-5)
	assert.True(t, snap.IsFinite())
}

func TestPutCallParity(t *testing.T) {
	// C - P = disc * (F - K) under Black-76
	call, err := PriceAndGreeks(2050.0, 2100.0, 90.0/365.0, 0.20, 0.045, true)
	require.NoError(t, err)
	put, err := PriceAndGreeks(2050.0, 2100.0, 90.0/365.0, 0.20, 0.045, false)
	require.NoError(t, err)

	discF := math.Exp(-0.045*90.0/365.0) * (2050.0 - 2100.0)
	assert.InDelta(t, discF, call.OptionPrice-put.OptionPrice, 1e-9)
}

func TestBitReproducibility(t *testing.T) {
	first, err := PriceAndGreeks(2050.0, 2100.0, 90.0/365.0, 0.20, 0.045, true)
	require.NoError(t, err)
	second, err := PriceAndGreeks(2050.0, 2100.0, 90.0/365.0, 0.20, 0.045, true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDeltaBounds(t *testing.T) {
	cases := []struct {
		futures float64
		vol     float64
		tte     float64
	}{
		{1500.0, 0.05, 0.01},
		{2100.0, 0.20, 0.25},
		{3000.0, 0.80, 2.0},
		{2099.999, 0.001, 0.0001},
	}

	for _, tc := range cases {
		call, err := PriceAndGreeks(tc.futures, 2100.0, tc.tte, tc.vol, 0.045, true)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, call.Delta, 0.0)
		assert.LessOrEqual(t, call.Delta, 1.0)
		assert.True(t, call.IsFinite())

		put, err := PriceAndGreeks(tc.futures, 2100.0, tc.tte, tc.vol, 0.045, false)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, put.Delta, -1.0)
		assert.LessOrEqual(t, put.Delta, 0.0)
		assert.True(t, put.IsFinite())
	}
}

func TestExpiredOptionCollapsesToIntrinsic(t *testing.T) {
	// In-the-money call
	snap, err := PriceAndGreeks(2150.0, 2100.0, 0, 0.20, 0.045, true)
	require.NoError(t, err)
	assert.Equal(t, 50.0, snap.OptionPrice)
	assert.Equal(t, 1.0, snap.Delta)
	assert.Zero(t, snap.Gamma)
	assert.Zero(t, snap.Theta)
	assert.Zero(t, snap.Vega)
	assert.Zero(t, snap.Rho)

	// Out-of-the-money call
	snap, err = PriceAndGreeks(2050.0, 2100.0, 0, 0.20, 0.045, true)
	require.NoError(t, err)
	assert.Zero(t, snap.OptionPrice)
	assert.Zero(t, snap.Delta)

	// In-the-money put
	snap, err = PriceAndGreeks(2050.0, 2100.0, 0, 0.20, 0.045, false)
	require.NoError(t, err)
	assert.Equal(t, 50.0, snap.OptionPrice)
	assert.Equal(t, -1.0, snap.Delta)
}

func TestInvalidInputs(t *testing.T) {
	cases := []struct {
		name    string
		futures float64
		strike  float64
		tte     float64
		vol     float64
	}{
		{"zero price", 0, 2100, 0.25, 0.20},
		{"negative price", -100, 2100, 0.25, 0.20},
		{"zero strike", 2050, 0, 0.25, 0.20},
		{"negative tte", 2050, 2100, -0.1, 0.20},
		{"zero vol", 2050, 2100, 0.25, 0},
		{"negative vol", 2050, 2100, 0.25, -0.2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PriceAndGreeks(tc.futures, tc.strike, tc.tte, tc.vol, 0.045, true)
			require.Error(t, err)

			var invalid *types.InvalidInputError
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestSnapshotForStampsTimestamp(t *testing.T) {
	contract := &types.Contract{
		Symbol:       "GC_C_2100",
		Underlying:   "GC",
		OptionType:   types.OptionCall,
		Strike:       2100.0,
		Expiration:   time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		RiskFreeRate: 0.045,
	}
	tick := types.NewTick("GC", time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), 2050.0, 0.20)

	snap, err := SnapshotFor(contract, tick)
	require.NoError(t, err)
	assert.Equal(t, tick.Timestamp, snap.Timestamp)
	assert.True(t, snap.IsFinite())
}

func TestShockRepricesDelta(t *testing.T) {
	contract := &types.Contract{
		Symbol:       "GC_C_2100",
		OptionType:   types.OptionCall,
		Strike:       2100.0,
		Expiration:   time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		RiskFreeRate: 0.045,
	}
	tick := types.NewTick("GC", time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), 2050.0, 0.20)

	base, err := SnapshotFor(contract, tick)
	require.NoError(t, err)

	up, err := Shock(contract, tick, 0.05)
	require.NoError(t, err)
	down, err := Shock(contract, tick, -0.05)
	require.NoError(t, err)

	// A call's delta rises when the underlying rallies toward the strike
	assert.Greater(t, up.Delta, base.Delta)
	assert.Less(t, down.Delta, base.Delta)
	assert.Equal(t, 0.05, up.ShockPct)
	assert.Equal(t, -0.05, down.ShockPct)
}

func TestTimeToExpiryAt(t *testing.T) {
	exp := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	assert.Zero(t, TimeToExpiryAt(exp, exp))
	assert.Zero(t, TimeToExpiryAt(exp, exp.Add(time.Hour)))
	assert.InDelta(t, 90.0/365.0, TimeToExpiryAt(exp, exp.Add(-90*24*time.Hour)), 1e-9)
}
