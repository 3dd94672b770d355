package stream

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskstream/internal/config"
	"riskstream/internal/types"
)

func writeReplayFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ticks.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func collectTicks(t *testing.T, provider TickProvider, timeout time.Duration) []types.Tick {
	t.Helper()
	var ticks []types.Tick
	deadline := time.After(timeout)
	for {
		select {
		case tick, ok := <-provider.Ticks():
			if !ok {
				return ticks
			}
			ticks = append(ticks, tick)
		case <-deadline:
			t.Fatal("timed out waiting for ticks")
		}
	}
}

func TestReplayProviderParsesFile(t *testing.T) {
	path := writeReplayFile(t,
		"instrument_id,timestamp,price,volatility,bid,ask\n"+
			"GC_C_2100,2026-03-02T09:30:00Z,2050.0,0.18,2049.9,2050.1\n"+
			"GC_C_2100,2026-03-02T09:30:01Z,2051.5,0.18\n")

	provider := NewReplayProvider(config.StreamConfig{DataPath: path})
	require.NoError(t, provider.Start(context.Background(), []string{"GC_C_2100"}))
	defer provider.Stop()

	ticks := collectTicks(t, provider, 2*time.Second)
	require.Len(t, ticks, 2)

	assert.Equal(t, "GC_C_2100", ticks[0].InstrumentID)
	assert.Equal(t, 2050.0, ticks[0].Price)
	assert.Equal(t, 0.18, ticks[0].Volatility)
	assert.Equal(t, 2049.9, ticks[0].Bid)
	assert.Equal(t, 2050.1, ticks[0].Ask)
	assert.Equal(t, 2051.5, ticks[1].Price)
	assert.True(t, ticks[1].Timestamp.After(ticks[0].Timestamp))
}

func TestReplayProviderUnixMillisTimestamps(t *testing.T) {
	path := writeReplayFile(t,
		"GC_C_2100,1767346200000,2050.0,0.18\n")

	provider := NewReplayProvider(config.StreamConfig{DataPath: path})
	require.NoError(t, provider.Start(context.Background(), nil))
	defer provider.Stop()

	ticks := collectTicks(t, provider, 2*time.Second)
	require.Len(t, ticks, 1)
	assert.Equal(t, time.UnixMilli(1767346200000).UTC(), ticks[0].Timestamp)
}

func TestReplayProviderFiltersInstruments(t *testing.T) {
	path := writeReplayFile(t,
		"GC_C_2100,2026-03-02T09:30:00Z,2050.0,0.18\n"+
			"SI_C_25,2026-03-02T09:30:00Z,24.1,0.25\n"+
			"GC_C_2100,2026-03-02T09:30:01Z,2051.0,0.18\n")

	provider := NewReplayProvider(config.StreamConfig{DataPath: path})
	require.NoError(t, provider.Start(context.Background(), []string{"GC_C_2100"}))
	defer provider.Stop()

	ticks := collectTicks(t, provider, 2*time.Second)
	require.Len(t, ticks, 2)
	for _, tick := range ticks {
		assert.Equal(t, "GC_C_2100", tick.InstrumentID)
	}
}

func TestReplayProviderSkipsMalformedRows(t *testing.T) {
	path := writeReplayFile(t,
		"GC_C_2100,2026-03-02T09:30:00Z,2050.0,0.18\n"+
			"GC_C_2100,not-a-timestamp,2051.0,0.18\n"+
			"GC_C_2100,2026-03-02T09:30:02Z,2052.0,0.18\n")

	provider := NewReplayProvider(config.StreamConfig{DataPath: path})
	require.NoError(t, provider.Start(context.Background(), nil))
	defer provider.Stop()

	ticks := collectTicks(t, provider, 2*time.Second)
	require.Len(t, ticks, 2)
	assert.Error(t, provider.GetLastError())
}

func TestReplayProviderMissingFile(t *testing.T) {
	provider := NewReplayProvider(config.StreamConfig{DataPath: "/nonexistent/ticks.csv"})
	err := provider.Start(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, provider.IsConnected())
}

func TestFactorySelectsProvider(t *testing.T) {
	sim, err := NewProvider(config.StreamConfig{ProviderType: "simulation"})
	require.NoError(t, err)
	assert.IsType(t, &SimulationProvider{}, sim)

	replay, err := NewProvider(config.StreamConfig{ProviderType: "replay", DataPath: "x.csv"})
	require.NoError(t, err)
	assert.IsType(t, &ReplayProvider{}, replay)

	_, err = NewProvider(config.StreamConfig{ProviderType: "bogus"})
	assert.Error(t, err)
}
