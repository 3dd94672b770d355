package risk

import (
	"testing"
	"time"

	"riskstream/internal/types"

	"github.com/stretchr/testify/assert"
)

func snapshotAt(ts time.Time, delta, gamma float64) types.GreeksSnapshot {
	return types.GreeksSnapshot{
		Timestamp: ts,
		Delta:     delta,
		Gamma:     gamma,
	}
}

func TestGreeksStateFirstUpdateHasNoPrevious(t *testing.T) {
	state := NewGreeksState()
	ts := time.Now()

	current, _, hasPrevious := state.Update(snapshotAt(ts, 0.50, 0.002))

	assert.False(t, hasPrevious)
	assert.Equal(t, 0.50, current.Delta)

	_, ok := state.Previous()
	assert.False(t, ok)
}

func TestGreeksStateShiftsCurrentToPrevious(t *testing.T) {
	state := NewGreeksState()
	ts := time.Now()

	state.Update(snapshotAt(ts, 0.50, 0.002))
	current, previous, hasPrevious := state.Update(snapshotAt(ts.Add(time.Second), 0.56, 0.003))

	assert.True(t, hasPrevious)
	assert.Equal(t, 0.56, current.Delta)
	assert.Equal(t, 0.50, previous.Delta)
}

func TestGreeksStateDeltaOf(t *testing.T) {
	state := NewGreeksState()
	ts := time.Now()

	state.Update(snapshotAt(ts, 0.50, 0.002))

	_, ok := state.DeltaOf("delta")
	assert.False(t, ok, "no delta available on first tick")

	state.Update(snapshotAt(ts.Add(time.Second), 0.56, 0.003))

	diff, ok := state.DeltaOf("delta")
	assert.True(t, ok)
	assert.InDelta(t, 0.06, diff, 1e-12)

	diff, ok = state.DeltaOf("gamma")
	assert.True(t, ok)
	assert.InDelta(t, 0.001, diff, 1e-12)
}
