package explain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskstream/internal/config"
	"riskstream/internal/types"
)

func snapshotWithScore(score float64) types.MetricsSnapshot {
	return types.MetricsSnapshot{
		InstrumentID: "GC",
		Timestamp:    time.Now(),
		RiskScore:    score,
		Regime:       types.RegimeStable,
	}
}

func TestContextBufferEvictsOldest(t *testing.T) {
	cb := NewContextBuffer(3)

	for i := 1; i <= 5; i++ {
		cb.Push(snapshotWithScore(float64(i)))
	}

	recent := cb.Recent()
	require.Len(t, recent, 3)
	assert.Equal(t, 3.0, recent[0].RiskScore)
	assert.Equal(t, 4.0, recent[1].RiskScore)
	assert.Equal(t, 5.0, recent[2].RiskScore)
	assert.Equal(t, 3, cb.Len())
}

func TestContextBufferPartialFill(t *testing.T) {
	cb := NewContextBuffer(10)

	cb.Push(snapshotWithScore(1))
	cb.Push(snapshotWithScore(2))

	recent := cb.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, 1.0, recent[0].RiskScore)
	assert.Equal(t, 2.0, recent[1].RiskScore)
}

func TestContextBufferDefaultCapacity(t *testing.T) {
	cb := NewContextBuffer(0)

	for i := 0; i < 25; i++ {
		cb.Push(snapshotWithScore(float64(i)))
	}

	assert.Equal(t, 10, cb.Len())
}

func TestTemplateExplainerDeltaSpike(t *testing.T) {
	te := NewTemplateExplainer()

	event := types.NewRiskEvent("GC", time.Now(), types.EventDeltaSpike)
	event.OldValue = 0.50
	event.NewValue = 0.56
	event.ChangePct = 12.0
	event.Severity = types.SeverityHigh

	text, err := te.Explain(event, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "GC")
	assert.Contains(t, text, "0.5000")
	assert.Contains(t, text, "0.5600")
	assert.Contains(t, text, "12.0%")
	assert.Contains(t, text, "HIGH")
}

func TestTemplateExplainerIncludesTrend(t *testing.T) {
	te := NewTemplateExplainer()

	context := []types.MetricsSnapshot{
		snapshotWithScore(10),
		snapshotWithScore(40),
		snapshotWithScore(70),
	}
	event := types.NewRiskEvent("GC", time.Now(), types.EventRegimeChange)
	event.Description = "STABLE -> FRAGILE"
	event.Severity = types.SeverityMedium

	text, err := te.Explain(event, context)
	require.NoError(t, err)
	assert.Contains(t, text, "been rising")
	assert.Contains(t, text, "10.0 to 70.0")
}

func TestTemplateExplainerDeterministic(t *testing.T) {
	te := NewTemplateExplainer()

	event := types.NewRiskEvent("GC", time.Now(), types.EventGammaSpike)
	event.OldValue = 0.002
	event.NewValue = 0.003
	event.ChangePct = 50.0
	event.Severity = types.SeverityHigh

	a, err := te.Explain(event, nil)
	require.NoError(t, err)
	b, err := te.Explain(event, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestFactorySelectsProvider(t *testing.T) {
	explainer, err := NewExplainer(config.ExplainConfig{Provider: "template"})
	require.NoError(t, err)
	assert.Equal(t, "template", explainer.Name())

	explainer, err = NewExplainer(config.ExplainConfig{})
	require.NoError(t, err)
	assert.Equal(t, "template", explainer.Name())

	_, err = NewExplainer(config.ExplainConfig{Provider: "llm"})
	assert.Error(t, err)
}
