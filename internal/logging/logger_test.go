package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskstream/internal/config"
)

// capturedLogger returns a JSON-format logger writing into buf
func capturedLogger(buf *bytes.Buffer) *Logger {
	logger := NewLogger(config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	})
	logger.Logger.SetOutput(buf)
	return logger
}

// lastRecord decodes the final JSON line written to buf
func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	record := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &record))
	return record
}

func TestComponentLoggerEmitsComponentField(t *testing.T) {
	var buf bytes.Buffer
	base := capturedLogger(&buf)

	component := &Logger{Logger: base.Logger, component: "engine"}
	component.Info("hello")

	record := lastRecord(t, &buf)
	assert.Equal(t, "engine", record["component"])
	assert.Equal(t, "hello", record["msg"])
}

func TestWithFieldsAppearInOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := capturedLogger(&buf)

	logger.WithFields(map[string]interface{}{
		"instrument": "GC",
		"score":      42.5,
	}).Warn("threshold crossed")

	record := lastRecord(t, &buf)
	assert.Equal(t, "GC", record["instrument"])
	assert.Equal(t, 42.5, record["score"])
	assert.Equal(t, "threshold crossed", record["msg"])
	assert.Equal(t, "warning", record["level"])
}

func TestWithFieldChainingAccumulates(t *testing.T) {
	var buf bytes.Buffer
	logger := capturedLogger(&buf)

	logger.WithField("a", 1).WithField("b", 2).Info("chained")

	record := lastRecord(t, &buf)
	assert.Equal(t, float64(1), record["a"])
	assert.Equal(t, float64(2), record["b"])
}

func TestWithErrorAppearsInOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := capturedLogger(&buf)

	logger.WithError(errors.New("feed gap")).Error("tick dropped")

	record := lastRecord(t, &buf)
	assert.Equal(t, "feed gap", record["error"])
	assert.Equal(t, "tick dropped", record["msg"])
}

func TestComponentAndFieldsCombine(t *testing.T) {
	var buf bytes.Buffer
	base := capturedLogger(&buf)

	component := &Logger{Logger: base.Logger, component: "detector"}
	component.WithField("instrument", "GC").Info("armed")

	record := lastRecord(t, &buf)
	assert.Equal(t, "detector", record["component"])
	assert.Equal(t, "GC", record["instrument"])
}

func TestDomainHelpersEmitStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := capturedLogger(&buf)

	logger.LogRiskEvent("GC", "DELTA_SPIKE", "HIGH", 0.50, 0.56, 12.0)
	record := lastRecord(t, &buf)
	assert.Equal(t, "risk_event", record["event"])
	assert.Equal(t, "GC", record["instrument"])
	assert.Equal(t, "DELTA_SPIKE", record["kind"])
	assert.Equal(t, "HIGH", record["severity"])
	assert.Equal(t, 12.0, record["change_pct"])

	buf.Reset()
	logger.LogTickRejected("GC", "out_of_order", errors.New("stale tick"))
	record = lastRecord(t, &buf)
	assert.Equal(t, "tick_rejected", record["event"])
	assert.Equal(t, "out_of_order", record["reason"])
	assert.Equal(t, "stale tick", record["error"])

	buf.Reset()
	logger.LogRegimeChange("GC", "STABLE", "SENSITIVE", 33.0)
	record = lastRecord(t, &buf)
	assert.Equal(t, "regime_change", record["event"])
	assert.Equal(t, "STABLE", record["from_regime"])
	assert.Equal(t, "SENSITIVE", record["to_regime"])
}

func TestComponentLoggerSharesGlobalOutput(t *testing.T) {
	InitGlobalLogger(config.LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	})

	var buf bytes.Buffer
	GetGlobalLogger().Logger.SetOutput(&buf)

	logger := NewComponentLogger("stream")
	logger.Info("connected")

	record := lastRecord(t, &buf)
	assert.Equal(t, "stream", record["component"])
	assert.Equal(t, "connected", record["msg"])
}
