package publish

import (
	"context"

	"riskstream/internal/logging"
	"riskstream/internal/types"
)

// LogPublisher writes engine output to the structured log. Default sink
// for development and the demo binary.
type LogPublisher struct {
	logger *logging.Logger
}

// NewLogPublisher creates a log sink
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{
		logger: logging.NewComponentLogger("publisher"),
	}
}

// PublishMetrics logs the snapshot at info level
func (lp *LogPublisher) PublishMetrics(_ context.Context, snapshot types.MetricsSnapshot) error {
	lp.logger.WithFields(map[string]interface{}{
		"event":      "metrics",
		"instrument": snapshot.InstrumentID,
		"price":      snapshot.UnderlyingPrice,
		"delta":      snapshot.Greeks.Delta,
		"gamma":      snapshot.Greeks.Gamma,
		"vega":       snapshot.Greeks.Vega,
		"risk_score": snapshot.RiskScore,
		"regime":     string(snapshot.Regime),
	}).Info("Metrics snapshot")
	return nil
}

// PublishEvent logs the event at warn level so it stands out
func (lp *LogPublisher) PublishEvent(_ context.Context, event types.RiskEvent) error {
	lp.logger.WithFields(map[string]interface{}{
		"event":      "risk_event",
		"id":         event.ID,
		"instrument": event.InstrumentID,
		"kind":       string(event.Kind),
		"severity":   string(event.Severity),
		"old_value":  event.OldValue,
		"new_value":  event.NewValue,
		"change_pct": event.ChangePct,
	}).Warn(event.Description)
	return nil
}

// Close is a no-op for the log sink
func (lp *LogPublisher) Close() error {
	return nil
}
