package publish

import (
	"fmt"

	"riskstream/internal/config"
)

// NewPublisher creates the configured output sink.
// Supported sink types: "log", "kafka", "websocket".
func NewPublisher(cfg config.PublishConfig) (Publisher, error) {
	switch cfg.SinkType {
	case "log", "":
		return NewLogPublisher(), nil
	case "kafka":
		return NewKafkaPublisher(cfg)
	case "websocket":
		return NewWebSocketPublisher(cfg)
	default:
		return nil, fmt.Errorf("unsupported sink type: %s (supported: log, kafka, websocket)", cfg.SinkType)
	}
}
