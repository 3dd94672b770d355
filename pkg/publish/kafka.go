package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"riskstream/internal/config"
	"riskstream/internal/types"
)

// KafkaPublisher writes snapshots and events to separate Kafka topics,
// keyed by instrument so per-instrument ordering survives partitioning.
type KafkaPublisher struct {
	writer       *kafka.Writer
	metricsTopic string
	eventsTopic  string
}

// NewKafkaPublisher creates a Kafka sink from configuration
func NewKafkaPublisher(cfg config.PublishConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}

	metricsTopic := cfg.MetricsTopic
	if metricsTopic == "" {
		metricsTopic = "risk_metrics"
	}
	eventsTopic := cfg.EventsTopic
	if eventsTopic == "" {
		eventsTopic = "risk_events"
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Balancer: &kafka.Hash{},
	}

	return &KafkaPublisher{
		writer:       writer,
		metricsTopic: metricsTopic,
		eventsTopic:  eventsTopic,
	}, nil
}

// PublishMetrics sends the snapshot to the metrics topic
func (kp *KafkaPublisher) PublishMetrics(ctx context.Context, snapshot types.MetricsSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode metrics snapshot: %w", err)
	}

	return kp.writer.WriteMessages(ctx, kafka.Message{
		Topic: kp.metricsTopic,
		Key:   []byte(snapshot.InstrumentID),
		Value: payload,
	})
}

// PublishEvent sends the event to the events topic
func (kp *KafkaPublisher) PublishEvent(ctx context.Context, event types.RiskEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode risk event: %w", err)
	}

	return kp.writer.WriteMessages(ctx, kafka.Message{
		Topic: kp.eventsTopic,
		Key:   []byte(event.InstrumentID),
		Value: payload,
	})
}

// Close flushes and closes the writer
func (kp *KafkaPublisher) Close() error {
	return kp.writer.Close()
}
