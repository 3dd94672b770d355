package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"riskstream/internal/config"
	"riskstream/internal/logging"
	"riskstream/internal/types"
)

// KafkaProvider consumes JSON-encoded ticks from a Kafka topic
type KafkaProvider struct {
	cfg      config.StreamConfig
	reader   *kafka.Reader
	tickChan chan types.Tick
	logger   *logging.Logger
	mu       sync.RWMutex
	running  bool
	ctx      context.Context
	cancel   context.CancelFunc
	lastErr  error
}

// NewKafkaProvider creates a new Kafka tick consumer
func NewKafkaProvider(cfg config.StreamConfig) *KafkaProvider {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}

	return &KafkaProvider{
		cfg:      cfg,
		tickChan: make(chan types.Tick, cfg.BufferSize),
		logger:   logging.NewComponentLogger("kafka-stream"),
	}
}

// Start begins consuming ticks
func (kp *KafkaProvider) Start(ctx context.Context, instruments []string) error {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if kp.running {
		return nil
	}

	if len(kp.cfg.Brokers) == 0 {
		return fmt.Errorf("kafka provider requires at least one broker")
	}
	if kp.cfg.Topic == "" {
		return fmt.Errorf("kafka provider requires a topic")
	}

	kp.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kp.cfg.Brokers,
		GroupID:  kp.cfg.ConsumerGroup,
		Topic:    kp.cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	wanted := make(map[string]bool, len(instruments))
	for _, id := range instruments {
		wanted[id] = true
	}

	kp.ctx, kp.cancel = context.WithCancel(ctx)
	kp.running = true

	go kp.consumeLoop(wanted)

	return nil
}

// Stop stops consuming and closes the reader
func (kp *KafkaProvider) Stop() error {
	kp.mu.Lock()
	defer kp.mu.Unlock()

	if !kp.running {
		return nil
	}

	kp.cancel()
	kp.running = false

	return kp.reader.Close()
}

// Ticks returns the tick channel
func (kp *KafkaProvider) Ticks() <-chan types.Tick {
	return kp.tickChan
}

// IsConnected returns true while the consumer loop is running
func (kp *KafkaProvider) IsConnected() bool {
	kp.mu.RLock()
	defer kp.mu.RUnlock()
	return kp.running
}

// GetLastError returns the last consume or decode error
func (kp *KafkaProvider) GetLastError() error {
	kp.mu.RLock()
	defer kp.mu.RUnlock()
	return kp.lastErr
}

func (kp *KafkaProvider) setError(err error) {
	kp.mu.Lock()
	kp.lastErr = err
	kp.mu.Unlock()
}

// consumeLoop reads messages until the context is cancelled
func (kp *KafkaProvider) consumeLoop(wanted map[string]bool) {
	defer close(kp.tickChan)

	for {
		msg, err := kp.reader.ReadMessage(kp.ctx)
		if err != nil {
			if kp.ctx.Err() != nil {
				return
			}
			kp.setError(err)
			kp.logger.WithError(err).Error("Kafka read failed")
			return
		}

		var tick types.Tick
		if err := json.Unmarshal(msg.Value, &tick); err != nil {
			kp.setError(fmt.Errorf("bad tick payload at offset %d: %w", msg.Offset, err))
			kp.logger.WithField("offset", msg.Offset).WithError(err).Warn("Skipping malformed tick")
			continue
		}

		if len(wanted) > 0 && !wanted[tick.InstrumentID] {
			continue
		}

		select {
		case kp.tickChan <- tick:
		case <-kp.ctx.Done():
			return
		}
	}
}
