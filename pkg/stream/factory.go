package stream

import (
	"fmt"

	"riskstream/internal/config"
)

// NewProvider creates a tick provider based on the configuration. Provider
// selection happens once at construction time; there is no runtime
// switching.
func NewProvider(cfg config.StreamConfig) (TickProvider, error) {
	switch cfg.ProviderType {
	case "simulation":
		return NewSimulationProvider(cfg), nil
	case "replay":
		return NewReplayProvider(cfg), nil
	case "kafka":
		return NewKafkaProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.ProviderType)
	}
}
