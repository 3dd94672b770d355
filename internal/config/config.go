package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig          `json:"app"`
	Instruments []InstrumentConfig `json:"instruments"`
	Thresholds  ThresholdsConfig   `json:"thresholds"`
	Scoring     ScoringConfig      `json:"scoring"`
	Regime      RegimeConfig       `json:"regime"`
	Engine      EngineConfig       `json:"engine"`
	VolProxy    VolProxyConfig     `json:"vol_proxy"`
	Stream      StreamConfig       `json:"stream"`
	Publish     PublishConfig      `json:"publish"`
	Explain     ExplainConfig      `json:"explain"`
	Logging     LoggingConfig      `json:"logging"`
}

// AppConfig contains basic application configuration
type AppConfig struct {
	Name            string        `json:"name"`
	Version         string        `json:"version"`
	Environment     string        `json:"environment"` // "development", "production", "test"
	Debug           bool          `json:"debug"`
	MetricsAddr     string        `json:"metrics_addr"` // Prometheus listen address, empty disables
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// InstrumentConfig describes one tracked option contract
type InstrumentConfig struct {
	ID           string    `json:"id"`          // instrument id carried by ticks, e.g. "GC"
	Symbol       string    `json:"symbol"`      // option symbol, e.g. "GC_C_2100"
	Underlying   string    `json:"underlying"`  // futures symbol
	OptionType   string    `json:"option_type"` // "call" or "put"
	Strike       float64   `json:"strike"`
	Expiration   time.Time `json:"expiration"`
	RiskFreeRate float64   `json:"risk_free_rate"` // annualized
}

// ThresholdsConfig contains event detection thresholds
type ThresholdsConfig struct {
	DeltaChangeThreshold float64 `json:"delta_change_threshold"` // 5% relative change
	GammaChangeThreshold float64 `json:"gamma_change_threshold"` // 10% relative change
	NearZeroEpsilon      float64 `json:"near_zero_epsilon"`      // absolute-comparison fallback bound
}

// ScoringConfig contains risk score weights and normalization constants.
// The score is MagnitudeWeight*magnitude + VelocityWeight*velocity clamped
// to [0,100]; the scale constants map raw Greek magnitudes onto 0-100.
type ScoringConfig struct {
	MagnitudeWeight    float64 `json:"magnitude_weight"`
	VelocityWeight     float64 `json:"velocity_weight"`
	GammaScale         float64 `json:"gamma_scale"`
	VegaScale          float64 `json:"vega_scale"`
	DeltaVelocityScale float64 `json:"delta_velocity_scale"`
	GammaVelocityScale float64 `json:"gamma_velocity_scale"`
}

// RegimeConfig contains regime boundaries and hysteresis behavior
type RegimeConfig struct {
	StableMax         float64 `json:"stable_max"`         // scores below this are STABLE
	SensitiveMax      float64 `json:"sensitive_max"`      // scores below this are SENSITIVE
	ConfirmationTicks int     `json:"confirmation_ticks"` // 1 = confirm on first crossing
}

// EngineConfig contains orchestrator settings
type EngineConfig struct {
	LaneQueueSize   int       `json:"lane_queue_size"`   // per-instrument tick queue
	OutputQueueSize int       `json:"output_queue_size"` // publication buffer
	ShockScenarios  []float64 `json:"shock_scenarios"`   // e.g. [0.01, -0.01, 0.05, -0.05]
}

// VolProxyConfig contains the realized-volatility estimator settings used
// when the feed carries no implied volatility
type VolProxyConfig struct {
	Enabled       bool    `json:"enabled"`        // substitute estimates for ticks without implied vol
	Window        int     `json:"window"`         // number of returns per estimate
	TicksPerYear  float64 `json:"ticks_per_year"` // annualization factor
	MinVolatility float64 `json:"min_volatility"` // floor for the proxy
	DefaultVol    float64 `json:"default_vol"`    // used before the window fills
}

// StreamConfig contains tick source configuration
type StreamConfig struct {
	ProviderType string `json:"provider_type"` // "simulation", "replay", "kafka"
	BufferSize   int    `json:"buffer_size"`

	// Simulation
	Seed             int64              `json:"seed"`
	TickInterval     time.Duration      `json:"tick_interval"`
	InitialPrices    map[string]float64 `json:"initial_prices"`
	RandomVolatility float64            `json:"random_volatility"`

	// Replay
	DataPath      string  `json:"data_path"`
	PlaybackSpeed float64 `json:"playback_speed"` // 1.0 = real-time, 0 = as fast as possible

	// Kafka
	Brokers       []string `json:"brokers"`
	Topic         string   `json:"topic"`
	ConsumerGroup string   `json:"consumer_group"`
}

// PublishConfig contains output sink configuration
type PublishConfig struct {
	SinkType string `json:"sink_type"` // "log", "kafka", "websocket"

	// Kafka
	Brokers      []string `json:"brokers"`
	MetricsTopic string   `json:"metrics_topic"`
	EventsTopic  string   `json:"events_topic"`

	// WebSocket
	ListenAddr string `json:"listen_addr"`
}

// ExplainConfig contains explanation collaborator configuration
type ExplainConfig struct {
	Provider    string `json:"provider"`     // "template"
	ContextSize int    `json:"context_size"` // recent metrics kept as context
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level     string `json:"level"`     // "debug", "info", "warn", "error"
	Format    string `json:"format"`    // "json", "text"
	Output    string `json:"output"`    // "stdout", "file", "both"
	Directory string `json:"directory"` // Log file directory

	// File rotation
	MaxSize    int  `json:"max_size"`    // Max MB per file
	MaxBackups int  `json:"max_backups"` // Max number of old files
	MaxAge     int  `json:"max_age"`     // Max days to retain
	Compress   bool `json:"compress"`    // Compress old files
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:            "Risk Stream Engine",
			Version:         "1.0.0",
			Environment:     "development",
			Debug:           false,
			MetricsAddr:     ":9105",
			ShutdownTimeout: 30 * time.Second,
		},
		Instruments: []InstrumentConfig{
			{
				ID:           "GC",
				Symbol:       "GC_C_2100",
				Underlying:   "GC",
				OptionType:   "call",
				Strike:       2100.0,
				Expiration:   time.Now().Add(90 * 24 * time.Hour),
				RiskFreeRate: 0.045, // 4.5% annual
			},
		},
		Thresholds: ThresholdsConfig{
			DeltaChangeThreshold: 0.05, // 5%
			GammaChangeThreshold: 0.10, // 10%
			NearZeroEpsilon:      1e-10,
		},
		Scoring: ScoringConfig{
			MagnitudeWeight:    0.6,
			VelocityWeight:     0.4,
			GammaScale:         1000, // gamma is typically small
			VegaScale:          5,
			DeltaVelocityScale: 500,
			GammaVelocityScale: 5000,
		},
		Regime: RegimeConfig{
			StableMax:         30.0, // [0,30) STABLE
			SensitiveMax:      65.0, // [30,65) SENSITIVE, [65,100] FRAGILE
			ConfirmationTicks: 1,    // confirm on first crossing
		},
		Engine: EngineConfig{
			LaneQueueSize:   256,
			OutputQueueSize: 1024,
			ShockScenarios:  []float64{0.01, -0.01, 0.05, -0.05},
		},
		VolProxy: VolProxyConfig{
			Window:        20,
			TicksPerYear:  252 * 78, // 5-minute bars over a trading year
			MinVolatility: 0.01,
			DefaultVol:    0.20, // 20% IV until the window fills
		},
		Stream: StreamConfig{
			ProviderType:     "simulation",
			BufferSize:       1000,
			TickInterval:     time.Second,
			InitialPrices:    map[string]float64{"GC": 2050.0},
			RandomVolatility: 0.10,
		},
		Publish: PublishConfig{
			SinkType:     "log",
			Brokers:      []string{"localhost:9092"},
			MetricsTopic: "risk_metrics",
			EventsTopic:  "risk_events",
			ListenAddr:   ":8090",
		},
		Explain: ExplainConfig{
			Provider:    "template",
			ContextSize: 10,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "both",
			Directory:  "./logs",
			MaxSize:    100, // MB
			MaxBackups: 10,
			MaxAge:     30, // days
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Create default config if file doesn't exist
		defaultConfig := DefaultConfig()
		if err := SaveConfig(defaultConfig, configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	// Read file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON
	config := &Config{}
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal JSON with indentation
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate app config
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}

	// Validate instruments
	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	for _, inst := range c.Instruments {
		if inst.ID == "" {
			return fmt.Errorf("instrument id is required")
		}
		if inst.OptionType != "call" && inst.OptionType != "put" {
			return fmt.Errorf("instrument %s: option type must be call or put", inst.ID)
		}
		if inst.Strike <= 0 {
			return fmt.Errorf("instrument %s: strike must be positive", inst.ID)
		}
	}

	// Validate thresholds
	if c.Thresholds.DeltaChangeThreshold <= 0 {
		return fmt.Errorf("delta change threshold must be positive")
	}
	if c.Thresholds.GammaChangeThreshold <= 0 {
		return fmt.Errorf("gamma change threshold must be positive")
	}

	// Validate scoring weights
	if c.Scoring.MagnitudeWeight < 0 || c.Scoring.VelocityWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if c.Scoring.MagnitudeWeight+c.Scoring.VelocityWeight == 0 {
		return fmt.Errorf("at least one scoring weight must be positive")
	}

	// Validate regime boundaries
	if c.Regime.StableMax <= 0 || c.Regime.SensitiveMax <= c.Regime.StableMax {
		return fmt.Errorf("regime boundaries must satisfy 0 < stable_max < sensitive_max")
	}
	if c.Regime.SensitiveMax > 100 {
		return fmt.Errorf("sensitive_max cannot exceed 100")
	}
	if c.Regime.ConfirmationTicks < 1 {
		return fmt.Errorf("confirmation_ticks must be at least 1")
	}

	// Validate logging config
	validLevels := []string{"debug", "info", "warn", "error"}
	levelValid := false
	for _, level := range validLevels {
		if c.Logging.Level == level {
			levelValid = true
			break
		}
	}
	if !levelValid {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validFormats := []string{"json", "text"}
	formatValid := false
	for _, format := range validFormats {
		if c.Logging.Format == format {
			formatValid = true
			break
		}
	}
	if !formatValid {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// GetEnv returns environment variable with default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvBool returns boolean environment variable with default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}
