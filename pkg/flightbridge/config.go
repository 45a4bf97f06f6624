package flightbridge

import (
	"github.com/ghalamif/FlightBridge/internal/app/config"
	"github.com/ghalamif/FlightBridge/internal/ports"
)

// Config re-exports the root configuration struct so downstream projects can
// construct or modify it programmatically.
type Config = config.Config

type (
	// BridgeConfig is the UDP endpoint and timestep.
	BridgeConfig = config.BridgeConfig
	// ModelConfig selects the engine and vehicle.
	ModelConfig = config.ModelConfig
	// MetricsConfig configures the metrics HTTP server.
	MetricsConfig = config.MetricsConfig
	// LogConfig configures structured logging.
	LogConfig = config.LogConfig
	// Policy controls tick pacing.
	Policy = ports.Policy
)

const (
	PacingFixed          = ports.PacingFixed
	PacingDriftCorrected = ports.PacingDriftCorrected
)

// LoadConfig loads YAML from disk using the internal config reader. An empty
// path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// DefaultConfig returns the built-in defaults: 127.0.0.1:12345, c172p on the
// kinematic engine at 60 Hz.
func DefaultConfig() *Config {
	return config.Default()
}
