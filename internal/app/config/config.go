package config

import (
	"fmt"
	"math"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ghalamif/FlightBridge/internal/adapters/observability"
	"github.com/ghalamif/FlightBridge/internal/ports"
)

const (
	DefaultHost  = "127.0.0.1"
	DefaultPort  = 12345
	DefaultModel = "c172p"
	DefaultDt    = 1.0 / 60.0
)

type Config struct {
	Bridge  BridgeConfig  `yaml:"bridge"`
	Model   ModelConfig   `yaml:"model"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// BridgeConfig is the endpoint configuration. It is fixed once the runtime
// is built.
type BridgeConfig struct {
	Host             string  `yaml:"host"`
	Port             int     `yaml:"port"`
	PeerAddr         string  `yaml:"peer_addr"`
	Dt               float64 `yaml:"dt"` // seconds
	Pacing           string  `yaml:"pacing"`
	MaxDatagramBytes int     `yaml:"max_datagram_bytes"`
}

type ModelConfig struct {
	Name            string `yaml:"name"`
	Engine          string `yaml:"engine"`
	AircraftPath    string `yaml:"aircraft_path"`
	EnginePath      string `yaml:"engine_path"`
	InitialControls *bool  `yaml:"initial_controls"`
}

type MetricsConfig struct {
	Addr     string `yaml:"addr"`
	Disabled bool   `yaml:"disabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Load reads YAML from path, fills defaults and validates. An empty path
// yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

func (c *Config) ApplyDefaults() {
	if c.Bridge.Host == "" {
		c.Bridge.Host = DefaultHost
	}
	if c.Bridge.Port == 0 {
		c.Bridge.Port = DefaultPort
	}
	if c.Bridge.Dt == 0 {
		c.Bridge.Dt = DefaultDt
	}
	if c.Bridge.Pacing == "" {
		c.Bridge.Pacing = ports.PacingFixed
	}
	if c.Bridge.MaxDatagramBytes == 0 {
		c.Bridge.MaxDatagramBytes = 4096
	}
	if c.Model.Name == "" {
		c.Model.Name = DefaultModel
	}
	if c.Model.Engine == "" {
		c.Model.Engine = "kinematic"
	}
	if c.Model.AircraftPath == "" {
		c.Model.AircraftPath = "./aircraft"
	}
	if c.Model.EnginePath == "" {
		c.Model.EnginePath = "./engine"
	}
	if c.Model.InitialControls == nil {
		on := true
		c.Model.InitialControls = &on
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9100"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	b := c.Bridge
	if b.Port < 1 || b.Port > 65535 {
		return fmt.Errorf("bridge.port %d out of range", b.Port)
	}
	if !(b.Dt > 0) || math.IsInf(b.Dt, 0) {
		return fmt.Errorf("bridge.dt must be > 0, got %v", b.Dt)
	}
	if b.Timestep() <= 0 {
		return fmt.Errorf("bridge.dt %v is below timer resolution", b.Dt)
	}
	if b.Pacing != ports.PacingFixed && b.Pacing != ports.PacingDriftCorrected {
		return fmt.Errorf("bridge.pacing %q must be %q or %q", b.Pacing, ports.PacingFixed, ports.PacingDriftCorrected)
	}
	if b.MaxDatagramBytes < 64 {
		return fmt.Errorf("bridge.max_datagram_bytes must be >= 64, got %d", b.MaxDatagramBytes)
	}
	if b.PeerAddr != "" {
		if _, _, err := net.SplitHostPort(b.PeerAddr); err != nil {
			return fmt.Errorf("bridge.peer_addr: %w", err)
		}
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Engine == "" {
		return fmt.Errorf("model.engine is required")
	}
	if !c.Metrics.Disabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required")
	}
	if _, err := observability.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Timestep returns Bridge.Dt as a duration.
func (b BridgeConfig) Timestep() time.Duration {
	return time.Duration(b.Dt * float64(time.Second))
}

// Policy derives the loop pacing policy.
func (b BridgeConfig) Policy() ports.Policy {
	return ports.Policy{Timestep: b.Timestep(), Pacing: b.Pacing}
}

// Paths returns the definition locations handed to the engine factory.
func (m ModelConfig) Paths() ports.ModelPaths {
	return ports.ModelPaths{Aircraft: m.AircraftPath, Engine: m.EnginePath}
}

// SendInitialControls reports whether the default control set is pushed to
// the engine before the first tick.
func (m ModelConfig) SendInitialControls() bool {
	return m.InitialControls == nil || *m.InitialControls
}
