package flightbridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	base "github.com/ghalamif/FlightBridge/pkg/flightbridge"
)

// Re-exported errors for convenience.
var (
	ErrTooFewFields    = base.ErrTooFewFields
	ErrStateFieldCount = base.ErrStateFieldCount
	ErrUnknownEngine   = base.ErrUnknownEngine
)

// Type aliases so consumers can import github.com/ghalamif/FlightBridge directly.
type (
	Config              = base.Config
	BridgeConfig        = base.BridgeConfig
	ModelConfig         = base.ModelConfig
	MetricsConfig       = base.MetricsConfig
	LogConfig           = base.LogConfig
	Policy              = base.Policy
	Flow                = base.Flow
	FlowOption          = base.FlowOption
	StreamInOption      = base.StreamInOption
	StreamOutOption     = base.StreamOutOption
	BridgeRuntime       = base.BridgeRuntime
	BridgeRuntimeOption = base.BridgeRuntimeOption
	Sleeper             = base.Sleeper
	ControlInputs       = base.ControlInputs
	StateSnapshot       = base.StateSnapshot
	Engine              = base.Engine
	Transport           = base.Transport
	Observability       = base.Observability
	Field               = base.Field
	ModelPaths          = base.ModelPaths
)

const (
	PacingFixed          = base.PacingFixed
	PacingDriftCorrected = base.PacingDriftCorrected
)

// Config helpers.
func LoadConfig(path string) (*Config, error) {
	return base.LoadConfig(path)
}

func DefaultConfig() *Config {
	return base.DefaultConfig()
}

// Flow builder helpers.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	return base.Conf(path, opts...)
}

func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	return base.ConfFromConfig(cfg, opts...)
}

func WithFlowOptions(opts ...BridgeRuntimeOption) FlowOption {
	return base.WithFlowOptions(opts...)
}

func StreamInTransport(tr Transport) StreamInOption {
	return base.StreamInTransport(tr)
}

func StreamInSleeper(s Sleeper) StreamInOption {
	return base.StreamInSleeper(s)
}

func StreamOutEngine(eng Engine) StreamOutOption {
	return base.StreamOutEngine(eng)
}

func StreamOutObservability(obs Observability) StreamOutOption {
	return base.StreamOutObservability(obs)
}

// Bridge runtime and options.
func NewBridgeRuntime(cfg *Config, opts ...BridgeRuntimeOption) (*BridgeRuntime, error) {
	return base.NewBridgeRuntime(cfg, opts...)
}

func WithEngine(eng Engine) BridgeRuntimeOption {
	return base.WithEngine(eng)
}

func WithTransport(tr Transport) BridgeRuntimeOption {
	return base.WithTransport(tr)
}

func WithObservability(obs Observability) BridgeRuntimeOption {
	return base.WithObservability(obs)
}

func WithRegisterer(reg prometheus.Registerer) BridgeRuntimeOption {
	return base.WithRegisterer(reg)
}

func WithLogger(l *slog.Logger) BridgeRuntimeOption {
	return base.WithLogger(l)
}

func WithSleeper(s Sleeper) BridgeRuntimeOption {
	return base.WithSleeper(s)
}

func SleepContext(ctx context.Context, d time.Duration) error {
	return base.SleepContext(ctx, d)
}

// Wire format helpers for clients.
func EncodeControls(c ControlInputs) []byte {
	return base.EncodeControls(c)
}

func DecodeState(payload []byte) (StateSnapshot, error) {
	return base.DecodeState(payload)
}

func DefaultControls() ControlInputs {
	return base.DefaultControls()
}

// Engine registry.
func RegisterEngine(name string, factory func(paths ModelPaths) Engine) {
	base.RegisterEngine(name, factory)
}
