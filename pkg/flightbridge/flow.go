package flightbridge

import (
	"context"
	"fmt"
)

// Flow is a convenience builder that lets callers say Conf → StreamIN →
// StreamOUT without touching the underlying hexagonal wiring.
type Flow struct {
	cfg  *Config
	opts []BridgeRuntimeOption
}

// FlowOption mutates the Flow after configuration is loaded.
type FlowOption func(*Flow)

// StreamInOption configures the client-facing side: transport and pacing.
type StreamInOption func(*Flow)

// StreamOutOption configures the engine side and observability.
type StreamOutOption func(*Flow)

// Conf loads YAML from disk, applies FlowOption values, and returns a Flow builder.
func Conf(path string, opts ...FlowOption) (*Flow, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return ConfFromConfig(cfg, opts...)
}

// ConfFromConfig bootstraps a Flow from an in-memory Config.
func ConfFromConfig(cfg *Config, opts ...FlowOption) (*Flow, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	f := &Flow{cfg: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f, nil
}

// Config returns the underlying configuration so callers can tweak it before building a runtime.
func (f *Flow) Config() *Config {
	if f == nil {
		return nil
	}
	return f.cfg
}

// Options appends raw BridgeRuntimeOption values for advanced scenarios.
func (f *Flow) Options(opts ...BridgeRuntimeOption) *Flow {
	if f == nil {
		return nil
	}
	f.appendOptions(opts...)
	return f
}

// StreamIN records client-side overrides.
func (f *Flow) StreamIN(opts ...StreamInOption) *Flow {
	if f == nil {
		return nil
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// StreamOUT records engine-side overrides and builds a BridgeRuntime ready to run.
func (f *Flow) StreamOUT(opts ...StreamOutOption) (*BridgeRuntime, error) {
	if f == nil {
		return nil, fmt.Errorf("flow is nil")
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return NewBridgeRuntime(f.cfg, f.opts...)
}

// Run is a shortcut for StreamOUT + runtime.Run.
func (f *Flow) Run(ctx context.Context, opts ...StreamOutOption) error {
	rt, err := f.StreamOUT(opts...)
	if err != nil {
		return err
	}
	return rt.Run(ctx)
}

// WithFlowOptions appends BridgeRuntimeOption values during Conf.
func WithFlowOptions(opts ...BridgeRuntimeOption) FlowOption {
	return func(f *Flow) {
		if f != nil {
			f.appendOptions(opts...)
		}
	}
}

// StreamInTransport replaces the UDP socket, e.g. with an in-process pipe.
func StreamInTransport(tr Transport) StreamInOption {
	return func(f *Flow) {
		if f != nil && tr != nil {
			f.appendOptions(WithTransport(tr))
		}
	}
}

// StreamInSleeper replaces the wait between ticks.
func StreamInSleeper(s Sleeper) StreamInOption {
	return func(f *Flow) {
		if f != nil && s != nil {
			f.appendOptions(WithSleeper(s))
		}
	}
}

// StreamOutEngine injects a flight-dynamics model.
func StreamOutEngine(eng Engine) StreamOutOption {
	return func(f *Flow) {
		if f != nil && eng != nil {
			f.appendOptions(WithEngine(eng))
		}
	}
}

// StreamOutObservability replaces the default observability backend.
func StreamOutObservability(obs Observability) StreamOutOption {
	return func(f *Flow) {
		if f != nil && obs != nil {
			f.appendOptions(WithObservability(obs))
		}
	}
}

func (f *Flow) appendOptions(opts ...BridgeRuntimeOption) {
	for _, opt := range opts {
		if opt != nil {
			f.opts = append(f.opts, opt)
		}
	}
}
