package flightbridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/ghalamif/FlightBridge/internal/adapters/engine"
	"github.com/ghalamif/FlightBridge/internal/adapters/observability"
	"github.com/ghalamif/FlightBridge/internal/adapters/udp"
	"github.com/ghalamif/FlightBridge/internal/app/pipeline"
	"github.com/ghalamif/FlightBridge/internal/domain"
	"github.com/ghalamif/FlightBridge/internal/ports"
)

// Sleeper waits between ticks; see WithSleeper.
type Sleeper = pipeline.Sleeper

// SleepContext is the default Sleeper: a timer that returns early when ctx
// is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	return pipeline.SleepContext(ctx, d)
}

// BridgeRuntimeOption customizes the dependencies used by BridgeRuntime.
type BridgeRuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	engine        ports.Engine
	transport     ports.Transport
	observability ports.Observability
	registerer    prometheus.Registerer
	logger        *slog.Logger
	sleeper       pipeline.Sleeper
}

// WithEngine injects a flight-dynamics model instead of the one named by
// model.engine. LoadModel is still called on it; model paths are the
// caller's to apply.
func WithEngine(eng Engine) BridgeRuntimeOption {
	return func(o *runtimeOverrides) {
		o.engine = eng
	}
}

// WithTransport injects a transport instead of binding a UDP socket.
func WithTransport(tr Transport) BridgeRuntimeOption {
	return func(o *runtimeOverrides) {
		o.transport = tr
	}
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs Observability) BridgeRuntimeOption {
	return func(o *runtimeOverrides) {
		o.observability = obs
	}
}

// WithRegisterer registers the default Prometheus metrics somewhere other
// than the global registry. If reg is also a Gatherer it backs /metrics.
func WithRegisterer(reg prometheus.Registerer) BridgeRuntimeOption {
	return func(o *runtimeOverrides) {
		o.registerer = reg
	}
}

// WithLogger replaces the logger built from the log config.
func WithLogger(l *slog.Logger) BridgeRuntimeOption {
	return func(o *runtimeOverrides) {
		o.logger = l
	}
}

// WithSleeper replaces the wait between ticks.
func WithSleeper(s Sleeper) BridgeRuntimeOption {
	return func(o *runtimeOverrides) {
		o.sleeper = s
	}
}

// BridgeRuntime wires engine, transport and loop together and serves
// metrics alongside.
type BridgeRuntime struct {
	cfg        Config
	obs        ports.Observability
	engine     ports.Engine
	transport  ports.Transport
	loop       *pipeline.BridgeLoop
	gatherer   prometheus.Gatherer
	metricsSrv *http.Server
	logCloser  io.Closer

	metricsAddr string // bound address, set before the loop starts
}

// NewBridgeRuntime loads the model and binds the transport. Any error here
// is a startup failure: the caller should report it and exit nonzero.
// The configuration is copied; later changes to cfg have no effect.
func NewBridgeRuntime(cfg *Config, opts ...BridgeRuntimeOption) (*BridgeRuntime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	c := *cfg
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	rt := &BridgeRuntime{cfg: c, gatherer: prometheus.DefaultGatherer}

	obs := overrides.observability
	if obs == nil {
		logger := overrides.logger
		if logger == nil {
			l, closer, err := observability.NewLogger(c.Log.Level, c.Log.Dir)
			if err != nil {
				return nil, err
			}
			logger, rt.logCloser = l, closer
		}
		reg := overrides.registerer
		if g, ok := reg.(prometheus.Gatherer); ok {
			rt.gatherer = g
		}
		prom, err := observability.NewPromObs(reg, logger)
		if err != nil {
			rt.closeLog()
			return nil, err
		}
		obs = prom
	}
	rt.obs = obs

	eng := overrides.engine
	if eng == nil {
		var err error
		eng, err = engine.New(c.Model.Engine, c.Model.Paths())
		if err != nil {
			rt.closeLog()
			return nil, err
		}
	}
	if err := eng.LoadModel(c.Model.Name, c.Bridge.Dt); err != nil {
		obs.LogCritical("model_load_failed", err, ports.Field{Key: "model", Value: c.Model.Name})
		rt.closeLog()
		return nil, fmt.Errorf("load model %q: %w", c.Model.Name, err)
	}
	rt.engine = eng
	obs.LogInfo("model_loaded",
		ports.Field{Key: "model", Value: c.Model.Name},
		ports.Field{Key: "aircraft_path", Value: c.Model.AircraftPath},
		ports.Field{Key: "engine_path", Value: c.Model.EnginePath})

	tr := overrides.transport
	if tr == nil {
		u, err := udp.Listen(udp.Config{
			Host:             c.Bridge.Host,
			Port:             c.Bridge.Port,
			PeerAddr:         c.Bridge.PeerAddr,
			MaxDatagramBytes: c.Bridge.MaxDatagramBytes,
		})
		if err != nil {
			obs.LogCritical("socket_setup_failed", err)
			rt.closeLog()
			return nil, err
		}
		tr = u
	}
	rt.transport = tr

	var loopOpts []pipeline.LoopOption
	if overrides.sleeper != nil {
		loopOpts = append(loopOpts, pipeline.WithSleeper(overrides.sleeper))
	}
	rt.loop = pipeline.NewBridgeLoop(eng, tr, c.Bridge.Policy(), obs, loopOpts...)
	if c.Model.SendInitialControls() {
		rt.loop.ApplyControls(domain.DefaultControls())
	}

	obs.LogInfo("bridge_ready",
		ports.Field{Key: "host", Value: c.Bridge.Host},
		ports.Field{Key: "port", Value: c.Bridge.Port},
		ports.Field{Key: "model", Value: c.Model.Name},
		ports.Field{Key: "engine", Value: c.Model.Engine},
		ports.Field{Key: "dt", Value: c.Bridge.Dt})
	return rt, nil
}

// Config returns the configuration the runtime was built with.
func (r *BridgeRuntime) Config() Config { return r.cfg }

// Controls returns the control set currently held by the loop.
func (r *BridgeRuntime) Controls() ControlInputs { return r.loop.Controls() }

// Run serves metrics and ticks the loop until ctx is cancelled, then shuts
// down. Cancellation of ctx is a clean exit and returns nil.
func (r *BridgeRuntime) Run(ctx context.Context) error {
	if r == nil {
		return fmt.Errorf("bridge runtime is nil")
	}

	g, gctx := errgroup.WithContext(ctx)

	if !r.cfg.Metrics.Disabled {
		ln, err := net.Listen("tcp", r.cfg.Metrics.Addr)
		if err != nil {
			_ = r.Shutdown(context.Background())
			return fmt.Errorf("metrics listen %s: %w", r.cfg.Metrics.Addr, err)
		}
		r.metricsSrv = &http.Server{Handler: r.metricsHandler()}
		r.metricsAddr = ln.Addr().String()
		r.obs.LogInfo("metrics_listening", ports.Field{Key: "addr", Value: r.metricsAddr})

		srv := r.metricsSrv
		g.Go(func() error {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return r.loop.Run(gctx)
	})

	err := g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		err = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(err, r.Shutdown(shutdownCtx))
}

// Shutdown stops the metrics server and releases the socket and log file.
// It is safe to call more than once.
func (r *BridgeRuntime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
		r.metricsSrv = nil
	}

	if r.transport != nil {
		if err := r.transport.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, err)
		}
		r.transport = nil
		r.obs.LogInfo("bridge_stopped")
	}

	r.closeLog()
	return errors.Join(errs...)
}

func (r *BridgeRuntime) metricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (r *BridgeRuntime) closeLog() {
	if r.logCloser != nil {
		_ = r.logCloser.Close()
		r.logCloser = nil
	}
}
