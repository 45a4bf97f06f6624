package observability

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ghalamif/FlightBridge/internal/ports"
)

type PromObs struct {
	logger   *slog.Logger
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

// NewPromObs registers the bridge metrics with reg (the default registerer
// when nil) and logs through logger (slog.Default when nil). Metrics already
// registered by an earlier PromObs on the same registry are shared.
func NewPromObs(reg prometheus.Registerer, logger *slog.Logger) (*PromObs, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = slog.Default()
	}

	var errs []error
	counter := func(name, help string) prometheus.Counter {
		c, err := register[prometheus.Counter](reg, prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help}))
		errs = append(errs, err)
		return c
	}
	gauge := func(name, help string) prometheus.Gauge {
		g, err := register[prometheus.Gauge](reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help}))
		errs = append(errs, err)
		return g
	}

	ticks := counter(ports.MetricTicks, "Simulation ticks executed.")
	received := counter(ports.MetricReceived, "Control datagrams received from the peer.")
	rejected := counter(ports.MetricRejected, "Control datagrams discarded for having too few fields.")
	sent := counter(ports.MetricSent, "State datagrams sent to the peer.")
	sendErrs := counter(ports.MetricSendErrors, "State datagrams that could not be sent.")
	recvErrs := counter(ports.MetricReceiveErrors, "Socket errors while polling for control datagrams.")
	engineErrs := counter(ports.MetricEngineErrors, "Engine steps that reported an error.")
	overruns := counter(ports.MetricTickOverruns, "Ticks whose processing took longer than the timestep.")
	simTime := gauge(ports.MetricSimTime, "Simulation time reported by the engine.")
	throttle := gauge(ports.MetricThrottle, "Last throttle command applied to the engine.")
	tickDur, err := register[prometheus.Histogram](reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    ports.MetricTickDuration,
		Help:    "Wall time spent in receive, step, encode and send for one tick.",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 12),
	}))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &PromObs{
		logger: logger,
		counters: map[string]prometheus.Counter{
			ports.MetricTicks:         ticks,
			ports.MetricReceived:      received,
			ports.MetricRejected:      rejected,
			ports.MetricSent:          sent,
			ports.MetricSendErrors:    sendErrs,
			ports.MetricReceiveErrors: recvErrs,
			ports.MetricEngineErrors:  engineErrs,
			ports.MetricTickOverruns:  overruns,
		},
		gauges: map[string]prometheus.Gauge{
			ports.MetricSimTime:  simTime,
			ports.MetricThrottle: throttle,
		},
		histos: map[string]prometheus.Observer{
			ports.MetricTickDuration: tickDur,
		},
	}, nil
}

// register adds c to reg, or returns the collector of the same kind that
// already holds its name.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register metric: %w", err)
}

func (p *PromObs) LogDebug(msg string, fields ...ports.Field) {
	p.logger.Debug(msg, attrs(fields)...)
}

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {
	p.logger.Info(msg, attrs(fields)...)
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	p.logger.Warn(msg, append(attrs(fields), slog.Any("err", err))...)
}

func (p *PromObs) LogCritical(msg string, err error, fields ...ports.Field) {
	p.logger.Error(msg, append(attrs(fields), slog.Any("err", err))...)
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func attrs(fields []ports.Field) []any {
	out := make([]any, 0, len(fields)+1)
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}

var _ ports.Observability = (*PromObs)(nil)
