package ports

type Observability interface {
	LogDebug(msg string, fields ...Field)
	LogInfo(msg string, fields ...Field)
	LogError(msg string, err error, fields ...Field)
	LogCritical(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	ObserveLatency(name string, seconds float64)

	SetGauge(name string, v float64)
}

type Field struct {
	Key   string
	Value any
}

// Metric names used by the bridge loop.
const (
	MetricTicks         = "fdmbridge_ticks_total"
	MetricReceived      = "fdmbridge_datagrams_received_total"
	MetricRejected      = "fdmbridge_controls_rejected_total"
	MetricSent          = "fdmbridge_datagrams_sent_total"
	MetricSendErrors    = "fdmbridge_send_errors_total"
	MetricReceiveErrors = "fdmbridge_receive_errors_total"
	MetricEngineErrors  = "fdmbridge_engine_errors_total"
	MetricTickOverruns  = "fdmbridge_tick_overruns_total"
	MetricSimTime       = "fdmbridge_sim_time_seconds"
	MetricThrottle      = "fdmbridge_throttle"
	MetricTickDuration  = "fdmbridge_tick_duration_seconds"
)
