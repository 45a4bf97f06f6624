package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ghalamif/FlightBridge/internal/ports"
)

func TestPromObsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewPromObs(reg, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	if err != nil {
		t.Fatalf("NewPromObs returned error: %v", err)
	}

	obs.IncCounter(ports.MetricTicks, 3)
	if got := testutil.ToFloat64(obs.counters[ports.MetricTicks]); got != 3 {
		t.Fatalf("expected ticks counter 3, got %f", got)
	}

	obs.IncCounter(ports.MetricRejected, 1)
	if got := testutil.ToFloat64(obs.counters[ports.MetricRejected]); got != 1 {
		t.Fatalf("expected rejected counter 1, got %f", got)
	}

	obs.SetGauge(ports.MetricSimTime, 12.5)
	if got := testutil.ToFloat64(obs.gauges[ports.MetricSimTime]); got != 12.5 {
		t.Fatalf("expected sim time gauge 12.5, got %f", got)
	}

	obs.ObserveLatency(ports.MetricTickDuration, 0.001)
	hCollector := obs.histos[ports.MetricTickDuration].(prometheus.Collector)
	if samples := testutil.CollectAndCount(hCollector); samples != 1 {
		t.Fatalf("expected tick histogram to record 1 sample, got %d", samples)
	}

	obs.IncCounter("unknown_metric", 1)
	obs.SetGauge("unknown_gauge", 1)

	if n, err := testutil.GatherAndCount(reg); err != nil || n == 0 {
		t.Fatalf("expected registered metrics, got n=%d err=%v", n, err)
	}
}

func TestPromObsSharesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	first, err := NewPromObs(reg, logger)
	if err != nil {
		t.Fatalf("first NewPromObs returned error: %v", err)
	}
	second, err := NewPromObs(reg, logger)
	if err != nil {
		t.Fatalf("second NewPromObs on the same registry returned error: %v", err)
	}

	first.IncCounter(ports.MetricTicks, 2)
	second.IncCounter(ports.MetricTicks, 1)
	if got := testutil.ToFloat64(second.counters[ports.MetricTicks]); got != 3 {
		t.Fatalf("expected shared ticks counter 3, got %f", got)
	}
	second.ObserveLatency(ports.MetricTickDuration, 0.002)
	if samples := testutil.CollectAndCount(first.histos[ports.MetricTickDuration].(prometheus.Collector)); samples != 1 {
		t.Fatalf("expected shared tick histogram, got %d samples", samples)
	}
}

func TestPromObsConflictingMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{Name: ports.MetricTicks, Help: "something else"}))

	if _, err := NewPromObs(reg, nil); err == nil {
		t.Fatalf("expected error when a metric name is taken by another collector")
	}
}

func TestPromObsLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs, err := NewPromObs(prometheus.NewRegistry(), logger)
	if err != nil {
		t.Fatalf("NewPromObs returned error: %v", err)
	}

	obs.LogDebug("controls_rejected", ports.Field{Key: "payload", Value: "1,2"})
	obs.LogError("send_failed", errors.New("boom"), ports.Field{Key: "peer", Value: "127.0.0.1:1"})

	out := buf.String()
	for _, want := range []string{"controls_rejected", "payload=1,2", "send_failed", "err=boom", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected log output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestNewLoggerRotatingFile(t *testing.T) {
	dir := t.TempDir()
	logger, closer, err := NewLogger("debug", dir)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("tick", slog.Int("n", 1))
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "fdm-bridge.slog"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	var last map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &last); err != nil {
		t.Fatalf("expected JSON log lines: %v", err)
	}
	if last["msg"] != "tick" {
		t.Fatalf("expected last message tick, got %v", last["msg"])
	}
}

func TestNewLoggerRejectsBadLevel(t *testing.T) {
	if _, _, err := NewLogger("verbose", ""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
