package flightbridge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestConfFromConfigAndStreamBuilder(t *testing.T) {
	cfg := testConfig()

	flow, err := ConfFromConfig(cfg)
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}
	if flow.Config() != cfg {
		t.Fatalf("expected Config to be returned verbatim")
	}

	eng := newStubEngine()
	tr := &stubTransport{}

	rt, err := flow.
		StreamIN(
			StreamInTransport(tr),
			StreamInSleeper(SleepContext),
		).
		StreamOUT(
			StreamOutEngine(eng),
			StreamOutObservability(&stubObservability{}),
		)
	if err != nil {
		t.Fatalf("StreamOUT returned error: %v", err)
	}
	if rt.engine != eng {
		t.Fatalf("expected custom engine to be wired")
	}
	if rt.transport != tr {
		t.Fatalf("expected custom transport to be wired")
	}
}

func TestFlowRunUsesStreamOutOptions(t *testing.T) {
	flow, err := ConfFromConfig(testConfig())
	if err != nil {
		t.Fatalf("ConfFromConfig returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := &stubTransport{}
	if err := flow.StreamIN(StreamInTransport(tr)).Run(ctx,
		StreamOutEngine(newStubEngine()),
		StreamOutObservability(&stubObservability{}),
	); err != nil {
		t.Fatalf("Run returned unexpected error: %v", err)
	}
	if !tr.closed {
		t.Fatalf("expected transport to be closed after Run")
	}
}

func TestConfLoadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	raw := []byte("bridge:\n  port: 5500\n  dt: 0.02\nmodel:\n  name: f16\nmetrics:\n  disabled: true\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	eng := newStubEngine()
	flow, err := Conf(path, WithFlowOptions(
		WithEngine(eng),
		WithTransport(&stubTransport{}),
		WithObservability(&stubObservability{}),
	))
	if err != nil {
		t.Fatalf("Conf returned error: %v", err)
	}
	if flow.Config().Bridge.Port != 5500 {
		t.Fatalf("expected port 5500, got %d", flow.Config().Bridge.Port)
	}
	if _, err := flow.StreamOUT(); err != nil {
		t.Fatalf("StreamOUT returned error: %v", err)
	}
	if eng.model != "f16" || eng.dt != 0.02 {
		t.Fatalf("expected LoadModel(f16, 0.02), got (%s, %v)", eng.model, eng.dt)
	}

	if _, err := Conf(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
