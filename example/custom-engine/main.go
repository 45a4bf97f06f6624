package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ghalamif/FlightBridge"
)

// glider is a toy engine: it sinks at a fixed rate and pitches with the
// elevator. Anything that speaks properties can sit behind the bridge.
type glider struct {
	props map[string]float64
	dt    float64
}

func (g *glider) LoadModel(name string, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("glider %s: bad timestep %v", name, dt)
	}
	g.props = map[string]float64{
		"position/h-sl-ft":  3000,
		"velocities/vc-fps": 80,
		"velocities/u-fps":  80,
	}
	g.dt = dt
	return nil
}

func (g *glider) SetProperty(name string, v float64) { g.props[name] = v }
func (g *glider) GetProperty(name string) float64    { return g.props[name] }

func (g *glider) Run() error {
	g.props["position/h-sl-ft"] -= 5 * g.dt
	g.props["orientation/theta-rad"] += g.props["controls/elevator"] * 0.05 * g.dt
	g.props["simulation/sim-time-secs"] += g.dt
	return nil
}

func main() {
	cfg := flightbridge.DefaultConfig()
	cfg.Model.Name = "glider"
	cfg.Metrics.Disabled = true

	flow, err := flightbridge.ConfFromConfig(cfg)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := flow.Run(ctx, flightbridge.StreamOutEngine(&glider{})); err != nil {
		log.Fatalf("bridge exited: %v", err)
	}
}
