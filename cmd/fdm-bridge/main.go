package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ghalamif/FlightBridge"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "probe":
		err = probeCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("fdm-bridge %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to bridge configuration file (defaults when empty)")
	model := fs.String("model", "", "Model name passed to the engine")
	host := fs.String("host", "", "Address to bind")
	port := fs.Int("port", 0, "UDP port to bind")
	dt := fs.Float64("dt", 0, "Timestep in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := flightbridge.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "model":
			cfg.Model.Name = *model
		case "host":
			cfg.Bridge.Host = *host
		case "port":
			cfg.Bridge.Port = *port
		case "dt":
			cfg.Bridge.Dt = *dt
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	flow, err := flightbridge.ConfFromConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("bridging %s on udp://%s:%d at %.4fs\n", cfg.Model.Name, cfg.Bridge.Host, cfg.Bridge.Port, cfg.Bridge.Dt)
	return flow.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := flightbridge.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

// probeCommand plays the client role: it sends a control line and prints
// the state the bridge sends back.
func probeCommand(args []string) error {
	fs := flag.NewFlagSet("probe", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:12345", "Bridge address")
	controls := fs.String("controls", "", "Control line to send (defaults to gear down, everything else zero)")
	count := fs.Int("count", 5, "Number of control datagrams to send")
	interval := fs.Duration("interval", 200*time.Millisecond, "Wait for a reply after each send")
	if err := fs.Parse(args); err != nil {
		return err
	}

	payload := []byte(*controls)
	if *controls == "" {
		payload = flightbridge.EncodeControls(flightbridge.DefaultControls())
	}

	raddr, err := net.ResolveUDPAddr("udp", *addr)
	if err != nil {
		return err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	buf := make([]byte, 4096)
	for i := 0; i < *count; i++ {
		if _, err := conn.Write(payload); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		if err := conn.SetReadDeadline(time.Now().Add(*interval)); err != nil {
			return err
		}
		n, err := conn.Read(buf)
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			fmt.Printf("[%d] no reply within %s\n", i, *interval)
			continue
		}
		if err != nil {
			return fmt.Errorf("receive: %w", err)
		}
		s, err := flightbridge.DecodeState(buf[:n])
		if err != nil {
			fmt.Printf("[%d] bad state %q: %v\n", i, buf[:n], err)
			continue
		}
		fmt.Printf("[%d] t=%.3fs alt=%.1fm phi=%.3f theta=%.3f psi=%.3f vc=%.1fm/s mach=%.3f\n",
			i, s.SimTime, s.Altitude, s.Roll, s.Pitch, s.Yaw, s.CalibratedAirspeed, s.Mach)
	}
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:9100/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		"fdmbridge_ticks_total":              0,
		"fdmbridge_datagrams_received_total": 0,
		"fdmbridge_controls_rejected_total":  0,
		"fdmbridge_send_errors_total":        0,
		"fdmbridge_tick_overruns_total":      0,
		"fdmbridge_sim_time_seconds":         0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] ticks=%.0f recv=%.0f rejected=%.0f send_err=%.0f overruns=%.0f sim=%.2fs\n",
		time.Now().Format(time.RFC3339),
		targets["fdmbridge_ticks_total"],
		targets["fdmbridge_datagrams_received_total"],
		targets["fdmbridge_controls_rejected_total"],
		targets["fdmbridge_send_errors_total"],
		targets["fdmbridge_tick_overruns_total"],
		targets["fdmbridge_sim_time_seconds"],
	)
	return nil
}

func printUsage() {
	fmt.Printf(`FlightBridge CLI

Usage:
  fdm-bridge <command> [flags]

Commands:
  run        Start the bridge (defaults: c172p on 127.0.0.1:12345 at 60 Hz)
  validate   Load and validate a config file without starting the bridge
  probe      Send control datagrams to a running bridge and print the replies
  stats      Poll the Prometheus metrics endpoint and print live counters

Examples:
  fdm-bridge run -config ./data/config.yaml
  fdm-bridge run -model c172p -port 12345 -dt 0.0166667
  fdm-bridge validate -config ./data/config.yaml
  fdm-bridge probe -addr 127.0.0.1:12345 -controls "0.5,0.1,-0.2,0,0,1" -count 10
  fdm-bridge stats -url http://localhost:9100/metrics -interval 1s
`)
}
