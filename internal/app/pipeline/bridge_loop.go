package pipeline

import (
	"context"
	"net"
	"time"

	"github.com/ghalamif/FlightBridge/internal/domain"
	"github.com/ghalamif/FlightBridge/internal/ports"
	"github.com/ghalamif/FlightBridge/internal/protocol"
)

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// LoopOption customizes a BridgeLoop.
type LoopOption func(*BridgeLoop)

// WithSleeper replaces the timer-based sleep between ticks.
func WithSleeper(s Sleeper) LoopOption {
	return func(l *BridgeLoop) {
		if s != nil {
			l.sleep = s
		}
	}
}

// WithClock replaces time.Now for tick timing.
func WithClock(now func() time.Time) LoopOption {
	return func(l *BridgeLoop) {
		if now != nil {
			l.now = now
		}
	}
}

// BridgeLoop runs the receive → apply → step → encode → send → sleep cycle.
// Everything it touches is owned by the goroutine calling Run.
type BridgeLoop struct {
	eng   ports.Engine
	tr    ports.Transport
	pol   ports.Policy
	obs   ports.Observability
	sleep Sleeper
	now   func() time.Time

	controls domain.ControlInputs
	peer     string
	out      []byte

	recvFailures   failureStreak
	engineFailures failureStreak
	sendFailures   failureStreak
}

func NewBridgeLoop(eng ports.Engine, tr ports.Transport, pol ports.Policy, obs ports.Observability, opts ...LoopOption) *BridgeLoop {
	l := &BridgeLoop{
		eng:            eng,
		tr:             tr,
		pol:            pol,
		obs:            obs,
		sleep:          SleepContext,
		now:            time.Now,
		out:            make([]byte, 0, 512),
		recvFailures:   failureStreak{event: "udp_receive_failed", metric: ports.MetricReceiveErrors},
		engineFailures: failureStreak{event: "engine_step_failed", metric: ports.MetricEngineErrors},
		sendFailures:   failureStreak{event: "udp_send_failed", metric: ports.MetricSendErrors},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Controls returns the control set most recently written to the engine.
func (l *BridgeLoop) Controls() domain.ControlInputs { return l.controls }

// ApplyControls writes every channel to the engine and makes c the held
// control set.
func (l *BridgeLoop) ApplyControls(c domain.ControlInputs) {
	for i, v := range c.Channels() {
		l.eng.SetProperty(domain.ControlProperties[i], v)
	}
	l.controls = c
	l.obs.SetGauge(ports.MetricThrottle, c.Throttle)
}

// Run ticks until ctx is cancelled and returns ctx.Err().
func (l *BridgeLoop) Run(ctx context.Context) error {
	l.obs.LogInfo("bridge_loop_started",
		ports.Field{Key: "timestep", Value: l.pol.Timestep},
		ports.Field{Key: "pacing", Value: l.pol.Pacing})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		elapsed := l.Tick()
		if err := l.sleep(ctx, l.pol.Sleep(elapsed)); err != nil {
			return err
		}
	}
}

// Tick runs one cycle without the trailing sleep and reports how long it
// took.
func (l *BridgeLoop) Tick() time.Duration {
	start := l.now()

	l.pollControls()

	if err := l.eng.Run(); err != nil {
		l.engineFailures.fail(l.obs, err)
	} else {
		l.engineFailures.ok(l.obs)
	}

	state := protocol.ReadState(l.eng)
	l.out = protocol.EncodeState(l.out[:0], state)
	if err := l.tr.Send(l.out); err != nil {
		l.sendFailures.fail(l.obs, err)
	} else {
		l.sendFailures.ok(l.obs)
		l.obs.IncCounter(ports.MetricSent, 1)
	}

	l.obs.SetGauge(ports.MetricSimTime, state.SimTime)
	l.obs.IncCounter(ports.MetricTicks, 1)

	elapsed := l.now().Sub(start)
	l.obs.ObserveLatency(ports.MetricTickDuration, elapsed.Seconds())
	if elapsed > l.pol.Timestep {
		l.obs.IncCounter(ports.MetricTickOverruns, 1)
	}
	return elapsed
}

// pollControls takes at most one datagram per tick. A rejected message
// leaves the held controls, and the engine, untouched.
func (l *BridgeLoop) pollControls() {
	payload, from, ok, err := l.tr.ReceiveLatest()
	if err != nil {
		l.recvFailures.fail(l.obs, err)
		return
	}
	l.recvFailures.ok(l.obs)
	if !ok {
		return
	}
	l.obs.IncCounter(ports.MetricReceived, 1)
	l.notePeer(from)

	c, err := protocol.DecodeControls(payload)
	if err != nil {
		l.obs.IncCounter(ports.MetricRejected, 1)
		l.obs.LogDebug("controls_rejected",
			ports.Field{Key: "from", Value: from.String()},
			ports.Field{Key: "err", Value: err.Error()})
		return
	}
	l.ApplyControls(c)
}

func (l *BridgeLoop) notePeer(from *net.UDPAddr) {
	if from == nil {
		return
	}
	if addr := from.String(); addr != l.peer {
		l.peer = addr
		l.obs.LogInfo("peer_changed", ports.Field{Key: "peer", Value: addr})
	}
}

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// failureStreak counts every failure but logs only the first of a run and
// the recovery.
type failureStreak struct {
	event  string
	metric string
	count  int
}

func (f *failureStreak) fail(obs ports.Observability, err error) {
	obs.IncCounter(f.metric, 1)
	if f.count == 0 {
		obs.LogError(f.event, err)
	}
	f.count++
}

func (f *failureStreak) ok(obs ports.Observability) {
	if f.count > 0 {
		obs.LogInfo(f.event+"_recovered", ports.Field{Key: "failures", Value: f.count})
		f.count = 0
	}
}
