package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/ghalamif/FlightBridge/internal/ports"
)

// KinematicName is the registry name of the built-in engine.
const KinematicName = "kinematic"

// ErrModelNotLoaded is returned by Run before LoadModel succeeded.
var ErrModelNotLoaded = errors.New("engine: model not loaded")

const (
	feetToMeters = 0.3048
	earthRadiusM = 6371000.0
	speedOfSound = 343.0 // m/s

	initialAltitudeFt = 1000 / feetToMeters

	// Response of the kinematic model per unit of control deflection.
	attitudeRate  = 0.06  // rad/s
	maxSpeed      = 150.0 // m/s at full throttle
	climbGain     = 30.0  // m/s per unit throttle above cruiseThrottle
	incidenceGain = 0.1   // rad of alpha/beta per unit deflection

	cruiseThrottle = 0.3
)

// Kinematic is a property-backed stand-in for a flight-dynamics model. It
// turns control deflections directly into attitude rates, airspeed and climb
// rate, which is enough to drive a client end-to-end without a physics
// library. It is not safe for concurrent use.
type Kinematic struct {
	props  map[string]float64
	paths  ports.ModelPaths
	model  string
	dt     float64
	loaded bool
}

// NewKinematic records paths for reporting only; the kinematic model has no
// definition files to read.
func NewKinematic(paths ports.ModelPaths) *Kinematic {
	return &Kinematic{props: make(map[string]float64), paths: paths}
}

// LoadModel accepts any non-empty model name and resets the state to the
// initial condition: wings level at 1000 m over the origin.
func (k *Kinematic) LoadModel(name string, dt float64) error {
	if name == "" {
		return errors.New("kinematic: model name is required")
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("kinematic: invalid timestep %v", dt)
	}
	clear(k.props)
	k.model = name
	k.dt = dt
	k.props["simulation/dt"] = dt
	k.props["position/h-sl-ft"] = initialAltitudeFt
	k.loaded = true
	return nil
}

// Model returns the loaded model name.
func (k *Kinematic) Model() string { return k.model }

// Paths returns the definition paths the engine was built with.
func (k *Kinematic) Paths() ports.ModelPaths { return k.paths }

func (k *Kinematic) SetProperty(name string, v float64) { k.props[name] = v }

func (k *Kinematic) GetProperty(name string) float64 { return k.props[name] }

func (k *Kinematic) Run() error {
	if !k.loaded {
		return ErrModelNotLoaded
	}
	dt := k.dt
	p := k.props

	throttle := p["controls/throttle"]
	elevator := p["controls/elevator"]
	aileron := p["controls/aileron"]
	rudder := p["controls/rudder"]

	p["velocities/p-rad_sec"] = aileron * attitudeRate
	p["velocities/q-rad_sec"] = elevator * attitudeRate
	p["velocities/r-rad_sec"] = rudder * attitudeRate
	p["orientation/phi-rad"] += p["velocities/p-rad_sec"] * dt
	p["orientation/theta-rad"] += p["velocities/q-rad_sec"] * dt
	p["orientation/psi-rad"] = wrapHeading(p["orientation/psi-rad"] + p["velocities/r-rad_sec"]*dt)

	speed := throttle * maxSpeed
	p["velocities/u-fps"] = speed / feetToMeters
	p["velocities/vc-fps"] = speed / feetToMeters
	p["velocities/mach"] = speed / speedOfSound
	p["aero/alpha-deg"] = elevator * incidenceGain * 180 / math.Pi
	p["aero/beta-deg"] = aileron * incidenceGain * 180 / math.Pi

	altM := p["position/h-sl-ft"]*feetToMeters + (throttle-cruiseThrottle)*climbGain*dt
	p["position/h-sl-ft"] = math.Max(0, altM) / feetToMeters

	psi := p["orientation/psi-rad"]
	lat := p["position/lat-gc-deg"] * math.Pi / 180
	north := speed * math.Cos(psi) * dt
	east := speed * math.Sin(psi) * dt
	p["position/lat-gc-deg"] += north / earthRadiusM * 180 / math.Pi
	if c := math.Cos(lat); c > 1e-9 {
		p["position/long-gc-deg"] += east / (earthRadiusM * c) * 180 / math.Pi
	}

	p["simulation/sim-time-secs"] += dt
	return nil
}

func wrapHeading(psi float64) float64 {
	psi = math.Mod(psi, 2*math.Pi)
	if psi < 0 {
		psi += 2 * math.Pi
	}
	return psi
}

var _ ports.Engine = (*Kinematic)(nil)
