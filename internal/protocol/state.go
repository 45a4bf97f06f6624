package protocol

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ghalamif/FlightBridge/internal/domain"
	"github.com/ghalamif/FlightBridge/internal/ports"
)

const (
	FeetToMeters     = 0.3048
	DegreesToRadians = math.Pi / 180
)

// Engine property names, in the engine's native units.
const (
	PropLatitudeDeg   = "position/lat-gc-deg"
	PropLongitudeDeg  = "position/long-gc-deg"
	PropAltitudeFt    = "position/h-sl-ft"
	PropRollRad       = "orientation/phi-rad"
	PropPitchRad      = "orientation/theta-rad"
	PropYawRad        = "orientation/psi-rad"
	PropUFps          = "velocities/u-fps"
	PropVFps          = "velocities/v-fps"
	PropWFps          = "velocities/w-fps"
	PropPRadSec       = "velocities/p-rad_sec"
	PropQRadSec       = "velocities/q-rad_sec"
	PropRRadSec       = "velocities/r-rad_sec"
	PropCalibratedFps = "velocities/vc-fps"
	PropMach          = "velocities/mach"
	PropAlphaDeg      = "aero/alpha-deg"
	PropBetaDeg       = "aero/beta-deg"
	PropSimTimeSecs   = "simulation/sim-time-secs"
	PropSimulationDt  = "simulation/dt"
)

// ErrStateFieldCount is returned by DecodeState for messages that do not
// carry exactly domain.StateFieldCount fields.
var ErrStateFieldCount = errors.New("protocol: wrong number of state fields")

// ReadState captures a snapshot from eng, converting to SI units.
func ReadState(eng ports.Engine) domain.StateSnapshot {
	return domain.StateSnapshot{
		Latitude:  eng.GetProperty(PropLatitudeDeg) * DegreesToRadians,
		Longitude: eng.GetProperty(PropLongitudeDeg) * DegreesToRadians,
		Altitude:  eng.GetProperty(PropAltitudeFt) * FeetToMeters,

		Roll:  eng.GetProperty(PropRollRad),
		Pitch: eng.GetProperty(PropPitchRad),
		Yaw:   eng.GetProperty(PropYawRad),

		U: eng.GetProperty(PropUFps) * FeetToMeters,
		V: eng.GetProperty(PropVFps) * FeetToMeters,
		W: eng.GetProperty(PropWFps) * FeetToMeters,

		P: eng.GetProperty(PropPRadSec),
		Q: eng.GetProperty(PropQRadSec),
		R: eng.GetProperty(PropRRadSec),

		CalibratedAirspeed: eng.GetProperty(PropCalibratedFps) * FeetToMeters,
		Mach:               eng.GetProperty(PropMach),
		Alpha:              eng.GetProperty(PropAlphaDeg) * DegreesToRadians,
		Beta:               eng.GetProperty(PropBetaDeg) * DegreesToRadians,

		SimTime: eng.GetProperty(PropSimTimeSecs),
	}
}

// EncodeState appends the wire form of s to dst: eighteen fields, six
// fractional digits each, no terminator.
func EncodeState(dst []byte, s domain.StateSnapshot) []byte {
	f := s.Fields()
	return appendFields(dst, f[:])
}

// DecodeState parses a state message. Unlike DecodeControls it is strict:
// every field must be a number.
func DecodeState(payload []byte) (domain.StateSnapshot, error) {
	var (
		vals [domain.StateFieldCount]float64
		n    int
	)
	for tok := range strings.SplitSeq(strings.TrimSpace(string(payload)), ",") {
		if n == domain.StateFieldCount {
			return domain.StateSnapshot{}, fmt.Errorf("%w: more than %d", ErrStateFieldCount, domain.StateFieldCount)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return domain.StateSnapshot{}, fmt.Errorf("state field %d: %w", n, err)
		}
		vals[n] = v
		n++
	}
	if n != domain.StateFieldCount {
		return domain.StateSnapshot{}, fmt.Errorf("%w: got %d", ErrStateFieldCount, n)
	}
	return domain.SnapshotFromFields(vals), nil
}
