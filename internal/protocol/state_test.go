package protocol

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ghalamif/FlightBridge/internal/domain"
)

type propertyEngine map[string]float64

func (e propertyEngine) LoadModel(string, float64) error    { return nil }
func (e propertyEngine) SetProperty(name string, v float64) { e[name] = v }
func (e propertyEngine) GetProperty(name string) float64    { return e[name] }
func (e propertyEngine) Run() error                         { return nil }

func TestReadStateConvertsUnits(t *testing.T) {
	eng := propertyEngine{
		PropLatitudeDeg:   45,
		PropLongitudeDeg:  -90,
		PropAltitudeFt:    1000,
		PropRollRad:       0.1,
		PropPitchRad:      0.2,
		PropYawRad:        0.3,
		PropUFps:          100,
		PropVFps:          -10,
		PropWFps:          5,
		PropPRadSec:       0.01,
		PropQRadSec:       0.02,
		PropRRadSec:       0.03,
		PropCalibratedFps: 200,
		PropMach:          0.18,
		PropAlphaDeg:      4,
		PropBetaDeg:       -2,
		PropSimTimeSecs:   12.5,
	}

	s := ReadState(eng)

	checks := []struct {
		name      string
		got, want float64
	}{
		{"lat", s.Latitude, math.Pi / 4},
		{"lon", s.Longitude, -math.Pi / 2},
		{"alt", s.Altitude, 304.8},
		{"phi", s.Roll, 0.1},
		{"theta", s.Pitch, 0.2},
		{"psi", s.Yaw, 0.3},
		{"u", s.U, 30.48},
		{"v", s.V, -3.048},
		{"w", s.W, 1.524},
		{"p", s.P, 0.01},
		{"q", s.Q, 0.02},
		{"r", s.R, 0.03},
		{"vc", s.CalibratedAirspeed, 60.96},
		{"mach", s.Mach, 0.18},
		{"alpha", s.Alpha, 4 * math.Pi / 180},
		{"beta", s.Beta, -2 * math.Pi / 180},
		{"sim_time", s.SimTime, 12.5},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Fatalf("%s: expected %f, got %f", c.name, c.want, c.got)
		}
	}
}

func TestEncodeStateAltitude(t *testing.T) {
	s := ReadState(propertyEngine{PropAltitudeFt: 1000})
	fields := strings.Split(string(EncodeState(nil, s)), ",")
	if len(fields) != domain.StateFieldCount {
		t.Fatalf("expected %d fields, got %d", domain.StateFieldCount, len(fields))
	}
	if fields[2] != "304.800000" || fields[12] != "304.800000" {
		t.Fatalf("expected altitude 304.800000 at index 2 and 12, got %s and %s", fields[2], fields[12])
	}
}

func TestEncodeStateFormat(t *testing.T) {
	raw := string(EncodeState(nil, domain.StateSnapshot{Latitude: 1, SimTime: 0.0000004}))
	if strings.HasSuffix(raw, "\n") {
		t.Fatalf("state line must not be terminated")
	}
	for i, f := range strings.Split(raw, ",") {
		dot := strings.IndexByte(f, '.')
		if dot < 0 || len(f)-dot-1 != 6 {
			t.Fatalf("field %d %q does not have six fractional digits", i, f)
		}
	}
	if !strings.HasPrefix(raw, "1.000000,0.000000,") {
		t.Fatalf("unexpected prefix in %q", raw)
	}
}

func TestEncodeStateRoundTrip(t *testing.T) {
	in := domain.StateSnapshot{
		Latitude:           0.5934119456780721,
		Longitude:          -2.1350925493397,
		Altitude:           1523.123456789,
		Roll:               -0.0123456789,
		Pitch:              0.087266,
		Yaw:                3.1415926535,
		U:                  55.5555555,
		V:                  -0.4444444,
		W:                  1.0000005,
		P:                  0.0000001,
		Q:                  -0.25,
		R:                  0.3333333333,
		CalibratedAirspeed: 54.321987,
		Mach:               0.163,
		Alpha:              0.0698131,
		Beta:               -0.0017453,
		SimTime:            3600.016667,
	}

	out, err := DecodeState(EncodeState(nil, in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want, got := in.Fields(), out.Fields()
	for i := range want {
		if math.Abs(want[i]-got[i]) > 1e-6 {
			t.Fatalf("field %d: expected %.9f within 1e-6, got %.9f", i, want[i], got[i])
		}
	}
}

func TestDecodeStateStrict(t *testing.T) {
	good := string(EncodeState(nil, domain.StateSnapshot{}))

	if _, err := DecodeState([]byte(good + ",1")); !errors.Is(err, ErrStateFieldCount) {
		t.Fatalf("expected ErrStateFieldCount for 19 fields, got %v", err)
	}
	if _, err := DecodeState([]byte("1,2,3")); !errors.Is(err, ErrStateFieldCount) {
		t.Fatalf("expected ErrStateFieldCount for 3 fields, got %v", err)
	}
	bad := strings.Replace(good, "0.000000", "x", 1)
	if _, err := DecodeState([]byte(bad)); err == nil {
		t.Fatalf("expected error for non-numeric field")
	}
}
