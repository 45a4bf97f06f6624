package flightbridge

import (
	"github.com/ghalamif/FlightBridge/internal/adapters/engine"
	"github.com/ghalamif/FlightBridge/internal/domain"
	"github.com/ghalamif/FlightBridge/internal/ports"
	"github.com/ghalamif/FlightBridge/internal/protocol"
)

var (
	// ErrTooFewFields rejects a control datagram with fewer than six values.
	ErrTooFewFields = protocol.ErrTooFewFields
	// ErrStateFieldCount rejects a state datagram that is not 18 values.
	ErrStateFieldCount = protocol.ErrStateFieldCount
	// ErrUnknownEngine is returned when model.engine names nothing registered.
	ErrUnknownEngine = engine.ErrUnknownEngine
)

// EncodeControls renders c as the ten-field line a client sends to the bridge.
func EncodeControls(c ControlInputs) []byte {
	return protocol.EncodeControls(c)
}

// DecodeState parses a state datagram sent by the bridge.
func DecodeState(payload []byte) (StateSnapshot, error) {
	return protocol.DecodeState(payload)
}

// DefaultControls is the control set pushed before the first tick.
func DefaultControls() ControlInputs {
	return domain.DefaultControls()
}

// RegisterEngine makes an engine selectable through model.engine. The
// factory receives model.aircraft_path and model.engine_path.
func RegisterEngine(name string, factory func(paths ModelPaths) Engine) {
	engine.Register(name, func(paths ports.ModelPaths) ports.Engine { return factory(paths) })
}
