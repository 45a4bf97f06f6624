package flightbridge

import (
	"github.com/ghalamif/FlightBridge/internal/domain"
	"github.com/ghalamif/FlightBridge/internal/ports"
)

// ControlInputs is the control set decoded from the peer and written to the engine.
type ControlInputs = domain.ControlInputs

// StateSnapshot is the telemetry encoded back to the peer each tick.
type StateSnapshot = domain.StateSnapshot

// Engine is the capability interface a flight-dynamics model must satisfy.
type Engine = ports.Engine

// Transport moves datagrams between the bridge and its peer.
type Transport = ports.Transport

// Observability emits logs and metrics about the loop.
type Observability = ports.Observability

// ModelPaths locates the aircraft and engine definitions a model loads.
type ModelPaths = ports.ModelPaths

// Field is a structured log field used by Observability implementations.
type Field = ports.Field
