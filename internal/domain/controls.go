package domain

// ControlInputs is the set of normalized control channels pushed into the
// engine. Values are forwarded as received; nothing here clamps them.
type ControlInputs struct {
	Throttle     float64 `json:"throttle"`
	Elevator     float64 `json:"elevator"`
	Aileron      float64 `json:"aileron"`
	Rudder       float64 `json:"rudder"`
	Flaps        float64 `json:"flaps"`
	Gear         float64 `json:"gear"`
	Mixture      float64 `json:"mixture"`
	AileronTrim  float64 `json:"aileron_trim"`
	ElevatorTrim float64 `json:"elevator_trim"`
	RudderTrim   float64 `json:"rudder_trim"`
}

// DefaultControls is the control set in effect before the first datagram:
// everything neutral with the gear down.
func DefaultControls() ControlInputs {
	return ControlInputs{Gear: 1}
}

// Channels returns the channel values in wire order.
func (c ControlInputs) Channels() [ControlChannelCount]float64 {
	return [ControlChannelCount]float64{
		c.Throttle, c.Elevator, c.Aileron, c.Rudder, c.Flaps, c.Gear,
		c.Mixture, c.AileronTrim, c.ElevatorTrim, c.RudderTrim,
	}
}

// ControlsFromChannels is the inverse of Channels.
func ControlsFromChannels(v [ControlChannelCount]float64) ControlInputs {
	return ControlInputs{
		Throttle:     v[0],
		Elevator:     v[1],
		Aileron:      v[2],
		Rudder:       v[3],
		Flaps:        v[4],
		Gear:         v[5],
		Mixture:      v[6],
		AileronTrim:  v[7],
		ElevatorTrim: v[8],
		RudderTrim:   v[9],
	}
}

const (
	// ControlChannelCount is the number of positional channels on the wire.
	ControlChannelCount = 10
	// RequiredControlChannels is the minimum number of channels a control
	// message must carry; mixture and the three trims are optional.
	RequiredControlChannels = 6
)

// ControlProperties maps each channel, in wire order, to the engine property
// it is written to.
var ControlProperties = [ControlChannelCount]string{
	"controls/throttle",
	"controls/elevator",
	"controls/aileron",
	"controls/rudder",
	"controls/flaps",
	"controls/gear",
	"controls/mix",
	"controls/aileron-trim",
	"controls/elevator-trim",
	"controls/rudder-trim",
}
