package domain

// StateSnapshot is the telemetry captured from the engine after a tick, in SI
// units. It lives for one tick only.
type StateSnapshot struct {
	Latitude  float64 `json:"lat"` // rad
	Longitude float64 `json:"lon"` // rad
	Altitude  float64 `json:"alt"` // m above sea level

	Roll  float64 `json:"phi"`   // rad
	Pitch float64 `json:"theta"` // rad
	Yaw   float64 `json:"psi"`   // rad

	U float64 `json:"u"` // body-axis velocity, m/s
	V float64 `json:"v"`
	W float64 `json:"w"`

	P float64 `json:"p"` // body-axis rates, rad/s
	Q float64 `json:"q"`
	R float64 `json:"r"`

	CalibratedAirspeed float64 `json:"vc"` // m/s
	Mach               float64 `json:"mach"`
	Alpha              float64 `json:"alpha"` // rad
	Beta               float64 `json:"beta"`  // rad

	SimTime float64 `json:"sim_time"` // s
}

// StateFieldCount is the number of fields in an encoded snapshot. Altitude
// appears twice on the wire (index 2 and index 12).
const StateFieldCount = 18

// Fields returns the snapshot in wire order.
func (s StateSnapshot) Fields() [StateFieldCount]float64 {
	return [StateFieldCount]float64{
		s.Latitude, s.Longitude, s.Altitude,
		s.Roll, s.Pitch, s.Yaw,
		s.U, s.V, s.W,
		s.P, s.Q, s.R,
		s.Altitude, s.CalibratedAirspeed, s.Mach, s.Alpha, s.Beta,
		s.SimTime,
	}
}

// SnapshotFromFields is the inverse of Fields. The repeated altitude at
// index 12 is ignored.
func SnapshotFromFields(f [StateFieldCount]float64) StateSnapshot {
	return StateSnapshot{
		Latitude: f[0], Longitude: f[1], Altitude: f[2],
		Roll: f[3], Pitch: f[4], Yaw: f[5],
		U: f[6], V: f[7], W: f[8],
		P: f[9], Q: f[10], R: f[11],
		CalibratedAirspeed: f[13], Mach: f[14], Alpha: f[15], Beta: f[16],
		SimTime: f[17],
	}
}
