package ports

import "time"

const (
	PacingFixed          = "fixed"
	PacingDriftCorrected = "drift_corrected"
)

// Policy controls the tick cadence of the bridge loop.
type Policy struct {
	Timestep time.Duration
	Pacing   string // "fixed", "drift_corrected"
}

// Sleep returns how long to wait after a tick that took elapsed. Fixed
// pacing always waits a full timestep.
func (p Policy) Sleep(elapsed time.Duration) time.Duration {
	if p.Pacing != PacingDriftCorrected {
		return p.Timestep
	}
	if remaining := p.Timestep - elapsed; remaining > 0 {
		return remaining
	}
	return 0
}
