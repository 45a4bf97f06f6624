package ports

// ModelPaths locates the vehicle and propulsion definitions an engine loads
// its model from. Engines without definition files may ignore them.
type ModelPaths struct {
	Aircraft string
	Engine   string
}

// Engine is the capability surface of a flight-dynamics model. Property
// names follow the engine's own namespace (for example "position/h-sl-ft")
// and values are in the engine's native units.
type Engine interface {
	// LoadModel loads the named vehicle and fixes the integration step. It is
	// called once before the first Run.
	LoadModel(name string, dt float64) error
	SetProperty(name string, v float64)
	GetProperty(name string) float64
	// Run advances the model by exactly one timestep.
	Run() error
}
