package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ghalamif/FlightBridge/internal/ports"
)

// ErrUnknownEngine is returned by New for names nothing registered.
var ErrUnknownEngine = errors.New("engine: unknown engine")

// Factory builds a fresh, unloaded engine that reads its definitions from
// paths.
type Factory func(paths ports.ModelPaths) ports.Engine

var (
	mu        sync.RWMutex
	factories = map[string]Factory{
		KinematicName: func(paths ports.ModelPaths) ports.Engine { return NewKinematic(paths) },
	}
)

// Register makes an engine available to New under name. Registering the same
// name twice replaces the earlier factory.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = f
}

// New builds the engine registered under name.
func New(name string, paths ports.ModelPaths) (ports.Engine, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownEngine, name, Names())
	}
	return f(paths), nil
}

// Names lists registered engines in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for name := range factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
