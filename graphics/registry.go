package graphics

import (
	"sort"
	"sync"

	"github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/xr"
)

// Factory creates an adapter bound to a runtime.
type Factory func(rt xr.Runtime) (Adapter, error)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register registers an adapter factory under a rendering driver name.
// A name that is already registered is rejected; Unregister it first to
// replace the factory.
func Register(driver string, factory Factory) error {
	if driver == "" || factory == nil {
		return errors.InvalidInput(errors.PhaseRegistry, "graphics driver needs a name and a factory")
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := factories[driver]; ok {
		return errors.New(errors.PhaseRegistry, errors.KindAlreadyInitialized).
			Value(driver).
			Detail("graphics driver %q already registered", driver).
			Build()
	}
	factories[driver] = factory
	return nil
}

// MustRegister is Register for init() functions in adapter packages. It
// panics on a duplicate name.
func MustRegister(driver string, factory Factory) {
	if err := Register(driver, factory); err != nil {
		panic(err)
	}
}

// Unregister removes a driver from the registry.
func Unregister(driver string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, driver)
}

// Available returns the registered driver names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver with the given name is registered.
func IsRegistered(driver string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[driver]
	return ok
}

// New creates the adapter registered for driver.
func New(driver string, rt xr.Runtime) (Adapter, error) {
	registryMu.RLock()
	factory, ok := factories[driver]
	registryMu.RUnlock()

	if !ok {
		return nil, errors.New(errors.PhaseGraphics, errors.KindNotFound).
			Value(driver).
			Detail("no graphics adapter for rendering driver %q (available: %v)", driver, Available()).
			Build()
	}
	adapter, err := factory(rt)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseGraphics, errors.KindUnsupported, err, "create "+driver+" adapter")
	}
	return adapter, nil
}
