package device

import (
	"fmt"
	"strings"
	"sync"
)

// Summary holds the I/O-free metadata the registry reports for a device.
type Summary struct {
	Brand      Brand      `json:"brand"`
	DeviceType DeviceType `json:"device_type"`
}

// Registry maps logical device names to adapter instances.
//
// Names are trimmed on every operation, so "  porch  " and "porch" address
// the same entry. The mapping is populated once at startup from configuration
// and mutated at runtime only through Register and Remove; nothing is
// persisted across restarts.
//
// All methods are safe for concurrent use: lookups take a read lock,
// mutations take the write lock.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Device
	logger  Logger
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{
		devices: make(map[string]Device),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Register inserts or overwrites the mapping for the trimmed name.
// Returns ErrValidation if the name is blank or the device is nil.
func (r *Registry) Register(name string, d Device) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: device name cannot be empty", ErrValidation)
	}
	if d == nil {
		return fmt.Errorf("%w: device cannot be nil", ErrValidation)
	}

	r.mu.Lock()
	r.devices[trimmed] = d
	r.mu.Unlock()

	r.logger.Info("device registered", "name", trimmed, "brand", d.BrandTag(), "type", d.DeviceTypeTag())
	return nil
}

// Get looks up a device by trimmed name. The second return reports whether
// the name was found; a missing device is not an error, so callers can build
// their own not-found response.
func (r *Registry) Get(name string) (Device, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, false
	}

	r.mu.RLock()
	d, ok := r.devices[trimmed]
	r.mu.RUnlock()
	return d, ok
}

// Has reports whether a device with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Remove deletes the entry for the trimmed name.
// Returns true if an entry existed and was deleted.
func (r *Registry) Remove(name string) bool {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return false
	}

	r.mu.Lock()
	_, ok := r.devices[trimmed]
	if ok {
		delete(r.devices, trimmed)
	}
	r.mu.Unlock()

	if ok {
		r.logger.Info("device removed", "name", trimmed)
	}
	return ok
}

// Names returns all registered device names in no particular order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	return names
}

// Summaries returns per-device metadata keyed by name. No device I/O is
// performed; only the metadata accessors are consulted.
func (r *Registry) Summaries() map[string]Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Summary, len(r.devices))
	for name, d := range r.devices {
		out[name] = Summary{
			Brand:      d.BrandTag(),
			DeviceType: d.DeviceTypeTag(),
		}
	}
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Clear empties the mapping. Intended for tests.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.devices = make(map[string]Device)
	r.mu.Unlock()
}
