package parser

import (
	"fmt"
	"strings"
)

// Registry holds extraction backends in a fixed registration order.
// The order is the order used by comparison mode.
type Registry struct {
	backends []Backend
}

// NewRegistry returns a registry with the built-in backends: Plain, Rows, Stream.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, b := range []Backend{&PlainBackend{}, &RowsBackend{}, &StreamBackend{}} {
		r.Register(b)
	}
	return r
}

// Register appends b. A backend with the same name is replaced in place so
// the registration order is kept.
func (r *Registry) Register(b Backend) {
	for i, existing := range r.backends {
		if strings.EqualFold(existing.Name(), b.Name()) {
			r.backends[i] = b
			return
		}
	}
	r.backends = append(r.backends, b)
}

// Get looks up a backend by name, ignoring case.
func (r *Registry) Get(name string) (Backend, error) {
	for _, b := range r.backends {
		if strings.EqualFold(b.Name(), name) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no backend named %q", name)
}

// Backends returns the registered backends in registration order.
func (r *Registry) Backends() []Backend {
	out := make([]Backend, len(r.backends))
	copy(out, r.backends)
	return out
}

// Names returns the backend names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}
