package workflow

import (
	"fmt"
	"log/slog"
	"sort"
)

// Module is implemented by packages that contribute workflows.
type Module interface {
	Register(r *Registry)
}

// Registry maps workflow names to their descriptors.
type Registry struct {
	all map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{all: make(map[string]Descriptor)}
}

// Register adds a descriptor. An invalid or duplicate descriptor is a
// programming error and panics.
func (r *Registry) Register(d Descriptor) {
	if err := d.Validate(); err != nil {
		panic(fmt.Sprintf("invalid workflow descriptor: %v", err))
	}
	if _, exists := r.all[d.Name]; exists {
		panic(fmt.Sprintf("workflow with name '%s' already registered", d.Name))
	}
	slog.Debug("Registering workflow.", "name", d.Name, "dependencies", len(d.DependencyList()))
	r.all[d.Name] = d
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.all[name]
	return d, ok
}

// Names returns the registered workflow names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.all))
	for name := range r.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered workflows.
func (r *Registry) Len() int {
	return len(r.all)
}
