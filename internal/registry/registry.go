package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds registered service factories keyed by module name and
// attribute name. The zero value is not usable; call NewRegistry.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]map[string]Factory),
	}
}

// Default is the process-wide registry that services register into from
// their init() functions.
var Default = NewRegistry()

// Register adds a service factory under module/attribute.
// Panics if the same pair is already registered.
func (r *Registry) Register(module, attribute string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		panic(fmt.Sprintf("registry: nil factory for %s:%s", module, attribute))
	}

	attrs, ok := r.modules[module]
	if !ok {
		attrs = make(map[string]Factory)
		r.modules[module] = attrs
	}
	if _, exists := attrs[attribute]; exists {
		panic(fmt.Sprintf("registry: service %s:%s already registered", module, attribute))
	}
	attrs[attribute] = factory
}

// Lookup returns the factory registered under module/attribute.
// The two error cases are distinguished so callers can report whether the
// module itself or only the attribute is unknown.
func (r *Registry) Lookup(module, attribute string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attrs, ok := r.modules[module]
	if !ok {
		return nil, &NotFoundError{
			Module:  module,
			Known:   r.moduleNamesLocked(),
			Missing: MissingModule,
		}
	}
	factory, ok := attrs[attribute]
	if !ok {
		return nil, &NotFoundError{
			Module:    module,
			Attribute: attribute,
			Known:     attributeNamesLocked(attrs),
			Missing:   MissingAttribute,
		}
	}
	return factory, nil
}

// Modules returns all registered module names in sorted order.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moduleNamesLocked()
}

// Attributes returns the attribute names registered under module, sorted.
// Returns nil if the module is unknown.
func (r *Registry) Attributes(module string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	attrs, ok := r.modules[module]
	if !ok {
		return nil
	}
	return attributeNamesLocked(attrs)
}

// IsRegistered checks whether module/attribute has a factory.
func (r *Registry) IsRegistered(module, attribute string) bool {
	_, err := r.Lookup(module, attribute)
	return err == nil
}

func (r *Registry) moduleNamesLocked() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func attributeNamesLocked(attrs map[string]Factory) []string {
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a service factory to the default registry.
func Register(module, attribute string, factory Factory) {
	Default.Register(module, attribute, factory)
}

// Lookup resolves module/attribute against the default registry.
func Lookup(module, attribute string) (Factory, error) {
	return Default.Lookup(module, attribute)
}

// MissingKind identifies which half of a service reference failed to resolve.
type MissingKind string

const (
	MissingModule    MissingKind = "module"
	MissingAttribute MissingKind = "attribute"
)

// NotFoundError reports a failed registry lookup.
type NotFoundError struct {
	Module    string
	Attribute string
	Known     []string
	Missing   MissingKind
}

func (e *NotFoundError) Error() string {
	switch e.Missing {
	case MissingModule:
		return fmt.Sprintf("registry: module %q not registered (available: %v)", e.Module, e.Known)
	default:
		return fmt.Sprintf("registry: module %q has no attribute %q (available: %v)", e.Module, e.Attribute, e.Known)
	}
}
