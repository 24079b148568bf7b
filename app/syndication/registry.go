package syndication

import (
	"fmt"
	"strings"
	"sync"
)

// Factory returns a fresh extension instance with default field values.
type Factory func() Extension

// Registry maps extension namespaces to factories. Lookups also accept the
// canonical prefix of a registered extension.
type Registry struct {
	mu        sync.RWMutex
	order     []Descriptor
	factories map[string]Factory
	prefixes  map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		prefixes:  make(map[string]string),
	}
}

func (r *Registry) Register(factory Factory) error {
	if factory == nil {
		return fmt.Errorf("%w: factory", ErrNilArgument)
	}

	d := factory().Descriptor()
	if d.Namespace == "" || d.Prefix == "" {
		return fmt.Errorf("%w: extension prefix and namespace", ErrEmptyArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[d.Namespace]; exists {
		return fmt.Errorf("extension namespace %s already registered", d.Namespace)
	}
	prefix := strings.ToLower(d.Prefix)
	if ns, exists := r.prefixes[prefix]; exists {
		return fmt.Errorf("extension prefix %s already registered for %s", d.Prefix, ns)
	}

	r.factories[d.Namespace] = factory
	r.prefixes[prefix] = d.Namespace
	r.order = append(r.order, d)
	return nil
}

func (r *Registry) MustRegister(factories ...Factory) {
	for _, f := range factories {
		if err := r.Register(f); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Lookup(namespace string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[namespace]
	return f, ok
}

// Resolve maps a namespace URI or canonical prefix to a registered namespace.
func (r *Registry) Resolve(key string) (string, bool) {
	key = strings.TrimSpace(key)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.factories[key]; ok {
		return key, true
	}
	ns, ok := r.prefixes[strings.ToLower(key)]
	return ns, ok
}

// Descriptors returns registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
