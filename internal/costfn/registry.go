package costfn

import (
	"fmt"
	"sync"
)

// Func computes the cost of outputs against labels and the gradient of
// that cost with respect to each output.
type Func func(outputs, labels []float64) (cost float64, grad []float64)

// Registry holds one implementation per Kind.
type Registry struct {
	mu  sync.RWMutex
	fns map[Kind]Func
}

func NewRegistry() *Registry {
	return &Registry{fns: make(map[Kind]Func)}
}

// Register attaches fn to kind. Registering a kind twice is an error.
func (r *Registry) Register(kind Kind, fn Func) error {
	if _, ok := kindNames[kind]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknown, int(kind))
	}
	if fn == nil {
		return fmt.Errorf("nil implementation for %s", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fns[kind]; ok {
		return fmt.Errorf("%s is already registered", kind)
	}
	r.fns[kind] = fn
	return nil
}

// Lookup returns the implementation registered for kind.
func (r *Registry) Lookup(kind Kind) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.fns[kind]
	if !ok {
		return nil, fmt.Errorf("no implementation registered for %s", kind)
	}
	return fn, nil
}

// Registered lists the kinds that have an implementation.
func (r *Registry) Registered() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Kind
	for _, k := range Kinds() {
		if _, ok := r.fns[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

var defaultRegistry = NewRegistry()

// Register adds fn to the package registry. Cost modules call it from
// their init functions.
func Register(kind Kind, fn Func) error { return defaultRegistry.Register(kind, fn) }

// Lookup reads from the package registry.
func Lookup(kind Kind) (Func, error) { return defaultRegistry.Lookup(kind) }

// Default returns the package registry.
func Default() *Registry { return defaultRegistry }
