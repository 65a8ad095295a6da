package configurator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
)

var (
	ErrDuplicate   = errors.New("configurator already registered")
	ErrSealed      = errors.New("registry is sealed")
	ErrInvalidName = errors.New("invalid configurator name")
	ErrNilHandler  = errors.New("nil handler")
)

// Handler configures the project described by req. It may enable facets, set
// the module slot, or seed other state reachable from the request.
type Handler func(ctx context.Context, req *Request) error

type registration struct {
	handler Handler
	desc    Descriptor
}

// Registry is an append-only, ordered set of configurators.
type Registry struct {
	names   map[string]struct{}
	entries []registration
	mu      sync.RWMutex
	sealed  bool
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{names: map[string]struct{}{}}
}

// Register appends a configurator and returns its descriptor with the
// registration index set.
func (r *Registry) Register(desc Descriptor, h Handler) (Descriptor, error) {
	if desc.Name == "" {
		return desc, ErrInvalidName
	}
	if h == nil {
		return desc, fmt.Errorf("%w: %s", ErrNilHandler, desc.Name)
	}
	if desc.Context != ContextPrimary && desc.Context != ContextBackground {
		return desc, fmt.Errorf("configurator %s: unknown context %s", desc.Name, desc.Context)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return desc, fmt.Errorf("%w: %s", ErrSealed, desc.Name)
	}
	if _, ok := r.names[desc.Name]; ok {
		return desc, fmt.Errorf("%w: %s", ErrDuplicate, desc.Name)
	}

	desc.Index = len(r.entries)
	r.names[desc.Name] = struct{}{}
	r.entries = append(r.entries, registration{desc: desc, handler: h})

	return desc, nil
}

// MustRegister is like [Registry.Register] but panics on error.
func (r *Registry) MustRegister(desc Descriptor, h Handler) Descriptor {
	d, err := r.Register(desc, h)
	if err != nil {
		panic(err)
	}

	return d
}

// All returns the registered configurators in registration order. Each
// iteration observes the registrations made before it started.
func (r *Registry) All() iter.Seq2[Descriptor, Handler] {
	return func(yield func(Descriptor, Handler) bool) {
		r.mu.RLock()
		entries := r.entries[:len(r.entries):len(r.entries)]
		r.mu.RUnlock()

		for _, e := range entries {
			if !yield(e.desc, e.handler) {
				return
			}
		}
	}
}

// Len returns the number of registered configurators.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Seal refuses further registrations.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sealed = true
}
