package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Builder constructs an engine on first use.
type Builder func() *Engine

// UnsupportedEngineError reports a request for an engine type the registry
// does not know.
type UnsupportedEngineError struct {
	EngineType string
	Supported  []string
}

func (e *UnsupportedEngineError) Error() string {
	return fmt.Sprintf("unsupported engine type %q (supported: %s)",
		e.EngineType, strings.Join(e.Supported, ", "))
}

// Registry hands out engine instances by type. Engines are built lazily on
// first request and memoized; repeated lookups return the same instance.
// Construct one per run at the entry point and pass it down.
type Registry struct {
	mu       sync.Mutex
	builders map[string]Builder
	engines  map[string]*Engine
}

// NewRegistry creates a registry over the given engine builders.
func NewRegistry(builders map[string]Builder) *Registry {
	return &Registry{
		builders: builders,
		engines:  make(map[string]*Engine, len(builders)),
	}
}

// Get returns the engine for engineType, building it on first use.
// Unknown types yield an *UnsupportedEngineError.
func (r *Registry) Get(engineType string) (*Engine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if eng, ok := r.engines[engineType]; ok {
		return eng, nil
	}
	build, ok := r.builders[engineType]
	if !ok {
		return nil, &UnsupportedEngineError{
			EngineType: engineType,
			Supported:  r.typesLocked(),
		}
	}
	eng := build()
	r.engines[engineType] = eng
	return eng, nil
}

// IsSupported reports whether engineType is registered. It never builds an
// engine and always agrees with Get.
func (r *Registry) IsSupported(engineType string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.builders[engineType]
	return ok
}

// Types returns the registered engine types, sorted.
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.typesLocked()
}

func (r *Registry) typesLocked() []string {
	types := make([]string, 0, len(r.builders))
	for t := range r.builders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
