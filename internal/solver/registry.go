package solver

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tverberg/ikconform/internal/robot"
)

// DefaultSearchDiscretization is the step width applied when a suite
// does not configure one.
const DefaultSearchDiscretization = 0.01

// Params carries everything a factory needs to construct a solver.
type Params struct {
	// Model is the compiled robot description.
	Model *robot.Model

	// Group names the joint group to solve for.
	Group string

	// BaseFrame names the frame poses are expressed in.
	BaseFrame string

	// TipFrame names the end-effector link.
	TipFrame string

	// SearchDiscretization is the step width for solvers that sweep
	// redundant joints during search. Solvers without redundant joints
	// ignore it.
	SearchDiscretization float64
}

// Factory constructs a solver instance from init parameters.
type Factory func(Params) (Solver, error)

// Registry maps plugin names to solver factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. It panics if f is nil or name is
// already registered; registration happens at init time where an error
// return has no caller to reach.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f == nil {
		panic("solver: Register factory is nil")
	}
	if _, dup := r.factories[name]; dup {
		panic(fmt.Sprintf("solver: Register called twice for plugin %q", name))
	}
	r.factories[name] = f
}

// Create constructs the named plugin. An unknown name yields a load error;
// factory failures are returned as the factory reported them.
func (r *Registry) Create(name string, p Params) (Solver, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, NewLoadError(name, "unknown solver plugin")
	}
	return f(p)
}

// Names returns all registered plugin names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry.
func Register(name string, f Factory) {
	defaultRegistry.Register(name, f)
}

// Create constructs a plugin from the default registry.
func Create(name string, p Params) (Solver, error) {
	return defaultRegistry.Create(name, p)
}

// Names lists the plugins in the default registry.
func Names() []string {
	return defaultRegistry.Names()
}
