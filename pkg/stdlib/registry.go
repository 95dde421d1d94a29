// Package stdlib provides the registry of host-native Lox functions.
package stdlib

import (
	"sort"
	"time"

	"github.com/thomasrohde/lox/pkg/evaluator"
)

// Fn represents a native function.
type Fn struct {
	Name    string
	Arity   int
	Execute func(args []evaluator.Value) (evaluator.Value, error)
}

// Registry holds registered native functions.
type Registry struct {
	fns map[string]*Fn
	now func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the time source used by clock.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a new empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		fns: make(map[string]*Fn),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a function to the registry, replacing any of the same name.
func (r *Registry) Register(fn Fn) {
	r.fns[fn.Name] = &fn
}

// Get retrieves a function by name.
func (r *Registry) Get(name string) *Fn {
	return r.fns[name]
}

// All returns all registered functions.
func (r *Registry) All() map[string]*Fn {
	return r.fns
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Install defines every registered function in env.
func (r *Registry) Install(env *evaluator.Environment) {
	for _, name := range r.Names() {
		fn := r.fns[name]
		env.Define(name, &evaluator.NativeFunction{
			FnName: fn.Name,
			ArityN: fn.Arity,
			Fn:     fn.Execute,
		})
	}
}
