package evaluator

import (
	"fmt"
	"sort"

	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/token"
)

// Environment is one frame of variable bindings. Lookups walk the parent
// chain outward; the parent is fixed when the frame is created. Frames are
// shared by pointer, so a frame captured by a closure stays alive for as
// long as the closure does.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment creates a frame with an optional enclosing frame.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent returns the enclosing frame, or nil for the global frame.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Define binds name in this frame, replacing any existing binding.
func (e *Environment) Define(name string, val Value) {
	e.values[name] = val
}

// Get resolves name in the nearest frame that binds it.
func (e *Environment) Get(name token.Token) (Value, error) {
	if val, ok := e.Lookup(name.Lexeme); ok {
		return val, nil
	}
	return nil, undefined(name)
}

// Assign rebinds name in the nearest frame that binds it. It never creates
// a binding.
func (e *Environment) Assign(name token.Token, val Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name.Lexeme]; ok {
			env.values[name.Lexeme] = val
			return nil
		}
	}
	return undefined(name)
}

// Lookup is Get by plain name, for hosts that have no token at hand.
func (e *Environment) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.values[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Names returns the names bound directly in this frame, sorted.
func (e *Environment) Names() []string {
	names := make([]string, 0, len(e.values))
	for name := range e.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func undefined(name token.Token) *RuntimeError {
	return &RuntimeError{
		Code:    diagnostics.EUndefined,
		Message: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme),
		Token:   name,
	}
}
