package stdlib

import (
	"github.com/thomasrohde/lox/pkg/evaluator"
)

// RegisterDefaults adds the default bindings every program sees: clock.
func RegisterDefaults(r *Registry) {
	r.Register(Fn{Name: "clock", Arity: 0, Execute: r.clock})
}

// clock() → whole seconds since the Unix epoch
func (r *Registry) clock(args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewNumber(float64(r.now().Unix())), nil
}

// RegisterExtended adds the optional string and math helpers. Hosts enable
// them explicitly; they are not part of the default global scope.
func RegisterExtended(r *Registry) {
	// Values
	r.Register(Fn{Name: "str", Arity: 1, Execute: stdlibStr})
	r.Register(Fn{Name: "typeof", Arity: 1, Execute: stdlibTypeof})
	r.Register(Fn{Name: "num", Arity: 1, Execute: stdlibNum})

	// String ops
	r.Register(Fn{Name: "len", Arity: 1, Execute: stdlibLen})
	r.Register(Fn{Name: "contains", Arity: 2, Execute: stdlibContains})
	r.Register(Fn{Name: "startsWith", Arity: 2, Execute: stdlibStartsWith})
	r.Register(Fn{Name: "endsWith", Arity: 2, Execute: stdlibEndsWith})
	r.Register(Fn{Name: "replace", Arity: 3, Execute: stdlibReplace})

	// Math
	r.Register(Fn{Name: "max", Arity: 2, Execute: stdlibMax})
	r.Register(Fn{Name: "min", Arity: 2, Execute: stdlibMin})
	r.Register(Fn{Name: "floor", Arity: 1, Execute: stdlibFloor})
}

// str(v) → the printed form of v
func stdlibStr(args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(evaluator.Stringify(args[0])), nil
}

// typeof(v) → "nil" | "boolean" | "number" | "string" | "function" | "native function"
func stdlibTypeof(args []evaluator.Value) (evaluator.Value, error) {
	return evaluator.NewString(evaluator.TypeName(args[0])), nil
}
