// Package evaluator implements the Lox tree-walking interpreter.
package evaluator

import (
	"math"
	"strconv"
)

// Value is the interface for all Lox runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	loxValue() // sealed marker
}

// Nil is the single nil value.
type Nil struct{}

func (Nil) loxValue() {}

// Bool represents true or false.
type Bool struct {
	Value bool
}

func (Bool) loxValue() {}

// Number is an IEEE-754 double.
type Number struct {
	Value float64
}

func (Number) loxValue() {}

// String is an immutable text value.
type String struct {
	Value string
}

func (String) loxValue() {}

// NewNil creates the nil value.
func NewNil() Value {
	return Nil{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewNumber creates a numeric value.
func NewNumber(n float64) Value {
	return Number{Value: n}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// FromLiteral converts a decoded token literal (nil, bool, float64, string)
// into a runtime value.
func FromLiteral(lit any) Value {
	switch v := lit.(type) {
	case bool:
		return Bool{Value: v}
	case float64:
		return Number{Value: v}
	case string:
		return String{Value: v}
	}
	return Nil{}
}

// Truthy returns the boolean interpretation of a value.
// nil and false are falsy; everything else, including 0 and "", is truthy.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, Nil:
		return false
	case Bool:
		return val.Value
	default:
		return true
	}
}

// Equal compares two values without coercion. Values of different kinds are
// never equal; callables compare by identity.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av.Value == bv.Value
	case Number:
		bv, ok := b.(Number)
		return ok && av.Value == bv.Value
	case String:
		bv, ok := b.(String)
		return ok && av.Value == bv.Value
	case Callable:
		bv, ok := b.(Callable)
		return ok && av == bv
	}
	return false
}

// Stringify renders a value the way print shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return strconv.FormatBool(val.Value)
	case Number:
		return FormatNumber(val.Value)
	case String:
		return val.Value
	case *NativeFunction:
		return "<native fn>"
	case Callable:
		return "<fn " + val.Name() + ">"
	}
	return "?"
}

// FormatNumber renders a number in its shortest round-tripping decimal
// form; whole numbers have no fractional part.
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// TypeName returns a short name for the kind of v.
func TypeName(v Value) string {
	switch v.(type) {
	case nil, Nil:
		return "nil"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case *NativeFunction:
		return "native function"
	case Callable:
		return "function"
	}
	return "unknown"
}
