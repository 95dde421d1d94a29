package evaluator_test

import (
	"errors"
	"math"
	"testing"

	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/token"
)

func TestNewValues(t *testing.T) {
	values := []evaluator.Value{
		evaluator.NewNil(),
		evaluator.NewBool(true),
		evaluator.NewBool(false),
		evaluator.NewNumber(42),
		evaluator.NewNumber(3.14),
		evaluator.NewString("hello"),
	}

	for i, v := range values {
		if v == nil {
			t.Errorf("value %d: got nil", i)
		}
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value    evaluator.Value
		expected bool
	}{
		{evaluator.NewNil(), false},
		{evaluator.NewBool(false), false},
		{evaluator.NewBool(true), true},
		{evaluator.NewNumber(0), true},
		{evaluator.NewNumber(-1), true},
		{evaluator.NewString(""), true},
		{evaluator.NewString("hello"), true},
		{&evaluator.NativeFunction{FnName: "f"}, true},
	}

	for i, tt := range tests {
		if got := evaluator.Truthy(tt.value); got != tt.expected {
			t.Errorf("test %d: Truthy(%v) = %v, want %v", i, tt.value, got, tt.expected)
		}
	}
}

func TestEqual(t *testing.T) {
	fn := &evaluator.NativeFunction{FnName: "f"}
	other := &evaluator.NativeFunction{FnName: "f"}
	nan := evaluator.NewNumber(math.NaN())

	tests := []struct {
		name string
		a, b evaluator.Value
		want bool
	}{
		{"nil nil", evaluator.NewNil(), evaluator.NewNil(), true},
		{"nil false", evaluator.NewNil(), evaluator.NewBool(false), false},
		{"bools", evaluator.NewBool(true), evaluator.NewBool(true), true},
		{"numbers", evaluator.NewNumber(1), evaluator.NewNumber(1), true},
		{"different numbers", evaluator.NewNumber(1), evaluator.NewNumber(2), false},
		{"nan", nan, nan, false},
		{"strings", evaluator.NewString("a"), evaluator.NewString("a"), true},
		{"no coercion", evaluator.NewNumber(1), evaluator.NewString("1"), false},
		{"zero and false", evaluator.NewNumber(0), evaluator.NewBool(false), false},
		{"same callable", fn, fn, true},
		{"distinct callables", fn, other, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluator.Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.NewNil(), "nil"},
		{evaluator.NewBool(true), "true"},
		{evaluator.NewBool(false), "false"},
		{evaluator.NewNumber(2), "2"},
		{evaluator.NewNumber(-3), "-3"},
		{evaluator.NewNumber(2.5), "2.5"},
		{evaluator.NewNumber(0.1 + 0.2), "0.30000000000000004"},
		{evaluator.NewNumber(1e21), "1000000000000000000000"},
		{evaluator.NewNumber(math.Inf(1)), "Infinity"},
		{evaluator.NewNumber(math.Inf(-1)), "-Infinity"},
		{evaluator.NewNumber(math.NaN()), "NaN"},
		{evaluator.NewString("raw text"), "raw text"},
		{&evaluator.NativeFunction{FnName: "clock"}, "<native fn>"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := evaluator.Stringify(tt.value); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.NewNil(), "nil"},
		{evaluator.NewBool(true), "boolean"},
		{evaluator.NewNumber(1), "number"},
		{evaluator.NewString(""), "string"},
		{&evaluator.NativeFunction{}, "native function"},
	}
	for _, tt := range tests {
		if got := evaluator.TypeName(tt.value); got != tt.want {
			t.Errorf("TypeName(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFromLiteral(t *testing.T) {
	if _, ok := evaluator.FromLiteral(nil).(evaluator.Nil); !ok {
		t.Error("nil literal should become Nil")
	}
	if v := evaluator.FromLiteral(1.5); v != evaluator.NewNumber(1.5) {
		t.Errorf("got %v", v)
	}
	if v := evaluator.FromLiteral("s"); v != evaluator.NewString("s") {
		t.Errorf("got %v", v)
	}
	if v := evaluator.FromLiteral(true); v != evaluator.NewBool(true) {
		t.Errorf("got %v", v)
	}
}

// ---- Environment ----

func ident(name string) token.Token {
	return token.Token{Type: token.Identifier, Lexeme: name, Line: 7}
}

func TestEnvironmentLookupWalksParents(t *testing.T) {
	global := evaluator.NewEnvironment(nil)
	global.Define("a", evaluator.NewNumber(1))
	inner := evaluator.NewEnvironment(global)
	inner.Define("b", evaluator.NewNumber(2))

	if inner.Parent() != global {
		t.Error("Parent should return the enclosing frame")
	}
	if v, err := inner.Get(ident("a")); err != nil || v != evaluator.NewNumber(1) {
		t.Errorf("Get(a) = %v, %v", v, err)
	}
	if _, ok := global.Lookup("b"); ok {
		t.Error("outer frame must not see inner bindings")
	}
}

func TestEnvironmentShadowAndAssign(t *testing.T) {
	global := evaluator.NewEnvironment(nil)
	global.Define("a", evaluator.NewString("outer"))
	inner := evaluator.NewEnvironment(global)
	inner.Define("a", evaluator.NewString("inner"))

	if err := inner.Assign(ident("a"), evaluator.NewString("changed")); err != nil {
		t.Fatal(err)
	}
	if v, _ := global.Lookup("a"); v != evaluator.NewString("outer") {
		t.Errorf("assignment should hit the nearest binding, outer is now %v", v)
	}

	other := evaluator.NewEnvironment(global)
	if err := other.Assign(ident("a"), evaluator.NewString("via child")); err != nil {
		t.Fatal(err)
	}
	if v, _ := global.Lookup("a"); v != evaluator.NewString("via child") {
		t.Errorf("assignment should update the enclosing frame, got %v", v)
	}
	if len(other.Names()) != 0 {
		t.Error("assign must not create a binding in the inner frame")
	}
}

func TestEnvironmentUndefined(t *testing.T) {
	env := evaluator.NewEnvironment(nil)

	_, err := env.Get(ident("missing"))
	var rtErr *evaluator.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError, got %v", err)
	}
	if rtErr.Code != diagnostics.EUndefined || rtErr.Message != "Undefined variable 'missing'." {
		t.Errorf("got %s %q", rtErr.Code, rtErr.Message)
	}
	if rtErr.Token.Line != 7 {
		t.Errorf("error should carry the token line, got %d", rtErr.Token.Line)
	}

	if err := env.Assign(ident("missing"), evaluator.NewNil()); !errors.As(err, &rtErr) {
		t.Fatalf("expected *RuntimeError from Assign, got %v", err)
	}
	if _, ok := env.Lookup("missing"); ok {
		t.Error("failed assign must not define the variable")
	}
}

func TestEnvironmentNamesSorted(t *testing.T) {
	env := evaluator.NewEnvironment(nil)
	env.Define("zeta", evaluator.NewNil())
	env.Define("alpha", evaluator.NewNil())
	env.Define("mid", evaluator.NewNil())
	env.Define("alpha", evaluator.NewNumber(1))

	names := env.Names()
	want := []string{"alpha", "mid", "zeta"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("got %v, want %v", names, want)
			break
		}
	}
}

// ---- JSON ----

func TestValueToJSON(t *testing.T) {
	tests := []struct {
		value evaluator.Value
		want  string
	}{
		{evaluator.NewNil(), "null"},
		{evaluator.NewBool(true), "true"},
		{evaluator.NewNumber(3), "3"},
		{evaluator.NewNumber(2.5), "2.5"},
		{evaluator.NewNumber(math.Inf(1)), `"Infinity"`},
		{evaluator.NewString("hi"), `"hi"`},
		{&evaluator.NativeFunction{FnName: "clock"}, `"<native fn>"`},
	}
	for _, tt := range tests {
		if got := evaluator.ValueToJSONString(tt.value); got != tt.want {
			t.Errorf("ValueToJSONString(%v) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestEnvironmentToJSON(t *testing.T) {
	env := evaluator.NewEnvironment(nil)
	env.Define("b", evaluator.NewString("x"))
	env.Define("a", evaluator.NewNumber(1))

	got, err := evaluator.EnvironmentToJSON(env)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"a":1,"b":"x"}` {
		t.Errorf("got %s", got)
	}

	empty, err := evaluator.EnvironmentToJSON(evaluator.NewEnvironment(nil))
	if err != nil {
		t.Fatal(err)
	}
	if string(empty) != "{}" {
		t.Errorf("got %s", empty)
	}
}
