package stdlib_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/parser"
	"github.com/thomasrohde/lox/pkg/stdlib"
)

var fixed = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRegistry(extended bool) *stdlib.Registry {
	reg := stdlib.NewRegistry(stdlib.WithClock(func() time.Time { return fixed }))
	stdlib.RegisterDefaults(reg)
	if extended {
		stdlib.RegisterExtended(reg)
	}
	return reg
}

// run executes src with the registry installed in the global frame.
func run(t *testing.T, reg *stdlib.Registry, src string) (string, error) {
	t.Helper()
	stmts, diags := parser.Parse(src)
	if len(diags) > 0 {
		t.Fatalf("parse errors: %v", diags)
	}
	globals := evaluator.NewEnvironment(nil)
	reg.Install(globals)

	var out bytes.Buffer
	in := evaluator.New(evaluator.Options{Out: &out, Globals: globals})
	err := in.Interpret(context.Background(), stmts)
	return out.String(), err
}

func TestDefaultsAreClockOnly(t *testing.T) {
	names := newRegistry(false).Names()
	if len(names) != 1 || names[0] != "clock" {
		t.Errorf("got %v, want [clock]", names)
	}
}

func TestClock(t *testing.T) {
	reg := newRegistry(false)
	fn := reg.Get("clock")
	if fn == nil {
		t.Fatal("clock not registered")
	}
	if fn.Arity != 0 {
		t.Errorf("got arity %d, want 0", fn.Arity)
	}

	out, err := run(t, reg, "print clock(); print clock;")
	if err != nil {
		t.Fatal(err)
	}
	if out != "1709294400\n<native fn>\n" {
		t.Errorf("got %q", out)
	}
}

func TestClockUsesWallTime(t *testing.T) {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)
	v, err := reg.Get("clock").Execute(nil)
	if err != nil {
		t.Fatal(err)
	}
	n := v.(evaluator.Number).Value
	now := float64(time.Now().Unix())
	if n < now-5 || n > now+5 {
		t.Errorf("clock() = %v, expected near %v", n, now)
	}
	if n != float64(int64(n)) {
		t.Errorf("clock() should be whole seconds, got %v", n)
	}
}

func TestInstallDefinesGlobals(t *testing.T) {
	reg := newRegistry(true)
	env := evaluator.NewEnvironment(nil)
	reg.Install(env)

	names := env.Names()
	if len(names) != len(reg.Names()) {
		t.Fatalf("got %v, want %v", names, reg.Names())
	}
	v, ok := env.Lookup("len")
	if !ok {
		t.Fatal("len not installed")
	}
	if fn := v.(evaluator.Callable); fn.Arity() != 1 || fn.Name() != "len" {
		t.Errorf("got %s/%d", fn.Name(), fn.Arity())
	}
}

func TestExtendedNatives(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print len("héllo");`, "5"},
		{`print str(1.5) + "!";`, "1.5!"},
		{`print str(nil);`, "nil"},
		{`print typeof(1);`, "number"},
		{`print typeof("s");`, "string"},
		{`print typeof(clock);`, "native function"},
		{`fun f() {} print typeof(f);`, "function"},
		{`print num("42") + 1;`, "43"},
		{`print num("nope");`, "nil"},
		{`print contains("haystack", "st");`, "true"},
		{`print startsWith("lox", "lo");`, "true"},
		{`print endsWith("lox", "lo");`, "false"},
		{`print replace("a-b-c", "-", "+");`, "a+b+c"},
		{`print max(1, 2);`, "2"},
		{`print min(1, 2);`, "1"},
		{`print floor(2.7);`, "2"},
	}

	reg := newRegistry(true)
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out, err := run(t, reg, tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out != tt.want+"\n" {
				t.Errorf("got %q, want %q", out, tt.want+"\n")
			}
		})
	}
}

func TestExtendedNativeErrors(t *testing.T) {
	tests := []struct {
		src     string
		message string
	}{
		{"len(1);", "len: argument 1 must be a string"},
		{`contains("a", 1);`, "contains: argument 2 must be a string"},
		{`max(1, "2");`, "max: argument 2 must be a number"},
	}

	reg := newRegistry(true)
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := run(t, reg, tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.message {
				t.Errorf("got %q, want %q", err.Error(), tt.message)
			}
		})
	}
}

func TestExtendedNotInstalledByDefault(t *testing.T) {
	_, err := run(t, newRegistry(false), `print len("x");`)
	if err == nil || err.Error() != "Undefined variable 'len'." {
		t.Errorf("got %v", err)
	}
}
