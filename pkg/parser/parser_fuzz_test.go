package parser_test

import (
	"testing"

	"github.com/thomasrohde/lox/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; invalid input must come back as diagnostics.
func FuzzParse(f *testing.F) {
	seeds := []string{
		// Minimal programs
		`print 1;`,
		`var x = 42; print x;`,
		// Blocks and scope
		`{ var a = 1; { var a = 2; print a; } print a; }`,
		// Control flow
		`if (true) print 1; else print 2;`,
		`while (false) print 1;`,
		`for (var i = 0; i < 3; i = i + 1) print i;`,
		`for (;;) {}`,
		// Functions and closures
		`fun add(a, b) { return a + b; } print add(1, 2);`,
		`fun mk() { var n = 0; fun inc() { n = n + 1; return n; } return inc; }`,
		`f(1)(2)(3);`,
		// Logic and precedence
		`print !nil or 1 and -2 * (3 + 4) / 5 >= 6 == false;`,
		// Errors
		`var = 1;`,
		`print ;`,
		`{ print 1;`,
		`1 = 2;`,
		`return;`,
		`fun (`,
		`for (`,
		`if (`,
		`(((((`,
		`))))`,
		`class A { m() {} }`,
		`a.b.c = 1;`,
		`"unterminated`,
		``,
		`;;;`,
		"\x00",
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Parse panicked on input %q: %v", input, r)
				}
			}()
			stmts, diags := parser.Parse(input)
			if len(diags) == 0 && stmts == nil {
				t.Fatalf("Parse of %q returned neither statements nor diagnostics", input)
			}
			if len(diags) > 0 && stmts != nil {
				t.Fatalf("Parse of %q returned statements alongside diagnostics", input)
			}
		}()
	})
}
