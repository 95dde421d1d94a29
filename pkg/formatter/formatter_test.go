package formatter_test

import (
	"testing"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/formatter"
	"github.com/thomasrohde/lox/pkg/parser"
	"github.com/thomasrohde/lox/pkg/token"
)

func mustParse(t *testing.T, source string) []ast.Stmt {
	t.Helper()
	stmts, diags := parser.Parse(source)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return stmts
}

func op(typ token.TokenType, lexeme string) token.Token {
	return token.Token{Type: typ, Lexeme: lexeme, Line: 1}
}

func num(v float64) *ast.Literal {
	return &ast.Literal{Value: v, Lineno: 1}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"empty", "", ""},
		{"arithmetic", "print 1+2*3;", "print 1 + 2 * 3;\n"},
		{"grouping kept", "var a=(1+2)*3;", "var a = (1 + 2) * 3;\n"},
		{"nested unary", "print -(-1);", "print -(-1);\n"},
		{"number canonical", "print 1.50;", "print 1.5;\n"},
		{"literals", `var s = "hi"; var n; print nil; print true;`, "var s = \"hi\";\nvar n;\nprint nil;\nprint true;\n"},
		{"assign chain", "a = b = c;", "a = b = c;\n"},
		{"logical", "print a or b and !c;", "print a or b and !c;\n"},
		{"call", "f(1,g(2),3)(4);", "f(1, g(2), 3)(4);\n"},
		{"empty function", "fun f() {}", "fun f() {}\n"},
		{"function", "fun add(a,b){return a+b;}", "fun add(a, b) {\n  return a + b;\n}\n"},
		{"bare return", "fun f(){return;}", "fun f() {\n  return;\n}\n"},
		{"if else statements", "if (x) print 1; else print 2;", "if (x)\n  print 1;\nelse\n  print 2;\n"},
		{
			"else if chain",
			"if (x) { print 1; } else if (y) { print 2; } else { print 3; }",
			"if (x) {\n  print 1;\n} else if (y) {\n  print 2;\n} else {\n  print 3;\n}\n",
		},
		{"while", "while (i < 3) { i = i + 1; }", "while (i < 3) {\n  i = i + 1;\n}\n"},
		{
			"for desugared",
			"for (var i = 0; i < 2; i = i + 1) print i;",
			"{\n  var i = 0;\n  while (i < 2) {\n    print i;\n    i = i + 1;\n  }\n}\n",
		},
		{"nested blocks", "{{}}", "{\n  {}\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatter.Format(mustParse(t, tt.source))
			if got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	sources := []string{
		"fun fib(n) { if (n < 2) return n; return fib(n - 1) + fib(n - 2); } print fib(10);",
		"fun mk() { var c = 0; fun inc() { c = c + 1; return c; } return inc; }",
		"for (var i = 0; i < 3; i = i + 1) { if (i == 1) print \"one\"; else print i; }",
		"var a = !(1 < 2) == (nil != false);",
		"while (true) { { var x; } }",
	}

	for _, src := range sources {
		first := formatter.Format(mustParse(t, src))
		second := formatter.Format(mustParse(t, first))
		if first != second {
			t.Errorf("format not stable for %q:\nfirst:\n%s\nsecond:\n%s", src, first, second)
		}
	}
}

func TestFormatAddsNeededParens(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want string
	}{
		{
			"looser left operand",
			&ast.Binary{
				Left:     &ast.Binary{Left: num(1), Operator: op(token.Plus, "+"), Right: num(2)},
				Operator: op(token.Star, "*"),
				Right:    num(3),
			},
			"(1 + 2) * 3;\n",
		},
		{
			"same level on the right",
			&ast.Binary{
				Left:     num(1),
				Operator: op(token.Minus, "-"),
				Right:    &ast.Binary{Left: num(2), Operator: op(token.Minus, "-"), Right: num(3)},
			},
			"1 - (2 - 3);\n",
		},
		{
			"unary of binary",
			&ast.Unary{
				Operator: op(token.Minus, "-"),
				Right:    &ast.Binary{Left: num(1), Operator: op(token.Plus, "+"), Right: num(2)},
			},
			"-(1 + 2);\n",
		},
		{
			"or inside and",
			&ast.Logical{
				Left:     &ast.Logical{Left: num(1), Operator: op(token.Or, "or"), Right: num(2)},
				Operator: op(token.And, "and"),
				Right:    num(3),
			},
			"(1 or 2) and 3;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatter.Format([]ast.Stmt{&ast.Expression{Expression: tt.expr}})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDanglingElse(t *testing.T) {
	stmt := &ast.If{
		Condition: &ast.Variable{Name: op(token.Identifier, "a")},
		Then: &ast.If{
			Condition: &ast.Variable{Name: op(token.Identifier, "b")},
			Then:      &ast.Print{Expression: num(1)},
		},
		Else: &ast.Print{Expression: num(2)},
	}
	got := formatter.Format([]ast.Stmt{stmt})
	want := "if (a) {\n  if (b)\n    print 1;\n} else\n  print 2;\n"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}

	reparsed := mustParse(t, got)
	outer := reparsed[0].(*ast.If)
	if outer.Else == nil {
		t.Error("re-parsed else should stay on the outer if")
	}
}

func TestSexprReservedNodes(t *testing.T) {
	obj := &ast.Variable{Name: op(token.Identifier, "a")}
	name := op(token.Identifier, "b")
	tests := []struct {
		expr ast.Expr
		want string
	}{
		{&ast.Get{Object: obj, Name: name}, "(get a b)"},
		{&ast.Set{Object: obj, Name: name, Value: num(1)}, "(set a b 1)"},
		{&ast.This{Keyword: op(token.This, "this")}, "this"},
		{&ast.Super{Keyword: op(token.Super, "super"), Method: name}, "(super b)"},
	}
	for _, tt := range tests {
		if got := formatter.Sexpr(tt.expr); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}

func TestSexprProgram(t *testing.T) {
	stmts := mustParse(t, "var a = 1;\nprint a + 2;")
	got := formatter.SexprProgram(stmts)
	want := "(var a 1)\n(print (+ a 2))"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHasComments(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"print 1;", false},
		{"print 1; // trailing", true},
		{"// leading\nprint 1;", true},
		{`print "http://example.com";`, false},
		{"print 4 / 2;", false},
		{`print "a"; // after "string"`, true},
	}
	for _, tt := range tests {
		if got := formatter.HasComments(tt.src); got != tt.want {
			t.Errorf("HasComments(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}
