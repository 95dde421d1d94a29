package formatter

import (
	"strings"

	"github.com/thomasrohde/lox/pkg/ast"
)

// Sexpr renders an expression in fully parenthesized prefix form, for
// example (+ 1 (group (* 2 3))).
func Sexpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value)
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Grouping:
		return parenthesize("group", expr.Expression)
	case *ast.Assign:
		return "(= " + expr.Name.Lexeme + " " + Sexpr(expr.Value) + ")"
	case *ast.Binary:
		return parenthesize(expr.Operator.Lexeme, expr.Left, expr.Right)
	case *ast.Logical:
		return parenthesize(expr.Operator.Lexeme, expr.Left, expr.Right)
	case *ast.Unary:
		return parenthesize(expr.Operator.Lexeme, expr.Right)
	case *ast.Call:
		return parenthesize("call", append([]ast.Expr{expr.Callee}, expr.Arguments...)...)
	case *ast.Get:
		return "(get " + Sexpr(expr.Object) + " " + expr.Name.Lexeme + ")"
	case *ast.Set:
		return "(set " + Sexpr(expr.Object) + " " + expr.Name.Lexeme + " " + Sexpr(expr.Value) + ")"
	case *ast.This:
		return "this"
	case *ast.Super:
		return "(super " + expr.Method.Lexeme + ")"
	}
	return ""
}

// SexprProgram renders each statement on its own line.
func SexprProgram(stmts []ast.Stmt) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = sexprStmt(s)
	}
	return strings.Join(lines, "\n")
}

func sexprStmt(s ast.Stmt) string {
	switch stmt := s.(type) {
	case *ast.Block:
		return "(block" + sexprStmts(stmt.Statements) + ")"
	case *ast.Expression:
		return "(; " + Sexpr(stmt.Expression) + ")"
	case *ast.Print:
		return "(print " + Sexpr(stmt.Expression) + ")"
	case *ast.Var:
		if stmt.Initializer == nil {
			return "(var " + stmt.Name.Lexeme + ")"
		}
		return "(var " + stmt.Name.Lexeme + " " + Sexpr(stmt.Initializer) + ")"
	case *ast.Return:
		if stmt.Value == nil {
			return "(return)"
		}
		return "(return " + Sexpr(stmt.Value) + ")"
	case *ast.Function:
		return sexprFunction(stmt)
	case *ast.If:
		if stmt.Else == nil {
			return "(if " + Sexpr(stmt.Condition) + " " + sexprStmt(stmt.Then) + ")"
		}
		return "(if-else " + Sexpr(stmt.Condition) + " " + sexprStmt(stmt.Then) + " " + sexprStmt(stmt.Else) + ")"
	case *ast.While:
		return "(while " + Sexpr(stmt.Condition) + " " + sexprStmt(stmt.Body) + ")"
	case *ast.Class:
		out := "(class " + stmt.Name.Lexeme
		if stmt.Superclass != nil {
			out += " < " + stmt.Superclass.Name.Lexeme
		}
		for _, m := range stmt.Methods {
			out += " " + sexprFunction(m)
		}
		return out + ")"
	}
	return ""
}

func sexprFunction(fn *ast.Function) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Lexeme
	}
	return "(fun " + fn.Name.Lexeme + " (" + strings.Join(params, " ") + ")" + sexprStmts(fn.Body) + ")"
}

func sexprStmts(stmts []ast.Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(" ")
		b.WriteString(sexprStmt(s))
	}
	return b.String()
}

func parenthesize(name string, exprs ...ast.Expr) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	for _, e := range exprs {
		b.WriteString(" ")
		b.WriteString(Sexpr(e))
	}
	b.WriteString(")")
	return b.String()
}
