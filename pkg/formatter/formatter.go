// Package formatter prints Lox syntax trees: back to canonical source with
// Format, and as parenthesized debug forms with Sexpr.
package formatter

import (
	"strconv"
	"strings"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/token"
)

const indent = "  "

// Precedence levels, loosest first. Higher binds tighter.
const (
	precAssign = iota + 1
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

var binaryPrec = map[token.TokenType]int{
	token.EqualEqual: precEquality, token.BangEqual: precEquality,
	token.Greater: precComparison, token.GreaterEqual: precComparison,
	token.Less: precComparison, token.LessEqual: precComparison,
	token.Plus: precTerm, token.Minus: precTerm,
	token.Star: precFactor, token.Slash: precFactor,
}

func exprPrec(e ast.Expr) int {
	switch expr := e.(type) {
	case *ast.Assign, *ast.Set:
		return precAssign
	case *ast.Logical:
		if expr.Operator.Type == token.Or {
			return precOr
		}
		return precAnd
	case *ast.Binary:
		return binaryPrec[expr.Operator.Type]
	case *ast.Unary:
		return precUnary
	case *ast.Call, *ast.Get:
		return precCall
	}
	return precPrimary
}

// Format pretty-prints a statement list back to Lox source. Grouping nodes
// keep their parentheses; any other parentheses needed to preserve the tree
// shape are added from the precedence table.
func Format(stmts []ast.Stmt) string {
	if len(stmts) == 0 {
		return ""
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, 0)
	}
	return strings.Join(lines, "\n") + "\n"
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	switch stmt := s.(type) {
	case *ast.Block:
		return prefix + formatBlock(stmt.Statements, depth)
	case *ast.Expression:
		return prefix + formatExpr(stmt.Expression) + ";"
	case *ast.Print:
		return prefix + "print " + formatExpr(stmt.Expression) + ";"
	case *ast.Var:
		if stmt.Initializer == nil {
			return prefix + "var " + stmt.Name.Lexeme + ";"
		}
		return prefix + "var " + stmt.Name.Lexeme + " = " + formatExpr(stmt.Initializer) + ";"
	case *ast.Return:
		if stmt.Value == nil {
			return prefix + "return;"
		}
		return prefix + "return " + formatExpr(stmt.Value) + ";"
	case *ast.Function:
		return prefix + "fun " + formatFunction(stmt, depth)
	case *ast.If:
		return prefix + formatIf(stmt, depth)
	case *ast.While:
		return prefix + "while (" + formatExpr(stmt.Condition) + ")" + formatBody(stmt.Body, depth)
	case *ast.Class:
		head := "class " + stmt.Name.Lexeme
		if stmt.Superclass != nil {
			head += " < " + stmt.Superclass.Name.Lexeme
		}
		if len(stmt.Methods) == 0 {
			return prefix + head + " {}"
		}
		inner := strings.Repeat(indent, depth+1)
		methods := make([]string, len(stmt.Methods))
		for i, m := range stmt.Methods {
			methods[i] = inner + formatFunction(m, depth+1)
		}
		return prefix + head + " {\n" + strings.Join(methods, "\n") + "\n" + prefix + "}"
	}
	return ""
}

func formatFunction(fn *ast.Function, depth int) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Lexeme
	}
	return fn.Name.Lexeme + "(" + strings.Join(params, ", ") + ") " + formatBlock(fn.Body, depth)
}

// formatBlock renders braces and contents; the caller supplies the prefix of
// the opening line.
func formatBlock(stmts []ast.Stmt, depth int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = formatStmt(s, depth+1)
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

// formatBody renders the body of an if or while: blocks stay on the header
// line, single statements go on their own indented line.
func formatBody(s ast.Stmt, depth int) string {
	if b, ok := s.(*ast.Block); ok {
		return " " + formatBlock(b.Statements, depth)
	}
	return "\n" + formatStmt(s, depth+1)
}

func formatIf(stmt *ast.If, depth int) string {
	then := stmt.Then
	// An else-less inner if would capture our else when re-parsed.
	if inner, ok := then.(*ast.If); ok && inner.Else == nil && stmt.Else != nil {
		then = &ast.Block{Statements: []ast.Stmt{inner}, Lineno: inner.Line()}
	}

	out := "if (" + formatExpr(stmt.Condition) + ")" + formatBody(then, depth)
	if stmt.Else == nil {
		return out
	}

	if _, ok := then.(*ast.Block); ok {
		out += " else"
	} else {
		out += "\n" + strings.Repeat(indent, depth) + "else"
	}
	if elseIf, ok := stmt.Else.(*ast.If); ok {
		return out + " " + formatIf(elseIf, depth)
	}
	return out + formatBody(stmt.Else, depth)
}

func formatExpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value)
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Grouping:
		return "(" + formatExpr(expr.Expression) + ")"
	case *ast.Assign:
		return expr.Name.Lexeme + " = " + operand(expr.Value, precAssign)
	case *ast.Binary:
		p := binaryPrec[expr.Operator.Type]
		return operand(expr.Left, p) + " " + expr.Operator.Lexeme + " " + operand(expr.Right, p+1)
	case *ast.Logical:
		p := exprPrec(expr)
		return operand(expr.Left, p) + " " + expr.Operator.Lexeme + " " + operand(expr.Right, p+1)
	case *ast.Unary:
		return expr.Operator.Lexeme + operand(expr.Right, precUnary)
	case *ast.Call:
		args := make([]string, len(expr.Arguments))
		for i, a := range expr.Arguments {
			args[i] = formatExpr(a)
		}
		return operand(expr.Callee, precCall) + "(" + strings.Join(args, ", ") + ")"
	case *ast.Get:
		return operand(expr.Object, precCall) + "." + expr.Name.Lexeme
	case *ast.Set:
		return operand(expr.Object, precCall) + "." + expr.Name.Lexeme + " = " + operand(expr.Value, precAssign)
	case *ast.This:
		return "this"
	case *ast.Super:
		return "super." + expr.Method.Lexeme
	}
	return ""
}

// operand formats e, parenthesized if it binds looser than minPrec.
func operand(e ast.Expr, minPrec int) string {
	s := formatExpr(e)
	if exprPrec(e) < minPrec {
		return "(" + s + ")"
	}
	return s
}

func formatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return `"` + val + `"`
	}
	return ""
}

// HasComments reports whether source contains a line comment outside a
// string literal. Format drops comments.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		switch {
		case source[i] == '"':
			inString = !inString
		case !inString && source[i] == '/' && i+1 < len(source) && source[i+1] == '/':
			return true
		}
	}
	return false
}
