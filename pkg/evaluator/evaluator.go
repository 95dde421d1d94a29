package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/token"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart       TraceEventType = "run_start"
	TraceRunEnd         TraceEventType = "run_end"
	TraceFnCallStart    TraceEventType = "fn_call_start"
	TraceFnCallEnd      TraceEventType = "fn_call_end"
	TraceLoopStart      TraceEventType = "loop_start"
	TraceLoopEnd        TraceEventType = "loop_end"
	TraceBudgetExceeded TraceEventType = "budget_exceeded"
	TraceRuntimeError   TraceEventType = "runtime_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	Event     TraceEventType    `json:"event"`
	Line      int               `json:"line,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Options configures an Interpreter.
type Options struct {
	// Out receives print output. Defaults to io.Discard.
	Out io.Writer
	// Globals is the outermost frame. Hosts pre-populate it with natives.
	Globals *Environment
	Budget  Budget
	Logger  *slog.Logger
	Trace   func(event TraceEvent)
}

// RuntimeError is a failure raised while executing a program. Token locates
// the construct that failed.
type RuntimeError struct {
	Code    string
	Message string
	Token   token.Token
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// Diagnostic converts the error for display.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Token.Line, "")
}

// completion is how a statement finished: normally, or by executing return.
type completion struct {
	returning bool
	value     Value
}

var normal = completion{}

// Interpreter executes statements against a global frame. One Interpreter
// may run several programs in turn; globals persist between them.
type Interpreter struct {
	ctx     context.Context
	out     io.Writer
	globals *Environment
	budget  Budget
	logger  *slog.Logger
	trace   func(event TraceEvent)
	tracker BudgetTracker
	depth   int
}

// New creates an Interpreter. A nil Globals gets an empty frame.
func New(opts Options) *Interpreter {
	in := &Interpreter{
		ctx:     context.Background(),
		out:     opts.Out,
		globals: opts.Globals,
		budget:  opts.Budget,
		logger:  opts.Logger,
		trace:   opts.Trace,
	}
	if in.out == nil {
		in.out = io.Discard
	}
	if in.globals == nil {
		in.globals = NewEnvironment(nil)
	}
	if in.logger == nil {
		in.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return in
}

// Globals returns the global frame.
func (in *Interpreter) Globals() *Environment {
	return in.globals
}

// Stats returns the resource consumption of the most recent run.
func (in *Interpreter) Stats() BudgetTracker {
	return in.tracker
}

// Interpret executes stmts in order and stops at the first runtime error.
// Output printed before the error stays printed.
func (in *Interpreter) Interpret(ctx context.Context, stmts []ast.Stmt) error {
	if ctx == nil {
		ctx = context.Background()
	}
	in.ctx = ctx
	in.depth = 0
	in.tracker = BudgetTracker{}

	start := time.Now()
	in.emit(TraceRunStart, 0, nil)

	var runErr error
	for _, stmt := range stmts {
		if _, err := in.execute(stmt, in.globals); err != nil {
			runErr = err
			break
		}
	}

	data := map[string]string{
		"durationMs": strconv.FormatInt(time.Since(start).Milliseconds(), 10),
		"calls":      strconv.FormatInt(in.tracker.Calls, 10),
		"iterations": strconv.FormatInt(in.tracker.Iterations, 10),
		"peakDepth":  strconv.Itoa(in.tracker.PeakDepth),
	}
	var rtErr *RuntimeError
	if errors.As(runErr, &rtErr) {
		in.emit(TraceRuntimeError, rtErr.Token.Line, map[string]string{"code": rtErr.Code, "message": rtErr.Message})
	}
	in.emit(TraceRunEnd, 0, data)
	return runErr
}

func (in *Interpreter) emit(event TraceEventType, line int, data map[string]string) {
	if in.trace != nil {
		in.trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Event:     event,
			Line:      line,
			Data:      data,
		})
	}
}

func (in *Interpreter) checkCanceled(line int) error {
	if in.ctx.Err() != nil {
		return &RuntimeError{
			Code:    diagnostics.ECanceled,
			Message: "Execution interrupted.",
			Token:   token.Token{Line: line},
		}
	}
	return nil
}

func (in *Interpreter) checkIterationBudget(line int) error {
	in.tracker.Iterations++
	if in.budget.MaxIterations > 0 && in.tracker.Iterations > in.budget.MaxIterations {
		in.emit(TraceBudgetExceeded, line, map[string]string{"budget": "iterations"})
		return &RuntimeError{
			Code:    diagnostics.EBudget,
			Message: fmt.Sprintf("Iteration budget exceeded (max %d).", in.budget.MaxIterations),
			Token:   token.Token{Line: line},
		}
	}
	return nil
}

// --- Statements ---

func (in *Interpreter) execute(stmt ast.Stmt, env *Environment) (completion, error) {
	switch s := stmt.(type) {
	case *ast.Expression:
		_, err := in.evaluate(s.Expression, env)
		return normal, err

	case *ast.Print:
		val, err := in.evaluate(s.Expression, env)
		if err != nil {
			return normal, err
		}
		if _, err := fmt.Fprintln(in.out, Stringify(val)); err != nil {
			return normal, &RuntimeError{
				Code:    diagnostics.EIO,
				Message: fmt.Sprintf("print: %s", err),
				Token:   token.Token{Line: s.Line()},
			}
		}
		return normal, nil

	case *ast.Var:
		var val Value = Nil{}
		if s.Initializer != nil {
			v, err := in.evaluate(s.Initializer, env)
			if err != nil {
				return normal, err
			}
			val = v
		}
		env.Define(s.Name.Lexeme, val)
		return normal, nil

	case *ast.Block:
		return in.executeBlock(s.Statements, NewEnvironment(env))

	case *ast.If:
		cond, err := in.evaluate(s.Condition, env)
		if err != nil {
			return normal, err
		}
		if Truthy(cond) {
			return in.execute(s.Then, env)
		}
		if s.Else != nil {
			return in.execute(s.Else, env)
		}
		return normal, nil

	case *ast.While:
		return in.executeWhile(s, env)

	case *ast.Function:
		env.Define(s.Name.Lexeme, NewFunction(s, env))
		return normal, nil

	case *ast.Return:
		var val Value = Nil{}
		if s.Value != nil {
			v, err := in.evaluate(s.Value, env)
			if err != nil {
				return normal, err
			}
			val = v
		}
		return completion{returning: true, value: val}, nil

	case *ast.Class:
		return normal, unsupported(s.Name, "Classes are not supported.")
	}

	return normal, fmt.Errorf("unknown statement type: %T", stmt)
}

// executeBlock runs stmts in env and stops early on return or error.
func (in *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) (completion, error) {
	for _, stmt := range stmts {
		c, err := in.execute(stmt, env)
		if err != nil || c.returning {
			return c, err
		}
	}
	return normal, nil
}

func (in *Interpreter) executeWhile(s *ast.While, env *Environment) (completion, error) {
	line := s.Line()
	in.emit(TraceLoopStart, line, nil)
	defer in.emit(TraceLoopEnd, line, nil)

	for {
		if err := in.checkCanceled(line); err != nil {
			return normal, err
		}
		cond, err := in.evaluate(s.Condition, env)
		if err != nil {
			return normal, err
		}
		if !Truthy(cond) {
			return normal, nil
		}
		if err := in.checkIterationBudget(line); err != nil {
			return normal, err
		}
		c, err := in.execute(s.Body, env)
		if err != nil || c.returning {
			return c, err
		}
	}
}

// --- Expressions ---

func (in *Interpreter) evaluate(expr ast.Expr, env *Environment) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return FromLiteral(e.Value), nil

	case *ast.Grouping:
		return in.evaluate(e.Expression, env)

	case *ast.Variable:
		return env.Get(e.Name)

	case *ast.Assign:
		val, err := in.evaluate(e.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Assign(e.Name, val); err != nil {
			return nil, err
		}
		return val, nil

	case *ast.Unary:
		return in.evalUnary(e, env)

	case *ast.Logical:
		left, err := in.evaluate(e.Left, env)
		if err != nil {
			return nil, err
		}
		if e.Operator.Type == token.Or {
			if Truthy(left) {
				return left, nil
			}
		} else if !Truthy(left) {
			return left, nil
		}
		return in.evaluate(e.Right, env)

	case *ast.Binary:
		return in.evalBinary(e, env)

	case *ast.Call:
		return in.evalCall(e, env)

	case *ast.Get:
		return nil, unsupported(e.Name, "Only instances have properties.")
	case *ast.Set:
		return nil, unsupported(e.Name, "Only instances have fields.")
	case *ast.This:
		return nil, unsupported(e.Keyword, "Can't use 'this' outside of a class.")
	case *ast.Super:
		return nil, unsupported(e.Keyword, "Can't use 'super' outside of a class.")
	}

	return nil, fmt.Errorf("unknown expression type: %T", expr)
}

func (in *Interpreter) evalUnary(e *ast.Unary, env *Environment) (Value, error) {
	right, err := in.evaluate(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case token.Minus:
		n, ok := right.(Number)
		if !ok {
			return nil, typeError(e.Operator, "Operand must be a number.")
		}
		return Number{Value: -n.Value}, nil
	case token.Bang:
		return Bool{Value: !Truthy(right)}, nil
	}
	return nil, fmt.Errorf("unknown unary operator: %s", e.Operator.Lexeme)
}

func (in *Interpreter) evalBinary(e *ast.Binary, env *Environment) (Value, error) {
	left, err := in.evaluate(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := in.evaluate(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Type {
	case token.EqualEqual:
		return Bool{Value: Equal(left, right)}, nil
	case token.BangEqual:
		return Bool{Value: !Equal(left, right)}, nil
	case token.Plus:
		if l, ok := left.(Number); ok {
			if r, ok := right.(Number); ok {
				return Number{Value: l.Value + r.Value}, nil
			}
		}
		if l, ok := left.(String); ok {
			if r, ok := right.(String); ok {
				return String{Value: l.Value + r.Value}, nil
			}
		}
		return nil, typeError(e.Operator, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(Number)
	r, rok := right.(Number)
	if !lok || !rok {
		return nil, typeError(e.Operator, "Operands must be numbers.")
	}

	switch e.Operator.Type {
	case token.Minus:
		return Number{Value: l.Value - r.Value}, nil
	case token.Star:
		return Number{Value: l.Value * r.Value}, nil
	case token.Slash:
		return Number{Value: l.Value / r.Value}, nil
	case token.Greater:
		return Bool{Value: l.Value > r.Value}, nil
	case token.GreaterEqual:
		return Bool{Value: l.Value >= r.Value}, nil
	case token.Less:
		return Bool{Value: l.Value < r.Value}, nil
	case token.LessEqual:
		return Bool{Value: l.Value <= r.Value}, nil
	}
	return nil, fmt.Errorf("unknown binary operator: %s", e.Operator.Lexeme)
}

func (in *Interpreter) evalCall(e *ast.Call, env *Environment) (Value, error) {
	callee, err := in.evaluate(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]Value, 0, len(e.Arguments))
	for _, arg := range e.Arguments {
		v, err := in.evaluate(arg, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, &RuntimeError{
			Code:    diagnostics.ENotCallable,
			Message: "Can only call functions and classes.",
			Token:   e.Paren,
		}
	}
	if len(args) != fn.Arity() {
		return nil, &RuntimeError{
			Code:    diagnostics.EArity,
			Message: fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args)),
			Token:   e.Paren,
		}
	}

	if err := in.checkCanceled(e.Paren.Line); err != nil {
		return nil, err
	}
	if in.budget.MaxCallDepth > 0 && in.depth >= in.budget.MaxCallDepth {
		in.emit(TraceBudgetExceeded, e.Paren.Line, map[string]string{"budget": "callDepth"})
		return nil, &RuntimeError{
			Code:    diagnostics.EStack,
			Message: "Stack overflow.",
			Token:   e.Paren,
		}
	}

	in.depth++
	in.tracker.Calls++
	if in.depth > in.tracker.PeakDepth {
		in.tracker.PeakDepth = in.depth
	}
	in.logger.Debug("call", slog.String("fn", fn.Name()), slog.Int("depth", in.depth), slog.Int("line", e.Paren.Line))
	in.emit(TraceFnCallStart, e.Paren.Line, map[string]string{"fn": fn.Name()})

	result, err := fn.Call(in, args)

	in.emit(TraceFnCallEnd, e.Paren.Line, map[string]string{"fn": fn.Name()})
	in.depth--

	if err != nil {
		var rtErr *RuntimeError
		if errors.As(err, &rtErr) {
			return nil, err
		}
		// Natives report plain errors; anchor them at the call site.
		return nil, &RuntimeError{Code: diagnostics.EType, Message: err.Error(), Token: e.Paren}
	}
	return result, nil
}

func typeError(tok token.Token, msg string) *RuntimeError {
	return &RuntimeError{Code: diagnostics.EType, Message: msg, Token: tok}
}

func unsupported(tok token.Token, msg string) *RuntimeError {
	return &RuntimeError{Code: diagnostics.EUnsupported, Message: msg, Token: tok}
}
