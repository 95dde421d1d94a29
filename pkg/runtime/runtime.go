// Package runtime provides the top-level Lox runtime orchestrator.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/thomasrohde/lox/pkg/ast"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/formatter"
	"github.com/thomasrohde/lox/pkg/lexer"
	"github.com/thomasrohde/lox/pkg/parser"
	"github.com/thomasrohde/lox/pkg/stdlib"
	"github.com/thomasrohde/lox/pkg/token"
)

// Stage identifies the pipeline stage an error came from.
type Stage int

const (
	StageNone Stage = iota
	StageLex
	StageParse
	StageRuntime
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lex"
	case StageParse:
		return "parse"
	case StageRuntime:
		return "runtime"
	}
	return "none"
}

// Process exit codes, following sysexits.h.
const (
	ExitOK       = 0
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitSoftware = 70
	ExitIOErr    = 74
)

// Runtime wires together the scanner, parser and interpreter.
type Runtime struct {
	out    io.Writer
	stdlib *stdlib.Registry
	budget evaluator.Budget
	logger *slog.Logger
	trace  func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithOutput sets the writer that receives print output.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.out = w
	}
}

// WithStdlib sets the native function registry installed into each global frame.
func WithStdlib(r *stdlib.Registry) Option {
	return func(rt *Runtime) {
		rt.stdlib = r
	}
}

// WithBudget sets the execution limits.
func WithBudget(b evaluator.Budget) Option {
	return func(rt *Runtime) {
		rt.budget = b
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default print output goes to stdout and only the default natives are installed.
func New(opts ...Option) *Runtime {
	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)

	rt := &Runtime{
		out:    os.Stdout,
		stdlib: reg,
		budget: evaluator.DefaultBudget(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Tokenize scans source into tokens.
func (rt *Runtime) Tokenize(source string) ([]token.Token, error) {
	return lexer.Tokenize(source)
}

// Parse scans and parses source. Errors are *lexer.LexError or *parser.ParseError.
func (rt *Runtime) Parse(source string) ([]ast.Stmt, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return parser.ParseTokens(tokens)
}

// Check scans and parses source without executing it.
func (rt *Runtime) Check(source string) []diagnostics.Diagnostic {
	_, diags := parser.Parse(source)
	return diags
}

// Format parses source and re-prints it in canonical form.
func (rt *Runtime) Format(source string) (string, error) {
	stmts, err := rt.Parse(source)
	if err != nil {
		return "", err
	}
	return formatter.Format(stmts), nil
}

// Run parses and executes a program in a fresh global frame.
func (rt *Runtime) Run(ctx context.Context, source string) error {
	stmts, err := rt.Parse(source)
	if err != nil {
		rt.logger.Debug("program rejected", slog.String("stage", StageOf(err).String()))
		return err
	}
	return rt.execute(ctx, rt.newInterpreter(), stmts)
}

// Session keeps one interpreter and global frame alive across inputs.
type Session struct {
	rt     *Runtime
	interp *evaluator.Interpreter
}

// NewSession starts an interactive session.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, interp: rt.newInterpreter()}
}

// Eval parses and executes one unit of input. Bindings made by earlier
// inputs stay visible; a failing input does not undo earlier ones.
func (s *Session) Eval(ctx context.Context, source string) error {
	stmts, err := s.rt.Parse(source)
	if err != nil {
		return err
	}
	return s.rt.execute(ctx, s.interp, stmts)
}

// Globals returns the session's global frame.
func (s *Session) Globals() *evaluator.Environment {
	return s.interp.Globals()
}

func (rt *Runtime) newInterpreter() *evaluator.Interpreter {
	globals := evaluator.NewEnvironment(nil)
	if rt.stdlib != nil {
		rt.stdlib.Install(globals)
	}
	return evaluator.New(evaluator.Options{
		Out:     rt.out,
		Globals: globals,
		Budget:  rt.budget,
		Logger:  rt.logger,
		Trace:   rt.trace,
	})
}

func (rt *Runtime) execute(ctx context.Context, interp *evaluator.Interpreter, stmts []ast.Stmt) error {
	start := time.Now()
	rt.logger.Info("run start", slog.Int("statements", len(stmts)))

	err := interp.Interpret(ctx, stmts)

	stats := interp.Stats()
	attrs := []any{
		slog.Duration("elapsed", time.Since(start)),
		slog.Int64("calls", stats.Calls),
		slog.Int64("iterations", stats.Iterations),
		slog.Int("peakDepth", stats.PeakDepth),
	}
	if err != nil {
		attrs = append(attrs, slog.String("stage", StageOf(err).String()), slog.String("error", err.Error()))
	}
	rt.logger.Info("run end", attrs...)
	return err
}

// StageOf classifies an error returned by the runtime.
func StageOf(err error) Stage {
	var lexErr *lexer.LexError
	var parseErr *parser.ParseError
	var rtErr *evaluator.RuntimeError
	switch {
	case err == nil:
		return StageNone
	case errors.As(err, &lexErr):
		return StageLex
	case errors.As(err, &parseErr):
		return StageParse
	case errors.As(err, &rtErr):
		return StageRuntime
	}
	return StageNone
}

// Diagnostics flattens an error returned by the runtime into diagnostics.
// Errors from outside the pipeline become a single E_IO diagnostic.
func Diagnostics(err error) []diagnostics.Diagnostic {
	var lexErr *lexer.LexError
	var parseErr *parser.ParseError
	var rtErr *evaluator.RuntimeError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &lexErr):
		return lexErr.Diagnostics
	case errors.As(err, &parseErr):
		return parseErr.Diagnostics
	case errors.As(err, &rtErr):
		return []diagnostics.Diagnostic{rtErr.Diagnostic()}
	}
	return []diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EIO, err.Error(), 0, "")}
}

// ExitCode maps an error returned by the runtime to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch StageOf(err) {
	case StageLex, StageParse:
		return ExitDataErr
	case StageRuntime:
		var rtErr *evaluator.RuntimeError
		if errors.As(err, &rtErr) && rtErr.Code == diagnostics.EIO {
			return ExitIOErr
		}
		return ExitSoftware
	}
	return ExitIOErr
}

// Report renders an error the way the command line prints it.
func Report(err error, pretty bool) string {
	diags := Diagnostics(err)
	if len(diags) == 0 {
		return ""
	}
	if !pretty {
		return diagnostics.FormatDiagnostics(diags, false)
	}
	if StageOf(err) == StageNone {
		return fmt.Sprintf("error: %s", err)
	}
	return diagnostics.FormatDiagnostics(diags, true)
}
