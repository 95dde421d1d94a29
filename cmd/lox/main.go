// Command lox is the Lox interpreter entry point.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/thomasrohde/lox/pkg/config"
	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/formatter"
	"github.com/thomasrohde/lox/pkg/help"
	"github.com/thomasrohde/lox/pkg/runtime"
	"github.com/thomasrohde/lox/pkg/stdlib"
)

const usage = `usage: lox [command] [options] [file]

commands:
  run <file>        execute a program (the default when only a file is given)
  repl              start the interactive prompt (the default with no arguments)
  tokenize <file>   print the token stream
  ast <file>        print the parsed statements as s-expressions (alias: statements)
  fmt <file>        print the program in canonical form (--write rewrites the file)
  check <file>      report lex and parse errors without running
  trace <file>      summarize an NDJSON trace written by --trace (--text for prose)
  help [topic]      show this message or a reference topic

options:
  --json                 machine-readable diagnostics
  --trace <file>         write execution trace events as NDJSON
  --log-level <level>    debug, info, warn or error
  --max-depth <n>        maximum call depth, 0 disables the limit
  --max-iterations <n>   maximum loop iterations, 0 disables the limit
  --timeout <duration>   interrupt execution after a duration such as 2s
  --extended             install the extended native functions

A file argument of "-" reads standard input.
`

// app holds the process streams so commands can run in tests.
type app struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	dir        string
	openReader func(historyFile string) (lineReader, func())
}

func main() {
	a := &app{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		openReader: openLiner,
	}
	if dir, err := os.Getwd(); err == nil {
		a.dir = dir
	}
	os.Exit(a.run(os.Args[1:]))
}

func (a *app) run(args []string) int {
	if len(args) == 0 {
		return a.cmdRepl(nil)
	}

	switch cmd := args[0]; cmd {
	case "run":
		return a.cmdRun(args[1:])
	case "repl":
		return a.cmdRepl(args[1:])
	case "tokenize":
		return a.cmdTokenize(args[1:])
	case "ast", "statements":
		return a.cmdAST(args[1:])
	case "fmt":
		return a.cmdFmt(args[1:])
	case "check":
		return a.cmdCheck(args[1:])
	case "trace":
		return a.cmdTrace(args[1:])
	case "help", "--help", "-h":
		return a.cmdHelp(args[1:])
	default:
		return a.cmdRun(args)
	}
}

// settings are the effective options of one invocation: config file values
// overridden by flags.
type settings struct {
	cfg           *config.Config
	json          bool
	trace         string
	logLevel      slog.Level
	maxDepth      int
	maxIterations int64
	timeout       time.Duration
	extended      bool
}

// parse loads the configuration and parses args, which may mix flags and
// positional arguments. extra registers command-specific flags.
func (a *app) parse(name string, args []string, extra func(fs *flag.FlagSet)) (*settings, []string, int, bool) {
	cfg, err := config.Load(a.dir)
	if err != nil {
		fmt.Fprintf(a.stderr, "error: %s\n", err)
		return nil, nil, runtime.ExitUsage, false
	}

	s := &settings{cfg: cfg}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() { fmt.Fprint(a.stderr, usage) }
	fs.BoolVar(&s.json, "json", cfg.JSONDiagnostics, "machine-readable diagnostics")
	fs.StringVar(&s.trace, "trace", "", "write execution trace events as NDJSON")
	fs.TextVar(&s.logLevel, "log-level", cfg.LogLevel, "log level")
	fs.IntVar(&s.maxDepth, "max-depth", cfg.MaxCallDepth, "maximum call depth")
	fs.Int64Var(&s.maxIterations, "max-iterations", cfg.MaxIterations, "maximum loop iterations")
	fs.DurationVar(&s.timeout, "timeout", cfg.Timeout, "execution timeout")
	fs.BoolVar(&s.extended, "extended", cfg.ExtendedNatives, "install the extended natives")
	if extra != nil {
		extra(fs)
	}

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, nil, runtime.ExitOK, false
			}
			return nil, nil, runtime.ExitUsage, false
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if s.maxDepth < 0 || s.maxIterations < 0 || s.timeout < 0 {
		fmt.Fprintln(a.stderr, "error: limits must not be negative")
		return nil, nil, runtime.ExitUsage, false
	}
	return s, positional, 0, true
}

// fileArg extracts the single file argument of a command.
func (a *app) fileArg(cmd string, positional []string) (string, bool) {
	if len(positional) != 1 {
		fmt.Fprintf(a.stderr, "usage: lox %s <file> [options]\n", cmd)
		return "", false
	}
	return positional[0], true
}

func (a *app) readSource(file string) (string, error) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", fmt.Errorf("cannot read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("cannot read file: %w", err)
	}
	return string(data), nil
}

func (a *app) report(err error, s *settings) {
	fmt.Fprintln(a.stderr, runtime.Report(err, !s.json))
}

// newRuntime builds a runtime from the effective settings. The returned
// cleanup flushes the trace file.
func (a *app) newRuntime(s *settings) (*runtime.Runtime, func(), error) {
	logger := slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: s.logLevel}))

	reg := stdlib.NewRegistry()
	stdlib.RegisterDefaults(reg)
	if s.extended {
		stdlib.RegisterExtended(reg)
	}

	opts := []runtime.Option{
		runtime.WithOutput(a.stdout),
		runtime.WithStdlib(reg),
		runtime.WithBudget(evaluator.Budget{MaxCallDepth: s.maxDepth, MaxIterations: s.maxIterations}),
		runtime.WithLogger(logger),
	}

	cleanup := func() {}
	if s.trace != "" {
		f, err := os.Create(s.trace)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open trace file: %w", err)
		}
		w := bufio.NewWriter(f)
		enc := json.NewEncoder(w)
		opts = append(opts, runtime.WithTrace(func(ev evaluator.TraceEvent) {
			if err := enc.Encode(ev); err != nil {
				logger.Warn("trace write failed", slog.String("error", err.Error()))
			}
		}))
		cleanup = func() {
			_ = w.Flush()
			_ = f.Close()
		}
	}
	return runtime.New(opts...), cleanup, nil
}

// execContext bounds one execution by the timeout and by Ctrl-C.
func (a *app) execContext(s *settings) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	if s.timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func (a *app) cmdRun(args []string) int {
	s, positional, code, ok := a.parse("run", args, nil)
	if !ok {
		return code
	}
	file, ok := a.fileArg("run", positional)
	if !ok {
		return runtime.ExitUsage
	}

	source, err := a.readSource(file)
	if err != nil {
		a.report(err, s)
		return runtime.ExitIOErr
	}

	rt, cleanup, err := a.newRuntime(s)
	if err != nil {
		a.report(err, s)
		return runtime.ExitIOErr
	}
	defer cleanup()

	ctx, cancel := a.execContext(s)
	defer cancel()

	if err := rt.Run(ctx, source); err != nil {
		a.report(err, s)
		return runtime.ExitCode(err)
	}
	return runtime.ExitOK
}

func (a *app) cmdCheck(args []string) int {
	s, positional, code, ok := a.parse("check", args, nil)
	if !ok {
		return code
	}
	file, ok := a.fileArg("check", positional)
	if !ok {
		return runtime.ExitUsage
	}
	source, err := a.readSource(file)
	if err != nil {
		a.report(err, s)
		return runtime.ExitIOErr
	}

	diags := runtime.New().Check(source)
	if len(diags) > 0 {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diags, !s.json))
		return runtime.ExitDataErr
	}

	if s.json {
		fmt.Fprintln(a.stdout, "[]")
	} else {
		fmt.Fprintln(a.stdout, "No errors found.")
	}
	return runtime.ExitOK
}

type tokenJSON struct {
	Type    string `json:"type"`
	Lexeme  string `json:"lexeme"`
	Literal any    `json:"literal"`
	Line    int    `json:"line"`
}

func (a *app) cmdTokenize(args []string) int {
	s, positional, code, ok := a.parse("tokenize", args, nil)
	if !ok {
		return code
	}
	file, ok := a.fileArg("tokenize", positional)
	if !ok {
		return runtime.ExitUsage
	}
	source, err := a.readSource(file)
	if err != nil {
		a.report(err, s)
		return runtime.ExitIOErr
	}

	tokens, err := runtime.New().Tokenize(source)
	if err != nil {
		a.report(err, s)
		return runtime.ExitCode(err)
	}

	if s.json {
		out := make([]tokenJSON, len(tokens))
		for i, tok := range tokens {
			out[i] = tokenJSON{Type: tok.Type.String(), Lexeme: tok.Lexeme, Literal: tok.Literal, Line: tok.Line}
		}
		b, err := json.Marshal(out)
		if err != nil {
			a.report(err, s)
			return runtime.ExitSoftware
		}
		fmt.Fprintln(a.stdout, string(b))
		return runtime.ExitOK
	}

	for _, tok := range tokens {
		fmt.Fprintln(a.stdout, tok.String())
	}
	return runtime.ExitOK
}

func (a *app) cmdAST(args []string) int {
	s, positional, code, ok := a.parse("ast", args, nil)
	if !ok {
		return code
	}
	file, ok := a.fileArg("ast", positional)
	if !ok {
		return runtime.ExitUsage
	}
	source, err := a.readSource(file)
	if err != nil {
		a.report(err, s)
		return runtime.ExitIOErr
	}

	stmts, err := runtime.New().Parse(source)
	if err != nil {
		a.report(err, s)
		return runtime.ExitCode(err)
	}
	if len(stmts) > 0 {
		fmt.Fprintln(a.stdout, formatter.SexprProgram(stmts))
	}
	return runtime.ExitOK
}

func (a *app) cmdFmt(args []string) int {
	var write bool
	s, positional, code, ok := a.parse("fmt", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&write, "write", false, "rewrite the file in place")
	})
	if !ok {
		return code
	}
	file, ok := a.fileArg("fmt", positional)
	if !ok {
		return runtime.ExitUsage
	}
	if write && file == "-" {
		fmt.Fprintln(a.stderr, "error: --write needs a file")
		return runtime.ExitUsage
	}
	source, err := a.readSource(file)
	if err != nil {
		a.report(err, s)
		return runtime.ExitIOErr
	}

	formatted, err := runtime.New().Format(source)
	if err != nil {
		a.report(err, s)
		return runtime.ExitCode(err)
	}

	if formatter.HasComments(source) {
		fmt.Fprintln(a.stderr, "warning: comments are not preserved by the formatter")
	}

	if write {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			a.report(fmt.Errorf("cannot write file: %w", err), s)
			return runtime.ExitIOErr
		}
		return runtime.ExitOK
	}
	fmt.Fprint(a.stdout, formatted)
	return runtime.ExitOK
}

func (a *app) cmdTrace(args []string) int {
	var text bool
	s, positional, code, ok := a.parse("trace", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&text, "text", false, "print a human-readable summary")
	})
	if !ok {
		return code
	}
	file, ok := a.fileArg("trace", positional)
	if !ok {
		return runtime.ExitUsage
	}

	var r io.Reader = a.stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			a.report(fmt.Errorf("cannot read file: %w", err), s)
			return runtime.ExitIOErr
		}
		defer f.Close()
		r = f
	}

	summary, err := computeTraceSummary(r)
	if err != nil {
		a.report(err, s)
		return runtime.ExitIOErr
	}

	if text {
		printTraceSummaryText(a.stdout, summary)
		return runtime.ExitOK
	}
	b, err := json.Marshal(summary)
	if err != nil {
		a.report(err, s)
		return runtime.ExitSoftware
	}
	fmt.Fprintln(a.stdout, string(b))
	return runtime.ExitOK
}

func (a *app) cmdHelp(args []string) int {
	showIndex := false
	topic := ""
	for _, arg := range args {
		if arg == "--index" {
			showIndex = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if showIndex {
		if topic == "" {
			topic = "natives"
		}
		if name, _, err := help.MatchTopic(topic); err != nil || name != "natives" {
			fmt.Fprintln(a.stderr, "error: --index is only supported for the natives topic")
			return runtime.ExitUsage
		}
		reg := stdlib.NewRegistry()
		stdlib.RegisterDefaults(reg)
		stdlib.RegisterExtended(reg)
		fmt.Fprint(a.stdout, help.NativesIndex(reg))
		return runtime.ExitOK
	}

	if topic == "" {
		fmt.Fprint(a.stdout, usage)
		fmt.Fprintln(a.stdout)
		fmt.Fprint(a.stdout, help.QUICKREF)
		return runtime.ExitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(a.stderr, "%s\nAvailable topics: %s\n", err, strings.Join(help.TopicList, ", "))
		return runtime.ExitUsage
	}
	fmt.Fprint(a.stdout, content)
	return runtime.ExitOK
}
