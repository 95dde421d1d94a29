package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/lox/pkg/evaluator"
	"github.com/thomasrohde/lox/pkg/parser"
	"github.com/thomasrohde/lox/pkg/runtime"
)

const banner = "Lox REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands."

const replHelp = `REPL commands:
  :env     List global bindings
  :help    Show this message
  :quit    Exit the REPL
`

// lineReader is the part of *liner.State the REPL needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

func openLiner(historyFile string) (lineReader, func()) {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	return ln, func() {
		if historyFile != "" {
			if f, err := os.Create(historyFile); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}
		_ = ln.Close()
	}
}

func (a *app) cmdRepl(args []string) int {
	s, positional, code, ok := a.parse("repl", args, nil)
	if !ok {
		return code
	}
	if len(positional) > 0 {
		fmt.Fprintln(a.stderr, "usage: lox repl [options]")
		return runtime.ExitUsage
	}

	rt, cleanup, err := a.newRuntime(s)
	if err != nil {
		a.report(err, s)
		return runtime.ExitIOErr
	}
	defer cleanup()

	sess := rt.NewSession()
	r, closeReader := a.openReader(s.cfg.HistoryFile)
	defer closeReader()

	fmt.Fprintln(a.stdout, banner)
	for {
		src, ok := readInput(r, s.cfg.Prompt, s.cfg.ContinuationPrompt)
		if !ok {
			fmt.Fprintln(a.stdout)
			return runtime.ExitOK
		}

		trimmed := strings.TrimSpace(src)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if a.replCommand(trimmed, sess, s) {
				return runtime.ExitOK
			}
			continue
		}

		r.AppendHistory(strings.ReplaceAll(src, "\n", " "))
		ctx, cancel := a.execContext(s)
		err := sess.Eval(ctx, src)
		cancel()
		if err != nil {
			a.report(err, s)
		}
	}
}

// readInput reads one unit of input, prompting for continuation lines while
// the source parses as merely incomplete. A blank continuation line submits
// what has been typed so far. It returns false at end of input.
func readInput(r lineReader, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := r.Prompt(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, diags := parser.Parse(src); !parser.IsIncomplete(diags) {
			return src, true
		}
	}
}

// replCommand runs a colon command and reports whether the REPL should exit.
func (a *app) replCommand(cmd string, sess *runtime.Session, s *settings) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprint(a.stdout, replHelp)
	case ":env":
		a.printEnv(sess.Globals(), s)
	default:
		fmt.Fprintf(a.stdout, "unknown command %s. Type :help for commands.\n", cmd)
	}
	return false
}

func (a *app) printEnv(env *evaluator.Environment, s *settings) {
	if s.json {
		b, err := evaluator.EnvironmentToJSON(env)
		if err != nil {
			a.report(err, s)
			return
		}
		fmt.Fprintln(a.stdout, string(b))
		return
	}
	for _, name := range env.Names() {
		v, _ := env.Lookup(name)
		fmt.Fprintf(a.stdout, "%s = %s\n", name, evaluator.Stringify(v))
	}
}
