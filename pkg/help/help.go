// Package help holds the reference text printed by `lox help`.
package help

import (
	"fmt"
	"sort"
	"strings"

	"github.com/thomasrohde/lox/pkg/stdlib"
)

// QUICKREF is printed by `lox help` with no topic.
const QUICKREF = `Lox quick reference

  var name = "value";            declare a variable (nil when uninitialized)
  name = "other";                assign to the nearest existing binding
  print expr;                    write the printed form of a value and a newline
  { ... }                        block with its own scope
  if (cond) stmt else stmt       else binds to the nearest if
  while (cond) stmt
  for (init; cond; incr) stmt    any clause may be empty
  fun add(a, b) { return a + b; }
  and or !  == != < <= > >=  + - * /

Only nil and false are falsey. Numbers are 64-bit floats; + also joins strings.

Topics (lox help <topic>):
  syntax, values, functions, natives, repl, config, diagnostics, examples
`

// Topics maps topic names to their reference text.
var Topics = map[string]string{
	"syntax":      syntaxTopic,
	"values":      valuesTopic,
	"functions":   functionsTopic,
	"natives":     nativesTopic,
	"repl":        replTopic,
	"config":      configTopic,
	"diagnostics": diagnosticsTopic,
	"examples":    examplesTopic,
}

// TopicList is the display order of the topics.
var TopicList = []string{"syntax", "values", "functions", "natives", "repl", "config", "diagnostics", "examples"}

// MatchTopic resolves a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}

	var matches []string
	for _, name := range TopicList {
		if query != "" && strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q", query)
	}
	return "", "", fmt.Errorf("ambiguous help topic %q: %s", query, strings.Join(matches, ", "))
}

// NativesIndex lists the natives of a registry with their arity.
func NativesIndex(reg *stdlib.Registry) string {
	names := reg.Names()
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fn := reg.Get(name)
		params := make([]string, fn.Arity)
		for i := range params {
			params[i] = fmt.Sprintf("a%d", i+1)
		}
		fmt.Fprintf(&b, "  %s(%s)\n", name, strings.Join(params, ", "))
	}
	fmt.Fprintf(&b, "Total: %d functions\n", len(names))
	return b.String()
}

const syntaxTopic = `Syntax

Statements end with a semicolon. Comments run from // to the end of the line.

  program     -> declaration* EOF
  declaration -> "fun" function | "var" IDENT ( "=" expr )? ";" | statement
  statement   -> expr ";" | "print" expr ";" | "return" expr? ";"
               | "if" "(" expr ")" statement ( "else" statement )?
               | "while" "(" expr ")" statement
               | "for" "(" init? ";" expr? ";" expr? ")" statement
               | "{" declaration* "}"

Precedence, loosest first: assignment, or, and, equality, comparison,
term (+ -), factor (* /), unary (! -), call.

The words class, this and super are reserved.
`

const valuesTopic = `Values

  nil            the absence of a value
  true, false    booleans
  1, 2.5         numbers (64-bit floats); whole numbers print without a fraction
  "text"         strings; may span lines, no escape sequences
  functions      declared with fun, printed as <fn name>
  natives        provided by the host, printed as <native fn>

Only nil and false are falsey. == never converts between types.
Division by zero yields Infinity, -Infinity or NaN.
`

const functionsTopic = `Functions

  fun greet(name) {
    return "hello " + name;
  }

Calls must pass exactly as many arguments as there are parameters.
A function without return, or with a bare return, yields nil.
Functions close over the scope they were declared in, so inner functions
keep seeing (and updating) the variables of their enclosing call.
`

const nativesTopic = `Natives

clock() returns the current time as whole seconds since the Unix epoch.

With --extended (or extended_natives: true in the config file) these are
also installed:

  str(v) typeof(v) num(s) len(s)
  contains(s, sub) startsWith(s, prefix) endsWith(s, suffix) replace(s, old, new)
  max(a, b) min(a, b) floor(n)

lox help natives --index lists every native with its arity.
`

const replTopic = `REPL

Run lox with no arguments. Input that ends too early, such as an open block,
continues on the next line; an empty line submits it as is.

  :env     list global bindings (JSON with --json)
  :help    list REPL commands
  :quit    exit

Ctrl+C discards the current input or interrupts a running program.
Ctrl+D exits. History is kept in the configured history file.
`

const configTopic = `Configuration

lox reads .lox.yml from the working directory, else ~/.lox/config.yml.
Unknown keys are rejected. Flags override the file.

  prompt: "> "
  continuation_prompt: ". "
  history_file: ~/.lox_history
  max_call_depth: 1024       # --max-depth, 0 disables the limit
  max_iterations: 0          # --max-iterations, 0 disables the limit
  timeout: 5s                # --timeout
  json_diagnostics: false    # --json
  log_level: warn            # --log-level
  extended_natives: false    # --extended
`

const diagnosticsTopic = `Diagnostics

Lex and parse errors are all reported before anything runs:

  [line 3] Error at ';': Expect expression.
  [line 9] Error at end: Expect '}' after block.

A runtime error stops the program at the first failure:

  Operands must be numbers.
  [line 4]

With --json each diagnostic is an object with code, message, line and where.
Exit codes: 0 ok, 64 usage, 65 lex or parse error, 70 runtime error, 74 I/O error.
`

const examplesTopic = `Examples

  fun makeCounter() {
    var i = 0;
    fun count() { i = i + 1; return i; }
    return count;
  }
  var counter = makeCounter();
  print counter(); // 1
  print counter(); // 2

  fun fib(n) {
    if (n < 2) return n;
    return fib(n - 1) + fib(n - 2);
  }
  for (var i = 0; i < 10; i = i + 1) print fib(i);
`
