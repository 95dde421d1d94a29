// Package diagnostics defines Lox diagnostic types for lex, parse, and runtime errors.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Diagnostic code constants.
const (
	ELex         = "E_LEX"
	EParse       = "E_PARSE"
	EType        = "E_TYPE"
	EUndefined   = "E_UNDEFINED"
	EArity       = "E_ARITY"
	ENotCallable = "E_NOT_CALLABLE"
	EStack       = "E_STACK"
	EBudget      = "E_BUDGET"
	ECanceled    = "E_CANCELED"
	EIO          = "E_IO"
	EUsage       = "E_USAGE"
	EConfig      = "E_CONFIG"
	EUnsupported = "E_UNSUPPORTED"
)

// Diagnostic represents a lex, parse, or runtime diagnostic.
//
// Where is the location suffix printed after "Error": empty for generic
// diagnostics, " at end" for the end of input, or " at 'lexeme'".
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Where   string `json:"where,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, line int, where string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Line:    line,
		Where:   where,
	}
}

// AtEnd is the Where value for diagnostics anchored at end of input.
const AtEnd = " at end"

// AtLexeme returns the Where value for a diagnostic anchored at a token.
func AtLexeme(lexeme string) string {
	return fmt.Sprintf(" at '%s'", lexeme)
}

// IsStatic reports whether the code belongs to the lex or parse stage.
func IsStatic(code string) bool {
	return code == ELex || code == EParse
}

// FormatDiagnostic formats a single lex or parse diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// FormatRuntime formats a runtime diagnostic: the message followed by the
// offending line on its own line.
func FormatRuntime(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	return fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		if IsStatic(d.Code) {
			parts[i] = FormatDiagnostic(d, true)
		} else {
			parts[i] = FormatRuntime(d, true)
		}
	}
	return strings.Join(parts, "\n")
}
