// Package lexer implements the Lox tokenizer.
package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/thomasrohde/lox/pkg/diagnostics"
	"github.com/thomasrohde/lox/pkg/token"
)

type scanner struct {
	source string
	start  int
	pos    int
	line   int
	tokens []token.Token
	diags  []diagnostics.Diagnostic
}

func newScanner(source string) *scanner {
	return &scanner{
		source: source,
		line:   1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
	}
	return ch
}

// match consumes the next byte if it equals expected.
func (s *scanner) match(expected byte) bool {
	if s.atEnd() || s.source[s.pos] != expected {
		return false
	}
	s.pos++
	return true
}

func (s *scanner) add(typ token.TokenType, literal any) {
	s.tokens = append(s.tokens, token.Token{
		Type:    typ,
		Lexeme:  s.source[s.start:s.pos],
		Literal: literal,
		Line:    s.line,
	})
}

func (s *scanner) lexError(line int, msg string) {
	s.diags = append(s.diags, diagnostics.MakeDiag(diagnostics.ELex, msg, line, ""))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// peekRune decodes the rune at the cursor without consuming it.
func (s *scanner) peekRune() (rune, int) {
	if s.atEnd() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(s.source[s.pos:])
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func (s *scanner) scanString() {
	for !s.atEnd() && s.peek() != '"' {
		s.advance()
	}
	if s.atEnd() {
		s.lexError(s.line, "Unterminated string.")
		return
	}
	s.advance() // closing "

	// The token is attributed to the line it ends on, like every other token.
	s.add(token.String, s.source[s.start+1:s.pos-1])
}

func (s *scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}

	// A trailing '.' with no digit after it is left for the DOT token.
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance() // consume '.'
		for isDigit(s.peek()) {
			s.advance()
		}
	}

	text := s.source[s.start:s.pos]
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.lexError(s.line, "Invalid number literal.")
		return
	}
	s.add(token.Number, val)
}

func (s *scanner) scanIdentOrKeyword() {
	for {
		r, size := s.peekRune()
		if size == 0 || !isIdentPart(r) {
			break
		}
		s.pos += size
	}
	s.add(token.Lookup(s.source[s.start:s.pos]), nil)
}

func (s *scanner) scanToken() {
	ch := s.advance()

	switch ch {
	case ' ', '\r', '\t', '\n':
		return
	case '(':
		s.add(token.LeftParen, nil)
	case ')':
		s.add(token.RightParen, nil)
	case '{':
		s.add(token.LeftBrace, nil)
	case '}':
		s.add(token.RightBrace, nil)
	case ',':
		s.add(token.Comma, nil)
	case '.':
		s.add(token.Dot, nil)
	case '-':
		s.add(token.Minus, nil)
	case '+':
		s.add(token.Plus, nil)
	case ';':
		s.add(token.Semicolon, nil)
	case '*':
		s.add(token.Star, nil)
	case '!':
		s.add(s.pick('=', token.BangEqual, token.Bang), nil)
	case '=':
		s.add(s.pick('=', token.EqualEqual, token.Equal), nil)
	case '<':
		s.add(s.pick('=', token.LessEqual, token.Less), nil)
	case '>':
		s.add(s.pick('=', token.GreaterEqual, token.Greater), nil)
	case '/':
		if s.match('/') {
			// Line comment runs to end of line; the newline itself is left
			// for the main loop so the line counter stays correct.
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
			return
		}
		s.add(token.Slash, nil)
	case '"':
		s.scanString()
	default:
		if isDigit(ch) {
			s.scanNumber()
			return
		}
		// Re-decode as a rune so identifiers may start with non-ASCII letters.
		s.pos = s.start
		r, size := s.peekRune()
		if isIdentStart(r) {
			s.pos += size
			s.scanIdentOrKeyword()
			return
		}
		s.pos += size
		s.lexError(s.line, "Unexpected character.")
	}
}

// pick consumes next when it matches and returns two, else one.
func (s *scanner) pick(next byte, two, one token.TokenType) token.TokenType {
	if s.match(next) {
		return two
	}
	return one
}

// LexError carries every diagnostic recorded during a failed scan.
type LexError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = diagnostics.FormatDiagnostic(d, true)
	}
	return strings.Join(msgs, "\n")
}

// Tokenize breaks source code into a slice of tokens terminated by a single
// EOF token. Scanning continues past errors so that every lexical problem in
// the source is reported; if any were found the result is a *LexError.
func Tokenize(source string) ([]token.Token, error) {
	s := newScanner(source)
	for !s.atEnd() {
		s.start = s.pos
		s.scanToken()
	}
	s.tokens = append(s.tokens, token.Token{Type: token.EOF, Line: s.line})

	if len(s.diags) > 0 {
		return nil, &LexError{Diagnostics: s.diags}
	}
	return s.tokens, nil
}
