package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tokenType represents the kind of token.
type tokenType int

const (
	tokEOF tokenType = iota

	tokAtom     // lowercase identifier or quoted text
	tokVariable // uppercase or underscore identifier
	tokNumber   // signed integer

	tokLParen   // "("
	tokRParen   // ")"
	tokLBracket // "["
	tokRBracket // "]"
	tokComma    // ","
	tokBar      // "|"
	tokImplies  // ":-"
	tokDot      // clause terminator "."
)

func (t tokenType) String() string {
	switch t {
	case tokEOF:
		return "end of input"
	case tokAtom:
		return "atom"
	case tokVariable:
		return "variable"
	case tokNumber:
		return "number"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokComma:
		return "','"
	case tokBar:
		return "'|'"
	case tokImplies:
		return "':-'"
	case tokDot:
		return "'.'"
	}
	return "unknown token"
}

type token struct {
	typ  tokenType
	text string // atom/variable spelling
	num  int64  // tokNumber value
	line int
	col  int
}

// lexer produces tokens from rule-script source. It tracks line and
// column for error reporting.
type lexer struct {
	src  string
	pos  int
	line int
	col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) errorf(line, col int, format string, args ...any) error {
	return &Error{Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
}

func (l *lexer) peek() (rune, int) {
	if l.pos >= len(l.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(l.src[l.pos:])
}

func (l *lexer) advance() rune {
	r, size := l.peek()
	l.pos += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		r, _ := l.peek()
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '%':
			for l.pos < len(l.src) {
				if l.advance() == '\n' {
					break
				}
			}
		default:
			return
		}
	}
}

// next returns the next token.
func (l *lexer) next() (token, error) {
	l.skipSpaceAndComments()

	tok := token{line: l.line, col: l.col}
	if l.pos >= len(l.src) {
		tok.typ = tokEOF
		return tok, nil
	}

	r, _ := l.peek()
	switch {
	case r == '(':
		l.advance()
		tok.typ = tokLParen
	case r == ')':
		l.advance()
		tok.typ = tokRParen
	case r == '[':
		l.advance()
		tok.typ = tokLBracket
	case r == ']':
		l.advance()
		tok.typ = tokRBracket
	case r == ',':
		l.advance()
		tok.typ = tokComma
	case r == '|':
		l.advance()
		tok.typ = tokBar
	case r == ':':
		l.advance()
		if r2, _ := l.peek(); r2 != '-' {
			return tok, l.errorf(tok.line, tok.col, "expected ':-', found ':%c'", r2)
		}
		l.advance()
		tok.typ = tokImplies
	case r == '.':
		l.advance()
		tok.typ = tokDot
	case r == '\'' || r == '"':
		text, err := l.quoted(r)
		if err != nil {
			return tok, err
		}
		tok.typ = tokAtom
		tok.text = text
	case r == '-' || unicode.IsDigit(r):
		return l.number(tok)
	case r == '_' || unicode.IsUpper(r):
		tok.typ = tokVariable
		tok.text = l.identifier()
	case unicode.IsLower(r):
		tok.typ = tokAtom
		tok.text = l.identifier()
	default:
		return tok, l.errorf(tok.line, tok.col, "unexpected character %q", r)
	}
	return tok, nil
}

// quoted reads a quoted atom body. Both single and double quotes
// delimit atoms; the original treats double-quoted strings as atoms
// and so do we. Backslash escapes the quote and itself.
func (l *lexer) quoted(quote rune) (string, error) {
	startLine, startCol := l.line, l.col
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.src) {
			return "", l.errorf(startLine, startCol, "unterminated quoted atom")
		}
		r := l.advance()
		switch r {
		case quote:
			return sb.String(), nil
		case '\\':
			if l.pos >= len(l.src) {
				return "", l.errorf(startLine, startCol, "unterminated quoted atom")
			}
			esc := l.advance()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteRune(esc)
			}
		default:
			sb.WriteRune(r)
		}
	}
}

func (l *lexer) number(tok token) (token, error) {
	start := l.pos
	if r, _ := l.peek(); r == '-' {
		l.advance()
		if r2, _ := l.peek(); !unicode.IsDigit(r2) {
			return tok, l.errorf(tok.line, tok.col, "expected digit after '-'")
		}
	}
	for l.pos < len(l.src) {
		r, _ := l.peek()
		if !unicode.IsDigit(r) {
			break
		}
		l.advance()
	}
	text := l.src[start:l.pos]
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return tok, l.errorf(tok.line, tok.col, "number %q out of range", text)
	}
	tok.typ = tokNumber
	tok.num = n
	return tok, nil
}

func (l *lexer) identifier() string {
	start := l.pos
	for l.pos < len(l.src) {
		r, _ := l.peek()
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.advance()
	}
	return l.src[start:l.pos]
}
