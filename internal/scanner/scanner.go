package scanner

import (
	"errors"
	"strconv"

	"github.com/loxwell/loxwell/internal/loxerrors"
	"github.com/loxwell/loxwell/internal/token"
)

// Scanner turns source text into tokens.
type Scanner interface {
	// Scan consumes the whole input once and returns the tokens terminated by EOF.
	// Lexical errors are reported as they are found and returned joined;
	// the offending characters are skipped and scanning goes on.
	Scan() ([]token.Token, error)
}

var keywords = map[string]token.TokenType{
	"and":    token.AND,
	"class":  token.CLASS,
	"else":   token.ELSE,
	"false":  token.FALSE,
	"for":    token.FOR,
	"fun":    token.FUN,
	"if":     token.IF,
	"nil":    token.NIL,
	"or":     token.OR,
	"print":  token.PRINT,
	"return": token.RETURN,
	"super":  token.SUPER,
	"this":   token.THIS,
	"true":   token.TRUE,
	"var":    token.VAR,
	"while":  token.WHILE,
}

var singles = map[rune]token.TokenType{
	'(': token.LEFT_PAREN,
	')': token.RIGHT_PAREN,
	'{': token.LEFT_BRACE,
	'}': token.RIGHT_BRACE,
	',': token.COMMA,
	'.': token.DOT,
	'-': token.MINUS,
	'+': token.PLUS,
	';': token.SEMICOLON,
	'*': token.STAR,
}

// pairs holds the operators that take a trailing '='; the longer form wins.
var pairs = map[rune]struct{ short, long token.TokenType }{
	'!': {token.BANG, token.BANG_EQUAL},
	'=': {token.EQUAL, token.EQUAL_EQUAL},
	'<': {token.LESS, token.LESS_EQUAL},
	'>': {token.GREATER, token.GREATER_EQUAL},
}

type scanner struct {
	src      []rune
	tokens   []token.Token
	start    int
	pos      int
	line     int
	errs     []error
	reporter loxerrors.ErrReporter
}

func NewScanner(input string, reporter loxerrors.ErrReporter) Scanner {
	return &scanner{src: []rune(input), line: 1, reporter: reporter}
}

// Scan implements Scanner.
func (s *scanner) Scan() ([]token.Token, error) {
	for !s.done() {
		s.start = s.pos
		s.lex()
	}

	s.tokens = append(s.tokens, token.NewToken(token.EOF, "", nil, s.line))
	return s.tokens, errors.Join(s.errs...)
}

func (s *scanner) lex() {
	c := s.next()

	if t, ok := singles[c]; ok {
		s.emit(t, nil)
		return
	}
	if p, ok := pairs[c]; ok {
		if s.accept('=') {
			s.emit(p.long, nil)
		} else {
			s.emit(p.short, nil)
		}
		return
	}

	switch {
	case c == '/' && s.accept('/'):
		s.skipLine()
	case c == '/':
		s.emit(token.SLASH, nil)
	case c == ' ' || c == '\r' || c == '\t' || c == '\n':
	case c == '"':
		s.lexString()
	case isDigit(c):
		s.lexNumber()
	case isAlpha(c):
		s.lexWord()
	default:
		s.fail(s.line, loxerrors.ErrScanUnexpectedCharacter, strconv.QuoteRune(c))
	}
}

func (s *scanner) done() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) at(offset int) rune {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

// next consumes one rune. Line counting lives here so multi-line strings are counted too.
func (s *scanner) next() rune {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

func (s *scanner) accept(want rune) bool {
	if s.done() || s.src[s.pos] != want {
		return false
	}
	s.next()
	return true
}

func (s *scanner) lexeme() string {
	return string(s.src[s.start:s.pos])
}

func (s *scanner) emit(t token.TokenType, literal any) {
	s.tokens = append(s.tokens, token.NewToken(t, s.lexeme(), literal, s.line))
}

func (s *scanner) skipLine() {
	for !s.done() && s.at(0) != '\n' {
		s.next()
	}
}

func (s *scanner) lexString() {
	opened := s.line
	for !s.done() && s.at(0) != '"' {
		s.next()
	}
	if s.done() {
		s.fail(opened, loxerrors.ErrScanUnterminatedString, "")
		return
	}
	s.next()

	s.emit(token.STRING, string(s.src[s.start+1:s.pos-1]))
}

func (s *scanner) lexNumber() {
	s.digits()
	// "1." leaves the dot for a DOT token.
	if s.at(0) == '.' && isDigit(s.at(1)) {
		s.next()
		s.digits()
	}

	text := s.lexeme()
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		s.fail(s.line, err, strconv.Quote(text))
		return
	}
	s.emit(token.NUMBER, value)
}

func (s *scanner) digits() {
	for isDigit(s.at(0)) {
		s.next()
	}
}

func (s *scanner) lexWord() {
	for isAlpha(s.at(0)) || isDigit(s.at(0)) {
		s.next()
	}

	kind, ok := keywords[s.lexeme()]
	if !ok {
		kind = token.IDENTIFIER
	}
	s.emit(kind, nil)
}

func (s *scanner) fail(line int, cause error, details string) {
	err := loxerrors.NewScanError(line, cause, details)
	s.errs = append(s.errs, err)
	if s.reporter != nil {
		s.reporter.ReportError(err)
	}
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c rune) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

var _ Scanner = (*scanner)(nil)
