package comet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

type TokenType int
type stateFunc func(l *Lexer) stateFunc

const eof rune = 0

const (
	TokenError TokenType = iota
	TokenEOF
	TokenNumber
	TokenString
	TokenIdentifier

	TokenIf
	TokenThen
	TokenElse
	TokenEndIf
	TokenLoop
	TokenEndLoop
	TokenBreak
	TokenOutput
	TokenInput
	TokenNot
	TokenTrue
	TokenFalse

	TokenAssign
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenEquals
	TokenNotEquals
	TokenGreater
	TokenGreaterEquals
	TokenLess
	TokenLessEquals
	TokenSemicolon
	TokenOpenParen
	TokenCloseParen
)

var keywordTable = map[string]TokenType{
	"IF":      TokenIf,
	"THEN":    TokenThen,
	"ELSE":    TokenElse,
	"ENDIF":   TokenEndIf,
	"LOOP":    TokenLoop,
	"ENDLOOP": TokenEndLoop,
	"BREAK":   TokenBreak,
	"OUTPUT":  TokenOutput,
	"INPUT":   TokenInput,
	"NOT":     TokenNot,
	"TRUE":    TokenTrue,
	"FALSE":   TokenFalse,
}

var operatorTable = map[string]TokenType{
	":=": TokenAssign,
	"+":  TokenPlus,
	"-":  TokenMinus,
	"*":  TokenStar,
	"/":  TokenSlash,
	"%":  TokenPercent,
	"=":  TokenEquals,
	"!=": TokenNotEquals,
	">":  TokenGreater,
	">=": TokenGreaterEquals,
	"<":  TokenLess,
	"<=": TokenLessEquals,
	";":  TokenSemicolon,
	"(":  TokenOpenParen,
	")":  TokenCloseParen,
}

var tokenNames = map[TokenType]string{
	TokenError:         "error",
	TokenEOF:           "end of input",
	TokenNumber:        "number",
	TokenString:        "string",
	TokenIdentifier:    "identifier",
	TokenIf:            "'IF'",
	TokenThen:          "'THEN'",
	TokenElse:          "'ELSE'",
	TokenEndIf:         "'ENDIF'",
	TokenLoop:          "'LOOP'",
	TokenEndLoop:       "'ENDLOOP'",
	TokenBreak:         "'BREAK'",
	TokenOutput:        "'OUTPUT'",
	TokenInput:         "'INPUT'",
	TokenNot:           "'NOT'",
	TokenTrue:          "'TRUE'",
	TokenFalse:         "'FALSE'",
	TokenAssign:        "':='",
	TokenPlus:          "'+'",
	TokenMinus:         "'-'",
	TokenStar:          "'*'",
	TokenSlash:         "'/'",
	TokenPercent:       "'%'",
	TokenEquals:        "'='",
	TokenNotEquals:     "'!='",
	TokenGreater:       "'>'",
	TokenGreaterEquals: "'>='",
	TokenLess:          "'<'",
	TokenLessEquals:    "'<='",
	TokenSemicolon:     "';'",
	TokenOpenParen:     "'('",
	TokenCloseParen:    "')'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}

	return "unknown"
}

// Token is a single lexical unit. Value holds the decoded lexeme: for
// strings the escape sequences are already resolved, for every other type
// it is the raw source text.
type Token struct {
	Typ   TokenType
	Value string
	Loc   *Location
}

func (t Token) isValid() bool {
	return t.Typ != TokenError && t.Typ != TokenEOF
}

// Tokenizer is the lexer-side contract consumed by the Parser. Do starts
// producing tokens, Get blocks until the next one is available.
type Tokenizer interface {
	Do()
	Get() Token
	GetFilename() string
}

// Lexer splits Comet source into tokens, emitting them on a channel as a
// chain of state functions advances through the input.
type Lexer struct {
	filename string
	reader   *bufio.Reader
	done     chan Token

	line int
	col  int
}

func NewLexer(filename string) (*Lexer, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return NewLexerFromReader(filename, strings.NewReader(string(data))), nil
}

func NewLexerFromReader(filename string, reader io.Reader) *Lexer {
	return &Lexer{
		filename: filename,
		reader:   bufio.NewReader(reader),
		done:     make(chan Token),
		line:     1,
		col:      1,
	}
}

func NewLexerFromString(source string) *Lexer {
	return NewLexerFromReader("input", strings.NewReader(source))
}

func (l *Lexer) GetFilename() string {
	return l.filename
}

func (l *Lexer) Chan() chan Token {
	return l.done
}

// Do runs the state machine until EOF or the first error, then closes the
// token channel. It is meant to run on its own goroutine.
func (l *Lexer) Do() {
	for state := defaultState; state != nil; {
		state = state(l)
	}

	close(l.done)
}

func (l *Lexer) Get() Token {
	return <-l.done
}

// RunBlocking drives the lexer to completion and collects all tokens. On a
// lex error no tokens are returned, matching the all-or-nothing contract.
func (l *Lexer) RunBlocking() ([]Token, error) {
	go l.Do()

	var tokens []Token
	for {
		t := l.Get()
		if t.Typ == TokenEOF {
			return tokens, nil
		}

		if t.Typ == TokenError {
			return nil, &LexError{Loc: t.Loc, Message: t.Value}
		}

		tokens = append(tokens, t)
	}
}

func defaultState(l *Lexer) stateFunc {
	for {
		switch r := l.peek(); {
		case r == eof:
			l.emit(TokenEOF, "", l.loc())
			return nil
		case unicode.IsSpace(r):
			l.next()
			continue
		case isDigit(r):
			return numberState
		case r == '"':
			return stringState
		case isIdentStart(r):
			return identifierState
		default:
			return operatorState
		}
	}
}

func numberState(l *Lexer) stateFunc {
	start := l.loc()

	var num strings.Builder
	for r := l.peek(); isDigit(r); r = l.peek() {
		num.WriteRune(l.next())
	}

	if l.peek() == '.' {
		num.WriteRune(l.next())

		if !isDigit(l.peek()) {
			return l.errorf(l.loc(), "malformed number literal '%s'", num.String())
		}

		for r := l.peek(); isDigit(r); r = l.peek() {
			num.WriteRune(l.next())
		}
	}

	l.emit(TokenNumber, num.String(), start)
	return defaultState
}

func stringState(l *Lexer) stateFunc {
	start := l.loc()
	l.next() // Skip the leading double-quote

	var str strings.Builder
	for {
		r := l.next()
		switch r {
		case eof:
			return l.errorf(start, "unclosed string literal")
		case '"':
			l.emit(TokenString, str.String(), start)
			return defaultState
		case '\\':
			esc := l.next()
			switch esc {
			case 'n':
				str.WriteRune('\n')
			case 't':
				str.WriteRune('\t')
			case 'r':
				str.WriteRune('\r')
			case '"':
				str.WriteRune('"')
			case '\\':
				str.WriteRune('\\')
			default:
				return l.errorf(l.loc(), "invalid escape sequence '\\%c'", esc)
			}
		default:
			str.WriteRune(r)
		}
	}
}

func identifierState(l *Lexer) stateFunc {
	start := l.loc()

	var id strings.Builder
	for r := l.peek(); isIdentPart(r); r = l.peek() {
		id.WriteRune(l.next())
	}

	// Keywords are exact, case-sensitive matches and take priority
	if t, ok := keywordTable[id.String()]; ok {
		l.emit(t, id.String(), start)
		return defaultState
	}

	l.emit(TokenIdentifier, id.String(), start)
	return defaultState
}

func operatorState(l *Lexer) stateFunc {
	start := l.loc()
	r := l.next()

	// Maximal munch: a two-rune operator always wins over its one-rune prefix
	switch r {
	case ':', '!', '>', '<':
		op := string(r) + string(l.peek())
		if tok, ok := operatorTable[op]; ok {
			l.next()
			l.emit(tok, op, start)
			return defaultState
		}
	case '/':
		if l.peek() == '/' {
			return lineCommentState
		}
	}

	if tok, ok := operatorTable[string(r)]; ok {
		l.emit(tok, string(r), start)
		return defaultState
	}

	return l.errorf(start, "unexpected character '%c'", r)
}

func lineCommentState(l *Lexer) stateFunc {
	for r := l.peek(); r != '\n' && r != eof; r = l.peek() {
		l.next()
	}

	return defaultState
}

func (l *Lexer) errorf(loc *Location, format string, args ...interface{}) stateFunc {
	l.done <- Token{
		Typ:   TokenError,
		Value: fmt.Sprintf(format, args...),
		Loc:   loc,
	}

	return nil
}

func (l *Lexer) emit(t TokenType, val string, loc *Location) {
	l.done <- Token{
		Typ:   t,
		Value: val,
		Loc:   loc,
	}
}

func (l *Lexer) loc() *Location {
	return &Location{
		File: l.filename,
		Line: l.line,
		Col:  l.col,
	}
}

func (l *Lexer) peek() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			return eof
		}

		return utf8.RuneError
	}

	_ = l.reader.UnreadRune()
	return r
}

func (l *Lexer) next() rune {
	r, _, err := l.reader.ReadRune()
	if err != nil {
		if err == io.EOF {
			return eof
		}

		return utf8.RuneError
	}

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

func isIdentStart(r rune) bool {
	return r == '_' || ('A' <= r && r <= 'Z') || ('a' <= r && r <= 'z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
