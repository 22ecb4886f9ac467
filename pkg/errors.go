package comet

import (
	"fmt"
	"strings"
)

// Location is a source position, 1-based.
type Location struct {
	File string
	Line int
	Col  int
}

func (l *Location) String() string {
	if l == nil {
		return "?:?:?"
	}

	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// LexError reports an unrecognized character or malformed literal. The
// whole translation fails; no tokens past the error are produced.
type LexError struct {
	Loc     *Location
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}

// SyntaxError reports the first token that does not match any grammar
// production, together with the set of tokens that would have been valid.
type SyntaxError struct {
	Loc      *Location
	Expected []TokenType
	Found    Token

	// Message overrides the expected/found rendering for structural faults
	// such as a BREAK outside any LOOP.
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Loc, e.Message)
	}

	names := make([]string, len(e.Expected))
	for i, typ := range e.Expected {
		names[i] = typ.String()
	}

	return fmt.Sprintf("%s: expected %s, found %s", e.Loc, strings.Join(names, " or "), e.Found.Typ)
}

// RuntimeError is raised by the interpreter for type and arithmetic faults.
type RuntimeError struct {
	Loc     *Location
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Loc, e.Message)
}
