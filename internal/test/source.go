package test

import (
	"math/rand"
	"strings"
)

var validTokens = []string{
	"IF", "THEN", "ELSE", "ENDIF", "LOOP", "ENDLOOP", "BREAK",
	"OUTPUT", "INPUT", "NOT", "TRUE", "FALSE",
	"x", "total", "counter_1",
	":=", "+", "-", "*", "/", "%", "=", "!=", ">", ">=", "<", "<=",
	";", "(", ")",
	"42", "3.14", "0",
	`"a short string"`,
	`"a longer string with some text in it: Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua"`,
	`""`,
	"// a comment\n",
}

// GetRandomTokens produces source text made of valid Comet lexemes. The
// result usually does not parse, it only has to keep a lexer busy.
func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	var toks []string
	for len(toks) < size {
		toks = append(toks, validTokens[rand.Intn(len(validTokens))])
	}

	return strings.Join(toks, sep)
}

// Programs returns a fixed set of well-formed Comet programs covering
// every statement form, for parser and round-trip benchmarks.
func Programs() []string {
	return []string{
		"x := 5;\nOUTPUT x;\n",
		"n := INPUT(\"n?\");\nIF n > 0 THEN\n  OUTPUT \"pos\";\nELSE\n  OUTPUT \"neg\";\nENDIF\n",
		"i := 0;\nLOOP\n  i := i + 1;\n  IF i >= 10 THEN\n    BREAK;\n  ENDIF\nENDLOOP\nOUTPUT i;\n",
		"f := 1;\nn := 5;\nLOOP\n  IF n <= 1 THEN\n    BREAK;\n  ENDIF\n  f := f * n;\n  n := n - 1;\nENDLOOP\nOUTPUT \"factorial: \" + f;\n",
	}
}
