package comet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run interprets the source with the given stdin and returns everything
// written to stdout.
func run(t *testing.T, source, input string) (string, error) {
	t.Helper()

	prog, err := Parse(source)
	require.NoError(t, err)

	var out strings.Builder
	i := NewInterpreter(strings.NewReader(input), &out)
	err = i.Run(prog)

	return out.String(), err
}

func TestInterpreter(t *testing.T) {
	cases := []struct {
		name   string
		source string
		input  string
		expect string
	}{
		{
			"Output",
			"OUTPUT 5;",
			"",
			"5\n",
		},
		{
			"WholeNumbersPrintWithoutDecimals",
			"OUTPUT 10 / 2;",
			"",
			"5\n",
		},
		{
			"DecimalArithmetic",
			"OUTPUT 1.5 + 0.25;",
			"",
			"1.75\n",
		},
		{
			"AssignmentAndLookup",
			"x := 4;\ny := x * x;\nOUTPUT y;",
			"",
			"16\n",
		},
		{
			"Precedence",
			"OUTPUT 1 + 2 * 3;",
			"",
			"7\n",
		},
		{
			"UnaryMinus",
			"OUTPUT -2 + 3;",
			"",
			"1\n",
		},
		{
			"Modulo",
			"OUTPUT 7 % 3;",
			"",
			"1\n",
		},
		{
			"StringConcatenation",
			`OUTPUT "n = " + 5;`,
			"",
			"n = 5\n",
		},
		{
			"ConcatenationRightString",
			`OUTPUT 5 + " apples";`,
			"",
			"5 apples\n",
		},
		{
			"Booleans",
			"OUTPUT TRUE;\nOUTPUT 1 < 2;\nOUTPUT 2 = 3;",
			"",
			"TRUE\nTRUE\nFALSE\n",
		},
		{
			"IfTaken",
			"IF 1 < 2 THEN OUTPUT \"yes\"; ELSE OUTPUT \"no\"; ENDIF",
			"",
			"yes\n",
		},
		{
			"IfNot",
			"IF NOT 0 THEN OUTPUT \"zero is falsy\"; ENDIF",
			"",
			"zero is falsy\n",
		},
		{
			"TruthyString",
			`s := "x"; IF s THEN OUTPUT 1; ENDIF t := ""; IF NOT t THEN OUTPUT 2; ENDIF`,
			"",
			"1\n2\n",
		},
		{
			"CountingLoop",
			"i := 0;\nLOOP\n  i := i + 1;\n  IF i >= 3 THEN\n    BREAK;\n  ENDIF\nENDLOOP\nOUTPUT i;",
			"",
			"3\n",
		},
		{
			"Factorial",
			"f := 1;\nn := 5;\nLOOP\n  IF n <= 1 THEN\n    BREAK;\n  ENDIF\n  f := f * n;\n  n := n - 1;\nENDLOOP\nOUTPUT f;",
			"",
			"120\n",
		},
		{
			"InputNumber",
			`n := INPUT("n?"); OUTPUT n * 2;`,
			"21\n",
			"n? 42\n",
		},
		{
			"InputString",
			`name := INPUT("name?"); OUTPUT "hi " + name;`,
			"ada\n",
			"name? hi ada\n",
		},
		{
			"InputAtEOFIsEmptyString",
			`s := INPUT("?"); IF s = "" THEN OUTPUT "empty"; ENDIF`,
			"",
			"? empty\n",
		},
		{
			"EqualityIsTypeStrict",
			`IF 1 = "1" THEN OUTPUT "eq"; ELSE OUTPUT "ne"; ENDIF`,
			"",
			"ne\n",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := run(t, c.source, c.input)
			require.NoError(t, err)
			assert.Equal(t, c.expect, got)
		})
	}
}

func TestInterpreterRuntimeErrors(t *testing.T) {
	cases := []struct {
		name    string
		source  string
		message string
	}{
		{"DivisionByZero", "OUTPUT 1 / 0;", "division by zero"},
		{"ModuloByZero", "OUTPUT 1 % 0;", "division by zero"},
		{"UndefinedVariable", "OUTPUT nope;", "variable 'nope' is not defined"},
		{"UnaryMinusOnString", `OUTPUT -"x";`, "cannot apply unary '-'"},
		{"SubtractingStrings", `OUTPUT "a" - "b";`, "cannot apply operator '-'"},
		{"ComparingStringToNumber", `OUTPUT "a" < 1;`, "cannot apply operator '<'"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := run(t, c.source, "")
			require.Error(t, err)

			var runtimeErr *RuntimeError
			require.ErrorAs(t, err, &runtimeErr)
			assert.Contains(t, runtimeErr.Error(), c.message)
		})
	}
}

func TestInterpreterDivisionByZeroPosition(t *testing.T) {
	_, err := run(t, "x := 0;\ny := 1 / x;", "")
	require.Error(t, err)

	var runtimeErr *RuntimeError
	require.ErrorAs(t, err, &runtimeErr)
	require.NotNil(t, runtimeErr.Loc)
	assert.Equal(t, 2, runtimeErr.Loc.Line)
}

func TestInterpreterStateSurvivesRuns(t *testing.T) {
	var out strings.Builder
	i := NewInterpreter(strings.NewReader(""), &out)

	prog, err := Parse("x := 2;")
	require.NoError(t, err)
	require.NoError(t, i.Run(prog))

	prog, err = Parse("OUTPUT x + 1;")
	require.NoError(t, err)
	require.NoError(t, i.Run(prog))

	assert.Equal(t, "3\n", out.String())
}
