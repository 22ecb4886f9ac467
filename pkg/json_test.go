package comet

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamza-berahma/comet-flowchart/internal/test"
)

func TestMarshalProgram(t *testing.T) {
	prog, err := Parse("x := 1.50;")
	require.NoError(t, err)

	data, err := MarshalProgram(prog)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "Program", raw["type"])
	assert.Equal(t, "input", raw["filename"])

	stmts, ok := raw["statements"].([]interface{})
	require.True(t, ok)
	require.Len(t, stmts, 1)

	assign, ok := stmts[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Assignment", assign["type"])
	assert.Equal(t, "x", assign["target"])

	value, ok := assign["value"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "NumberLiteral", value["type"])
	// Number literals are archived as the raw lexeme
	assert.Equal(t, "1.50", value["value"])

	loc, ok := assign["loc"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), loc["line"])
	assert.Equal(t, float64(1), loc["col"])
}

// Decoding the archived form reproduces the tree exactly, positions
// included.
func TestMarshalDecodeRoundTrip(t *testing.T) {
	for _, source := range test.Programs() {
		prog, err := Parse(source)
		require.NoError(t, err)

		data, err := MarshalProgram(prog)
		require.NoError(t, err)

		decoded, err := DecodeProgram(data)
		require.NoError(t, err)

		assert.Equal(t, prog, decoded)
	}
}

func TestMarshalIsDeterministic(t *testing.T) {
	prog, err := Parse("IF NOT x = 1 THEN OUTPUT -x; ELSE OUTPUT INPUT(\"p\"); ENDIF")
	require.NoError(t, err)

	first, err := MarshalProgram(prog)
	require.NoError(t, err)

	second, err := MarshalProgram(prog)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecodeProgramErrors(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"NotJSON", "{{"},
		{"RootNotObject", "[]"},
		{"RootNotProgram", `{"type": "Assignment"}`},
		{"UnknownStatement", `{"type": "Program", "statements": [{"type": "Goto"}]}`},
		{"UnknownExpression", `{"type": "Program", "statements": [{"type": "Output", "value": {"type": "Lambda"}}]}`},
		{"MissingTarget", `{"type": "Program", "statements": [{"type": "Assignment", "value": {"type": "NumberLiteral", "value": "1"}}]}`},
		{"NumberNotString", `{"type": "Program", "statements": [{"type": "Output", "value": {"type": "NumberLiteral", "value": 1}}]}`},
		{"BreakOutsideLoop", `{"type": "Program", "statements": [{"type": "Break"}]}`},
		{"BreakInIfOutsideLoop", `{"type": "Program", "statements": [{"type": "If", "condition": {"type": "BooleanLiteral", "value": true}, "negated": false, "thenBranch": [{"type": "Break"}]}]}`},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := DecodeProgram([]byte(c.data))
			assert.Error(t, err)
		})
	}
}

func TestMarshalIfBranchKeys(t *testing.T) {
	prog, err := Parse("IF x THEN OUTPUT 1; ELSE OUTPUT 2; ENDIF")
	require.NoError(t, err)

	data, err := MarshalProgram(prog)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"thenBranch"`)
	assert.Contains(t, string(data), `"elseBranch"`)
}

func TestDecodeBreakInsideLoop(t *testing.T) {
	data := `{
		"type": "Program",
		"statements": [
			{"type": "Loop", "body": [
				{"type": "If", "condition": {"type": "Identifier", "name": "done"}, "negated": false, "thenBranch": [{"type": "Break"}]}
			]}
		]
	}`

	prog, err := DecodeProgram([]byte(data))
	require.NoError(t, err)

	expect := []Stmt{
		&Loop{
			Body: []Stmt{
				&If{
					Condition: &Identifier{Name: "done"},
					Then:      []Stmt{&Break{}},
				},
			},
		},
	}
	assert.Equal(t, expect, prog.Statements)
}

func TestDecodeGrouping(t *testing.T) {
	data := `{
		"type": "Program",
		"statements": [
			{"type": "Output", "value": {"type": "Grouping", "inner": {"type": "BooleanLiteral", "value": true}}}
		]
	}`

	prog, err := DecodeProgram([]byte(data))
	require.NoError(t, err)

	expect := []Stmt{
		&Output{Value: &Grouping{Inner: &BoolLit{Value: true}}},
	}
	assert.Equal(t, expect, prog.Statements)
}
