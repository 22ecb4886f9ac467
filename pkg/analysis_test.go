package comet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, source string) (*Metrics, []Warning) {
	t.Helper()

	prog, err := Parse(source)
	require.NoError(t, err)

	a := NewAnalyzer()
	return a.Do(prog), a.Warnings()
}

func TestAnalyzerMetrics(t *testing.T) {
	m, warnings := analyze(t, "i := 0;\nLOOP\n  i := i + 1;\n  IF i >= 3 THEN\n    BREAK;\n  ENDIF\nENDLOOP\nOUTPUT i;")

	assert.Empty(t, warnings)
	assert.Equal(t, 6, m.TotalNodes)
	assert.Equal(t, 2, m.DecisionNodes)
	assert.Equal(t, 3, m.CyclomaticComplexity)
	assert.Equal(t, []string{"i"}, m.Variables)
	assert.Equal(t, map[string]int{
		"Assignment": 2,
		"Loop":       1,
		"If":         1,
		"Break":      1,
		"Output":     1,
	}, m.NodeCounts)
}

func TestAnalyzerStraightLine(t *testing.T) {
	m, warnings := analyze(t, "x := 1;\ny := x + 2;\nOUTPUT y;")

	assert.Empty(t, warnings)
	assert.Equal(t, 3, m.TotalNodes)
	assert.Equal(t, 0, m.DecisionNodes)
	assert.Equal(t, 1, m.CyclomaticComplexity)
	assert.Equal(t, []string{"x", "y"}, m.Variables)
}

func TestAnalyzerReadBeforeAssignment(t *testing.T) {
	_, warnings := analyze(t, "OUTPUT x;\nx := 1;\nOUTPUT x;")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "variable 'x' may be read before assignment")
	require.NotNil(t, warnings[0].Loc)
	assert.Equal(t, 1, warnings[0].Loc.Line)
	assert.Equal(t, 8, warnings[0].Loc.Col)
}

func TestAnalyzerSelfReferentialAssignment(t *testing.T) {
	// The target is defined only after the value is evaluated
	_, warnings := analyze(t, "x := x + 1;")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "'x'")
}

func TestAnalyzerInputPromptIsChecked(t *testing.T) {
	_, warnings := analyze(t, "n := INPUT(prompt);")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "'prompt'")
}

func TestAnalyzerVariablesAreSorted(t *testing.T) {
	m, _ := analyze(t, "b := 1;\na := 2;\nc := a + b;")

	assert.Equal(t, []string{"a", "b", "c"}, m.Variables)
}

func TestWarningString(t *testing.T) {
	w := Warning{
		Loc:     &Location{File: "prog.cmt", Line: 3, Col: 7},
		Message: "variable 'x' may be read before assignment",
	}

	assert.Equal(t, "prog.cmt:3:7: variable 'x' may be read before assignment", w.String())
}
