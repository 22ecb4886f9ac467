package comet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateSource(t *testing.T) {
	artifacts, err := NewTranslator().TranslateSource("x := 1 + 2;\nOUTPUT x;\n")
	require.NoError(t, err)

	require.NotNil(t, artifacts.Program)
	assert.Len(t, artifacts.Program.Statements, 2)

	assert.Equal(t, "x := 1 + 2;\nOUTPUT x;\n", artifacts.DSL)
	assert.Contains(t, string(artifacts.JSON), `"type": "Program"`)

	require.NotNil(t, artifacts.Diagram)
	assert.Len(t, artifacts.Diagram.Nodes, 4)
}

func TestTranslateFromReader(t *testing.T) {
	artifacts, err := NewTranslator().TranslateFromReader("prog.cmt", strings.NewReader("OUTPUT 1;"))
	require.NoError(t, err)

	assert.Equal(t, "prog.cmt", artifacts.Program.Filename)
}

func TestTranslateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.cmt")
	require.NoError(t, os.WriteFile(path, []byte("OUTPUT 42;\n"), 0o644))

	artifacts, err := NewTranslator().Translate(path)
	require.NoError(t, err)

	assert.Equal(t, path, artifacts.Program.Filename)
	assert.Equal(t, "OUTPUT 42;\n", artifacts.DSL)
}

func TestTranslateMissingFile(t *testing.T) {
	_, err := NewTranslator().Translate(filepath.Join(t.TempDir(), "absent.cmt"))
	assert.Error(t, err)
}

func TestTranslateSyntaxError(t *testing.T) {
	_, err := NewTranslator().TranslateSource("IF THEN ENDIF")
	require.Error(t, err)

	var syntaxErr *SyntaxError
	assert.ErrorAs(t, err, &syntaxErr)
}
