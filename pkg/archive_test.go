package comet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()

	a, err := OpenArchive(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	return a
}

func translateSource(t *testing.T, source string) *Artifacts {
	t.Helper()

	artifacts, err := NewTranslator().TranslateSource(source)
	require.NoError(t, err)

	return artifacts
}

func TestArchiveSaveLoad(t *testing.T) {
	a := openTestArchive(t)

	source := "x := 5;\nOUTPUT x;\n"
	id, err := a.SaveRun(source, translateSource(t, source))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := a.LoadRun(id)
	require.NoError(t, err)

	assert.Equal(t, id, run.ID)
	assert.Equal(t, "input", run.Filename)
	assert.Equal(t, source, run.Source)
	assert.Equal(t, "x := 5;\nOUTPUT x;\n", run.DSL)
	assert.Contains(t, run.JSON, `"type": "Program"`)
	assert.Contains(t, run.Mermaid, "flowchart TD")
	assert.Contains(t, run.DOT, "digraph flowchart")
	assert.False(t, run.CreatedAt.IsZero())
}

func TestArchiveLoadProgram(t *testing.T) {
	a := openTestArchive(t)

	source := "IF x > 0 THEN OUTPUT x; ENDIF"
	artifacts := translateSource(t, source)

	id, err := a.SaveRun(source, artifacts)
	require.NoError(t, err)

	prog, err := a.LoadProgram(id)
	require.NoError(t, err)

	// The archived tree is identical to the one that was stored
	assert.Equal(t, artifacts.Program, prog)
}

func TestArchiveLoadMissingRun(t *testing.T) {
	a := openTestArchive(t)

	_, err := a.LoadRun("no-such-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestArchiveListRuns(t *testing.T) {
	a := openTestArchive(t)

	var ids []string
	for _, source := range []string{"x := 1;", "x := 2;", "x := 3;"} {
		id, err := a.SaveRun(source, translateSource(t, source))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := a.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	seen := map[string]bool{}
	for _, run := range runs {
		seen[run.ID] = true
		assert.Equal(t, "input", run.Filename)
		assert.Empty(t, run.Source, "list returns metadata only")
	}

	for _, id := range ids {
		assert.True(t, seen[id])
	}
}

func TestArchiveListLimit(t *testing.T) {
	a := openTestArchive(t)

	for i := 0; i < 5; i++ {
		_, err := a.SaveRun("x := 1;", translateSource(t, "x := 1;"))
		require.NoError(t, err)
	}

	runs, err := a.ListRuns(2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
