package comet

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Archive persists translation runs in SQLite, keyed by a generated run
// ID. The JSON artifact doubles as the archival format: LoadProgram
// reconstructs the tree straight from a stored row.
type Archive struct {
	db *sql.DB
}

// Run is one archived translation: the source text and every artifact
// derived from it.
type Run struct {
	ID        string
	Filename  string
	Source    string
	JSON      string
	DSL       string
	Mermaid   string
	DOT       string
	CreatedAt time.Time
}

func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}

	return a, nil
}

func (a *Archive) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		source TEXT NOT NULL,
		json TEXT NOT NULL,
		dsl TEXT NOT NULL,
		mermaid TEXT NOT NULL,
		dot TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_filename ON runs(filename);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := a.db.Exec(schema)
	return err
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// SaveRun stores the artifacts of one translation and returns its run ID.
func (a *Archive) SaveRun(source string, artifacts *Artifacts) (string, error) {
	id := uuid.New().String()

	_, err := a.db.Exec(
		`INSERT INTO runs (id, filename, source, json, dsl, mermaid, dot, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		artifacts.Program.Filename,
		source,
		string(artifacts.JSON),
		artifacts.DSL,
		artifacts.Diagram.Mermaid(),
		artifacts.Diagram.DOT(),
		time.Now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	return id, nil
}

func (a *Archive) LoadRun(id string) (*Run, error) {
	row := a.db.QueryRow(
		`SELECT id, filename, source, json, dsl, mermaid, dot, created_at
		 FROM runs WHERE id = ?`, id)

	var run Run
	err := row.Scan(&run.ID, &run.Filename, &run.Source, &run.JSON,
		&run.DSL, &run.Mermaid, &run.DOT, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}

	if err != nil {
		return nil, fmt.Errorf("load run: %w", err)
	}

	return &run, nil
}

// LoadProgram rebuilds the archived AST of a run from its JSON artifact.
func (a *Archive) LoadProgram(id string) (*Program, error) {
	run, err := a.LoadRun(id)
	if err != nil {
		return nil, err
	}

	return DecodeProgram([]byte(run.JSON))
}

// ListRuns returns run metadata, most recent first. The artifact columns
// are left empty; LoadRun fetches the full row.
func (a *Archive) ListRuns(limit int) ([]Run, error) {
	rows, err := a.db.Query(
		`SELECT id, filename, created_at FROM runs
		 ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Filename, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}
