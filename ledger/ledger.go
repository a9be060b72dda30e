package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Custom errors for ledger operations
var (
	ErrNotFound        = errors.New("record not found")
	ErrIdentifierTaken = errors.New("identifier already belongs to another article")
)

// Ledger records which articles were published under which identifier, and
// the runs that published them, in SQLite.
type Ledger struct {
	db  *sql.DB
	now func() time.Time
}

// Record is one published article.
type Record struct {
	SourceURL   string    `json:"source_url"`
	Identifier  string    `json:"identifier"`
	Title       string    `json:"title"`
	Date        string    `json:"date"`
	RunID       uuid.UUID `json:"run_id"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Counts summarizes one run.
type Counts struct {
	Discovered int `json:"discovered"`
	Written    int `json:"written"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
	Collisions int `json:"collisions"`
}

// Run is one invocation of the pipeline.
type Run struct {
	RunID      uuid.UUID  `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Counts     Counts     `json:"counts"`
}

// Open opens (creating if needed) the ledger database at path.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, now: time.Now}
	if err := l.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return l, nil
}

// initSchema creates the articles and runs tables if they don't exist.
func (l *Ledger) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		source_url TEXT PRIMARY KEY,
		identifier TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		date TEXT NOT NULL,
		run_id TEXT NOT NULL,
		first_seen_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		discovered INTEGER DEFAULT 0,
		written INTEGER DEFAULT 0,
		skipped INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		collisions INTEGER DEFAULT 0
	);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// BeginRun records the start of a run.
func (l *Ledger) BeginRun() (*Run, error) {
	run := &Run{
		RunID:     uuid.New(),
		StartedAt: l.now(),
	}

	_, err := l.db.Exec(
		"INSERT INTO runs (run_id, started_at) VALUES (?, ?)",
		run.RunID.String(), formatTime(&run.StartedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run, nil
}

// FinishRun stores the final counts of a run.
func (l *Ledger) FinishRun(runID uuid.UUID, counts Counts) error {
	now := l.now()
	result, err := l.db.Exec(`
		UPDATE runs
		SET finished_at = ?, discovered = ?, written = ?, skipped = ?, failed = ?, collisions = ?
		WHERE run_id = ?`,
		formatTime(&now), counts.Discovered, counts.Written, counts.Skipped,
		counts.Failed, counts.Collisions, runID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// GetRun retrieves a run by ID.
func (l *Ledger) GetRun(runID uuid.UUID) (*Run, error) {
	var startedAt string
	var finishedAt sql.NullString
	run := &Run{RunID: runID}

	err := l.db.QueryRow(`
		SELECT started_at, finished_at, discovered, written, skipped, failed, collisions
		FROM runs WHERE run_id = ?`, runID.String(),
	).Scan(
		&startedAt, &finishedAt,
		&run.Counts.Discovered, &run.Counts.Written, &run.Counts.Skipped,
		&run.Counts.Failed, &run.Counts.Collisions,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		t := parseTime(finishedAt.String)
		run.FinishedAt = &t
	}

	return run, nil
}

// IdentifierFor returns the identifier previously assigned to sourceURL.
func (l *Ledger) IdentifierFor(sourceURL string) (string, bool, error) {
	var identifier string
	err := l.db.QueryRow(
		"SELECT identifier FROM articles WHERE source_url = ?", sourceURL,
	).Scan(&identifier)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query identifier: %w", err)
	}
	return identifier, true, nil
}

// OwnerOf returns the source URL that holds identifier.
func (l *Ledger) OwnerOf(identifier string) (string, bool, error) {
	var sourceURL string
	err := l.db.QueryRow(
		"SELECT source_url FROM articles WHERE identifier = ?", identifier,
	).Scan(&sourceURL)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query owner: %w", err)
	}
	return sourceURL, true, nil
}

// Upsert records a published article. An existing record for the same
// source URL keeps its first_seen_at.
func (l *Ledger) Upsert(rec Record) error {
	now := l.now()

	_, err := l.db.Exec(`
		INSERT INTO articles (
			source_url, identifier, title, date, run_id, first_seen_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			identifier = excluded.identifier,
			title = excluded.title,
			date = excluded.date,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at`,
		rec.SourceURL, rec.Identifier, rec.Title, rec.Date, rec.RunID.String(),
		formatTime(&now), formatTime(&now),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("%w: %s", ErrIdentifierTaken, rec.Identifier)
		}
		return fmt.Errorf("failed to upsert article: %w", err)
	}

	return nil
}

// Get retrieves the record for sourceURL.
func (l *Ledger) Get(sourceURL string) (*Record, error) {
	row := l.db.QueryRow(`
		SELECT source_url, identifier, title, date, run_id, first_seen_at, updated_at
		FROM articles WHERE source_url = ?`, sourceURL)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query article: %w", err)
	}
	return rec, nil
}

// List returns records, most recently updated first. A limit of 0 returns
// every record.
func (l *Ledger) List(limit int) ([]Record, error) {
	query := `
		SELECT source_url, identifier, title, date, run_id, first_seen_at, updated_at
		FROM articles
		ORDER BY updated_at DESC, source_url
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := l.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		records = append(records, *rec)
	}

	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord parses one articles row.
func scanRecord(s scanner) (*Record, error) {
	var rec Record
	var runID, firstSeenAt, updatedAt string

	if err := s.Scan(
		&rec.SourceURL, &rec.Identifier, &rec.Title, &rec.Date,
		&runID, &firstSeenAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run ID: %w", err)
	}
	rec.RunID = id
	rec.FirstSeenAt = parseTime(firstSeenAt)
	rec.UpdatedAt = parseTime(updatedAt)

	return &rec, nil
}

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Truncate(0).Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
