// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store writes filter results into a SQLite database, one run per
// invocation. The CSV outputs stay the primary artifacts; the database keeps
// every run side by side so result sets can be compared across rule edits.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/pdiddy/wos-filter/internal/classify"
	"github.com/pdiddy/wos-filter/pkg/types"
)

// RunMeta describes the inputs of a filter run.
type RunMeta struct {
	Input   string
	Rules   string
	Names   string
	PIScope types.PIScope
}

// Store wraps the results database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			input TEXT,
			rules TEXT,
			names TEXT,
			pi_scope TEXT,
			columns TEXT,
			summary TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS filtered_results (
			run_id TEXT NOT NULL REFERENCES runs(id),
			row_index INTEGER NOT NULL,
			ut TEXT,
			matched_term TEXT NOT NULL,
			matched_sentence TEXT NOT NULL,
			pi_names TEXT,
			record TEXT NOT NULL,
			PRIMARY KEY (run_id, row_index)
		)`,
		`CREATE TABLE IF NOT EXISTS pi_matches (
			run_id TEXT NOT NULL REFERENCES runs(id),
			row_index INTEGER NOT NULL,
			ut TEXT,
			pi_names TEXT NOT NULL,
			record TEXT NOT NULL,
			PRIMARY KEY (run_id, row_index)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_filtered_term ON filtered_results(matched_term)`,
		`CREATE INDEX IF NOT EXISTS idx_filtered_ut ON filtered_results(ut)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun registers a new run and returns its id, a ULID so ids sort by
// start time.
func (s *Store) BeginRun(ctx context.Context, meta RunMeta, columns []string) (string, error) {
	started := s.now().UTC()
	id, err := ulid.New(ulid.Timestamp(started), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generating run id: %w", err)
	}
	cols, err := json.Marshal(columns)
	if err != nil {
		return "", fmt.Errorf("encoding columns: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input, rules, names, pi_scope, columns) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), started.Format(time.RFC3339Nano), meta.Input, meta.Rules, meta.Names, string(meta.PIScope), string(cols))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id.String(), nil
}

// WriteResults stores the accepted and PI-matched records of a run in a
// single transaction.
func (s *Store) WriteResults(ctx context.Context, runID string, accepted, piMatches []types.AnnotatedRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	acc, err := tx.PrepareContext(ctx,
		`INSERT INTO filtered_results (run_id, row_index, ut, matched_term, matched_sentence, pi_names, record) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer acc.Close()

	for _, a := range accepted {
		rec, err := json.Marshal(a.Record)
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", a.Index, err)
		}
		if _, err := acc.ExecContext(ctx, runID, a.Index, a.Record.Get(types.ColumnUT),
			a.MatchedTerm, a.MatchedSentence, strings.Join(a.PINames, types.PINameSeparator), string(rec)); err != nil {
			return fmt.Errorf("inserting row %d: %w", a.Index, err)
		}
	}

	pis, err := tx.PrepareContext(ctx,
		`INSERT INTO pi_matches (run_id, row_index, ut, pi_names, record) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer pis.Close()

	for _, a := range piMatches {
		rec, err := json.Marshal(a.Record)
		if err != nil {
			return fmt.Errorf("encoding row %d: %w", a.Index, err)
		}
		if _, err := pis.ExecContext(ctx, runID, a.Index, a.Record.Get(types.ColumnUT),
			strings.Join(a.PINames, types.PINameSeparator), string(rec)); err != nil {
			return fmt.Errorf("inserting PI row %d: %w", a.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing results: %w", err)
	}
	return nil
}

// FinishRun records the run summary and completion time.
func (s *Store) FinishRun(ctx context.Context, runID string, summary classify.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, summary = ? WHERE id = ?`,
		s.now().UTC().Format(time.RFC3339Nano), string(data), runID)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unknown run %s", runID)
	}
	return nil
}

// Run is a stored run as read back by Runs.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Input      string
	Rules      string
	Summary    classify.Summary
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, COALESCE(finished_at, ''), COALESCE(input, ''), COALESCE(rules, ''), COALESCE(summary, '') FROM runs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished, summary string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Input, &r.Rules, &summary); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished != "" {
			r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		if summary != "" {
			if err := json.Unmarshal([]byte(summary), &r.Summary); err != nil {
				return nil, fmt.Errorf("decoding summary of run %s: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AcceptedRecords returns the accepted records of a run in input order.
func (s *Store) AcceptedRecords(ctx context.Context, runID string) ([]types.AnnotatedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_index, matched_term, matched_sentence, COALESCE(pi_names, ''), record FROM filtered_results WHERE run_id = ? ORDER BY row_index`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var out []types.AnnotatedRecord
	for rows.Next() {
		var a types.AnnotatedRecord
		var names, rec string
		if err := rows.Scan(&a.Index, &a.MatchedTerm, &a.MatchedSentence, &names, &rec); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if err := json.Unmarshal([]byte(rec), &a.Record); err != nil {
			return nil, fmt.Errorf("decoding row %d: %w", a.Index, err)
		}
		if names != "" {
			a.PINames = strings.Split(names, types.PINameSeparator)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
