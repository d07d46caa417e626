// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists completed runs to a local SQLite database so
// earlier results can be listed and re-read without querying the source
// APIs again.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/netscope/pkg/types"
)

const dbFile = "netscope.db"

// Store manages the run history SQLite database.
type Store struct {
	db *sql.DB
}

// RunSummary describes one recorded run for listings.
type RunSummary struct {
	ID         int64
	QueryType  string
	Target     string
	AssetCount int
	Warnings   []string
	CreatedAt  time.Time
}

// Open opens or creates the history database at dir/netscope.db, creating
// the schema if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
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
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query_type TEXT NOT NULL,
			target TEXT NOT NULL,
			asset_count INTEGER NOT NULL,
			warnings TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS assets (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id),
			host TEXT,
			ip TEXT,
			port INTEGER,
			title TEXT,
			domain TEXT,
			source TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_run_id ON assets(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores one target's deduplicated records and warnings, returning
// the run ID.
func (s *Store) Record(ctx context.Context, qt types.QueryType, target string,
	records []types.AssetRecord, warnings []string) (int64, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (query_type, target, asset_count, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(qt), target, len(records), strings.Join(warnings, "\n"),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assets (run_id, host, ip, port, title, domain, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing asset insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, runID, r.Host, r.IP, r.Port, r.Title, r.Domain, r.Source); err != nil {
			return 0, fmt.Errorf("inserting asset: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs lists recorded runs, newest first. An empty target lists all
// targets; limit <= 0 means no limit.
func (s *Store) Runs(ctx context.Context, target string, limit int) ([]RunSummary, error) {
	query := `SELECT id, query_type, target, asset_count, warnings, created_at FROM runs`
	var args []any
	if target != "" {
		query += ` WHERE target = ?`
		args = append(args, target)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var warnings, createdAt string
		if err := rows.Scan(&r.ID, &r.QueryType, &r.Target, &r.AssetCount, &warnings, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if warnings != "" {
			r.Warnings = strings.Split(warnings, "\n")
		}
		if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
			r.CreatedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Assets returns the records stored for one run, in insertion order.
func (s *Store) Assets(ctx context.Context, runID int64) ([]types.AssetRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT host, ip, port, title, domain, source FROM assets
		 WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var records []types.AssetRecord
	for rows.Next() {
		var r types.AssetRecord
		if err := rows.Scan(&r.Host, &r.IP, &r.Port, &r.Title, &r.Domain, &r.Source); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
