// Copyright (c) 2026 Marco Hald. All rights reserved.
// SPDX-License-Identifier: MIT

// Package journal persists pass history in a SQLite database so earlier
// suggestion batches can be reviewed and undone later.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS passes (
	id            TEXT PRIMARY KEY,
	function_name TEXT NOT NULL,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	suggestions   INTEGER NOT NULL,
	applied       INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS renames (
	pass_id  TEXT NOT NULL REFERENCES passes(id),
	old_name TEXT NOT NULL,
	new_name TEXT NOT NULL,
	reason   TEXT NOT NULL DEFAULT '',
	applied  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_renames_pass ON renames(pass_id);
`

// PassRecord is one completed analysis pass.
type PassRecord struct {
	ID          string
	Function    string
	Provider    string
	Model       string
	Suggestions int
	Applied     int
	CreatedAt   time.Time
}

// RenameRecord is one directive from a pass, applied or not.
type RenameRecord struct {
	PassID  string
	OldName string
	NewName string
	Reason  string
	Applied bool
}

// Journal wraps the history database. Safe for use from a single process;
// the database file lives next to the working directory's snapshots.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database and ensures the schema exists.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record stores a pass and its directives in one transaction. A missing ID
// or timestamp is filled in, and the stored ID is returned.
func (j *Journal) Record(pass PassRecord, renames []RenameRecord) (string, error) {
	if pass.ID == "" {
		pass.ID = uuid.NewString()
	}
	if pass.CreatedAt.IsZero() {
		pass.CreatedAt = time.Now().UTC()
	}

	tx, err := j.db.Begin()
	if err != nil {
		return "", fmt.Errorf("recording pass: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO passes (id, function_name, provider, model, suggestions, applied, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		pass.ID, pass.Function, pass.Provider, pass.Model,
		pass.Suggestions, pass.Applied, pass.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("recording pass: %w", err)
	}

	for _, r := range renames {
		_, err = tx.Exec(
			`INSERT INTO renames (pass_id, old_name, new_name, reason, applied)
			 VALUES (?, ?, ?, ?, ?)`,
			pass.ID, r.OldName, r.NewName, r.Reason, r.Applied,
		)
		if err != nil {
			return "", fmt.Errorf("recording rename: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("recording pass: %w", err)
	}
	return pass.ID, nil
}

// Recent returns the latest passes, newest first.
func (j *Journal) Recent(limit int) ([]PassRecord, error) {
	rows, err := j.db.Query(
		`SELECT id, function_name, provider, model, suggestions, applied, created_at
		 FROM passes ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing passes: %w", err)
	}
	defer rows.Close()

	var passes []PassRecord
	for rows.Next() {
		var p PassRecord
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Function, &p.Provider, &p.Model, &p.Suggestions, &p.Applied, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning pass: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

// Renames returns the directives recorded for one pass, in insert order.
func (j *Journal) Renames(passID string) ([]RenameRecord, error) {
	rows, err := j.db.Query(
		`SELECT pass_id, old_name, new_name, reason, applied
		 FROM renames WHERE pass_id = ? ORDER BY rowid`, passID)
	if err != nil {
		return nil, fmt.Errorf("listing renames: %w", err)
	}
	defer rows.Close()

	var renames []RenameRecord
	for rows.Next() {
		var r RenameRecord
		if err := rows.Scan(&r.PassID, &r.OldName, &r.NewName, &r.Reason, &r.Applied); err != nil {
			return nil, fmt.Errorf("scanning rename: %w", err)
		}
		renames = append(renames, r)
	}
	return renames, rows.Err()
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}
