// pkg/db/db.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package db owns the output database: schema creation, the object
// writers that bind parsed records to parameterized inserts, the
// post-load SQL passes and the airway/routing graph builders.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/fsnav/navdbc/pkg/log"
)

//go:embed sql/*.sql
var sqlScripts embed.FS

// Database wraps the single connection the pipeline writes through.
type Database struct {
	db *sql.DB
	tx *sql.Tx
	lg *log.Logger
}

func Open(path string, lg *log.Logger) (*Database, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One writer, no concurrent access
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = MEMORY",
		"PRAGMA synchronous = OFF",
		"PRAGMA foreign_keys = OFF",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &Database{db: db, lg: lg}, nil
}

func (d *Database) Close() error {
	if d.tx != nil {
		d.tx.Rollback()
		d.tx = nil
	}
	return d.db.Close()
}

// Begin opens the long-lived transaction a pipeline phase writes in.
func (d *Database) Begin() error {
	if d.tx != nil {
		return fmt.Errorf("transaction already open")
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	d.tx = tx
	return nil
}

func (d *Database) Commit() error {
	if d.tx == nil {
		return nil
	}
	err := d.tx.Commit()
	d.tx = nil
	return err
}

func (d *Database) Rollback() error {
	if d.tx == nil {
		return nil
	}
	err := d.tx.Rollback()
	d.tx = nil
	return err
}

// Exec runs against the open transaction if any, the bare connection
// otherwise.
func (d *Database) Exec(query string, args ...any) (sql.Result, error) {
	if d.tx != nil {
		return d.tx.Exec(query, args...)
	}
	return d.db.Exec(query, args...)
}

func (d *Database) Query(query string, args ...any) (*sql.Rows, error) {
	if d.tx != nil {
		return d.tx.Query(query, args...)
	}
	return d.db.Query(query, args...)
}

func (d *Database) QueryRow(query string, args ...any) *sql.Row {
	if d.tx != nil {
		return d.tx.QueryRow(query, args...)
	}
	return d.db.QueryRow(query, args...)
}

func (d *Database) Prepare(query string) (*sql.Stmt, error) {
	if d.tx != nil {
		return d.tx.Prepare(query)
	}
	return d.db.Prepare(query)
}

// RunScript executes one embedded SQL script statement by statement.
// The scripts are parameterless and treated as opaque; statements are
// separated by semicolons at line ends.
func (d *Database) RunScript(name string) error {
	data, err := sqlScripts.ReadFile("sql/" + name + ".sql")
	if err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}

	for _, stmt := range splitScript(string(data)) {
		if _, err := d.Exec(stmt); err != nil {
			return fmt.Errorf("script %s: %w\n%s", name, err, stmt)
		}
	}
	d.lg.Debugf("ran script %s", name)
	return nil
}

// splitScript splits on semicolons that terminate a line, skipping
// comment-only lines. Good enough for our own scripts; not a general
// SQL parser.
func splitScript(script string) []string {
	var stmts []string
	var cur strings.Builder

	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmts = append(stmts, cur.String())
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		stmts = append(stmts, s)
	}
	return stmts
}

// Analyze updates the query planner statistics between phases.
func (d *Database) Analyze() error {
	_, err := d.Exec("ANALYZE")
	return err
}
