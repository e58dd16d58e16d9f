// pkg/db/meta.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"time"
)

// SchemaVersion is bumped on any output schema change. Consumers check
// it against the metadata row before loading.
const SchemaVersion = 19

// Metadata describes one compiled database.
type Metadata struct {
	HasSidStar      bool
	AiracCycle      string
	ValidThrough    string
	DataSource      string // FSX, P3D, MSFS, XP11, XP12
	CompilerVersion string
}

// WriteMetadata replaces the metadata row.
func (w *Writers) WriteMetadata(m Metadata) error {
	if _, err := w.d.Exec(`DELETE FROM metadata`); err != nil {
		return err
	}

	var cycle, validThrough any
	if m.AiracCycle != "" {
		cycle = m.AiracCycle
	}
	if m.ValidThrough != "" {
		validThrough = m.ValidThrough
	}

	_, err := w.d.Exec(`
		INSERT INTO metadata (db_version, last_load_timestamp, has_sid_star,
			airac_cycle, valid_through, data_source, compiler_version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		SchemaVersion, time.Now().UTC().Format(time.RFC3339), m.HasSidStar,
		cycle, validThrough, nullStr(m.DataSource), nullStr(m.CompilerVersion))
	return err
}
