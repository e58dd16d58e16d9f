// pkg/db/report.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
)

// Report is a post-compile sanity summary of the database.
type Report struct {
	TableCounts map[string]int

	// idents appearing more than once per table after deduplication
	Duplicates map[string][]DuplicateIdent

	// rows with coordinates outside the valid lon/lat range
	CoordinateViolations map[string]int

	// value distribution of the enum-like columns, keyed table.column
	ValueHistograms map[string]map[string]int

	// airway chain fan-out: fragments per airway name, largest first
	LargestAirways []AirwayStat
}

type DuplicateIdent struct {
	Ident string
	Count int
}

type AirwayStat struct {
	Name      string
	Fragments int
	Segments  int
}

var reportTables = []string{
	"scenery_area", "bgl_file", "airport", "runway", "runway_end", "com",
	"parking", "start", "helipad", "apron", "taxi_path", "approach",
	"transition", "approach_leg", "waypoint", "vor", "tacan", "ndb",
	"marker", "ils", "boundary", "airway", "airport_msa", "mora_grid",
	"nav_search", "route_node", "route_edge",
}

var identTables = []string{"airport", "vor", "ndb", "waypoint"}

var coordTables = []string{"airport", "vor", "ndb", "waypoint", "marker", "ils"}

// histogramColumns are the enum-like columns whose value distribution
// makes format regressions visible at a glance.
var histogramColumns = [][2]string{
	{"vor", "type"}, {"ndb", "type"}, {"waypoint", "type"},
	{"marker", "type"}, {"approach", "type"}, {"approach_leg", "type"},
	{"airway", "airway_type"}, {"runway", "surface"}, {"com", "type"},
	{"boundary", "type"},
}

// CollectReport gathers the summary. Queries run against the open
// transaction so the report sees uncommitted work.
func CollectReport(d *Database) (*Report, error) {
	rep := &Report{
		TableCounts:          make(map[string]int),
		Duplicates:           make(map[string][]DuplicateIdent),
		CoordinateViolations: make(map[string]int),
		ValueHistograms:      make(map[string]map[string]int),
	}

	for _, table := range reportTables {
		var n int
		err := d.QueryRow("SELECT count(1) FROM " + table).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		rep.TableCounts[table] = n
	}

	for _, table := range identTables {
		rows, err := d.Query(`
			SELECT ident, count(1) FROM ` + table + `
			GROUP BY ident, region HAVING count(1) > 1
			ORDER BY count(1) DESC, ident LIMIT 20`)
		if err != nil {
			return nil, fmt.Errorf("duplicates %s: %w", table, err)
		}
		for rows.Next() {
			var dup DuplicateIdent
			if err := rows.Scan(&dup.Ident, &dup.Count); err != nil {
				rows.Close()
				return nil, err
			}
			rep.Duplicates[table] = append(rep.Duplicates[table], dup)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	for _, table := range coordTables {
		var n int
		err := d.QueryRow(`
			SELECT count(1) FROM ` + table + `
			WHERE lonx < -180 OR lonx > 180 OR laty < -90 OR laty > 90`).Scan(&n)
		if err != nil {
			return nil, fmt.Errorf("coordinates %s: %w", table, err)
		}
		if n > 0 {
			rep.CoordinateViolations[table] = n
		}
	}

	for _, tc := range histogramColumns {
		table, col := tc[0], tc[1]
		rows, err := d.Query(fmt.Sprintf(
			`SELECT coalesce(%s, 'NULL'), count(1) FROM %s GROUP BY %s`,
			col, table, col))
		if err != nil {
			return nil, fmt.Errorf("histogram %s.%s: %w", table, col, err)
		}
		hist := make(map[string]int)
		for rows.Next() {
			var value string
			var n int
			if err := rows.Scan(&value, &n); err != nil {
				rows.Close()
				return nil, err
			}
			hist[value] = n
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
		if len(hist) > 0 {
			rep.ValueHistograms[table+"."+col] = hist
		}
	}

	rows, err := d.Query(`
		SELECT airway_name, max(airway_fragment_no), count(1) FROM airway
		GROUP BY airway_name ORDER BY count(1) DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("airway stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var s AirwayStat
		if err := rows.Scan(&s.Name, &s.Fragments, &s.Segments); err != nil {
			return nil, err
		}
		rep.LargestAirways = append(rep.LargestAirways, s)
	}
	return rep, rows.Err()
}

// Dump writes the report in spew's verbose form for bug reports.
func (r *Report) Dump(w io.Writer) {
	cfg := spew.ConfigState{Indent: "  ", SortKeys: true}
	cfg.Fdump(w, r)
}
