// pkg/db/airway_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"testing"
)

// insertAirwayFixture adds a waypoint plus one airway_point fragment:
// the edge from the fix to its next neighbor on the airway.
func insertAirwayFixture(t *testing.T, d *Database, id int64, airway, ident, next string, lonx, laty float64) {
	t.Helper()

	_, err := d.Exec(`
		INSERT INTO waypoint (waypoint_id, file_id, ident, region, type,
			num_victor_airway, num_jet_airway, mag_var, lonx, laty)
		VALUES (?, 1, ?, 'ED', 'WN', 0, 1, 0, ?, ?)`,
		id, ident, lonx, laty)
	if err != nil {
		t.Fatal(err)
	}

	var nextIdent, nextRegion any
	if next != "" {
		nextIdent, nextRegion = next, "ED"
	}
	_, err = d.Exec(`
		INSERT INTO airway_point (airway_point_id, waypoint_id, name, type,
			mid_ident, mid_region, next_ident, next_region, minimum_altitude)
		VALUES (?, ?, ?, 'J', ?, 'ED', ?, ?, 10000)`,
		id, id, airway, ident, nextIdent, nextRegion)
	if err != nil {
		t.Fatal(err)
	}
}

func airwayChain(t *testing.T, d *Database, name string) []string {
	t.Helper()

	rows, err := d.Query(`
		SELECT wf.ident, wt.ident, a.airway_fragment_no, a.sequence_no
		FROM airway a
		JOIN waypoint wf ON a.from_waypoint_id = wf.waypoint_id
		JOIN waypoint wt ON a.to_waypoint_id = wt.waypoint_id
		WHERE a.airway_name = ?
		ORDER BY a.airway_fragment_no, a.sequence_no`, name)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	var chain []string
	lastSeq := 0
	for rows.Next() {
		var from, to string
		var fragment, seq int
		if err := rows.Scan(&from, &to, &fragment, &seq); err != nil {
			t.Fatal(err)
		}
		if seq != lastSeq+1 && seq != 1 {
			t.Errorf("airway %s: sequence jump %d -> %d", name, lastSeq, seq)
		}
		lastSeq = seq
		if len(chain) == 0 || seq == 1 {
			chain = append(chain, from)
		}
		chain = append(chain, to)
	}
	return chain
}

func TestResolveAirwayChain(t *testing.T) {
	d := testDatabase(t)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	// fragments arrive unordered: (C->D), (A->B), (B->C), (E->A)
	insertAirwayFixture(t, d, 1, "J5", "C", "D", 10, 50)
	insertAirwayFixture(t, d, 2, "J5", "A", "B", 8, 50)
	insertAirwayFixture(t, d, 3, "J5", "B", "C", 9, 50)
	insertAirwayFixture(t, d, 4, "J5", "E", "A", 7, 50)
	insertAirwayFixture(t, d, 5, "J5", "D", "", 11, 50)

	n, err := ResolveAirways(d, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("wrote %d segments, want 4", n)
	}

	chain := airwayChain(t, d, "J5")
	want := []string{"E", "A", "B", "C", "D"}
	if len(chain) != len(want) {
		t.Fatalf("chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("chain = %v, want %v", chain, want)
		}
	}

	var minAlt int
	err = d.QueryRow(`SELECT min(minimum_altitude) FROM airway`).Scan(&minAlt)
	if err != nil {
		t.Fatal(err)
	}
	if minAlt != 10000 {
		t.Errorf("minimum altitude = %d, want 10000", minAlt)
	}

	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestResolveAirwayBrokenEdge(t *testing.T) {
	d := testDatabase(t)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	// B points at a fix that never shows up; the edge is dropped but
	// the A->B segment survives.
	insertAirwayFixture(t, d, 1, "V1", "A", "B", 8, 50)
	insertAirwayFixture(t, d, 2, "V1", "B", "GONE", 9, 50)

	n, err := ResolveAirways(d, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("wrote %d segments, want 1", n)
	}

	chain := airwayChain(t, d, "V1")
	if len(chain) != 2 || chain[0] != "A" || chain[1] != "B" {
		t.Errorf("chain = %v, want [A B]", chain)
	}
}

func TestResolveAirwayLoop(t *testing.T) {
	d := testDatabase(t)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	// closed triangle; the cut lands on the lexically smallest fix
	insertAirwayFixture(t, d, 1, "V9", "M", "Q", 8, 50)
	insertAirwayFixture(t, d, 2, "V9", "Q", "K", 9, 50)
	insertAirwayFixture(t, d, 3, "V9", "K", "M", 10, 50)

	n, err := ResolveAirways(d, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("wrote %d segments, want 3", n)
	}

	chain := airwayChain(t, d, "V9")
	want := []string{"K", "M", "Q", "K"}
	if len(chain) != len(want) {
		t.Fatalf("chain = %v, want %v", chain, want)
	}
	for i := range want {
		if chain[i] != want[i] {
			t.Fatalf("chain = %v, want %v", chain, want)
		}
	}
}

func TestResolveAirwaysTwoFragments(t *testing.T) {
	d := testDatabase(t)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	// two disjoint pieces of the same airway become two fragments
	insertAirwayFixture(t, d, 1, "J80", "A", "B", 8, 50)
	insertAirwayFixture(t, d, 2, "J80", "B", "", 9, 50)
	insertAirwayFixture(t, d, 3, "J80", "X", "Y", 20, 50)
	insertAirwayFixture(t, d, 4, "J80", "Y", "", 21, 50)

	if _, err := ResolveAirways(d, testLogger()); err != nil {
		t.Fatal(err)
	}

	var numFragments int
	err := d.QueryRow(`
		SELECT count(DISTINCT airway_fragment_no) FROM airway
		WHERE airway_name = 'J80'`).Scan(&numFragments)
	if err != nil {
		t.Fatal(err)
	}
	if numFragments != 2 {
		t.Errorf("got %d fragments, want 2", numFragments)
	}
}
