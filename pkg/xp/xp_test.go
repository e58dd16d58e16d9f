// pkg/xp/xp_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

func testLogger() *log.Logger { return nil }

func testDatabase(t *testing.T) *db.Database {
	t.Helper()

	d, err := db.Open(filepath.Join(t.TempDir(), "test.sqlite"), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })

	for _, script := range []string{"drop_schema", "create_schema"} {
		if err := d.RunScript(script); err != nil {
			t.Fatalf("%s: %v", script, err)
		}
	}
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}
	return d
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testContext(d *db.Database) *Context {
	return &Context{
		FileName: "test.dat",
		FileID:   1,
		Index:    db.NewAirportIndex(),
	}
}

const fixFile = `I
1101 Version - data cycle 2406, build 20240606, metadata FixXP1101.

28.000708333  -83.423330556 KNOST ENRT K7 2105430 NAMED FIX
50.051111111    8.633888889 FN053 EDDF ED 4464713
garbage line
99
`

func TestLoadFixFile(t *testing.T) {
	d := testDatabase(t)
	ctx := testContext(d)

	fixes := NewFixIndex()
	var ids Counters
	r, err := NewFixReader(d, fixes, &ids, false, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	path := writeTestFile(t, "earth_fix.dat", fixFile)
	if err := LoadFile(path, r, ctx, testLogger()); err != nil {
		t.Fatal(err)
	}
	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}

	if ctx.Cycle != "2406" {
		t.Errorf("cycle = %q, want 2406", ctx.Cycle)
	}

	var n int
	if err := d.QueryRow("SELECT count(1) FROM waypoint").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("got %d waypoints, want 2", n)
	}

	var name, airportIdent string
	err = d.QueryRow(`
		SELECT name, ifnull(airport_ident, '') FROM waypoint
		WHERE ident = 'KNOST'`).Scan(&name, &airportIdent)
	if err != nil {
		t.Fatal(err)
	}
	if name != "NAMED FIX" || airportIdent != "" {
		t.Errorf("KNOST = %q/%q", name, airportIdent)
	}

	if _, ok := fixes.ID("FN053", "ED"); !ok {
		t.Error("FN053 not indexed")
	}
}

const navFile = `I
1150 Version - data cycle 2406, build 20240606, metadata NavXP1150.

2  50.100000000   8.400000000    350 385    50    0.0 FFN ENRT ED FRANKFURT NDB
3  50.050000000   8.630000000    330 11430 130    2.0 FFM ENRT ED FRANKFURT VORTAC
12 50.050100000   8.630100000    330 11430 130    0.0 FFM ENRT ED FRANKFURT VORTAC DME
4  50.030000000   8.550000000    330 11010  18  69.80 IFNE EDDF ED RW07C ILS-cat-III
6  50.035000000   8.560000000    330 11010  10 300069.80 IFNE EDDF ED RW07C GS
12 50.031000000   8.551000000    330 11010  18    0.0 IFNE EDDF ED RW07C DME-ILS
99
`

func TestLoadNavFile(t *testing.T) {
	d := testDatabase(t)
	ctx := testContext(d)
	ctx.Index.AddAirport("EDDF", 1)
	ctx.Index.AddRunwayEnd("EDDF", "07C", 42)

	fixes := NewFixIndex()
	var ids Counters
	r, err := NewNavReader(d, fixes, &ids, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	path := writeTestFile(t, "earth_nav.dat", navFile)
	if err := LoadFile(path, r, ctx, testLogger()); err != nil {
		t.Fatal(err)
	}
	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}

	// NDB with its shadow waypoint
	var freq int
	var typ string
	err = d.QueryRow("SELECT frequency, type FROM ndb WHERE ident = 'FFN'").
		Scan(&freq, &typ)
	if err != nil {
		t.Fatal(err)
	}
	if freq != 3850 || typ != "H" {
		t.Errorf("ndb = %d/%s, want 3850/H", freq, typ)
	}

	// VORTAC by name suffix, paired DME backfilled
	var vorType string
	var dmeLon float64
	err = d.QueryRow(`
		SELECT type, ifnull(dme_lonx, 0) FROM vor WHERE ident = 'FFM'`).
		Scan(&vorType, &dmeLon)
	if err != nil {
		t.Fatal(err)
	}
	if vorType != "VTH" {
		t.Errorf("vor type = %s, want VTH", vorType)
	}
	if dmeLon == 0 {
		t.Error("paired DME not attached to VOR")
	}

	// navaids show up as waypoints for the airway graph
	var numNavWp int
	err = d.QueryRow(`
		SELECT count(1) FROM waypoint WHERE type IN ('V', 'N')`).Scan(&numNavWp)
	if err != nil {
		t.Fatal(err)
	}
	if numNavWp != 2 {
		t.Errorf("got %d navaid waypoints, want 2", numNavWp)
	}

	// localizer, glideslope and DME assembled into one ILS
	var ilsCount int
	if err := d.QueryRow("SELECT count(1) FROM ils").Scan(&ilsCount); err != nil {
		t.Fatal(err)
	}
	if ilsCount != 1 {
		t.Fatalf("got %d ils rows, want 1", ilsCount)
	}

	var runway string
	var endID int64
	var pitch float64
	err = d.QueryRow(`
		SELECT loc_runway_name, loc_runway_end_id, gs_pitch FROM ils
		WHERE ident = 'IFNE'`).Scan(&runway, &endID, &pitch)
	if err != nil {
		t.Fatal(err)
	}
	if runway != "07C" || endID != 42 {
		t.Errorf("ils runway = %s/%d, want 07C/42", runway, endID)
	}
	if pitch < 2.99 || pitch > 3.01 {
		t.Errorf("gs pitch = %f, want 3.0", pitch)
	}
}

const airwayFile = `I
1100 Version - data cycle 2406, build 20240606, metadata AwyXP1100.

ABCDE ED 11 FGHIJ ED 11 N 2 180 450 J5
FGHIJ ED 11 KLMNO ED 11 F 2 180 450 J5-J7
99
`

func TestLoadAirwayFile(t *testing.T) {
	d := testDatabase(t)
	ctx := testContext(d)

	fixes := NewFixIndex()
	var ids Counters
	fr, err := NewFixReader(d, fixes, &ids, false, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()

	fixLines := `I
1101 Version - data cycle 2406, build 20240606, metadata FixXP1101.

50.0 8.0 ABCDE ENRT ED 2105430
50.0 9.0 FGHIJ ENRT ED 2105430
50.0 10.0 KLMNO ENRT ED 2105430
99
`
	path := writeTestFile(t, "earth_fix.dat", fixLines)
	if err := LoadFile(path, fr, ctx, testLogger()); err != nil {
		t.Fatal(err)
	}

	ar, err := NewAirwayReader(d, fixes, &ids, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer ar.Close()

	path = writeTestFile(t, "earth_awy.dat", airwayFile)
	if err := LoadFile(path, ar, ctx, testLogger()); err != nil {
		t.Fatal(err)
	}

	// second line carries two airways
	var numFragments int
	if err := d.QueryRow("SELECT count(1) FROM airway_point").Scan(&numFragments); err != nil {
		t.Fatal(err)
	}
	if numFragments != 3 {
		t.Errorf("got %d fragments, want 3", numFragments)
	}

	// airway counts backfilled for routing
	var numJet int
	err = d.QueryRow(`
		SELECT num_jet_airway FROM waypoint WHERE ident = 'FGHIJ'`).Scan(&numJet)
	if err != nil {
		t.Fatal(err)
	}
	if numJet != 2 {
		t.Errorf("num_jet_airway = %d, want 2", numJet)
	}

	// resolver stitches J5 across both lines
	n, err := db.ResolveAirways(d, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("resolved %d segments, want 3", n)
	}

	var segJ5 int
	err = d.QueryRow(`
		SELECT count(1) FROM airway WHERE airway_name = 'J5'`).Scan(&segJ5)
	if err != nil {
		t.Fatal(err)
	}
	if segJ5 != 2 {
		t.Errorf("J5 has %d segments, want 2", segJ5)
	}

	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}
}

const cifpFile = `APPCH:010,I,I07C, ,CF07C,ED,P,C,E  A,L,   ,IF, , , , ,    ,    ,0698,    ,P,C,+,02000,     ,     , ,   ,-300, , , , ,;
APPCH:020,I,I07C, ,RW07C,ED,P,G,GM A, ,   ,TF, , , , ,    ,    ,0698,0040,P,G, ,00364,     ,     , ,   , ,   ,-300, , , , ,;
APPCH:010,I,I07C,DF633,DF633,ED,P,C,E  A, ,   ,IF, , , , ,    ,    ,    ,    ,P,C,+,04000,     ,     , ,   , ,   ,    , , , , ,;
SID:010,5,ANEK1A,RW07C,ANEKI,ED,E,A,E   , ,   ,IF, , , , ,    ,    ,    ,    ,E,A, ,     ,     ,     , ,   , ,   ,    , , , , ,;
`

func TestLoadCifp(t *testing.T) {
	d := testDatabase(t)
	ctx := testContext(d)
	ctx.Index.AddAirport("EDDF", 1)
	ctx.Index.AddRunwayEnd("EDDF", "07C", 42)

	var ids Counters
	r, err := NewCifpReader(d, &ids, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	path := writeTestFile(t, "EDDF.dat", cifpFile)
	if err := r.LoadCifp(path, "EDDF", ctx); err != nil {
		t.Fatal(err)
	}
	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}

	if !r.HasSidStar {
		t.Error("SID not flagged")
	}

	// one approach and one SID
	var numApproach int
	if err := d.QueryRow("SELECT count(1) FROM approach").Scan(&numApproach); err != nil {
		t.Fatal(err)
	}
	if numApproach != 2 {
		t.Fatalf("got %d procedures, want 2", numApproach)
	}

	var typ, runway string
	var endID int64
	err = d.QueryRow(`
		SELECT type, runway_name, runway_end_id FROM approach
		WHERE arinc_name = 'I07C'`).Scan(&typ, &runway, &endID)
	if err != nil {
		t.Fatal(err)
	}
	if typ != "ILS" || runway != "07C" || endID != 42 {
		t.Errorf("approach = %s/%s/%d", typ, runway, endID)
	}

	// the DF633 legs went into a transition
	var numTrans, numLegs int
	if err := d.QueryRow("SELECT count(1) FROM transition").Scan(&numTrans); err != nil {
		t.Fatal(err)
	}
	if err := d.QueryRow("SELECT count(1) FROM approach_leg").Scan(&numLegs); err != nil {
		t.Fatal(err)
	}
	if numTrans != 1 || numLegs != 4 {
		t.Errorf("transitions/legs = %d/%d, want 1/4", numTrans, numLegs)
	}

	// tenth-scaled course and FL-style altitude conversions
	var course float64
	var alt int
	err = d.QueryRow(`
		SELECT course, altitude1 FROM approach_leg
		WHERE fix_ident = 'CF07C'`).Scan(&course, &alt)
	if err != nil {
		t.Fatal(err)
	}
	if course < 69.7 || course > 69.9 {
		t.Errorf("course = %f, want 69.8", course)
	}
	if alt != 2000 {
		t.Errorf("altitude1 = %d, want 2000", alt)
	}
}

const moraFile = `I
1100 Version - data cycle 2406, build 20240606, metadata MORAXP1100.

50 8 021 022 023 024 025 026 027 028 029 030 031 032 033 034 035 UNK 037 038 039 040 041 042 043 044 045 046 047 048 049 050
99
`

func TestLoadMora(t *testing.T) {
	d := testDatabase(t)
	ctx := testContext(d)

	w := db.NewWriters(d, nil, testLogger())
	r := NewMoraReader(w, testLogger())

	path := writeTestFile(t, "earth_mora.dat", moraFile)
	if err := LoadFile(path, r, ctx, testLogger()); err != nil {
		t.Fatal(err)
	}
	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}

	var cols, rows int
	var blob []byte
	err := d.QueryRow(`
		SELECT lonx_columns, laty_rows, geometry FROM mora_grid`).
		Scan(&cols, &rows, &blob)
	if err != nil {
		t.Fatal(err)
	}
	if cols != 360 || rows != 180 {
		t.Errorf("grid = %dx%d, want 360x180", cols, rows)
	}
	if len(blob) == 0 {
		t.Error("empty geometry blob")
	}
}

const msaFile = `I
1100 Version - data cycle 2406, build 20240606, metadata MSAXP1100.

3 FFM ED EDDF M 270 076 25 090 053 25 000 000 0
99
`

func TestLoadMsa(t *testing.T) {
	d := testDatabase(t)
	ctx := testContext(d)
	ctx.Index.AddAirport("EDDF", 1)

	fixes := NewFixIndex()
	fixes.Add("FFM", "ED", 7, geo.NewPos(8.63, 50.05))

	w := db.NewWriters(d, nil, testLogger())
	r := NewMsaReader(w, fixes, testLogger())

	path := writeTestFile(t, "earth_msa.dat", msaFile)
	if err := LoadFile(path, r, ctx, testLogger()); err != nil {
		t.Fatal(err)
	}
	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}

	var navType string
	var radius float64
	var blob []byte
	err := d.QueryRow(`
		SELECT nav_type, radius, geometry FROM airport_msa`).
		Scan(&navType, &radius, &blob)
	if err != nil {
		t.Fatal(err)
	}
	if navType != "V" || radius != 25 {
		t.Errorf("msa = %s/%f, want V/25", navType, radius)
	}
	if len(blob) == 0 {
		t.Error("empty geometry blob")
	}
}
