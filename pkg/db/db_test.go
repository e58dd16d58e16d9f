// pkg/db/db_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnav/navdbc/pkg/bgl"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
	"github.com/fsnav/navdbc/pkg/scenery"
)

func testLogger() *log.Logger { return nil }

var scenery0 = scenery.Area{
	Number:    1,
	Title:     "Base Scenery",
	LocalPath: "Scenery/Base",
	Layer:     1,
	Active:    true,
	Required:  true,
}

func testDatabase(t *testing.T) *Database {
	t.Helper()

	d, err := Open(filepath.Join(t.TempDir(), "test.sqlite"), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })

	for _, script := range []string{"drop_schema", "create_schema"} {
		if err := d.RunScript(script); err != nil {
			t.Fatalf("%s: %v", script, err)
		}
	}
	return d
}

func TestSchemaScripts(t *testing.T) {
	d := testDatabase(t)

	// dropping and recreating on an existing schema must work too
	for _, script := range []string{"drop_schema", "create_schema",
		"create_indexes_post_load", "finish_schema"} {
		if err := d.RunScript(script); err != nil {
			t.Fatalf("%s: %v", script, err)
		}
	}

	var n int
	if err := d.QueryRow("SELECT count(1) FROM airport").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("got %d airport rows in empty schema", n)
	}
}

func TestIDGenerator(t *testing.T) {
	gen := newIDGenerator()
	if id := gen.ID("airport"); id != 1 {
		t.Errorf("first id = %d, want 1", id)
	}
	if id := gen.ID("airport"); id != 2 {
		t.Errorf("second id = %d, want 2", id)
	}
	if id := gen.ID("vor"); id != 1 {
		t.Errorf("separate table id = %d, want 1", id)
	}
	if cur := gen.Current("airport"); cur != 2 {
		t.Errorf("current = %d, want 2", cur)
	}
}

func TestAirportIndexFuzzyRunway(t *testing.T) {
	idx := NewAirportIndex()
	idx.AddAirport("EDDF", 1)
	idx.AddRunwayEnd("EDDF", "07C", 10)
	idx.AddRunwayEnd("EDDF", "25C", 11)

	if id, ok := idx.RunwayEndID("EDDF", "07C"); !ok || id != 10 {
		t.Errorf("exact lookup = %d, %v", id, ok)
	}
	// prefixed and shifted names resolve to the closest real end
	if id, ok := idx.RunwayEndIDFuzzy("EDDF", "RW07C"); !ok || id != 10 {
		t.Errorf("prefixed lookup = %d, %v", id, ok)
	}
	if id, ok := idx.RunwayEndIDFuzzy("EDDF", "08C"); !ok || id != 10 {
		t.Errorf("one-off lookup = %d, %v", id, ok)
	}
	if _, ok := idx.RunwayEndIDFuzzy("EDDF", "18"); ok {
		t.Error("unrelated runway resolved")
	}
	if _, ok := idx.RunwayEndIDFuzzy("KJFK", "07C"); ok {
		t.Error("unknown airport resolved")
	}
}

func testAirport(ident string) *bgl.Airport {
	a := &bgl.Airport{
		Ident:    ident,
		Region:   "ED",
		Name:     "Test Field",
		Pos:      geo.NewPos(8.57, 50.03),
		AltMeter: 111,
		MagVar:   2.5,
	}
	a.Runways = []bgl.Runway{{
		Surface:     bgl.SurfaceAsphalt,
		Primary:     bgl.RunwayEnd{Number: 7, HeadingTrue: 69.8},
		Secondary:   bgl.RunwayEnd{Number: 25, HeadingTrue: 249.8},
		Pos:         a.Pos,
		AltMeter:    111,
		LengthMeter: 4000,
		WidthMeter:  60,
		HeadingTrue: 69.8,
	}}
	a.Coms = []bgl.Com{{Type: bgl.ComTower, Frequency: 119900, Name: "Test Tower"}}
	return a
}

func TestWriteAirport(t *testing.T) {
	d := testDatabase(t)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	w := NewWriters(d, nil, testLogger())
	if err := w.WriteSceneryArea(&scenery0); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteFile("scenery/APX1.bgl", bgl.Header{}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteAirport(testAirport("EDDF"), false, false); err != nil {
		t.Fatal(err)
	}
	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}

	var ident string
	var numRunways, numCom, longestLen int
	err := d.QueryRow(`
		SELECT ident, num_runways, num_com, longest_runway_length
		FROM airport`).Scan(&ident, &numRunways, &numCom, &longestLen)
	if err != nil {
		t.Fatal(err)
	}
	if ident != "EDDF" || numRunways != 1 || numCom != 1 {
		t.Errorf("airport row = %s/%d/%d", ident, numRunways, numCom)
	}
	if longestLen != 13123 { // 4000 m
		t.Errorf("longest runway = %d ft, want 13123", longestLen)
	}

	// both runway ends present and registered for fuzzy lookup
	var numEnds int
	if err := d.QueryRow("SELECT count(1) FROM runway_end").Scan(&numEnds); err != nil {
		t.Fatal(err)
	}
	if numEnds != 2 {
		t.Errorf("got %d runway ends, want 2", numEnds)
	}
	if _, ok := w.Index.RunwayEndIDFuzzy("EDDF", "RW25"); !ok {
		t.Error("secondary end not resolvable")
	}
}

func TestWriteVORAndRouteNodes(t *testing.T) {
	d := testDatabase(t)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	w := NewWriters(d, nil, testLogger())
	if err := w.WriteSceneryArea(&scenery0); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteFile("scenery/NVX1.bgl", bgl.Header{}); err != nil {
		t.Fatal(err)
	}

	vors := []*bgl.VOR{
		{Type: bgl.NavHigh, HasDME: true, Ident: "FFM", Region: "ED",
			Pos: geo.NewPos(8.64, 50.05), Frequency: 114200,
			RangeMeter: geo.NmToMeter(130)},
		{Type: bgl.NavLow, Ident: "RID", Region: "ED",
			Pos: geo.NewPos(8.9, 50.2), Frequency: 112200,
			RangeMeter: geo.NmToMeter(40)},
		{Type: bgl.NavTerminal, DMEOnly: true, HasDME: true, Ident: "ZZZ",
			Region: "ED", Pos: geo.NewPos(9.3, 50.4), Frequency: 109000,
			RangeMeter: geo.NmToMeter(25)},
	}
	for _, v := range vors {
		if err := w.WriteVOR(v); err != nil {
			t.Fatal(err)
		}
	}

	if err := d.RunScript("populate_route_node"); err != nil {
		t.Fatal(err)
	}

	// node types: VORDME, VOR, DME
	for _, tc := range []struct {
		typ  int
		want int
	}{{1, 1}, {2, 1}, {3, 1}, {4, 0}} {
		var n int
		err := d.QueryRow("SELECT count(1) FROM route_node WHERE type = ?",
			tc.typ).Scan(&n)
		if err != nil {
			t.Fatal(err)
		}
		if n != tc.want {
			t.Errorf("node type %d: got %d, want %d", tc.typ, n, tc.want)
		}
	}

	numEdges, err := WriteRouteEdges(d, testLogger(), nil)
	if err != nil {
		t.Fatal(err)
	}
	// three mutually visible stations, all within 500 NM
	if numEdges != 6 {
		t.Errorf("got %d edges, want 6", numEdges)
	}

	var maxDist int
	if err := d.QueryRow("SELECT max(distance) FROM route_edge").Scan(&maxDist); err != nil {
		t.Fatal(err)
	}
	if maxDist > maxEdgeDistanceNM {
		t.Errorf("edge distance %d exceeds limit", maxDist)
	}

	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}
}

func TestVortacCoalescing(t *testing.T) {
	d := testDatabase(t)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	w := NewWriters(d, nil, testLogger())
	if err := w.WriteSceneryArea(&scenery0); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteFile("scenery/NVX1.bgl", bgl.Header{}); err != nil {
		t.Fatal(err)
	}

	pos := geo.NewPos(8.64, 50.05)
	err := w.WriteVOR(&bgl.VOR{Type: bgl.NavHigh, Ident: "FFM", Region: "ED",
		Pos: pos, Frequency: 114200, RangeMeter: geo.NmToMeter(130)})
	if err != nil {
		t.Fatal(err)
	}
	err = w.WriteTACAN(&bgl.TACAN{Ident: "FFM", Region: "ED", Pos: pos,
		Channel: 89, RangeMeter: geo.NmToMeter(130)})
	if err != nil {
		t.Fatal(err)
	}
	// a standalone TACAN far away survives as its own vor row
	err = w.WriteTACAN(&bgl.TACAN{Ident: "NAV", Region: "ED",
		Pos: geo.NewPos(10, 51), Channel: 17, YMode: true,
		RangeMeter: geo.NmToMeter(100)})
	if err != nil {
		t.Fatal(err)
	}

	if err := d.RunScript("update_vor"); err != nil {
		t.Fatal(err)
	}
	if err := d.Commit(); err != nil {
		t.Fatal(err)
	}

	var typ, channel string
	err = d.QueryRow(`SELECT type, channel FROM vor WHERE ident = 'FFM'`).
		Scan(&typ, &channel)
	if err != nil {
		t.Fatal(err)
	}
	if typ != "VTH" || channel != "89X" {
		t.Errorf("coalesced vor = %s/%s, want VTH/89X", typ, channel)
	}

	err = d.QueryRow(`SELECT type, channel FROM vor WHERE ident = 'NAV'`).
		Scan(&typ, &channel)
	if err != nil {
		t.Fatal(err)
	}
	if typ != "TC" || channel != "17Y" {
		t.Errorf("leftover tacan = %s/%s, want TC/17Y", typ, channel)
	}

	var numTacan int
	if err := d.QueryRow("SELECT count(1) FROM tacan").Scan(&numTacan); err != nil {
		t.Fatal(err)
	}
	if numTacan != 0 {
		t.Errorf("tacan table not emptied: %d rows", numTacan)
	}
}

func TestCollectReport(t *testing.T) {
	d := testDatabase(t)
	if err := d.Begin(); err != nil {
		t.Fatal(err)
	}

	w := NewWriters(d, nil, testLogger())
	if err := w.WriteSceneryArea(&scenery0); err != nil {
		t.Fatal(err)
	}
	if _, err := w.WriteFile("scenery/APX1.bgl", bgl.Header{}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteAirport(testAirport("EDDF"), false, false); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteVOR(&bgl.VOR{
		Type: bgl.NavHigh, Ident: "FFM", Region: "ED",
		Pos: geo.NewPos(8.64, 50.05), Frequency: 114200,
		RangeMeter: geo.NmToMeter(130),
	}); err != nil {
		t.Fatal(err)
	}

	rep, err := CollectReport(d)
	if err != nil {
		t.Fatal(err)
	}
	if rep.TableCounts["airport"] != 1 || rep.TableCounts["vor"] != 1 {
		t.Errorf("table counts = %v", rep.TableCounts)
	}
	if len(rep.Duplicates["airport"]) != 0 {
		t.Errorf("unexpected duplicates: %v", rep.Duplicates)
	}
	if len(rep.CoordinateViolations) != 0 {
		t.Errorf("unexpected coordinate violations: %v", rep.CoordinateViolations)
	}
	if rep.ValueHistograms["runway.surface"]["A"] != 1 {
		t.Errorf("surface histogram = %v", rep.ValueHistograms["runway.surface"])
	}

	var sb strings.Builder
	rep.Dump(&sb)
	if !strings.Contains(sb.String(), "TableCounts") {
		t.Error("dump missing table counts")
	}
}
