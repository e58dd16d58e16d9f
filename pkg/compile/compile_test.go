// pkg/compile/compile_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package compile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/log"
	"github.com/fsnav/navdbc/pkg/scenery"
)

func testLogger() *log.Logger {
	return nil
}

func TestParseSimulator(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Simulator
		ok   bool
	}{
		{"fsx", FSX, true},
		{"FSX", FSX, true},
		{"p3dv5", P3DV5, true},
		{"msfs24", MSFS2024, true},
		{"msfs2024", MSFS2024, true},
		{"xp12", XP12, true},
		{"fs2020", FS9, false},
		{"", FS9, false},
	} {
		got, ok := ParseSimulator(tc.name)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseSimulator(%q) = %v, %v", tc.name, got, ok)
		}
	}
}

func TestSimulatorVariant(t *testing.T) {
	if !XP11.IsXPlane() || !XP12.IsXPlane() || MSFS.IsXPlane() {
		t.Error("X-Plane detection broken")
	}
	if MSFS2024.Variant().String() != "MSFS2024" {
		t.Errorf("variant = %s", MSFS2024.Variant())
	}
	if FSX.Variant().String() != "FSX" {
		t.Errorf("variant = %s", FSX.Variant())
	}
}

const testFixFile = `I
1101 Version - data cycle 2406, build 20240606, metadata FixXP1101.

50.031666667    8.534166667 ANEKI ENRT ED 4464713
50.500000000    9.000000000 DEBHI ENRT ED 4464713
99
`

const testNavFile = `I
1150 Version - data cycle 2406, build 20240606, metadata NavXP1150.

2  49.960547222   8.476205556    330    391  50  0.0 FFN ENRT ED FULDA NDB
3  50.050769444   8.635111111    364  11410 130 -2.0 FFM ENRT ED FRANKFURT VOR-DME
99
`

const testAwyFile = `I
1100 Version - data cycle 2406, build 20240606, metadata AwyXP1100.

ANEKI ED 11 DEBHI ED 11 N 2 180 450 J5
99
`

const testSidFile = `SID:010,5,ANEK1A,RW07C,ANEKI,ED,E,A,E   , ,   ,IF, , , , ,    ,    ,    ,    ,E,A, ,     ,     ,     , ,   , ,   ,    , , , , ,;
SID:020,5,ANEK1A,RW07C,DEBHI,ED,E,A,E   , ,   ,TF, , , , ,    ,    ,    ,    ,E,A, ,     ,     ,     , ,   , ,   ,    , , , , ,;
`

// xplaneRoot builds a minimal X-Plane installation with updated
// navdata in Custom Data.
func xplaneRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dataDir := filepath.Join(root, "Custom Data")
	cifpDir := filepath.Join(dataDir, "CIFP")
	if err := os.MkdirAll(cifpDir, 0o755); err != nil {
		t.Fatal(err)
	}

	for _, f := range []struct{ name, content string }{
		{"earth_fix.dat", testFixFile},
		{"earth_nav.dat", testNavFile},
		{"earth_awy.dat", testAwyFile},
		{filepath.Join("CIFP", "EDDF.dat"), testSidFile},
	} {
		if err := os.WriteFile(filepath.Join(dataDir, f.name), []byte(f.content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestCompileXplane(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	c := New(Options{
		Sim:            XP11,
		BasePath:       xplaneRoot(t),
		DBPath:         dbPath,
		ResolveAirways: true,
		RouteTables:    true,
	}, nil, testLogger())

	if err := c.Run(); err != nil {
		t.Fatal(err)
	}
	for _, e := range c.SceneryErrors() {
		t.Errorf("scenery errors: %s", e)
	}

	d, err := db.Open(dbPath, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	count := func(query string) int {
		t.Helper()
		var n int
		if err := d.QueryRow(query).Scan(&n); err != nil {
			t.Fatalf("%s: %v", query, err)
		}
		return n
	}

	// fixes plus the navaid shadow waypoints
	if n := count("SELECT count(1) FROM waypoint"); n != 4 {
		t.Errorf("got %d waypoints, want 4", n)
	}
	if n := count("SELECT count(1) FROM vor"); n != 1 {
		t.Errorf("got %d vors, want 1", n)
	}
	if n := count("SELECT count(1) FROM ndb"); n != 1 {
		t.Errorf("got %d ndbs, want 1", n)
	}
	if n := count("SELECT count(1) FROM airway"); n != 1 {
		t.Errorf("got %d airway segments, want 1", n)
	}
	if n := count("SELECT count(1) FROM approach"); n != 1 {
		t.Errorf("got %d procedures, want 1", n)
	}

	// the VOR, the NDB and the airway departure fix are route nodes;
	// the radio pair is within edge distance
	if n := count("SELECT count(1) FROM route_node"); n != 3 {
		t.Errorf("got %d route nodes, want 3", n)
	}
	if n := count("SELECT count(1) FROM route_edge"); n == 0 {
		t.Error("no route edges written")
	}

	var cycle, source string
	var version, sidStar int
	err = d.QueryRow(`
		SELECT db_version, airac_cycle, has_sid_star, data_source
		FROM metadata`).Scan(&version, &cycle, &sidStar, &source)
	if err != nil {
		t.Fatal(err)
	}
	if version != db.SchemaVersion || cycle != "2406" || source != "XP11" {
		t.Errorf("metadata = %d/%s/%s", version, cycle, source)
	}
	if sidStar != 1 {
		t.Error("SID not flagged in metadata")
	}
}

// cancelAfter cancels the run on the nth progress call.
type cancelAfter struct {
	calls int
	limit int
}

func (c *cancelAfter) step() bool {
	c.calls++
	return c.calls <= c.limit
}

func (c *cancelAfter) SetTotal(int) bool { return c.step() }
func (c *cancelAfter) ReportSceneryArea(*scenery.Area) bool { return c.step() }
func (c *cancelAfter) ReportOther(string) bool { return c.step() }
func (c *cancelAfter) ReportFinish() bool { return c.step() }

func TestCompileCancel(t *testing.T) {
	c := New(Options{
		Sim:      XP11,
		BasePath: xplaneRoot(t),
		DBPath:   filepath.Join(t.TempDir(), "test.sqlite"),
	}, &cancelAfter{limit: 3}, testLogger())

	if err := c.Run(); !errors.Is(err, db.ErrAborted) {
		t.Fatalf("got %v, want ErrAborted", err)
	}
}

func TestCompileSceneryEmptyArea(t *testing.T) {
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "World", "scenery"), 0o755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(base, "scenery.cfg")
	cfg := `[Area.001]
Title=World
Local=World
Layer=1
Active=TRUE
`
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	c := New(Options{
		Sim:         FSX,
		SceneryPath: cfgPath,
		BasePath:    base,
		DBPath:      dbPath,
	}, nil, testLogger())

	if err := c.Run(); err != nil {
		t.Fatal(err)
	}

	d, err := db.Open(dbPath, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	var numAreas int
	if err := d.QueryRow("SELECT count(1) FROM scenery_area").Scan(&numAreas); err != nil {
		t.Fatal(err)
	}
	if numAreas != 1 {
		t.Errorf("got %d scenery areas, want 1", numAreas)
	}

	var source string
	if err := d.QueryRow("SELECT data_source FROM metadata").Scan(&source); err != nil {
		t.Fatal(err)
	}
	if source != "FSX" {
		t.Errorf("data_source = %s", source)
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := Options{Sim: FSX}
	err := opts.validate()
	if err == nil {
		t.Fatal("expected error for empty options")
	}
	for _, want := range []string{"base path", "database path", "scenery configuration"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}

	base := t.TempDir()
	opts = Options{
		Sim:          XP11,
		BasePath:     base,
		DBPath:       filepath.Join(base, "test.sqlite"),
		IncludeTypes: []string{"vor", "bogus"},
	}
	err = opts.validate()
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("expected unknown record type error, got %v", err)
	}

	opts.IncludeTypes = []string{"vor", "ndb"}
	if err := opts.validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
