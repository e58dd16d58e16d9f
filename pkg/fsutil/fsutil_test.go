// pkg/fsutil/fsutil_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package fsutil

import (
	"math"
	"testing"
)

func TestRunwayVariants(t *testing.T) {
	for _, tc := range []struct {
		name string
		want []string
	}{
		{"09", []string{"09", "10", "08"}},
		{"36", []string{"36", "01", "35"}},
		{"01", []string{"01", "02", "36"}},
		{"18C", []string{"18C", "19C", "17C"}},
		{"RW05L", []string{"RW05L", "RW06L", "RW04L"}},
		{"27T", []string{"27T", "28T", "26T"}},
	} {
		got := RunwayVariants(tc.name)
		if len(got) != len(tc.want) {
			t.Errorf("RunwayVariants(%q) = %v, want %v", tc.name, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("RunwayVariants(%q)[%d] = %q, want %q", tc.name, i, got[i], tc.want[i])
			}
		}
	}
}

func TestNormalizeRunway(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"RW07", "07"},
		{"7", "07"},
		{"07R", "07R"},
		{"rw36l", "36L"},
		{"01LT", "01LT"},
	} {
		if got := NormalizeRunway(tc.in); got != tc.want {
			t.Errorf("NormalizeRunway(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRunwayEqualFuzzy(t *testing.T) {
	if !RunwayEqual("09", "10", true) {
		t.Errorf("expected 09 to fuzzy-match 10")
	}
	if !RunwayEqual("36", "01", true) {
		t.Errorf("expected 36 to fuzzy-match 01")
	}
	if RunwayEqual("09", "11", true) {
		t.Errorf("did not expect 09 to fuzzy-match 11")
	}
	if RunwayEqual("09", "10", false) {
		t.Errorf("did not expect 09 to exactly match 10")
	}
}

func TestExtractSpeedAndAltitude(t *testing.T) {
	for _, tc := range []struct {
		item       string
		speed, alt float64
		ok         bool
	}{
		{"N0490F360", 490, 36000, true},
		{"N0220A025", 220, 2500, true},
		{"K0800F340", 800 / 1.852, 34000, true},
		{"N0144F085", 144, 8500, true},
		{"F360", 0, 0, false},
		{"N0490", 0, 0, false},
		{"X0490F360", 0, 0, false},
	} {
		speed, alt, ok := ExtractSpeedAndAltitude(tc.item)
		if ok != tc.ok {
			t.Errorf("ExtractSpeedAndAltitude(%q) ok = %v, want %v", tc.item, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if math.Abs(speed-tc.speed) > 0.5 {
			t.Errorf("ExtractSpeedAndAltitude(%q) speed = %v, want %v", tc.item, speed, tc.speed)
		}
		if math.Abs(alt-tc.alt) > 0.5 {
			t.Errorf("ExtractSpeedAndAltitude(%q) alt = %v, want %v", tc.item, alt, tc.alt)
		}
	}
}

func TestSpeedAndAltitudeRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		speed, alt float64
		want       string
	}{
		{490, 36000, "N0490F360"},
		{220, 2500, "N0220A025"},
		{310, 18000, "N0310F180"},
	} {
		s := CreateSpeedAndAltitude(tc.speed, tc.alt, false, false)
		if s != tc.want {
			t.Errorf("CreateSpeedAndAltitude(%v, %v) = %q, want %q", tc.speed, tc.alt, s, tc.want)
		}
		speed, alt, ok := ExtractSpeedAndAltitude(s)
		if !ok || math.Abs(speed-tc.speed) > 0.5 || math.Abs(alt-tc.alt) > 0.5 {
			t.Errorf("round trip of %q gave %v, %v, %v", s, speed, alt, ok)
		}
	}
}

func TestWaypointFlagsRoundTrip(t *testing.T) {
	for _, flags := range []string{"C", "V", "RI", "WN", "NRS"} {
		padded := flags
		for len(padded) < 3 {
			padded += "_"
		}
		enc := WaypointFlagsToXplane(padded, "")
		if enc == "" {
			t.Fatalf("WaypointFlagsToXplane(%q) failed", padded)
		}
		dec := WaypointFlagsFromXplane(enc, "")
		if dec != flags {
			t.Errorf("round trip of %q: encoded %q, decoded %q", flags, enc, dec)
		}
	}

	if got := WaypointFlagsFromXplane("garbage", "W"); got != "W" {
		t.Errorf("expected default for unparseable flags, got %q", got)
	}
	if got := WaypointFlagsToXplane("TOOLONG", "0"); got != "0" {
		t.Errorf("expected default for overlong flags, got %q", got)
	}
}

func TestIsNameMilitary(t *testing.T) {
	for _, tc := range []struct {
		name string
		want bool
	}{
		{"Ramstein AB", true},
		{"Edwards AFB", true},
		{"Norfolk NS", true},
		{"RAF Lakenheath", true},
		{"Base Aerea de Torrejon", true},
		{"Frankfurt am Main", false},
		{"Rafter Eleven Ranch", false},
		{"Milwaukee Mitchell Intl", false},
	} {
		if got := IsNameMilitary(tc.name); got != tc.want {
			t.Errorf("IsNameMilitary(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsNameClosed(t *testing.T) {
	if !IsNameClosed("Old Field [X]") || !IsNameClosed("Somewhere (CLSD)") {
		t.Errorf("expected closed")
	}
	if IsNameClosed("Clydesdale Municipal") {
		t.Errorf("did not expect closed")
	}
}

func TestAdjustIdent(t *testing.T) {
	if got := AdjustIdent("ed-df", 4, -1); got != "EDDF" {
		t.Errorf("AdjustIdent = %q, want EDDF", got)
	}
	if got := AdjustIdent("", 5, -1); got != "UNKWN" {
		t.Errorf("AdjustIdent empty = %q, want UNKWN", got)
	}
	if got := AdjustIdent("", 5, 35); got != "NZ" {
		t.Errorf("AdjustIdent synthetic = %q, want NZ", got)
	}
}

func TestAdjustRegion(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"ed", "ED"}, {"", "ZZ"}, {"E", "ZZ"}, {"EDDF", "ED"}, {"1!", "ZZ"},
	} {
		if got := AdjustRegion(tc.in); got != tc.want {
			t.Errorf("AdjustRegion(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRunwayFromIlsName(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"ILS CAT III RWY 05L", "05L"},
		{"IGS RWY 13", "13"},
		{"LOC 27", "27"},
		{"ILS", ""},
		{"MUNICH TOWER", ""},
	} {
		if got := RunwayFromIlsName(tc.in); got != tc.want {
			t.Errorf("RunwayFromIlsName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeTransponderCode(t *testing.T) {
	if got := DecodeTransponderCode(7700); got != 0o7700 {
		t.Errorf("DecodeTransponderCode(7700) = %o, want 7700", got)
	}
	if got := DecodeTransponderCode(1200); got != 0o1200 {
		t.Errorf("DecodeTransponderCode(1200) = %o, want 1200", got)
	}
	if got := DecodeTransponderCode(1280); got != -1 {
		t.Errorf("DecodeTransponderCode(1280) = %d, want -1", got)
	}
}

func TestAirportRating(t *testing.T) {
	if got := AirportRating(true, true, false, 10, 10, 2); got != 5 {
		t.Errorf("full airport rating = %d, want 5", got)
	}
	if got := AirportRating(false, false, true, 0, 0, 1); got != 0 {
		t.Errorf("generated stub rating = %d, want 0", got)
	}
	if got := AirportRating(false, true, false, 0, 0, 0); got != 0 {
		t.Errorf("tower-only rating = %d, want 0", got)
	}
}
