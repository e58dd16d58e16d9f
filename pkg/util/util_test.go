// pkg/util/util_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"reflect"
	"strings"
	"testing"
)

func TestStopShouting(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"UNITED STATES AIR FORCE", "United States Air Force"},
		{"Frankfurt Main", "Frankfurt Main"},
		{"LA GUARDIA", "La Guardia"},
		{"", ""},
		{"A", "A"},
	}
	for _, tt := range tests {
		if got := StopShouting(tt.input); got != tt.want {
			t.Errorf("StopShouting(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestAtof(t *testing.T) {
	for _, s := range []string{"50.0379", " 50.0379", "50.0379 "} {
		v, err := Atof(s)
		if err != nil {
			t.Errorf("Atof(%q): %v", s, err)
		}
		if v != 50.0379 {
			t.Errorf("Atof(%q) = %v", s, v)
		}
	}
	if _, err := Atof("bogus"); err == nil {
		t.Error("Atof(\"bogus\") succeeded")
	}
}

func TestSortedMapKeys(t *testing.T) {
	m := map[string]int{"J5": 1, "A4": 2, "V12": 3}
	got := SortedMapKeys(m)
	want := []string{"A4", "J5", "V12"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedMapKeys = %v, want %v", got, want)
	}
}

func TestMapSlice(t *testing.T) {
	got := MapSlice([]string{"rw07c", "rw25l"}, strings.ToUpper)
	want := []string{"RW07C", "RW25L"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MapSlice = %v, want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Errorf("Clamp(5, 0, 3) = %v", got)
	}
	if got := Clamp(-1.5, 0.0, 3.0); got != 0 {
		t.Errorf("Clamp(-1.5, 0, 3) = %v", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Errorf("Clamp(2, 0, 3) = %v", got)
	}
}

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger
	if e.HaveErrors() {
		t.Error("fresh logger reports errors")
	}

	e.Push("earth_nav.dat")
	e.Push("line 12")
	e.ErrorString("bad frequency %q", "11x50")
	e.Pop()
	e.Pop()
	if e.CurrentDepth() != 0 {
		t.Errorf("depth = %d after matched pops", e.CurrentDepth())
	}

	if !e.HaveErrors() {
		t.Error("no errors recorded")
	}
	s := e.String()
	if !strings.Contains(s, "earth_nav.dat") || !strings.Contains(s, "11x50") {
		t.Errorf("error text %q missing context", s)
	}
}
