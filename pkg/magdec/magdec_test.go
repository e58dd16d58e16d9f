// pkg/magdec/magdec_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package magdec

import (
	"bytes"
	"math"
	"testing"

	"github.com/fsnav/navdbc/pkg/geo"
)

func uniformGrid(t *testing.T, centidegrees int16) *Grid {
	t.Helper()
	values := make([]int16, gridWidth*gridHeight)
	for i := range values {
		values[i] = centidegrees
	}
	g, err := FromValues(values)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestMagVarUniform(t *testing.T) {
	g := uniformGrid(t, 250) // 2.5 degrees east everywhere

	for _, pos := range []geo.Pos{
		geo.NewPos(0, 0),
		geo.NewPos(-122.31, 47.45),
		geo.NewPos(179.9, -89.5),
		geo.NewPos(-180, 90),
	} {
		if got := g.MagVar(pos); math.Abs(got-2.5) > 1e-9 {
			t.Errorf("MagVar(%v) = %v, want 2.5", pos, got)
		}
	}
}

func TestMagVarInterpolation(t *testing.T) {
	values := make([]int16, gridWidth*gridHeight)
	// 0 everywhere except 400 (4 deg) at lon 1, lat 0
	x, y := 1+180, 0+90
	values[y*gridWidth+x] = 400
	g, err := FromValues(values)
	if err != nil {
		t.Fatal(err)
	}

	if got := g.MagVar(geo.NewPos(1, 0)); math.Abs(got-4) > 1e-9 {
		t.Errorf("on-node MagVar = %v, want 4", got)
	}
	if got := g.MagVar(geo.NewPos(0.5, 0)); math.Abs(got-2) > 1e-9 {
		t.Errorf("midpoint MagVar = %v, want 2", got)
	}
}

func TestMagVarInvalid(t *testing.T) {
	g := uniformGrid(t, 100)
	if got := g.MagVar(geo.InvalidPos()); got != 0 {
		t.Errorf("invalid pos MagVar = %v, want 0", got)
	}
	var missing *Grid
	if got := missing.MagVar(geo.NewPos(0, 0)); got != 0 {
		t.Errorf("nil grid MagVar = %v, want 0", got)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	g := uniformGrid(t, -750)

	var buf bytes.Buffer
	if err := g.Write(&buf); err != nil {
		t.Fatal(err)
	}
	g2, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := g2.MagVar(geo.NewPos(10, 50)); math.Abs(got- -7.5) > 1e-9 {
		t.Errorf("MagVar after round trip = %v, want -7.5", got)
	}
}

func TestMagneticTrueRoundTrip(t *testing.T) {
	g := uniformGrid(t, 430) // 4.3 east
	pos := geo.NewPos(-70, 42)
	magvar := g.MagVar(pos)

	for _, trueHdg := range []float64{0, 1, 89.9, 180, 359.9} {
		mag := geo.NormalizeCourse(trueHdg - magvar)
		back := geo.NormalizeCourse(mag + magvar)
		if math.Abs(back-trueHdg) > 0.01 {
			t.Errorf("true %v -> mag %v -> %v", trueHdg, mag, back)
		}
	}
}
