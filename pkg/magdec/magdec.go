// pkg/magdec/magdec.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package magdec provides magnetic declination lookups from a
// precomputed world grid. The grid file holds one value per integer
// degree of latitude and longitude, row-major from (-90,-180),
// zstd-compressed.
package magdec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/util"
)

const (
	gridWidth  = 360
	gridHeight = 181
)

// Grid is read-only after load and may be shared freely.
type Grid struct {
	// Declination in hundredths of a degree, east positive
	values []int16
	valid  bool
}

// Load reads and decompresses a grid file.
func Load(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

func Read(rd io.Reader) (*Grid, error) {
	zr, err := zstd.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("magdec: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("magdec: %w", err)
	}
	if len(raw) != gridWidth*gridHeight*2 {
		return nil, fmt.Errorf("magdec: grid size %d bytes, expected %d",
			len(raw), gridWidth*gridHeight*2)
	}

	g := &Grid{values: make([]int16, gridWidth*gridHeight), valid: true}
	for i := range g.values {
		g.values[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return g, nil
}

// FromValues builds a grid directly, used by tests and by the grid
// generation tool.
func FromValues(values []int16) (*Grid, error) {
	if len(values) != gridWidth*gridHeight {
		return nil, fmt.Errorf("magdec: %d values, expected %d",
			len(values), gridWidth*gridHeight)
	}
	return &Grid{values: values, valid: true}, nil
}

// Write compresses the grid back to the on-disk format.
func (g *Grid) Write(w io.Writer) error {
	raw := make([]byte, len(g.values)*2)
	for i, v := range g.values {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(v))
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func (g *Grid) Valid() bool { return g != nil && g.valid }

// MagVar returns the declination in degrees at a position, east
// positive, bilinearly interpolated between the surrounding grid
// points. Returns 0 for invalid positions or a missing grid.
func (g *Grid) MagVar(pos geo.Pos) float64 {
	if !g.Valid() || !pos.IsValid() {
		return 0
	}

	lon := geo.NormalizeLongitude(pos.LonX)
	lat := util.Clamp(pos.LatY, -90, 90)

	x := lon + 180
	y := lat + 90
	x0, y0 := int(math.Floor(x)), int(math.Floor(y))
	fx, fy := x-float64(x0), y-float64(y0)

	v00 := g.at(x0, y0)
	v10 := g.at(x0+1, y0)
	v01 := g.at(x0, y0+1)
	v11 := g.at(x0+1, y0+1)

	top := v00*(1-fx) + v10*fx
	bottom := v01*(1-fx) + v11*fx
	return (top*(1-fy) + bottom*fy) / 100
}

func (g *Grid) at(x, y int) float64 {
	x = ((x % gridWidth) + gridWidth) % gridWidth
	if y < 0 {
		y = 0
	} else if y >= gridHeight {
		y = gridHeight - 1
	}
	return float64(g.values[y*gridWidth+x])
}
