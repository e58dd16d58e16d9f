// pkg/bgl/record.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/geo"
)

// Record carries the frame common to every typed record: the offset it
// started at, its 16 bit type code and its declared total size. Every
// parser captures the frame first so the driver can always reposition
// to Start+Size regardless of how much the parser consumed.
type Record struct {
	Start int
	ID    uint16
	Size  int
}

func readRecordHeader(r *binio.Reader) Record {
	start := r.Tell()
	id := r.U16()
	size := int(r.U32())
	return Record{Start: start, ID: id, Size: size}
}

func (rec Record) SeekToStart(r *binio.Reader) { r.Seek(rec.Start) }

// SeekToEnd repositions past the record regardless of parse outcome.
// This is the forward-progress guarantee on malformed files.
func (rec Record) SeekToEnd(r *binio.Reader) {
	r.ClearErr()
	rec.SeekToStart(r)
	r.Skip(rec.Size)
}

func (rec Record) End() int { return rec.Start + rec.Size }

// Coordinate packing used throughout binary records.
const (
	lonScale = 360.0 / (3.0 * 0x10000000)
	latScale = 180.0 / (2.0 * 0x10000000)
)

// readPos reads a packed lon/lat pair plus an altitude in
// millimeter-resolution meters and returns position and altitude in
// meters.
func readPos(r *binio.Reader) (geo.Pos, float64) {
	pos := readPos2D(r)
	altMeter := float64(r.I32()) / 1000.
	return pos, altMeter
}

func readPos2D(r *binio.Reader) geo.Pos {
	lonx := float64(r.U32())*lonScale - 180.
	laty := 90. - float64(r.U32())*latScale
	return geo.NewPos(lonx, laty)
}

// packPos is the inverse of readPos2D, used by the synthetic-file test
// tooling.
func packPos(p geo.Pos) (lon, lat uint32) {
	lon = uint32((p.LonX + 180.) / lonScale)
	lat = uint32((90. - p.LatY) / latScale)
	return
}
