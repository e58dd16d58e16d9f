// pkg/xp/mora.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xp

import (
	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/log"
)

// The grid-MORA file carries one latitude band per line: a lat/lon
// anchor followed by 30 altitude cells in hundreds of feet, "UNK" for
// unsurveyed cells. The full lattice is 360 columns by 180 rows and is
// written as one compressed blob after the last line.
const (
	moraLaty = iota
	moraLonx
	moraFirstCell

	moraCellsPerLine = 30
	moraFields       = 2 + moraCellsPerLine

	moraColumns = 360
	moraRows    = 180
)

type MoraReader struct {
	w  *db.Writers
	lg *log.Logger

	values []uint16
	seen   int
}

func NewMoraReader(w *db.Writers, lg *log.Logger) *MoraReader {
	r := &MoraReader{w: w, lg: lg}
	r.Reset()
	return r
}

func (r *MoraReader) MinFields() int { return moraFields }

func (r *MoraReader) Reset() {
	r.values = make([]uint16, moraColumns*moraRows)
	for i := range r.values {
		r.values[i] = db.UnknownMora
	}
	r.seen = 0
}

func (r *MoraReader) Read(fields []string, ctx *Context) error {
	if len(fields) != moraFields {
		r.lg.Warnf("%s: MORA line with %d fields, skipping", ctx.prefix(), len(fields))
		return nil
	}

	laty, err1 := parseInt(at(fields, moraLaty))
	lonx, err2 := parseInt(at(fields, moraLonx))
	if err1 != nil || err2 != nil {
		r.lg.Warnf("%s: bad MORA band anchor, skipping", ctx.prefix())
		return nil
	}
	if laty < -90 || laty >= 90 || lonx < -180 || lonx >= 180 {
		r.lg.Warnf("%s: MORA band anchor out of range, skipping", ctx.prefix())
		return nil
	}

	// row 0 holds the 89..90 degree band
	row := 90 - 1 - laty
	col := lonx + 180

	for i := 0; i < moraCellsPerLine; i++ {
		cell := at(fields, moraFirstCell+i)
		if cell == "UNK" {
			continue
		}
		v, err := parseInt(cell)
		if err != nil || v < 0 {
			r.lg.Warnf("%s: bad MORA cell %q, skipping line", ctx.prefix(), cell)
			return nil
		}
		c := (col + i) % moraColumns
		r.values[row*moraColumns+c] = uint16(v)
		r.seen++
	}
	return nil
}

func (r *MoraReader) Finish(*Context) error {
	if r.seen == 0 {
		return nil
	}
	return r.w.WriteMoraGrid(&db.MoraGrid{
		Columns: moraColumns,
		Rows:    moraRows,
		Values:  r.values,
	})
}
