// pkg/xp/fix.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xp

import (
	"database/sql"
	"fmt"

	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/fsutil"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// earth_fix.dat:
//   laty lonx ident airport-or-ENRT region [arinc-type [name...]]
const (
	fixLaty = iota
	fixLonx
	fixIdent
	fixAirport
	fixRegion
	fixArincType
	fixName

	fixMinFields = 5
)

type fixKey struct {
	ident  string
	region string
}

// FixIndex resolves fix and navaid references to waypoint ids for the
// airway and procedure readers.
type FixIndex struct {
	ids map[fixKey]int64
	pos map[fixKey]geo.Pos
}

func NewFixIndex() *FixIndex {
	return &FixIndex{
		ids: make(map[fixKey]int64),
		pos: make(map[fixKey]geo.Pos),
	}
}

func (idx *FixIndex) Add(ident, region string, id int64, pos geo.Pos) {
	key := fixKey{ident, region}
	if _, dup := idx.ids[key]; dup {
		return
	}
	idx.ids[key] = id
	idx.pos[key] = pos
}

func (idx *FixIndex) ID(ident, region string) (int64, bool) {
	id, ok := idx.ids[fixKey{ident, region}]
	return id, ok
}

func (idx *FixIndex) Pos(ident, region string) (geo.Pos, bool) {
	pos, ok := idx.pos[fixKey{ident, region}]
	return pos, ok
}

// FixReader writes earth_fix.dat and user_fix.dat lines as waypoint
// rows.
type FixReader struct {
	d     *db.Database
	fixes *FixIndex
	ids   *Counters
	lg    *log.Logger

	// user waypoints may omit the ARINC type word
	userFix bool

	insert *sql.Stmt
}

func NewFixReader(d *db.Database, fixes *FixIndex, ids *Counters, userFix bool, lg *log.Logger) (*FixReader, error) {
	insert, err := d.Prepare(`
		INSERT INTO waypoint (waypoint_id, file_id, ident, name, region,
			airport_id, airport_ident, artificial, arinc_type, type,
			num_victor_airway, num_jet_airway, mag_var, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	return &FixReader{d: d, fixes: fixes, ids: ids, userFix: userFix, lg: lg, insert: insert}, nil
}

func (r *FixReader) Close() error { return r.insert.Close() }

func (r *FixReader) Read(fields []string, ctx *Context) error {
	laty, err1 := parseFloat(at(fields, fixLaty))
	lonx, err2 := parseFloat(at(fields, fixLonx))
	if err1 != nil || err2 != nil {
		r.lg.Warnf("%s: unparseable fix coordinate, skipping", ctx.prefix())
		return nil
	}
	pos := geo.NewPos(lonx, laty)
	if !pos.IsValid() {
		r.lg.Warnf("%s: fix coordinate out of range, skipping", ctx.prefix())
		return nil
	}

	ident := at(fields, fixIdent)
	region := at(fields, fixRegion)
	airportIdent := airportOrEmpty(at(fields, fixAirport))

	var arincType any
	if s := fsutil.WaypointFlagsFromXplane(at(fields, fixArincType), ""); s != "" {
		arincType = s
	} else if !r.userFix {
		r.lg.Debugf("%s: fix %s without ARINC type", ctx.prefix(), ident)
	}

	var airportID any
	if airportIdent != "" {
		if id, ok := ctx.Index.AirportID(airportIdent); ok {
			airportID = id
		}
	}

	var artificial any
	if r.userFix {
		artificial = 1
	}

	r.ids.Waypoint++
	_, err := r.insert.Exec(r.ids.Waypoint, ctx.FileID, ident,
		nullIfEmpty(rest(fields, fixName)), region, airportID,
		nullIfEmpty(airportIdent), artificial, arincType, "WN",
		ctx.Mag.MagVar(pos), pos.LonX, pos.LatY)
	if err != nil {
		return fmt.Errorf("fix %s: %w", ident, err)
	}

	r.fixes.Add(ident, region, r.ids.Waypoint, pos)
	return nil
}

func (r *FixReader) Finish(*Context) error { return nil }
func (r *FixReader) Reset() {}
func (r *FixReader) MinFields() int { return fixMinFields }

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
