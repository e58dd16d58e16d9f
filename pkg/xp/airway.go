// pkg/xp/airway.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xp

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/log"
)

// earth_awy.dat:
//   from-ident from-region from-type to-ident to-region to-type
//   direction class base-fl top-fl names
// where names is a dash-separated list of airways sharing the segment.
const (
	awyFromIdent = iota
	awyFromRegion
	awyFromType
	awyToIdent
	awyToRegion
	awyToType
	awyDirection
	awyClass
	awyBase
	awyTop
	awyNames

	awyMinFields = 11
)

// AirwayReader turns airway segments into airway_point fragments for
// the post-load resolver.
type AirwayReader struct {
	d     *db.Database
	fixes *FixIndex
	ids   *Counters
	lg    *log.Logger

	insert *sql.Stmt
}

func NewAirwayReader(d *db.Database, fixes *FixIndex, ids *Counters, lg *log.Logger) (*AirwayReader, error) {
	insert, err := d.Prepare(`
		INSERT INTO airway_point (airway_point_id, waypoint_id, name, type,
			mid_ident, mid_region, next_ident, next_region,
			minimum_altitude, maximum_altitude, direction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	return &AirwayReader{d: d, fixes: fixes, ids: ids, lg: lg, insert: insert}, nil
}

func (r *AirwayReader) Close() error { return r.insert.Close() }

func (r *AirwayReader) Read(fields []string, ctx *Context) error {
	fromIdent := at(fields, awyFromIdent)
	fromRegion := at(fields, awyFromRegion)
	toIdent := at(fields, awyToIdent)
	toRegion := at(fields, awyToRegion)

	waypointID, ok := r.fixes.ID(fromIdent, fromRegion)
	if !ok {
		r.lg.Warnf("%s: airway references unknown fix %s/%s, skipping",
			ctx.prefix(), fromIdent, fromRegion)
		return nil
	}

	airwayType := "V"
	if at(fields, awyClass) == "2" {
		airwayType = "J"
	}

	var direction any
	if dir := at(fields, awyDirection); dir == "F" || dir == "B" {
		direction = dir
	}

	baseFL, _ := parseInt(at(fields, awyBase))
	topFL, _ := parseInt(at(fields, awyTop))

	var maxAlt any
	if topFL > 0 {
		maxAlt = topFL * 100
	}

	for _, name := range strings.Split(at(fields, awyNames), "-") {
		if name == "" {
			continue
		}
		r.ids.AirwayPoint++
		_, err := r.insert.Exec(r.ids.AirwayPoint, waypointID, name,
			airwayType, fromIdent, fromRegion, toIdent, toRegion,
			baseFL*100, maxAlt, direction)
		if err != nil {
			return fmt.Errorf("airway %s at %s: %w", name, fromIdent, err)
		}
	}
	return nil
}

// Finish backfills the per-waypoint airway counts used by the routing
// node selection.
func (r *AirwayReader) Finish(*Context) error {
	_, err := r.d.Exec(`
		UPDATE waypoint SET
			num_victor_airway = (
				SELECT count(1) FROM airway_point ap
				WHERE ap.waypoint_id = waypoint.waypoint_id
				AND ap.type IN ('V', 'B')),
			num_jet_airway = (
				SELECT count(1) FROM airway_point ap
				WHERE ap.waypoint_id = waypoint.waypoint_id
				AND ap.type IN ('J', 'B'))
		WHERE waypoint_id IN (SELECT waypoint_id FROM airway_point)`)
	return err
}

func (r *AirwayReader) Reset() {}

func (r *AirwayReader) MinFields() int { return awyMinFields }
