// pkg/db/writer_nav.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/fsnav/navdbc/pkg/bgl"
	"github.com/fsnav/navdbc/pkg/fsutil"
	"github.com/fsnav/navdbc/pkg/geo"
)

func rangeNM(meter float64) int {
	return int(math.Round(geo.MeterToNm(meter)))
}

func (w *Writers) WriteVOR(v *bgl.VOR) error {
	if err := checkPos(v.Pos); err != nil {
		return fmt.Errorf("vor %s: %w", v.Ident, err)
	}

	id := w.ids.ID("vor")

	typeStr := v.Type.String()
	if v.Type == bgl.NavVOT {
		typeStr = "VTL"
	}

	var dmeAlt, dmeLon, dmeLat any
	if v.HasDME {
		dmeAlt = feet(v.AltMeter)
		dmeLon, dmeLat = v.Pos.LonX, v.Pos.LatY
	}

	return w.exec("vor", `
		INSERT INTO vor (vor_id, file_id, ident, name, region, type,
			frequency, range, mag_var, dme_only, dme_altitude, dme_lonx,
			dme_laty, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.curFileID, v.Ident, nullStr(v.Name), nullStr(v.Region),
		typeStr, v.Frequency, rangeNM(v.RangeMeter),
		w.magVar(v.Pos, v.MagVar), v.DMEOnly, dmeAlt, dmeLon, dmeLat,
		feet(v.AltMeter), v.Pos.LonX, v.Pos.LatY)
}

func (w *Writers) WriteNDB(n *bgl.NDB) error {
	if err := checkPos(n.Pos); err != nil {
		return fmt.Errorf("ndb %s: %w", n.Ident, err)
	}

	id := w.ids.ID("ndb")
	return w.exec("ndb", `
		INSERT INTO ndb (ndb_id, file_id, ident, name, region, type,
			frequency, range, mag_var, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.curFileID, n.Ident, nullStr(n.Name), nullStr(n.Region),
		n.TypeString(), n.Frequency, rangeNM(n.RangeMeter),
		w.magVar(n.Pos, n.MagVar), feet(n.AltMeter), n.Pos.LonX, n.Pos.LatY)
}

func (w *Writers) WriteMarker(m *bgl.Marker) error {
	if err := checkPos(m.Pos); err != nil {
		return fmt.Errorf("marker %s: %w", m.Ident, err)
	}

	id := w.ids.ID("marker")
	return w.exec("marker", `
		INSERT INTO marker (marker_id, file_id, ident, region, type,
			heading, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.curFileID, nullStr(m.Ident), nullStr(m.Region),
		m.Type.String(), roundDeg(m.HeadingTrue), feet(m.AltMeter),
		m.Pos.LonX, m.Pos.LatY)
}

// WriteTACAN stores the station in its own table; the post-load scripts
// fold TACANs into the vor table as VORTAC or TACAN rows.
func (w *Writers) WriteTACAN(t *bgl.TACAN) error {
	if err := checkPos(t.Pos); err != nil {
		return fmt.Errorf("tacan %s: %w", t.Ident, err)
	}

	mode := "X"
	if t.YMode {
		mode = "Y"
	}

	id := w.ids.ID("tacan")
	return w.exec("tacan", `
		INSERT INTO tacan (tacan_id, file_id, ident, name, region, channel,
			frequency, range, mag_var, dme_only, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.curFileID, t.Ident, nullStr(t.Name), nullStr(t.Region),
		fmt.Sprintf("%d%s", t.Channel, mode), t.Frequency(),
		rangeNM(t.RangeMeter), w.magVar(t.Pos, t.MagVar), t.DMEOnly,
		feet(t.AltMeter), t.Pos.LonX, t.Pos.LatY)
}

// WriteILS derives the runway reference from the record or, failing
// that, from the facility name. Records with no resolvable runway are
// dropped unless incomplete mode keeps them.
func (w *Writers) WriteILS(ils *bgl.ILS) error {
	if err := checkPos(ils.Pos); err != nil {
		return fmt.Errorf("ils %s: %w", ils.Ident, err)
	}

	runwayName := ils.RunwayName()
	if runwayName == "" {
		runwayName = fsutil.RunwayFromIlsName(ils.Name)
	}
	if runwayName == "" && !w.IncompleteMode {
		w.lg.Warnf("dropping ILS %s (%s): no runway reference", ils.Ident, ils.Name)
		return nil
	}

	var endID any
	if runwayName != "" && ils.AirportIdent != "" {
		if v, ok := w.Index.RunwayEndIDFuzzy(ils.AirportIdent, runwayName); ok {
			endID = v
		}
	}

	var locHeading, locWidth any
	heading := 0.
	width := 5.
	if ils.HasLocalizer {
		heading = ils.LocHeadingTrue
		if ils.LocWidthDeg > 0 {
			width = ils.LocWidthDeg
		}
		locHeading = roundDeg(heading)
		locWidth = ils.LocWidthDeg
	}
	p1, p2, pmid := fsutil.CalculateIlsGeometry(ils.Pos, heading, width,
		fsutil.DefaultFeatherLengthNM)

	var gsRange, gsPitch, gsAlt, gsLon, gsLat any
	if ils.HasGlideslope {
		gsRange = rangeNM(ils.GSRangeMeter)
		gsPitch = ils.GSPitch
		gsAlt = feet(ils.GSAltMeter)
		gsLon, gsLat = ils.GSPos.LonX, ils.GSPos.LatY
	}

	var dmeRange, dmeAlt, dmeLon, dmeLat any
	if ils.HasDME {
		dmeRange = rangeNM(ils.DMERangeMeter)
		dmeAlt = feet(ils.DMEAltMeter)
		dmeLon, dmeLat = ils.DMEPos.LonX, ils.DMEPos.LatY
	}

	ilsType := "1" // unknown category
	if !ils.HasGlideslope {
		ilsType = "0" // localizer only
	}

	id := w.ids.ID("ils")
	return w.exec("ils", `
		INSERT INTO ils (ils_id, ident, name, region, type, frequency,
			range, mag_var, has_backcourse,
			dme_range, dme_altitude, dme_lonx, dme_laty,
			gs_range, gs_pitch, gs_altitude, gs_lonx, gs_laty,
			loc_runway_end_id, loc_airport_ident, loc_runway_name,
			loc_heading, loc_width,
			end1_lonx, end1_laty, end_mid_lonx, end_mid_laty,
			end2_lonx, end2_laty, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, ils.Ident, nullStr(ils.Name), nullStr(ils.Region), ilsType,
		ils.Frequency, rangeNM(ils.RangeMeter),
		w.magVar(ils.Pos, ils.MagVar), ils.HasBackcourse,
		dmeRange, dmeAlt, dmeLon, dmeLat,
		gsRange, gsPitch, gsAlt, gsLon, gsLat,
		endID, nullStr(ils.AirportIdent), nullStr(runwayName),
		locHeading, locWidth,
		p1.LonX, p1.LatY, pmid.LonX, pmid.LatY, p2.LonX, p2.LatY,
		feet(ils.AltMeter), ils.Pos.LonX, ils.Pos.LatY)
}

func (w *Writers) WriteWaypoint(wp *bgl.Waypoint) error {
	if err := checkPos(wp.Pos); err != nil {
		return fmt.Errorf("waypoint %s: %w", wp.Ident, err)
	}

	var numVictor, numJet int
	for i := range wp.Airways {
		switch wp.Airways[i].Type {
		case bgl.AirwayVictor:
			numVictor++
		case bgl.AirwayJet:
			numJet++
		case bgl.AirwayBoth:
			numVictor++
			numJet++
		}
	}

	var airportID any
	if wp.AirportIdent != "" {
		if v, ok := w.Index.AirportID(wp.AirportIdent); ok {
			airportID = v
		}
	}

	id := w.ids.ID("waypoint")
	err := w.exec("waypoint", `
		INSERT INTO waypoint (waypoint_id, file_id, ident, region,
			airport_id, airport_ident, type, num_victor_airway,
			num_jet_airway, mag_var, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.curFileID, wp.Ident, nullStr(wp.Region),
		airportID, nullStr(wp.AirportIdent), wp.Type.String(),
		numVictor, numJet, w.magVar(wp.Pos, wp.MagVar),
		wp.Pos.LonX, wp.Pos.LatY)
	if err != nil {
		return err
	}

	for i := range wp.Airways {
		if err := w.writeAirwaySegment(&wp.Airways[i], wp, id); err != nil {
			return err
		}
	}
	return nil
}

// writeAirwaySegment stores the raw fragment for the post-load airway
// resolver; the mid fix is the owning waypoint itself.
func (w *Writers) writeAirwaySegment(s *bgl.AirwaySegment, wp *bgl.Waypoint, waypointID int64) error {
	id := w.ids.ID("airway_point")

	var nextIdent, nextRegion, nextAirport any
	if s.HasNext {
		nextIdent = nullStr(s.NextIdent)
		nextRegion = nullStr(s.NextRegion)
		nextAirport = nullStr(s.NextAirport)
	}
	var prevIdent, prevRegion, prevAirport any
	if s.HasPrev {
		prevIdent = nullStr(s.PrevIdent)
		prevRegion = nullStr(s.PrevRegion)
		prevAirport = nullStr(s.PrevAirport)
	}

	return w.exec("airway_point", `
		INSERT INTO airway_point (airway_point_id, waypoint_id, name, type,
			mid_type, mid_ident, mid_region,
			next_type, next_ident, next_region, next_airport_ident,
			previous_type, previous_ident, previous_region,
			previous_airport_ident, minimum_altitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, waypointID, s.Name, s.Type.String(),
		wp.Type.String(), wp.Ident, nullStr(wp.Region),
		nil, nextIdent, nextRegion, nextAirport,
		nil, prevIdent, prevRegion, prevAirport,
		feet(s.MinAltMeter))
}

// BoundaryGeometry is the vertex list stored in the boundary geometry
// blob.
type BoundaryGeometry struct {
	Vertices []BoundaryGeometryVertex `msgpack:"v"`
}

type BoundaryGeometryVertex struct {
	LonX      float64 `msgpack:"x"`
	LatY      float64 `msgpack:"y"`
	Arc       bool    `msgpack:"a,omitempty"`
	Clockwise bool    `msgpack:"c,omitempty"`
	CenterX   float64 `msgpack:"cx,omitempty"`
	CenterY   float64 `msgpack:"cy,omitempty"`
	RadiusNM  float64 `msgpack:"r,omitempty"`
}

func (w *Writers) WriteBoundary(b *bgl.Boundary) error {
	geom := BoundaryGeometry{
		Vertices: make([]BoundaryGeometryVertex, 0, len(b.Vertices)),
	}
	for i := range b.Vertices {
		v := &b.Vertices[i]
		geom.Vertices = append(geom.Vertices, BoundaryGeometryVertex{
			LonX:      v.Pos.LonX,
			LatY:      v.Pos.LatY,
			Arc:       v.IsArc,
			Clockwise: v.Clockwise,
			CenterX:   v.ArcCenter.LonX,
			CenterY:   v.ArcCenter.LatY,
			RadiusNM:  v.RadiusNM,
		})
	}
	blob, err := msgpack.Marshal(&geom)
	if err != nil {
		return fmt.Errorf("boundary geometry: %w", err)
	}

	var comType, comFreq, comName any
	if b.ComFrequency > 0 {
		comType = b.ComType.String()
		comFreq = b.ComFrequency
		comName = nullStr(b.ComName)
	}

	var minAlt, maxAlt any
	if b.MinAltType != bgl.AltUnknown {
		minAlt = feet(b.MinAltMeter)
	}
	if b.MaxAltType != bgl.AltUnknown {
		maxAlt = feet(b.MaxAltMeter)
	}

	id := w.ids.ID("boundary")
	return w.exec("boundary", `
		INSERT INTO boundary (boundary_id, file_id, type, name, com_type,
			com_frequency, com_name, min_altitude_type, max_altitude_type,
			min_altitude, max_altitude, max_lonx, max_laty, min_lonx,
			min_laty, geometry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.curFileID, b.Class.String(), nullStr(b.Name),
		comType, comFreq, comName,
		b.MinAltType.String(), b.MaxAltType.String(), minAlt, maxAlt,
		b.Rect.East, b.Rect.North, b.Rect.West, b.Rect.South, blob)
}
