// pkg/db/writer.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnav/navdbc/pkg/bgl"
	"github.com/fsnav/navdbc/pkg/fsutil"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
	"github.com/fsnav/navdbc/pkg/magdec"
	"github.com/fsnav/navdbc/pkg/scenery"
	"github.com/fsnav/navdbc/pkg/util"
)

// Writers owns the parameterized insert statements, the surrogate id
// counters and the cross-reference indices for one compilation run.
type Writers struct {
	d     *Database
	ids   *idGenerator
	Index *AirportIndex
	Mag   *magdec.Grid
	lg    *log.Logger

	// Write ILS records even when no runway ident is derivable
	IncompleteMode bool

	stmts map[string]*sql.Stmt

	curAreaID   int64
	curFileID   int64
	curAreaPath string
	curFileName string
}

func NewWriters(d *Database, mag *magdec.Grid, lg *log.Logger) *Writers {
	return &Writers{
		d:     d,
		ids:   newIDGenerator(),
		Index: NewAirportIndex(),
		Mag:   mag,
		lg:    lg,
		stmts: make(map[string]*sql.Stmt),
	}
}

func (w *Writers) stmt(name, query string) (*sql.Stmt, error) {
	if s, ok := w.stmts[name]; ok {
		return s, nil
	}
	s, err := w.d.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", name, err)
	}
	w.stmts[name] = s
	return s, nil
}

func (w *Writers) exec(name, query string, args ...any) error {
	s, err := w.stmt(name, query)
	if err != nil {
		return err
	}
	_, err = s.Exec(args...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// CloseStatements invalidates the prepared statements, needed after a
// transaction boundary.
func (w *Writers) CloseStatements() {
	for _, s := range w.stmts {
		s.Close()
	}
	w.stmts = make(map[string]*sql.Stmt)
}

func (w *Writers) CurrentFileID() int64 { return w.curFileID }

// magVar prefers the grid over the value stored in the source record
// since stock sceneries carry stale declinations.
func (w *Writers) magVar(pos geo.Pos, recordValue float64) float64 {
	if w.Mag.Valid() {
		return w.Mag.MagVar(pos)
	}
	return recordValue
}

func feet(meter float64) int {
	return int(math.Round(geo.MeterToFeet(meter)))
}

func roundDeg(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// checkPos guards against out-of-range coordinates reaching the
// database.
func checkPos(pos geo.Pos) error {
	if !pos.IsValid() {
		return fmt.Errorf("invalid coordinate %v", pos)
	}
	if pos.LonX < -180 || pos.LonX > 180 || pos.LatY < -90 || pos.LatY > 90 {
		return fmt.Errorf("coordinate out of range %v", pos)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////
// provenance

func (w *Writers) WriteSceneryArea(area *scenery.Area) error {
	id := w.ids.ID("scenery_area")
	w.curAreaID = id
	w.curAreaPath = area.LocalPath

	return w.exec("scenery_area", `
		INSERT INTO scenery_area (scenery_area_id, number, layer, title,
			local_path, active, required)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, area.Number, area.Layer, area.Title, area.LocalPath,
		area.Active, area.Required)
}

func (w *Writers) WriteFile(path string, header bgl.Header) (int64, error) {
	id := w.ids.ID("bgl_file")
	w.curFileID = id
	w.curFileName = filepath.Base(path)

	var size int64
	var modTime time.Time
	if fi, err := os.Stat(path); err == nil {
		size = fi.Size()
		modTime = fi.ModTime()
	}

	var created any
	if !header.Created.IsZero() {
		created = header.Created.Unix()
	}

	return id, w.exec("bgl_file", `
		INSERT INTO bgl_file (bgl_file_id, scenery_area_id, bgl_create_time,
			file_modification_time, filepath, filename, size)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, w.curAreaID, created, modTime.Unix(), path, w.curFileName, size)
}

///////////////////////////////////////////////////////////////////////////
// airport and children

func (w *Writers) WriteAirport(a *bgl.Airport, isAddon, msfs bool) error {
	if err := checkPos(a.Pos); err != nil {
		return fmt.Errorf("airport %s: %w", a.Ident, err)
	}

	id := w.ids.ID("airport")
	w.Index.AddAirport(a.Ident, id)

	bounds := geo.RectFromPoints(a.Pos)

	var numHard, numSoft, numWater, numLight int
	var numEndClosed, numEndVASI, numEndALS int
	longest := a.LongestRunway()
	for i := range a.Runways {
		rw := &a.Runways[i]
		switch {
		case rw.Surface.IsHard():
			numHard++
		case rw.Surface.IsWater():
			numWater++
		default:
			numSoft++
		}
		if rw.EdgeLight > 0 {
			numLight++
		}
		for _, end := range []*bgl.RunwayEnd{&rw.Primary, &rw.Secondary} {
			if end.HasClosedMarkings {
				numEndClosed++
			}
			if end.LeftVASI != bgl.VASINone || end.RightVASI != bgl.VASINone {
				numEndVASI++
			}
			if end.HasApproachLights {
				numEndALS++
			}
		}
		bounds.Extend(rw.Pos)
	}

	var numGate, numGARamp, numCargo, numMilCargo, numMilCombat, numJetway int
	var largestRamp, largestGate string
	var largestRampRadius, largestGateRadius float64
	for i := range a.Parkings {
		p := &a.Parkings[i]
		switch p.Type {
		case bgl.ParkingGateSmall, bgl.ParkingGateMedium, bgl.ParkingGateHeavy, bgl.ParkingGateExtra:
			numGate++
			if p.RadiusMeter > largestGateRadius {
				largestGateRadius = p.RadiusMeter
				largestGate = p.Type.String()
			}
		case bgl.ParkingRampGA, bgl.ParkingRampGASmall, bgl.ParkingRampGAMedium,
			bgl.ParkingRampGALarge, bgl.ParkingRampGAExtra:
			numGARamp++
			if p.RadiusMeter > largestRampRadius {
				largestRampRadius = p.RadiusMeter
				largestRamp = p.Type.String()
			}
		case bgl.ParkingRampCargo:
			numCargo++
		case bgl.ParkingRampMilCargo:
			numMilCargo++
		case bgl.ParkingRampMilCombat:
			numMilCombat++
		}
		if p.HasJetway {
			numJetway++
		}
		bounds.Extend(p.Pos)
	}

	var longestLen, longestWidth int
	var longestHeading float64
	var longestSurface string
	if longest != -1 {
		rw := &a.Runways[longest]
		longestLen = feet(rw.LengthMeter)
		longestWidth = feet(rw.WidthMeter)
		longestHeading = roundDeg(rw.HeadingTrue)
		longestSurface = rw.Surface.String()
	}

	var towerAlt, towerLon, towerLat any
	if a.TowerPos.IsValid() {
		towerLon, towerLat = a.TowerPos.LonX, a.TowerPos.LatY
		towerAlt = feet(a.AltMeter)
	}

	err := w.exec("airport", `
		INSERT INTO airport (airport_id, file_id, ident, region, name,
			fuel_flags, has_tower_object, is_closed, is_military, is_addon,
			is_navdata, rating,
			num_com, num_parking_gate, num_parking_ga_ramp, num_parking_cargo,
			num_parking_mil_cargo, num_parking_mil_combat, num_approach,
			num_runway_hard, num_runway_soft, num_runway_water,
			num_runway_light, num_runway_end_closed, num_runway_end_vasi,
			num_runway_end_als, num_apron, num_taxi_path, num_helipad,
			num_jetway, num_starts,
			longest_runway_length, longest_runway_width,
			longest_runway_heading, longest_runway_surface, num_runways,
			largest_parking_ramp, largest_parking_gate,
			scenery_local_path, bgl_filename,
			left_lonx, top_laty, right_lonx, bottom_laty,
			mag_var, tower_altitude, tower_lonx, tower_laty,
			altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.curFileID, a.Ident, a.Region, nullStr(util.StopShouting(a.Name)),
		a.FuelFlags, a.HasTowerObject, a.Closed, a.Military, isAddon,
		a.NavdataDummy, a.Rating(isAddon, msfs),
		len(a.Coms), numGate, numGARamp, numCargo,
		numMilCargo, numMilCombat, len(a.Approaches),
		numHard, numSoft, numWater,
		numLight, numEndClosed, numEndVASI,
		numEndALS, len(a.Aprons), len(a.TaxiPaths), len(a.Helipads),
		numJetway, len(a.Starts),
		longestLen, longestWidth, longestHeading, nullStr(longestSurface),
		len(a.Runways),
		nullStr(largestRamp), nullStr(largestGate),
		w.curAreaPath, w.curFileName,
		bounds.West, bounds.North, bounds.East, bounds.South,
		w.magVar(a.Pos, a.MagVar), towerAlt, towerLon, towerLat,
		feet(a.AltMeter), a.Pos.LonX, a.Pos.LatY)
	if err != nil {
		return err
	}

	for i := range a.Runways {
		if err := w.writeRunway(&a.Runways[i], a, id); err != nil {
			return err
		}
	}
	for i := range a.Coms {
		if err := w.writeCom(&a.Coms[i], id); err != nil {
			return err
		}
	}
	for i := range a.Parkings {
		if err := w.writeParking(&a.Parkings[i], id); err != nil {
			return err
		}
	}
	for i := range a.Starts {
		if err := w.writeStart(&a.Starts[i], a, id); err != nil {
			return err
		}
	}
	for i := range a.Helipads {
		if err := w.writeHelipad(&a.Helipads[i], id); err != nil {
			return err
		}
	}
	for i := range a.Aprons {
		if err := w.writeApron(&a.Aprons[i], id); err != nil {
			return err
		}
	}
	for i := range a.TaxiPaths {
		if err := w.writeTaxiPath(&a.TaxiPaths[i], id); err != nil {
			return err
		}
	}
	for i := range a.Approaches {
		if err := w.writeApproach(&a.Approaches[i], a.Ident, id); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writers) writeRunwayEnd(end *bgl.RunwayEnd, rw *bgl.Runway, endType string, pos geo.Pos) (int64, error) {
	id := w.ids.ID("runway_end")

	return id, w.exec("runway_end", `
		INSERT INTO runway_end (runway_end_id, name, end_type,
			offset_threshold, blast_pad, overrun,
			left_vasi_type, left_vasi_pitch, right_vasi_type, right_vasi_pitch,
			has_closed_markings, has_stol_markings, is_takeoff, is_landing,
			is_pattern, app_light_system_type, has_end_lights, has_reils,
			has_touchdown_lights, num_strobes, heading, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, end.Name(), endType,
		feet(end.OffsetThresholdMeter), feet(end.BlastPadMeter), feet(end.OverrunMeter),
		nullStr(end.LeftVASI.String()), end.LeftVASIPitch,
		nullStr(end.RightVASI.String()), end.RightVASIPitch,
		end.HasClosedMarkings, end.HasStolMarkings, end.Takeoff, end.Landing,
		end.Pattern, nullStr(end.ALSSystem), end.HasEndLights, end.HasReils,
		end.HasTouchdown, 0, roundDeg(end.HeadingTrue),
		feet(rw.AltMeter), pos.LonX, pos.LatY)
}

func (w *Writers) writeRunway(rw *bgl.Runway, a *bgl.Airport, airportID int64) error {
	if err := checkPos(rw.Pos); err != nil {
		return fmt.Errorf("runway %s: %w", rw.Primary.Name(), err)
	}

	half := rw.LengthMeter / 2
	primaryPos := rw.Pos.Endpoint(half, geo.OpposedCourse(rw.HeadingTrue))
	secondaryPos := rw.Pos.Endpoint(half, rw.HeadingTrue)

	primaryID, err := w.writeRunwayEnd(&rw.Primary, rw, "P", primaryPos)
	if err != nil {
		return err
	}
	secondaryID, err := w.writeRunwayEnd(&rw.Secondary, rw, "S", secondaryPos)
	if err != nil {
		return err
	}

	w.Index.AddRunwayEnd(a.Ident, rw.Primary.Name(), primaryID)
	w.Index.AddRunwayEnd(a.Ident, rw.Secondary.Name(), secondaryID)

	id := w.ids.ID("runway")
	return w.exec("runway", `
		INSERT INTO runway (runway_id, airport_id, primary_end_id,
			secondary_end_id, surface, length, width, heading,
			pattern_altitude, marking_flags, edge_light, center_light,
			has_center_red, primary_lonx, primary_laty, secondary_lonx,
			secondary_laty, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, airportID, primaryID, secondaryID, rw.Surface.String(),
		feet(rw.LengthMeter), feet(rw.WidthMeter), roundDeg(rw.HeadingTrue),
		feet(rw.PatternAlt), rw.Marking,
		lightStr(rw.EdgeLight), lightStr(rw.CenterLight), false,
		primaryPos.LonX, primaryPos.LatY, secondaryPos.LonX, secondaryPos.LatY,
		feet(rw.AltMeter), rw.Pos.LonX, rw.Pos.LatY)
}

func lightStr(v uint8) any {
	switch v {
	case 1:
		return "L"
	case 2:
		return "M"
	case 3:
		return "H"
	}
	return nil
}

func (w *Writers) writeCom(c *bgl.Com, airportID int64) error {
	id := w.ids.ID("com")
	freqMHz := fsutil.RoundComFrequency(c.Frequency)
	return w.exec("com", `
		INSERT INTO com (com_id, airport_id, type, frequency, name)
		VALUES (?, ?, ?, ?, ?)`,
		id, airportID, c.Type.String(), int(freqMHz*1000+0.5), nullStr(c.Name))
}

func (w *Writers) writeParking(p *bgl.Parking, airportID int64) error {
	id := w.ids.ID("parking")
	return w.exec("parking", `
		INSERT INTO parking (parking_id, airport_id, type, pushback, name,
			number, suffix, airline_codes, radius, heading, has_jetway,
			lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, airportID, p.Type.String(), p.PushBack.String(), p.Name.String(),
		p.Number, p.Suffix.String(), nullStr(strings.Join(p.AirlineCodes, ",")),
		geo.MeterToFeet(p.RadiusMeter), roundDeg(p.HeadingTrue), p.HasJetway,
		p.Pos.LonX, p.Pos.LatY)
}

func (w *Writers) writeStart(s *bgl.Start, a *bgl.Airport, airportID int64) error {
	id := w.ids.ID("start")

	var endID any
	if s.Type == bgl.StartRunway {
		if v, ok := w.Index.RunwayEndID(a.Ident, s.RunwayName()); ok {
			endID = v
		}
	}

	return w.exec("start", `
		INSERT INTO start (start_id, airport_id, runway_end_id, runway_name,
			type, heading, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, airportID, endID, nullStr(s.RunwayName()), s.Type.String(),
		roundDeg(s.HeadingTrue), feet(s.AltMeter), s.Pos.LonX, s.Pos.LatY)
}

func (w *Writers) writeHelipad(h *bgl.Helipad, airportID int64) error {
	id := w.ids.ID("helipad")
	return w.exec("helipad", `
		INSERT INTO helipad (helipad_id, airport_id, surface, type, length,
			width, heading, is_transparent, is_closed, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, airportID, h.Surface.String(), h.Type.String(),
		geo.MeterToFeet(h.LengthMeter), geo.MeterToFeet(h.WidthMeter),
		roundDeg(h.HeadingTrue), h.Transparent, h.Closed,
		feet(h.AltMeter), h.Pos.LonX, h.Pos.LatY)
}

func (w *Writers) writeApron(a *bgl.Apron, airportID int64) error {
	id := w.ids.ID("apron")
	return w.exec("apron", `
		INSERT INTO apron (apron_id, airport_id, surface, is_draw_surface,
			is_draw_detail)
		VALUES (?, ?, ?, ?, ?)`,
		id, airportID, a.Surface.String(), true, true)
}

func (w *Writers) writeTaxiPath(t *bgl.TaxiPath, airportID int64) error {
	id := w.ids.ID("taxi_path")

	var typeStr string
	switch t.Type {
	case bgl.TaxiPathTaxi:
		typeStr = "T"
	case bgl.TaxiPathRunway:
		typeStr = "R"
	case bgl.TaxiPathParking:
		typeStr = "P"
	case bgl.TaxiPathPath:
		typeStr = "PT"
	case bgl.TaxiPathClosed:
		typeStr = "C"
	case bgl.TaxiPathVehicle:
		typeStr = "V"
	case bgl.TaxiPathRoad:
		typeStr = "RD"
	default:
		typeStr = "U"
	}

	return w.exec("taxi_path", `
		INSERT INTO taxi_path (taxi_path_id, airport_id, type, surface, width)
		VALUES (?, ?, ?, ?, ?)`,
		id, airportID, typeStr, t.Surface.String(), geo.MeterToFeet(t.WidthMeter))
}

// WriteNamelist backfills display names for airports already written.
// FS9-era files keep airport names in a separate record instead of the
// airport record itself.
func (w *Writers) WriteNamelist(nl *bgl.Namelist) error {
	for i := range nl.Entries {
		e := &nl.Entries[i]
		if _, ok := w.Index.AirportID(e.AirportIdent); !ok {
			continue
		}
		err := w.exec("namelist", `
			UPDATE airport SET name = coalesce(name, ?), city = ?, state = ?,
				country = ?
			WHERE ident = ?`,
			nullStr(util.StopShouting(e.AirportName)),
			nullStr(util.StopShouting(e.CityName)),
			nullStr(util.StopShouting(e.StateName)),
			nullStr(util.StopShouting(e.CountryName)), e.AirportIdent)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullStr(s string) any {
	if s == "" || s == "NONE" {
		return nil
	}
	return s
}
