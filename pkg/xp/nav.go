// pkg/xp/nav.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xp

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/fsutil"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// earth_nav.dat row type codes.
const (
	navRowNDB         = 2
	navRowVOR         = 3 // also VORTAC and VOR-DME via the name suffix
	navRowLocalizer   = 4 // part of a full ILS
	navRowLocOnly     = 5
	navRowGlideslope  = 6
	navRowOuterMarker = 7
	navRowMidMarker   = 8
	navRowInnerMarker = 9
	navRowDME         = 12 // co-located with VOR or ILS
	navRowDMEOnly     = 13
)

// Common field layout:
//   code laty lonx elev-ft freq range multi ident airport region name...
const (
	navCode = iota
	navLaty
	navLonx
	navElev
	navFreq
	navRange
	navMulti
	navIdent
	navAirport
	navRegion
	navName

	navMinFields = 10
)

type ilsKey struct {
	ident   string
	airport string
}

// pendingIls accumulates the localizer, glideslope and DME rows that
// together form one ILS facility. Emitted on Finish.
type pendingIls struct {
	ident   string
	region  string
	airport string
	runway  string
	name    string

	pos         geo.Pos
	altFeet     int
	frequency   int // kHz
	rangeNM     int
	headingTrue float64
	locOnly     bool
	perf        string

	hasGS   bool
	gsPos   geo.Pos
	gsAlt   int
	gsPitch float64

	hasDME bool
	dmePos geo.Pos
	dmeAlt int
}

// NavReader reads earth_nav.dat. VOR and NDB rows double as waypoint
// rows of type V/N so airways can reference them; ILS components are
// collected per ident+airport and written as one row each.
type NavReader struct {
	d     *db.Database
	fixes *FixIndex
	ids   *Counters
	lg    *log.Logger

	insertVor      *sql.Stmt
	insertNdb      *sql.Stmt
	insertMarker   *sql.Stmt
	insertWaypoint *sql.Stmt
	insertIls      *sql.Stmt
	updateVorDme   *sql.Stmt

	pending map[ilsKey]*pendingIls
}

func NewNavReader(d *db.Database, fixes *FixIndex, ids *Counters, lg *log.Logger) (*NavReader, error) {
	r := &NavReader{
		d:       d,
		fixes:   fixes,
		ids:     ids,
		lg:      lg,
		pending: make(map[ilsKey]*pendingIls),
	}

	var err error
	prepare := func(stmt **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*stmt, err = d.Prepare(query)
	}

	prepare(&r.insertVor, `
		INSERT INTO vor (vor_id, file_id, ident, name, region, type,
			frequency, channel, range, mag_var, dme_only, dme_altitude,
			dme_lonx, dme_laty, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	prepare(&r.insertNdb, `
		INSERT INTO ndb (ndb_id, file_id, ident, name, region, type,
			frequency, range, mag_var, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	prepare(&r.insertMarker, `
		INSERT INTO marker (marker_id, file_id, ident, region, type,
			heading, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	prepare(&r.insertWaypoint, `
		INSERT INTO waypoint (waypoint_id, file_id, ident, region, type,
			num_victor_airway, num_jet_airway, mag_var, lonx, laty)
		VALUES (?, ?, ?, ?, ?, 0, 0, ?, ?, ?)`)
	prepare(&r.insertIls, `
		INSERT INTO ils (ils_id, ident, name, region, type, perf_indicator,
			frequency, range, mag_var, has_backcourse,
			dme_altitude, dme_lonx, dme_laty,
			gs_pitch, gs_altitude, gs_lonx, gs_laty,
			loc_runway_end_id, loc_airport_ident, loc_runway_name,
			loc_heading, loc_width,
			end1_lonx, end1_laty, end_mid_lonx, end_mid_laty,
			end2_lonx, end2_laty, altitude, lonx, laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	prepare(&r.updateVorDme, `
		UPDATE vor SET dme_altitude = ?, dme_lonx = ?, dme_laty = ?
		WHERE ident = ? AND region = ?
		AND abs(lonx - ?) < 0.1 AND abs(laty - ?) < 0.1`)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *NavReader) Close() {
	for _, s := range []*sql.Stmt{r.insertVor, r.insertNdb, r.insertMarker,
		r.insertWaypoint, r.insertIls, r.updateVorDme} {
		if s != nil {
			s.Close()
		}
	}
}

func (r *NavReader) Read(fields []string, ctx *Context) error {
	code, err := parseInt(at(fields, navCode))
	if err != nil {
		r.lg.Warnf("%s: bad navaid type code, skipping", ctx.prefix())
		return nil
	}

	laty, err1 := parseFloat(at(fields, navLaty))
	lonx, err2 := parseFloat(at(fields, navLonx))
	if err1 != nil || err2 != nil {
		r.lg.Warnf("%s: unparseable navaid coordinate, skipping", ctx.prefix())
		return nil
	}
	pos := geo.NewPos(lonx, laty)
	if !pos.IsValid() {
		r.lg.Warnf("%s: navaid coordinate out of range, skipping", ctx.prefix())
		return nil
	}

	alt, _ := parseInt(at(fields, navElev))
	freq, _ := parseInt(at(fields, navFreq))
	rangeNM, _ := parseInt(at(fields, navRange))

	switch code {
	case navRowNDB:
		return r.readNdb(fields, ctx, pos, alt, freq, rangeNM)
	case navRowVOR:
		return r.readVor(fields, ctx, pos, alt, freq, rangeNM)
	case navRowLocalizer, navRowLocOnly:
		return r.readLocalizer(fields, ctx, pos, alt, freq, rangeNM, code == navRowLocOnly)
	case navRowGlideslope:
		return r.readGlideslope(fields, ctx, pos, alt)
	case navRowOuterMarker, navRowMidMarker, navRowInnerMarker:
		return r.readMarker(fields, ctx, pos, alt, code)
	case navRowDME, navRowDMEOnly:
		return r.readDme(fields, ctx, pos, alt, freq, rangeNM, code == navRowDMEOnly)
	default:
		r.lg.Debugf("%s: navaid type %d not used", ctx.prefix(), code)
		return nil
	}
}

func (r *NavReader) readNdb(fields []string, ctx *Context, pos geo.Pos, alt, freq, rangeNM int) error {
	ident := at(fields, navIdent)
	region := at(fields, navRegion)

	// class from the range column
	class := "MH"
	switch {
	case rangeNM >= 200:
		class = "HH"
	case rangeNM >= 50:
		class = "H"
	}

	r.ids.NDB++
	_, err := r.insertNdb.Exec(r.ids.NDB, ctx.FileID, ident,
		nullIfEmpty(strings.TrimSuffix(rest(fields, navName), " NDB")), region,
		class, freq*10, rangeNM, ctx.Mag.MagVar(pos), alt, pos.LonX, pos.LatY)
	if err != nil {
		return fmt.Errorf("ndb %s: %w", ident, err)
	}
	return r.addNavWaypoint(ctx, ident, region, "N", pos)
}

func (r *NavReader) readVor(fields []string, ctx *Context, pos geo.Pos, alt, freq, rangeNM int) error {
	ident := at(fields, navIdent)
	region := at(fields, navRegion)
	name := rest(fields, navName)

	// The name suffix distinguishes plain VOR, VOR-DME and VORTAC.
	var typePrefix string
	var hasDme bool
	switch {
	case strings.HasSuffix(name, "VORTAC"):
		typePrefix = "VT"
		hasDme = true
	case strings.HasSuffix(name, "VOR-DME"), strings.HasSuffix(name, "VOR/DME"):
		typePrefix = ""
		hasDme = true
	default:
		typePrefix = ""
	}

	class := "L"
	switch {
	case rangeNM >= 120:
		class = "H"
	case rangeNM < 30:
		class = "T"
	}

	var dmeAlt, dmeLon, dmeLat any
	if hasDme {
		dmeAlt, dmeLon, dmeLat = alt, pos.LonX, pos.LatY
	}

	r.ids.VOR++
	_, err := r.insertVor.Exec(r.ids.VOR, ctx.FileID, ident,
		nullIfEmpty(name), region, typePrefix+class, freq*10,
		nil, rangeNM, ctx.Mag.MagVar(pos), false,
		dmeAlt, dmeLon, dmeLat, alt, pos.LonX, pos.LatY)
	if err != nil {
		return fmt.Errorf("vor %s: %w", ident, err)
	}
	return r.addNavWaypoint(ctx, ident, region, "V", pos)
}

// addNavWaypoint shadows a radio navaid as a waypoint row so airway
// fragments can reference it; nav_id is backfilled post-load.
func (r *NavReader) addNavWaypoint(ctx *Context, ident, region, typ string, pos geo.Pos) error {
	if _, dup := r.fixes.ID(ident, region); dup {
		return nil
	}

	r.ids.Waypoint++
	_, err := r.insertWaypoint.Exec(r.ids.Waypoint, ctx.FileID, ident,
		region, typ, ctx.Mag.MagVar(pos), pos.LonX, pos.LatY)
	if err != nil {
		return fmt.Errorf("nav waypoint %s: %w", ident, err)
	}
	r.fixes.Add(ident, region, r.ids.Waypoint, pos)
	return nil
}

func (r *NavReader) pendingFor(fields []string) *pendingIls {
	key := ilsKey{at(fields, navIdent), at(fields, navAirport)}
	p, ok := r.pending[key]
	if !ok {
		p = &pendingIls{ident: key.ident, airport: key.airport}
		r.pending[key] = p
	}
	return p
}

func (r *NavReader) readLocalizer(fields []string, ctx *Context, pos geo.Pos, alt, freq, rangeNM int, locOnly bool) error {
	heading, err := parseFloat(at(fields, navMulti))
	if err != nil {
		r.lg.Warnf("%s: bad localizer bearing, skipping", ctx.prefix())
		return nil
	}

	p := r.pendingFor(fields)
	p.region = at(fields, navRegion)
	p.runway = at(fields, navName)
	p.name = rest(fields, navName+1)
	p.pos = pos
	p.altFeet = alt
	p.frequency = freq * 10
	p.rangeNM = rangeNM
	// bearing carries the true heading, sometimes offset by full turns
	p.headingTrue = geo.NormalizeCourse(heading)
	p.locOnly = locOnly
	if i := strings.LastIndexByte(p.name, ' '); i > 0 {
		last := p.name[i+1:]
		if last == "I" || last == "II" || last == "III" || last == "IGS" ||
			last == "LOC" || last == "SDF" || last == "LDA" {
			p.perf = last
		}
	}
	return nil
}

func (r *NavReader) readGlideslope(fields []string, ctx *Context, pos geo.Pos, alt int) error {
	// The bearing column packs pitch*100 in front of the heading:
	// 325069.213 is a 3.25 degree slope on heading 069.213.
	packed, err := parseFloat(at(fields, navMulti))
	if err != nil {
		r.lg.Warnf("%s: bad glideslope field, skipping", ctx.prefix())
		return nil
	}

	p := r.pendingFor(fields)
	p.hasGS = true
	p.gsPos = pos
	p.gsAlt = alt
	p.gsPitch = math.Floor(packed/1000) / 100
	return nil
}

func (r *NavReader) readDme(fields []string, ctx *Context, pos geo.Pos, alt, freq, rangeNM int, standalone bool) error {
	ident := at(fields, navIdent)
	region := at(fields, navRegion)

	if standalone {
		// DME without a VOR or ILS becomes its own vor row
		r.ids.VOR++
		_, err := r.insertVor.Exec(r.ids.VOR, ctx.FileID, ident,
			nullIfEmpty(rest(fields, navName)), region, "DME", freq*10,
			nil, rangeNM, ctx.Mag.MagVar(pos), true,
			alt, pos.LonX, pos.LatY, alt, pos.LonX, pos.LatY)
		if err != nil {
			return fmt.Errorf("dme %s: %w", ident, err)
		}
		return nil
	}

	if key := (ilsKey{ident, at(fields, navAirport)}); r.pending[key] != nil {
		p := r.pending[key]
		p.hasDME = true
		p.dmePos = pos
		p.dmeAlt = alt
		return nil
	}

	// paired with a VOR: backfill the dme columns of the station
	_, err := r.updateVorDme.Exec(alt, pos.LonX, pos.LatY, ident, region,
		pos.LonX, pos.LatY)
	if err != nil {
		return fmt.Errorf("vor dme %s: %w", ident, err)
	}
	return nil
}

func (r *NavReader) readMarker(fields []string, ctx *Context, pos geo.Pos, alt, code int) error {
	var typ string
	switch code {
	case navRowOuterMarker:
		typ = "OUTER"
	case navRowMidMarker:
		typ = "MIDDLE"
	case navRowInnerMarker:
		typ = "INNER"
	}

	heading, _ := parseFloat(at(fields, navMulti))

	r.ids.Marker++
	_, err := r.insertMarker.Exec(r.ids.Marker, ctx.FileID,
		nullIfEmpty(at(fields, navIdent)), at(fields, navRegion), typ,
		geo.NormalizeCourse(heading), alt, pos.LonX, pos.LatY)
	if err != nil {
		return fmt.Errorf("marker: %w", err)
	}
	return nil
}

// Finish writes the assembled ILS facilities.
func (r *NavReader) Finish(ctx *Context) error {
	for _, p := range r.pending {
		if err := r.writeIls(p, ctx); err != nil {
			return err
		}
	}
	r.pending = make(map[ilsKey]*pendingIls)
	return nil
}

func (r *NavReader) writeIls(p *pendingIls, ctx *Context) error {
	if !p.pos.IsValid() {
		r.lg.Warnf("%s: ILS %s/%s without localizer row, dropping",
			ctx.FileName, p.ident, p.airport)
		return nil
	}

	runway := fsutil.NormalizeRunway(strings.TrimPrefix(p.runway, "RW"))

	var endID any
	if runway != "" && p.airport != "" {
		if id, ok := ctx.Index.RunwayEndIDFuzzy(p.airport, runway); ok {
			endID = id
		}
	}

	ilsType := "1"
	if p.locOnly || !p.hasGS {
		ilsType = "0"
	}

	width := 5.
	p1, p2, pmid := fsutil.CalculateIlsGeometry(p.pos, p.headingTrue, width,
		fsutil.DefaultFeatherLengthNM)

	var gsPitch, gsAlt, gsLon, gsLat any
	if p.hasGS {
		gsPitch, gsAlt = p.gsPitch, p.gsAlt
		gsLon, gsLat = p.gsPos.LonX, p.gsPos.LatY
	}
	var dmeAlt, dmeLon, dmeLat any
	if p.hasDME {
		dmeAlt = p.dmeAlt
		dmeLon, dmeLat = p.dmePos.LonX, p.dmePos.LatY
	}

	r.ids.ILS++
	_, err := r.insertIls.Exec(r.ids.ILS, p.ident, nullIfEmpty(p.name),
		nullIfEmpty(p.region), ilsType, nullIfEmpty(p.perf),
		p.frequency, p.rangeNM, ctx.Mag.MagVar(p.pos),
		dmeAlt, dmeLon, dmeLat,
		gsPitch, gsAlt, gsLon, gsLat,
		endID, nullIfEmpty(p.airport), nullIfEmpty(runway),
		p.headingTrue, width,
		p1.LonX, p1.LatY, pmid.LonX, pmid.LatY, p2.LonX, p2.LatY,
		p.altFeet, p.pos.LonX, p.pos.LatY)
	if err != nil {
		return fmt.Errorf("ils %s: %w", p.ident, err)
	}
	return nil
}

func (r *NavReader) MinFields() int { return navMinFields }

func (r *NavReader) Reset() {
	r.pending = make(map[ilsKey]*pendingIls)
}
