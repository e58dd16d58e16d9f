// pkg/xp/cifp.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xp

import (
	"bufio"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/fsutil"
	"github.com/fsnav/navdbc/pkg/log"
)

// CIFP rows are comma-separated ARINC 424.18 fields behind a
// colon-separated row-type prefix, one leg per line:
//
//   APPCH:010,I,I08R, ,CI08R,ED,P,C,E  A,...
//   SID:030,5,ANEK1A,RW26L,ANEKI,ED,E,A,...
//
// unlike the other text files, so the reader brings its own tokenizer.
const (
	cifpSeqNo = iota
	cifpRouteType
	cifpProcIdent
	cifpTransIdent
	cifpFixIdent
	cifpFixRegion
	cifpFixSection
	cifpFixSubsection
	cifpDescCode
	cifpTurnDir
	cifpRnp
	cifpPathTerm
	cifpTdv
	cifpRecdNavaid
	cifpRecdRegion
	cifpArcRadius
	cifpTheta
	cifpRho
	cifpCourse
	cifpDistTime
	cifpRecdSection
	cifpRecdSubsection
	cifpAltDescr
	cifpAlt1
	cifpAlt2
	cifpTransAlt
	cifpSpeedDescr
	cifpSpeedLimit
	cifpVertAngle

	cifpMinFields = 20
)

type cifpLeg struct {
	transIdent string
	missed     bool
	fields     []string
}

type cifpProcKey struct {
	rowType   string
	procIdent string
}

// CifpReader buffers the legs of one procedure and emits the
// procedure, its transitions and all legs once the next procedure
// starts. SIDs and STARs share the approach table, tagged by suffix.
type CifpReader struct {
	d   *db.Database
	ids *Counters
	lg  *log.Logger

	insertApproach  *sql.Stmt
	insertTrans     *sql.Stmt
	insertLeg       *sql.Stmt
	HasSidStar      bool

	airportIdent string
	cur          cifpProcKey
	legs         []cifpLeg
}

func NewCifpReader(d *db.Database, ids *Counters, lg *log.Logger) (*CifpReader, error) {
	r := &CifpReader{d: d, ids: ids, lg: lg}

	var err error
	prepare := func(stmt **sql.Stmt, query string) {
		if err != nil {
			return
		}
		*stmt, err = d.Prepare(query)
	}

	prepare(&r.insertApproach, `
		INSERT INTO approach (approach_id, airport_id, runway_end_id,
			arinc_name, airport_ident, runway_name, type, suffix,
			has_gps_overlay, has_vertical_angle, has_rnp, fix_type,
			fix_ident, fix_region, fix_airport_ident)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	prepare(&r.insertTrans, `
		INSERT INTO transition (transition_id, approach_id, type, fix_type,
			fix_ident, fix_region, fix_airport_ident)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	prepare(&r.insertLeg, `
		INSERT INTO approach_leg (approach_leg_id, approach_id,
			transition_id, is_missed, type, arinc_descr_code,
			alt_descriptor, turn_direction, rnp, fix_type, fix_ident,
			fix_region, recommended_fix_type, recommended_fix_ident,
			recommended_fix_region, is_flyover, is_true_course, course,
			distance, time, theta, rho, altitude1, altitude2,
			speed_limit_type, speed_limit, vertical_angle)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CifpReader) Close() {
	for _, s := range []*sql.Stmt{r.insertApproach, r.insertTrans, r.insertLeg} {
		if s != nil {
			s.Close()
		}
	}
}

// LoadCifp reads one per-airport CIFP file. The airport ident comes
// from the file name, e.g. CIFP/EDDF.dat.
func (r *CifpReader) LoadCifp(path, airportIdent string, ctx *Context) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r.Reset()
	r.airportIdent = airportIdent
	ctx.LineNum = 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		ctx.LineNum++
		line := strings.TrimSuffix(strings.TrimSpace(scanner.Text()), ";")
		if line == "" || line == "99" {
			continue
		}

		rowType, rest, ok := strings.Cut(line, ":")
		if !ok {
			r.lg.Warnf("%s: CIFP line without row type, skipping", ctx.prefix())
			continue
		}
		switch rowType {
		case "SID", "STAR", "APPCH":
		case "RWY", "PRDAT":
			continue
		default:
			r.lg.Debugf("%s: CIFP row type %s not used", ctx.prefix(), rowType)
			continue
		}

		fields := strings.Split(rest, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < cifpMinFields {
			r.lg.Warnf("%s: short CIFP line (%d fields), skipping",
				ctx.prefix(), len(fields))
			continue
		}

		if err := r.readLine(rowType, fields, ctx); err != nil {
			return fmt.Errorf("%s: %w", ctx.prefix(), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return r.Finish(ctx)
}

func (r *CifpReader) readLine(rowType string, fields []string, ctx *Context) error {
	key := cifpProcKey{rowType, at(fields, cifpProcIdent)}
	if key != r.cur {
		if err := r.flush(ctx); err != nil {
			return err
		}
		r.cur = key
	}

	// a missed-approach leg carries M in the descriptor code
	desc := at(fields, cifpDescCode)
	missed := rowType == "APPCH" && len(desc) > 2 && desc[2] == 'M'

	fieldsCopy := make([]string, len(fields))
	copy(fieldsCopy, fields)
	r.legs = append(r.legs, cifpLeg{
		transIdent: at(fields, cifpTransIdent),
		missed:     missed,
		fields:     fieldsCopy,
	})
	return nil
}

// flush writes the buffered procedure.
func (r *CifpReader) flush(ctx *Context) error {
	if len(r.legs) == 0 {
		return nil
	}
	defer func() { r.legs = r.legs[:0] }()

	// the common route (blank or "ALL" transition) belongs to the
	// procedure itself, every other transition ident gets its own row
	isCommon := func(t string) bool {
		return t == "" || t == "ALL" || strings.HasPrefix(t, "RW")
	}

	var runwayName, approachSuffix, approachType string
	gpsOverlay := false
	switch r.cur.rowType {
	case "SID":
		approachType, approachSuffix, gpsOverlay = "GPS", "D", true
	case "STAR":
		approachType, approachSuffix, gpsOverlay = "GPS", "A", true
	case "APPCH":
		approachType = arincToApproachType(r.cur.procIdent)
		runwayName = fsutil.RunwayFromArincName(r.cur.procIdent)
	}

	// SIDs and STARs bind to the runway named by their transition
	if runwayName == "" {
		for _, l := range r.legs {
			if strings.HasPrefix(l.transIdent, "RW") {
				runwayName = fsutil.NormalizeRunway(strings.TrimPrefix(l.transIdent, "RW"))
				break
			}
		}
	}

	var airportID, endID any
	if id, ok := ctx.Index.AirportID(r.airportIdent); ok {
		airportID = id
	}
	if runwayName != "" {
		if id, ok := ctx.Index.RunwayEndIDFuzzy(r.airportIdent, runwayName); ok {
			endID = id
		}
	}

	hasVertical, hasRnp := false, false
	for _, l := range r.legs {
		if at(l.fields, cifpVertAngle) != "" {
			hasVertical = true
		}
		if at(l.fields, cifpRnp) != "" {
			hasRnp = true
		}
	}

	// the first leg of the common route carries the initial fix
	var fixIdent, fixRegion string
	for _, l := range r.legs {
		if isCommon(l.transIdent) && !l.missed {
			fixIdent = at(l.fields, cifpFixIdent)
			fixRegion = at(l.fields, cifpFixRegion)
			break
		}
	}

	r.ids.Approach++
	approachID := r.ids.Approach
	_, err := r.insertApproach.Exec(approachID, airportID, endID,
		r.cur.procIdent, r.airportIdent, nullIfEmpty(runwayName),
		approachType, nullIfEmpty(approachSuffix), gpsOverlay,
		hasVertical, hasRnp, "W", nullIfEmpty(fixIdent),
		nullIfEmpty(fixRegion), r.airportIdent)
	if err != nil {
		return fmt.Errorf("procedure %s: %w", r.cur.procIdent, err)
	}
	if r.cur.rowType != "APPCH" {
		r.HasSidStar = true
	}

	transitions := make(map[string]int64)
	for _, l := range r.legs {
		var transitionID int64
		if !isCommon(l.transIdent) {
			id, ok := transitions[l.transIdent]
			if !ok {
				r.ids.Transition++
				id = r.ids.Transition
				transitions[l.transIdent] = id
				_, err := r.insertTrans.Exec(id, approachID, "F", "W",
					l.transIdent, nullIfEmpty(at(l.fields, cifpFixRegion)),
					r.airportIdent)
				if err != nil {
					return fmt.Errorf("transition %s: %w", l.transIdent, err)
				}
			}
			transitionID = id
		}
		if err := r.writeLeg(&l, approachID, transitionID); err != nil {
			return err
		}
	}
	return nil
}

func (r *CifpReader) writeLeg(l *cifpLeg, approachID, transitionID int64) error {
	f := l.fields

	var apID, trID any
	if transitionID != 0 {
		trID = transitionID
	} else {
		apID = approachID
	}

	var turn any
	if t := at(f, cifpTurnDir); t == "L" || t == "R" || t == "E" {
		if t == "E" {
			t = "B"
		}
		turn = t
	}

	desc := at(f, cifpDescCode)
	flyover := len(desc) > 1 && (desc[1] == 'Y' || desc[1] == 'B')

	course, hasCourse := tenths(at(f, cifpCourse))
	theta, _ := tenths(at(f, cifpTheta))
	rho, _ := tenths(at(f, cifpRho))

	var dist, legTime any
	if dt := at(f, cifpDistTime); dt != "" {
		if strings.HasPrefix(dt, "T") {
			if v, ok := tenths(dt[1:]); ok {
				legTime = v
			}
		} else if v, ok := tenths(dt); ok {
			dist = v
		}
	}

	var courseVal any
	if hasCourse {
		courseVal = course
	}

	var rnp any
	if v, ok := tenths(at(f, cifpRnp)); ok {
		rnp = v
	}

	var vertAngle any
	if s := at(f, cifpVertAngle); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			vertAngle = v / 100
		}
	}

	var speedType, speed any
	if s := at(f, cifpSpeedLimit); s != "" {
		if v, err := parseInt(s); err == nil {
			speed = v
			switch at(f, cifpSpeedDescr) {
			case "+":
				speedType = "+"
			case "-", "":
				speedType = "-"
			}
		}
	}

	r.ids.ApproachLeg++
	_, err := r.insertLeg.Exec(r.ids.ApproachLeg, apID, trID, l.missed,
		at(f, cifpPathTerm), nullIfEmpty(desc),
		nullIfEmpty(at(f, cifpAltDescr)), turn, rnp,
		"W", nullIfEmpty(at(f, cifpFixIdent)),
		nullIfEmpty(at(f, cifpFixRegion)),
		"W", nullIfEmpty(at(f, cifpRecdNavaid)),
		nullIfEmpty(at(f, cifpRecdRegion)),
		flyover, false, courseVal, dist, legTime, theta, rho,
		cifpAltitude(at(f, cifpAlt1)), cifpAltitude(at(f, cifpAlt2)),
		speedType, speed, vertAngle)
	if err != nil {
		return fmt.Errorf("leg %s: %w", at(f, cifpSeqNo), err)
	}
	return nil
}

func (r *CifpReader) Finish(ctx *Context) error {
	if err := r.flush(ctx); err != nil {
		return err
	}
	r.cur = cifpProcKey{}
	return nil
}

func (r *CifpReader) MinFields() int { return cifpMinFields }

func (r *CifpReader) Reset() {
	r.legs = r.legs[:0]
	r.cur = cifpProcKey{}
}

// tenths parses ARINC tenth-scaled numerics like 0838 for 83.8.
func tenths(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v / 10, true
}

// cifpAltitude parses 05000 or FL180 style altitudes to feet.
func cifpAltitude(s string) any {
	if s == "" {
		return nil
	}
	if fl, ok := strings.CutPrefix(s, "FL"); ok {
		if v, err := strconv.Atoi(fl); err == nil {
			return v * 100
		}
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return nil
}

// arincToApproachType maps the leading procedure type letter of an
// approach ident like I08R or R26-Y.
func arincToApproachType(procIdent string) string {
	if procIdent == "" {
		return "GPS"
	}
	switch procIdent[0] {
	case 'I':
		return "ILS"
	case 'L':
		return "LOC"
	case 'B':
		return "LOCB"
	case 'D':
		return "VORDME"
	case 'V':
		return "VOR"
	case 'N':
		return "NDB"
	case 'Q':
		return "NDBDME"
	case 'R', 'H':
		return "RNAV"
	case 'S', 'F':
		return "SDF"
	case 'X':
		return "LDA"
	case 'U':
		return "SDF"
	case 'P':
		return "GPS"
	}
	return "GPS"
}
