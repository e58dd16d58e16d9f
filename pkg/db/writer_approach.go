// pkg/db/writer_approach.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"math"

	"github.com/fsnav/navdbc/pkg/bgl"
	"github.com/fsnav/navdbc/pkg/geo"
)

// fixTypeStr maps the packed fix reference kind onto the schema's
// fix_type vocabulary.
func fixTypeStr(t int) any {
	switch t {
	case bgl.FixTypeVOR:
		return "V"
	case bgl.FixTypeNDB, bgl.FixTypeTerminalNDB:
		return "N"
	case bgl.FixTypeWaypoint:
		return "W"
	case bgl.FixTypeTerminalWaypoint:
		return "TW"
	case bgl.FixTypeRunway:
		return "R"
	}
	return nil
}

// arincApproachName composes the ARINC 424 procedure identifier from
// the approach type, runway and suffix, e.g. I05L for an ILS runway 05L.
func arincApproachName(a *bgl.Approach) string {
	var letter string
	switch a.Type {
	case bgl.ApproachGPS:
		letter = "P"
	case bgl.ApproachVOR:
		letter = "V"
	case bgl.ApproachNDB:
		letter = "N"
	case bgl.ApproachILS:
		letter = "I"
	case bgl.ApproachLocalizer:
		letter = "L"
	case bgl.ApproachSDF:
		letter = "U"
	case bgl.ApproachLDA:
		letter = "X"
	case bgl.ApproachVORDME:
		letter = "D"
	case bgl.ApproachNDBDME:
		letter = "Q"
	case bgl.ApproachRNAV:
		letter = "R"
	case bgl.ApproachLocBackcourse:
		letter = "B"
	default:
		return ""
	}

	name := letter + a.RunwayName()
	if a.Suffix != 0 && a.Suffix != ' ' {
		if a.RunwayName() == "" {
			name += "-"
		}
		name += string(a.Suffix)
	}
	return name
}

func (w *Writers) writeApproach(a *bgl.Approach, airportIdent string, airportID int64) error {
	id := w.ids.ID("approach")

	var endID any
	if rwName := a.RunwayName(); rwName != "" {
		if v, ok := w.Index.RunwayEndIDFuzzy(airportIdent, rwName); ok {
			endID = v
		}
	}

	var suffix any
	if a.Suffix != 0 && a.Suffix != ' ' {
		suffix = string(a.Suffix)
	}

	err := w.exec("approach", `
		INSERT INTO approach (approach_id, airport_id, runway_end_id,
			arinc_name, airport_ident, runway_name, type, suffix,
			has_gps_overlay, fix_type, fix_ident, fix_region,
			fix_airport_ident, altitude, heading, missed_altitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, airportID, endID,
		nullStr(arincApproachName(a)), airportIdent, nullStr(a.RunwayName()),
		a.Type.String(), suffix,
		a.GPSOverlay, fixTypeStr(a.Fix.Type), nullStr(a.Fix.Ident),
		nullStr(a.Fix.Region), nullStr(a.Fix.Airport),
		feet(a.AltMeter), roundDeg(a.HeadingTrue), feet(a.MissedAltMeter))
	if err != nil {
		return err
	}

	for i := range a.Legs {
		if err := w.writeLeg(&a.Legs[i], id, 0); err != nil {
			return err
		}
	}
	for i := range a.MissedLegs {
		if err := w.writeLeg(&a.MissedLegs[i], id, 0); err != nil {
			return err
		}
	}
	for i := range a.Transitions {
		if err := w.writeTransition(&a.Transitions[i], id); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writers) writeTransition(t *bgl.Transition, approachID int64) error {
	id := w.ids.ID("transition")

	typeStr := "F"
	var dmeIdent, dmeRadial, dmeDist any
	if t.Type == bgl.TransitionDME {
		typeStr = "D"
		dmeIdent = nullStr(t.DMEIdent)
		dmeRadial = t.DMERadial
		dmeDist = int(math.Round(t.DMEDistNM))
	}

	err := w.exec("transition", `
		INSERT INTO transition (transition_id, approach_id, type, fix_type,
			fix_ident, fix_region, fix_airport_ident, dme_ident, dme_radial,
			dme_distance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, approachID, typeStr, fixTypeStr(t.Fix.Type),
		nullStr(t.Fix.Ident), nullStr(t.Fix.Region), nullStr(t.Fix.Airport),
		dmeIdent, dmeRadial, dmeDist)
	if err != nil {
		return err
	}

	for i := range t.Legs {
		if err := w.writeLeg(&t.Legs[i], 0, id); err != nil {
			return err
		}
	}
	return nil
}

// writeLeg stores one procedure leg; exactly one of approachID or
// transitionID is set.
func (w *Writers) writeLeg(l *bgl.Leg, approachID, transitionID int64) error {
	id := w.ids.ID("approach_leg")

	var apID, trID any
	if approachID != 0 {
		apID = approachID
	}
	if transitionID != 0 {
		trID = transitionID
	}

	var dist, legTime any
	if l.IsTime {
		legTime = l.DistOrTime
	} else {
		dist = geo.MeterToNm(l.DistOrTime)
	}

	var alt1, alt2 any
	if l.AltDescriptor != bgl.AltDescriptorNone {
		alt1 = feet(l.Alt1Meter)
		if l.AltDescriptor == bgl.AltDescriptorBetween {
			alt2 = feet(l.Alt2Meter)
		}
	}

	var speedType, speed any
	if l.SpeedLimit > 0 {
		speedType = "-"
		speed = int(math.Round(l.SpeedLimit))
	}

	var turn any
	if l.Turn != bgl.TurnNone {
		turn = l.Turn.String()
	}

	return w.exec("approach_leg", `
		INSERT INTO approach_leg (approach_leg_id, approach_id,
			transition_id, is_missed, type, alt_descriptor, turn_direction,
			fix_type, fix_ident, fix_region, fix_airport_ident,
			recommended_fix_type, recommended_fix_ident,
			recommended_fix_region, is_flyover, is_true_course, course,
			distance, time, theta, rho, altitude1, altitude2,
			speed_limit_type, speed_limit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, apID, trID, l.Missed, l.Type.String(),
		nullStr(l.AltDescriptor.String()), turn,
		fixTypeStr(l.Fix.Type), nullStr(l.Fix.Ident), nullStr(l.Fix.Region),
		nullStr(l.Fix.Airport),
		fixTypeStr(l.RecommendedFix.Type), nullStr(l.RecommendedFix.Ident),
		nullStr(l.RecommendedFix.Region),
		l.FlyOver, l.TrueCourse, roundDeg(l.Course),
		dist, legTime, roundDeg(l.Theta), geo.MeterToNm(l.Rho),
		alt1, alt2, speedType, speed)
}
