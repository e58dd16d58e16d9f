// pkg/bgl/approach.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/log"
)

// ApproachFix references a fix by coded ident/region plus the fix kind
// from the packed reference word.
type ApproachFix struct {
	Type   int
	Ident  string
	Region string
	Airport string
}

const (
	FixTypeVOR             = 2
	FixTypeNDB             = 3
	FixTypeTerminalNDB     = 4
	FixTypeWaypoint        = 5
	FixTypeTerminalWaypoint = 6
	FixTypeRunway          = 9
)

func readApproachFix(r *binio.Reader) ApproachFix {
	var f ApproachFix
	packed := r.U32()
	f.Type = int(packed & 0xf)
	f.Ident = intToIdent(packed>>5, true)
	regionPacked := r.U32()
	f.Region = intToIdent(regionPacked&0x7ff, true)
	f.Airport = intToIdent(regionPacked>>11, true)
	return f
}

// Leg is one ARINC 424 procedure leg.
type Leg struct {
	Type          LegType
	Fix           ApproachFix
	RecommendedFix ApproachFix
	FlyOver       bool
	TrueCourse    bool
	Turn          TurnDirection
	AltDescriptor AltDescriptor
	Course        float64
	DistOrTime    float64
	IsTime        bool
	Theta         float64
	Rho           float64
	Alt1Meter     float64
	Alt2Meter     float64
	SpeedLimit    float64
	Missed        bool
}

func readLeg(r *binio.Reader, missed bool) Leg {
	var l Leg
	l.Missed = missed
	l.Type = LegType(r.U8())
	flags := r.U8()
	l.AltDescriptor = AltDescriptor(flags & 0xf)
	l.Turn = TurnDirection((flags >> 4) & 0x3)
	l.FlyOver = flags&0x40 != 0
	l.TrueCourse = flags&0x80 != 0
	l.IsTime = r.U8()&0x1 != 0
	r.U8() // pad

	l.Fix = readApproachFix(r)
	l.RecommendedFix = readApproachFix(r)

	l.Theta = float64(r.F32())
	l.Rho = float64(r.F32())
	l.Course = float64(r.F32())
	l.DistOrTime = float64(r.F32())
	l.Alt1Meter = float64(r.F32())
	l.Alt2Meter = float64(r.F32())
	l.SpeedLimit = float64(r.F32())
	return l
}

// Transition feeds onto an approach from an initial fix.
type Transition struct {
	Type    int
	Fix     ApproachFix
	DMEIdent string
	DMERadial int
	DMEDistNM float64
	Legs    []Leg
}

const (
	TransitionFull = 1
	TransitionDME  = 2
)

func readTransition(r *binio.Reader, rec Record, lg *log.Logger) Transition {
	var t Transition
	t.Type = int(r.U8())
	numLegs := int(r.U8())
	t.Fix = readApproachFix(r)
	t.DMEIdent = intToIdent(r.U32(), false)
	r.U32() // DME region
	t.DMERadial = int(r.I32())
	t.DMEDistNM = float64(r.F32())

	t.Legs = make([]Leg, 0, numLegs)
	for r.Err() == nil && r.Tell() < rec.End() {
		sub := readRecordHeader(r)
		if sub.Size <= 0 {
			break
		}
		if subrecordType(sub.ID) == subTransitionLegs {
			n := int(r.U16())
			for i := 0; i < n && r.Err() == nil; i++ {
				t.Legs = append(t.Legs, readLeg(r, false))
			}
		} else {
			lg.Debugf("%s: transition: skipping subrecord %#x", r.Name(), sub.ID)
		}
		sub.SeekToEnd(r)
	}
	return t
}

// Approach is one instrument procedure with its legs, missed-approach
// legs and transitions.
type Approach struct {
	Record
	Type             ApproachType
	Suffix           byte
	RunwayNumber     int
	RunwayDesignator int
	GPSOverlay       bool
	FixType          int
	Fix              ApproachFix
	AltMeter         float64
	HeadingTrue      float64
	MissedAltMeter   float64
	Legs             []Leg
	MissedLegs       []Leg
	Transitions      []Transition
}

func readApproach(r *binio.Reader, rec Record, lg *log.Logger) Approach {
	a := Approach{Record: rec}

	a.Suffix = r.U8()
	packed := r.U8()
	a.RunwayNumber = int(packed & 0x3f)
	typePacked := r.U8()
	a.Type = ApproachType(typePacked & 0xf)
	a.RunwayDesignator = int((typePacked >> 4) & 0x7)
	a.GPSOverlay = typePacked&0x80 != 0

	numTransitions := int(r.U8())
	numLegs := int(r.U8())
	numMissedLegs := int(r.U8())

	a.Fix = readApproachFix(r)
	a.AltMeter = float64(r.F32())
	a.HeadingTrue = float64(r.F32())
	a.MissedAltMeter = float64(r.F32())

	a.Legs = make([]Leg, 0, numLegs)
	a.MissedLegs = make([]Leg, 0, numMissedLegs)
	a.Transitions = make([]Transition, 0, numTransitions)

	for r.Err() == nil && r.Tell() < a.End() {
		sub := readRecordHeader(r)
		if sub.Size <= 0 {
			break
		}

		switch subrecordType(sub.ID) {
		case subLegs:
			n := int(r.U16())
			for i := 0; i < n && r.Err() == nil; i++ {
				a.Legs = append(a.Legs, readLeg(r, false))
			}
		case subMissedLegs:
			n := int(r.U16())
			for i := 0; i < n && r.Err() == nil; i++ {
				a.MissedLegs = append(a.MissedLegs, readLeg(r, true))
			}
		case subTransition:
			a.Transitions = append(a.Transitions, readTransition(r, sub, lg))
		default:
			lg.Debugf("%s: approach: skipping subrecord %#x at %#x",
				r.Name(), sub.ID, sub.Start)
		}

		sub.SeekToEnd(r)
	}

	return a
}

// RunwayName returns the runway reference or "" for circling
// approaches without one.
func (a Approach) RunwayName() string {
	if a.RunwayNumber == 0 {
		return ""
	}
	end := RunwayEnd{Number: a.RunwayNumber, Designator: a.RunwayDesignator}
	return end.Name()
}
