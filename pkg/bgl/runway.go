// pkg/bgl/runway.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"fmt"

	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// RunwayEnd is one end of a runway; primary and secondary are laid out
// symmetrically in the record and enriched by typed child subrecords.
type RunwayEnd struct {
	Number     int
	Designator int
	HeadingTrue float64

	OffsetThresholdMeter float64
	BlastPadMeter        float64
	OverrunMeter         float64

	HasApproachLights bool
	ALSSystem         string
	HasEndLights      bool
	HasReils          bool
	HasTouchdown      bool

	LeftVASI  VASIType
	RightVASI VASIType
	LeftVASIPitch  float64
	RightVASIPitch float64

	HasClosedMarkings bool
	HasStolMarkings   bool
	Takeoff           bool
	Landing           bool
	Pattern           string
}

// Name formats the runway end as the canonical two-digit form with an
// optional designator letter.
func (e RunwayEnd) Name() string {
	s := fmt.Sprintf("%02d", e.Number)
	switch e.Designator {
	case 1:
		s += "L"
	case 2:
		s += "R"
	case 3:
		s += "C"
	case 4:
		s += "W"
	case 5:
		s += "A"
	case 6:
		s += "B"
	}
	return s
}

type Runway struct {
	Record
	Surface     Surface
	Primary     RunwayEnd
	Secondary   RunwayEnd
	Pos         geo.Pos
	AltMeter    float64
	LengthMeter float64
	WidthMeter  float64
	HeadingTrue float64
	PatternAlt  float64

	EdgeLight   uint8
	CenterLight uint8

	Marking uint32
}

func readRunway(r *binio.Reader, rec Record, v Variant, lg *log.Logger) Runway {
	rw := Runway{Record: rec}

	rw.Surface = Surface(r.U16() & 0xff)
	rw.Primary.Number = int(r.U8())
	rw.Primary.Designator = int(r.U8())
	rw.Secondary.Number = int(r.U8())
	rw.Secondary.Designator = int(r.U8())

	// Primary and secondary ILS ident slots, resolved post-load
	r.Skip(8)

	rw.Pos, rw.AltMeter = readPos(r)
	rw.LengthMeter = float64(r.F32())
	rw.WidthMeter = float64(r.F32())
	rw.HeadingTrue = geo.NormalizeCourse(float64(r.F32()))
	rw.PatternAlt = float64(r.F32())

	rw.Marking = uint32(r.U16())
	lights := r.U8()
	rw.EdgeLight = lights & 0xf
	rw.CenterLight = (lights >> 4) & 0xf
	pattern := r.U8()

	rw.Primary.HeadingTrue = rw.HeadingTrue
	rw.Secondary.HeadingTrue = geo.OpposedCourse(rw.HeadingTrue)

	rw.Primary.Takeoff = pattern&0x01 == 0
	rw.Primary.Landing = pattern&0x02 == 0
	rw.Secondary.Takeoff = pattern&0x04 == 0
	rw.Secondary.Landing = pattern&0x08 == 0
	rw.Primary.Pattern = patternStr(pattern & 0x10)
	rw.Secondary.Pattern = patternStr(pattern & 0x20)

	if rw.Marking&0x0200 != 0 {
		rw.Primary.HasClosedMarkings = true
	}
	if rw.Marking&0x0400 != 0 {
		rw.Secondary.HasClosedMarkings = true
	}
	if rw.Marking&0x0800 != 0 {
		rw.Primary.HasStolMarkings = true
	}
	if rw.Marking&0x1000 != 0 {
		rw.Secondary.HasStolMarkings = true
	}

	// Child subrecords refine the two ends. Surface repeated in both a
	// primary and secondary child keeps the later value.
	for r.Err() == nil && r.Tell() < rw.End() {
		sub := readRecordHeader(r)
		if sub.Size <= 0 {
			break
		}

		switch subrecordType(sub.ID) {
		case subOffsetThresholdPrimary:
			rw.Primary.OffsetThresholdMeter = readPad(r)
		case subOffsetThresholdSecondary:
			rw.Secondary.OffsetThresholdMeter = readPad(r)
		case subBlastPadPrimary:
			rw.Primary.BlastPadMeter = readPad(r)
		case subBlastPadSecondary:
			rw.Secondary.BlastPadMeter = readPad(r)
		case subOverrunPrimary:
			rw.Primary.OverrunMeter = readPad(r)
		case subOverrunSecondary:
			rw.Secondary.OverrunMeter = readPad(r)
		case subApproachLightsPrimary:
			readApproachLights(r, &rw.Primary)
		case subApproachLightsSecondary:
			readApproachLights(r, &rw.Secondary)
		case subVASIPrimaryLeft:
			rw.Primary.LeftVASI, rw.Primary.LeftVASIPitch = readVASI(r)
		case subVASIPrimaryRight:
			rw.Primary.RightVASI, rw.Primary.RightVASIPitch = readVASI(r)
		case subVASISecondaryLeft:
			rw.Secondary.LeftVASI, rw.Secondary.LeftVASIPitch = readVASI(r)
		case subVASISecondaryRight:
			rw.Secondary.RightVASI, rw.Secondary.RightVASIPitch = readVASI(r)
		default:
			lg.Debugf("%s: runway %s: skipping subrecord %#x at %#x",
				r.Name(), rw.Primary.Name(), sub.ID, sub.Start)
		}

		sub.SeekToEnd(r)
	}

	return rw
}

func patternStr(flag uint8) string {
	if flag != 0 {
		return "R"
	}
	return "L"
}

// readPad reads the surface+length payload shared by the offset
// threshold, blast pad and overrun children. A repeated surface wins
// over the parent record's.
func readPad(r *binio.Reader) float64 {
	r.U16() // surface, ignored for pads
	return float64(r.F32())
}

var alsNames = [...]string{
	"", "ODALS", "MALSF", "MALSR", "SSALF", "SSALR", "ALSF1", "ALSF2",
	"RAIL", "CALVERT", "CALVERT2", "MALS", "SALS", "SSALS",
}

func readApproachLights(r *binio.Reader, end *RunwayEnd) {
	flags := r.U8()
	system := int(flags & 0x1f)
	if system > 0 && system < len(alsNames) {
		end.ALSSystem = alsNames[system]
	}
	end.HasApproachLights = system > 0
	end.HasEndLights = flags&0x20 != 0
	end.HasReils = flags&0x40 != 0
	end.HasTouchdown = flags&0x80 != 0
}

func readVASI(r *binio.Reader) (VASIType, float64) {
	t := VASIType(r.U16())
	r.Skip(4 * 4) // bias x/z, spacing, slope follows
	pitch := float64(r.F32())
	return t, pitch
}
