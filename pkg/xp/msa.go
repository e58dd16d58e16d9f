// pkg/xp/msa.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package xp

import (
	"math"

	"github.com/fsnav/navdbc/pkg/db"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// MSA center fix type codes.
const (
	msaCenterAirport   = 1
	msaCenterNdb       = 2
	msaCenterVor       = 3
	msaCenterRunwayEnd = 10
	msaCenterWaypoint  = 11
)

// One line is a full MSA circle:
//   type ident region airport-ident M|T bearing alt radius [bearing alt
//   radius ...] 0 0 0
const (
	msaType = iota
	msaIdent
	msaRegion
	msaAirport
	msaMagTrue
	msaFirstTriple

	msaMinFields = 8
)

// MsaReader reads minimum sector altitude circles. The center fix is
// resolved against the already-loaded fixes and navaids; circles whose
// airport or center is unknown are skipped.
type MsaReader struct {
	w     *db.Writers
	fixes *FixIndex
	lg    *log.Logger
}

func NewMsaReader(w *db.Writers, fixes *FixIndex, lg *log.Logger) *MsaReader {
	return &MsaReader{w: w, fixes: fixes, lg: lg}
}

func (r *MsaReader) Read(fields []string, ctx *Context) error {
	airportIdent := at(fields, msaAirport)
	if _, ok := ctx.Index.AirportID(airportIdent); !ok {
		// happens often enough that a warning per line is just noise
		return nil
	}

	centerType, err := parseInt(at(fields, msaType))
	if err != nil {
		r.lg.Warnf("%s: bad MSA center type, skipping", ctx.prefix())
		return nil
	}

	navIdent := at(fields, msaIdent)
	region := at(fields, msaRegion)

	var navType string
	var center geo.Pos
	var ok bool
	switch centerType {
	case msaCenterAirport:
		navType = "A"
		navIdent = airportIdent
		center, ok = r.fixes.Pos(airportIdent, region)
	case msaCenterNdb:
		navType = "N"
		center, ok = r.fixes.Pos(navIdent, region)
	case msaCenterVor:
		navType = "V"
		center, ok = r.fixes.Pos(navIdent, region)
	case msaCenterWaypoint:
		navType = "W"
		center, ok = r.fixes.Pos(navIdent, region)
	case msaCenterRunwayEnd:
		navType = "R"
		// runway end coordinates are not indexed; anchor on the airport
		center, ok = r.fixes.Pos(airportIdent, region)
	default:
		r.lg.Warnf("%s: MSA center type %d not used", ctx.prefix(), centerType)
		return nil
	}
	if !ok || !center.IsValid() {
		r.lg.Warnf("%s: MSA center %s/%s not found, skipping",
			ctx.prefix(), navIdent, region)
		return nil
	}

	msa := db.Msa{
		AirportIdent: airportIdent,
		NavIdent:     navIdent,
		NavType:      navType,
		Region:       region,
		TrueBearing:  at(fields, msaMagTrue) == "T",
		Center:       center,
	}

	// bearing/altitude/radius triples up to the all-zero terminator
	for i := msaFirstTriple; i+2 < len(fields); i += 3 {
		brg, err1 := parseFloat(at(fields, i))
		alt, err2 := parseInt(at(fields, i+1))
		radius, err3 := parseFloat(at(fields, i+2))
		if err1 != nil || err2 != nil || err3 != nil {
			r.lg.Warnf("%s: bad MSA sector triple, skipping line", ctx.prefix())
			return nil
		}
		if brg == 0 && alt == 0 && radius == 0 {
			break
		}

		if msa.RadiusNM <= 0 {
			msa.RadiusNM = radius
		} else if math.Abs(radius-msa.RadiusNM) > 0.1 {
			r.lg.Warnf("%s: %s has more than one MSA radius",
				ctx.prefix(), airportIdent)
		}

		msa.Sectors = append(msa.Sectors, db.MsaSector{
			BearingFromDeg: brg,
			AltitudeFeet:   alt * 100,
		})
	}
	if len(msa.Sectors) == 0 || msa.RadiusNM <= 0 {
		r.lg.Warnf("%s: MSA for %s without sectors, skipping",
			ctx.prefix(), airportIdent)
		return nil
	}

	// sector end bearings are the next sector's start, wrapping around
	for i := range msa.Sectors {
		msa.Sectors[i].BearingToDeg = msa.Sectors[(i+1)%len(msa.Sectors)].BearingFromDeg
	}

	return r.w.WriteMsa(&msa)
}

func (r *MsaReader) Finish(*Context) error { return nil }
func (r *MsaReader) Reset() {}
func (r *MsaReader) MinFields() int { return msaMinFields }
