// pkg/bgl/airport.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/fsutil"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// Airport is the composite airport record: fixed fields followed by a
// variable list of typed subrecords read until the declared record size
// is exhausted.
type Airport struct {
	Record
	Ident     string
	Region    string
	Name      string
	Pos       geo.Pos
	AltMeter  float64
	TowerPos  geo.Pos
	MagVar    float64
	FuelFlags uint32

	Runways    []Runway
	Coms       []Com
	Starts     []Start
	Helipads   []Helipad
	Parkings   []Parking
	Approaches []Approach
	Aprons     []Apron
	TaxiPaths  []TaxiPath
	Fences     []Fence
	Jetways    []Jetway

	Deletes []DeleteAirport

	HasTowerObject bool
	Military       bool
	Closed         bool

	// MSFS navdata-only stub with no scenery
	NavdataDummy bool
}

// CreateFlags communicates scenery-area context into the airport
// reader.
type CreateFlags struct {
	MSFSNavigraphNavdata bool
	MSFSDummy            bool
}

func readAirport(r *binio.Reader, rec Record, v Variant, flags CreateFlags, lg *log.Logger) *Airport {
	a := &Airport{Record: rec, NavdataDummy: flags.MSFSDummy}

	numRunways := int(r.U8())
	numComs := int(r.U8())
	r.U8() // numStarts, derived from subrecords
	numApproaches := int(r.U8())
	numAprons := int(r.U8())
	numHelipads := int(r.U8())

	a.Pos, a.AltMeter = readPos(r)
	a.TowerPos, _ = readPos(r)
	a.MagVar = adjustMagvar(float64(r.F32()))
	a.Ident = intToIdent(r.U32(), false)
	a.Region = intToIdent(r.U32(), false)
	a.FuelFlags = r.U32()
	r.Skip(4) // flags and traffic scalar

	if r.Err() != nil {
		return a
	}

	a.Runways = make([]Runway, 0, numRunways)
	a.Coms = make([]Com, 0, numComs)
	a.Approaches = make([]Approach, 0, numApproaches)
	a.Aprons = make([]Apron, 0, numAprons)
	a.Helipads = make([]Helipad, 0, numHelipads)

	// Subrecord loop. Each child captures its own frame; junk inside a
	// child never breaks the walk since we always reposition to the
	// child's declared end.
	for r.Err() == nil && r.Tell() < a.End() {
		sub := readRecordHeader(r)
		if sub.Size <= 0 {
			lg.Warnf("%s: airport %s: zero-size subrecord %#x at %#x",
				r.Name(), a.Ident, sub.ID, sub.Start)
			break
		}

		switch subrecordType(sub.ID) {
		case subName:
			a.Name = r.String(sub.Size-6, binio.EncodingLatin1)
		case subRunway:
			a.Runways = append(a.Runways, readRunway(r, sub, v, lg))
		case subCom:
			a.Coms = append(a.Coms, readCom(r, sub))
		case subStart:
			a.Starts = append(a.Starts, readStart(r, sub))
		case subHelipad, subHelipadMSFS:
			a.Helipads = append(a.Helipads, readHelipad(r, sub))
		case subParking, subParkingMSFS:
			a.Parkings = append(a.Parkings, readParkings(r, sub, v, lg)...)
		case subApproach:
			a.Approaches = append(a.Approaches, readApproach(r, sub, lg))
		case subApron1, subApron2, subApron3:
			a.Aprons = append(a.Aprons, readApron(r, sub))
		case subTaxiPath, subTaxiPathMSFS:
			a.TaxiPaths = append(a.TaxiPaths, readTaxiPaths(r, sub)...)
		case subFenceBlast, subFenceBound:
			a.Fences = append(a.Fences, readFence(r, sub))
		case subJetway:
			a.Jetways = append(a.Jetways, readJetway(r, sub))
		case subDeleteAirport:
			a.Deletes = append(a.Deletes, readDeleteAirport(r, sub))
		case subTowerScenery:
			a.HasTowerObject = true
		case subTaxiPoint, subTaxiName, subApronEdge, subWaypoint:
			// Recognized but not extracted
		default:
			lg.Debugf("%s: airport %s: skipping subrecord %#x size %d at %#x",
				r.Name(), a.Ident, sub.ID, sub.Size, sub.Start)
		}

		sub.SeekToEnd(r)
	}

	a.Military = fsutil.IsNameMilitary(a.Name)
	a.Closed = fsutil.IsNameClosed(a.Name)
	return a
}

// adjustMagvar converts the stored 0..360 west-positive declination to
// the signed -180..180 east-positive convention used everywhere else.
func adjustMagvar(magvar float64) float64 {
	if magvar > 180 {
		return 360 - magvar
	}
	return -magvar
}

// Rating computes the scenery quality rating from the parsed children.
func (a *Airport) Rating(isAddon, msfs bool) int {
	return fsutil.AirportRating(isAddon, a.HasTowerObject, msfs,
		len(a.TaxiPaths), len(a.Parkings), len(a.Aprons))
}

// LongestRunway returns the index of the longest hard-surface runway,
// or the longest overall when no hard runway exists; -1 without
// runways.
func (a *Airport) LongestRunway() int {
	best, bestHard := -1, -1
	for i := range a.Runways {
		rw := &a.Runways[i]
		if best == -1 || rw.LengthMeter > a.Runways[best].LengthMeter {
			best = i
		}
		if rw.Surface.IsHard() {
			if bestHard == -1 || rw.LengthMeter > a.Runways[bestHard].LengthMeter {
				bestHard = i
			}
		}
	}
	if bestHard != -1 {
		return bestHard
	}
	return best
}

func (s Surface) IsHard() bool {
	switch s {
	case SurfaceConcrete, SurfaceAsphalt, SurfaceBituminous, SurfaceTarmac,
		SurfaceBrick, SurfaceMacadam, SurfaceOilTreated, SurfaceSteelMats:
		return true
	}
	return false
}

func (s Surface) IsWater() bool { return s == SurfaceWater }

// DeleteAirport instructs the loader to remove facilities of a
// previously loaded airport with the same ident, used by add-on
// sceneries that replace stock airports.
type DeleteAirport struct {
	Record
	Flags           uint16
	NumRunwayDels   int
	NumStartDels    int
	NumComDels      int
}

const (
	DeleteApproaches uint16 = 1 << iota
	DeleteApronLights
	DeleteAprons
	DeleteFrequencies
	DeleteHelipads
	DeleteRunways
	DeleteStarts
	DeleteTaxiways
)

func readDeleteAirport(r *binio.Reader, rec Record) DeleteAirport {
	d := DeleteAirport{Record: rec}
	d.Flags = r.U16()
	d.NumRunwayDels = int(r.U8())
	d.NumStartDels = int(r.U8())
	d.NumComDels = int(r.U8())
	return d
}
