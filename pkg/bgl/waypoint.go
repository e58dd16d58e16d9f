// pkg/bgl/waypoint.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

type WaypointType uint8

const (
	WaypointNamed WaypointType = 1
	WaypointUnnamed WaypointType = 2
	WaypointVOR   WaypointType = 3
	WaypointNDB   WaypointType = 4
	WaypointOffRoute WaypointType = 5
	WaypointIAF   WaypointType = 6
	WaypointFAF   WaypointType = 7
	WaypointVFR   WaypointType = 8
	WaypointRNAV  WaypointType = 9
)

func (t WaypointType) String() string {
	switch t {
	case WaypointNamed:
		return "WN"
	case WaypointUnnamed:
		return "WU"
	case WaypointVOR:
		return "V"
	case WaypointNDB:
		return "N"
	case WaypointOffRoute:
		return "OA"
	case WaypointIAF:
		return "IAF"
	case WaypointFAF:
		return "FAF"
	case WaypointVFR:
		return "VFR"
	case WaypointRNAV:
		return "RNAV"
	}
	return "UNKNOWN"
}

type AirwayType uint8

const (
	AirwayVictor AirwayType = 1
	AirwayJet    AirwayType = 2
	AirwayBoth   AirwayType = 3
)

func (t AirwayType) String() string {
	switch t {
	case AirwayVictor:
		return "V"
	case AirwayJet:
		return "J"
	case AirwayBoth:
		return "B"
	}
	return "UNKNOWN"
}

// AirwaySegment is one fragment of an airway attached to a waypoint:
// the edge from this waypoint to a neighbor. The resolver stitches
// fragments into ordered airways post-load.
type AirwaySegment struct {
	Name        string
	Type        AirwayType
	MinAltMeter float64

	NextIdent  string
	NextRegion string
	NextAirport string

	PrevIdent  string
	PrevRegion string
	PrevAirport string

	HasNext bool
	HasPrev bool
}

// Waypoint covers both en-route and terminal fixes and carries the
// airway fragments that reference it.
type Waypoint struct {
	Record
	Type         WaypointType
	Ident        string
	Region       string
	AirportIdent string
	Pos          geo.Pos
	MagVar       float64
	Airways      []AirwaySegment
}

func readWaypoint(r *binio.Reader, rec Record, lg *log.Logger) *Waypoint {
	w := &Waypoint{Record: rec}

	w.Type = WaypointType(r.U8())
	numSegments := int(r.U8())
	w.Pos = readPos2D(r)
	w.MagVar = adjustMagvar(float64(r.F32()))
	w.Ident = intToIdent(r.U32(), false)
	region := r.U32()
	w.Region = intToIdent(region&0x7ff, true)
	w.AirportIdent = intToIdent(region>>11, true)

	w.Airways = make([]AirwaySegment, 0, numSegments)
	for i := 0; i < numSegments && r.Err() == nil && r.Tell() < w.End(); i++ {
		w.Airways = append(w.Airways, readAirwaySegment(r))
	}
	if r.Err() != nil {
		lg.Warnf("%s: truncated waypoint %s at %#x", r.Name(), w.Ident, rec.Start)
	}
	return w
}

func readAirwaySegment(r *binio.Reader) AirwaySegment {
	var s AirwaySegment

	s.Type = AirwayType(r.U8())
	connections := r.U8()
	s.HasNext = connections&0x1 != 0
	s.HasPrev = connections&0x2 != 0
	s.Name = r.String(8, binio.EncodingLatin1)

	s.MinAltMeter = float64(r.F32())
	next := r.U32()
	nextRegion := r.U32()
	s.NextIdent = intToIdent(next>>5, true)
	s.NextRegion = intToIdent(nextRegion&0x7ff, true)
	s.NextAirport = intToIdent(nextRegion>>11, true)

	r.F32() // next minimum altitude
	prev := r.U32()
	prevRegion := r.U32()
	s.PrevIdent = intToIdent(prev>>5, true)
	s.PrevRegion = intToIdent(prevRegion&0x7ff, true)
	s.PrevAirport = intToIdent(prevRegion>>11, true)

	return s
}

// Namelist maps coded airport/region idents to display names; airports
// read from FS9 files get their names from here.
type Namelist struct {
	Record
	Entries []NamelistEntry
}

type NamelistEntry struct {
	AirportIdent string
	RegionIdent  string
	AirportName  string
	CityName     string
	StateName    string
	CountryName  string
}

func readNamelist(r *binio.Reader, rec Record, lg *log.Logger) *Namelist {
	nl := &Namelist{Record: rec}

	numRegions := int(r.U16())
	numCountries := int(r.U16())
	numStates := int(r.U16())
	numCities := int(r.U16())
	numAirports := int(r.U16())
	numICAO := int(r.U16())

	regionOff := int(r.U32())
	countryOff := int(r.U32())
	stateOff := int(r.U32())
	cityOff := int(r.U32())
	airportOff := int(r.U32())
	icaoOff := int(r.U32())

	regions := readStringList(r, rec, regionOff, numRegions)
	countries := readStringList(r, rec, countryOff, numCountries)
	states := readStringList(r, rec, stateOff, numStates)
	cities := readStringList(r, rec, cityOff, numCities)
	airports := readStringList(r, rec, airportOff, numAirports)

	r.Seek(rec.Start + icaoOff)
	for i := 0; i < numICAO && r.Err() == nil; i++ {
		var e NamelistEntry
		regionIdx := int(r.U8())
		countryIdx := int(r.U8())
		stateIdx := int(r.U16() >> 4)
		cityIdx := int(r.U16())
		airportIdx := int(r.U16())
		e.AirportIdent = intToIdent(r.U32(), false)
		e.RegionIdent = intToIdent(r.U32(), false)
		r.Skip(4) // QMID

		e.AirportName = listEntry(airports, airportIdx)
		e.CityName = listEntry(cities, cityIdx)
		e.StateName = listEntry(states, stateIdx)
		e.CountryName = listEntry(countries, countryIdx)
		if e.RegionIdent == "" {
			e.RegionIdent = listEntry(regions, regionIdx)
		}
		nl.Entries = append(nl.Entries, e)
	}
	if r.Err() != nil {
		lg.Warnf("%s: truncated namelist at %#x", r.Name(), rec.Start)
	}
	return nl
}

// readStringList reads a table of offsets into a NUL-separated string
// block, both relative to the record start.
func readStringList(r *binio.Reader, rec Record, off, n int) []string {
	if n == 0 {
		return nil
	}
	r.Seek(rec.Start + off)
	offsets := make([]int, n)
	for i := range offsets {
		offsets[i] = int(r.U32())
	}
	blockStart := r.Tell()

	strs := make([]string, n)
	for i, o := range offsets {
		if r.Err() != nil {
			break
		}
		r.Seek(blockStart + o)
		strs[i] = readCString(r, rec.End())
	}
	return strs
}

func readCString(r *binio.Reader, limit int) string {
	var b []byte
	for r.Err() == nil && r.Tell() < limit {
		c := r.U8()
		if c == 0 {
			break
		}
		b = append(b, c)
	}
	return string(b)
}

func listEntry(list []string, idx int) string {
	if idx >= 0 && idx < len(list) {
		return list[idx]
	}
	return ""
}
