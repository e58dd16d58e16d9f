// pkg/bgl/facilities.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/geo"
)

// Com is one tower/ground/ATIS frequency of an airport.
type Com struct {
	Type      ComType
	Frequency int // Hz for 8.33 kHz channels, kHz otherwise
	Name      string
}

func readCom(r *binio.Reader, rec Record) Com {
	var c Com
	c.Type = ComType(r.U16())
	c.Frequency = int(r.U32())
	c.Name = r.String(rec.Size-12, binio.EncodingLatin1)
	return c
}

// Start is a runway/water/helipad start position.
type Start struct {
	RunwayNumber     int
	RunwayDesignator int
	Type             StartType
	Pos              geo.Pos
	AltMeter         float64
	HeadingTrue      float64
}

func readStart(r *binio.Reader, rec Record) Start {
	var s Start
	s.RunwayNumber = int(r.U8())
	packed := r.U8()
	s.RunwayDesignator = int(packed & 0xf)
	s.Type = StartType(packed >> 4)
	s.Pos, s.AltMeter = readPos(r)
	s.HeadingTrue = float64(r.F32())
	return s
}

// RunwayName formats the start's runway reference like RunwayEnd.Name.
func (s Start) RunwayName() string {
	end := RunwayEnd{Number: s.RunwayNumber, Designator: s.RunwayDesignator}
	return end.Name()
}

type Helipad struct {
	Surface     Surface
	Type        HelipadType
	Transparent bool
	Closed      bool
	Pos         geo.Pos
	AltMeter    float64
	LengthMeter float64
	WidthMeter  float64
	HeadingTrue float64
}

func readHelipad(r *binio.Reader, rec Record) Helipad {
	var h Helipad
	h.Surface = Surface(r.U8())
	flags := r.U8()
	h.Type = HelipadType(flags & 0xf)
	h.Transparent = flags&0x10 != 0
	h.Closed = flags&0x20 != 0
	h.Pos, h.AltMeter = readPos(r)
	h.LengthMeter = float64(r.F32())
	h.WidthMeter = float64(r.F32())
	h.HeadingTrue = float64(r.F32())
	return h
}

// Apron carries only the surface and vertex count; the vertex list is
// skipped since consumers only need the counts for the airport rating.
type Apron struct {
	Surface     Surface
	NumVertices int
}

func readApron(r *binio.Reader, rec Record) Apron {
	var a Apron
	a.Surface = Surface(r.U8())
	a.NumVertices = int(r.U16())
	return a
}

// TaxiPath is one taxiway segment. Only the fields relevant for the
// output schema are read; node indices stay unresolved.
type TaxiPath struct {
	Type       int
	Surface    Surface
	WidthMeter float64
	RunwayNum  int
	RunwayDesignator int
}

const (
	TaxiPathTaxi    = 1
	TaxiPathRunway  = 2
	TaxiPathParking = 3
	TaxiPathPath    = 4
	TaxiPathClosed  = 5
	TaxiPathVehicle = 6
	TaxiPathRoad    = 7
)

// readTaxiPaths reads the taxi path subrecord: a count followed by
// fixed 12 byte entries.
func readTaxiPaths(r *binio.Reader, rec Record) []TaxiPath {
	n := int(r.U16())
	paths := make([]TaxiPath, 0, n)
	for i := 0; i < n && r.Err() == nil && r.Tell()+12 <= rec.End(); i++ {
		var p TaxiPath
		r.U16() // start node index
		endAndDesignator := r.U16()
		p.RunwayDesignator = int(endAndDesignator >> 12)
		typeAndFlags := r.U8()
		p.Type = int(typeAndFlags & 0x1f)
		p.RunwayNum = int(r.U8())
		p.Surface = Surface(r.U8())
		r.U8() // flags
		p.WidthMeter = float64(r.F32())
		paths = append(paths, p)
	}
	return paths
}

// Fence is a blast or boundary fence; only the vertex count is kept.
type Fence struct {
	Record
	NumVertices int
	Blast       bool
}

func readFence(r *binio.Reader, rec Record) Fence {
	f := Fence{Record: rec, Blast: subrecordType(rec.ID) == subFenceBlast}
	f.NumVertices = int(r.U16())
	return f
}
