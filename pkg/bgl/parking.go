// pkg/bgl/parking.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// Parking is one parking spot. The leading 32 bit word is bit-packed:
// name (6 bits), pushback (2), type (4), number (12), airline-code
// count (8).
type Parking struct {
	Name         ParkingName
	Suffix       ParkingSuffix
	Number       int
	Type         ParkingType
	PushBack     PushBack
	RadiusMeter  float64
	HeadingTrue  float64
	Pos          geo.Pos
	AirlineCodes []string
	HasJetway    bool
}

// readParkings reads the parking subrecord, which carries a count
// followed by that many packed spots.
func readParkings(r *binio.Reader, rec Record, v Variant, lg *log.Logger) []Parking {
	n := int(r.U16())
	parkings := make([]Parking, 0, n)
	for i := 0; i < n && r.Err() == nil && r.Tell() < rec.End(); i++ {
		parkings = append(parkings, readParking(r, v))
	}
	if r.Err() != nil {
		lg.Warnf("%s: truncated parking subrecord at %#x", r.Name(), rec.Start)
	}
	return parkings
}

func readParking(r *binio.Reader, v Variant) Parking {
	var p Parking

	flags := r.U32()
	p.Name = ParkingName(flags & 0x3f)
	p.PushBack = PushBack((flags >> 6) & 0x3)
	p.Type = ParkingType((flags >> 8) & 0xf)
	p.Number = int((flags >> 12) & 0xfff)
	numAirlineCodes := int((flags >> 24) & 0xff)

	p.RadiusMeter = float64(r.F32())
	p.HeadingTrue = float64(r.F32())

	lay := v.layout()
	if lay.parkingTeeOffset {
		r.Skip(16) // tee offsets 1-4, not FS9
	}

	p.Pos, _ = readPos(r)

	for i := 0; i < numAirlineCodes; i++ {
		p.AirlineCodes = append(p.AirlineCodes, r.String(4, binio.EncodingLatin1))
	}

	if lay.parkingSuffix {
		r.Skip(1)
		p.Suffix = ParkingSuffix(r.U8())
	}
	r.Skip(lay.parkingTailSkip) // material and runway material

	return p
}

// Jetway marks a parking spot as jetway-equipped; the loader joins it
// back onto the matching spot.
type Jetway struct {
	Record
	ParkingNumber int
	GateName      ParkingName
}

func readJetway(r *binio.Reader, rec Record) Jetway {
	j := Jetway{Record: rec}
	j.ParkingNumber = int(r.U16())
	j.GateName = ParkingName(r.U16() & 0x3f)
	return j
}

// AttachJetways sets HasJetway on every parking spot referenced by a
// jetway record.
func (a *Airport) AttachJetways() {
	for _, j := range a.Jetways {
		for i := range a.Parkings {
			p := &a.Parkings[i]
			if p.Number == j.ParkingNumber && p.Name == j.GateName {
				p.HasJetway = true
			}
		}
	}
}
