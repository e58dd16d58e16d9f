// pkg/bgl/nav.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// IlsVorType discriminates the shared ILS/VOR record. VOR range
// classes and ILS share one record code; the driver peeks the type and
// re-reads with the concrete parser.
type IlsVorType uint8

const (
	NavTerminal IlsVorType = 1
	NavLow      IlsVorType = 2
	NavHigh     IlsVorType = 3
	NavILS      IlsVorType = 4
	NavVOT      IlsVorType = 5
)

func (t IlsVorType) String() string {
	switch t {
	case NavTerminal:
		return "T"
	case NavLow:
		return "L"
	case NavHigh:
		return "H"
	case NavILS:
		return "ILS"
	case NavVOT:
		return "VOT"
	}
	return "UNKNOWN"
}

// peekIlsVorType reads far enough into the record to see the
// discriminator, leaving repositioning to the caller.
func peekIlsVorType(r *binio.Reader) IlsVorType {
	t := IlsVorType(r.U8())
	r.U8() // flags
	return t
}

// VOR also covers DME-only and VORDME stations via the flag bits.
type VOR struct {
	Record
	Type      IlsVorType
	DMEOnly   bool
	HasDME    bool
	Ident     string
	Region    string
	Name      string
	Pos       geo.Pos
	AltMeter  float64
	Frequency int // kHz
	RangeMeter float64
	MagVar    float64
}

func readVOR(r *binio.Reader, rec Record, lg *log.Logger) *VOR {
	v := &VOR{Record: rec}

	v.Type = IlsVorType(r.U8())
	flags := r.U8()
	v.DMEOnly = flags&0x01 != 0
	v.HasDME = flags&0x02 != 0 || v.DMEOnly

	v.Pos, v.AltMeter = readPos(r)
	v.Frequency = int(r.U32()) / 1000
	v.RangeMeter = float64(r.F32())
	v.MagVar = adjustMagvar(float64(r.F32()))

	icao := r.U32()
	v.Ident = intToIdent(icao, false)
	region := r.U32()
	v.Region = intToIdent(region&0x7ff, true)

	v.Name = readNameChild(r, rec, lg)
	return v
}

// Localizer, glideslope and DME arrive as children of the ILS record.
type ILS struct {
	Record
	Ident     string
	Region    string
	Name      string
	AirportIdent string
	Pos       geo.Pos
	AltMeter  float64
	Frequency int // kHz
	RangeMeter float64
	MagVar    float64

	RunwayNumber     int
	RunwayDesignator int

	LocHeadingTrue float64
	LocWidthDeg    float64
	HasLocalizer   bool

	HasGlideslope bool
	GSPos         geo.Pos
	GSAltMeter    float64
	GSPitch       float64
	GSRangeMeter  float64

	HasDME     bool
	DMEPos     geo.Pos
	DMEAltMeter float64
	DMERangeMeter float64

	HasBackcourse bool
}

func readILS(r *binio.Reader, rec Record, lg *log.Logger) *ILS {
	ils := &ILS{Record: rec}

	r.U8() // type, already known to be ILS
	flags := r.U8()
	ils.HasBackcourse = flags&0x01 != 0

	ils.Pos, ils.AltMeter = readPos(r)
	ils.Frequency = int(r.U32()) / 1000
	ils.RangeMeter = float64(r.F32())
	ils.MagVar = adjustMagvar(float64(r.F32()))

	ils.Ident = intToIdent(r.U32(), false)
	region := r.U32()
	ils.Region = intToIdent(region&0x7ff, true)
	ils.AirportIdent = intToIdent(region>>11, true)

	ils.RunwayNumber = int(r.U8())
	ils.RunwayDesignator = int(r.U8())
	r.Skip(2) // pad

	for r.Err() == nil && r.Tell() < ils.End() {
		sub := readRecordHeader(r)
		if sub.Size <= 0 {
			break
		}

		switch subrecordType(sub.ID) {
		case subLocalizer:
			ils.LocHeadingTrue = float64(r.F32())
			ils.LocWidthDeg = float64(r.F32())
			ils.HasLocalizer = true
		case subGlideslope:
			ils.GSPos, ils.GSAltMeter = readPos(r)
			ils.GSRangeMeter = float64(r.F32())
			ils.GSPitch = float64(r.F32())
			ils.HasGlideslope = true
		case subDME:
			ils.DMEPos, ils.DMEAltMeter = readPos(r)
			ils.DMERangeMeter = float64(r.F32())
			ils.HasDME = true
		case subIlsVorName:
			sub.SeekToStart(r)
			r.Skip(6)
			ils.Name = r.String(sub.Size-6, binio.EncodingLatin1)
		default:
			lg.Debugf("%s: ils %s: skipping subrecord %#x", r.Name(), ils.Ident, sub.ID)
		}

		sub.SeekToEnd(r)
	}

	return ils
}

// RunwayName returns the runway reference, or "" when the field is
// absent and has to be recovered from the facility name downstream.
func (ils *ILS) RunwayName() string {
	if ils.RunwayNumber == 0 {
		return ""
	}
	end := RunwayEnd{Number: ils.RunwayNumber, Designator: ils.RunwayDesignator}
	return end.Name()
}

type NDB struct {
	Record
	Type      uint16
	Ident     string
	Region    string
	Name      string
	Pos       geo.Pos
	AltMeter  float64
	Frequency int // *10 kHz
	RangeMeter float64
	MagVar    float64
}

const (
	NDBCompassPoint uint16 = 0
	NDBMH           uint16 = 1
	NDBH            uint16 = 2
	NDBHH           uint16 = 3
)

func (n *NDB) TypeString() string {
	switch n.Type {
	case NDBCompassPoint:
		return "CP"
	case NDBMH:
		return "MH"
	case NDBH:
		return "H"
	case NDBHH:
		return "HH"
	}
	return "UNKNOWN"
}

func readNDB(r *binio.Reader, rec Record, lg *log.Logger) *NDB {
	n := &NDB{Record: rec}

	n.Type = r.U16()
	n.Frequency = int(r.U32()) / 10
	n.Pos, n.AltMeter = readPos(r)
	n.RangeMeter = float64(r.F32())
	n.MagVar = adjustMagvar(float64(r.F32()))
	n.Ident = intToIdent(r.U32(), false)
	region := r.U32()
	n.Region = intToIdent(region&0x7ff, true)

	n.Name = readNameChild(r, rec, lg)
	return n
}

type MarkerType uint8

const (
	MarkerInner MarkerType = iota
	MarkerMiddle
	MarkerOuter
	MarkerBackcourse
)

func (t MarkerType) String() string {
	return [...]string{"IM", "MM", "OM", "BC"}[t&3]
}

type Marker struct {
	Record
	Type        MarkerType
	Ident       string
	Region      string
	Pos         geo.Pos
	AltMeter    float64
	HeadingTrue float64
}

func readMarker(r *binio.Reader, rec Record, lg *log.Logger) *Marker {
	m := &Marker{Record: rec}
	m.HeadingTrue = float64(r.U8()) * 360. / 256.
	m.Type = MarkerType(r.U8())
	m.Pos, m.AltMeter = readPos(r)
	m.Ident = intToIdent(r.U32(), false)
	region := r.U32()
	m.Region = intToIdent(region&0x7ff, true)
	return m
}

// TACAN is P3D-only; channel and X/Y mode stand in for a frequency.
type TACAN struct {
	Record
	Ident     string
	Region    string
	Name      string
	Pos       geo.Pos
	AltMeter  float64
	Channel   int
	YMode     bool
	RangeMeter float64
	MagVar    float64
	DMEOnly   bool
}

func readTACAN(r *binio.Reader, rec Record, lg *log.Logger) *TACAN {
	t := &TACAN{Record: rec}

	t.Pos, t.AltMeter = readPos(r)
	t.Channel = int(r.U32())
	t.YMode = r.U8()&0x1 != 0
	flags := r.U8()
	t.DMEOnly = flags&0x1 != 0
	r.Skip(2)
	t.RangeMeter = float64(r.F32())
	t.MagVar = adjustMagvar(float64(r.F32()))
	t.Ident = intToIdent(r.U32(), false)
	region := r.U32()
	t.Region = intToIdent(region&0x7ff, true)

	t.Name = readNameChild(r, rec, lg)
	return t
}

// Frequency returns the channel translated to the paired VOR frequency
// in kHz so TACANs and VORTACs can share the VOR frequency column.
func (t *TACAN) Frequency() int {
	// 1X..126X/Y map onto 134.4..135.95 and 108.0..117.95 MHz
	c := t.Channel
	var mhz float64
	switch {
	case c >= 1 && c <= 16:
		mhz = 134.3 + float64(c)*0.1
	case c >= 17 && c <= 59:
		mhz = 106.3 + float64(c)*0.1
	case c >= 60 && c <= 69:
		mhz = 127.3 + float64(c)*0.1
	case c >= 70 && c <= 126:
		mhz = 105.3 + float64(c)*0.1
	default:
		return 0
	}
	if t.YMode {
		mhz += 0.05
	}
	return int(mhz*1000 + 0.5)
}

// readNameChild scans the remaining children of a navaid record for the
// name subrecord.
func readNameChild(r *binio.Reader, rec Record, lg *log.Logger) string {
	for r.Err() == nil && r.Tell() < rec.End() {
		sub := readRecordHeader(r)
		if sub.Size <= 0 {
			return ""
		}
		if subrecordType(sub.ID) == subIlsVorName {
			return r.String(sub.Size-6, binio.EncodingLatin1)
		}
		lg.Debugf("%s: skipping navaid subrecord %#x at %#x", r.Name(), sub.ID, sub.Start)
		sub.SeekToEnd(r)
	}
	return ""
}
