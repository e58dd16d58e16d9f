// pkg/bgl/bgl_test.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// fileBuilder assembles synthetic scenery files for the reader tests.
type fileBuilder struct {
	buf []byte
}

func (b *fileBuilder) u8(v uint8) { b.buf = append(b.buf, v) }
func (b *fileBuilder) u16(v uint16) { b.buf = binary.LittleEndian.AppendUint16(b.buf, v) }
func (b *fileBuilder) u32(v uint32) { b.buf = binary.LittleEndian.AppendUint32(b.buf, v) }
func (b *fileBuilder) f32(v float32) {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, math.Float32bits(v))
}
func (b *fileBuilder) pad(n int) { b.buf = append(b.buf, make([]byte, n)...) }
func (b *fileBuilder) pos(p geo.Pos, altMeter float64) {
	lon, lat := packPos(p)
	b.u32(lon)
	b.u32(lat)
	b.u32(uint32(altMeter * 1000))
}

func (b *fileBuilder) header(numSections int) {
	b.u32(MagicNumber1)
	b.u32(HeaderSize)
	b.u32(0) // time low
	b.u32(0) // time high
	b.u32(MagicNumber2)
	b.u32(uint32(numSections))
	b.pad(32) // QMID bounds
}

// record writes a record header and returns the offset of the size
// field for later patching.
func (b *fileBuilder) record(id uint16) int {
	start := len(b.buf)
	b.u16(id)
	b.u32(0)
	return start
}

func (b *fileBuilder) endRecord(start int) {
	binary.LittleEndian.PutUint32(b.buf[start+2:], uint32(len(b.buf)-start))
}

func (b *fileBuilder) airportFixed(ident, region string, pos geo.Pos, numRunways int) {
	b.u8(uint8(numRunways)) // runways
	b.u8(0)                 // coms
	b.u8(0)                 // starts
	b.u8(0)                 // approaches
	b.u8(0)                 // aprons
	b.u8(0)                 // helipads
	b.pos(pos, 100)
	b.pos(pos, 120) // tower
	b.f32(2)        // magvar
	b.u32(identToInt(ident, false))
	b.u32(identToInt(region, false))
	b.u32(0) // fuel flags
	b.u32(0)
}

func (b *fileBuilder) runway(primary, secondary int, pos geo.Pos, lengthMeter float32) {
	start := b.record(uint16(subRunway))
	b.u16(uint16(SurfaceAsphalt))
	b.u8(uint8(primary))
	b.u8(0)
	b.u8(uint8(secondary))
	b.u8(0)
	b.pad(8) // ILS slots
	b.pos(pos, 100)
	b.f32(lengthMeter)
	b.f32(45) // width
	b.f32(87) // heading
	b.f32(300)
	b.u16(0) // marking
	b.u8(0)  // lights
	b.u8(0)  // pattern
	b.endRecord(start)
}

func testLogger() *log.Logger { return nil } // nil logger is tolerated

func buildAirportFile(idents []string) []byte {
	var b fileBuilder
	b.header(1)

	sectionStart := len(b.buf)
	b.u32(uint32(SectionAirport))
	b.u32(0) // flags
	b.u32(1) // subsections
	subDirOff := sectionStart + 20
	b.u32(uint32(subDirOff))
	b.u32(16)

	recOff := subDirOff + 16
	b.u32(0) // QMID
	b.u32(uint32(len(idents)))
	b.u32(uint32(recOff))
	b.u32(0)

	for _, ident := range idents {
		start := b.record(uint16(RecAirport))
		b.airportFixed(ident, "K1", geo.NewPos(-122.4, 47.6), 1)

		nameStart := b.record(uint16(subName))
		b.buf = append(b.buf, []byte("TEST FIELD")...)
		b.endRecord(nameStart)

		b.runway(9, 27, geo.NewPos(-122.4, 47.6), 2500)
		b.runway(14, 32, geo.NewPos(-122.41, 47.61), 1800)

		// Parking subrecord with one FSX-layout spot
		pStart := b.record(uint16(subParking))
		b.u16(1)
		b.u32(0x0201554e)
		b.f32(18)  // radius
		b.f32(270) // heading
		b.pad(16)  // tee offsets
		b.pos(geo.NewPos(-122.39, 47.59), 100)
		b.buf = append(b.buf, []byte("UALXDLX\x00")...) // two airline codes
		b.endRecord(pStart)

		b.endRecord(start)
	}
	return b.buf
}

func TestReadAirportFile(t *testing.T) {
	data := buildAirportFile([]string{"KSEA"})
	r := binio.NewReader(data, "synthetic.bgl")

	f, err := Read(r, &Options{Variant: FSX}, CreateFlags{}, testLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(f.Airports) != 1 {
		t.Fatalf("got %d airports, want 1", len(f.Airports))
	}

	a := f.Airports[0]
	if a.Ident != "KSEA" {
		t.Errorf("ident = %q, want KSEA", a.Ident)
	}
	if a.Region != "K1" {
		t.Errorf("region = %q, want K1", a.Region)
	}
	if a.Name != "TEST FIELD" {
		t.Errorf("name = %q, want TEST FIELD", a.Name)
	}
	if math.Abs(a.Pos.LonX - -122.4) > 1e-4 || math.Abs(a.Pos.LatY-47.6) > 1e-4 {
		t.Errorf("pos = %v", a.Pos)
	}

	if len(a.Runways) != 2 {
		t.Fatalf("got %d runways, want 2", len(a.Runways))
	}
	rw := a.Runways[0]
	if rw.Primary.Name() != "09" || rw.Secondary.Name() != "27" {
		t.Errorf("runway ends %q/%q, want 09/27", rw.Primary.Name(), rw.Secondary.Name())
	}
	if rw.Surface != SurfaceAsphalt {
		t.Errorf("surface = %v", rw.Surface)
	}
	if math.Abs(rw.LengthMeter-2500) > 0.1 {
		t.Errorf("length = %v", rw.LengthMeter)
	}

	if len(a.Parkings) != 1 {
		t.Fatalf("got %d parkings, want 1", len(a.Parkings))
	}
	p := a.Parkings[0]
	if p.Name.String() != "GATE_C" || p.Type.String() != "RAMP_CARGO" ||
		p.PushBack.String() != "LEFT" || p.Number != 21 {
		t.Errorf("parking = %v %v %v %d", p.Name, p.Type, p.PushBack, p.Number)
	}
	if len(p.AirlineCodes) != 2 || p.AirlineCodes[0] != "UALX" {
		t.Errorf("airline codes = %v", p.AirlineCodes)
	}

	// Forward progress: position is exactly past the last record
	if r.Tell() != len(data) {
		t.Errorf("position = %#x, want EOF %#x", r.Tell(), len(data))
	}
}

func TestDuplicateAirportAbort(t *testing.T) {
	// Three records of one ident are tolerated, four reject the file.
	data := buildAirportFile([]string{"ZZZZ", "ZZZZ", "ZZZZ"})
	r := binio.NewReader(data, "dup3.bgl")
	f, err := Read(r, &Options{Variant: FSX}, CreateFlags{}, testLogger())
	if err != nil {
		t.Fatalf("three duplicates should be tolerated: %v", err)
	}
	if len(f.Airports) != 1 {
		t.Errorf("got %d airports, want 1 surviving row", len(f.Airports))
	}

	data = buildAirportFile([]string{"ZZZZ", "ZZZZ", "ZZZZ", "ZZZZ"})
	r = binio.NewReader(data, "dup4.bgl")
	f, err = Read(r, &Options{Variant: FSX}, CreateFlags{}, testLogger())
	if !errors.Is(err, ErrTooManyDuplicates) {
		t.Fatalf("err = %v, want ErrTooManyDuplicates", err)
	}
	if len(f.Airports) != 0 {
		t.Errorf("got %d airports after abort, want 0", len(f.Airports))
	}
}

func TestBoundaryScan(t *testing.T) {
	var b fileBuilder
	b.header(1)

	// Boundary section with a two-entry QMID offset table
	sectionStart := len(b.buf)
	b.u32(uint32(SectionBoundary))
	b.u32(0)
	b.u32(2)
	tableOff := sectionStart + 20
	b.u32(uint32(tableOff))
	b.u32(uint32(tableOff + 32 - sectionStart))

	b.u32(0x300) // offset1
	b.u32(0)
	b.u32(0x400) // offset2
	b.u32(1)     // treeFlag

	b.u32(0x200)
	b.u32(0)
	b.u32(0x280)
	b.u32(1)

	b.pad(0x200 - len(b.buf))

	// Scan starts at the minimum offset 0x200
	start := b.record(uint16(RecBoundary))
	b.u8(uint8(BoundaryClassD))
	b.u8(uint8(AltMSL) | uint8(AltMSL)<<4)
	b.pad(2)
	b.pos(geo.NewPos(-123, 47), 0)
	b.pos(geo.NewPos(-122, 48), 3000)

	nameStart := b.record(uint16(subBoundaryName))
	b.buf = append(b.buf, []byte("TEST CTR")...)
	b.endRecord(nameStart)
	b.endRecord(start)

	// A geopol record is skipped without complaint; any other type
	// only warns and the scan continues.
	start = b.record(uint16(RecGeopol))
	b.pad(8)
	b.endRecord(start)

	start = b.record(uint16(RecNDB))
	b.pad(8)
	b.endRecord(start)

	start = b.record(uint16(RecBoundary))
	b.u8(uint8(BoundaryMOA))
	b.u8(0)
	b.pad(2)
	b.pos(geo.NewPos(-100, 30), 0)
	b.pos(geo.NewPos(-99, 31), 5000)
	b.endRecord(start)

	r := binio.NewReader(b.buf, "boundary.bgl")
	f, err := Read(r, &Options{Variant: FSX}, CreateFlags{}, testLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(f.Boundaries) != 2 {
		t.Fatalf("got %d boundaries, want 2", len(f.Boundaries))
	}
	if f.Boundaries[0].Class != BoundaryClassD || f.Boundaries[0].Name != "TEST CTR" {
		t.Errorf("first boundary = %v %q", f.Boundaries[0].Class, f.Boundaries[0].Name)
	}
	if f.Boundaries[1].Class != BoundaryMOA {
		t.Errorf("second boundary class = %v", f.Boundaries[1].Class)
	}
}

func TestParkingDecodeMSFS(t *testing.T) {
	var b fileBuilder
	b.u32(0x0201554e)
	b.f32(15)
	b.f32(180)
	b.pad(16) // tee offsets
	b.pos(geo.NewPos(8.5, 50.0), 110)
	b.buf = append(b.buf, []byte("DLH\x00UAL\x00")...)
	b.u8(0)    // pad before suffix
	b.u8(0x04) // suffix D
	b.pad(18)  // material tail

	r := binio.NewReader(b.buf, "parking")
	p := readParking(r, MSFS)

	if r.Err() != nil {
		t.Fatalf("read error: %v", r.Err())
	}
	if p.Name.String() != "GATE_C" {
		t.Errorf("name = %v, want GATE_C", p.Name)
	}
	if p.PushBack.String() != "LEFT" {
		t.Errorf("pushback = %v, want LEFT", p.PushBack)
	}
	if p.Type.String() != "RAMP_CARGO" {
		t.Errorf("type = %v, want RAMP_CARGO", p.Type)
	}
	if p.Number != 21 {
		t.Errorf("number = %d, want 21", p.Number)
	}
	if len(p.AirlineCodes) != 2 {
		t.Errorf("airline codes = %v", p.AirlineCodes)
	}
	if p.Suffix.String() != "D" {
		t.Errorf("suffix = %v, want D", p.Suffix)
	}
	if r.Tell() != len(b.buf) {
		t.Errorf("position = %d, want %d", r.Tell(), len(b.buf))
	}
}

func TestInvalidMagicSkipped(t *testing.T) {
	var b fileBuilder
	b.header(1)
	binary.LittleEndian.PutUint32(b.buf[0:], 0x12345678) // break magic 1

	r := binio.NewReader(b.buf, "bad.bgl")
	f, err := Read(r, &Options{Variant: FSX}, CreateFlags{}, testLogger())
	if err != nil {
		t.Fatalf("invalid magic must not error: %v", err)
	}
	if f.HasContent() {
		t.Errorf("expected empty file")
	}
}

func TestTooSmallSkipped(t *testing.T) {
	r := binio.NewReader(make([]byte, 10), "tiny.bgl")
	f, err := Read(r, &Options{Variant: FSX}, CreateFlags{}, testLogger())
	if err != nil || f.HasContent() {
		t.Errorf("tiny file: err %v content %v", err, f.HasContent())
	}
}

func TestIdentCodec(t *testing.T) {
	for _, ident := range []string{"KSEA", "EDDF", "Z", "05X", "ZZZZ"} {
		if got := intToIdent(identToInt(ident, false), false); got != ident {
			t.Errorf("ident round trip %q = %q", ident, got)
		}
	}
	if got := intToIdent(0, false); got != "" {
		t.Errorf("zero ident = %q, want empty", got)
	}
}

func TestTacanChannelFrequency(t *testing.T) {
	tac := &TACAN{Channel: 17}
	if f := tac.Frequency(); f != 108000 {
		t.Errorf("channel 17X = %d kHz, want 108000", f)
	}
	tac = &TACAN{Channel: 17, YMode: true}
	if f := tac.Frequency(); f != 108050 {
		t.Errorf("channel 17Y = %d kHz, want 108050", f)
	}
}

func TestVariantGatedTacanSection(t *testing.T) {
	var b fileBuilder
	b.header(1)

	sectionStart := len(b.buf)
	b.u32(uint32(SectionTacanOrDeleteNav))
	b.u32(0)
	b.u32(1)
	subDirOff := sectionStart + 20
	b.u32(uint32(subDirOff))
	b.u32(16)

	recOff := subDirOff + 16
	b.u32(0)
	b.u32(1)
	b.u32(uint32(recOff))
	b.u32(0)

	start := b.record(uint16(RecTacan))
	b.pos(geo.NewPos(-80, 25), 10)
	b.u32(17)  // channel
	b.u8(0)    // X mode
	b.u8(0)    // flags
	b.pad(2)
	b.f32(100000) // range
	b.f32(355)    // magvar
	b.u32(identToInt("TAC", false))
	b.u32(0)
	b.endRecord(start)

	// P3D reads the TACAN
	r := binio.NewReader(b.buf, "tacan.bgl")
	f, err := Read(r, &Options{Variant: P3DV4}, CreateFlags{}, testLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(f.TACANs) != 1 || f.TACANs[0].Ident != "TAC" {
		t.Fatalf("TACANs = %v", f.TACANs)
	}
	if got := f.TACANs[0].MagVar; math.Abs(got-5) > 0.01 {
		t.Errorf("magvar = %v, want 5 east", got)
	}

	// The colliding code is refused for FSX where the variant cannot
	// disambiguate it.
	r = binio.NewReader(b.buf, "tacan.bgl")
	f, err = Read(r, &Options{Variant: FSX}, CreateFlags{}, testLogger())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(f.TACANs) != 0 {
		t.Errorf("FSX must not parse the TACAN section")
	}
}
