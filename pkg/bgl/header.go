// pkg/bgl/header.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"fmt"
	"time"

	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/log"
)

// Header is the fixed 56 byte file header. Files with mismatched magic
// numbers are skipped without error; a wrong declared header size is
// only a warning since third-party navdata updates ship files with a
// bogus size field.
type Header struct {
	MagicNumber1 uint32
	HeaderSize   uint32
	MagicNumber2 uint32
	NumSections  uint32
	Created      time.Time

	validMagic bool
	read       bool
}

func readHeader(r *binio.Reader, v Variant, lg *log.Logger) Header {
	h := Header{validMagic: true}

	h.MagicNumber1 = r.U32()
	if h.MagicNumber1 != MagicNumber1 {
		h.validMagic = false
	}

	h.HeaderSize = r.U32()
	if h.HeaderSize != HeaderSize && v != MSFS && v != MSFS2024 {
		lg.Warnf("%s: unexpected header size %#x", r.Name(), h.HeaderSize)
	}

	lo := r.U32()
	hi := r.U32()
	h.Created = filetime(lo, hi)

	h.MagicNumber2 = r.U32()
	if h.MagicNumber2 != MagicNumber2 {
		h.validMagic = false
	}

	if !h.validMagic {
		if v != MSFS && v != MSFS2024 {
			lg.Warnf("%s: invalid magic numbers %#x, %#x", r.Name(),
				h.MagicNumber1, h.MagicNumber2)
		}
		return h
	}

	h.NumSections = r.U32()
	r.Skip(4 * 8) // QMID bounds

	h.read = r.Err() == nil
	return h
}

func (h Header) Valid() bool { return h.validMagic && h.read }

func (h Header) String() string {
	return fmt.Sprintf("Header[magic %#x/%#x, size %d, created %s, sections %d]",
		h.MagicNumber1, h.MagicNumber2, h.HeaderSize,
		h.Created.Format(time.RFC3339), h.NumSections)
}

// Section is one 20 byte entry of the section directory plus its own
// start offset.
type Section struct {
	Start               int
	Type                SectionType
	NumSubsections      int
	FirstSubsectionOff  int
	TotalSubsectionSize int
}

func readSection(r *binio.Reader) Section {
	s := Section{Start: r.Tell()}
	s.Type = SectionType(r.U32())
	r.U32() // flags
	s.NumSubsections = int(r.U32())
	s.FirstSubsectionOff = int(r.U32())
	s.TotalSubsectionSize = int(r.U32())
	return s
}

func (s Section) String() string {
	return fmt.Sprintf("Section[%v, %d subsections at %#x, %d bytes]",
		s.Type, s.NumSubsections, s.FirstSubsectionOff, s.TotalSubsectionSize)
}

// Subsection points at a run of data records. Boundary and geopol
// sections use a different QMID-indexed layout and never come through
// here.
type Subsection struct {
	Section             *Section
	FirstDataRecordOff  int
	NumDataRecords      int
}

func readSubsection(r *binio.Reader, parent *Section) Subsection {
	s := Subsection{Section: parent}
	r.U32() // QMID id
	s.NumDataRecords = int(r.U32())
	s.FirstDataRecordOff = int(r.U32())
	r.U32() // total data size
	return s
}

func (s Subsection) String() string {
	return fmt.Sprintf("Subsection[%v, %d records at %#x]",
		s.Section.Type, s.NumDataRecords, s.FirstDataRecordOff)
}
