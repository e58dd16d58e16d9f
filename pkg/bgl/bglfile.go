// pkg/bgl/bglfile.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"fmt"
	"math"

	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/log"
)

// Options filters what gets extracted from a file.
type Options struct {
	Variant Variant

	// Idents to drop; empty means keep everything.
	ExcludeIdents map[string]bool
	// Idents to keep exclusively; empty means keep everything.
	IncludeIdents map[string]bool
	// Types to keep, keyed by "airport", "vor", "ndb", "ils", "marker",
	// "waypoint", "boundary", "tacan"; empty means keep everything.
	IncludeTypes map[string]bool

	Verbose bool
}

func (o *Options) includeType(t string) bool {
	return len(o.IncludeTypes) == 0 || o.IncludeTypes[t]
}

func (o *Options) includeIdent(ident string) bool {
	if o.ExcludeIdents[ident] {
		return false
	}
	return len(o.IncludeIdents) == 0 || o.IncludeIdents[ident]
}

// File holds everything parsed from one scenery file, grouped per
// category. The content lives only until the next file is read.
type File struct {
	Header Header

	Airports  []*Airport
	Namelists []*Namelist
	VORs      []*VOR
	ILSs      []*ILS
	NDBs      []*NDB
	Markers   []*Marker
	TACANs    []*TACAN
	Waypoints []*Waypoint
	Boundaries []*Boundary

	sections    []Section
	subsections []Subsection
}

func (f *File) HasContent() bool {
	return len(f.Airports) > 0 || len(f.Namelists) > 0 || len(f.VORs) > 0 ||
		len(f.ILSs) > 0 || len(f.NDBs) > 0 || len(f.Markers) > 0 ||
		len(f.TACANs) > 0 || len(f.Waypoints) > 0 || len(f.Boundaries) > 0
}

// ReadFile parses one scenery file. Files that are too small or carry
// the wrong magic numbers return an empty *File and no error; only the
// duplicate-airport condition is reported as an error so the caller can
// record it against the scenery area.
func ReadFile(path string, opts *Options, flags CreateFlags, lg *log.Logger) (*File, error) {
	r, err := binio.NewReaderFromFile(path)
	if err != nil {
		return nil, err
	}
	return Read(r, opts, flags, lg)
}

func Read(r *binio.Reader, opts *Options, flags CreateFlags, lg *log.Logger) (*File, error) {
	f := &File{}

	if r.Size() < HeaderSize {
		lg.Debugf("%s: file too small: %d bytes", r.Name(), r.Size())
		return f, nil
	}

	f.Header = readHeader(r, opts.Variant, lg)
	if !f.Header.Valid() {
		// Obscure files without a section structure are skipped
		return f, nil
	}

	if !f.readSections(r, lg) {
		return f, nil
	}

	if opts.includeType("boundary") && !flags.MSFSNavigraphNavdata {
		f.readBoundaryRecords(r, opts, lg)
	}

	err := f.readRecords(r, opts, flags, lg)
	return f, err
}

// readSections reads the section directory and the subsection
// directories of all supported sections. A section count pointing past
// EOF invalidates the file.
func (f *File) readSections(r *binio.Reader, lg *log.Logger) bool {
	if HeaderSize+int(f.Header.NumSections)*20 > r.Size() {
		lg.Warnf("%s: section directory of %d entries exceeds file size",
			r.Name(), f.Header.NumSections)
		return false
	}

	for i := 0; i < int(f.Header.NumSections); i++ {
		s := readSection(r)
		if r.Err() != nil {
			return false
		}
		if !s.Type.known() {
			lg.Warnf("%s: unknown section type %#x at %#x", r.Name(), uint32(s.Type), s.Start)
			continue
		}
		f.sections = append(f.sections, s)
	}

	for i := range f.sections {
		s := &f.sections[i]
		// Boundary and geopol use the QMID offset-table layout and are
		// scanned separately.
		if s.Type == SectionBoundary || s.Type == SectionGeopol {
			continue
		}
		r.Seek(s.FirstSubsectionOff)
		for j := 0; j < s.NumSubsections && r.Err() == nil; j++ {
			f.subsections = append(f.subsections, readSubsection(r, s))
		}
		if r.Err() != nil {
			lg.Warnf("%s: truncated subsection directory for %v", r.Name(), s.Type)
			r.ClearErr()
		}
	}
	return true
}

// readBoundaryRecords finds the lowest record offset in the boundary
// section's QMID offset table and reads records from there to EOF. Only
// boundary and geopol records are expected in that span.
func (f *File) readBoundaryRecords(r *binio.Reader, opts *Options, lg *log.Logger) {
	for i := range f.sections {
		section := &f.sections[i]
		if section.Type != SectionBoundary {
			continue
		}

		r.Seek(section.FirstSubsectionOff)
		minOffset := math.MaxInt
		for r.Err() == nil && r.Tell() < section.Start+section.TotalSubsectionSize {
			offset1 := int(r.U32())
			r.U32()
			offset2 := int(r.U32())
			treeFlag := r.U32()

			if treeFlag > 0 {
				if offset1 < minOffset {
					minOffset = offset1
				}
				if offset2 < minOffset {
					minOffset = offset2
				}
			}
		}
		if r.Err() != nil || minOffset == math.MaxInt {
			r.ClearErr()
			continue
		}

		r.Seek(minOffset)
		numRecs := 0
		for r.Err() == nil && r.Tell() < r.Size() {
			rec := readRecordHeader(r)
			if rec.Size <= 0 {
				break
			}

			switch RecordType(rec.ID) {
			case RecBoundary, RecBoundaryMSFS2024:
				if b := readBoundary(r, rec, lg); b != nil {
					f.Boundaries = append(f.Boundaries, b)
					numRecs++
				}
			case RecGeopol:
				// Coastline/border material, not extracted
			default:
				lg.Warnf("%s: while reading boundaries: unexpected record %#x at %#x",
					r.Name(), rec.ID, rec.Start)
			}

			rec.SeekToEnd(r)
		}
		if opts.Verbose {
			lg.Debugf("%s: %d boundary records", r.Name(), numRecs)
		}
	}
}

func (f *File) readRecords(r *binio.Reader, opts *Options, flags CreateFlags, lg *log.Logger) error {
	// Duplicate airport idents within one file indicate a malformed
	// file; a few are tolerated and ignored, more reject the file.
	identCounts := make(map[string]int)

	for i := range f.subsections {
		sub := &f.subsections[i]
		sectionType := sub.Section.Type

		if opts.Verbose {
			lg.Debugf("%s: records at %#x type %v", r.Name(), sub.FirstDataRecordOff, sectionType)
		}

		r.Seek(sub.FirstDataRecordOff)

		numRec := sub.NumDataRecords
		if sectionType == SectionNameList {
			// Name lists have only one record
			numRec = 1
		}

		for j := 0; j < numRec; j++ {
			rec := readRecordHeader(r)
			if r.Err() != nil || rec.Size <= 0 || rec.Size > r.Size() {
				lg.Warnf("%s: invalid record size %d type %#x at %#x",
					r.Name(), rec.Size, rec.ID, rec.Start)
				r.ClearErr()
				break
			}

			switch sectionType {
			case SectionAirport, SectionAirportAlt:
				if !opts.includeType("airport") {
					break
				}
				a := readAirport(r, rec, opts.Variant, flags, lg)
				if !opts.includeIdent(a.Ident) {
					break
				}

				identCounts[a.Ident]++
				if n := identCounts[a.Ident]; n > 1 {
					lg.Warnf("%s: duplicate airport ident %s at %#x", r.Name(), a.Ident, rec.Start)
					if n > DuplicateIdentThreshold {
						f.Airports = nil
						return fmt.Errorf("%s: airport %s: %w", r.Name(), a.Ident, ErrTooManyDuplicates)
					}
					break // tolerated duplicate, later one ignored
				}
				a.AttachJetways()
				f.Airports = append(f.Airports, a)

			case SectionNameList:
				f.Namelists = append(f.Namelists, readNamelist(r, rec, lg))

			case SectionILSVOR:
				if flags.MSFSNavigraphNavdata {
					break
				}
				f.readIlsVor(r, rec, opts, lg)

			case SectionNDB:
				if opts.includeType("ndb") && !flags.MSFSNavigraphNavdata {
					n := readNDB(r, rec, lg)
					if opts.includeIdent(n.Ident) {
						f.NDBs = append(f.NDBs, n)
					}
				}

			case SectionMarker:
				if opts.includeType("marker") && !flags.MSFSNavigraphNavdata {
					f.Markers = append(f.Markers, readMarker(r, rec, lg))
				}

			case SectionWaypoint:
				if opts.includeType("waypoint") && !flags.MSFSNavigraphNavdata {
					w := readWaypoint(r, rec, lg)
					if opts.includeIdent(w.Ident) {
						f.Waypoints = append(f.Waypoints, w)
					}
				}

			case SectionTacanOrDeleteNav:
				// Code collision: TACAN for P3D, navigation deletes for
				// MSFS 2024. Refuse to guess for other variants.
				switch opts.Variant {
				case P3DV4, P3DV5:
					if opts.includeType("tacan") {
						f.TACANs = append(f.TACANs, readTACAN(r, rec, lg))
					}
				case MSFS2024:
					// Delete records not extracted
				default:
					lg.Warnf("%s: section %#x needs P3D or MSFS 2024, have %v; skipped",
						r.Name(), uint32(sectionType), opts.Variant)
				}

			default:
				// Recognized but ignored section
			}

			if r.Err() != nil {
				lg.Warnf("%s: truncated record type %#x at %#x", r.Name(), rec.ID, rec.Start)
			}
			rec.SeekToEnd(r)
		}
	}
	return nil
}

// readIlsVor peeks the shared discriminator and re-reads with the
// concrete parser.
func (f *File) readIlsVor(r *binio.Reader, rec Record, opts *Options, lg *log.Logger) {
	t := peekIlsVorType(r)
	rec.SeekToStart(r)
	r.Skip(6)

	switch t {
	case NavTerminal, NavLow, NavHigh, NavVOT:
		if opts.includeType("vor") {
			v := readVOR(r, rec, lg)
			if opts.includeIdent(v.Ident) {
				f.VORs = append(f.VORs, v)
			}
		}
	case NavILS:
		if opts.includeType("ils") {
			ils := readILS(r, rec, lg)
			if opts.includeIdent(ils.Ident) {
				f.ILSs = append(f.ILSs, ils)
			}
		}
	default:
		if opts.Variant != MSFS && opts.Variant != MSFS2024 {
			lg.Warnf("%s: unknown ILS/VOR type %d at %#x", r.Name(), t, rec.Start)
		}
	}
}
