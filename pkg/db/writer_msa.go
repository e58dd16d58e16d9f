// pkg/db/writer_msa.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fsnav/navdbc/pkg/geo"
)

// MsaSector is one bearing slice of a minimum sector altitude circle.
type MsaSector struct {
	BearingFromDeg float64
	BearingToDeg   float64
	AltitudeFeet   int
}

// Msa is a minimum-sector-altitude circle around a center fix.
type Msa struct {
	AirportIdent string
	NavIdent     string
	NavType      string
	Region       string
	MultipleCode string
	TrueBearing  bool
	RadiusNM     float64
	Center       geo.Pos
	Sectors      []MsaSector
}

// msaGeometry is the pre-computed drawing geometry stored in the blob:
// the arc polylines per sector plus a label anchor inside each sector.
type msaGeometry struct {
	Sectors []msaSectorGeometry `msgpack:"s"`
}

type msaSectorGeometry struct {
	AltitudeFeet int          `msgpack:"a"`
	LabelLonX    float64      `msgpack:"lx"`
	LabelLatY    float64      `msgpack:"ly"`
	Arc          [][2]float64 `msgpack:"p"`
}

// msaArcStepDeg is the polyline granularity for sector arcs.
const msaArcStepDeg = 5.

func buildMsaGeometry(m *Msa) msaGeometry {
	radiusMeter := geo.NmToMeter(m.RadiusNM)
	var g msaGeometry

	for _, s := range m.Sectors {
		from := geo.NormalizeCourse(s.BearingFromDeg)
		to := geo.NormalizeCourse(s.BearingToDeg)
		span := to - from
		if span <= 0 {
			span += 360
		}

		var arc [][2]float64
		for b := 0.; b <= span; b += msaArcStepDeg {
			p := m.Center.Endpoint(radiusMeter, geo.NormalizeCourse(from+b))
			arc = append(arc, [2]float64{p.LonX, p.LatY})
		}
		// close the arc on the exact end bearing
		p := m.Center.Endpoint(radiusMeter, to)
		arc = append(arc, [2]float64{p.LonX, p.LatY})

		label := m.Center.Endpoint(radiusMeter/2, geo.NormalizeCourse(from+span/2))
		g.Sectors = append(g.Sectors, msaSectorGeometry{
			AltitudeFeet: s.AltitudeFeet,
			LabelLonX:    label.LonX,
			LabelLatY:    label.LatY,
			Arc:          arc,
		})
	}
	return g
}

func (w *Writers) WriteMsa(m *Msa) error {
	if err := checkPos(m.Center); err != nil {
		return fmt.Errorf("msa %s: %w", m.NavIdent, err)
	}

	blob, err := msgpack.Marshal(buildMsaGeometry(m))
	if err != nil {
		return fmt.Errorf("msa geometry: %w", err)
	}

	var airportID any
	if m.AirportIdent != "" {
		if v, ok := w.Index.AirportID(m.AirportIdent); ok {
			airportID = v
		}
	}

	radiusMeter := geo.NmToMeter(m.RadiusNM)
	bounds := geo.RectFromPoints(
		m.Center.Endpoint(radiusMeter, 0),
		m.Center.Endpoint(radiusMeter, 90),
		m.Center.Endpoint(radiusMeter, 180),
		m.Center.Endpoint(radiusMeter, 270))

	id := w.ids.ID("airport_msa")
	return w.exec("airport_msa", `
		INSERT INTO airport_msa (airport_msa_id, file_id, airport_id,
			airport_ident, nav_ident, nav_type, region, multiple_code,
			true_bearing, mag_var, left_lonx, top_laty, right_lonx,
			bottom_laty, radius, lonx, laty, geometry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, w.curFileID, airportID, nullStr(m.AirportIdent),
		nullStr(m.NavIdent), nullStr(m.NavType), nullStr(m.Region),
		nullStr(m.MultipleCode), m.TrueBearing,
		w.magVar(m.Center, 0),
		bounds.West, bounds.North, bounds.East, bounds.South,
		m.RadiusNM, m.Center.LonX, m.Center.LatY, blob)
}

// MoraGrid is the grid-MORA lattice: one altitude per one-degree cell,
// in feet/100, row-major from the north-west corner. UnknownMora marks
// unsurveyed cells.
type MoraGrid struct {
	Columns int
	Rows    int
	Values  []uint16
}

const (
	MoraGridVersion = 1
	UnknownMora     = 0xffff
)

func (w *Writers) WriteMoraGrid(g *MoraGrid) error {
	if len(g.Values) != g.Columns*g.Rows {
		return fmt.Errorf("mora grid: %d values for %dx%d",
			len(g.Values), g.Columns, g.Rows)
	}

	raw := make([]byte, len(g.Values)*2)
	for i, v := range g.Values {
		binary.LittleEndian.PutUint16(raw[i*2:], v)
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return err
	}
	if _, err := enc.Write(raw); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	id := w.ids.ID("mora_grid")
	return w.exec("mora_grid", `
		INSERT INTO mora_grid (mora_grid_id, version, lonx_columns,
			laty_rows, geometry)
		VALUES (?, ?, ?, ?, ?)`,
		id, MoraGridVersion, g.Columns, g.Rows, buf.Bytes())
}
