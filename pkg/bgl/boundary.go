// pkg/bgl/boundary.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import (
	"github.com/fsnav/navdbc/pkg/binio"
	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// BoundaryVertex is one polygon vertex; arc vertices carry the arc
// center and radius so consumers can tessellate.
type BoundaryVertex struct {
	Pos      geo.Pos
	IsArc    bool
	Clockwise bool
	ArcCenter geo.Pos
	RadiusNM  float64
}

// Boundary is one airspace polygon with its altitude band and optional
// COM frequency.
type Boundary struct {
	Record
	Class       BoundaryClass
	Name        string
	MinAltType  BoundaryAltType
	MaxAltType  BoundaryAltType
	MinAltMeter float64
	MaxAltMeter float64
	Rect        geo.Rect
	Vertices    []BoundaryVertex

	ComType      ComType
	ComFrequency int
	ComName      string
}

// Boundary child subrecord codes.
const (
	subBoundaryName  subrecordType = 0x0042
	subBoundaryLines subrecordType = 0x0043
	subBoundaryCom   subrecordType = 0x0044
)

// Vertex point type codes inside the line subrecord.
const (
	boundaryPointStart     = 1
	boundaryPointLine      = 2
	boundaryPointOrigin    = 3
	boundaryPointArcCW     = 4
	boundaryPointArcCCW    = 5
	boundaryPointCircleCW  = 6
	boundaryPointCircleCCW = 7
)

func readBoundary(r *binio.Reader, rec Record, lg *log.Logger) *Boundary {
	b := &Boundary{Record: rec}

	b.Class = BoundaryClass(r.U8())
	altFlags := r.U8()
	b.MinAltType = BoundaryAltType(altFlags & 0xf)
	b.MaxAltType = BoundaryAltType(altFlags >> 4)
	r.Skip(2)

	minPos, minAlt := readPos(r)
	maxPos, maxAlt := readPos(r)
	b.MinAltMeter = minAlt
	b.MaxAltMeter = maxAlt
	b.Rect = geo.RectFromPoints(minPos, maxPos)

	for r.Err() == nil && r.Tell() < b.End() {
		sub := readRecordHeader(r)
		if sub.Size <= 0 {
			break
		}

		switch subrecordType(sub.ID) {
		case subBoundaryName:
			b.Name = r.String(sub.Size-6, binio.EncodingLatin1)
		case subBoundaryCom:
			b.ComType = ComType(r.U16())
			b.ComFrequency = int(r.U32())
			b.ComName = r.String(sub.Size-12, binio.EncodingLatin1)
		case subBoundaryLines:
			b.Vertices = readBoundaryLines(r, sub, lg)
		default:
			lg.Debugf("%s: boundary: skipping subrecord %#x at %#x",
				r.Name(), sub.ID, sub.Start)
		}

		sub.SeekToEnd(r)
	}

	return b
}

func readBoundaryLines(r *binio.Reader, rec Record, lg *log.Logger) []BoundaryVertex {
	n := int(r.U16())
	vertices := make([]BoundaryVertex, 0, n)

	var origin geo.Pos
	for i := 0; i < n && r.Err() == nil; i++ {
		pointType := int(r.U16())

		if pointType == boundaryPointCircleCW || pointType == boundaryPointCircleCCW {
			// Full circle: the vertex slot packs the radius in meters
			// instead of a position.
			radiusMeter := float64(r.U32())
			r.U32()
			vertices = append(vertices, BoundaryVertex{
				Pos:       origin,
				IsArc:     true,
				Clockwise: pointType == boundaryPointCircleCW,
				ArcCenter: origin,
				RadiusNM:  geo.MeterToNm(radiusMeter),
			})
			continue
		}

		pos := readPos2D(r)
		switch pointType {
		case boundaryPointStart, boundaryPointLine:
			vertices = append(vertices, BoundaryVertex{Pos: pos})
		case boundaryPointOrigin:
			origin = pos
		case boundaryPointArcCW, boundaryPointArcCCW:
			v := BoundaryVertex{
				Pos:       pos,
				IsArc:     true,
				Clockwise: pointType == boundaryPointArcCW,
				ArcCenter: origin,
			}
			v.RadiusNM = geo.MeterToNm(origin.DistanceMeter(pos))
			vertices = append(vertices, v)
		default:
			lg.Debugf("%s: boundary line: unknown point type %d", r.Name(), pointType)
		}
	}
	return vertices
}
