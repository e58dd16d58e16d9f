// pkg/geo/rect.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

// Rect is an axis-aligned bounding rectangle in longitude/latitude
// degrees. A zero-value Rect is empty until the first Extend call.
type Rect struct {
	West, East  float64
	South, North float64
	valid       bool
}

func RectFromPoints(points ...Pos) Rect {
	var r Rect
	for _, p := range points {
		r.Extend(p)
	}
	return r
}

func (r *Rect) Extend(p Pos) {
	if !p.IsValid() {
		return
	}
	if !r.valid {
		r.West, r.East = p.LonX, p.LonX
		r.South, r.North = p.LatY, p.LatY
		r.valid = true
		return
	}
	if p.LonX < r.West {
		r.West = p.LonX
	}
	if p.LonX > r.East {
		r.East = p.LonX
	}
	if p.LatY < r.South {
		r.South = p.LatY
	}
	if p.LatY > r.North {
		r.North = p.LatY
	}
}

func (r Rect) IsValid() bool {
	return r.valid
}

func (r Rect) Inside(p Pos) bool {
	return r.valid && p.LonX >= r.West && p.LonX <= r.East && p.LatY >= r.South && p.LatY <= r.North
}

func (r Rect) TopLeft() Pos {
	return Pos{LonX: r.West, LatY: r.North}
}

func (r Rect) BottomRight() Pos {
	return Pos{LonX: r.East, LatY: r.South}
}
