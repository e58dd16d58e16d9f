// pkg/db/airway.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
	"github.com/fsnav/navdbc/pkg/util"
)

// The airway_point table holds per-waypoint fragments: each row names
// its own fix plus the next and previous fix on a named airway. The
// resolver stitches the fragments per airway into ordered chains and
// writes one airway row per consecutive pair.

type airwayFixKey struct {
	ident  string
	region string
}

type airwayNode struct {
	key        airwayFixKey
	waypointID int64
	pos        geo.Pos
	airwayType string
	minAlt     int
	maxAlt     int
	direction  string
	next       *airwayFixKey
}

// ResolveAirways builds the airway table from the collected
// airway_point fragments. Chains with a dangling neighbor reference
// lose the broken edge; closed loops are cut at the lexically smallest
// fix so every airway has a defined start.
func ResolveAirways(d *Database, lg *log.Logger) (int, error) {
	rows, err := d.Query(`
		SELECT ap.name, ap.type, ap.mid_ident, ap.mid_region,
			ap.next_ident, ap.next_region,
			ap.minimum_altitude, ap.maximum_altitude, ap.direction,
			ap.waypoint_id, w.lonx, w.laty
		FROM airway_point ap
		JOIN waypoint w ON ap.waypoint_id = w.waypoint_id
		ORDER BY ap.name, ap.mid_ident, ap.mid_region`)
	if err != nil {
		return 0, fmt.Errorf("airway fragments: %w", err)
	}
	defer rows.Close()

	airways := make(map[string][]*airwayNode)
	for rows.Next() {
		var name, airwayType, midIdent string
		var midRegion, nextIdent, nextRegion, direction sql.NullString
		var minAlt, maxAlt sql.NullInt64
		var waypointID int64
		var lonx, laty float64

		err := rows.Scan(&name, &airwayType, &midIdent, &midRegion,
			&nextIdent, &nextRegion, &minAlt, &maxAlt, &direction,
			&waypointID, &lonx, &laty)
		if err != nil {
			return 0, fmt.Errorf("airway fragment scan: %w", err)
		}

		n := &airwayNode{
			key:        airwayFixKey{midIdent, midRegion.String},
			waypointID: waypointID,
			pos:        geo.NewPos(lonx, laty),
			airwayType: airwayType,
			minAlt:     int(minAlt.Int64),
			maxAlt:     int(maxAlt.Int64),
			direction:  direction.String,
		}
		if nextIdent.Valid && nextIdent.String != "" {
			n.next = &airwayFixKey{nextIdent.String, nextRegion.String}
		}
		airways[name] = append(airways[name], n)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	seg := newAirwaySegmentWriter(d)
	for _, name := range util.SortedMapKeys(airways) {
		if err := resolveOne(name, airways[name], seg, lg); err != nil {
			return 0, err
		}
	}
	return seg.numWritten, nil
}

func resolveOne(name string, fragments []*airwayNode, seg *airwaySegmentWriter, lg *log.Logger) error {
	nodes := make(map[airwayFixKey]*airwayNode, len(fragments))
	inbound := make(map[airwayFixKey]int)
	for _, n := range fragments {
		if prev, dup := nodes[n.key]; dup {
			// Same fix listed twice for one airway; keep the first
			// fragment but adopt a next pointer if it was missing.
			if prev.next == nil {
				prev.next = n.next
			}
			continue
		}
		nodes[n.key] = n
	}
	for _, n := range nodes {
		if n.next == nil {
			continue
		}
		if _, ok := nodes[*n.next]; !ok {
			lg.Warnf("airway %s: %s/%s references unknown fix %s/%s, dropping edge",
				name, n.key.ident, n.key.region, n.next.ident, n.next.region)
			n.next = nil
			continue
		}
		inbound[*n.next]++
	}

	// Chain starts have an outbound edge but nothing pointing at them.
	var starts []*airwayNode
	for _, n := range nodes {
		if n.next != nil && inbound[n.key] == 0 {
			starts = append(starts, n)
		}
	}
	sort.Slice(starts, func(i, j int) bool {
		if starts[i].key.ident != starts[j].key.ident {
			return starts[i].key.ident < starts[j].key.ident
		}
		return starts[i].key.region < starts[j].key.region
	})

	fragmentNo := 0
	visited := make(map[airwayFixKey]bool)

	walk := func(start *airwayNode) error {
		fragmentNo++
		sequenceNo := 0
		cur := start
		for cur.next != nil && !visited[cur.key] {
			visited[cur.key] = true
			to := nodes[*cur.next]
			sequenceNo++
			if err := seg.write(name, fragmentNo, sequenceNo, cur, to); err != nil {
				return err
			}
			cur = to
		}
		visited[cur.key] = true
		return nil
	}

	for _, start := range starts {
		if err := walk(start); err != nil {
			return err
		}
	}

	// Whatever remains unvisited with an edge sits on a closed loop.
	// Cut each loop at its lexically smallest fix.
	for {
		var loopStart *airwayNode
		for _, n := range nodes {
			if visited[n.key] || n.next == nil {
				continue
			}
			if loopStart == nil || n.key.ident < loopStart.key.ident ||
				(n.key.ident == loopStart.key.ident && n.key.region < loopStart.key.region) {
				loopStart = n
			}
		}
		if loopStart == nil {
			break
		}
		lg.Warnf("airway %s: closed loop, starting at %s/%s",
			name, loopStart.key.ident, loopStart.key.region)
		if err := walk(loopStart); err != nil {
			return err
		}
	}
	return nil
}

type airwaySegmentWriter struct {
	d          *Database
	numWritten int
}

func newAirwaySegmentWriter(d *Database) *airwaySegmentWriter {
	return &airwaySegmentWriter{d: d}
}

func (s *airwaySegmentWriter) write(name string, fragmentNo, sequenceNo int, from, to *airwayNode) error {
	rect := geo.RectFromPoints(from.pos, to.pos)

	var maxAlt any
	if from.maxAlt > 0 {
		maxAlt = from.maxAlt
	}
	var direction any
	if from.direction != "" {
		direction = from.direction
	}

	s.numWritten++
	_, err := s.d.Exec(`
		INSERT INTO airway (airway_id, airway_name, airway_type,
			airway_fragment_no, sequence_no, from_waypoint_id,
			to_waypoint_id, direction, minimum_altitude, maximum_altitude,
			left_lonx, top_laty, right_lonx, bottom_laty,
			from_lonx, from_laty, to_lonx, to_laty)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.numWritten, name, from.airwayType, fragmentNo, sequenceNo,
		from.waypointID, to.waypointID, direction, from.minAlt, maxAlt,
		rect.West, rect.North, rect.East, rect.South,
		from.pos.LonX, from.pos.LatY, to.pos.LonX, to.pos.LatY)
	if err != nil {
		return fmt.Errorf("airway segment %s %d/%d: %w", name, fragmentNo, sequenceNo, err)
	}
	return err
}
