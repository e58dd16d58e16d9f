// pkg/db/routeedge.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/fsnav/navdbc/pkg/geo"
	"github.com/fsnav/navdbc/pkg/log"
)

// ErrAborted is returned when a progress callback requests
// cancellation.
var ErrAborted = errors.New("aborted")

// Radio navaids get connected to their nearest neighbors so the
// flight-plan calculator can route VOR-to-VOR without airways. Airway
// waypoints (type 5) are connected by the airway table instead and
// are skipped here.

const (
	// edges longer than this are never created
	maxEdgeDistanceNM = 500

	// neighbors kept per node, nearest first
	maxEdgesPerNode = 6

	// nodes per degree-sized bucket is small, so a simple grid beats a
	// spatial index
	gridDeg = 4
)

type routeNode struct {
	id   int64
	typ  int
	pos  geo.Pos
}

type gridKey struct {
	x, y int
}

func gridKeyFor(pos geo.Pos) gridKey {
	return gridKey{
		x: int(math.Floor((pos.LonX + 180) / gridDeg)),
		y: int(math.Floor((pos.LatY + 90) / gridDeg)),
	}
}

// WriteRouteEdges connects radio navaid route nodes to their nearest
// neighbors. Progress is reported as a fraction through the node list.
func WriteRouteEdges(d *Database, lg *log.Logger, progress func(fraction float64) bool) (int, error) {
	rows, err := d.Query(`
		SELECT node_id, type, lonx, laty FROM route_node
		WHERE type IN (1, 2, 3, 4)
		ORDER BY node_id`)
	if err != nil {
		return 0, fmt.Errorf("route nodes: %w", err)
	}

	var nodes []routeNode
	grid := make(map[gridKey][]int)
	for rows.Next() {
		var n routeNode
		var lonx, laty float64
		if err := rows.Scan(&n.id, &n.typ, &lonx, &laty); err != nil {
			rows.Close()
			return 0, fmt.Errorf("route node scan: %w", err)
		}
		n.pos = geo.NewPos(lonx, laty)
		grid[gridKeyFor(n.pos)] = append(grid[gridKeyFor(n.pos)], len(nodes))
		nodes = append(nodes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	stmt, err := d.Prepare(`
		INSERT INTO route_edge (edge_id, from_node_id, from_node_type,
			to_node_id, to_node_type, distance)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	type neighbor struct {
		idx    int
		distNM float64
	}

	// grid cells covering the search radius around a node
	cellRadius := int(maxEdgeDistanceNM/60/gridDeg) + 1

	numEdges := 0
	for i := range nodes {
		from := &nodes[i]

		var neighbors []neighbor
		center := gridKeyFor(from.pos)
		for dx := -cellRadius; dx <= cellRadius; dx++ {
			for dy := -cellRadius; dy <= cellRadius; dy++ {
				for _, j := range grid[gridKey{center.x + dx, center.y + dy}] {
					if j == i {
						continue
					}
					distNM := from.pos.DistanceNM(nodes[j].pos)
					if distNM <= maxEdgeDistanceNM {
						neighbors = append(neighbors, neighbor{j, distNM})
					}
				}
			}
		}

		sort.Slice(neighbors, func(a, b int) bool {
			return neighbors[a].distNM < neighbors[b].distNM
		})
		if len(neighbors) > maxEdgesPerNode {
			neighbors = neighbors[:maxEdgesPerNode]
		}

		for _, nb := range neighbors {
			to := &nodes[nb.idx]
			numEdges++
			_, err := stmt.Exec(numEdges, from.id, from.typ, to.id, to.typ,
				int(math.Round(nb.distNM)))
			if err != nil {
				return 0, fmt.Errorf("route edge: %w", err)
			}
		}

		if progress != nil && i%1024 == 0 {
			if !progress(float64(i) / float64(len(nodes))) {
				return numEdges, ErrAborted
			}
		}
	}

	if len(nodes) > 0 {
		lg.Infof("route graph: %d nodes, %d edges", len(nodes), numEdges)
	}
	return numEdges, nil
}
