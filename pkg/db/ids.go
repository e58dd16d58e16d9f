// pkg/db/ids.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

// idGenerator hands out the per-table surrogate keys. Ids are strictly
// increasing within a run but not necessarily contiguous; they live at
// pipeline scope and are not shared across goroutines.
type idGenerator struct {
	next map[string]int64
}

func newIDGenerator() *idGenerator {
	return &idGenerator{next: make(map[string]int64)}
}

// ID returns the next id for a table, starting at 1.
func (g *idGenerator) ID(table string) int64 {
	g.next[table]++
	return g.next[table]
}

// Current returns the last id handed out for a table, 0 if none.
func (g *idGenerator) Current(table string) int64 {
	return g.next[table]
}
