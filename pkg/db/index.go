// pkg/db/index.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package db

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fsnav/navdbc/pkg/fsutil"
)

// AirportIndex maps airport idents to ids and (airport, runway end)
// pairs to runway end ids, for resolving cross references while
// writing. Fuzzy runway lookups (a procedure naming 09 where the
// airport has 10) are served through a small LRU since CIFP files hit
// the same airports in long runs.
type AirportIndex struct {
	airportIDs  map[string]int64
	runwayEnds  map[runwayEndKey]int64
	runwayNames map[string][]string

	fuzzyCache *lru.Cache[runwayEndKey, int64]
}

type runwayEndKey struct {
	airportIdent string
	runwayName   string
}

func NewAirportIndex() *AirportIndex {
	cache, _ := lru.New[runwayEndKey, int64](4096)
	return &AirportIndex{
		airportIDs:  make(map[string]int64),
		runwayEnds:  make(map[runwayEndKey]int64),
		runwayNames: make(map[string][]string),
		fuzzyCache:  cache,
	}
}

func (idx *AirportIndex) AddAirport(ident string, id int64) {
	idx.airportIDs[ident] = id
}

func (idx *AirportIndex) AddRunwayEnd(airportIdent, runwayName string, id int64) {
	name := fsutil.NormalizeRunway(runwayName)
	idx.runwayEnds[runwayEndKey{airportIdent, name}] = id
	idx.runwayNames[airportIdent] = append(idx.runwayNames[airportIdent], name)
}

// AirportID resolves an ident; ok is false for unknown airports.
func (idx *AirportIndex) AirportID(ident string) (int64, bool) {
	id, ok := idx.airportIDs[ident]
	return id, ok
}

// RunwayEndID resolves exactly.
func (idx *AirportIndex) RunwayEndID(airportIdent, runwayName string) (int64, bool) {
	key := runwayEndKey{airportIdent, fsutil.NormalizeRunway(runwayName)}
	id, ok := idx.runwayEnds[key]
	return id, ok
}

// RunwayEndIDFuzzy falls back to the ±1 numeric neighbors when the
// exact name misses, covering renumbered runways in procedure data.
func (idx *AirportIndex) RunwayEndIDFuzzy(airportIdent, runwayName string) (int64, bool) {
	key := runwayEndKey{airportIdent, fsutil.NormalizeRunway(runwayName)}

	if id, ok := idx.runwayEnds[key]; ok {
		return id, true
	}
	if id, ok := idx.fuzzyCache.Get(key); ok {
		return id, id != 0
	}

	best := fsutil.RunwayBestFit(key.runwayName, idx.runwayNames[airportIdent])
	if best == "" {
		idx.fuzzyCache.Add(key, 0)
		return 0, false
	}
	id := idx.runwayEnds[runwayEndKey{airportIdent, best}]
	idx.fuzzyCache.Add(key, id)
	return id, true
}

func (idx *AirportIndex) NumAirports() int { return len(idx.airportIDs) }
