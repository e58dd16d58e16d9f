// pkg/fsutil/runway.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package fsutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fsnav/navdbc/pkg/util"
)

var runwayNameRe = regexp.MustCompile(`^([0-9]{1,2})([LRCWAB]?)(T?)$`)

// RunwayParts holds the decomposed pieces of a runway name like "RW01LT".
type RunwayParts struct {
	Number      int
	Designator  string
	TrueHeading bool
}

// SplitRunwayName decomposes names like "1", "01", "1L", "RW01L" or
// "RW19RT". A leading "RW" prefix is tolerated and dropped.
func SplitRunwayName(name string) (RunwayParts, bool) {
	name = strings.TrimPrefix(strings.ToUpper(name), "RW")
	m := runwayNameRe.FindStringSubmatch(name)
	if m == nil {
		return RunwayParts{}, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil || num < 1 || num > 36 {
		return RunwayParts{}, false
	}
	return RunwayParts{Number: num, Designator: m[2], TrueHeading: m[3] == "T"}, true
}

func (p RunwayParts) String() string {
	s := fmt.Sprintf("%02d%s", p.Number, p.Designator)
	if p.TrueHeading {
		s += "T"
	}
	return s
}

// NormalizeRunway returns the canonical two digit form with optional
// designator and optional true heading suffix: "RW1" -> "01",
// "1L" -> "01L", "RW01LT" -> "01LT". Unparseable names come back
// uppercased but otherwise untouched.
func NormalizeRunway(name string) string {
	p, ok := SplitRunwayName(name)
	if !ok {
		return strings.ToUpper(name)
	}
	return p.String()
}

func NormalizeRunways(names []string) []string {
	return util.MapSlice(names, NormalizeRunway)
}

// RunwayNameValid reports whether the name parses as a runway name.
func RunwayNameValid(name string) bool {
	_, ok := SplitRunwayName(name)
	return ok
}

// RunwayVariants returns the given name first, followed by its numeric
// neighbors one above and one below, wrapping 36 -> 1 and 1 -> 36. The
// "RW" prefix and "T" suffix of the input are preserved on the variants.
func RunwayVariants(name string) []string {
	prefix := ""
	if strings.HasPrefix(name, "RW") {
		prefix = "RW"
		name = name[2:]
	}
	suffix := ""
	if strings.HasSuffix(name, "T") {
		suffix = "T"
		name = name[:len(name)-1]
	}

	variants := []string{prefix + name + suffix}

	p, ok := SplitRunwayName(name)
	if !ok {
		return variants
	}

	join := func(num int) string {
		return prefix + fmt.Sprintf("%02d%s", num, p.Designator) + suffix
	}

	up := p.Number + 1
	if up > 36 {
		up = 1
	}
	down := p.Number - 1
	if down < 1 {
		down = 36
	}
	return append(variants, join(up), join(down))
}

// RunwayEqual compares two runway names; with fuzzy set, numbers off by
// one (magnetic shift over the years) still compare equal as long as the
// designator matches.
func RunwayEqual(name1, name2 string, fuzzy bool) bool {
	if !fuzzy {
		return NormalizeRunway(name1) == NormalizeRunway(name2)
	}

	p1, ok1 := SplitRunwayName(name1)
	p2, ok2 := SplitRunwayName(name2)
	if !ok1 || !ok2 {
		return false
	}
	up := p1.Number + 1
	if up > 36 {
		up = 1
	}
	down := p1.Number - 1
	if down < 1 {
		down = 36
	}
	return (p2.Number == p1.Number || p2.Number == up || p2.Number == down) &&
		p1.Designator == p2.Designator
}

// RunwayBestFit looks up the runway from the candidate list that matches
// the given name, including the off-by-one variants. Returns the matching
// candidate name, or "" if nothing fits.
func RunwayBestFit(runwayName string, airportRunwayNames []string) string {
	normalized := NormalizeRunways(airportRunwayNames)
	for _, variant := range RunwayVariants(NormalizeRunway(runwayName)) {
		for i, rw := range normalized {
			if rw == variant {
				return airportRunwayNames[i]
			}
		}
	}
	return ""
}

func RunwayDesignatorLong(designator string) string {
	switch {
	case strings.HasPrefix(designator, "L"):
		return "LEFT"
	case strings.HasPrefix(designator, "R"):
		return "RIGHT"
	case strings.HasPrefix(designator, "C"):
		return "CENTER"
	case strings.HasPrefix(designator, "W"):
		return "WATER"
	}
	return designator
}

// SidStarAllRunways reports whether the ARINC name of a SID or STAR
// applies to all runways of the airport.
func SidStarAllRunways(arincName string) bool {
	return arincName == "ALL" || arincName == ""
}

var parallelRunwaysRe = regexp.MustCompile(`^RW[0-9]{2}B$`)

// SidStarParallelRunways reports whether the ARINC name designates a set
// of parallel runways ("RW12B" covers 12L, 12C and 12R).
func SidStarParallelRunways(arincName string) bool {
	if SidStarAllRunways(arincName) {
		return false
	}
	if !strings.HasPrefix(arincName, "RW") {
		arincName = "RW" + arincName
	}
	return parallelRunwaysRe.MatchString(arincName)
}

// RunwayFromArincName extracts the runway from an ARINC 424 approach
// ident like I08R, D26 or R26-Y. Circling approaches without a runway
// return "".
func RunwayFromArincName(arincName string) string {
	if len(arincName) < 3 {
		return ""
	}
	name := arincName[1:]
	if i := strings.IndexByte(name, '-'); i >= 0 {
		name = name[:i]
	}
	name = NormalizeRunway(name)
	if !RunwayNameValid(name) {
		return ""
	}
	return name
}
