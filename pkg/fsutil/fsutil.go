// pkg/fsutil/fsutil.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package fsutil collects the small conversions shared by the binary and
// text front ends: runway name handling, ICAO speed/altitude strings,
// ARINC waypoint type flags, ident cleanup and airport classification.
package fsutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/fsnav/navdbc/pkg/geo"
)

var closedRe = regexp.MustCompile(`(\[X\]|\bCLSD\b|\bCLOSED\b)`)

// Non-English military designators seen in stock sceneries.
var containsMil = []string{
	"MILITÄR", "BASE AÉREA", "BASE AÉRIENNE", "BASE AEREA", "BAZA LOTNICZA",
}

var milRes = func() []*regexp.Regexp {
	words := []string{
		"AAC", "AAF", "AB", "AFB", "AFLD", "AFS", "AF", "AHP", "AIR BASE",
		"AIR FORCE", "AIRBASE", "ANGB", "ARB", "ARMY", "CFB", "LRRS", "MCAF",
		"MCALF", "MCAS", "MILITARY", "MIL", "NAF", "NALF", "NAS", "NAVAL",
		"NAVY", "NAWS", "NOLF", "NSB", "NSF", "NSWC", "NSY", "NS", "NWS",
		"PMRF", "RAF", "RNAS", "ROYAL MARINES",
	}
	res := []*regexp.Regexp{regexp.MustCompile(`(\[M\]|\[MIL\])`)}
	for _, w := range words {
		res = append(res, regexp.MustCompile(`\b`+w+`\b`))
	}
	return res
}()

// IsNameClosed reports whether the airport name marks it as closed.
func IsNameClosed(airportName string) bool {
	return closedRe.MatchString(strings.ToUpper(airportName))
}

// IsNameMilitary reports whether the airport name matches one of the
// known military designator patterns.
func IsNameMilitary(airportName string) bool {
	airportName = strings.ToUpper(airportName)
	for _, s := range containsMil {
		if strings.Contains(airportName, s) {
			return true
		}
	}
	for _, re := range milRes {
		if re.MatchString(airportName) {
			return true
		}
	}
	return false
}

// AirportRating derives the 0..5 scenery quality rating shown by
// consumers. Generated airports with neither taxiways nor parking get
// zero on MSFS since the stock data contains thousands of apron-only
// stubs.
func AirportRating(isAddon, hasTower, msfs bool, numTaxiPaths, numParkings, numAprons int) int {
	rating := b2i(numTaxiPaths > 0) + b2i(numParkings > 0) + b2i(numAprons > 0) + b2i(isAddon)

	if msfs && !isAddon && numTaxiPaths == 0 && numParkings == 0 {
		rating = 0
	}

	if rating > 0 && hasTower {
		// Add tower only if there is already a rating - otherwise we'd get
		// too many airports with a too good rating
		rating++
	}
	return rating
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

var identRe = regexp.MustCompile(`[^A-Z0-9]`)

// AdjustIdent uppercases, strips non-alphanumerics and truncates an
// ident. Empty results are replaced with a synthetic ident derived from
// the id, or "UNKWN" when no id is available.
func AdjustIdent(ident string, length int, id int) string {
	ident = identRe.ReplaceAllString(strings.ToUpper(ident), "")
	if len(ident) > length {
		ident = ident[:length]
	}
	if ident == "" {
		if id != -1 {
			ident = "N" + strings.ToUpper(strconv.FormatInt(int64(id), 36))
			if len(ident) > length {
				ident = ident[:length]
			}
		} else {
			ident = "UNKWN"
		}
	}
	return ident
}

// AdjustRegion forces a two-letter ICAO region; anything unusable
// becomes "ZZ".
func AdjustRegion(region string) string {
	region = identRe.ReplaceAllString(strings.ToUpper(region), "")
	if len(region) > 2 {
		region = region[:2]
	}
	if len(region) != 2 {
		region = "ZZ"
	}
	return region
}

var validIdentRe = regexp.MustCompile(`^[A-Z0-9]{1,5}$`)

func IsValidIdent(ident string) bool {
	return validIdentRe.MatchString(ident)
}

///////////////////////////////////////////////////////////////////////////
// ICAO speed and altitude strings

var spdAltRe = regexp.MustCompile(`^([NMK])(\d{2,4})(([FSAM])(\d{2,4}))?$`)

// ExtractSpeedAndAltitude parses ICAO route strings like "N0490F360" or
// "M084S1260" into knots and feet. Returns ok=false if either component
// is missing or malformed.
func ExtractSpeedAndAltitude(item string) (speedKnots, altFeet float64, ok bool) {
	// N0490F360, M084F330
	// Speed: K0800 (km/h), N0490 (knots), M082 (Mach 0.82)
	// Level: F340 (flight level), S1260 (tens of meters, metric FL),
	//        A100 (hundreds of feet), M0890 (tens of meters)
	m := spdAltRe.FindStringSubmatch(item)
	if m == nil {
		return 0, 0, false
	}

	speed, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, 0, false
	}
	alt, err := strconv.ParseFloat(m[5], 64)
	if err != nil {
		return 0, 0, false
	}

	switch m[4] {
	case "F": // flight level
		if alt < 1000 {
			alt *= 100
		}
	case "A": // hundreds of feet
		if alt < 1000 {
			alt *= 100
		}
	case "S", "M": // tens of meters
		alt = geo.MeterToFeet(alt * 10)
	default:
		return 0, 0, false
	}

	switch m[1] {
	case "N": // knots
	case "K": // km/h
		speed = geo.KmhToKnots(speed)
	case "M": // mach
		speed = geo.MachToTas(alt, speed/100)
	default:
		return 0, 0, false
	}

	return speed, alt, true
}

// CreateSpeedAndAltitude formats knots and feet as an ICAO route string,
// the inverse of ExtractSpeedAndAltitude for the non-metric cases.
func CreateSpeedAndAltitude(speedKnots, altFeet float64, metricSpeed, metricAlt bool) string {
	var s string
	if metricSpeed {
		s = fmt.Sprintf("K%04.0f", geo.KnotsToKmh(speedKnots))
	} else {
		s = fmt.Sprintf("N%04.0f", speedKnots)
	}

	if metricAlt {
		if altFeet < 18000 {
			s += fmt.Sprintf("M%04.0f", geo.FeetToMeter(altFeet)/10)
		} else {
			s += fmt.Sprintf("S%04.0f", geo.FeetToMeter(altFeet)/10)
		}
	} else {
		if altFeet < 18000 {
			s += fmt.Sprintf("A%03.0f", altFeet/100)
		} else {
			s += fmt.Sprintf("F%03.0f", altFeet/100)
		}
	}
	return s
}

///////////////////////////////////////////////////////////////////////////
// ARINC waypoint type flags

// WaypointFlagsFromXplane decodes the decimal string holding the 32 bit
// little-endian representation of the three byte ARINC 424.18 (5.42)
// waypoint type field. The result is the up-to-three character string;
// the default is returned for empty or unparseable input.
func WaypointFlagsFromXplane(flags, defaultValue string) string {
	v, err := strconv.ParseUint(flags, 10, 32)
	if err != nil {
		return defaultValue
	}

	var s strings.Builder
	for i := 0; i < 3; i++ {
		b := byte(v >> (8 * i))
		if b > ' ' {
			s.WriteByte(b)
		}
	}
	if s.Len() == 0 {
		return defaultValue
	}
	return s.String()
}

// WaypointFlagsToXplane is the inverse of WaypointFlagsFromXplane:
// exactly three characters packed little-endian into a decimal string.
// Underscores may stand in for spaces.
func WaypointFlagsToXplane(flags, defaultValue string) string {
	flags = strings.ReplaceAll(flags, "_", " ")
	flags = strings.ReplaceAll(flags, "\"", "")
	if len(flags) != 3 {
		return defaultValue
	}
	v := uint32(flags[0]) | uint32(flags[1])<<8 | uint32(flags[2])<<16
	return strconv.FormatUint(uint64(v), 10)
}

///////////////////////////////////////////////////////////////////////////
// frequencies and transponder codes

// RoundComFrequency converts a COM frequency to MHz. New 8.33 kHz
// spacing values arrive in Hz, legacy values in kHz.
func RoundComFrequency(frequency int) float64 {
	if frequency > 10000000 {
		return float64(frequency) / 1000000
	}
	return float64(frequency) / 1000
}

// DecodeTransponderCode converts a decimal-displayed squawk like 7700 to
// its octal encoding, or -1 if any digit is out of range.
func DecodeTransponderCode(code int) int16 {
	d1 := code / 1000
	d2 := code/100 - d1*10
	d3 := code/10 - d1*100 - d2*10
	d4 := code - d1*1000 - d2*100 - d3*10

	for _, d := range []int{d1, d2, d3, d4} {
		if d < 0 || d > 7 {
			return -1
		}
	}
	return int16(d1<<9 | d2<<6 | d3<<3 | d4)
}

///////////////////////////////////////////////////////////////////////////
// ILS geometry

const DefaultFeatherLengthNM = 9.

// CalculateIlsGeometry returns the two feather end points and the feather
// midpoint for drawing an ILS cone, given the localizer position, true
// heading and beam width.
func CalculateIlsGeometry(pos geo.Pos, headingTrue, widthDeg, featherLengthNM float64) (p1, p2, pmid geo.Pos) {
	hdg := geo.OpposedCourse(headingTrue)
	lengthMeter := geo.NmToMeter(featherLengthNM)

	if widthDeg < 0.1 {
		widthDeg = 4
	}

	p1 = pos.Endpoint(lengthMeter, hdg-widthDeg/2)
	p2 = pos.Endpoint(lengthMeter, hdg+widthDeg/2)
	featherWidth := p1.DistanceMeter(p2)
	pmid = pos.Endpoint(lengthMeter-featherWidth/2, hdg)
	return
}

///////////////////////////////////////////////////////////////////////////
// ILS runway recovery

var ilsNameStrip = []string{
	"IGS", "ILSZ", "ILSX", "ILSY", "ILS", "CAT", "III", "II", "I",
	"LOC", "RUNWAY", "RWY", "RW", " ",
}

// RunwayFromIlsName extracts a runway name from a textual ILS facility
// name like "ILS CAT III RWY 05L" when the record itself carries none.
// Returns "" if nothing usable remains after stripping.
func RunwayFromIlsName(name string) string {
	s := strings.ToUpper(strings.Join(strings.Fields(name), " "))
	for _, strip := range ilsNameStrip {
		s = strings.ReplaceAll(s, strip, "")
	}
	if !RunwayNameValid(s) {
		return ""
	}
	return s
}
