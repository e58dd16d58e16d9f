// pkg/geo/pos.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"fmt"
	gomath "math"
)

const (
	EarthRadiusMeter = 6371000.

	NauticalMilesToFeet = 6076.12
	FeetToNauticalMiles = 1 / NauticalMilesToFeet

	// Marker value for unknown coordinates; well outside any legal range.
	InvalidCoordinate = -1000.
)

// Pos is a point on the Earth in WGS-84 degrees. Longitude comes first
// throughout the database schema (lonx/laty), so it does here, too.
type Pos struct {
	LonX float64
	LatY float64
}

func NewPos(lonx, laty float64) Pos {
	return Pos{LonX: lonx, LatY: laty}
}

func InvalidPos() Pos {
	return Pos{LonX: InvalidCoordinate, LatY: InvalidCoordinate}
}

func (p Pos) IsValid() bool {
	return p.LonX >= -180 && p.LonX <= 180 && p.LatY >= -90 && p.LatY <= 90
}

func (p Pos) String() string {
	return fmt.Sprintf("(%f, %f)", p.LatY, p.LonX) // latitude, longitude
}

// DistanceMeter returns the great circle distance between two points
// using the haversine formulation.
func (p Pos) DistanceMeter(other Pos) float64 {
	lat1, lon1 := Radians(p.LatY), Radians(p.LonX)
	lat2, lon2 := Radians(other.LatY), Radians(other.LonX)

	dlat, dlon := lat2-lat1, lon2-lon1
	a := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(a), gomath.Sqrt(1-a))
	return EarthRadiusMeter * c
}

func (p Pos) DistanceNM(other Pos) float64 {
	return MeterToNm(p.DistanceMeter(other))
}

// CourseTo returns the initial true course in degrees from p to other.
func (p Pos) CourseTo(other Pos) float64 {
	lat1, lon1 := Radians(p.LatY), Radians(p.LonX)
	lat2, lon2 := Radians(other.LatY), Radians(other.LonX)

	dlon := lon2 - lon1
	y := gomath.Sin(dlon) * gomath.Cos(lat2)
	x := gomath.Cos(lat1)*gomath.Sin(lat2) - gomath.Sin(lat1)*gomath.Cos(lat2)*gomath.Cos(dlon)
	return NormalizeCourse(Degrees(gomath.Atan2(y, x)))
}

// Endpoint returns the point at the given distance and true course from p.
func (p Pos) Endpoint(distanceMeter, courseDeg float64) Pos {
	lat1, lon1 := Radians(p.LatY), Radians(p.LonX)
	brg := Radians(courseDeg)
	d := distanceMeter / EarthRadiusMeter

	lat2 := gomath.Asin(gomath.Sin(lat1)*gomath.Cos(d) + gomath.Cos(lat1)*gomath.Sin(d)*gomath.Cos(brg))
	lon2 := lon1 + gomath.Atan2(gomath.Sin(brg)*gomath.Sin(d)*gomath.Cos(lat1),
		gomath.Cos(d)-gomath.Sin(lat1)*gomath.Sin(lat2))

	return Pos{LonX: NormalizeLongitude(Degrees(lon2)), LatY: Degrees(lat2)}
}

///////////////////////////////////////////////////////////////////////////
// angles and courses

func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

// NormalizeCourse wraps a course in degrees into [0,360).
func NormalizeCourse(c float64) float64 {
	c = gomath.Mod(c, 360)
	if c < 0 {
		c += 360
	}
	return c
}

func OpposedCourse(c float64) float64 {
	return NormalizeCourse(c + 180)
}

func NormalizeLongitude(lon float64) float64 {
	lon = gomath.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

func Sqr(v float64) float64 { return v * v }

///////////////////////////////////////////////////////////////////////////
// unit conversions

func MeterToFeet(m float64) float64 { return m * 3.2808399 }
func FeetToMeter(ft float64) float64 { return ft * 0.3048 }
func MeterToNm(m float64) float64 { return m / 1852. }
func NmToMeter(nm float64) float64 { return nm * 1852. }
func KnotsToKmh(kts float64) float64 { return kts * 1.852 }
func KmhToKnots(kmh float64) float64 { return kmh / 1.852 }

// MachToTas converts a mach number to true airspeed in knots using the
// ICAO standard atmosphere temperature lapse up to the tropopause.
func MachToTas(altitudeFeet, mach float64) float64 {
	tempK := 288.15 - 1.98*altitudeFeet/1000
	if altitudeFeet > 36089 {
		tempK = 216.65
	}
	speedOfSoundKts := 38.967854 * gomath.Sqrt(tempK)
	return mach * speedOfSoundKts
}
