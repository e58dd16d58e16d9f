// pkg/bgl/sectiontype.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

import "fmt"

// SectionType is the 32 bit code in the section directory. The terrain
// and photo types are recognized so they can be skipped without a
// warning but are otherwise ignored.
type SectionType uint32

const (
	SectionNone              SectionType = 0x00
	SectionCopyright         SectionType = 0x01
	SectionGUID              SectionType = 0x02
	SectionAirport           SectionType = 0x03
	SectionILSVOR            SectionType = 0x13
	SectionNDB               SectionType = 0x17
	SectionMarker            SectionType = 0x18
	SectionBoundary          SectionType = 0x20
	SectionWaypoint          SectionType = 0x22
	SectionGeopol            SectionType = 0x23
	SectionSceneryObject     SectionType = 0x25
	SectionNameList          SectionType = 0x27
	SectionVORILSICAOIndex   SectionType = 0x28
	SectionNDBICAOIndex      SectionType = 0x29
	SectionWaypointICAOIndex SectionType = 0x2a
	SectionModelData         SectionType = 0x2b
	SectionAirportSummary    SectionType = 0x2c

	// 0x2d is the P3D TACAN section but is reused by MSFS 2024 for
	// navigation delete records. Dispatch must be gated by variant.
	SectionTacanOrDeleteNav SectionType = 0x2d

	SectionExclusion SectionType = 0x2e
	SectionTimezone  SectionType = 0x2f

	SectionAirportAlt       SectionType = 0x67
	SectionMSFSDeleteAirNav SectionType = 0x69

	SectionTerrainVectorDB      SectionType = 0x65
	SectionTerrainElevation     SectionType = 0x66
	SectionTerrainLandClass     SectionType = 0x68
	SectionTerrainWaterClass    SectionType = 0x6a
	SectionTerrainRegion        SectionType = 0x6b
	SectionPopulationDensity    SectionType = 0x6c
	SectionAutogenAnnotation    SectionType = 0x6d
	SectionTerrainIndex         SectionType = 0x6e
	SectionTerrainTextureLookup SectionType = 0x6f

	SectionTerrainSeasonJan SectionType = 0x78
	SectionTerrainSeasonDec SectionType = 0x83
	SectionTerrainPhotoJan  SectionType = 0x8c
	SectionTerrainPhotoNight SectionType = 0x99

	SectionFakeTypes  SectionType = 0x2710
	SectionICAORunway SectionType = 0x2711
)

var sectionNames = map[SectionType]string{
	SectionNone:              "NONE",
	SectionCopyright:         "COPYRIGHT",
	SectionGUID:              "GUID",
	SectionAirport:           "AIRPORT",
	SectionILSVOR:            "ILS_VOR",
	SectionNDB:               "NDB",
	SectionMarker:            "MARKER",
	SectionBoundary:          "BOUNDARY",
	SectionWaypoint:          "WAYPOINT",
	SectionGeopol:            "GEOPOL",
	SectionSceneryObject:     "SCENERY_OBJECT",
	SectionNameList:          "NAME_LIST",
	SectionVORILSICAOIndex:   "VOR_ILS_ICAO_INDEX",
	SectionNDBICAOIndex:      "NDB_ICAO_INDEX",
	SectionWaypointICAOIndex: "WAYPOINT_ICAO_INDEX",
	SectionModelData:         "MODEL_DATA",
	SectionAirportSummary:    "AIRPORT_SUMMARY",
	SectionTacanOrDeleteNav:  "TACAN/MSFS24_DELETE_NAV",
	SectionExclusion:         "EXCLUSION",
	SectionTimezone:          "TIMEZONE",
	SectionAirportAlt:        "AIRPORT_ALT",
	SectionMSFSDeleteAirNav:  "MSFS_DELETE_AIRPORT_NAV",
	SectionFakeTypes:         "FAKE_TYPES",
	SectionICAORunway:        "ICAO_RUNWAY",
}

func (t SectionType) String() string {
	if s, ok := sectionNames[t]; ok {
		return s
	}
	if t.isTerrain() {
		return fmt.Sprintf("TERRAIN(%#x)", uint32(t))
	}
	return fmt.Sprintf("SectionType(%#x)", uint32(t))
}

func (t SectionType) isTerrain() bool {
	return (t >= SectionTerrainVectorDB && t <= SectionTerrainTextureLookup) ||
		(t >= SectionTerrainSeasonJan && t <= SectionTerrainPhotoNight)
}

// known reports whether the code is in the recognized set, including
// the deliberately ignored ones. Unknown codes get a warning.
func (t SectionType) known() bool {
	_, ok := sectionNames[t]
	return ok || t.isTerrain()
}

// RecordType is the 16 bit code at the start of each data record.
type RecordType uint16

const (
	RecAirport          RecordType = 0x003c
	RecAirportMSFS      RecordType = 0x0056
	RecAirportMSFS2024  RecordType = 0x005e
	RecILSVOR           RecordType = 0x0013
	RecNDB              RecordType = 0x0017
	RecMarker           RecordType = 0x0018
	RecBoundary         RecordType = 0x0020
	RecBoundaryMSFS2024 RecordType = 0x0024
	RecWaypoint         RecordType = 0x0022
	RecGeopol           RecordType = 0x0023
	RecNameList         RecordType = 0x0027
	RecTacan            RecordType = 0x002d
)

// Airport subrecord codes. A few codes changed meaning across
// generations; the airport reader gates those by variant.
type subrecordType uint16

const (
	subRunway        subrecordType = 0x0004
	subCom           subrecordType = 0x0012
	subStart         subrecordType = 0x0011
	subName          subrecordType = 0x0019
	subTaxiPoint     subrecordType = 0x001a
	subTaxiPath      subrecordType = 0x001d
	subTaxiName      subrecordType = 0x001e
	subWaypoint      subrecordType = 0x0022
	subApproach      subrecordType = 0x0024
	subHelipad       subrecordType = 0x0026
	subApron1        subrecordType = 0x0030
	subApron2        subrecordType = 0x0031
	subApronEdge     subrecordType = 0x0032
	subDeleteAirport subrecordType = 0x0033
	subApron3        subrecordType = 0x0037
	subFenceBlast    subrecordType = 0x0038
	subFenceBound    subrecordType = 0x0039
	subJetway        subrecordType = 0x003a
	subParking       subrecordType = 0x003d
	subTowerScenery  subrecordType = 0x0066
	subParkingMSFS   subrecordType = 0x00e7
	subTaxiPathMSFS  subrecordType = 0x00d4
	subHelipadMSFS   subrecordType = 0x00d7
)

// Subrecord codes for runway children.
const (
	subOffsetThresholdPrimary   subrecordType = 0x0005
	subOffsetThresholdSecondary subrecordType = 0x0006
	subBlastPadPrimary          subrecordType = 0x0007
	subBlastPadSecondary        subrecordType = 0x0008
	subOverrunPrimary           subrecordType = 0x0009
	subOverrunSecondary         subrecordType = 0x000a
	subApproachLightsPrimary    subrecordType = 0x000b
	subApproachLightsSecondary  subrecordType = 0x000c
	subVASIPrimaryLeft          subrecordType = 0x000d
	subVASIPrimaryRight         subrecordType = 0x000e
	subVASISecondaryLeft        subrecordType = 0x000f
	subVASISecondaryRight       subrecordType = 0x0010
)

// Subrecord codes for approach children.
const (
	subLegs           subrecordType = 0x002d
	subMissedLegs     subrecordType = 0x002e
	subTransition     subrecordType = 0x002c
	subTransitionLegs subrecordType = 0x002f
)

// Subrecord codes for ILS children.
const (
	subLocalizer  subrecordType = 0x0014
	subGlideslope subrecordType = 0x0015
	subDME        subrecordType = 0x0016
	subIlsVorName subrecordType = 0x001b
)
