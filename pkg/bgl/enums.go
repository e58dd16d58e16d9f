// pkg/bgl/enums.go
// Copyright(c) 2024-2026 navdbc contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package bgl

// The enumerations in this file are closed sets whose string forms are
// written into the output schema and consumed by downstream tools.
// Changing any string is a breaking change.

type ParkingType uint8

const (
	ParkingUnknown ParkingType = iota
	ParkingRampGA
	ParkingRampGASmall
	ParkingRampGAMedium
	ParkingRampGALarge
	ParkingRampCargo
	ParkingRampMilCargo
	ParkingRampMilCombat
	ParkingGateSmall
	ParkingGateMedium
	ParkingGateHeavy
	ParkingDockGA
	ParkingFuel
	ParkingVehicles
	ParkingRampGAExtra
	ParkingGateExtra
)

var parkingTypeNames = [...]string{
	"UNKNOWN", "RAMP_GA", "RAMP_GA_SMALL", "RAMP_GA_MEDIUM", "RAMP_GA_LARGE",
	"RAMP_CARGO", "RAMP_MIL_CARGO", "RAMP_MIL_COMBAT", "GATE_SMALL",
	"GATE_MEDIUM", "GATE_HEAVY", "DOCK_GA", "FUEL", "VEHICLES",
	"RAMP_GA_EXTRA", "GATE_EXTRA",
}

func (t ParkingType) String() string {
	if int(t) < len(parkingTypeNames) {
		return parkingTypeNames[t]
	}
	return "INVALID"
}

type ParkingName uint8

const (
	ParkingNameNone ParkingName = iota
	ParkingNameParking
	ParkingNameNParking
	ParkingNameNEParking
	ParkingNameEParking
	ParkingNameSEParking
	ParkingNameSParking
	ParkingNameSWParking
	ParkingNameWParking
	ParkingNameNWParking
	ParkingNameGate
	ParkingNameDock
	ParkingNameGateA // GATE_A..GATE_Z are contiguous
)

func (n ParkingName) String() string {
	names := [...]string{
		"NONE", "PARKING", "N_PARKING", "NE_PARKING", "E_PARKING",
		"SE_PARKING", "S_PARKING", "SW_PARKING", "W_PARKING", "NW_PARKING",
		"GATE", "DOCK",
	}
	if int(n) < len(names) {
		return names[n]
	}
	if n >= ParkingNameGateA && n <= ParkingNameGateA+25 {
		return "GATE_" + string(rune('A'+n-ParkingNameGateA))
	}
	return "INVALID"
}

// ParkingSuffix is the MSFS gate suffix letter; zero means none.
type ParkingSuffix uint8

func (s ParkingSuffix) String() string {
	if s == 0 {
		return "NONE"
	}
	if s <= 26 {
		return string(rune('A' + s - 1))
	}
	return "INVALID"
}

type PushBack uint8

const (
	PushBackNone PushBack = iota
	PushBackLeft
	PushBackRight
	PushBackBoth
)

func (p PushBack) String() string {
	return [...]string{"NONE", "LEFT", "RIGHT", "BOTH"}[p&3]
}

// Surface is shared by runways, helipads, taxi paths and aprons.
type Surface uint8

const (
	SurfaceConcrete Surface = 0
	SurfaceGrass    Surface = 1
	SurfaceWater    Surface = 2
	SurfaceAsphalt  Surface = 4
	SurfaceClay     Surface = 7
	SurfaceSnow     Surface = 8
	SurfaceIce      Surface = 9
	SurfaceDirt     Surface = 12
	SurfaceCoral    Surface = 13
	SurfaceGravel   Surface = 14
	SurfaceOilTreated Surface = 15
	SurfaceSteelMats  Surface = 16
	SurfaceBituminous Surface = 17
	SurfaceBrick      Surface = 18
	SurfaceMacadam    Surface = 19
	SurfacePlanks     Surface = 20
	SurfaceSand       Surface = 21
	SurfaceShale      Surface = 22
	SurfaceTarmac     Surface = 23
	SurfaceUnknown    Surface = 254
)

var surfaceNames = map[Surface]string{
	SurfaceConcrete: "C", SurfaceGrass: "G", SurfaceWater: "W",
	SurfaceAsphalt: "A", SurfaceClay: "CL", SurfaceSnow: "SN",
	SurfaceIce: "I", SurfaceDirt: "D", SurfaceCoral: "CR",
	SurfaceGravel: "GR", SurfaceOilTreated: "OT", SurfaceSteelMats: "SM",
	SurfaceBituminous: "B", SurfaceBrick: "BR", SurfaceMacadam: "M",
	SurfacePlanks: "PL", SurfaceSand: "S", SurfaceShale: "SH",
	SurfaceTarmac: "T",
}

func (s Surface) String() string {
	if n, ok := surfaceNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

type VASIType uint8

const (
	VASINone VASIType = iota
	VASIVasi21
	VASIVasi31
	VASIVasi22
	VASIVasi32
	VASIVasi23
	VASIVasi33
	VASIPapi2
	VASIPapi4
	VASITricolor
	VASIPvasi
	VASITvasi
	VASIBall
	VASIApap
)

var vasiNames = [...]string{
	"NONE", "VASI21", "VASI31", "VASI22", "VASI32", "VASI23", "VASI33",
	"PAPI2", "PAPI4", "TRICOLOR", "PVASI", "TVASI", "BALL", "APAP",
}

func (v VASIType) String() string {
	if int(v) < len(vasiNames) {
		return vasiNames[v]
	}
	return "UNKNOWN"
}

type ApproachType uint8

const (
	ApproachGPS ApproachType = iota + 1
	ApproachVOR
	ApproachNDB
	ApproachILS
	ApproachLocalizer
	ApproachSDF
	ApproachLDA
	ApproachVORDME
	ApproachNDBDME
	ApproachRNAV
	ApproachLocBackcourse
)

var approachTypeNames = [...]string{
	"", "GPS", "VOR", "NDB", "ILS", "LOC", "SDF", "LDA", "VORDME",
	"NDBDME", "RNAV", "LOCB",
}

func (t ApproachType) String() string {
	if int(t) < len(approachTypeNames) && t > 0 {
		return approachTypeNames[t]
	}
	return "UNKNOWN"
}

// LegType is the ARINC 424 path/termination code for a procedure leg.
type LegType uint8

const (
	LegAF LegType = iota + 1 // arc to fix
	LegCA                    // course to altitude
	LegCD                    // course to DME distance
	LegCF                    // course to fix
	LegCI                    // course to intercept
	LegCR                    // course to radial
	LegDF                    // direct to fix
	LegFA                    // fix to altitude
	LegFC                    // track from fix for distance
	LegFD                    // track from fix to DME distance
	LegFM                    // from fix to manual termination
	LegHA                    // hold to altitude
	LegHF                    // hold to fix
	LegHM                    // hold to manual termination
	LegIF                    // initial fix
	LegPI                    // procedure turn
	LegRF                    // constant radius arc
	LegTF                    // track to fix
	LegVA                    // heading to altitude
	LegVD                    // heading to DME distance
	LegVI                    // heading to intercept
	LegVM                    // heading to manual termination
	LegVR                    // heading to radial
)

var legTypeNames = [...]string{
	"", "AF", "CA", "CD", "CF", "CI", "CR", "DF", "FA", "FC", "FD", "FM",
	"HA", "HF", "HM", "IF", "PI", "RF", "TF", "VA", "VD", "VI", "VM", "VR",
}

func (t LegType) String() string {
	if int(t) < len(legTypeNames) && t > 0 {
		return legTypeNames[t]
	}
	return "UNKNOWN"
}

type TurnDirection uint8

const (
	TurnNone TurnDirection = iota
	TurnLeft
	TurnRight
	TurnEither
)

func (t TurnDirection) String() string {
	return [...]string{"NONE", "L", "R", "B"}[t&3]
}

type AltDescriptor uint8

const (
	AltDescriptorNone AltDescriptor = iota
	AltDescriptorAt
	AltDescriptorAtOrAbove
	AltDescriptorAtOrBelow
	AltDescriptorBetween
)

func (a AltDescriptor) String() string {
	names := [...]string{"", "A", "+", "-", "B"}
	if int(a) < len(names) {
		return names[a]
	}
	return ""
}

// BoundaryClass is the airspace classification of a boundary record.
type BoundaryClass uint8

const (
	BoundaryNone BoundaryClass = iota
	BoundaryCenter
	BoundaryClassA
	BoundaryClassB
	BoundaryClassC
	BoundaryClassD
	BoundaryClassE
	BoundaryClassF
	BoundaryClassG
	BoundaryTower
	BoundaryClearance
	BoundaryGround
	BoundaryDeparture
	BoundaryApproach
	BoundaryMOA
	BoundaryRestricted
	BoundaryProhibited
	BoundaryWarning
	BoundaryAlert
	BoundaryDanger
	BoundaryNationalPark
	BoundaryModeC
	BoundaryRadar
	BoundaryTraining
)

var boundaryClassNames = [...]string{
	"NONE", "C", "CA", "CB", "CC", "CD", "CE", "CF", "CG", "T", "CL",
	"GND", "DEP", "APP", "MOA", "R", "P", "W", "AL", "DA", "NP", "MC",
	"RD", "TR",
}

func (c BoundaryClass) String() string {
	if int(c) < len(boundaryClassNames) {
		return boundaryClassNames[c]
	}
	return "UNKNOWN"
}

// BoundaryAltType describes how a boundary altitude limit is given.
type BoundaryAltType uint8

const (
	AltUnknown BoundaryAltType = iota
	AltMSL
	AltAGL
	AltUnlimited
)

func (a BoundaryAltType) String() string {
	return [...]string{"UNKNOWN", "MSL", "AGL", "UL"}[a&3]
}

type ComType uint8

const (
	ComNone ComType = iota
	ComATIS
	ComMulticom
	ComUnicom
	ComCTAF
	ComGround
	ComTower
	ComClearance
	ComApproach
	ComDeparture
	ComCenter
	ComFSS
	ComAWOS
	ComASOS
	ComClearancePre
	ComRemoteDeliv
)

var comTypeNames = [...]string{
	"NONE", "ATIS", "MC", "UC", "CTAF", "G", "T", "C", "A", "D", "CTR",
	"FSS", "AWOS", "ASOS", "CPT", "GCO",
}

func (t ComType) String() string {
	if int(t) < len(comTypeNames) {
		return comTypeNames[t]
	}
	return "UNKNOWN"
}

type StartType uint8

const (
	StartRunway StartType = 1
	StartWater  StartType = 2
	StartHelipad StartType = 3
)

func (t StartType) String() string {
	switch t {
	case StartRunway:
		return "R"
	case StartWater:
		return "W"
	case StartHelipad:
		return "H"
	}
	return "UNKNOWN"
}

type HelipadType uint8

const (
	HelipadNone HelipadType = iota
	HelipadHard
	HelipadCircle
	HelipadSquare
	HelipadMedical
)

func (t HelipadType) String() string {
	names := [...]string{"NONE", "H", "CIRCLE", "SQUARE", "MEDICAL"}
	if int(t) < len(names) {
		return names[t]
	}
	return "UNKNOWN"
}
