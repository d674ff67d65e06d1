package domain

// VWAPInteraction describes how price behaved around the session VWAP.
type VWAPInteraction string

const (
	VWAPNotApplicable   VWAPInteraction = "N/A"
	VWAPSupport         VWAPInteraction = "Support"
	VWAPResistance      VWAPInteraction = "Resistance"
	VWAPMixed           VWAPInteraction = "Mixed (acted as both support and resistance)"
	VWAPCrossedMultiple VWAPInteraction = "Crossed multiple times"
)

// OpeningRangeOutcome classifies the session's behavior relative to its opening range.
type OpeningRangeOutcome string

const (
	OutcomeNoData               OpeningRangeOutcome = "NO_DATA"
	OutcomeEndedWithinRange     OpeningRangeOutcome = "ENDED_WITHIN_RANGE"
	OutcomeBalance              OpeningRangeOutcome = "BALANCE"
	OutcomeBreakoutHigh         OpeningRangeOutcome = "BREAKOUT_HIGH"
	OutcomeBreakdownLow         OpeningRangeOutcome = "BREAKDOWN_LOW"
	OutcomeLowThenHigh          OpeningRangeOutcome = "LOW_THEN_HIGH"   // Broke ORL first, then reversed through ORH
	OutcomeHighThenLow          OpeningRangeOutcome = "HIGH_THEN_LOW"   // Broke ORH first, then reversed through ORL
	OutcomeBothTimingIncomplete OpeningRangeOutcome = "BOTH_INCOMPLETE" // Both sides broke but a break time is unknown
)

// Key volume event labels.
const (
	LabelSetHigh = "Set High-of-Day"
	LabelSetLow  = "Set Low-of-Day"
	LabelUpBar   = "Strong Up-Bar"
	LabelDownBar = "Strong Down-Bar"
	LabelNeutral = "Neutral Bar"
)

// CloseVsVWAP values.
const (
	CloseAboveVWAP = "Above"
	CloseBelowVWAP = "Below"
	NotAvailable   = "N/A"
)

// RangePosition describes where the session closed within its high-low range.
type RangePosition string

const (
	RangeNotAvailable  RangePosition = "N/A"
	RangeConsolidating RangePosition = "Consolidating"
	RangeNearHigh      RangePosition = "Trending higher near HOD"
	RangeNearLow       RangePosition = "Trending lower near LOD"
)
