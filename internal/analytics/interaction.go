package analytics

import "intradayProcessor/internal/domain"

// maxCrossings is the number of close/VWAP crossings above which VWAP is
// considered chopped through rather than respected.
const maxCrossings = 4

// ClassifyVWAPInteraction labels how price traded around VWAP.
//
// A crossing is a bar whose close is on the opposite side of its VWAP from the
// previous close. The first bar with a defined VWAP anchors the series (its
// VWAP is its own typical price) and is left out of the support and resistance
// checks; bars whose VWAP is undefined are skipped entirely.
func ClassifyVWAPInteraction(bars []domain.Bar, vwap domain.VWAPSeries) domain.VWAPInteraction {
	anchor := -1
	for i := range bars {
		if i < len(vwap) && vwap[i].Valid {
			anchor = i
			break
		}
	}
	if anchor < 0 || anchor == len(bars)-1 {
		return domain.VWAPNotApplicable
	}

	crossings := 0
	support, resistance := true, true
	for i := anchor; i < len(bars) && i < len(vwap); i++ {
		if !vwap[i].Valid {
			continue
		}
		v := vwap[i].Float64
		if i > 0 {
			prev := bars[i-1].Close
			cur := bars[i].Close
			if (cur > v && prev < v) || (cur < v && prev > v) {
				crossings++
			}
		}
		if i == anchor {
			continue
		}
		if bars[i].Low <= v {
			support = false
		}
		if bars[i].High >= v {
			resistance = false
		}
	}

	switch {
	case crossings > maxCrossings:
		return domain.VWAPCrossedMultiple
	case support:
		return domain.VWAPSupport
	case resistance:
		return domain.VWAPResistance
	default:
		return domain.VWAPMixed
	}
}
