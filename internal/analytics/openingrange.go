package analytics

import (
	"fmt"
	"time"

	"intradayProcessor/internal/domain"
)

const (
	narrativeNoData         = "No opening range data."
	narrativeEndedWithin    = "Session ended within opening range."
	narrativeBalance        = "Price remained entirely inside the Opening Range (Balance Day)."
	narrativeTimingUnknown  = "Price broke both ORH and ORL, but timing data is incomplete."
	narrativeTimeLayout     = "15:04"
	narrativeBreakoutFmt    = "Price held the ORL as support and broke out above ORH at %s, trending higher."
	narrativeBreakdownFmt   = "Price held the ORH as resistance and broke down below ORL at %s, trending lower."
	narrativeLowThenHighFmt = "Price broke below ORL at %s, then reversed and broke above ORH at %s."
	narrativeHighThenLowFmt = "Price broke above ORH at %s, then reversed and broke below ORL at %s."
)

// AnalyzeOpeningRange computes the high and low of the bars that start within
// window of the first bar and classifies how the rest of the session traded
// against them.
//
// Only bars with Time < first+window form the range; bars at or after that
// instant are the rest of the day. When both sides break on the same bar the
// order cannot be resolved and the outcome is BothTimingIncomplete.
func AnalyzeOpeningRange(bars []domain.Bar, window time.Duration) domain.OpeningRange {
	result := domain.OpeningRange{Window: window, Outcome: domain.OutcomeNoData, Narrative: narrativeNoData}
	if len(bars) == 0 || window <= 0 {
		return result
	}

	end := bars[0].Time.Add(window)
	split := len(bars)
	for i, bar := range bars {
		if !bar.Time.Before(end) {
			split = i
			break
		}
	}
	inRange, rest := bars[:split], bars[split:]

	orh, orl := inRange[0].High, inRange[0].Low
	for _, bar := range inRange[1:] {
		if bar.High > orh {
			orh = bar.High
		}
		if bar.Low < orl {
			orl = bar.Low
		}
	}
	result.High = domain.Price(orh)
	result.Low = domain.Price(orl)
	result.BarCount = len(inRange)
	result.Partial = isPartialWindow(bars, len(inRange), window)

	if len(rest) == 0 {
		result.Outcome = domain.OutcomeEndedWithinRange
		result.Narrative = narrativeEndedWithin
		return result
	}

	var brokeHigh, brokeLow bool
	for _, bar := range rest {
		if !brokeHigh && bar.High > orh {
			brokeHigh = true
			result.BreakHighTime = bar.Time
		}
		if !brokeLow && bar.Low < orl {
			brokeLow = true
			result.BreakLowTime = bar.Time
		}
	}

	high := result.BreakHighTime.Format(narrativeTimeLayout)
	low := result.BreakLowTime.Format(narrativeTimeLayout)
	switch {
	case !brokeHigh && !brokeLow:
		result.Outcome = domain.OutcomeBalance
		result.Narrative = narrativeBalance
	case brokeHigh && !brokeLow:
		result.Outcome = domain.OutcomeBreakoutHigh
		result.Narrative = fmt.Sprintf(narrativeBreakoutFmt, high)
	case brokeLow && !brokeHigh:
		result.Outcome = domain.OutcomeBreakdownLow
		result.Narrative = fmt.Sprintf(narrativeBreakdownFmt, low)
	case result.BreakLowTime.Before(result.BreakHighTime):
		result.Outcome = domain.OutcomeLowThenHigh
		result.Narrative = fmt.Sprintf(narrativeLowThenHighFmt, low, high)
	case result.BreakHighTime.Before(result.BreakLowTime):
		result.Outcome = domain.OutcomeHighThenLow
		result.Narrative = fmt.Sprintf(narrativeHighThenLowFmt, high, low)
	default:
		result.Outcome = domain.OutcomeBothTimingIncomplete
		result.Narrative = narrativeTimingUnknown
	}
	return result
}

// isPartialWindow reports whether the window holds fewer bars than the
// session's bar spacing implies. The spacing is the smallest positive gap
// between consecutive bars; a single-bar session is always partial.
func isPartialWindow(bars []domain.Bar, windowBars int, window time.Duration) bool {
	interval := barInterval(bars)
	if interval <= 0 {
		return true
	}
	expected := int(window / interval)
	if window%interval != 0 {
		expected++
	}
	return windowBars < expected
}

func barInterval(bars []domain.Bar) time.Duration {
	var interval time.Duration
	for i := 1; i < len(bars); i++ {
		gap := bars[i].Time.Sub(bars[i-1].Time)
		if gap > 0 && (interval == 0 || gap < interval) {
			interval = gap
		}
	}
	return interval
}
