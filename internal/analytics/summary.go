package analytics

import (
	"fmt"

	"intradayProcessor/internal/domain"
)

const (
	// minRangeWidth is the smallest high-low range a range position is derived from.
	minRangeWidth = 0.001
	nearHighShare = 0.7
	nearLowShare  = 0.3
)

// Analyze builds the structural summary of one validated session.
//
// An empty session is not an error: it yields a summary with Empty set and
// every component in its no-data state. Sessions that are out of time order or
// carry negative volume are rejected.
func Analyze(session domain.Session, params Params) (domain.SessionSummary, error) {
	if err := params.Validate(); err != nil {
		return domain.SessionSummary{}, fmt.Errorf("analyzing %s: %w", session.Symbol, err)
	}
	if err := CheckSession(session); err != nil {
		return domain.SessionSummary{}, fmt.Errorf("analyzing %s: %w", session.Symbol, err)
	}
	detector, err := NewKeyEventDetector(params)
	if err != nil {
		return domain.SessionSummary{}, fmt.Errorf("analyzing %s: %w", session.Symbol, err)
	}

	bars := session.Bars
	summary := domain.SessionSummary{
		Symbol:         session.Symbol,
		Date:           session.DateString(),
		Interval:       session.Interval,
		BarCount:       len(bars),
		Empty:          session.IsEmpty(),
		KeyEventPolicy: detector.Name(),
	}

	vwap := CalculateVWAP(bars)
	summary.Extremes = sessionExtremes(bars)
	summary.VWAP = vwap.Last()
	summary.CloseVsVWAP = CloseVsVWAP(summary.Extremes.Close, summary.VWAP)
	summary.VWAPInteraction = ClassifyVWAPInteraction(bars, vwap)
	summary.Profile = BuildVolumeProfile(bars, params.ProfileBins)
	summary.OpeningRange = AnalyzeOpeningRange(bars, params.OpeningRangeWindow())
	summary.KeyEvents, summary.KeyEventsPartial = detector.Detect(bars)
	summary.RangePosition = rangePosition(summary.Extremes)

	return summary, nil
}

// sessionExtremes returns open, close and the first bars to print the high
// and the low of the session.
func sessionExtremes(bars []domain.Bar) domain.SessionExtremes {
	if len(bars) == 0 {
		return domain.SessionExtremes{}
	}
	hi, lo := 0, 0
	for i, bar := range bars {
		if bar.High > bars[hi].High {
			hi = i
		}
		if bar.Low < bars[lo].Low {
			lo = i
		}
	}
	return domain.SessionExtremes{
		Open:     domain.Price(bars[0].Open),
		Close:    domain.Price(bars[len(bars)-1].Close),
		High:     domain.Price(bars[hi].High),
		HighTime: bars[hi].Time,
		Low:      domain.Price(bars[lo].Low),
		LowTime:  bars[lo].Time,
	}
}

func rangePosition(ext domain.SessionExtremes) domain.RangePosition {
	if !ext.High.Valid || !ext.Low.Valid || !ext.Close.Valid {
		return domain.RangeNotAvailable
	}
	width := ext.High.Float64 - ext.Low.Float64
	if width < minRangeWidth {
		return domain.RangeNotAvailable
	}
	share := (ext.Close.Float64 - ext.Low.Float64) / width
	switch {
	case share > nearHighShare:
		return domain.RangeNearHigh
	case share < nearLowShare:
		return domain.RangeNearLow
	default:
		return domain.RangeConsolidating
	}
}
