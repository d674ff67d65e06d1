package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"intradayProcessor/internal/domain"
)

// openingBars returns six 5-minute bars from 09:30 trading inside 99-103.
func openingBars(t *testing.T) []domain.Bar {
	return []domain.Bar{
		ohlcv(t, "09:30", 100, 101, 99, 100.5, 100),
		ohlcv(t, "09:35", 100.5, 102, 100, 101.5, 100),
		ohlcv(t, "09:40", 101.5, 103, 101, 102, 100),
		ohlcv(t, "09:45", 102, 102.5, 100.5, 101, 100),
		ohlcv(t, "09:50", 101, 101.5, 99.5, 100, 100),
		ohlcv(t, "09:55", 100, 101, 99.5, 100.5, 100),
	}
}

func TestAnalyzeOpeningRange(t *testing.T) {
	window := 30 * time.Minute

	tests := []struct {
		name          string
		rest          []domain.Bar
		wantOutcome   domain.OpeningRangeOutcome
		wantNarrative string
		wantHighBreak string
		wantLowBreak  string
	}{
		{
			name:          "ended within opening range",
			wantOutcome:   domain.OutcomeEndedWithinRange,
			wantNarrative: "Session ended within opening range.",
		},
		{
			name: "balance day",
			rest: []domain.Bar{
				ohlcv(t, "10:00", 100.5, 103, 99, 102, 100),
				ohlcv(t, "10:05", 102, 102.5, 101, 101.5, 100),
			},
			wantOutcome:   domain.OutcomeBalance,
			wantNarrative: "Price remained entirely inside the Opening Range (Balance Day).",
		},
		{
			name: "breakout above ORH",
			rest: []domain.Bar{
				ohlcv(t, "10:00", 100.5, 102, 100, 101.5, 100),
				ohlcv(t, "10:05", 101.5, 103.5, 101, 103.25, 100),
				ohlcv(t, "10:10", 103.25, 104, 102, 103.5, 100),
			},
			wantOutcome:   domain.OutcomeBreakoutHigh,
			wantNarrative: "Price held the ORL as support and broke out above ORH at 10:05, trending higher.",
			wantHighBreak: "10:05",
		},
		{
			name: "breakdown below ORL",
			rest: []domain.Bar{
				ohlcv(t, "10:00", 100.5, 101, 98.5, 99, 100),
			},
			wantOutcome:   domain.OutcomeBreakdownLow,
			wantNarrative: "Price held the ORH as resistance and broke down below ORL at 10:00, trending lower.",
			wantLowBreak:  "10:00",
		},
		{
			name: "low then high",
			rest: []domain.Bar{
				ohlcv(t, "10:00", 100.5, 101, 98.5, 99, 100),
				ohlcv(t, "10:05", 99, 101, 98, 100.5, 100),
				ohlcv(t, "10:10", 100.5, 104, 100, 103.5, 100),
			},
			wantOutcome:   domain.OutcomeLowThenHigh,
			wantNarrative: "Price broke below ORL at 10:00, then reversed and broke above ORH at 10:10.",
			wantHighBreak: "10:10",
			wantLowBreak:  "10:00",
		},
		{
			name: "high then low",
			rest: []domain.Bar{
				ohlcv(t, "10:00", 102, 104, 102, 103.5, 100),
				ohlcv(t, "10:05", 103.5, 103.5, 98, 98.5, 100),
			},
			wantOutcome:   domain.OutcomeHighThenLow,
			wantNarrative: "Price broke above ORH at 10:00, then reversed and broke below ORL at 10:05.",
			wantHighBreak: "10:00",
			wantLowBreak:  "10:05",
		},
		{
			name: "both sides on one bar",
			rest: []domain.Bar{
				ohlcv(t, "10:00", 101, 104, 98, 100, 100),
			},
			wantOutcome:   domain.OutcomeBothTimingIncomplete,
			wantNarrative: "Price broke both ORH and ORL, but timing data is incomplete.",
			wantHighBreak: "10:00",
			wantLowBreak:  "10:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := append(openingBars(t), tt.rest...)
			or := AnalyzeOpeningRange(bars, window)

			assert.Equal(t, domain.Price(103), or.High)
			assert.Equal(t, domain.Price(99), or.Low)
			assert.Equal(t, 6, or.BarCount)
			assert.False(t, or.Partial)
			assert.Equal(t, tt.wantOutcome, or.Outcome)
			assert.Equal(t, tt.wantNarrative, or.Narrative)
			if tt.wantHighBreak != "" {
				assert.Equal(t, tt.wantHighBreak, or.BreakHighTime.Format("15:04"))
			} else {
				assert.True(t, or.BreakHighTime.IsZero())
			}
			if tt.wantLowBreak != "" {
				assert.Equal(t, tt.wantLowBreak, or.BreakLowTime.Format("15:04"))
			} else {
				assert.True(t, or.BreakLowTime.IsZero())
			}
		})
	}
}

func TestAnalyzeOpeningRange_Containment(t *testing.T) {
	// The 10:00 bar starts exactly at the window end and must not widen the range.
	bars := append(openingBars(t), ohlcv(t, "10:00", 100, 200, 50, 150, 100))
	or := AnalyzeOpeningRange(bars, 30*time.Minute)

	assert.Equal(t, domain.Price(103), or.High)
	assert.Equal(t, domain.Price(99), or.Low)
	for _, b := range bars[:or.BarCount] {
		assert.True(t, b.Time.Before(bars[0].Time.Add(30*time.Minute)))
	}
}

func TestAnalyzeOpeningRange_PartialWindow(t *testing.T) {
	bars := openingBars(t)[:3]
	or := AnalyzeOpeningRange(bars, 30*time.Minute)

	assert.True(t, or.Partial)
	assert.Equal(t, 3, or.BarCount)
	assert.Equal(t, domain.OutcomeEndedWithinRange, or.Outcome)
	assert.Equal(t, domain.Price(103), or.High)
	assert.Equal(t, domain.Price(99), or.Low)
}

func TestAnalyzeOpeningRange_NoData(t *testing.T) {
	or := AnalyzeOpeningRange(nil, 30*time.Minute)

	assert.Equal(t, domain.OutcomeNoData, or.Outcome)
	assert.Equal(t, "No opening range data.", or.Narrative)
	assert.False(t, or.High.Valid)
	assert.False(t, or.Low.Valid)
}
