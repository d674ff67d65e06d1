package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"intradayProcessor/internal/domain"
)

func TestRenderText(t *testing.T) {
	hod := time.Date(2024, 3, 15, 9, 40, 0, 0, time.UTC)
	s := domain.SessionSummary{
		Symbol: "SPY",
		Date:   "2024-03-15",
		Extremes: domain.SessionExtremes{
			Open:     domain.Price(100),
			Close:    domain.Price(101.2),
			High:     domain.Price(103),
			HighTime: hod,
			Low:      domain.Price(99.456),
			LowTime:  hod.Add(-10 * time.Minute),
		},
		VWAP:            domain.Price(101.1234),
		CloseVsVWAP:     domain.CloseAboveVWAP,
		VWAPInteraction: domain.VWAPMixed,
		Profile: domain.VolumeProfile{
			POC: domain.Price(101),
			VAH: domain.Price(101.5),
			VAL: domain.Price(100.5),
		},
		OpeningRange: domain.OpeningRange{
			High:      domain.Price(103),
			Low:       domain.Price(99),
			Window:    30 * time.Minute,
			Narrative: "Price remained entirely inside the Opening Range (Balance Day).",
		},
		KeyEvents: []domain.KeyVolumeEvent{
			{Rank: 1, Time: hod, Price: 102.5, Volume: 12345, Labels: []string{domain.LabelSetHigh, domain.LabelUpBar}},
		},
		RangePosition: domain.RangeConsolidating,
	}

	text := RenderText(s)

	for _, want := range []string{
		"Data Extraction Summary: SPY | 2024-03-15\n",
		"   - Open: $100.00\n",
		"   - Close: $101.20\n",
		"   - High of Day (HOD): $103.00 (Set at 09:40)\n",
		"   - Low of Day (LOD): $99.46 (Set at 09:30)\n",
		"   - Point of Control (POC): $101.00 (Highest volume traded)\n",
		"   - Value Area High (VAH): $101.50\n",
		"   - Value Area Low (VAL): $100.50\n",
		"   - 09:40 @ $102.50 (Vol: 12,345) - [Set High-of-Day | Strong Up-Bar]\n",
		"   - Session VWAP: $101.12\n",
		"   - Close vs. VWAP: Above\n",
		"   - Key Interactions: VWAP primarily acted as Mixed (acted as both support and resistance).\n",
		"5. Opening Range Analysis (First 30 Mins):\n",
		"   - Opening Range: $99.00 - $103.00\n",
		"   - Outcome Narrative: Price remained entirely inside the Opening Range (Balance Day).\n",
	} {
		assert.Contains(t, text, want)
	}
}

func TestRenderText_EmptySession(t *testing.T) {
	s := domain.SessionSummary{
		Symbol:          "IWM",
		Date:            "2024-03-16",
		Empty:           true,
		CloseVsVWAP:     domain.NotAvailable,
		VWAPInteraction: domain.VWAPNotApplicable,
		OpeningRange:    domain.OpeningRange{Window: 30 * time.Minute, Narrative: "No opening range data."},
		RangePosition:   domain.RangeNotAvailable,
	}

	text := RenderText(s)

	assert.Contains(t, text, "   - Open: N/A\n")
	assert.Contains(t, text, "   - High of Day (HOD): N/A (Set at N/A)\n")
	assert.Contains(t, text, "   - Point of Control (POC): N/A (Highest volume traded)\n")
	assert.Contains(t, text, "   - No significant volume events detected.\n")
	assert.Contains(t, text, "   - Session VWAP: N/A\n")
	assert.Contains(t, text, "   - Opening Range: N/A - N/A\n")
}

func TestCombineText(t *testing.T) {
	assert.Equal(t, "a\n\nb", CombineText([]string{"a", "b"}, nil))

	combined := CombineText([]string{"a"}, []string{"QQQ: no data", "IWM: timeout"})
	assert.Equal(t, "a\n\n--- ERRORS ---\nQQQ: no data\nIWM: timeout", combined)

	onlyErrors := CombineText(nil, []string{"QQQ: no data"})
	assert.True(t, strings.HasPrefix(onlyErrors, "--- ERRORS ---\n"))
}
