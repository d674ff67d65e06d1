package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"intradayProcessor/internal/domain"
)

func TestClassifyVWAPInteraction(t *testing.T) {
	tests := []struct {
		name string
		bars []domain.Bar
		want domain.VWAPInteraction
	}{
		{
			name: "empty session",
			want: domain.VWAPNotApplicable,
		},
		{
			name: "vwap never defined",
			bars: []domain.Bar{
				ohlcv(t, "09:30", 100, 101, 99, 100, 0),
				ohlcv(t, "09:35", 100, 101, 99, 100, 0),
			},
			want: domain.VWAPNotApplicable,
		},
		{
			name: "single bar",
			bars: []domain.Bar{ohlcv(t, "09:30", 100, 101, 99, 100, 10)},
			want: domain.VWAPNotApplicable,
		},
		{
			name: "lows hold above vwap",
			bars: []domain.Bar{
				ohlcv(t, "09:30", 100, 101, 99, 100.5, 100),
				ohlcv(t, "09:35", 101.5, 103, 101.5, 102.5, 100),
				ohlcv(t, "09:40", 103, 105, 103, 104.5, 100),
			},
			want: domain.VWAPSupport,
		},
		{
			name: "highs stay below vwap",
			bars: []domain.Bar{
				ohlcv(t, "09:30", 100, 101, 99, 99.5, 100),
				ohlcv(t, "09:35", 98.5, 98.5, 96.5, 97, 100),
				ohlcv(t, "09:40", 96.5, 96.5, 94.5, 95, 100),
			},
			want: domain.VWAPResistance,
		},
		{
			name: "bar straddles vwap",
			bars: []domain.Bar{
				ohlcv(t, "09:30", 100, 101, 99, 100.5, 100),
				ohlcv(t, "09:35", 100.5, 101, 99, 100, 100),
			},
			want: domain.VWAPMixed,
		},
		{
			name: "closes whipsaw around vwap",
			bars: []domain.Bar{
				ohlcv(t, "09:30", 100, 100.5, 99.5, 100, 10000),
				ohlcv(t, "09:35", 100, 102.5, 99.8, 102, 1),
				ohlcv(t, "09:40", 100, 100.2, 97.5, 98, 1),
				ohlcv(t, "09:45", 100, 102.5, 99.8, 102, 1),
				ohlcv(t, "09:50", 100, 100.2, 97.5, 98, 1),
				ohlcv(t, "09:55", 100, 102.5, 99.8, 102, 1),
				ohlcv(t, "10:00", 100, 100.2, 97.5, 98, 1),
			},
			want: domain.VWAPCrossedMultiple,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyVWAPInteraction(tt.bars, CalculateVWAP(tt.bars)))
		})
	}
}

func TestClassifyVWAPInteraction_SkipsLeadingZeroVolume(t *testing.T) {
	// The zero-volume bar at 09:30 has no VWAP and its low would otherwise
	// break the support reading.
	bars := []domain.Bar{
		ohlcv(t, "09:30", 90, 91, 80, 90, 0),
		ohlcv(t, "09:35", 100, 101, 99, 100.5, 100),
		ohlcv(t, "09:40", 101.5, 103, 101.5, 102.5, 100),
		ohlcv(t, "09:45", 103, 105, 103, 104.5, 100),
	}

	assert.Equal(t, domain.VWAPSupport, ClassifyVWAPInteraction(bars, CalculateVWAP(bars)))
}
