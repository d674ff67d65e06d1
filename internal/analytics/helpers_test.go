package analytics

import (
	"testing"
	"time"

	"intradayProcessor/internal/domain"
)

var sessionDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

// at returns the session time for an "HH:MM" clock string.
func at(t *testing.T, clock string) time.Time {
	t.Helper()
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		t.Fatalf("bad clock %q: %v", clock, err)
	}
	return sessionDate.Add(time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute)
}

func ohlcv(t *testing.T, clock string, open, high, low, close, volume float64) domain.Bar {
	t.Helper()
	return domain.Bar{Time: at(t, clock), Open: open, High: high, Low: low, Close: close, Volume: volume}
}

// midBar returns a one-point-wide bar centered on mid.
func midBar(ts time.Time, mid, volume float64) domain.Bar {
	return domain.Bar{Time: ts, Open: mid, High: mid + 0.5, Low: mid - 0.5, Close: mid, Volume: volume}
}

// midBars builds consecutive 5-minute bars from 09:30, one per (mid, volume) pair.
func midBars(t *testing.T, pairs ...float64) []domain.Bar {
	t.Helper()
	if len(pairs)%2 != 0 {
		t.Fatalf("midBars needs (mid, volume) pairs, got %d values", len(pairs))
	}
	start := at(t, "09:30")
	bars := make([]domain.Bar, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		bars = append(bars, midBar(start.Add(time.Duration(i/2)*5*time.Minute), pairs[i], pairs[i+1]))
	}
	return bars
}

// balanceDayBars is a 09:30-10:00 session trading 99-103 with most volume near 101.
func balanceDayBars(t *testing.T) []domain.Bar {
	return []domain.Bar{
		ohlcv(t, "09:30", 100, 101, 99, 100.5, 100),
		ohlcv(t, "09:35", 100.5, 101.5, 100.5, 101, 600),
		ohlcv(t, "09:40", 101, 103, 101, 102, 100),
		ohlcv(t, "09:45", 102, 102, 100, 101, 600),
		ohlcv(t, "09:50", 101, 101.5, 100.5, 101, 300),
		ohlcv(t, "09:55", 101, 102, 99, 100, 100),
		ohlcv(t, "10:00", 100, 102, 100, 101, 200),
	}
}
