package domain

import "time"

// Bar represents a single fixed-interval OHLCV observation.
type Bar struct {
	Time   time.Time // Start time of the interval, session-local
	Open   float64   // Opening price
	High   float64   // Highest price
	Low    float64   // Lowest price
	Close  float64   // Closing price
	Volume float64   // Traded volume
}

// Mid returns the midpoint of the bar's range, used for volume profile binning.
func (b Bar) Mid() float64 {
	return (b.High + b.Low) / 2
}

// TypicalPrice returns (high+low+close)/3, used for VWAP.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// RawBar is a bar row as delivered by a provider, before validation.
// A nil field means the provider had no value for it.
type RawBar struct {
	Time   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *float64
}

// NewRawBar builds a fully populated RawBar.
func NewRawBar(t time.Time, open, high, low, close, volume float64) RawBar {
	return RawBar{Time: t, Open: &open, High: &high, Low: &low, Close: &close, Volume: &volume}
}

// Session is the ordered set of bars for one symbol on one trading date.
type Session struct {
	Symbol   string    // Ticker or trading symbol
	Interval string    // Bar interval (e.g., "5m")
	Date     time.Time // Trading date (midnight in the session's location)
	Bars     []Bar     // Sorted strictly by Time
}

// IsEmpty reports whether the session holds no bars.
func (s Session) IsEmpty() bool {
	return len(s.Bars) == 0
}

// DateString returns the session date as YYYY-MM-DD.
func (s Session) DateString() string {
	return s.Date.Format("2006-01-02")
}
