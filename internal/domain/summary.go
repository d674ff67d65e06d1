package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// NullPrice is a price that may be unavailable. Valid is false when the value
// could not be derived from the session (e.g. VWAP with zero cumulative volume).
type NullPrice struct {
	Float64 float64
	Valid   bool
}

// Price returns a valid NullPrice holding v.
func Price(v float64) NullPrice {
	return NullPrice{Float64: v, Valid: true}
}

// MarshalJSON encodes an invalid price as null.
func (p NullPrice) MarshalJSON() ([]byte, error) {
	if !p.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(p.Float64)
}

// UnmarshalJSON decodes null into an invalid price.
func (p *NullPrice) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = NullPrice{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding price: %w", err)
	}
	*p = Price(v)
	return nil
}

// VWAPSeries is aligned 1:1 with a session's bars.
type VWAPSeries []NullPrice

// Last returns the final VWAP value of the session.
func (s VWAPSeries) Last() NullPrice {
	if len(s) == 0 {
		return NullPrice{}
	}
	return s[len(s)-1]
}

// AnyValid reports whether VWAP is defined for at least one bar.
func (s VWAPSeries) AnyValid() bool {
	for _, v := range s {
		if v.Valid {
			return true
		}
	}
	return false
}

// PriceBin is a half-open price interval [Low, High) with the volume traded
// by bars whose mid-price falls inside it. The highest bin is closed.
type PriceBin struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Volume float64 `json:"volume"`
}

// Mid returns the center of the bin.
func (b PriceBin) Mid() float64 {
	return (b.Low + b.High) / 2
}

// VolumeProfile holds the session's volume-by-price distribution and the
// value area derived from it.
type VolumeProfile struct {
	POC             NullPrice  `json:"poc"`
	VAH             NullPrice  `json:"vah"`
	VAL             NullPrice  `json:"val"`
	Bins            []PriceBin `json:"bins,omitempty"`
	POCBin          int        `json:"poc_bin"`
	TotalVolume     float64    `json:"total_volume"`
	ValueAreaVolume float64    `json:"value_area_volume"`
	Empty           bool       `json:"empty"`      // No bars at all
	Degenerate      bool       `json:"degenerate"` // Collapsed to a single price
	EarlyExit       bool       `json:"early_exit"` // Expansion stopped at zero-volume neighbors before the target
}

// ValueAreaShare returns the fraction of total volume inside the value area.
func (p VolumeProfile) ValueAreaShare() float64 {
	if p.TotalVolume <= 0 {
		return 0
	}
	return p.ValueAreaVolume / p.TotalVolume
}

// BinWidth returns the width of one profile bin, or 0 when there are no bins.
func (p VolumeProfile) BinWidth() float64 {
	if len(p.Bins) == 0 {
		return 0
	}
	return p.Bins[0].High - p.Bins[0].Low
}

// OpeningRange is the high/low of the session's first minutes and how the
// rest of the session traded relative to it.
type OpeningRange struct {
	High          NullPrice           `json:"orh"`
	Low           NullPrice           `json:"orl"`
	Window        time.Duration       `json:"window"`
	BarCount      int                 `json:"bar_count"`
	Partial       bool                `json:"partial"` // Fewer bars than the window should hold
	Outcome       OpeningRangeOutcome `json:"outcome"`
	Narrative     string              `json:"narrative"`
	BreakHighTime time.Time           `json:"break_high_time,omitempty"`
	BreakLowTime  time.Time           `json:"break_low_time,omitempty"`
}

// KeyVolumeEvent is a bar singled out for its volume, with context labels.
type KeyVolumeEvent struct {
	Rank   int       `json:"rank"`
	Time   time.Time `json:"time"`
	Price  float64   `json:"price"` // Close of the bar
	Volume float64   `json:"volume"`
	Labels []string  `json:"labels"`
}

// Description formats the event as "HH:MM @ $P (Vol: V) - [label | label]".
func (e KeyVolumeEvent) Description() string {
	vol := humanize.Comma(int64(math.Round(e.Volume)))
	return fmt.Sprintf("%s @ $%.2f (Vol: %s) - [%s]",
		e.Time.Format("15:04"), e.Price, vol, strings.Join(e.Labels, " | "))
}

// SessionExtremes holds the session's open, close and extremes with their times.
type SessionExtremes struct {
	Open     NullPrice `json:"open"`
	Close    NullPrice `json:"close"`
	High     NullPrice `json:"high"`
	HighTime time.Time `json:"high_time"`
	Low      NullPrice `json:"low"`
	LowTime  time.Time `json:"low_time"`
}

// SessionSummary is the read-only structural summary of one session.
type SessionSummary struct {
	Symbol           string           `json:"symbol"`
	Date             string           `json:"date"`
	Interval         string           `json:"interval"`
	BarCount         int              `json:"bar_count"`
	Empty            bool             `json:"empty"`
	Extremes         SessionExtremes  `json:"extremes"`
	VWAP             NullPrice        `json:"vwap"`
	CloseVsVWAP      string           `json:"close_vs_vwap"`
	VWAPInteraction  VWAPInteraction  `json:"vwap_interaction"`
	Profile          VolumeProfile    `json:"volume_profile"`
	OpeningRange     OpeningRange     `json:"opening_range"`
	KeyEventPolicy   string           `json:"key_event_policy"`
	KeyEvents        []KeyVolumeEvent `json:"key_events"`
	KeyEventsPartial bool             `json:"key_events_partial"`
	RangePosition    RangePosition    `json:"range_position"`
}
