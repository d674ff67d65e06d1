package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"intradayProcessor/internal/domain"
	"intradayProcessor/internal/ports"
)

// DropReason names why the validator rejected a row.
type DropReason string

const (
	DropMissingField   DropReason = "missing_field"
	DropNonPositiveVol DropReason = "non_positive_volume"
	DropNegativeVol    DropReason = "negative_volume"
	DropNonPositive    DropReason = "non_positive_price"
	DropInvertedRange  DropReason = "high_below_low"
	DropOutsideRange   DropReason = "open_close_outside_range"
	DropDuplicateTime  DropReason = "duplicate_timestamp"
)

// ValidateOptions controls which rows the validator keeps.
type ValidateOptions struct {
	// RequireVolume drops bars with zero volume; set when volume-dependent
	// calculations (VWAP, profile, key events) will run.
	RequireVolume bool
}

// ValidationReport counts what the validator did to the input.
type ValidationReport struct {
	Input     int
	Kept      int
	Reordered bool // Input was not in time order
	Dropped   map[DropReason]int
}

// DroppedTotal returns the number of rejected rows.
func (r ValidationReport) DroppedTotal() int {
	total := 0
	for _, n := range r.Dropped {
		total += n
	}
	return total
}

// Validate cleans raw provider rows into a Session. It never fails on data
// quality: malformed rows are dropped and counted, the survivors are sorted by
// time, and duplicate timestamps keep their first occurrence. Callers must
// handle an empty Session.
func Validate(symbol, interval string, date time.Time, rows []domain.RawBar, opts ValidateOptions) (domain.Session, ValidationReport) {
	report := ValidationReport{Input: len(rows), Dropped: make(map[DropReason]int)}
	bars := make([]domain.Bar, 0, len(rows))

	for _, row := range rows {
		bar, reason, ok := normalizeRow(row, opts)
		if !ok {
			report.Dropped[reason]++
			continue
		}
		bars = append(bars, bar)
	}

	if !sort.SliceIsSorted(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) }) {
		report.Reordered = true
		sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	}

	deduped := bars[:0]
	for i, bar := range bars {
		if i > 0 && bar.Time.Equal(deduped[len(deduped)-1].Time) {
			report.Dropped[DropDuplicateTime]++
			continue
		}
		deduped = append(deduped, bar)
	}

	report.Kept = len(deduped)
	return domain.Session{Symbol: symbol, Interval: interval, Date: date, Bars: deduped}, report
}

func normalizeRow(row domain.RawBar, opts ValidateOptions) (domain.Bar, DropReason, bool) {
	if row.Time.IsZero() || row.Open == nil || row.High == nil || row.Low == nil || row.Close == nil || row.Volume == nil {
		return domain.Bar{}, DropMissingField, false
	}
	bar := domain.Bar{
		Time:   row.Time,
		Open:   *row.Open,
		High:   *row.High,
		Low:    *row.Low,
		Close:  *row.Close,
		Volume: *row.Volume,
	}
	for _, v := range []float64{bar.Open, bar.High, bar.Low, bar.Close, bar.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.Bar{}, DropMissingField, false
		}
	}
	switch {
	case bar.Volume < 0:
		return domain.Bar{}, DropNegativeVol, false
	case opts.RequireVolume && bar.Volume == 0:
		return domain.Bar{}, DropNonPositiveVol, false
	case bar.Open <= 0 || bar.High <= 0 || bar.Low <= 0 || bar.Close <= 0:
		return domain.Bar{}, DropNonPositive, false
	case bar.High < bar.Low:
		return domain.Bar{}, DropInvertedRange, false
	case bar.Open > bar.High || bar.Open < bar.Low || bar.Close > bar.High || bar.Close < bar.Low:
		return domain.Bar{}, DropOutsideRange, false
	}
	return bar, "", true
}

// CheckSession verifies the structural invariants Analyze relies on.
// Sessions produced by Validate always pass.
func CheckSession(s domain.Session) error {
	for i, bar := range s.Bars {
		if bar.Volume < 0 {
			return fmt.Errorf("bar %d at %s has volume %f: %w", i, bar.Time.Format(time.RFC3339), bar.Volume, ports.ErrNegativeVolume)
		}
		if i > 0 && !bar.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("bar %d at %s does not follow %s: %w", i,
				bar.Time.Format(time.RFC3339), s.Bars[i-1].Time.Format(time.RFC3339), ports.ErrUnsortedBars)
		}
	}
	return nil
}
