package analytics

import (
	"fmt"
	"math"
	"sort"

	"intradayProcessor/internal/domain"
	"intradayProcessor/internal/ports"
)

// KeyEventDetector selects the session's notable high-volume bars.
type KeyEventDetector interface {
	// Name returns the policy name recorded in the summary.
	Name() string
	// Detect returns the selected bars ranked by volume, highest first. partial
	// is true when the session had too few bars for the policy's full output.
	Detect(bars []domain.Bar) (events []domain.KeyVolumeEvent, partial bool)
}

// NewKeyEventDetector returns the detector for the configured policy.
func NewKeyEventDetector(params Params) (KeyEventDetector, error) {
	switch params.KeyEventPolicy {
	case PolicyTopVolume:
		return TopVolumeDetector{Count: params.KeyEventCount}, nil
	case PolicyOutlierVolume:
		return OutlierVolumeDetector{StdDevs: params.OutlierStdDevs}, nil
	default:
		return nil, fmt.Errorf("unknown key event policy %q: %w", params.KeyEventPolicy, ports.ErrInvalidParams)
	}
}

// TopVolumeDetector keeps the Count bars with the largest volume. Bars with
// equal volume keep their time order.
type TopVolumeDetector struct {
	Count int
}

func (d TopVolumeDetector) Name() string { return PolicyTopVolume }

func (d TopVolumeDetector) Detect(bars []domain.Bar) ([]domain.KeyVolumeEvent, bool) {
	if len(bars) == 0 || d.Count < 1 {
		return []domain.KeyVolumeEvent{}, len(bars) < d.Count
	}
	ranked := rankByVolume(bars)
	n := d.Count
	if n > len(ranked) {
		n = len(ranked)
	}
	return labelEvents(bars, ranked[:n]), len(bars) < d.Count
}

// OutlierVolumeDetector keeps bars whose volume exceeds the session mean by
// more than StdDevs sample standard deviations.
type OutlierVolumeDetector struct {
	StdDevs float64
}

func (d OutlierVolumeDetector) Name() string { return PolicyOutlierVolume }

func (d OutlierVolumeDetector) Detect(bars []domain.Bar) ([]domain.KeyVolumeEvent, bool) {
	// A sample deviation needs two observations.
	if len(bars) < 2 {
		return []domain.KeyVolumeEvent{}, true
	}

	var sum float64
	for _, bar := range bars {
		sum += bar.Volume
	}
	mean := sum / float64(len(bars))
	var sq float64
	for _, bar := range bars {
		sq += (bar.Volume - mean) * (bar.Volume - mean)
	}
	threshold := mean + d.StdDevs*math.Sqrt(sq/float64(len(bars)-1))

	var selected []int
	for _, idx := range rankByVolume(bars) {
		if bars[idx].Volume > threshold {
			selected = append(selected, idx)
		}
	}
	return labelEvents(bars, selected), false
}

// rankByVolume returns bar indexes ordered by volume, highest first.
func rankByVolume(bars []domain.Bar) []int {
	idx := make([]int, len(bars))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return bars[idx[a]].Volume > bars[idx[b]].Volume
	})
	return idx
}

func labelEvents(bars []domain.Bar, selected []int) []domain.KeyVolumeEvent {
	hod, lod := bars[0].High, bars[0].Low
	for _, bar := range bars[1:] {
		hod = math.Max(hod, bar.High)
		lod = math.Min(lod, bar.Low)
	}

	events := make([]domain.KeyVolumeEvent, 0, len(selected))
	for rank, i := range selected {
		bar := bars[i]
		var labels []string
		if bar.High >= hod {
			labels = append(labels, domain.LabelSetHigh)
		}
		if bar.Low <= lod {
			labels = append(labels, domain.LabelSetLow)
		}
		switch {
		case bar.Close > bar.Open:
			labels = append(labels, domain.LabelUpBar)
		case bar.Close < bar.Open:
			labels = append(labels, domain.LabelDownBar)
		default:
			labels = append(labels, domain.LabelNeutral)
		}
		events = append(events, domain.KeyVolumeEvent{
			Rank:   rank + 1,
			Time:   bar.Time,
			Price:  bar.Close,
			Volume: bar.Volume,
			Labels: labels,
		})
	}
	return events
}
