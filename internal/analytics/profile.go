package analytics

import "intradayProcessor/internal/domain"

// valueAreaShare is the fraction of session volume the value area must hold.
const valueAreaShare = 0.70

// BuildVolumeProfile bins the session's volume by bar mid-price and derives
// the Point of Control and the value area around it.
//
// The number of bins is min(maxBins, uniqueMids-1), never below 1, spread in
// equal widths over [min mid, max mid]. A bar contributes all of its volume to
// the bin holding its mid-price. Sessions with fewer than two bars or no
// volume collapse to the last close; sessions whose bars share one mid-price
// collapse to that price.
func BuildVolumeProfile(bars []domain.Bar, maxBins int) domain.VolumeProfile {
	if len(bars) == 0 {
		return domain.VolumeProfile{Empty: true}
	}
	if maxBins < 1 {
		maxBins = 1
	}

	totalVolume := 0.0
	for _, bar := range bars {
		totalVolume += bar.Volume
	}
	if len(bars) < 2 || totalVolume == 0 {
		return degenerateProfile(bars[len(bars)-1].Close, totalVolume)
	}

	minMid, maxMid := bars[0].Mid(), bars[0].Mid()
	uniqueMids := make(map[float64]struct{}, len(bars))
	for _, bar := range bars {
		mid := bar.Mid()
		uniqueMids[mid] = struct{}{}
		if mid < minMid {
			minMid = mid
		}
		if mid > maxMid {
			maxMid = mid
		}
	}
	if minMid == maxMid {
		return degenerateProfile(minMid, totalVolume)
	}

	binCount := len(uniqueMids) - 1
	if binCount > maxBins {
		binCount = maxBins
	}
	if binCount < 1 {
		binCount = 1
	}

	bins := makeBins(minMid, maxMid, binCount)
	for _, bar := range bars {
		bins[binIndex(bins, bar.Mid())].Volume += bar.Volume
	}

	// Ties go to the lowest-priced bin.
	poc := 0
	for i := range bins {
		if bins[i].Volume > bins[poc].Volume {
			poc = i
		}
	}

	lo, hi, accum, earlyExit := expandValueArea(bins, poc, totalVolume*valueAreaShare)

	return domain.VolumeProfile{
		POC:             domain.Price(bins[poc].Mid()),
		VAL:             domain.Price(bins[lo].Low),
		VAH:             domain.Price(bins[hi].High),
		Bins:            bins,
		POCBin:          poc,
		TotalVolume:     totalVolume,
		ValueAreaVolume: accum,
		EarlyExit:       earlyExit,
	}
}

// expandValueArea grows the included range outward from the POC bin, taking
// the neighbor with more volume (the upper one on ties) until the target is
// reached. It stops early when both neighbors hold no volume.
func expandValueArea(bins []domain.PriceBin, poc int, target float64) (lo, hi int, accum float64, earlyExit bool) {
	lo, hi = poc, poc
	accum = bins[poc].Volume
	for accum < target && (lo > 0 || hi < len(bins)-1) {
		hasUp, hasDown := hi+1 < len(bins), lo > 0
		var volUp, volDown float64
		if hasUp {
			volUp = bins[hi+1].Volume
		}
		if hasDown {
			volDown = bins[lo-1].Volume
		}
		if volUp == 0 && volDown == 0 {
			earlyExit = true
			break
		}
		if hasUp && (!hasDown || volUp >= volDown) {
			hi++
			accum += volUp
		} else {
			lo--
			accum += volDown
		}
	}
	return lo, hi, accum, earlyExit
}

func makeBins(minPrice, maxPrice float64, count int) []domain.PriceBin {
	width := (maxPrice - minPrice) / float64(count)
	bins := make([]domain.PriceBin, count)
	for i := range bins {
		bins[i].Low = minPrice + float64(i)*width
		bins[i].High = minPrice + float64(i+1)*width
	}
	bins[count-1].High = maxPrice
	return bins
}

// binIndex locates the half-open bin holding price; the top bin also holds
// the maximum. Edge arithmetic is corrected against the stored boundaries.
func binIndex(bins []domain.PriceBin, price float64) int {
	width := bins[0].High - bins[0].Low
	idx := int((price - bins[0].Low) / width)
	if idx < 0 {
		idx = 0
	}
	if idx > len(bins)-1 {
		idx = len(bins) - 1
	}
	if idx+1 < len(bins) && price >= bins[idx+1].Low {
		idx++
	}
	if idx > 0 && price < bins[idx].Low {
		idx--
	}
	return idx
}

func degenerateProfile(price, totalVolume float64) domain.VolumeProfile {
	return domain.VolumeProfile{
		POC:             domain.Price(price),
		VAL:             domain.Price(price),
		VAH:             domain.Price(price),
		TotalVolume:     totalVolume,
		ValueAreaVolume: totalVolume,
		Degenerate:      true,
	}
}
