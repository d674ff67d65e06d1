package analytics

import "intradayProcessor/internal/domain"

// CalculateVWAP computes the running volume-weighted average of typical price.
// The value at index i covers bars [0..i]; it is invalid while the running
// volume is still zero.
func CalculateVWAP(bars []domain.Bar) domain.VWAPSeries {
	series := make(domain.VWAPSeries, len(bars))
	var cumVolume, cumWeighted float64
	for i, bar := range bars {
		cumVolume += bar.Volume
		cumWeighted += bar.TypicalPrice() * bar.Volume
		if cumVolume == 0 {
			continue
		}
		series[i] = domain.Price(cumWeighted / cumVolume)
	}
	return series
}

// CloseVsVWAP compares the session close with the final VWAP.
func CloseVsVWAP(closePrice domain.NullPrice, vwap domain.NullPrice) string {
	if !closePrice.Valid || !vwap.Valid {
		return domain.NotAvailable
	}
	if closePrice.Float64 > vwap.Float64 {
		return domain.CloseAboveVWAP
	}
	return domain.CloseBelowVWAP
}
