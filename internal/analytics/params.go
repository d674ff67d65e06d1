package analytics

import (
	"fmt"
	"time"

	"intradayProcessor/internal/ports"
)

// Key event policy names.
const (
	PolicyTopVolume     = "top"
	PolicyOutlierVolume = "outlier"
)

// Params configures one Analyze call. It is passed by value so concurrent
// calls for different symbols never share configuration.
type Params struct {
	OpeningRangeMinutes int     `yaml:"opening_range_minutes"`
	ProfileBins         int     `yaml:"profile_bins"`          // Upper bound on volume profile bins
	KeyEventCount       int     `yaml:"key_event_count"`       // Events kept by the top-volume policy
	KeyEventPolicy      string  `yaml:"key_event_policy"`      // "top" or "outlier"
	OutlierStdDevs      float64 `yaml:"outlier_std_devs"`      // Threshold multiplier for the outlier policy
}

// DefaultParams returns the parameters used by the processor unless configured otherwise.
func DefaultParams() Params {
	return Params{
		OpeningRangeMinutes: 30,
		ProfileBins:         50,
		KeyEventCount:       3,
		KeyEventPolicy:      PolicyTopVolume,
		OutlierStdDevs:      2.5,
	}
}

// OpeningRangeWindow returns the opening range duration.
func (p Params) OpeningRangeWindow() time.Duration {
	return time.Duration(p.OpeningRangeMinutes) * time.Minute
}

// Validate checks the parameters for values no calculation can use.
func (p Params) Validate() error {
	if p.OpeningRangeMinutes <= 0 {
		return fmt.Errorf("opening range minutes must be positive, got %d: %w", p.OpeningRangeMinutes, ports.ErrInvalidParams)
	}
	if p.ProfileBins < 1 {
		return fmt.Errorf("profile bins must be at least 1, got %d: %w", p.ProfileBins, ports.ErrInvalidParams)
	}
	switch p.KeyEventPolicy {
	case PolicyTopVolume:
		if p.KeyEventCount < 1 {
			return fmt.Errorf("key event count must be at least 1, got %d: %w", p.KeyEventCount, ports.ErrInvalidParams)
		}
	case PolicyOutlierVolume:
		if p.OutlierStdDevs < 0 {
			return fmt.Errorf("outlier std devs cannot be negative, got %f: %w", p.OutlierStdDevs, ports.ErrInvalidParams)
		}
	default:
		return fmt.Errorf("unknown key event policy %q: %w", p.KeyEventPolicy, ports.ErrInvalidParams)
	}
	return nil
}
