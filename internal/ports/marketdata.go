package ports

import (
	"context"
	"time"

	"intradayProcessor/internal/domain"
)

// BarProvider supplies the raw bars of one symbol for a time window.
// Implementations resolve timezones themselves; returned rows are in the
// provider's order and are not yet validated.
type BarProvider interface {
	// FetchBars returns the bars whose open time falls in [start, end).
	FetchBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.RawBar, error)
}
