package ports

import (
	"context"
	"time"

	"intradayProcessor/internal/domain"
)

// ArchivedSummary is a stored session summary together with its rendered text.
type ArchivedSummary struct {
	ID        int64
	RunID     string // Processing run that produced the record
	Ticker    string
	Date      string // YYYY-MM-DD
	RawText   string
	Summary   domain.SessionSummary
	UpdatedAt time.Time
}

// SummaryRepository defines the interface for archiving session summaries.
type SummaryRepository interface {
	// SaveSummary stores a summary, replacing any existing record for the same ticker and date.
	// Returns the record ID.
	SaveSummary(ctx context.Context, runID string, summary domain.SessionSummary, rawText string) (int64, error)
	// FindByTickerDate retrieves the record for a ticker on a date.
	// Returns nil, nil if not found.
	FindByTickerDate(ctx context.Context, ticker, date string) (*ArchivedSummary, error)
	// FindByTicker retrieves the most recent records for a ticker, newest date first, up to a limit.
	FindByTicker(ctx context.Context, ticker string, limit int) ([]*ArchivedSummary, error)
	// ListTickers returns every ticker present in the archive, sorted.
	ListTickers(ctx context.Context) ([]string, error)
}
