package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"intradayProcessor/config"
	"intradayProcessor/internal/analytics"
	"intradayProcessor/internal/domain"
	"intradayProcessor/internal/ports"
	"intradayProcessor/internal/report"
)

// SessionResult is the outcome of processing one symbol.
type SessionResult struct {
	Symbol     string
	Summary    domain.SessionSummary
	Text       string // Rendered report; empty when the symbol failed before analysis
	ArchiveID  int64  // Zero when no repository is configured or archiving failed
	Validation analytics.ValidationReport
	Err        error
}

// BatchResult collects the per-symbol results of one run, in request order.
type BatchResult struct {
	RunID   string
	Date    time.Time
	Results []SessionResult
}

// Errors returns one "SYMBOL: error" line per failed symbol.
func (b BatchResult) Errors() []string {
	var errs []string
	for _, r := range b.Results {
		if r.Err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", r.Symbol, r.Err))
		}
	}
	return errs
}

// CombinedText joins every rendered summary and appends the errors section.
func (b BatchResult) CombinedText() string {
	var texts []string
	for _, r := range b.Results {
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
	}
	return report.CombineText(texts, b.Errors())
}

// ProcessorService fetches, analyzes and archives intraday sessions.
type ProcessorService struct {
	cfg      *config.Config
	logger   ports.Logger
	provider ports.BarProvider
	repo     ports.SummaryRepository // Optional
	params   analytics.Params
	newRunID func() string
}

// NewProcessorService creates a new application service instance.
// repo may be nil, in which case summaries are not archived.
func NewProcessorService(
	cfg *config.Config,
	logger ports.Logger,
	provider ports.BarProvider,
	repo ports.SummaryRepository,
) (*ProcessorService, error) {

	// Validate dependencies
	if cfg == nil || logger == nil || provider == nil {
		return nil, fmt.Errorf("missing required dependencies for ProcessorService")
	}

	params := cfg.AnalyticsParams()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("configuration analytics parameters: %w", err)
	}
	if cfg.SessionEnd <= cfg.SessionStart {
		return nil, fmt.Errorf("configuration session end must be after session start")
	}

	return &ProcessorService{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		repo:     repo,
		params:   params,
		newRunID: func() string { return uuid.NewString() },
	}, nil
}

// ProcessSessions processes every symbol for the session on date. A failing
// symbol is recorded in its result and does not stop the others. The returned
// error is non-nil only when ctx ends before the batch completes.
func (s *ProcessorService) ProcessSessions(ctx context.Context, symbols []string, date time.Time) (BatchResult, error) {
	batch := BatchResult{
		RunID:   s.newRunID(),
		Date:    date,
		Results: make([]SessionResult, len(symbols)),
	}
	s.logger.Info(ctx, "Processing sessions", map[string]interface{}{
		"runID": batch.RunID, "date": date.Format("2006-01-02"), "symbols": len(symbols),
	})

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			if ctx.Err() != nil {
				batch.Results[i] = SessionResult{Symbol: symbol, Err: ctx.Err()}
				return nil
			}
			batch.Results[i] = s.processSymbol(ctx, batch.RunID, symbol, date)
			return nil
		})
	}
	_ = g.Wait() // Workers never return errors; failures live in the results

	failed := len(batch.Errors())
	s.logger.Info(ctx, "Finished processing sessions", map[string]interface{}{
		"runID": batch.RunID, "succeeded": len(symbols) - failed, "failed": failed,
	})

	if err := ctx.Err(); err != nil {
		return batch, fmt.Errorf("processing run %s interrupted: %w: %w", batch.RunID, ports.ErrContextCanceled, err)
	}
	return batch, nil
}

func (s *ProcessorService) processSymbol(ctx context.Context, runID, symbol string, date time.Time) SessionResult {
	result := SessionResult{Symbol: symbol}
	fields := map[string]interface{}{"runID": runID, "symbol": symbol}

	// 1. Fetch the session window
	start, end := s.cfg.SessionWindow(date)
	raw, err := s.provider.FetchBars(ctx, symbol, s.cfg.BarInterval, start, end)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to fetch bars", fields)
		result.Err = fmt.Errorf("fetching bars: %w", err)
		return result
	}

	// 2. Clean rows and move timestamps onto the session clock
	loc := s.cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	for i := range raw {
		raw[i].Time = raw[i].Time.In(loc)
	}
	sessionDate := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	session, validation := analytics.Validate(symbol, s.cfg.BarInterval, sessionDate, raw, analytics.ValidateOptions{RequireVolume: true})
	result.Validation = validation
	if dropped := validation.DroppedTotal(); dropped > 0 {
		s.logger.Warn(ctx, "Dropped invalid bars", map[string]interface{}{
			"symbol": symbol, "input": validation.Input, "dropped": dropped, "reasons": validation.Dropped,
		})
	}
	if session.IsEmpty() {
		result.Err = fmt.Errorf("%s on %s: %w", symbol, session.DateString(), ports.ErrEmptySession)
		s.logger.Warn(ctx, "No usable bars for session", fields)
		return result
	}

	// 3. Analyze and render
	summary, err := analytics.Analyze(session, s.params)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to analyze session", fields)
		result.Err = err
		return result
	}
	result.Summary = summary
	result.Text = report.RenderText(summary)

	// 4. Archive
	if s.repo == nil {
		return result
	}
	id, err := s.repo.SaveSummary(ctx, runID, summary, result.Text)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to archive summary", fields)
		result.Err = fmt.Errorf("archiving summary: %w", err)
		return result
	}
	result.ArchiveID = id
	s.logger.Debug(ctx, "Session processed", map[string]interface{}{
		"symbol": symbol, "bars": summary.BarCount, "archiveID": id,
	})
	return result
}

// IsEmptySession reports whether a result failed only because no usable bars
// were available.
func IsEmptySession(r SessionResult) bool {
	return errors.Is(r.Err, ports.ErrEmptySession)
}
