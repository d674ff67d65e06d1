package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"intradayProcessor/internal/domain"
	"intradayProcessor/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements ports.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a temporary database for testing
func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "intraday-archive-test-*")
	require.NoError(t, err)

	repo, err := NewRepository(Config{
		DBPath: filepath.Join(tmpDir, "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		os.RemoveAll(tmpDir)
	}
	return repo, cleanup
}

func sampleSummary(ticker, date string, close float64) domain.SessionSummary {
	ts := time.Date(2024, 3, 15, 9, 40, 0, 0, time.UTC)
	return domain.SessionSummary{
		Symbol:   ticker,
		Date:     date,
		Interval: "5m",
		BarCount: 78,
		Extremes: domain.SessionExtremes{
			Open:     domain.Price(100),
			Close:    domain.Price(close),
			High:     domain.Price(103),
			HighTime: ts,
			Low:      domain.Price(99),
			LowTime:  ts.Add(-10 * time.Minute),
		},
		VWAP:            domain.Price(101.2),
		CloseVsVWAP:     domain.CloseAboveVWAP,
		VWAPInteraction: domain.VWAPMixed,
		Profile: domain.VolumeProfile{
			POC: domain.Price(101),
			VAH: domain.Price(101.5),
			VAL: domain.Price(100.5),
		},
		OpeningRange: domain.OpeningRange{
			High:      domain.Price(103),
			Low:       domain.Price(99),
			Window:    30 * time.Minute,
			Outcome:   domain.OutcomeBalance,
			Narrative: "Price remained entirely inside the Opening Range (Balance Day).",
		},
		KeyEventPolicy: "top",
		KeyEvents: []domain.KeyVolumeEvent{
			{Rank: 1, Time: ts, Price: 102, Volume: 1500, Labels: []string{domain.LabelSetHigh, domain.LabelUpBar}},
		},
		RangePosition: domain.RangeConsolidating,
	}
}

func TestRepository_SaveAndFindSummary(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	summary := sampleSummary("SPY", "2024-03-15", 102)
	id, err := repo.SaveSummary(ctx, "run-1", summary, "Data Extraction Summary: SPY")
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := repo.FindByTickerDate(ctx, "SPY", "2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "Data Extraction Summary: SPY", got.RawText)
	assert.Equal(t, summary.Profile.POC, got.Summary.Profile.POC)
	assert.Equal(t, summary.OpeningRange.Outcome, got.Summary.OpeningRange.Outcome)
	assert.Equal(t, summary.KeyEvents[0].Labels, got.Summary.KeyEvents[0].Labels)
	assert.True(t, summary.Extremes.HighTime.Equal(got.Summary.Extremes.HighTime))
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestRepository_SaveSummaryUpserts(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	firstID, err := repo.SaveSummary(ctx, "run-1", sampleSummary("SPY", "2024-03-15", 102), "first")
	require.NoError(t, err)
	secondID, err := repo.SaveSummary(ctx, "run-2", sampleSummary("SPY", "2024-03-15", 98), "second")
	require.NoError(t, err)
	assert.Equal(t, firstID, secondID, "re-processing a ticker and date replaces the record")

	records, err := repo.FindByTicker(ctx, "SPY", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "run-2", records[0].RunID)
	assert.Equal(t, "second", records[0].RawText)
	assert.Equal(t, domain.Price(98), records[0].Summary.Extremes.Close)
}

func TestRepository_NullPricesRoundTrip(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	empty := domain.SessionSummary{Symbol: "IWM", Date: "2024-03-16", Empty: true}
	_, err := repo.SaveSummary(ctx, "run-1", empty, "no data")
	require.NoError(t, err)

	var vwap, poc *float64
	err = repo.db.QueryRowContext(ctx, `SELECT vwap, poc FROM data_archive WHERE ticker = 'IWM'`).Scan(&vwap, &poc)
	require.NoError(t, err)
	assert.Nil(t, vwap)
	assert.Nil(t, poc)

	got, err := repo.FindByTickerDate(ctx, "IWM", "2024-03-16")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Summary.Empty)
	assert.False(t, got.Summary.VWAP.Valid)
}

func TestRepository_FindByTickerOrderAndLimit(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for _, date := range []string{"2024-03-13", "2024-03-15", "2024-03-14"} {
		_, err := repo.SaveSummary(ctx, "run-1", sampleSummary("QQQ", date, 101), date)
		require.NoError(t, err)
	}

	records, err := repo.FindByTicker(ctx, "QQQ", 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-03-15", records[0].Date)
	assert.Equal(t, "2024-03-14", records[1].Date)

	all, err := repo.FindByTicker(ctx, "QQQ", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepository_NotFoundAndTickers(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	got, err := repo.FindByTickerDate(ctx, "NVDA", "2024-03-15")
	assert.NoError(t, err)
	assert.Nil(t, got)

	tickers, err := repo.ListTickers(ctx)
	require.NoError(t, err)
	assert.Empty(t, tickers)

	for _, ticker := range []string{"TSLA", "AAPL", "TSLA"} {
		_, err := repo.SaveSummary(ctx, "run-1", sampleSummary(ticker, "2024-03-15", 101), ticker)
		require.NoError(t, err)
	}
	tickers, err = repo.ListTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA"}, tickers)
}

func TestRepository_SaveSummaryRequiresKey(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.SaveSummary(context.Background(), "run-1", domain.SessionSummary{}, "")
	assert.True(t, errors.Is(err, ports.ErrInvalidRequest))
}

func TestNewRepository_RequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}
