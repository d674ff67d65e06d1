package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"intradayProcessor/internal/domain"
	"intradayProcessor/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.SummaryRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/analysis_database.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, fmt.Errorf("%w: %v", ports.ErrDBConnection, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, fmt.Errorf("%w: %v", ports.ErrDBConnection, err)
	}

	// Archive writes come from concurrent ticker workers; one connection serializes them.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger, now: time.Now}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Summary archive ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS data_archive (
		archive_id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ticker TEXT NOT NULL,
		date TEXT NOT NULL,
		raw_text_summary TEXT NOT NULL,
		open REAL,
		high REAL,
		low REAL,
		close REAL,
		poc REAL,
		vah REAL,
		val REAL,
		vwap REAL,
		orl REAL,
		orh REAL,
		summary_json TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE(ticker, date)
	);
	CREATE INDEX IF NOT EXISTS idx_data_archive_ticker_date ON data_archive (ticker, date);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// SaveSummary inserts the summary or replaces the record already stored for
// the same ticker and date.
func (r *Repository) SaveSummary(ctx context.Context, runID string, summary domain.SessionSummary, rawText string) (int64, error) {
	const query = `
	INSERT INTO data_archive (run_id, ticker, date, raw_text_summary, open, high, low, close,
	                          poc, vah, val, vwap, orl, orh, summary_json, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(ticker, date) DO UPDATE SET
		run_id = excluded.run_id,
		raw_text_summary = excluded.raw_text_summary,
		open = excluded.open, high = excluded.high, low = excluded.low, close = excluded.close,
		poc = excluded.poc, vah = excluded.vah, val = excluded.val, vwap = excluded.vwap,
		orl = excluded.orl, orh = excluded.orh,
		summary_json = excluded.summary_json,
		updated_at = excluded.updated_at
	RETURNING archive_id`

	if summary.Symbol == "" || summary.Date == "" {
		return 0, fmt.Errorf("summary needs ticker and date to be archived: %w", ports.ErrInvalidRequest)
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to encode summary for %s %s: %w", summary.Symbol, summary.Date, err)
	}

	ext := summary.Extremes
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		runID, summary.Symbol, summary.Date, rawText,
		nullFloat(ext.Open), nullFloat(ext.High), nullFloat(ext.Low), nullFloat(ext.Close),
		nullFloat(summary.Profile.POC), nullFloat(summary.Profile.VAH), nullFloat(summary.Profile.VAL),
		nullFloat(summary.VWAP), nullFloat(summary.OpeningRange.Low), nullFloat(summary.OpeningRange.High),
		string(payload), r.now().UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to archive summary for %s %s: %w: %v", summary.Symbol, summary.Date, ports.ErrUpdateFailed, err)
	}
	r.logger.Debug(ctx, "Summary archived", map[string]interface{}{"archiveID": id, "ticker": summary.Symbol, "date": summary.Date})
	return id, nil
}

// FindByTickerDate retrieves the archived summary for a ticker on a date.
func (r *Repository) FindByTickerDate(ctx context.Context, ticker, date string) (*ports.ArchivedSummary, error) {
	const query = `
	SELECT archive_id, run_id, ticker, date, raw_text_summary, summary_json, updated_at
	FROM data_archive
	WHERE ticker = ? AND date = ?`

	rec, err := scanArchived(r.db.QueryRowContext(ctx, query, ticker, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "No archived summary found", map[string]interface{}{"ticker": ticker, "date": date})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query archive for %s %s: %w", ticker, date, err)
	}
	return rec, nil
}

// FindByTicker retrieves the most recent archived summaries for a ticker, up to a limit.
func (r *Repository) FindByTicker(ctx context.Context, ticker string, limit int) ([]*ports.ArchivedSummary, error) {
	const query = `
	SELECT archive_id, run_id, ticker, date, raw_text_summary, summary_json, updated_at
	FROM data_archive
	WHERE ticker = ? ORDER BY date DESC LIMIT ?`

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := r.db.QueryContext(ctx, query, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive for %s: %w", ticker, err)
	}
	defer rows.Close()

	records := make([]*ports.ArchivedSummary, 0)
	for rows.Next() {
		rec, err := scanArchived(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan archive row during FindByTicker: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archive rows: %w", err)
	}
	return records, nil
}

// ListTickers returns the distinct tickers in the archive in alphabetical order.
func (r *Repository) ListTickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT ticker FROM data_archive ORDER BY ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived tickers: %w", err)
	}
	defer rows.Close()

	tickers := make([]string, 0)
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ticker rows: %w", err)
	}
	return tickers, nil
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArchived(s scanner) (*ports.ArchivedSummary, error) {
	rec := &ports.ArchivedSummary{}
	var payload string
	err := s.Scan(&rec.ID, &rec.RunID, &rec.Ticker, &rec.Date, &rec.RawText, &payload, &rec.UpdatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	if err := json.Unmarshal([]byte(payload), &rec.Summary); err != nil {
		return nil, fmt.Errorf("archived summary %d is corrupt: %w", rec.ID, err)
	}
	return rec, nil
}

func nullFloat(p domain.NullPrice) sql.NullFloat64 {
	return sql.NullFloat64{Float64: p.Float64, Valid: p.Valid}
}
