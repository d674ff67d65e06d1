package barfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"intradayProcessor/internal/domain"
	"intradayProcessor/internal/ports"
)

// Row is the Parquet layout of one bar. Prices are optional so that gaps in
// the source survive a round trip.
type Row struct {
	Timestamp int64    `parquet:"t"` // Open time, Unix milliseconds
	Open      *float64 `parquet:"o,optional"`
	High      *float64 `parquet:"h,optional"`
	Low       *float64 `parquet:"l,optional"`
	Close     *float64 `parquet:"c,optional"`
	Volume    *float64 `parquet:"v,optional"`
}

// ParquetProvider implements ports.BarProvider over files written by WriteParquetFile.
type ParquetProvider struct {
	dir    string
	logger ports.Logger
}

// NewParquetProvider serves bars from Parquet files in dir.
func NewParquetProvider(dir string, logger ports.Logger) *ParquetProvider {
	return &ParquetProvider{dir: dir, logger: logger}
}

// FetchBars reads the symbol's file and returns the rows opening in [start, end).
func (p *ParquetProvider) FetchBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.RawBar, error) {
	path := Path(p.dir, symbol, interval, FormatParquet)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no bar file %s: %w", path, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w: %v", path, ports.ErrMalformedData, err)
	}
	bars := filterWindow(fromRows(rows), start, end)
	p.logger.Debug(ctx, "Loaded bars from Parquet", map[string]interface{}{"path": path, "count": len(bars)})
	return bars, nil
}

// WriteParquetFile writes the symbol's bars to dir and returns the file path.
func WriteParquetFile(dir, symbol, interval string, bars []domain.RawBar) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := Path(dir, symbol, interval, FormatParquet)
	if err := parquet.WriteFile(path, toRows(bars)); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func toRows(bars []domain.RawBar) []Row {
	rows := make([]Row, len(bars))
	for i, b := range bars {
		rows[i] = Row{
			Timestamp: b.Time.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		}
	}
	return rows
}

func fromRows(rows []Row) []domain.RawBar {
	bars := make([]domain.RawBar, len(rows))
	for i, r := range rows {
		bars[i] = domain.RawBar{
			Time:   time.UnixMilli(r.Timestamp).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}
	return bars
}
