package barfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"intradayProcessor/internal/domain"
	"intradayProcessor/internal/ports"
)

var csvHeader = []string{"open_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// CSVProvider implements ports.BarProvider over files written by WriteCSV.
type CSVProvider struct {
	dir    string
	logger ports.Logger
}

// NewCSVProvider serves bars from CSV files in dir.
func NewCSVProvider(dir string, logger ports.Logger) *CSVProvider {
	return &CSVProvider{dir: dir, logger: logger}
}

// FetchBars reads the symbol's file and returns the rows opening in [start, end).
// Empty cells come back as nil fields.
func (p *CSVProvider) FetchBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.RawBar, error) {
	path := Path(p.dir, symbol, interval, FormatCSV)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no bar file %s: %w", path, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	rows = filterWindow(rows, start, end)
	p.logger.Debug(ctx, "Loaded bars from CSV", map[string]interface{}{"path": path, "count": len(rows)})
	return rows, nil
}

// ReadCSV parses bar rows from r. Columns are located by header name, so
// extra columns are ignored; open_time must be RFC3339.
func ReadCSV(r io.Reader) ([]domain.RawBar, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	timeCol, ok := cols["open_time"]
	if !ok {
		return nil, fmt.Errorf("header has no open_time column: %w", ports.ErrMalformedData)
	}

	var rows []domain.RawBar
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		var row domain.RawBar
		if timeCol < len(record) {
			if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[timeCol])); err == nil {
				row.Time = ts
			}
		}
		row.Open = parseCell(cell("open"))
		row.High = parseCell(cell("high"))
		row.Low = parseCell(cell("low"))
		row.Close = parseCell(cell("close"))
		row.Volume = parseCell(cell("volume"))
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteCSV writes bars for one symbol and interval to w.
func WriteCSV(w io.Writer, symbol, interval string, rows []domain.RawBar) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, row := range rows {
		err := writer.Write([]string{
			row.Time.Format(time.RFC3339),
			symbol,
			interval,
			formatCell(row.Open),
			formatCell(row.High),
			formatCell(row.Low),
			formatCell(row.Close),
			formatCell(row.Volume),
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteCSVFile creates (or truncates) the symbol's file in dir.
func WriteCSVFile(dir, symbol, interval string, rows []domain.RawBar) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	path := Path(dir, symbol, interval, FormatCSV)
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	if err := WriteCSV(file, symbol, interval, rows); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

func parseCell(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func formatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
