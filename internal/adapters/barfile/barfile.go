// Package barfile stores and serves session bars as local CSV or Parquet files.
package barfile

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"intradayProcessor/internal/domain"
)

// Supported file formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
)

// FileName returns the file holding a symbol's bars for one interval.
func FileName(symbol, interval, format string) string {
	return fmt.Sprintf("%s_%s.%s", strings.ToUpper(symbol), interval, format)
}

// Path joins dir with FileName.
func Path(dir, symbol, interval, format string) string {
	return filepath.Join(dir, FileName(symbol, interval, format))
}

// inWindow reports whether t falls in [start, end).
func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func filterWindow(rows []domain.RawBar, start, end time.Time) []domain.RawBar {
	out := rows[:0]
	for _, row := range rows {
		if inWindow(row.Time, start, end) {
			out = append(out, row)
		}
	}
	return out
}
