package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"intradayProcessor/config"
	"intradayProcessor/internal/adapters/logger"
	"intradayProcessor/internal/adapters/sqlite"
	"intradayProcessor/internal/ports"
)

func main() {
	ticker := flag.String("ticker", "", "ticker to show; lists archived tickers when empty")
	date := flag.String("date", "", "show only the summary for this date (YYYY-MM-DD)")
	limit := flag.Int("limit", 10, "maximum number of summaries to show (0 for all)")
	asJSON := flag.Bool("json", false, "print the stored summary JSON instead of the text report")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	ctx := context.Background()

	// 3. Open the archive
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open archive %s: %v", cfg.DBPath, err)
	}
	defer repo.Close()

	// 4. Show what was asked for
	switch {
	case *ticker == "":
		err = listTickers(ctx, repo)
	case *date != "":
		var record *ports.ArchivedSummary
		record, err = repo.FindByTickerDate(ctx, *ticker, *date)
		if err == nil && record == nil {
			fmt.Printf("No archived summary for %s on %s.\n", *ticker, *date)
			return
		}
		if err == nil {
			err = printRecord(record, *asJSON)
		}
	default:
		err = showTicker(ctx, repo, *ticker, *limit, *asJSON)
	}
	if err != nil {
		log.Fatalf("Error reading archive: %v", err)
	}
}

func listTickers(ctx context.Context, repo ports.SummaryRepository) error {
	tickers, err := repo.ListTickers(ctx)
	if err != nil {
		return err
	}
	if len(tickers) == 0 {
		fmt.Println("The archive is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Ticker\tLatest\tUpdated\t")
	for _, t := range tickers {
		latest, err := repo.FindByTicker(ctx, t, 1)
		if err != nil {
			return err
		}
		if len(latest) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", t, latest[0].Date, humanize.Time(latest[0].UpdatedAt))
	}
	return w.Flush()
}

func showTicker(ctx context.Context, repo ports.SummaryRepository, ticker string, limit int, asJSON bool) error {
	records, err := repo.FindByTicker(ctx, ticker, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Printf("No archived summaries for %s.\n", ticker)
		return nil
	}
	for i, r := range records {
		if i > 0 {
			fmt.Println()
		}
		if err := printRecord(r, asJSON); err != nil {
			return err
		}
	}
	return nil
}

func printRecord(r *ports.ArchivedSummary, asJSON bool) error {
	fmt.Printf("# %s %s (run %s, updated %s)\n", r.Ticker, r.Date, r.RunID, humanize.Time(r.UpdatedAt))
	if !asJSON {
		fmt.Println(r.RawText)
		return nil
	}
	data, err := json.MarshalIndent(r.Summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
