package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"intradayProcessor/config"
	"intradayProcessor/internal/adapters/barfile"
	"intradayProcessor/internal/adapters/binanceclient"
	"intradayProcessor/internal/adapters/logger"
)

func main() {
	format := flag.String("format", barfile.FormatCSV, "output format: csv or parquet")
	outDir := flag.String("out", "", "output directory (defaults to DATA_DIR)")
	days := flag.Int("days", 1, "number of calendar days to fetch, ending on SESSION_DATE")
	flag.Parse()

	if *format != barfile.FormatCSV && *format != barfile.FormatParquet {
		log.Fatalf("FATAL: unknown format %q", *format)
	}
	if *days < 1 {
		log.Fatalf("FATAL: -days must be at least 1")
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}
	if *outDir == "" {
		*outDir = cfg.DataDir
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()
	ctx := context.Background()

	// 3. Initialize Exchange Client (Binance Adapter)
	binanceClient, err := binanceclient.New(binanceclient.Config{
		APIKey:      cfg.APIKey,
		SecretKey:   cfg.SecretKey,
		UseTestnet:  cfg.IsTestnet,
		Logger:      appLogger,
		RetryDelay:  cfg.FetchRetryDelay,
		MaxAttempts: cfg.FetchMaxAttempts,
	})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	if err := binanceClient.Ping(ctx); err != nil {
		log.Fatalf("FATAL: Binance API unreachable: %v", err)
	}

	// 4. Fetch whole calendar days so any session window can be cut from the file later
	y, m, d := cfg.SessionDate.Date()
	end := time.Date(y, m, d+1, 0, 0, 0, 0, cfg.Location)
	start := time.Date(y, m, d+1-*days, 0, 0, 0, 0, cfg.Location)

	for _, symbol := range cfg.Symbols {
		fmt.Printf("Fetching %s %s bars from %s to %s...\n", symbol, cfg.BarInterval, start.Format("2006-01-02 15:04 MST"), end.Format("2006-01-02 15:04 MST"))
		bars, err := binanceClient.FetchBars(ctx, symbol, cfg.BarInterval, start, end)
		if err != nil {
			appLogger.Error(ctx, err, "Error fetching bars", map[string]interface{}{"symbol": symbol})
			log.Fatalf("Error fetching bars for %s: %v", symbol, err)
		}

		var path string
		switch *format {
		case barfile.FormatParquet:
			path, err = barfile.WriteParquetFile(*outDir, symbol, cfg.BarInterval, bars)
		default:
			path, err = barfile.WriteCSVFile(*outDir, symbol, cfg.BarInterval, bars)
		}
		if err != nil {
			appLogger.Error(ctx, err, "Error writing bar file", map[string]interface{}{"symbol": symbol})
			log.Fatalf("Error writing bar file for %s: %v", symbol, err)
		}
		fmt.Printf("Saved %s bars to %s\n", humanize.Comma(int64(len(bars))), path)
	}
	fmt.Printf("Done: %s\n", strings.Join(cfg.Symbols, ", "))
}
