package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"intradayProcessor/internal/adapters/logger" // Import the logger package for LogLevel
	"intradayProcessor/internal/analytics"
)

// Data sources.
const (
	SourceBinance = "binance"
	SourceCSV     = "csv"
	SourceParquet = "parquet"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	// Market data
	DataSource string // binance, csv or parquet
	DataDir    string // Directory of bar files for the csv and parquet sources

	// Binance API (klines are public; keys are optional)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Session
	Symbols      []string
	SessionDate  time.Time      // Midnight of the trading date in Location
	Location     *time.Location // Exchange timezone the session clock refers to
	SessionStart time.Duration  // Offset from midnight, e.g. 9h30m
	SessionEnd   time.Duration  // Offset from midnight, exclusive
	BarInterval  string         // e.g., "5m"

	// Analytics
	Analytics           analytics.Params
	AnalyticsConfigPath string // Optional YAML overlay

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel

	// Processing
	Workers          int
	FetchMaxAttempts int
	FetchRetryDelay  time.Duration
}

// analyticsFile is the layout of the optional YAML overlay.
type analyticsFile struct {
	Symbols   []string         `yaml:"symbols"`
	Analytics analytics.Params `yaml:"analytics"`
}

// LoadConfig loads configuration from environment variables (.env file),
// then applies the YAML file named by ANALYTICS_CONFIG if set.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Market data
	cfg.DataSource = strings.ToLower(getEnv("DATA_SOURCE", SourceBinance))
	switch cfg.DataSource {
	case SourceBinance, SourceCSV, SourceParquet:
	default:
		errs = append(errs, fmt.Sprintf("DATA_SOURCE must be one of binance, csv, parquet (got %q)", cfg.DataSource))
	}
	cfg.DataDir = getEnv("DATA_DIR", "./data/bars")

	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Session
	cfg.Symbols = parseList(getEnv("SYMBOLS", "BTCUSDT,ETHUSDT"))

	cfg.Location, err = time.LoadLocation(getEnv("SESSION_TIMEZONE", "UTC"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SESSION_TIMEZONE: %v", err))
		cfg.Location = time.UTC
	}

	cfg.SessionDate, err = parseDate(getEnv("SESSION_DATE", ""), cfg.Location, time.Now())
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SESSION_DATE: %v", err))
	}

	cfg.SessionStart, err = parseClock(getEnv("SESSION_START", "00:00"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SESSION_START: %v", err))
	}
	cfg.SessionEnd, err = parseClock(getEnv("SESSION_END", "24:00"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SESSION_END: %v", err))
	}
	if cfg.SessionEnd <= cfg.SessionStart {
		errs = append(errs, "SESSION_END must be after SESSION_START")
	}

	cfg.BarInterval = getEnv("BAR_INTERVAL", "5m")

	// Analytics
	cfg.Analytics = analytics.DefaultParams()
	cfg.Analytics.OpeningRangeMinutes, err = getEnvAsIntRequired("OPENING_RANGE_MINUTES", cfg.Analytics.OpeningRangeMinutes)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid OPENING_RANGE_MINUTES: %v", err))
	}
	cfg.Analytics.ProfileBins, err = getEnvAsIntRequired("PROFILE_BINS", cfg.Analytics.ProfileBins)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PROFILE_BINS: %v", err))
	}
	cfg.Analytics.KeyEventCount, err = getEnvAsIntRequired("KEY_EVENT_COUNT", cfg.Analytics.KeyEventCount)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid KEY_EVENT_COUNT: %v", err))
	}
	cfg.Analytics.KeyEventPolicy = strings.ToLower(getEnv("KEY_EVENT_POLICY", cfg.Analytics.KeyEventPolicy))
	cfg.Analytics.OutlierStdDevs, err = getEnvAsFloatRequired("KEY_EVENT_STDDEV", cfg.Analytics.OutlierStdDevs)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid KEY_EVENT_STDDEV: %v", err))
	}

	cfg.AnalyticsConfigPath = getEnv("ANALYTICS_CONFIG", "")
	if cfg.AnalyticsConfigPath != "" {
		if err := cfg.applyFile(cfg.AnalyticsConfigPath); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(cfg.Symbols) == 0 {
		errs = append(errs, "SYMBOLS must list at least one symbol")
	}
	if err := cfg.Analytics.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/analysis_database.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Logging
	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	// Processing
	cfg.Workers = getEnvAsInt("WORKERS", 4)
	if cfg.Workers <= 0 {
		errs = append(errs, "WORKERS must be positive")
	}
	cfg.FetchMaxAttempts = getEnvAsInt("FETCH_MAX_ATTEMPTS", 3)
	if cfg.FetchMaxAttempts <= 0 {
		errs = append(errs, "FETCH_MAX_ATTEMPTS must be positive")
	}
	retryDelayMs := getEnvAsInt("FETCH_RETRY_DELAY_MS", 500)
	if retryDelayMs <= 0 {
		errs = append(errs, "FETCH_RETRY_DELAY_MS must be positive")
	}
	cfg.FetchRetryDelay = time.Duration(retryDelayMs) * time.Millisecond

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// applyFile overlays the YAML file at path. Keys absent from the file keep
// their current values.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading ANALYTICS_CONFIG %s: %v", path, err)
	}
	file := analyticsFile{Analytics: c.Analytics}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing ANALYTICS_CONFIG %s: %v", path, err)
	}
	c.Analytics = file.Analytics
	if len(file.Symbols) > 0 {
		c.Symbols = normalizeSymbols(file.Symbols)
	}
	return nil
}

// AnalyticsParams returns the parameters for analytics.Analyze.
func (c *Config) AnalyticsParams() analytics.Params {
	return c.Analytics
}

// SessionWindow returns the [start, end) instants of the session on date.
// Offsets are applied to the calendar date so daylight-saving shifts keep
// the wall-clock times.
func (c *Config) SessionWindow(date time.Time) (time.Time, time.Time) {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	at := func(offset time.Duration) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, loc).Add(offset)
	}
	return at(c.SessionStart), at(c.SessionEnd)
}

// --- Parsing Helpers ---

func parseList(s string) []string {
	return normalizeSymbols(strings.Split(s, ","))
}

func normalizeSymbols(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// parseDate parses YYYY-MM-DD in loc. An empty value means the day before now.
func parseDate(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.In(loc).AddDate(0, 0, -1).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
	}
	return time.ParseInLocation(dateLayout, s, loc)
}

// parseClock parses HH:MM as an offset from midnight; 24:00 is accepted as
// the end of the day.
func parseClock(s string) (time.Duration, error) {
	if s == "24:00" {
		return 24 * time.Hour, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
