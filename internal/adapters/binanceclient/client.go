package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"intradayProcessor/internal/domain"
	"intradayProcessor/internal/ports"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/jpillora/backoff"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// maxLimit is the largest page the klines endpoint serves.
	maxLimit = 1500
)

// klineSource is the part of the futures API the client pages through.
type klineSource interface {
	Klines(ctx context.Context, symbol, interval string, startMs, endMs int64, limit int) ([]*futures.Kline, error)
}

type futuresSource struct {
	client *futures.Client
}

func (s futuresSource) Klines(ctx context.Context, symbol, interval string, startMs, endMs int64, limit int) ([]*futures.Kline, error) {
	return s.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		StartTime(startMs).
		EndTime(endMs).
		Limit(limit).
		Do(ctx)
}

// Client implements the ports.BarProvider interface using the go-binance library.
type Client struct {
	futuresClient *futures.Client
	source        klineSource
	logger        ports.Logger
	retryDelay    time.Duration
	maxAttempts   int
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey      string
	SecretKey   string
	UseTestnet  bool
	Logger      ports.Logger
	RetryDelay  time.Duration // Initial delay between retries of a failed page (e.g., 500 * time.Millisecond)
	MaxAttempts int           // Attempts per page before giving up
}

// New creates a new Binance client adapter. Klines are public market data,
// so empty API keys are accepted.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using global futures.UseTestnet
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance client configured for Testnet", map[string]interface{}{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance client configured for Production", map[string]interface{}{"baseURL": client.BaseURL})
	}

	return newClient(futuresSource{client: client}, cfg.Logger, cfg.RetryDelay, cfg.MaxAttempts, client), nil
}

func newClient(source klineSource, logger ports.Logger, retryDelay time.Duration, maxAttempts int, fc *futures.Client) *Client {
	if retryDelay <= 0 {
		retryDelay = 500 * time.Millisecond
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Client{
		futuresClient: fc,
		source:        source,
		logger:        logger,
		retryDelay:    retryDelay,
		maxAttempts:   maxAttempts,
	}
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022, -2014, -2015: // Signature or API-key rejected
			mappedErr = ports.ErrAuthenticationFailed
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1121, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -1001, -1007: // Internal error / backend timeout
			mappedErr = ports.ErrProviderUnavailable
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	if errors.Is(err, context.DeadlineExceeded) {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	} else if errors.Is(err, context.Canceled) {
		finalErr = fmt.Errorf("%s operation canceled: %w: %w", operation, ports.ErrContextCanceled, err)
	} else if strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "no such host") {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	} else {
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// retryable reports whether a page request may succeed if repeated.
func retryable(err error) bool {
	return errors.Is(err, ports.ErrRateLimited) ||
		errors.Is(err, ports.ErrConnectionFailed) ||
		errors.Is(err, ports.ErrProviderUnavailable) ||
		(errors.Is(err, ports.ErrTimeout) && !errors.Is(err, context.DeadlineExceeded))
}

// Ping checks the connectivity to the exchange API.
func (c *Client) Ping(ctx context.Context) error {
	op := "Ping"
	if c.futuresClient == nil {
		return nil
	}
	if err := c.futuresClient.NewPingService().Do(ctx); err != nil {
		return c.handleError(ctx, fmt.Errorf("ping failed: %w", err), op)
	}
	c.logger.Debug(ctx, op+" successful")
	return nil
}

// FetchBars fetches every kline for symbol/interval opening in [start, end).
// Pages of up to 1500 klines are requested in turn; a page that fails with a
// transient error is retried with exponential backoff.
func (c *Client) FetchBars(ctx context.Context, symbol, interval string, start, end time.Time) ([]domain.RawBar, error) {
	op := "FetchBars"
	if !end.After(start) {
		return nil, fmt.Errorf("%s: end %s is not after start %s: %w", op, end, start, ports.ErrInvalidRequest)
	}

	var bars []domain.RawBar
	fromMs := start.UnixMilli()
	endMs := end.UnixMilli() - 1 // Binance treats endTime as inclusive

	for fromMs <= endMs {
		klines, err := c.fetchPage(ctx, symbol, interval, fromMs, endMs)
		if err != nil {
			return nil, err
		}
		if len(klines) == 0 {
			break
		}
		for _, bk := range klines {
			if bk == nil {
				continue
			}
			bars = append(bars, translateBinanceKline(bk))
		}
		last := klines[len(klines)-1]
		if last == nil || len(klines) < maxLimit {
			break
		}
		fromMs = last.OpenTime + 1
	}

	c.logger.Debug(ctx, "Fetched bars", map[string]interface{}{"symbol": symbol, "interval": interval, "count": len(bars)})
	return bars, nil
}

func (c *Client) fetchPage(ctx context.Context, symbol, interval string, fromMs, endMs int64) ([]*futures.Kline, error) {
	op := "FetchBars"
	b := &backoff.Backoff{
		Min:    c.retryDelay,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: true,
	}

	for attempt := 1; ; attempt++ {
		klines, err := c.source.Klines(ctx, symbol, interval, fromMs, endMs, maxLimit)
		if err == nil {
			return klines, nil
		}
		mapped := c.handleError(ctx, err, op)
		if !retryable(mapped) || attempt >= c.maxAttempts {
			return nil, mapped
		}

		wait := b.Duration()
		c.logger.Warn(ctx, "Retrying kline page", map[string]interface{}{
			"symbol": symbol, "attempt": attempt, "wait": wait.String(),
		})
		select {
		case <-ctx.Done():
			return nil, c.handleError(ctx, ctx.Err(), op)
		case <-time.After(wait):
		}
	}
}

// translateBinanceKline converts a kline into a RawBar. Fields that do not
// parse as numbers are left nil for the validator to reject.
func translateBinanceKline(bk *futures.Kline) domain.RawBar {
	return domain.RawBar{
		Time:   time.UnixMilli(bk.OpenTime).UTC(),
		Open:   parseField(bk.Open),
		High:   parseField(bk.High),
		Low:    parseField(bk.Low),
		Close:  parseField(bk.Close),
		Volume: parseField(bk.Volume),
	}
}

func parseField(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
