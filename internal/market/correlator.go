// Package market measures how a stock moved in the days after an earnings call.
package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/ecsa/internal/models"
)

const (
	// WINDOW_DAYS is the calendar length of the lookup window, reference day included.
	WINDOW_DAYS = 8
)

var ErrInsufficientData = errors.New("not enough market data in window")

// PriceFeed returns daily closes in [start, end), oldest first.
type PriceFeed interface {
	DailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error)
}

// PriceCache stores fetched price windows. Implementations may drop writes.
type PriceCache interface {
	GetPrices(ctx context.Context, key string) ([]models.PricePoint, bool)
	SetPrices(ctx context.Context, key string, points []models.PricePoint) error
}

type Correlator struct {
	feed  PriceFeed
	cache PriceCache
}

// NewCorrelator builds a correlator. cache may be nil.
func NewCorrelator(feed PriceFeed, cache PriceCache) *Correlator {
	return &Correlator{feed: feed, cache: cache}
}

// Performance returns the percent change between the first and last close in
// the window starting at refDate. Missing or short data yields a zero change,
// no history, and a non-nil warning; it never fails the caller.
func (c *Correlator) Performance(ctx context.Context, ticker string, refDate time.Time) (models.MarketPerformance, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	start, end := Window(refDate)
	neutral := models.MarketPerformance{Ticker: ticker}

	points, err := c.prices(ctx, ticker, start, end)
	if err != nil {
		slog.Warn("[Market] Failed to fetch market data",
			slog.String("ticker", ticker),
			slog.String("error", err.Error()))
		return neutral, fmt.Errorf("failed to fetch market data for %s: %w", ticker, err)
	}

	if len(points) < 2 {
		slog.Warn("[Market] Not enough market data, need at least 2 trading days",
			slog.String("ticker", ticker),
			slog.String("start", start.Format(time.DateOnly)),
			slog.Int("points", len(points)))
		return neutral, fmt.Errorf("%s after %s: %w", ticker, start.Format(time.DateOnly), ErrInsufficientData)
	}

	change, err := PercentChange(points)
	if err != nil {
		return neutral, fmt.Errorf("%s after %s: %w", ticker, start.Format(time.DateOnly), err)
	}

	slog.Info("[Market] Computed market reaction",
		slog.String("ticker", ticker),
		slog.Int("points", len(points)),
		slog.String("percent_change", fmt.Sprintf("%.2f", change)))

	return models.MarketPerformance{
		Ticker:        ticker,
		PercentChange: change,
		History:       points,
	}, nil
}

func (c *Correlator) prices(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	key := cacheKey(ticker, start)
	if c.cache != nil {
		if points, ok := c.cache.GetPrices(ctx, key); ok {
			slog.Debug("[Market] Cache hit", slog.String("key", key))
			return points, nil
		}
	}

	if c.feed == nil {
		return nil, errors.New("no price feed configured")
	}

	points, err := c.feed.DailyCloses(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	// only windows with enough closes are cached
	if c.cache != nil && len(points) >= 2 {
		if err := c.cache.SetPrices(ctx, key, points); err != nil {
			slog.Warn("[Market] Failed to cache prices",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
	return points, nil
}

// Window returns the lookup window for a call held on refDate.
func Window(refDate time.Time) (time.Time, time.Time) {
	start := time.Date(refDate.Year(), refDate.Month(), refDate.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, WINDOW_DAYS)
}

// PercentChange is (last - first) / first * 100 over the given closes.
func PercentChange(points []models.PricePoint) (float64, error) {
	if len(points) < 2 {
		return 0, ErrInsufficientData
	}
	first, last := points[0].Close, points[len(points)-1].Close
	if first == 0 {
		return 0, fmt.Errorf("first close is zero: %w", ErrInsufficientData)
	}
	return (last - first) / first * 100, nil
}

func cacheKey(ticker string, start time.Time) string {
	return ticker + ":" + start.Format(time.DateOnly)
}
