package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spacesedan/ecsa/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeed struct {
	points []models.PricePoint
	err    error
	calls  int
	start  time.Time
	end    time.Time
}

func (f *fakeFeed) DailyCloses(_ context.Context, _ string, start, end time.Time) ([]models.PricePoint, error) {
	f.calls++
	f.start, f.end = start, end
	return f.points, f.err
}

type memCache struct {
	data map[string][]models.PricePoint
}

func (m *memCache) GetPrices(_ context.Context, key string) ([]models.PricePoint, bool) {
	p, ok := m.data[key]
	return p, ok
}

func (m *memCache) SetPrices(_ context.Context, key string, points []models.PricePoint) error {
	m.data[key] = points
	return nil
}

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestPerformanceTwoCloses(t *testing.T) {
	feed := &fakeFeed{points: []models.PricePoint{{Date: day(2), Close: 100}, {Date: day(3), Close: 110}}}
	c := NewCorrelator(feed, nil)

	got, err := c.Performance(context.Background(), "aapl", time.Date(2024, 5, 2, 16, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got.PercentChange, 1e-9)
	assert.Equal(t, "AAPL", got.Ticker)
	assert.Len(t, got.History, 2)

	assert.Equal(t, day(2), feed.start)
	assert.Equal(t, day(10), feed.end)
}

func TestPerformanceInsufficientData(t *testing.T) {
	tests := []struct {
		name   string
		points []models.PricePoint
	}{
		{"no closes", nil},
		{"one close", []models.PricePoint{{Date: day(2), Close: 100}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCorrelator(&fakeFeed{points: tt.points}, nil)
			got, err := c.Performance(context.Background(), "AAPL", day(2))

			assert.ErrorIs(t, err, ErrInsufficientData)
			assert.Equal(t, 0.0, got.PercentChange)
			assert.Empty(t, got.History)
			assert.False(t, got.HasHistory())
		})
	}
}

func TestPerformanceFeedErrorIsNeutral(t *testing.T) {
	feedErr := errors.New("symbol may be delisted")
	c := NewCorrelator(&fakeFeed{err: feedErr}, nil)

	got, err := c.Performance(context.Background(), "ZZZZ", day(2))
	assert.ErrorIs(t, err, feedErr)
	assert.Equal(t, 0.0, got.PercentChange)
	assert.Nil(t, got.History)
}

func TestPerformanceUsesFirstAndLastRows(t *testing.T) {
	feed := &fakeFeed{points: []models.PricePoint{
		{Date: day(2), Close: 200},
		{Date: day(3), Close: 150},
		{Date: day(6), Close: 250},
		{Date: day(9), Close: 180},
	}}

	got, err := NewCorrelator(feed, nil).Performance(context.Background(), "AAPL", day(2))
	require.NoError(t, err)
	assert.InDelta(t, -10.0, got.PercentChange, 1e-9)
}

func TestPerformanceCache(t *testing.T) {
	feed := &fakeFeed{points: []models.PricePoint{{Date: day(2), Close: 50}, {Date: day(3), Close: 55}}}
	cache := &memCache{data: map[string][]models.PricePoint{}}
	c := NewCorrelator(feed, cache)

	first, err := c.Performance(context.Background(), "AAPL", day(2))
	require.NoError(t, err)
	second, err := c.Performance(context.Background(), "AAPL", day(2))
	require.NoError(t, err)

	assert.Equal(t, 1, feed.calls)
	assert.Equal(t, first, second)
	assert.Contains(t, cache.data, "AAPL:2024-05-02")
}

func TestPerformanceDoesNotCacheShortWindows(t *testing.T) {
	feed := &fakeFeed{points: []models.PricePoint{{Date: day(2), Close: 50}}}
	cache := &memCache{data: map[string][]models.PricePoint{}}

	_, err := NewCorrelator(feed, cache).Performance(context.Background(), "AAPL", day(2))
	assert.ErrorIs(t, err, ErrInsufficientData)
	assert.Empty(t, cache.data)
}

func TestPercentChangeZeroBase(t *testing.T) {
	_, err := PercentChange([]models.PricePoint{{Close: 0}, {Close: 5}})
	assert.ErrorIs(t, err, ErrInsufficientData)
}
