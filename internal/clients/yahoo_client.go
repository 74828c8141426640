package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/ecsa/internal/metrics"
	"github.com/spacesedan/ecsa/internal/models"
	"golang.org/x/time/rate"
)

const (
	YAHOO_BASE_URL   = "https://query1.finance.yahoo.com"
	YAHOO_TIMEOUT    = 30 * time.Second
	YAHOO_RATE_LIMIT = 2
)

// APIError is returned for non-200 responses from the chart API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chart API %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// YahooClient fetches daily price history from the Yahoo Finance chart API.
type YahooClient struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	initialBackoff time.Duration
}

type YahooOption func(*YahooClient)

func WithYahooBaseURL(baseURL string) YahooOption {
	return func(c *YahooClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithYahooHTTPClient(httpClient *http.Client) YahooOption {
	return func(c *YahooClient) {
		c.httpClient = httpClient
	}
}

func WithYahooBackoff(d time.Duration) YahooOption {
	return func(c *YahooClient) {
		c.initialBackoff = d
	}
}

func NewYahooClient(opts ...YahooOption) *YahooClient {
	c := &YahooClient{
		baseURL: YAHOO_BASE_URL,
		httpClient: &http.Client{
			Timeout: YAHOO_TIMEOUT,
		},
		limiter:        rate.NewLimiter(rate.Limit(YAHOO_RATE_LIMIT), YAHOO_RATE_LIMIT),
		initialBackoff: INITIAL_BACKOFF,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DailyCloses returns one close per trading day in [start, end), oldest
// first. Adjusted closes are preferred; days without a close are skipped.
func (c *YahooClient) DailyCloses(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")
	params.Set("includeAdjustedClose", "true")

	path := "/v8/finance/chart/" + url.PathEscape(strings.ToUpper(ticker))

	var chart models.YahooChartResponse
	if err := c.getWithRetry(ctx, path, params, &chart); err != nil {
		metrics.RemoteCallsTotal.WithLabelValues("market", "error").Inc()
		return nil, err
	}
	metrics.RemoteCallsTotal.WithLabelValues("market", "ok").Inc()

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error %s: %s", chart.Chart.Error.Code, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	points := toPricePoints(chart.Chart.Result[0])
	slog.Info("[YahooClient] Fetched price history",
		slog.String("ticker", ticker),
		slog.Int("points", len(points)))
	return points, nil
}

func (c *YahooClient) getWithRetry(ctx context.Context, path string, params url.Values, result interface{}) error {
	var lastErr error
	backoff := c.initialBackoff

	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		lastErr = c.get(ctx, path, params, result)
		if lastErr == nil {
			return nil
		}

		apiErr, ok := lastErr.(*APIError)
		retryable := !ok || apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
		if !retryable || attempt == MAX_RETRIES {
			break
		}

		slog.Warn("[YahooClient] Request failed, retrying...",
			slog.String("error", lastErr.Error()),
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}
	return lastErr
}

func (c *YahooClient) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept", "application/json")

	slog.Debug("[YahooClient] Chart API request", slog.String("url", c.baseURL+path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func toPricePoints(r models.YahooChartResult) []models.PricePoint {
	loc := time.UTC
	if r.Meta.Timezone != "" {
		if l, err := time.LoadLocation(r.Meta.Timezone); err == nil {
			loc = l
		}
	}

	var closes []*float64
	if len(r.Indicators.AdjClose) > 0 && len(r.Indicators.AdjClose[0].AdjClose) == len(r.Timestamp) {
		closes = r.Indicators.AdjClose[0].AdjClose
	} else if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	points := make([]models.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		local := time.Unix(ts, 0).In(loc)
		points = append(points, models.PricePoint{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Close: *closes[i],
		})
	}
	return points
}
