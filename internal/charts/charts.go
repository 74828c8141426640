// Package charts draws the report figures as PNG images.
package charts

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/ecsa/internal/models"
)

const (
	CHART_WIDTH  = 900
	CHART_HEIGHT = 600
)

// Render draws every figure the inputs support. The market chart is omitted
// without price history and the word cloud is omitted when no word survives
// stop-word filtering.
func Render(results models.SentimentResults, market models.MarketPerformance, ticker, text string) (models.Figures, error) {
	start := time.Now()
	figures := models.Figures{}

	bar, err := ScoreComparison(results)
	if err != nil {
		return nil, fmt.Errorf("score comparison chart: %w", err)
	}
	figures[models.FIGURE_SCORE_COMPARISON] = models.Figure{
		Name:  models.FIGURE_SCORE_COMPARISON,
		Title: "Sentiment Score Comparison",
		PNG:   bar,
	}

	if market.HasHistory() {
		line, err := MarketPerformance(market, ticker)
		if err != nil {
			return nil, fmt.Errorf("market performance chart: %w", err)
		}
		figures[models.FIGURE_MARKET_PERFORMANCE] = models.Figure{
			Name:  models.FIGURE_MARKET_PERFORMANCE,
			Title: fmt.Sprintf("%s Stock Performance Post-Earnings Call", ticker),
			PNG:   line,
		}
	}

	freqs := WordFrequencies(text)
	if len(freqs) > 0 {
		cloud, err := WordCloud(freqs)
		if err != nil {
			return nil, fmt.Errorf("word cloud: %w", err)
		}
		figures[models.FIGURE_WORD_CLOUD] = models.Figure{
			Name:  models.FIGURE_WORD_CLOUD,
			Title: "Most Frequent Terms",
			PNG:   cloud,
		}
	} else {
		slog.Warn("[Charts] No words left for the word cloud, skipping")
	}

	slog.Info("[Charts] Rendered figures",
		slog.Int("figures", len(figures)),
		slog.Duration("elapsed", time.Since(start)))
	return figures, nil
}
