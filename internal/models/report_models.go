package models

import "time"

const (
	FIGURE_SCORE_COMPARISON   = "score_comparison"
	FIGURE_MARKET_PERFORMANCE = "market_performance"
	FIGURE_WORD_CLOUD         = "word_cloud"
)

// FigureOrder is the order figures appear in the rendered document.
var FigureOrder = []string{
	FIGURE_SCORE_COMPARISON,
	FIGURE_MARKET_PERFORMANCE,
	FIGURE_WORD_CLOUD,
}

// Figure is a rendered chart artifact.
type Figure struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	PNG   []byte `json:"-"`
}

type Figures map[string]Figure

type AnalysisReport struct {
	RunID       string            `json:"run_id"`
	Ticker      string            `json:"ticker"`
	CallDate    time.Time         `json:"call_date"`
	Transcript  Transcript        `json:"transcript"`
	Sentiment   SentimentResults  `json:"sentiment"`
	Market      MarketPerformance `json:"market"`
	Narrative   string            `json:"narrative"`
	Figures     Figures           `json:"-"`
	Warnings    []string          `json:"warnings,omitempty"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt time.Time         `json:"completed_at"`
}
