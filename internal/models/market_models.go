package models

import "time"

type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

type MarketPerformance struct {
	Ticker        string       `json:"ticker"`
	PercentChange float64      `json:"percent_change"`
	History       []PricePoint `json:"history,omitempty"`
}

// HasHistory reports whether enough closes were found to draw a price chart.
func (m MarketPerformance) HasHistory() bool {
	return len(m.History) >= 2
}
