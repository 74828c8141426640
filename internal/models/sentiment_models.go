package models

// Method names one of the three sentiment strategies.
type Method string

const (
	MethodFinBERT Method = "FinBERT"
	MethodVADER   Method = "VADER"
	MethodLM      Method = "LM"
)

// Methods lists every method in report order.
var Methods = []Method{MethodFinBERT, MethodVADER, MethodLM}

// Counts holds per-class tallies. FinBERT and VADER partition their sentences
// into Positive/Negative/Neutral; LM only reports lexicon hits, with
// Uncertainty in place of Neutral.
type Counts struct {
	Positive    int `json:"positive"`
	Negative    int `json:"negative"`
	Neutral     int `json:"neutral"`
	Uncertainty int `json:"uncertainty"`
}

type ScoreResult struct {
	Method Method  `json:"method"`
	Score  float64 `json:"score"`
	Counts Counts  `json:"counts"`
	// Unavailable marks a method whose backend could not run; Score and
	// Counts are zero.
	Unavailable bool `json:"unavailable,omitempty"`
}

// SentimentResults is the aggregated output of the three scorers.
type SentimentResults struct {
	FinBERT ScoreResult `json:"FinBERT"`
	VADER   ScoreResult `json:"VADER"`
	LM      ScoreResult `json:"LM"`
}

// Get returns the result for m. Unknown methods yield a zero result.
func (r SentimentResults) Get(m Method) ScoreResult {
	switch m {
	case MethodFinBERT:
		return r.FinBERT
	case MethodVADER:
		return r.VADER
	case MethodLM:
		return r.LM
	default:
		return ScoreResult{Method: m}
	}
}

// AsMap always returns exactly one entry per method.
func (r SentimentResults) AsMap() map[Method]ScoreResult {
	out := make(map[Method]ScoreResult, len(Methods))
	for _, m := range Methods {
		out[m] = r.Get(m)
	}
	return out
}
