// Package sentiment scores transcript text with three independent methods:
// a contextual classifier (FinBERT), VADER compound polarity, and the
// Loughran-McDonald word lists.
package sentiment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spacesedan/ecsa/internal/lexicon"
	"github.com/spacesedan/ecsa/internal/models"
	"github.com/spacesedan/ecsa/internal/textproc"
)

var ErrMissingLexicon = errors.New("word-list lexicon not loaded")

// Models is the process-wide, read-only scoring bundle. A nil Classifier
// disables FinBERT scoring.
type Models struct {
	Classifier Classifier
	Lexicon    *lexicon.Lexicon
}

type Analysis struct {
	Results   models.SentimentResults
	Sentences int
	Tokens    int
	// Warnings are recoverable problems, such as an unavailable classifier.
	Warnings []error
}

// Analyze splits text and runs the three scorers side by side. Scores stay on
// each method's native scale; no cross-method weighting is applied.
func Analyze(ctx context.Context, text string, m Models) (*Analysis, error) {
	if m.Lexicon == nil {
		return nil, ErrMissingLexicon
	}

	start := time.Now()
	sentences := textproc.Sentences(text)
	tokens := textproc.Words(text)

	analysis := &Analysis{
		Sentences: len(sentences),
		Tokens:    len(tokens),
	}

	finbert, err := ScoreFinBERT(ctx, m.Classifier, sentences)
	if err != nil {
		slog.Warn("[Sentiment] FinBERT scoring skipped",
			slog.String("error", err.Error()))
		analysis.Warnings = append(analysis.Warnings, err)
	}

	analysis.Results = models.SentimentResults{
		FinBERT: finbert,
		VADER:   ScoreVADER(sentences),
		LM:      ScoreLM(m.Lexicon, tokens),
	}

	slog.Info("[Sentiment] Analysis complete",
		slog.Int("sentences", analysis.Sentences),
		slog.Int("tokens", analysis.Tokens),
		slog.Float64("finbert", analysis.Results.FinBERT.Score),
		slog.Float64("vader", analysis.Results.VADER.Score),
		slog.Float64("lm", analysis.Results.LM.Score),
		slog.Duration("elapsed", time.Since(start)))

	return analysis, nil
}

// Analyze scores text with this bundle.
func (m Models) Analyze(ctx context.Context, text string) (*Analysis, error) {
	return Analyze(ctx, text, m)
}
