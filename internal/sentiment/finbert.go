package sentiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spacesedan/ecsa/internal/models"
)

const (
	LABEL_POSITIVE = "positive"
	LABEL_NEGATIVE = "negative"
	LABEL_NEUTRAL  = "neutral"
)

var ErrClassifierUnavailable = errors.New("sentiment classifier unavailable")

// Classifier assigns one label per sentence, in input order.
type Classifier interface {
	Classify(ctx context.Context, sentences []string) ([]string, error)
}

// ScoreFinBERT runs the classifier over sentences. When the classifier is
// missing or fails, the result is marked Unavailable and the returned error
// wraps ErrClassifierUnavailable; the zero-valued result is still usable.
func ScoreFinBERT(ctx context.Context, c Classifier, sentences []string) (models.ScoreResult, error) {
	result := models.ScoreResult{Method: models.MethodFinBERT}
	if len(sentences) == 0 {
		return result, nil
	}

	if c == nil {
		result.Unavailable = true
		return result, ErrClassifierUnavailable
	}

	labels, err := c.Classify(ctx, sentences)
	if err != nil {
		result.Unavailable = true
		return result, fmt.Errorf("%w: %w", ErrClassifierUnavailable, err)
	}
	if len(labels) != len(sentences) {
		result.Unavailable = true
		return result, fmt.Errorf("%w: got %d labels for %d sentences",
			ErrClassifierUnavailable, len(labels), len(sentences))
	}

	return scoreLabels(labels), nil
}

// scoreLabels counts positive and negative labels; every other label,
// including an explicit neutral, falls into the neutral residual.
func scoreLabels(labels []string) models.ScoreResult {
	result := models.ScoreResult{Method: models.MethodFinBERT}
	if len(labels) == 0 {
		return result
	}

	for _, l := range labels {
		switch strings.ToLower(strings.TrimSpace(l)) {
		case LABEL_POSITIVE:
			result.Counts.Positive++
		case LABEL_NEGATIVE:
			result.Counts.Negative++
		}
	}

	result.Counts.Neutral = len(labels) - result.Counts.Positive - result.Counts.Negative
	result.Score = float64(result.Counts.Positive-result.Counts.Negative) / float64(len(labels))
	return result
}
