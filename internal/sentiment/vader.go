package sentiment

import (
	"github.com/jonreiter/govader"
	"github.com/spacesedan/ecsa/internal/models"
)

const (
	VADER_POSITIVE_THRESHOLD = 0.05
	VADER_NEGATIVE_THRESHOLD = -0.05
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// Compound returns the VADER compound polarity of a sentence in [-1, 1].
func Compound(sentence string) float64 {
	return analyzer.PolarityScores(sentence).Compound
}

// ScoreVADER averages the compound polarity of each sentence.
func ScoreVADER(sentences []string) models.ScoreResult {
	compounds := make([]float64, 0, len(sentences))
	for _, s := range sentences {
		compounds = append(compounds, Compound(s))
	}
	return scoreCompounds(compounds)
}

func scoreCompounds(compounds []float64) models.ScoreResult {
	result := models.ScoreResult{Method: models.MethodVADER}
	if len(compounds) == 0 {
		return result
	}

	var sum float64
	for _, c := range compounds {
		sum += c
		switch classifyCompound(c) {
		case LABEL_POSITIVE:
			result.Counts.Positive++
		case LABEL_NEGATIVE:
			result.Counts.Negative++
		}
	}

	result.Counts.Neutral = len(compounds) - result.Counts.Positive - result.Counts.Negative
	result.Score = sum / float64(len(compounds))
	return result
}

// classifyCompound uses exclusive thresholds: exactly ±0.05 is neutral.
func classifyCompound(score float64) string {
	if score > VADER_POSITIVE_THRESHOLD {
		return LABEL_POSITIVE
	} else if score < VADER_NEGATIVE_THRESHOLD {
		return LABEL_NEGATIVE
	}
	return LABEL_NEUTRAL
}
