package sentiment

import (
	"github.com/spacesedan/ecsa/internal/lexicon"
	"github.com/spacesedan/ecsa/internal/models"
)

// ScoreLM counts lexicon hits among lowercase tokens. A token found in several
// lists counts once per list. Uncertainty hits are reported but do not move
// the score.
func ScoreLM(lex *lexicon.Lexicon, tokens []string) models.ScoreResult {
	result := models.ScoreResult{Method: models.MethodLM}

	for _, tok := range tokens {
		if lex.IsPositive(tok) {
			result.Counts.Positive++
		}
		if lex.IsNegative(tok) {
			result.Counts.Negative++
		}
		if lex.IsUncertainty(tok) {
			result.Counts.Uncertainty++
		}
	}

	if total := result.Counts.Positive + result.Counts.Negative; total > 0 {
		result.Score = float64(result.Counts.Positive-result.Counts.Negative) / float64(total)
	}
	return result
}
