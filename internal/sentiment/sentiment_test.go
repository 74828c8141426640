package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/spacesedan/ecsa/internal/lexicon"
	"github.com/spacesedan/ecsa/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeClassifier struct {
	labels []string
	err    error
	calls  int
}

func (f *fakeClassifier) Classify(ctx context.Context, sentences []string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.labels != nil {
		return f.labels, nil
	}
	out := make([]string, len(sentences))
	for i := range out {
		out[i] = LABEL_POSITIVE
	}
	return out, nil
}

func testLexicon() *lexicon.Lexicon {
	return lexicon.New(
		[]string{"strong", "strongly", "achieve", "gain"},
		[]string{"loss", "decline", "volatile"},
		[]string{"uncertain", "may", "volatile"},
	)
}

// --- FinBERT ---

func TestScoreFinBERTCountsAndScore(t *testing.T) {
	c := &fakeClassifier{labels: []string{"positive", "negative", "neutral", "Positive", "other"}}

	got, err := ScoreFinBERT(context.Background(), c, make([]string, 5))
	require.NoError(t, err)

	assert.Equal(t, models.Counts{Positive: 2, Negative: 1, Neutral: 2}, got.Counts)
	assert.InDelta(t, 0.2, got.Score, 1e-12)
	assert.False(t, got.Unavailable)
}

func TestScoreFinBERTNoSentences(t *testing.T) {
	c := &fakeClassifier{}

	got, err := ScoreFinBERT(context.Background(), c, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, models.Counts{}, got.Counts)
	assert.Equal(t, 0, c.calls, "classifier should not run without sentences")
}

func TestScoreFinBERTUnavailable(t *testing.T) {
	tests := []struct {
		name string
		c    Classifier
	}{
		{"nil classifier", nil},
		{"classifier error", &fakeClassifier{err: errors.New("onnxruntime missing")}},
		{"label count mismatch", &fakeClassifier{labels: []string{"positive"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ScoreFinBERT(context.Background(), tt.c, []string{"a.", "b."})

			assert.ErrorIs(t, err, ErrClassifierUnavailable)
			assert.True(t, got.Unavailable)
			assert.Equal(t, models.MethodFinBERT, got.Method)
			assert.Equal(t, 0.0, got.Score)
			assert.Equal(t, models.Counts{}, got.Counts)
		})
	}
}

// --- VADER ---

func TestClassifyCompoundBoundariesAreExclusive(t *testing.T) {
	assert.Equal(t, LABEL_NEUTRAL, classifyCompound(0.05))
	assert.Equal(t, LABEL_NEUTRAL, classifyCompound(-0.05))
	assert.Equal(t, LABEL_NEUTRAL, classifyCompound(0))
	assert.Equal(t, LABEL_POSITIVE, classifyCompound(0.0501))
	assert.Equal(t, LABEL_NEGATIVE, classifyCompound(-0.0501))
}

func TestScoreCompounds(t *testing.T) {
	got := scoreCompounds([]float64{0.5, -0.5, 0.05, -0.05, 0.9})

	assert.Equal(t, models.Counts{Positive: 2, Negative: 1, Neutral: 2}, got.Counts)
	assert.InDelta(t, 0.18, got.Score, 1e-12)
	assert.Equal(t, models.MethodVADER, got.Method)
}

func TestScoreVADERNoSentences(t *testing.T) {
	got := ScoreVADER(nil)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, models.Counts{}, got.Counts)
}

func TestScoreVADERPolarity(t *testing.T) {
	pos := ScoreVADER([]string{"This is a great and wonderful result."})
	neg := ScoreVADER([]string{"This is a terrible and awful failure."})

	assert.Equal(t, 1, pos.Counts.Positive)
	assert.Greater(t, pos.Score, 0.05)
	assert.Equal(t, 1, neg.Counts.Negative)
	assert.Less(t, neg.Score, -0.05)
}

// --- Loughran-McDonald ---

func TestScoreLM(t *testing.T) {
	tokens := []string{"strong", "gain", "loss", "uncertain", "volatile", "the"}

	got := ScoreLM(testLexicon(), tokens)

	// volatile is both negative and uncertain and counts in both
	assert.Equal(t, models.Counts{Positive: 2, Negative: 2, Uncertainty: 2}, got.Counts)
	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, models.MethodLM, got.Method)
}

func TestScoreLMNoHitsIsZero(t *testing.T) {
	got := ScoreLM(testLexicon(), []string{"uncertain", "may", "the", "quarter"})

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, 2, got.Counts.Uncertainty)
	assert.Equal(t, 0, got.Counts.Neutral, "LM does not produce a neutral bucket")
}

func TestScoreLMRatio(t *testing.T) {
	got := ScoreLM(testLexicon(), []string{"strong", "achieve", "gain", "decline"})
	assert.InDelta(t, 0.5, got.Score, 1e-12)
}

// --- Aggregation ---

func TestAnalyzeRequiresLexicon(t *testing.T) {
	_, err := Analyze(context.Background(), "text", Models{})
	assert.ErrorIs(t, err, ErrMissingLexicon)
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	a, err := Analyze(context.Background(), "", Models{Classifier: &fakeClassifier{}, Lexicon: testLexicon()})
	require.NoError(t, err)

	assert.Equal(t, 0, a.Sentences)
	assert.Empty(t, a.Warnings)
	assert.Len(t, a.Results.AsMap(), 3)
	for _, m := range models.Methods {
		r := a.Results.Get(m)
		assert.Equal(t, 0.0, r.Score, m)
		assert.Equal(t, models.Counts{}, r.Counts, m)
	}
}

func TestAnalyzeEndToEndSentence(t *testing.T) {
	text := "Revenue grew strongly. We are uncertain about next quarter."
	a, err := Analyze(context.Background(), text, Models{
		Classifier: &fakeClassifier{labels: []string{"positive", "neutral"}},
		Lexicon:    testLexicon(),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, a.Sentences)
	assert.Equal(t, models.Counts{Positive: 1, Negative: 0, Neutral: 1}, a.Results.FinBERT.Counts)
	assert.InDelta(t, 0.5, a.Results.FinBERT.Score, 1e-12)
	assert.Equal(t, 2, a.Results.VADER.Counts.Positive+a.Results.VADER.Counts.Negative+a.Results.VADER.Counts.Neutral)

	assert.Equal(t, 1, a.Results.LM.Counts.Uncertainty)
	assert.Equal(t, 1, a.Results.LM.Counts.Positive)
	assert.Equal(t, 1.0, a.Results.LM.Score, "uncertainty does not affect the score")
}

func TestAnalyzeDegradesWithoutClassifier(t *testing.T) {
	a, err := Analyze(context.Background(), "Margins improved. Costs fell.", Models{Lexicon: testLexicon()})
	require.NoError(t, err)

	require.Len(t, a.Warnings, 1)
	assert.ErrorIs(t, a.Warnings[0], ErrClassifierUnavailable)
	assert.True(t, a.Results.FinBERT.Unavailable)
	assert.Len(t, a.Results.AsMap(), 3)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	text := "Demand was strong across regions. However, supply constraints may persist. We delivered record gains."
	m := Models{Classifier: &fakeClassifier{}, Lexicon: testLexicon()}

	first, err := Analyze(context.Background(), text, m)
	require.NoError(t, err)
	second, err := Analyze(context.Background(), text, m)
	require.NoError(t, err)

	assert.Equal(t, first.Results, second.Results)
}
