package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spacesedan/ecsa/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestCleanserReturnsPlainText(t *testing.T) {
	fc := &fakeCompleter{reply: "```markdown\nRevenue grew **strongly** this quarter.\n\nMargins held.\n```"}
	c := NewCleanser(fc)

	got, err := c.Clean(context.Background(), "Operator: welcome. Revenue grew strongly this quarter.")
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew strongly this quarter.\n\nMargins held.", got)

	require.Len(t, fc.prompts, 1)
	assert.True(t, strings.HasPrefix(fc.prompts[0], "Please remove all operator instructions"))
	assert.True(t, strings.HasSuffix(fc.prompts[0], "\n\n---\n\nOperator: welcome. Revenue grew strongly this quarter."))
}

func TestCleanserFallsBackToRaw(t *testing.T) {
	raw := "  Operator: welcome.\nRevenue grew.  "

	tests := []struct {
		name   string
		client Completer
		target error
	}{
		{"transport error", &fakeCompleter{err: errors.New("connection refused")}, nil},
		{"empty reply", &fakeCompleter{reply: "   "}, ErrEmptyResponse},
		{"no client", nil, ErrEmptyResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCleanser(tt.client).Clean(context.Background(), raw)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Equal(t, raw, got, "fallback must be the raw transcript exactly")
		})
	}
}

func TestNarratorPromptCarriesScores(t *testing.T) {
	fc := &fakeCompleter{reply: "**Executive Summary**\nSolid quarter."}
	n := NewNarrator(fc)

	results := models.SentimentResults{
		FinBERT: models.ScoreResult{Method: models.MethodFinBERT, Score: 0.3333333},
		VADER:   models.ScoreResult{Method: models.MethodVADER, Score: -0.05},
		LM:      models.ScoreResult{Method: models.MethodLM, Score: 1},
	}
	cleaned := strings.Repeat("a", 1500)

	got, err := n.Generate(context.Background(), cleaned, results, 10)
	require.NoError(t, err)
	assert.Equal(t, "**Executive Summary**\nSolid quarter.", got)

	require.Len(t, fc.prompts, 1)
	prompt := fc.prompts[0]
	assert.Contains(t, prompt, "FinBERT Score: 0.333")
	assert.Contains(t, prompt, "VADER Score: -0.050")
	assert.Contains(t, prompt, "LM Score: 1.000")
	assert.Contains(t, prompt, "changed by **10.00%**")
	assert.Contains(t, prompt, strings.Repeat("a", 1000)+"...")
	assert.NotContains(t, prompt, strings.Repeat("a", 1001))
}

func TestNarratorFailure(t *testing.T) {
	n := NewNarrator(&fakeCompleter{err: errors.New("timeout")})

	got, err := n.Generate(context.Background(), "text", models.SentimentResults{}, 0)
	assert.Error(t, err)
	assert.Equal(t, REPORT_FAILED_TEXT, got)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", truncateRunes("héllo", 4))
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "", truncateRunes("", 3))
}

func TestCleanResponse(t *testing.T) {
	assert.Equal(t, `He said "up".`, cleanResponse("```\nHe said “up”.\n```"))
	assert.Equal(t, "plain", cleanResponse("  plain \n"))
}
