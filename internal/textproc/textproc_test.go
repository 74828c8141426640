package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentences(t *testing.T) {
	got := Sentences("Revenue grew strongly. We are uncertain about next quarter.")
	require.Len(t, got, 2)
	assert.Equal(t, "Revenue grew strongly.", got[0])
	assert.Equal(t, "We are uncertain about next quarter.", got[1])
}

func TestSentencesEmpty(t *testing.T) {
	assert.Empty(t, Sentences(""))
	assert.Empty(t, Sentences("  \n\t "))
}

func TestWords(t *testing.T) {
	got := Words("Revenue grew strongly. We are UNCERTAIN, about next quarter!")

	assert.Contains(t, got, "revenue")
	assert.Contains(t, got, "uncertain")
	assert.Contains(t, got, "quarter")
	for _, w := range got {
		assert.True(t, isWord(w), "unexpected punctuation token %q", w)
	}
}

func TestWordsEmpty(t *testing.T) {
	assert.Empty(t, Words(""))
	assert.Empty(t, Words("... !!"))
}

func TestFallbackSentences(t *testing.T) {
	got := fallbackSentences("Margins expanded. Did guidance change? Yes! Trailing words")
	assert.Equal(t, []string{"Margins expanded.", "Did guidance change?", "Yes!", "Trailing words"}, got)
}

func TestRemoveLinks(t *testing.T) {
	in := "See [the release](https://example.com/pr) or www.example.com for details."
	assert.Equal(t, "See the release or  for details.", RemoveLinks(in))
}

func TestPlainText(t *testing.T) {
	md := "**Prepared Remarks**\n\nRevenue grew *strongly* this quarter.\n\n- Margins expanded\n- Visit https://ir.example.com"

	got := PlainText(md)

	assert.Contains(t, got, "Prepared Remarks")
	assert.Contains(t, got, "Revenue grew strongly this quarter.")
	assert.Contains(t, got, "Margins expanded")
	assert.NotContains(t, got, "**")
	assert.NotContains(t, got, "https://")
}
