// Package textproc splits transcript text into sentences and word tokens.
package textproc

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// Sentences returns the trimmed, non-empty sentences of text.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := newDocument(text)
	if err != nil {
		return fallbackSentences(text)
	}

	var out []string
	for _, s := range doc.Sentences() {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Words lowercases text and returns its word tokens, dropping tokens made only
// of punctuation or symbols.
func Words(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return nil
	}

	doc, err := newDocument(lower)
	if err != nil {
		return strings.FieldsFunc(lower, isSeparator)
	}

	var out []string
	for _, tok := range doc.Tokens() {
		if isWord(tok.Text) {
			out = append(out, tok.Text)
		}
	}
	return out
}

func newDocument(text string) (*prose.Document, error) {
	return prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
}

func isWord(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '\''
}

// fallbackSentences splits on terminal punctuation followed by whitespace.
func fallbackSentences(text string) []string {
	var out []string
	var b strings.Builder
	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		end := r == '.' || r == '!' || r == '?'
		if end && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])) {
			if t := strings.TrimSpace(b.String()); t != "" {
				out = append(out, t)
			}
			b.Reset()
		}
	}
	if t := strings.TrimSpace(b.String()); t != "" {
		out = append(out, t)
	}
	return out
}
