// Package llm wraps the chat-completion calls the analysis makes: stripping
// boilerplate from a raw transcript and writing the report narrative. Both
// calls degrade to a fallback value instead of failing the run.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/ecsa/internal/models"
	"github.com/spacesedan/ecsa/internal/textproc"
)

const (
	REPORT_FAILED_TEXT = "Report generation failed."
)

var ErrEmptyResponse = errors.New("completion produced no usable text")

// Completer sends a single prompt and returns the model's reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Cleanser struct {
	client Completer
}

func NewCleanser(client Completer) *Cleanser {
	return &Cleanser{client: client}
}

// Clean asks the model for the core remarks and Q&A of a transcript. On any
// failure it returns raw unchanged together with the cause.
func (c *Cleanser) Clean(ctx context.Context, raw string) (string, error) {
	start := time.Now()
	slog.Info("[Cleanser] Cleansing transcript", slog.Int("chars", len(raw)))

	if c.client == nil {
		return raw, fmt.Errorf("text cleansing unavailable: %w", ErrEmptyResponse)
	}

	reply, err := c.client.Complete(ctx, buildCleansingPrompt(raw))
	if err != nil {
		slog.Warn("[Cleanser] Cleansing failed, using original transcript",
			slog.String("error", err.Error()))
		return raw, fmt.Errorf("text cleansing failed: %w", err)
	}

	cleaned := textproc.PlainText(cleanResponse(reply))
	if cleaned == "" {
		slog.Warn("[Cleanser] Cleansing returned empty text, using original transcript")
		return raw, fmt.Errorf("text cleansing failed: %w", ErrEmptyResponse)
	}

	slog.Info("[Cleanser] Transcript cleansed",
		slog.Int("chars", len(cleaned)),
		slog.Duration("elapsed", time.Since(start)))
	return cleaned, nil
}

type Narrator struct {
	client Completer
}

func NewNarrator(client Completer) *Narrator {
	return &Narrator{client: client}
}

// Generate writes the report narrative. On failure it returns
// REPORT_FAILED_TEXT together with the cause.
func (n *Narrator) Generate(ctx context.Context, cleaned string, results models.SentimentResults, marketChange float64) (string, error) {
	start := time.Now()
	slog.Info("[Narrator] Generating report narrative",
		slog.String("finbert", fmt.Sprintf("%.3f", results.FinBERT.Score)),
		slog.String("vader", fmt.Sprintf("%.3f", results.VADER.Score)),
		slog.String("lm", fmt.Sprintf("%.3f", results.LM.Score)),
		slog.String("market_change", fmt.Sprintf("%.2f%%", marketChange)))

	if n.client == nil {
		return REPORT_FAILED_TEXT, fmt.Errorf("report generation unavailable: %w", ErrEmptyResponse)
	}

	reply, err := n.client.Complete(ctx, buildReportPrompt(cleaned, results, marketChange))
	if err != nil {
		slog.Warn("[Narrator] Report generation failed", slog.String("error", err.Error()))
		return REPORT_FAILED_TEXT, fmt.Errorf("report generation failed: %w", err)
	}

	narrative := cleanResponse(reply)
	if narrative == "" {
		return REPORT_FAILED_TEXT, fmt.Errorf("report generation failed: %w", ErrEmptyResponse)
	}

	slog.Info("[Narrator] Narrative generated",
		slog.Int("chars", len(narrative)),
		slog.Duration("elapsed", time.Since(start)))
	return narrative, nil
}

func cleanResponse(response string) string {
	response = strings.TrimSpace(response)

	// Models occasionally wrap the whole reply in a code fence
	if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```markdown")
		response = strings.TrimPrefix(response, "```text")
		response = strings.TrimPrefix(response, "```")
		response = strings.TrimSuffix(response, "```")
	}

	response = strings.ReplaceAll(response, "“", `"`)
	response = strings.ReplaceAll(response, "”", `"`)
	response = strings.ReplaceAll(response, "’", "'")

	return strings.TrimSpace(response)
}
