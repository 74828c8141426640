package llm

import (
	"fmt"

	"github.com/spacesedan/ecsa/internal/models"
)

const (
	// CONTEXT_CHARS is how much of the cleaned transcript the narrative prompt quotes.
	CONTEXT_CHARS = 1000
)

const cleansingPrompt = "Please remove all operator instructions, legal disclaimers, metadata, and introductory pleasantries " +
	"from the following earnings call transcript. Return only the core content, which includes the " +
	"prepared remarks from executives and the question-and-answer (Q&A ) session. The output should be clean, " +
	"continuous text.\n\n---\n\n%s"

const reportPrompt = `
**Objective:** Generate a comprehensive, professional financial report based on the provided earnings call transcript analysis.
**Report Structure:**
1.  **Executive Summary:** A brief, high-level overview of the earnings call's key themes, overall sentiment, and subsequent market reaction.
2.  **Key Topics Discussed:** Identify and summarize the 3-5 most critical topics from the call (e.g., revenue growth, product performance, future guidance, challenges ). Use bullet points for clarity.
3.  **Sentiment Analysis Deep Dive:**
    *   **Overall Tone:** Describe the general sentiment (positive, negative, neutral, mixed) of the call.
    *   **Methodology Explanation:** Briefly explain what FinBERT, VADER, and the Loughran-McDonald (LM) lexicons measure in a financial context.
    *   **Results Interpretation:** Analyze the provided sentiment scores:
        *   FinBERT Score: %.3f
        *   VADER Score: %.3f
        *   LM Score: %.3f
        *   Discuss any convergence or divergence between the models. For instance, 'All three models indicated a positive tone, with FinBERT showing the strongest signal.'
4.  **Market Reaction Analysis:**
    *   The stock's price changed by **%.2f%%** in the 7 days following the call.
    *   Interpret this movement in the context of the sentiment scores. Did the market react in line with the call's sentiment? Discuss potential reasons for any discrepancies (e.g., broader market trends, pre-announcement expectations).
5.  **Conclusion:** A concluding paragraph summarizing the findings and the overall picture of the company's performance and outlook as presented in the call.
**Source Transcript (first 1000 characters for context):**
---
%s...
---
Please generate the full report based on this structure and data.
`

func buildCleansingPrompt(transcript string) string {
	return fmt.Sprintf(cleansingPrompt, transcript)
}

func buildReportPrompt(cleaned string, results models.SentimentResults, marketChange float64) string {
	return fmt.Sprintf(reportPrompt,
		results.FinBERT.Score,
		results.VADER.Score,
		results.LM.Score,
		marketChange,
		truncateRunes(cleaned, CONTEXT_CHARS))
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
