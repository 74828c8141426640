package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/ecsa/internal/models"
	"github.com/spacesedan/ecsa/internal/pipeline"
	"github.com/spacesedan/ecsa/internal/report"
)

var (
	transcriptPath string
	ticker         string
	callDate       string
	outPath        string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one transcript and write the PDF report",
	Example: `  ecsa analyze --transcript aapl_q2.txt --ticker AAPL --date 2024-05-02
  ecsa analyze --transcript call.txt --ticker MSFT --out msft.pdf`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&transcriptPath, "transcript", "f", "", "path to the transcript text file")
	analyzeCmd.Flags().StringVarP(&ticker, "ticker", "t", "", "stock ticker symbol, e.g. AAPL")
	analyzeCmd.Flags().StringVarP(&callDate, "date", "d", "", "earnings call date (YYYY-MM-DD, default 7 days ago)")
	analyzeCmd.Flags().StringVarP(&outPath, "out", "o", "", "output PDF path (default {TICKER}_ECSA_Report_{date}.pdf)")
	_ = analyzeCmd.MarkFlagRequired("transcript")
	_ = analyzeCmd.MarkFlagRequired("ticker")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	date, err := parseCallDate(callDate, time.Now())
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(transcriptPath)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}

	a, err := buildApp(cfg, progressObserver)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := a.pipeline.Run(ctx, pipeline.Request{
		Transcript: string(raw),
		Ticker:     ticker,
		CallDate:   date,
	})
	if err != nil {
		return err
	}

	out := outPath
	if out == "" {
		out = report.FileName(res.Report.Ticker, date)
	}
	if err := os.WriteFile(out, res.PDF, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	printSummary(cmd, res.Report)
	fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", out)
	return nil
}

// parseCallDate parses YYYY-MM-DD; an empty value means one week before now.
func parseCallDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		d := now.AddDate(0, 0, -7)
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", value)
	}
	return d, nil
}

func printSummary(cmd *cobra.Command, r *models.AnalysisReport) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "\nSentiment for %s (%s)\n", r.Ticker, r.CallDate.Format(time.DateOnly))
	for _, m := range models.Methods {
		res := r.Sentiment.Get(m)
		if res.Unavailable {
			fmt.Fprintf(w, "  %-8s unavailable\n", m)
			continue
		}
		fmt.Fprintf(w, "  %-8s %6.3f  (+%d / -%d)\n", m, res.Score, res.Counts.Positive, res.Counts.Negative)
	}
	fmt.Fprintf(w, "  %-8s %6.2f%%\n", "Market", r.Market.PercentChange)
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}
