package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/spacesedan/ecsa/config"
	"github.com/spacesedan/ecsa/internal/logging"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ecsa",
	Short: "Earnings call sentiment analyzer",
	Long: `ecsa cleans an earnings call transcript, scores its sentiment with FinBERT,
VADER and the Loughran-McDonald word lists, measures the stock's move over the
following week and renders the findings as a PDF report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "dev"
		}
		config.LoadEnv(env)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		logging.InitLogger(cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("[Main] Command failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
