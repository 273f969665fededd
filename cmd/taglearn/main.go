package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	flagConfig  string
	flagFolder  string
	flagOutput  string
	flagStore   string
	flagTopK    int
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:     "taglearn",
	Short:   "Feedback-driven TF-IDF document tagger",
	Version: version,
	Long: `taglearn assigns descriptive tags to text documents, synthesizes
feedback on tag quality, and learns per-tag weights so future runs favor
well-received tags.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if flagVerbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagFolder, "documents", "", "path to documents folder (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "path to output directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "path to the weight store database (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	runCmd.Flags().IntVar(&flagTopK, "top-k", 0, "tags generated per document (overrides config)")
	generateCmd.Flags().IntVar(&flagTopK, "top-k", 0, "tags generated per document (overrides config)")

	rootCmd.AddCommand(runCmd, generateCmd, feedbackCmd, learnCmd, weightsCmd, runsCmd, showCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
