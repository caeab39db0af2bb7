// marketbrief — daily market analysis report generator
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/marketbrief/internal/common"
	"github.com/seenimoa/marketbrief/internal/config"
	"github.com/seenimoa/marketbrief/internal/datasource"
	"github.com/seenimoa/marketbrief/internal/report"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg *config.Config
	log *common.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketbrief",
	Short: "marketbrief — daily market analysis report generator",
	Long: `marketbrief fetches index and watchlist quotes, computes technical
indicators, collects and classifies financial news, and assembles a
daily Markdown report.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := cfg.Logging.Level
		if override, _ := cmd.Flags().GetString("log-level"); override != "" {
			level = override
		}
		log = common.NewLogger(level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("marketbrief %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Generate Command ---

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate today's market report",
	Long: `Fetch quotes, indicators, news, and the sentiment gauge, then render
the daily Markdown report. With --mock, all data comes from the
deterministic offline provider.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mock, _ := cmd.Flags().GetBool("mock")
		outputDir, _ := cmd.Flags().GetString("output")
		noSave, _ := cmd.Flags().GetBool("no-save")

		if outputDir == "" {
			outputDir = cfg.Report.OutputDir
		}

		var (
			quotes    datasource.QuoteProvider
			news      datasource.NewsFetcher
			sentiment datasource.SentimentProvider
		)
		if mock {
			m := datasource.NewMock(cfg.Sentiment)
			quotes, news, sentiment = m, m, m
		} else {
			quotes = datasource.NewYahoo()
			news = datasource.NewCollector(cfg.Sources, log)
			sentiment = datasource.NewFearGreed(cfg.Sentiment)
		}

		ctx := cmd.Context()
		a := report.NewAssembler(cfg, quotes, news, sentiment, log)
		r, err := a.Generate(ctx)
		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}

		if noSave {
			fmt.Print(report.Render(r))
			return nil
		}

		path, err := report.Save(r, outputDir)
		if err != nil {
			return err
		}
		fmt.Printf("📄 Report written to %s\n", path)
		return nil
	},
}

func init() {
	generateCmd.Flags().Bool("mock", false, "use the deterministic offline data provider")
	generateCmd.Flags().StringP("output", "o", "", "output directory (default: from config)")
	generateCmd.Flags().Bool("no-save", false, "print the report to stdout instead of saving")
}
