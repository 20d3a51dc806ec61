// StratLens — strategic news sentiment monitoring and alerting.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/stratlens/stratlens/api"
	"github.com/stratlens/stratlens/internal/analysis"
	"github.com/stratlens/stratlens/internal/config"
	"github.com/stratlens/stratlens/internal/report"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stratlens",
	Short: "StratLens — strategic news sentiment monitoring and alerting",
	Long: `StratLens tracks news coverage for a set of keywords, scores the
sentiment of every article, and raises strategic alerts: keyword-triggered
events (mergers, launches, lawsuits, funding) and statistical sentiment
spikes in the daily trend.`,
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
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("StratLens %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Analyze Command ---

var analyzeCmd = &cobra.Command{
	Use:   "analyze [keywords...]",
	Short: "Run a sentiment analysis for one or more keywords",
	Long: `Fetch recent news for the given keywords, score sentiment, derive
strategic alerts, and print the report.

Examples:
  stratlens analyze Tesla
  stratlens analyze "OpenAI" "Anthropic" --days 14 --model deep
  stratlens analyze Nvidia --notify --html report.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")
		model, _ := cmd.Flags().GetString("model")
		notify, _ := cmd.Flags().GetBool("notify")
		limit, _ := cmd.Flags().GetInt("limit")
		htmlPath, _ := cmd.Flags().GetString("html")

		req := analysis.Request{Keywords: args, Model: model}
		if days > 0 {
			req.To = time.Now().UTC()
			req.From = req.To.AddDate(0, 0, -days)
		}

		analyzer := analysis.New(cfg)
		result, err := analyzer.Run(cmd.Context(), req)
		if err != nil {
			return err
		}

		fmt.Print(report.Text(result, limit))

		if notify && result.AlertCount > 0 {
			analyzer.NotifyAlerts(cmd.Context(), result)
		}

		if htmlPath != "" {
			data, err := report.HTML(result)
			if err != nil {
				return fmt.Errorf("render HTML report: %w", err)
			}
			if err := os.WriteFile(htmlPath, data, 0644); err != nil {
				return fmt.Errorf("write HTML report: %w", err)
			}
			fmt.Printf("HTML report written to %s\n", htmlPath)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().Int("days", 0, "days of news to analyze (default: configured range)")
	analyzeCmd.Flags().String("model", "", "sentiment model: fast or deep")
	analyzeCmd.Flags().Bool("notify", false, "push an alert digest to configured channels")
	analyzeCmd.Flags().Int("limit", 20, "max alerts to print")
	analyzeCmd.Flags().String("html", "", "also write an HTML report to this path")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("Starting StratLens API server on %s\n", addr)

		srv := api.NewServer(cfg)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  StratLens — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):    %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
		fmt.Println()

		// Config summary
		fmt.Println("  Configuration:")
		fmt.Printf("    Sentiment Model:  %s\n", cfg.Sentiment.Model)
		fmt.Printf("    Spike Threshold:  %.2f\n", cfg.Alerts.SpikeThreshold)
		fmt.Printf("    Forecast Days:    %d\n", cfg.Forecast.Days)
		fmt.Printf("    API Server:       %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		// API keys status
		fmt.Println("  API Keys:")
		keys := config.CheckAPIKeys(cfg)
		for _, k := range keys {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-22s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
