// fininsight: country financial profiles: currency, FX rates, exchanges,
// index levels and an optional model-written summary.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seenimoa/fininsight/api"
	"github.com/seenimoa/fininsight/internal/config"
	"github.com/seenimoa/fininsight/internal/llm"
	"github.com/seenimoa/fininsight/internal/logging"
	"github.com/seenimoa/fininsight/internal/profile"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set by PersistentPreRunE.
var (
	cfg    *config.Config
	logger *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fininsight",
	Short: "fininsight: country currency, FX and stock market profiles",
	Long: `fininsight builds a financial profile for a country: its official
currency, exchange rates against USD/INR/GBP/EUR, its major stock exchanges
with their headline index levels, and a map link to the main exchange's
headquarters. Any configured LLM provider can narrate the result.`,
	SilenceUsage: true,
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

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(countriesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fininsight %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Profile Command ---

var profileCmd = &cobra.Command{
	Use:   "profile [country]",
	Short: "Build the financial profile of a country",
	Long: `Build the financial profile of a country. Multi-word names need no
quoting: "fininsight profile south korea" works.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		country := strings.TrimSpace(strings.Join(args, " "))
		if country == "" {
			return fmt.Errorf("country is required")
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		withSummary, _ := cmd.Flags().GetBool("summary")
		provider, _ := cmd.Flags().GetString("provider")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Resolve the narrator first so a bad --provider fails fast.
		var narrator llm.Narrator
		if withSummary {
			var err error
			narrator, err = llm.NewRegistry(ctx, cfg.LLM, logger).Get(provider)
			if err != nil {
				return fmt.Errorf("summary unavailable: %w", err)
			}
		}

		agg := profile.NewFromConfig(cfg.Providers, nil, logger)
		p := agg.BuildProfile(ctx, country)

		if !withSummary {
			if asJSON {
				return writeJSON(cmd, p)
			}
			renderProfile(cmd.OutOrStdout(), p)
			return nil
		}

		summary, err := llm.Summarize(ctx, narrator, p)
		if asJSON {
			out := map[string]any{"profile": p, "summary": summary}
			if err != nil {
				out["summary_error"] = err.Error()
			}
			if werr := writeJSON(cmd, out); werr != nil {
				return werr
			}
		} else {
			renderProfile(cmd.OutOrStdout(), p)
			if err == nil {
				renderSummary(cmd.OutOrStdout(), summary)
			}
		}
		if err != nil {
			return fmt.Errorf("summary generation failed: %w", err)
		}
		return nil
	},
}

func init() {
	profileCmd.Flags().Bool("json", false, "print the profile as JSON")
	profileCmd.Flags().Bool("summary", false, "add an LLM-written summary")
	profileCmd.Flags().String("provider", "", "LLM provider for --summary (gemini, llama3, mistral, deepseek, ollama)")
}

// --- Countries Command ---

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List countries in the built-in catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, profile.Countries())
		}
		return renderCountries(cmd.OutOrStdout(), profile.Countries())
	},
}

func init() {
	countriesCmd.Flags().Bool("json", false, "print the catalog as JSON")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		srv := api.NewServer(cfg, api.WithLogger(logger), api.WithVersion(version))
		return srv.ListenAndServe(cfg.Address())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides api.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		renderStatus(cmd.OutOrStdout(), cfg, version, commit)
		return nil
	},
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
