package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	appName = "yieldscore"
	version = "v2.1.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Income security scoring engine",
		Version: version,
		Long: `yieldscore rates income securities (dividend stocks, covered-call funds,
CEFs, REITs, BDCs, bond funds, preferreds) on a 0-100 scale.

Each run gates the security on class-specific quality criteria, simulates
NAV erosion for exposed classes, blends four weighted sub-scores, applies
risk penalties, and enforces hard safety vetoes.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "config/yieldscore.yaml", "Path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("pretty", true, "Human-readable console logging")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve prometheus metrics on this address (e.g. :9090)")
	rootCmd.PersistentFlags().SetNormalizeFunc(normalizeFlags)

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newLearnCmd())
	rootCmd.AddCommand(newWeightsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// normalizeFlags accepts underscore spellings (log_level) alongside the
// canonical dashed names.
func normalizeFlags(f *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

func setupLogging(cmd *cobra.Command) {
	pretty, _ := cmd.Flags().GetBool("pretty")
	if pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	level := zerolog.InfoLevel
	if s, _ := cmd.Flags().GetString("log-level"); s != "" {
		if parsed, err := zerolog.ParseLevel(s); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}
