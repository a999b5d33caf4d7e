// Package cmd implements the reportpipe CLI using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/reportpipe/config"
	"github.com/gaurav-prasanna/reportpipe/logger"
	"github.com/spf13/cobra"
)

var (
	flagConfig   string
	flagLogLevel string

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reportpipe",
	Short: "ReportPipe turns data behind a URL into formatted reports",
	Long: `ReportPipe fetches the content behind a URL (JSON, HTML, CSV or plain text),
extracts data points and narrative sections, charts them, and renders reports
as PDF, DOCX, LaTeX-styled PDF, Markdown or JSON.

Usage:
  reportpipe generate <url> [flags]
  reportpipe serve [flags]`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		level := loaded.Log.Level
		if flagLogLevel != "" {
			level = flagLogLevel
		}
		if err := logger.InitLogger(level, loaded.Log.File); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log_level", "", "Log level override (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
