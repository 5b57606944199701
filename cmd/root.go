// Package cmd implements the docmark CLI using Cobra.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/docmark/config"
	"github.com/gaurav-prasanna/docmark/core"
	"github.com/gaurav-prasanna/docmark/logger"
)

// Persistent flag variables.
var (
	flagLogLevel  string
	flagLogJSON   bool
	flagOutputDir string
	flagEnvFile   string
)

// cfg is loaded once per invocation by the root PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "docmark",
	Short: "docmark — normalize documents and web pages into Markdown with local assets",
	Long: `docmark turns an extraction bundle (manifest + figures + tables) or a web page
into one Markdown document whose images and tables resolve to local files.

Usage:
  docmark archive <bundle.zip> [flags]
  docmark web <url|file.html> [flags]`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: ./output)")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "Optional .env file with DOCMARK_* settings")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration, applies persistent flags and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(flagEnvFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		loaded.Log.Level = strings.ToLower(flagLogLevel)
	}
	if flags.Changed("log-json") {
		loaded.Log.JSON = flagLogJSON
	}
	if flags.Changed("output_dir") {
		loaded.OutputDir = flagOutputDir
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	log := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		Output:     os.Stderr,
		JSON:       cfg.Log.JSON,
		TimeFormat: "15:04:05",
	})
	logger.SetDefault(log)
	cmd.SetContext(logger.ContextWithLogger(cmd.Context(), log))
	return nil
}

// report prints res and turns a failed run into a command error.
func report(w io.Writer, res core.Result, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding result: %w", err)
		}
		fmt.Fprintln(w, string(data))
	} else if res.Status == core.StatusSuccess {
		fmt.Fprintf(w, "✓ %s\n", res.Message)
		for _, path := range []string{res.MarkdownPath, res.HTMLPath} {
			if path != "" {
				fmt.Fprintf(w, "  Written: %s\n", path)
			}
		}
		for _, path := range res.Exports {
			fmt.Fprintf(w, "  Written: %s\n", path)
		}
		if res.ImagesDir != "" {
			fmt.Fprintf(w, "  Images:  %s (%d)\n", res.ImagesDir, len(res.Assets))
		}
		if res.Partial {
			fmt.Fprintf(w, "  Skipped: %d item(s), see log\n", res.Skipped)
		}
	}

	if res.Status != core.StatusSuccess {
		return fmt.Errorf("%s: %s", res.Kind, res.Message)
	}
	return nil
}
