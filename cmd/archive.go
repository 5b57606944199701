// Package cmd — archive command.
// Ingests an extraction bundle and writes markdown/content.md plus the
// localized figures.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/docmark/core/pipeline"
)

var (
	flagKeepArchive   bool
	flagArchiveExport []string
	flagArchiveJSON   bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive <bundle>",
	Short: "Convert an extraction bundle (zip or tar) into Markdown",
	Long: `Archive unpacks an extraction bundle, classifies the manifest elements into
headings, lists and paragraphs, copies the figures into images/ and renders the
spreadsheet tables as Markdown tables.

The bundle is deleted after a successful run unless --keep-archive is given.

Examples:
  docmark archive extract.zip
  docmark archive extract.zip --output_dir ./out --export json,pdf
  docmark archive extract.tar.gz --keep-archive --json`,
	Args: cobra.ExactArgs(1),
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().BoolVar(&flagKeepArchive, "keep-archive", false, "Keep the bundle after a successful run")
	archiveCmd.Flags().StringSliceVar(&flagArchiveExport, "export", nil, "Additional outputs: json, pdf")
	archiveCmd.Flags().BoolVar(&flagArchiveJSON, "json", false, "Print the result envelope as JSON")
}

func runArchive(cmd *cobra.Command, args []string) error {
	p := pipeline.New(*cfg)
	res := p.Archive(cmd.Context(), args[0], pipeline.Options{
		KeepArchive: flagKeepArchive,
		Exports:     flagArchiveExport,
	})
	return report(cmd.OutOrStdout(), res, flagArchiveJSON)
}
