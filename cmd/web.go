// Package cmd — web command.
// Fetches a page (or reads a saved HTML file), localizes its images and
// writes website_content.md next to the localized website_content.html.
//
// With --all it discovers same-domain pages and processes each into its
// own directory.
package cmd

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/docmark/core/pipeline"
)

var (
	flagBaseURL       string
	flagAll           bool
	flagMainOnly      bool
	flagAbsoluteLinks bool
	flagWebExport     []string
	flagWebJSON       bool
)

var webCmd = &cobra.Command{
	Use:   "web <url|file>",
	Short: "Convert a web page into Markdown with local images",
	Long: `Web fetches a page, downloads or decodes every image it references into
images/, rewrites the references to the local copies and converts the page to
Markdown.

Examples:
  docmark web https://example.com/post
  docmark web saved.html --base-url https://example.com/post
  docmark web https://example.com --all --main-only --export pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)

	webCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "URL that relative image references resolve against")
	webCmd.Flags().BoolVar(&flagAll, "all", false, "Process all discovered same-domain pages")
	webCmd.Flags().BoolVar(&flagMainOnly, "main-only", false, "Keep only the main content (main, article or body)")
	webCmd.Flags().BoolVar(&flagAbsoluteLinks, "absolute-links", false, "Link images by their path under the output directory")
	webCmd.Flags().StringSliceVar(&flagWebExport, "export", nil, "Additional outputs: json, pdf")
	webCmd.Flags().BoolVar(&flagWebJSON, "json", false, "Print the result envelope as JSON")
}

func runWeb(cmd *cobra.Command, args []string) error {
	source := args[0]
	if err := validateWebFlags(source); err != nil {
		return err
	}

	p := pipeline.New(*cfg)
	opts := pipeline.Options{
		Exports:       flagWebExport,
		BaseURL:       flagBaseURL,
		MainOnly:      flagMainOnly,
		AbsoluteLinks: flagAbsoluteLinks,
	}

	if flagAll {
		return report(cmd.OutOrStdout(), p.WebAll(cmd.Context(), source, opts), flagWebJSON)
	}
	return report(cmd.OutOrStdout(), p.Web(cmd.Context(), source, opts), flagWebJSON)
}

// validateWebFlags checks flag combinations that the pipeline cannot.
func validateWebFlags(source string) error {
	if flagAll && flagBaseURL != "" {
		return fmt.Errorf("--base-url cannot be combined with --all")
	}
	if flagBaseURL != "" {
		u, err := url.Parse(flagBaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid --base-url: %s (must include scheme, e.g. https://example.com)", flagBaseURL)
		}
	}
	if source == "" {
		return fmt.Errorf("a URL or HTML file is required")
	}
	return pipeline.ValidateExports(flagWebExport)
}
