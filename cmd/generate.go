package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gaurav-prasanna/reportpipe/core"
	"github.com/gaurav-prasanna/reportpipe/core/notify"
	"github.com/gaurav-prasanna/reportpipe/core/output"
	"github.com/gaurav-prasanna/reportpipe/crawl"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagFormat    string
	flagTitle     string
	flagParams    []string
	flagOutputDir string
	flagAll       bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <url>",
	Short: "Generate reports for a URL",
	Long: `Generate fetches the content behind a URL, extracts and charts its data,
and writes one report per requested format.

Examples:
  reportpipe generate https://example.com/sales.csv
  reportpipe generate https://example.com/api/stats.json --format pdf --title "Weekly Stats"
  reportpipe generate https://example.com --all --format markdown --output_dir ./out
  reportpipe generate https://example.com/data.csv --param team=growth --param quarter=Q3`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&flagFormat, "format", "both", "Output format: pdf, docx, both, latex, markdown or json")
	generateCmd.Flags().StringVar(&flagTitle, "title", "", "Report title (default: the extracted title)")
	generateCmd.Flags().StringArrayVar(&flagParams, "param", nil, "Custom parameter as key=value (repeatable)")
	generateCmd.Flags().StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: output.dir from config, else the current directory)")
	generateCmd.Flags().BoolVar(&flagAll, "all", false, "Generate reports for every discovered page of the site")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	rawURL := args[0]

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s (must include scheme, e.g. https://example.com)", rawURL)
	}
	format, err := core.ParseOutputFormat(flagFormat)
	if err != nil {
		return err
	}
	params, err := parseParams(flagParams)
	if err != nil {
		return err
	}

	dir := flagOutputDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	writer, err := output.New(dir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	app, err := wire(ctx, cfg, notify.NewConsole(out))
	if err != nil {
		return err
	}
	defer app.Close()

	if flagAll {
		return generateAll(ctx, out, app, writer, rawURL, format, params)
	}

	reports, err := app.orchestrator.Generate(ctx, newRequest(rawURL, format, params))
	if err != nil {
		return err
	}
	for _, r := range reports {
		path, err := writer.WriteReport(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Written: %s\n", path)
	}
	return nil
}

// generateAll discovers the site's pages and generates reports for each,
// carrying on past pages that fail.
func generateAll(ctx context.Context, out io.Writer, app *components, writer *output.Writer, rawURL string, format core.OutputFormat, params map[string]any) error {
	fmt.Fprintf(out, "Discovering pages from %s...\n", rawURL)

	urls, err := crawl.DiscoverAll(ctx, rawURL, app.fetcher)
	if err != nil {
		return fmt.Errorf("discovering pages: %w", err)
	}
	fmt.Fprintf(out, "Found %d pages to process\n", len(urls))

	var failed int
	for i, pageURL := range urls {
		fmt.Fprintf(out, "[%d/%d] Processing %s\n", i+1, len(urls), pageURL)

		// failures are reported by the console notifier
		reports, err := app.orchestrator.Generate(ctx, newRequest(pageURL, format, params))
		if err != nil {
			failed++
			continue
		}
		for _, r := range reports {
			path, err := writer.WriteAll(pageURL, r)
			if err != nil {
				fmt.Fprintf(out, "  ✗ Write error: %v\n", err)
				failed++
				break
			}
			fmt.Fprintf(out, "  ✓ Written: %s\n", path)
		}
	}

	if failed > 0 {
		fmt.Fprintf(out, "\n%d/%d pages failed\n", failed, len(urls))
	}
	if len(urls) > 0 && failed == len(urls) {
		return fmt.Errorf("all %d pages failed", failed)
	}
	return nil
}

func newRequest(sourceURL string, format core.OutputFormat, params map[string]any) core.ReportRequest {
	return core.ReportRequest{
		ID:               uuid.Must(uuid.NewV7()).String(),
		SourceURL:        sourceURL,
		Title:            flagTitle,
		Format:           format,
		CustomParameters: params,
		CreatedAt:        time.Now().UTC(),
	}
}

// parseParams turns repeated key=value flags into custom parameters.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q (want key=value)", p)
		}
		params[key] = value
	}
	return params, nil
}
