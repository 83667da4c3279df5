package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/kiwimenu/internal/output"
	"github.com/jmylchreest/kiwimenu/internal/recent"
)

var recentOpts struct {
	// Filter options
	filter string
	limit  int
	since  string

	// Sort options
	sortBy    string
	sortOrder string

	// Output options
	format   string
	field    string
	template string
	showMime bool
}

var recentCmd = &cobra.Command{
	Use:   "recent [index|uri]",
	Short: "List recent items",
	Long: `List the recently used files shown in the Recent Items submenu.

Without arguments, outputs the items in dmenu format (suitable for
fuzzel, walker, rofi, etc.). With an index (1-based) or URI argument,
outputs that single item.

Filter expressions are comma separated and all must match:
  title~report        title contains "report"
  mime=application/pdf
  uri~=^file:///srv   regex on the URI
  scheme=https
  local=true
  age<1d              used within the last day

Examples:
  # List recent items for a picker and open the chosen one
  kiwimenu recent | fuzzel -d | kiwimenu recent open

  # Show PDFs used this week as JSON
  kiwimenu recent --filter 'mime~pdf,age<1w' --format json

  # Print the URI of the newest item
  kiwimenu recent 1 --field uri`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecent,
}

var recentOpenCmd = &cobra.Command{
	Use:   "open [index|uri|-]",
	Short: "Open a recent item with its default application",
	Long: `Open a recent item with its default application.

The item is chosen by 1-based index, URI, or a dmenu line. With no
argument or "-", the selection is read from standard input.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecentOpen,
}

func init() {
	rootCmd.AddCommand(recentCmd)
	recentCmd.AddCommand(recentOpenCmd)

	recentCmd.PersistentFlags().IntVarP(&recentOpts.limit, "limit", "n", 0,
		"Maximum number of items to read (default: submenu max_items)")

	recentCmd.Flags().StringVar(&recentOpts.filter, "filter", "",
		"Filter expression (e.g., mime~pdf,age<1d)")
	recentCmd.Flags().StringVar(&recentOpts.since, "since", "",
		"Show items used within the last duration (e.g., 1h, 7d, 1w)")
	recentCmd.Flags().StringVar(&recentOpts.sortBy, "sort", "timestamp",
		"Sort by field (timestamp, title, mime)")
	recentCmd.Flags().StringVar(&recentOpts.sortOrder, "order", "desc",
		"Sort order (asc, desc)")
	recentCmd.Flags().StringVarP(&recentOpts.format, "format", "f", "dmenu",
		"Output format (dmenu, plain, json, yaml, uris)")
	recentCmd.Flags().StringVar(&recentOpts.field, "field", "",
		"Output a single field of the selected item (uri, title, mime, age, all)")
	recentCmd.Flags().StringVar(&recentOpts.template, "template", "",
		"Custom Go template for dmenu/plain output")
	recentCmd.Flags().BoolVar(&recentOpts.showMime, "mime", false,
		"Include mime types in dmenu/plain output")
}

// loadRecent reads the recent items using the configured path and limit.
func loadRecent() []recent.Record {
	c := getConfig()
	limit := c.Submenu.MaxItems
	if recentOpts.limit > 0 {
		limit = recentOpts.limit
	}
	return recent.NewSource(c.RecentPath(), limit, logger).Load()
}

// filterExpression combines --filter and --since into one expression.
func filterExpression(filter, since string) string {
	if since == "" || since == "0" {
		return filter
	}
	cond := "age<=" + since
	if strings.TrimSpace(filter) == "" {
		return cond
	}
	return filter + "," + cond
}

// selectRecords applies --filter, --since and sorting.
func selectRecords(records []recent.Record, now time.Time) ([]recent.Record, error) {
	expr, err := recent.ParseFilter(filterExpression(recentOpts.filter, recentOpts.since))
	if err != nil {
		return nil, err
	}

	out := recent.Filter(records, expr, now)
	output.Sort(out, output.SortOptions{
		Field: output.ParseSortField(recentOpts.sortBy),
		Order: output.ParseSortOrder(recentOpts.sortOrder),
	})
	return out, nil
}

func formatterOptions() output.FormatterOptions {
	opts := output.DefaultFormatterOptions()
	opts.Template = recentOpts.template
	opts.ShowMime = recentOpts.showMime
	return opts
}

func runRecent(cmd *cobra.Command, args []string) error {
	records, err := selectRecords(loadRecent(), time.Now())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if len(args) > 0 {
		r := output.Lookup(records, args[0])
		if r == nil {
			return fmt.Errorf("no recent item matches %q", args[0])
		}
		return writeRecord(w, r)
	}

	formatter := output.NewFormatter(output.FormatType(recentOpts.format), formatterOptions())
	return formatter.Format(w, records)
}

func writeRecord(w io.Writer, r *recent.Record) error {
	if recentOpts.field != "" {
		_, err := fmt.Fprintln(w, output.FormatField(r, recentOpts.field))
		return err
	}
	switch output.FormatType(recentOpts.format) {
	case output.FormatJSON:
		return output.NewJSONFormatter(formatterOptions()).FormatSingle(w, r)
	default:
		return output.NewFormatter(output.FormatType(recentOpts.format), formatterOptions()).
			Format(w, []recent.Record{*r})
	}
}

// readSelector reads the first non-empty line of r.
func readSelector(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read selection: %w", err)
	}
	return "", fmt.Errorf("no selection on standard input")
}

func runRecentOpen(cmd *cobra.Command, args []string) error {
	selector := "-"
	if len(args) > 0 {
		selector = args[0]
	}
	if selector == "-" {
		var err error
		selector, err = readSelector(os.Stdin)
		if err != nil {
			return err
		}
	}

	r := output.Lookup(loadRecent(), selector)
	if r == nil {
		return fmt.Errorf("no recent item matches %q", selector)
	}

	if err := newLauncher().OpenURI(r.URI); err != nil {
		return fmt.Errorf("failed to open %s: %w", r.URI, err)
	}
	logger.Info("opened recent item", "uri", r.URI)
	return nil
}
