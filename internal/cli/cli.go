package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/darts-calendars/internal/fetch"
	"github.com/pfrederiksen/darts-calendars/internal/links"
	"github.com/pfrederiksen/darts-calendars/internal/logger"
	"github.com/pfrederiksen/darts-calendars/internal/source/dtour"
	"github.com/pfrederiksen/darts-calendars/internal/source/japan"
	"github.com/pfrederiksen/darts-calendars/internal/source/perfect"
	"github.com/pfrederiksen/darts-calendars/internal/storage"
	"github.com/pfrederiksen/darts-calendars/internal/tour"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUpdated = 2
)

// SourceAll runs every configured source.
const SourceAll = "all"

var (
	flagSource    string
	flagOutputDir string
	flagFormat    string
	flagVerbose   bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "darts-calendars",
		Short: "Publish darts tour schedules as iCalendar feeds",
		Long: `Scrapes the PERFECT, JAPAN and D-TOUR schedule pages and republishes
each as an .ics feed. A feed file is rewritten only when its content
actually changed, so subscribers and version control see no spurious churn.`,
		RunE: runUpdate,
	}

	cmd.Flags().StringVar(&flagSource, "source", SourceAll, "Source to update: perfect, japan, dtour or 'all'")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "calendars", "Directory the .ics feeds are written to")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	return cmd
}

// runUpdate is the main command logic
func runUpdate(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	sources, err := selectSources(strings.ToLower(strings.TrimSpace(flagSource)))
	if err != nil {
		return err
	}

	store, err := storage.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}

	result := &OutputResult{GeneratedAt: time.Now().UTC()}
	updated := false

	for _, src := range sources {
		res, err := tour.Run(src, store)
		if err != nil {
			logger.Error("source run failed", logger.Fields{"source": src.Name()}, err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.Results = append(result.Results, res)
		if res.Updated {
			updated = true
		}
	}

	if err := WriteOutput(os.Stdout, result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	switch {
	case len(result.Errors) > 0:
		os.Exit(ExitError)
	case updated:
		os.Exit(ExitUpdated)
	default:
		os.Exit(ExitSuccess)
	}
	return nil
}

// selectSources builds the pipelines to run for a --source value.
func selectSources(name string) ([]tour.Source, error) {
	fetcher := fetch.New()
	resolver := links.NewHTTPResolver()

	all := []tour.Source{
		perfect.New(fetcher, resolver),
		japan.New(fetcher, resolver),
		dtour.New(fetcher),
	}

	if name == "" || name == SourceAll {
		return all, nil
	}
	for _, src := range all {
		if src.Name() == name {
			return []tour.Source{src}, nil
		}
	}
	return nil, fmt.Errorf("unknown source: %s (must be perfect, japan, dtour or 'all')", name)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
