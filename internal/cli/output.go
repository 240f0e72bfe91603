package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/darts-calendars/internal/tour"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Results     []*tour.Result `json:"results"`
	Errors      []string       `json:"errors,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult) error {
	for _, res := range result.Results {
		status := "unchanged"
		if res.Updated {
			status = "updated"
		}
		if _, err := fmt.Fprintf(w, "%s: %d events, %s (%s)\n", res.Source, res.EventCount, status, res.Path); err != nil {
			return err
		}
	}
	for _, errMsg := range result.Errors {
		if _, err := fmt.Fprintf(w, "FAILED: %s\n", errMsg); err != nil {
			return err
		}
	}
	return nil
}
