// Package tour runs the shared per-source pipeline: scrape the schedule,
// assemble the calendar document, and persist it idempotently.
//
// A source run either completes fully or fails outright; on failure the
// previously persisted feed is left untouched.
package tour

import (
	"fmt"

	"github.com/pfrederiksen/darts-calendars/internal/calendar"
	"github.com/pfrederiksen/darts-calendars/internal/event"
	"github.com/pfrederiksen/darts-calendars/internal/logger"
	"github.com/pfrederiksen/darts-calendars/internal/storage"
)

// Source is one schedule site's adapter.
type Source interface {
	// Name returns the short source identifier (perfect, japan, dtour).
	Name() string
	// OutputName returns the feed file name the source publishes to.
	OutputName() string
	// Schedule fetches the source's pages and extracts the full ordered
	// event sequence.
	Schedule() ([]event.Event, error)
	// CalendarConfig returns the calendar metadata for a produced event
	// sequence.
	CalendarConfig(events []event.Event) calendar.Config
}

// Result describes the outcome of one source run.
type Result struct {
	Source     string `json:"source"`
	EventCount int    `json:"event_count"`
	Updated    bool   `json:"updated"`
	Path       string `json:"path"`
}

// Run executes the full pipeline for one source.
func Run(src Source, store *storage.Writer) (*Result, error) {
	events, err := src.Schedule()
	if err != nil {
		return nil, fmt.Errorf("%s: fetching schedule: %w", src.Name(), err)
	}

	cal, err := calendar.Assemble(src.CalendarConfig(events), events)
	if err != nil {
		return nil, fmt.Errorf("%s: assembling calendar: %w", src.Name(), err)
	}

	updated, err := store.WriteIfChanged(src.OutputName(), calendar.Serialize(cal))
	if err != nil {
		return nil, fmt.Errorf("%s: writing feed: %w", src.Name(), err)
	}

	logger.Info("source run completed", logger.Fields{
		"source":      src.Name(),
		"event_count": len(events),
		"updated":     updated,
		"path":        store.Path(src.OutputName()),
	})

	return &Result{
		Source:     src.Name(),
		EventCount: len(events),
		Updated:    updated,
		Path:       store.Path(src.OutputName()),
	}, nil
}
