// Package japan scrapes the JAPAN pro tour schedule page.
//
// The page publishes one season year and a stream of stage sections in
// chronological order. Individual stage dates omit the year, so a schedule
// spanning a calendar boundary is recovered with the year-rollover rule:
// a month decrease between successive sections increments the running year.
package japan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/darts-calendars/internal/calendar"
	"github.com/pfrederiksen/darts-calendars/internal/dateparse"
	"github.com/pfrederiksen/darts-calendars/internal/event"
	"github.com/pfrederiksen/darts-calendars/internal/fetch"
	"github.com/pfrederiksen/darts-calendars/internal/links"
)

const (
	ScheduleURL   = "https://japanprodarts.jp/schedule.php"
	DetailBaseURL = "https://japanprodarts.jp"
	ProductID     = "-//JAPAN Pro Tour Unofficial Calendar//JAPAN Pro Tour Unofficial Calendar 1.0//"
	OutputName    = "japan.ics"

	startHour = 8

	// rangeDelimiter separates the start and end dates of a two-day stage.
	rangeDelimiter = " - "

	dateLabel     = "日程"
	locationLabel = "エリア"
	venueLabel    = "会場"
)

// dateFamily covers fragments like 11月3日(日).
var dateFamily = dateparse.Family{
	{Layout: "1月2日"},
}

// Tour is the JAPAN schedule source.
type Tour struct {
	fetcher  *fetch.Client
	resolver links.Resolver
}

// New creates the JAPAN source.
func New(fetcher *fetch.Client, resolver links.Resolver) *Tour {
	return &Tour{fetcher: fetcher, resolver: resolver}
}

func (t *Tour) Name() string { return "japan" }

func (t *Tour) OutputName() string { return OutputName }

// CalendarConfig anchors the feed at the first event's year, which is the
// season's opening year even after a rollover.
func (t *Tour) CalendarConfig(events []event.Event) calendar.Config {
	cfg := calendar.Config{ProductID: ProductID}
	if len(events) > 0 {
		cfg.Year = events[0].Start().Year()
	}
	return cfg
}

// Schedule fetches the schedule page and extracts all stage events.
func (t *Tour) Schedule() ([]event.Event, error) {
	doc, err := t.fetcher.Document(ScheduleURL)
	if err != nil {
		return nil, err
	}
	return t.parseSchedule(doc)
}

func (t *Tour) parseSchedule(doc *goquery.Document) ([]event.Event, error) {
	if doc.Find("article#schedule").Length() == 0 {
		return nil, errors.New("schedule article not found")
	}

	yearText := strings.TrimSpace(doc.Find("span.numArea").First().Text())
	seasonYear, err := strconv.Atoi(yearText)
	if err != nil {
		return nil, fmt.Errorf("parsing season year %q: %w", yearText, err)
	}

	tracker := dateparse.NewYearTracker(seasonYear)

	var events []event.Event
	var parseErr error
	doc.Find("section").EachWithBreak(func(i int, section *goquery.Selection) bool {
		sectionEvents, err := t.parseSection(section, seasonYear, tracker)
		if err != nil {
			parseErr = fmt.Errorf("section %d: %w", i, err)
			return false
		}
		events = append(events, sectionEvents...)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return events, nil
}

// parseSection extracts the events of one stage section. A section whose date
// range yields no parseable fragment is skipped without advancing the year
// tracker.
func (t *Tour) parseSection(section *goquery.Selection, seasonYear int, tracker *dateparse.YearTracker) ([]event.Event, error) {
	stage, ok := section.Find("h3 img").First().Attr("alt")
	stage = strings.TrimSpace(stage)
	if !ok || stage == "" {
		return nil, errors.New("missing stage label")
	}

	rangeText, err := fieldValue(section, dateLabel)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stage, err)
	}

	var starts []time.Time
	for _, fragment := range strings.Split(rangeText, rangeDelimiter) {
		if start, ok := dateparse.Parse(fragment, dateFamily, seasonYear, startHour); ok {
			starts = append(starts, start)
		}
	}
	if len(starts) == 0 {
		return nil, nil
	}

	// Rollover is tracked per section, on the first day only: both days of a
	// two-day stage take the first day's year even when the range itself
	// crosses the calendar boundary. That matches the source's own calendar.
	year := tracker.Observe(starts[0].Month())

	location, err := fieldValue(section, locationLabel)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stage, err)
	}
	venue, err := fieldValue(section, venueLabel)
	if err != nil {
		return nil, fmt.Errorf("stage %s: %w", stage, err)
	}
	ex := section.Find(".exciting_stageicon").Length() > 0

	link := links.First(t.resolver, DetailURL(seasonYear, stage), DetailURL(seasonYear, strings.ToLower(stage)))

	events := make([]event.Event, 0, len(starts))
	for _, start := range starts {
		start = dateparse.WithYear(start, year)
		events = append(events, event.NewJapanEvent(stage, start, location, venue, seasonYear, ex, link))
	}
	return events, nil
}

// fieldValue reads the value of a labeled definition-list field: the text of
// the sibling following the dt whose label contains the marker.
func fieldValue(section *goquery.Selection, label string) (string, error) {
	dt := section.Find("dt").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.Contains(s.Text(), label)
	}).First()
	if dt.Length() == 0 {
		return "", fmt.Errorf("missing %s field", label)
	}

	value := strings.TrimSpace(dt.Next().Text())
	if value == "" {
		return "", fmt.Errorf("empty %s field", label)
	}
	return value, nil
}

// DetailURL returns the candidate stage detail link for a season.
func DetailURL(seasonYear int, stage string) string {
	return fmt.Sprintf("%s/%d/%s.php", DetailBaseURL, seasonYear, stage)
}
