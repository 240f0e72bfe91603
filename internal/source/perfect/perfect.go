// Package perfect scrapes the PERFECT pro tour schedule page.
//
// The schedule is a single table; each row is one stage with a stage label,
// location, one or more date fragments (multi-leg stages run on several
// non-contiguous days), venue, ranking point label, and men/women
// participation markers carried by image assets rather than text.
package perfect

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
	ScheduleURL    = "https://www.prodarts.jp/schedule/"
	OutlineBaseURL = "https://www.prodarts.jp/archives/outline/"
	ProductID      = "-//PERFECT Pro Tour Unofficial Calendar//PERFECT Pro Tour Unofficial Calendar 1.0//"
	OutputName     = "perfect.ics"

	startHour = 8

	// pendingMarker flags stages whose date is still to be determined.
	pendingMarker = "調整中"
)

// dateFamily covers fragments like 4月20日(土).
var dateFamily = dateparse.Family{
	{Layout: "1月2日"},
}

// Tour is the PERFECT schedule source.
type Tour struct {
	fetcher  *fetch.Client
	resolver links.Resolver
	now      func() time.Time
}

// New creates the PERFECT source.
func New(fetcher *fetch.Client, resolver links.Resolver) *Tour {
	return &Tour{
		fetcher:  fetcher,
		resolver: resolver,
		now:      time.Now,
	}
}

func (t *Tour) Name() string { return "perfect" }

func (t *Tour) OutputName() string { return OutputName }

func (t *Tour) CalendarConfig(events []event.Event) calendar.Config {
	return calendar.Config{ProductID: ProductID, Year: t.now().Year()}
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
	year := pageYear(doc, t.now().Year())

	var events []event.Event
	var parseErr error
	doc.Find("table#list tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		rowEvents, err := t.parseRow(row, year)
		if err != nil {
			parseErr = fmt.Errorf("row %d: %w", i, err)
			return false
		}
		events = append(events, rowEvents...)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return events, nil
}

// parseRow extracts zero or more events from one schedule table row.
// Pending stages and rows without any parseable date contribute nothing.
func (t *Tour) parseRow(row *goquery.Selection, year int) ([]event.Event, error) {
	cells := row.Find("td")
	if cells.Length() == 0 {
		// header row
		return nil, nil
	}
	if strings.Contains(row.Text(), pendingMarker) {
		return nil, nil
	}

	stage := strings.TrimSpace(row.Find("th").First().Text())
	if stage == "" {
		return nil, errors.New("missing stage label")
	}
	if cells.Length() < 6 {
		return nil, fmt.Errorf("stage %s: expected 6 cells, got %d", stage, cells.Length())
	}

	location := strings.TrimSpace(cells.Eq(0).Text())
	fragments := textFragments(cells.Eq(1))
	venue := strings.TrimSpace(cells.Eq(2).Text())
	point := strings.TrimSpace(cells.Eq(3).Text())
	men := hasParticipants(cells.Eq(4))
	women := hasParticipants(cells.Eq(5))

	var events []event.Event
	for _, fragment := range fragments {
		start, ok := dateparse.Parse(fragment, dateFamily, year, startHour)
		if !ok {
			continue
		}
		link := t.resolver.Resolve(OutlineURL(start))
		events = append(events, event.NewPerfectEvent(stage, start, location, venue, point, men, women, link))
	}
	return events, nil
}

// textFragments collects the non-empty text nodes of the date cell. Multi-leg
// stages separate their date fragments with <br> elements.
func textFragments(cell *goquery.Selection) []string {
	var fragments []string
	cell.Contents().Each(func(_ int, node *goquery.Selection) {
		if text := strings.TrimSpace(node.Text()); text != "" {
			fragments = append(fragments, text)
		}
	})
	return fragments
}

// hasParticipants reads a participation flag from the cell's image asset.
// The "none" asset marks a division that does not play the stage.
func hasParticipants(cell *goquery.Selection) bool {
	src, ok := cell.Find("img").First().Attr("src")
	return ok && !strings.Contains(src, "schedule_none")
}

// pageYear reads the published schedule year from the page heading, falling
// back to the current calendar year when the heading carries none.
func pageYear(doc *goquery.Document, fallback int) int {
	text := strings.TrimSpace(doc.Find("h3.midashi1 span").First().Text())
	if year, err := strconv.Atoi(text); err == nil {
		return year
	}
	return fallback
}

// OutlineURL returns the candidate tournament outline link for a start date.
func OutlineURL(start time.Time) string {
	return OutlineBaseURL + start.Format("20060102")
}
