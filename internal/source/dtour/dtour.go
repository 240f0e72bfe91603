// Package dtour scrapes the D-TOUR schedule pages.
//
// The tour is split into a CONNECT bracket and several region-specific ARENA
// brackets, each on its own page. Every stage record is a labeled key/value
// table; besides the main event, a record may carry a preliminary-
// qualification period which becomes a second, independent calendar event
// with an explicit end time.
package dtour

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/darts-calendars/internal/calendar"
	"github.com/pfrederiksen/darts-calendars/internal/dateparse"
	"github.com/pfrederiksen/darts-calendars/internal/event"
	"github.com/pfrederiksen/darts-calendars/internal/fetch"
)

const (
	BaseURL    = "https://www.da-topi.jp"
	SeasonPath = "d-tour_season4"
	ProductID  = "-//D-TOUR Unofficial Calendar//D-TOUR Unofficial Calendar 1.0//"
	OutputName = "d-tour.ics"

	connectStartHour = 10
	arenaStartHour   = 10

	venueLabel    = "会場"
	scheduleLabel = "大会日程"
	prelimLabel   = "予選期間"

	prelimVenueMarker = "予選会場"
	prelimStatusTitle = "予選状況"

	// rangeMarker separates the two bounds of a preliminary period
	// (fullwidth tilde, U+FF5E).
	rangeMarker = "～"
)

// Region is one ARENA sub-schedule.
type Region struct {
	Code string
	Name string
}

// Regions lists the ARENA pages in publication order. CONNECT events always
// precede ARENA events in the feed; regions keep this order regardless of
// fetch completion order.
var Regions = []Region{
	{Code: "kyushu", Name: "九州・山口"},
	{Code: "kanto", Name: "関東"},
	{Code: "kitakanto", Name: "北関東"},
	{Code: "chubu", Name: "中部"},
}

// connectDatePattern locates the main-event date inside the schedule row.
var connectDatePattern = regexp.MustCompile(`\d{4}/\d{1,2}/\d{1,2}`)

var connectFamily = dateparse.Family{
	{Layout: "2006/1/2", HasYear: true},
}

// arenaFamily unifies the historical arena date shapes: explicit time-of-day,
// dated range placeholder, and the year-less fallback.
var arenaFamily = dateparse.Family{
	{Layout: "2006/1/2(15:04)", HasYear: true, HasTime: true},
	{Layout: "2006/1/2-", HasYear: true},
	{Layout: "2006/1/2", HasYear: true},
	{Layout: "1/2-"},
	{Layout: "1/2"},
}

var prelimFamily = dateparse.Family{
	{Layout: "2006/1/2 15:04", HasYear: true, HasTime: true},
}

// Tour is the D-TOUR schedule source.
type Tour struct {
	fetcher *fetch.Client
	now     func() time.Time
}

// New creates the D-TOUR source.
func New(fetcher *fetch.Client) *Tour {
	return &Tour{fetcher: fetcher, now: time.Now}
}

func (t *Tour) Name() string { return "dtour" }

func (t *Tour) OutputName() string { return OutputName }

func (t *Tour) CalendarConfig(events []event.Event) calendar.Config {
	return calendar.Config{ProductID: ProductID, Year: t.now().Year()}
}

// ConnectURL returns the CONNECT schedule page URL.
func ConnectURL() string {
	return fmt.Sprintf("%s/%s/connect", BaseURL, SeasonPath)
}

// ArenaURL returns the schedule page URL for an ARENA region.
func ArenaURL(code string) string {
	return fmt.Sprintf("%s/%s/arena/%s.html", BaseURL, SeasonPath, code)
}

// Schedule fetches the CONNECT page and every ARENA region page and
// concatenates their events, CONNECT first. Region pages are independent and
// fetched concurrently; output order stays deterministic.
func (t *Tour) Schedule() ([]event.Event, error) {
	doc, err := t.fetcher.Document(ConnectURL())
	if err != nil {
		return nil, fmt.Errorf("fetching connect schedule: %w", err)
	}
	events, err := t.parseConnect(doc)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	regionEvents := make([][]event.Event, len(Regions))
	regionErrs := make([]error, len(Regions))

	var wg sync.WaitGroup
	for i, region := range Regions {
		wg.Add(1)
		go func(i int, region Region) {
			defer wg.Done()
			url := ArenaURL(region.Code)
			doc, err := t.fetcher.Document(url)
			if err != nil {
				regionErrs[i] = fmt.Errorf("fetching arena %s schedule: %w", region.Code, err)
				return
			}
			regionEvents[i], regionErrs[i] = t.parseArena(doc, url, region.Name)
		}(i, region)
	}
	wg.Wait()

	for i, err := range regionErrs {
		if err != nil {
			return nil, fmt.Errorf("arena %s: %w", Regions[i].Code, err)
		}
	}
	for _, evs := range regionEvents {
		events = append(events, evs...)
	}
	return events, nil
}

func (t *Tour) parseConnect(doc *goquery.Document) ([]event.Event, error) {
	return t.parseRecords(doc, func(record *goquery.Selection) ([]event.Event, error) {
		return t.connectEvents(record)
	})
}

func (t *Tour) parseArena(doc *goquery.Document, pageURL, regionName string) ([]event.Event, error) {
	return t.parseRecords(doc, func(record *goquery.Selection) ([]event.Event, error) {
		return t.arenaEvents(record, pageURL, regionName)
	})
}

func (t *Tour) parseRecords(doc *goquery.Document, extract func(*goquery.Selection) ([]event.Event, error)) ([]event.Event, error) {
	var events []event.Event
	var parseErr error
	doc.Find("div.scheduleBox").EachWithBreak(func(i int, record *goquery.Selection) bool {
		recordEvents, err := extract(record)
		if err != nil {
			parseErr = fmt.Errorf("record %d: %w", i, err)
			return false
		}
		events = append(events, recordEvents...)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return events, nil
}

// connectEvents extracts the events of one CONNECT stage record. A record
// whose schedule or venue row is absent outright fails the parse, like a
// missing stage label; a schedule row that is present but unparsable drops
// the record entirely.
func (t *Tour) connectEvents(record *goquery.Selection) ([]event.Event, error) {
	stage := strings.TrimSpace(record.Find("h4").First().Text())
	if stage == "" {
		return nil, errors.New("missing stage label")
	}

	var (
		start       time.Time
		haveStart   bool
		sawSchedule bool
		sawVenue    bool
		detailsInfo string
		prelimDates string
		prelimInfo  string
	)

	record.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		header := row.Find("th").First().Text()
		cell := row.Find("td").First()
		switch {
		case strings.Contains(header, scheduleLabel):
			sawSchedule = true
			match := connectDatePattern.FindString(cell.Text())
			if match == "" {
				return
			}
			if s, ok := dateparse.Parse(match, connectFamily, 0, connectStartHour); ok {
				start, haveStart = s, true
			}
		case strings.Contains(header, prelimLabel):
			prelimDates, prelimInfo = prelimData(record, row)
		case strings.Contains(header, venueLabel):
			sawVenue = true
			if href := row.Find("a").First().AttrOr("href", ""); href != "" {
				detailsInfo = "本戦会場: " + href
			}
		}
	})

	if !sawSchedule {
		return nil, fmt.Errorf("stage %s: missing schedule row", stage)
	}
	if !sawVenue {
		return nil, fmt.Errorf("stage %s: missing venue row", stage)
	}
	if !haveStart {
		return nil, nil
	}

	events := []event.Event{
		event.NewDTourEvent(stage, start, "CONNECT", detailsInfo, prelimInfo),
	}
	if pStart, pEnd, ok := prelimPeriod(prelimDates); ok {
		events = append(events,
			event.NewDTourPeriodEvent(stage+" (予選)", pStart, pEnd, "CONNECT", "", prelimInfo))
	}
	return events, nil
}

// arenaEvents extracts the events of one ARENA stage record. Same validity
// rules as CONNECT: missing schedule or venue rows fail the parse, an
// unparsable main-event date drops the whole record.
func (t *Tour) arenaEvents(record *goquery.Selection, pageURL, regionName string) ([]event.Event, error) {
	stage := strings.TrimSpace(record.Find("h4").First().Text())
	if stage == "" {
		return nil, errors.New("missing stage label")
	}
	division := "ARENA " + regionName + "エリア"

	var (
		start       time.Time
		haveStart   bool
		sawSchedule bool
		sawVenue    bool
		detailsInfo = pageURL
		prelimDates string
		prelimInfo  string
	)

	record.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		header := row.Find("th").First().Text()
		cell := row.Find("td").First()
		switch {
		case strings.Contains(header, scheduleLabel):
			sawSchedule = true
			raw := strings.ReplaceAll(strings.ReplaceAll(cell.Text(), "\n", ""), " ", "")
			if s, ok := dateparse.Parse(raw, arenaFamily, t.now().Year(), arenaStartHour); ok {
				start, haveStart = s, true
			}
		case strings.Contains(header, prelimLabel):
			prelimDates, prelimInfo = prelimData(record, row)
		case strings.Contains(header, venueLabel):
			sawVenue = true
			if venue := cleanVenue(cell.Text()); venue != "" {
				detailsInfo = "会場: " + venue + "\n" + pageURL
			}
		}
	})

	if !sawSchedule {
		return nil, fmt.Errorf("stage %s: missing schedule row", stage)
	}
	if !sawVenue {
		return nil, fmt.Errorf("stage %s: missing venue row", stage)
	}
	if !haveStart {
		return nil, nil
	}

	events := []event.Event{
		event.NewDTourEvent(stage, start, division, detailsInfo, prelimInfo),
	}
	if pStart, pEnd, ok := prelimPeriod(prelimDates); ok {
		events = append(events,
			event.NewDTourPeriodEvent(stage+" (予選)", pStart, pEnd, division, pageURL, prelimInfo))
	}
	return events, nil
}

// prelimData reads the preliminary-period row: the compacted period text used
// for date parsing, and the human-readable info block embedded in event
// descriptions (period, venue link, qualification status link).
func prelimData(record, row *goquery.Selection) (dates, info string) {
	dates = row.Find("td").First().Text()
	dates = strings.ReplaceAll(dates, prelimVenueMarker, "")
	dates = strings.ReplaceAll(dates, " ", "")
	dates = strings.TrimSpace(dates)

	var prelimURL string
	if href := row.Find("a").First().AttrOr("href", ""); href != "" {
		prelimURL = prelimVenueMarker + ": " + href
	}

	statusURL := record.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.AttrOr("title", "") == prelimStatusTitle
	}).First().AttrOr("href", "")

	info = fmt.Sprintf("予選:\n%s\n%s\n%s:%s", dates, prelimURL, prelimStatusTitle, statusURL)
	return dates, info
}

// prelimPeriod parses a preliminary-period text into its two bounds. Anything
// other than exactly two parseable bounds with end after start yields no
// period; the record then contributes only its main event. The hour token
// 24:00 means end-of-day and maps to 23:59 of the same date.
func prelimPeriod(dates string) (start, end time.Time, ok bool) {
	parts := strings.Split(dates, rangeMarker)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, false
	}

	bounds := make([]time.Time, 0, 2)
	for _, part := range parts {
		part = strings.ReplaceAll(part, "24:00", "23:59")
		bound, parsed := dateparse.Parse(part, prelimFamily, 0, 0)
		if !parsed {
			return time.Time{}, time.Time{}, false
		}
		bounds = append(bounds, bound)
	}

	if !bounds[1].After(bounds[0]) {
		return time.Time{}, time.Time{}, false
	}
	return bounds[0], bounds[1], true
}

// cleanVenue compacts the multi-line venue cell into the display form.
func cleanVenue(text string) string {
	text = strings.TrimSpace(text)
	return strings.ReplaceAll(text, "\n\n", "\n")
}
