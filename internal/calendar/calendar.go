// Package calendar assembles tour events into an iCalendar document.
//
// The assembler maps each event onto a VEVENT (DTSTART/DTEND/DTSTAMP/SUMMARY/
// LOCATION/DESCRIPTION/UID) in the order the adapters produced them. It never
// reorders, deduplicates, or cross-validates events — those are adapter
// responsibilities. An empty event sequence is an error: an empty feed is
// never published.
package calendar

import (
	"errors"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/darts-calendars/internal/event"
)

// Version is the iCalendar version emitted in every document.
const Version = "2.0"

const icsTimeLayout = "20060102T150405"

// Config carries the fixed per-source calendar metadata.
type Config struct {
	// ProductID is the PRODID constant for the source's feed.
	ProductID string
	// Year anchors the calendar-level DTSTART at January 1st of that year.
	Year int
}

// Assemble builds a calendar document from an ordered event sequence.
func Assemble(cfg Config, events []event.Event) (*ics.Calendar, error) {
	if len(events) == 0 {
		return nil, errors.New("no events to assemble")
	}

	cal := ics.NewCalendar()
	cal.SetProductId(cfg.ProductID)
	cal.SetVersion(Version)

	anchor := time.Date(cfg.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	cal.CalendarProperties = append(cal.CalendarProperties, ics.CalendarProperty{
		BaseProperty: ics.BaseProperty{
			IANAToken: string(ics.PropertyDtstart),
			Value:     anchor.Format(icsTimeLayout),
		},
	})

	for _, ev := range events {
		ve := cal.AddEvent(ev.UID())
		ve.SetDtStampTime(ev.Start())
		ve.SetStartAt(ev.Start())
		ve.SetEndAt(ev.End())
		ve.SetSummary(ev.Summary())
		if location := ev.Location(); location != "" {
			ve.SetLocation(location)
		}
		ve.SetDescription(ev.Description())
	}

	return cal, nil
}

// Serialize renders a calendar document to its wire bytes.
func Serialize(cal *ics.Calendar) []byte {
	return []byte(cal.Serialize())
}
