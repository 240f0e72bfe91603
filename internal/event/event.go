package event

import (
	"fmt"
	"strings"
	"time"
)

// Default end hours per variant. Start hours come from the source adapters;
// end times are derived from the start date unless explicitly overridden
// (D-TOUR preliminary periods only).
const (
	perfectEndHour = 20
	japanEndHour   = 23
	dtourEndHour   = 22
)

const uidTimeLayout = "20060102T150405"

// Event is the common contract all tour event variants satisfy.
type Event interface {
	// Stage returns the display label of the tournament stage.
	Stage() string
	// Start returns the full event start timestamp.
	Start() time.Time
	// End returns the event end timestamp, always after Start.
	End() time.Time
	// Summary returns the calendar entry summary line.
	Summary() string
	// Location returns the venue, or "" when the source publishes none.
	Location() string
	// Description returns the calendar entry description block.
	Description() string
	// UID returns the deterministic identity of the event. Two events share
	// a UID only when both start and stage are identical.
	UID() string
}

// base carries the attributes common to every variant.
type base struct {
	stage string
	start time.Time
	end   time.Time
}

// newBase derives the end timestamp from the start date and the variant's
// default end hour. A start at or past the end hour would invert the
// interval, so the end is pushed past the start instead.
func newBase(stage string, start time.Time, endHour int) base {
	end := time.Date(start.Year(), start.Month(), start.Day(), endHour, 0, 0, 0, start.Location())
	if !end.After(start) {
		end = start.Add(2 * time.Hour)
	}
	return base{stage: stage, start: start, end: end}
}

func (b base) Stage() string    { return b.stage }
func (b base) Start() time.Time { return b.start }
func (b base) End() time.Time   { return b.end }

func (b base) UID() string {
	return b.start.Format(uidTimeLayout) + "@" + b.stage
}

// PerfectEvent is one leg of a PERFECT pro tour stage.
type PerfectEvent struct {
	base
	location   string
	venue      string
	point      string
	men        bool
	women      bool
	outlineURL string
}

// NewPerfectEvent creates a PERFECT event. outlineURL is the already-resolved
// tournament outline link, or "" when the probe found none.
func NewPerfectEvent(stage string, start time.Time, location, venue, point string, men, women bool, outlineURL string) *PerfectEvent {
	return &PerfectEvent{
		base:       newBase(stage, start, perfectEndHour),
		location:   location,
		venue:      venue,
		point:      point,
		men:        men,
		women:      women,
		outlineURL: outlineURL,
	}
}

func (e *PerfectEvent) Summary() string {
	var participants []string
	if e.men {
		participants = append(participants, "男子")
	}
	if e.women {
		participants = append(participants, "女子")
	}
	return fmt.Sprintf("PERFECT %s: %s (%s) (%s)", e.stage, e.location, strings.Join(participants, "/"), e.point)
}

func (e *PerfectEvent) Location() string { return e.venue }

func (e *PerfectEvent) Description() string { return e.outlineURL }

// JapanEvent is one day of a JAPAN pro tour stage. A two-day stage yields two
// discrete events, matching the source's own calendar behavior.
type JapanEvent struct {
	base
	location   string
	venue      string
	seasonYear int
	ex         bool
	detailsURL string
}

// NewJapanEvent creates a JAPAN event. seasonYear is the tournament season
// the page publishes (which can differ from the event year after a rollover);
// detailsURL is the already-resolved stage detail link, or "".
func NewJapanEvent(stage string, start time.Time, location, venue string, seasonYear int, ex bool, detailsURL string) *JapanEvent {
	return &JapanEvent{
		base:       newBase(stage, start, japanEndHour),
		location:   location,
		venue:      venue,
		seasonYear: seasonYear,
		ex:         ex,
		detailsURL: detailsURL,
	}
}

func (e *JapanEvent) Summary() string {
	summary := fmt.Sprintf("JAPAN %s: %s", e.stage, e.location)
	if e.ex {
		summary += " (EX)"
	}
	return summary
}

func (e *JapanEvent) Location() string { return e.venue }

func (e *JapanEvent) Description() string { return e.detailsURL }

// SeasonYear returns the tournament season the event belongs to.
func (e *JapanEvent) SeasonYear() int { return e.seasonYear }

// DTourEvent is a D-TOUR tournament, either a main event in the CONNECT or an
// ARENA division, or a synthetic preliminary-qualification period.
type DTourEvent struct {
	base
	division    string
	detailsInfo string
	prelimInfo  string
}

// NewDTourEvent creates a D-TOUR main event with the derived default end.
func NewDTourEvent(stage string, start time.Time, division, detailsInfo, prelimInfo string) *DTourEvent {
	return &DTourEvent{
		base:        newBase(stage, start, dtourEndHour),
		division:    division,
		detailsInfo: detailsInfo,
		prelimInfo:  prelimInfo,
	}
}

// NewDTourPeriodEvent creates a preliminary-period event with an explicit end.
// This is the only variant whose end is carried through rather than derived;
// callers must ensure end is after start.
func NewDTourPeriodEvent(stage string, start, end time.Time, division, detailsInfo, prelimInfo string) *DTourEvent {
	return &DTourEvent{
		base:        base{stage: stage, start: start, end: end},
		division:    division,
		detailsInfo: detailsInfo,
		prelimInfo:  prelimInfo,
	}
}

func (e *DTourEvent) Summary() string {
	return fmt.Sprintf("DTOUR %s %s", e.division, e.stage)
}

func (e *DTourEvent) Location() string { return "" }

func (e *DTourEvent) Description() string {
	return e.detailsInfo + "\n" + e.prelimInfo
}

// Division returns the event's division label (CONNECT or ARENA region).
func (e *DTourEvent) Division() string { return e.division }
