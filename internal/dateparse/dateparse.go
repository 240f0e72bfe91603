// Package dateparse infers full timestamps from the partial, locale-flavored
// date fragments published on tour schedule pages.
//
// Fragments frequently omit the year or the time, carry parenthetical weekday
// annotations such as 4月20日(土), and mix full-width and half-width digits and
// punctuation. Each source site has its own family of candidate formats, tried
// in order from most to least specific. Year rollover across a calendar
// boundary is tracked separately with YearTracker.
package dateparse

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// Template is one candidate layout in a source's format family. HasYear and
// HasTime declare which components the layout itself carries; missing
// components are filled from the caller's reference year and default hour.
type Template struct {
	Layout  string
	HasYear bool
	HasTime bool
}

// Family is an ordered list of candidate templates. More specific templates
// (those including an explicit time) must come before less specific ones.
type Family []Template

// annotationPattern matches parenthetical annotations like (土) or (祝日).
// Parenthesized times such as (15:00) contain a colon and are left alone.
var annotationPattern = regexp.MustCompile(`\([^):]*\)`)

var spacePattern = regexp.MustCompile(`\s+`)

// Normalize prepares a raw fragment for template matching: folds full-width
// digits and punctuation to their ASCII forms, drops parenthetical weekday
// annotations, and collapses whitespace (including non-breaking spaces).
func Normalize(fragment string) string {
	s := width.Fold.String(fragment)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = annotationPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Parse attempts to parse a date fragment against a format family.
// The first matching template wins. If the template lacks a year the
// reference year is applied; if it lacks a time the default hour is applied.
// Returns the zero time and false when no template matches; callers treat
// that as "skip this fragment".
func Parse(fragment string, family Family, refYear, defaultHour int) (time.Time, bool) {
	s := Normalize(fragment)
	if s == "" {
		return time.Time{}, false
	}

	for _, tpl := range family {
		t, err := time.Parse(tpl.Layout, s)
		if err != nil {
			continue
		}

		year := t.Year()
		if !tpl.HasYear {
			year = refYear
		}
		hour, minute := t.Hour(), t.Minute()
		if !tpl.HasTime {
			hour, minute = defaultHour, 0
		}
		return time.Date(year, t.Month(), t.Day(), hour, minute, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

// WithYear returns t with its year replaced.
func WithYear(t time.Time, year int) time.Time {
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, t.Location())
}

// YearTracker infers implicit year increments while walking an ordered stream
// of date fragments that omit the year. When the month decreases relative to
// the previous observation the schedule has crossed a calendar boundary and
// the tracked year is incremented for that and all following observations.
//
// State is local to one traversal of one page; create a fresh tracker per run.
type YearTracker struct {
	year      int
	prevMonth time.Month
}

// NewYearTracker creates a tracker starting at the page's reference year.
func NewYearTracker(year int) *YearTracker {
	return &YearTracker{year: year}
}

// Observe records the month of the next fragment in source order and returns
// the year that fragment falls in.
func (yt *YearTracker) Observe(month time.Month) int {
	if yt.prevMonth != 0 && month < yt.prevMonth {
		yt.year++
	}
	yt.prevMonth = month
	return yt.year
}

// Year returns the tracker's current year without advancing it.
func (yt *YearTracker) Year() int {
	return yt.year
}
