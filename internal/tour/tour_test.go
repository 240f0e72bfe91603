package tour

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/darts-calendars/internal/calendar"
	"github.com/pfrederiksen/darts-calendars/internal/event"
	"github.com/pfrederiksen/darts-calendars/internal/storage"
)

type fakeSource struct {
	events []event.Event
	err    error
}

func (s *fakeSource) Name() string       { return "fake" }
func (s *fakeSource) OutputName() string { return "fake.ics" }

func (s *fakeSource) Schedule() ([]event.Event, error) {
	return s.events, s.err
}

func (s *fakeSource) CalendarConfig(events []event.Event) calendar.Config {
	return calendar.Config{ProductID: "-//Fake//Fake 1.0//", Year: 2024}
}

func testStore(t *testing.T) *storage.Writer {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	return store
}

func TestRun(t *testing.T) {
	src := &fakeSource{events: []event.Event{
		event.NewDTourEvent("STAGE 1", time.Date(2024, time.April, 20, 10, 0, 0, 0, time.UTC), "CONNECT", "", ""),
	}}
	store := testStore(t)

	result, err := Run(src, store)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.EventCount != 1 {
		t.Errorf("EventCount = %d, want 1", result.EventCount)
	}
	if !result.Updated {
		t.Error("first run should report an update")
	}

	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("reading feed: %v", err)
	}
	if !strings.Contains(string(data), "BEGIN:VCALENDAR") {
		t.Error("feed is not a calendar document")
	}
}

// An unchanged schedule must leave the persisted feed untouched.
func TestRun_Idempotent(t *testing.T) {
	src := &fakeSource{events: []event.Event{
		event.NewDTourEvent("STAGE 1", time.Date(2024, time.April, 20, 10, 0, 0, 0, time.UTC), "CONNECT", "", ""),
	}}
	store := testStore(t)

	if _, err := Run(src, store); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	result, err := Run(src, store)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if result.Updated {
		t.Error("second run with identical events should not rewrite the feed")
	}
}

func TestRun_EmptySchedule(t *testing.T) {
	store := testStore(t)
	if _, err := Run(&fakeSource{}, store); err == nil {
		t.Error("an empty schedule must never be published")
	}
	if _, err := os.Stat(store.Path("fake.ics")); !os.IsNotExist(err) {
		t.Error("no feed file should exist after a failed run")
	}
}

func TestRun_ScheduleError(t *testing.T) {
	src := &fakeSource{err: errors.New("site unreachable")}
	if _, err := Run(src, testStore(t)); err == nil {
		t.Error("Run() should propagate schedule errors")
	}
}
