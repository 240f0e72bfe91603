package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/darts-calendars/internal/event"
)

func testEvents() []event.Event {
	return []event.Event{
		event.NewPerfectEvent("第3戦", time.Date(2024, time.April, 20, 8, 0, 0, 0, time.UTC),
			"東京", "Tokyo Arena", "A", true, false, ""),
		event.NewJapanEvent("STAGE 1", time.Date(2024, time.November, 2, 8, 0, 0, 0, time.UTC),
			"北海道", "札幌ドーム", 2024, false, ""),
	}
}

func TestAssemble(t *testing.T) {
	cfg := Config{
		ProductID: "-//PERFECT Pro Tour Unofficial Calendar//PERFECT Pro Tour Unofficial Calendar 1.0//",
		Year:      2024,
	}

	cal, err := Assemble(cfg, testEvents())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	serialized := string(Serialize(cal))

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		// long lines are folded at 75 octets, so only the head of the
		// PRODID is matched verbatim
		"PRODID:-//PERFECT Pro Tour Unofficial Calendar",
		"DTSTART:20240101T000000",
		"BEGIN:VEVENT",
		"UID:20240420T080000@第3戦",
		"DTSTART:20240420T080000Z",
		"DTEND:20240420T200000Z",
		"DTSTAMP:20240420T080000Z",
		"UID:20241102T080000@STAGE 1",
		"LOCATION:Tokyo Arena",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(serialized, field) {
			t.Errorf("serialized calendar missing %q", field)
		}
	}
}

func TestAssemble_PreservesEventOrder(t *testing.T) {
	cal, err := Assemble(Config{ProductID: "-//test//", Year: 2024}, testEvents())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	serialized := string(Serialize(cal))
	first := strings.Index(serialized, "20240420T080000@")
	second := strings.Index(serialized, "20241102T080000@")
	if first == -1 || second == -1 {
		t.Fatal("serialized calendar missing event UIDs")
	}
	if first > second {
		t.Error("events serialized out of extraction order")
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	cfg := Config{ProductID: "-//test//", Year: 2024}

	calA, err := Assemble(cfg, testEvents())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	calB, err := Assemble(cfg, testEvents())
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if string(Serialize(calA)) != string(Serialize(calB)) {
		t.Error("identical input must serialize to identical bytes")
	}
}

func TestAssemble_EmptyEvents(t *testing.T) {
	if _, err := Assemble(Config{ProductID: "-//test//", Year: 2024}, nil); err == nil {
		t.Error("Assemble() with no events should error; an empty feed is never published")
	}
}
