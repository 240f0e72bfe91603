package perfect

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/darts-calendars/internal/event"
	"github.com/pfrederiksen/darts-calendars/internal/links"
)

func testTour() *Tour {
	return &Tour{
		resolver: links.Nop{},
		now:      func() time.Time { return time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing HTML: %v", err)
	}
	return doc
}

const scheduleHTML = `<html><body>
<h3 class="midashi1">大会日程<span>2024</span></h3>
<table id="list">
<tr><th>大会</th><th>開催地</th><th>日程</th><th>会場</th><th>ポイント</th><th>男子</th><th>女子</th></tr>
<tr><th>Stage 3</th><td>Tokyo Arena</td><td>4月20日(土)</td><td>東京体育館</td><td>A</td>
<td><img src="/images/schedule_man.gif"></td><td><img src="/images/schedule_none.gif"></td></tr>
<tr><th>第4戦</th><td>大阪</td><td>5月18日(土)<br>5月19日(日)</td><td>大阪城ホール</td><td>B</td>
<td><img src="/images/schedule_man.gif"></td><td><img src="/images/schedule_woman.gif"></td></tr>
<tr><th>第5戦</th><td>未定</td><td>調整中</td><td>未定</td><td>-</td>
<td><img src="/images/schedule_none.gif"></td><td><img src="/images/schedule_none.gif"></td></tr>
</table></body></html>`

func TestParseSchedule(t *testing.T) {
	events, err := testTour().parseSchedule(parseHTML(t, scheduleHTML))
	if err != nil {
		t.Fatalf("parseSchedule() error = %v", err)
	}

	// Stage 3 has one leg, 第4戦 has two, 第5戦 is pending and skipped.
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}

	first, ok := events[0].(*event.PerfectEvent)
	if !ok {
		t.Fatalf("events[0] is %T, want *event.PerfectEvent", events[0])
	}

	wantStart := time.Date(2024, time.April, 20, 8, 0, 0, 0, time.UTC)
	if !first.Start().Equal(wantStart) {
		t.Errorf("Start() = %v, want %v", first.Start(), wantStart)
	}
	wantEnd := time.Date(2024, time.April, 20, 20, 0, 0, 0, time.UTC)
	if !first.End().Equal(wantEnd) {
		t.Errorf("End() = %v, want %v", first.End(), wantEnd)
	}

	summary := first.Summary()
	for _, fragment := range []string{"Stage 3", "Tokyo Arena", "男子", "A"} {
		if !strings.Contains(summary, fragment) {
			t.Errorf("Summary() = %q, missing %q", summary, fragment)
		}
	}
	if strings.Contains(summary, "女子") {
		t.Errorf("Summary() = %q, should not list 女子", summary)
	}
	if got := first.Location(); got != "東京体育館" {
		t.Errorf("Location() = %q", got)
	}
}

func TestParseSchedule_MultiLegStage(t *testing.T) {
	events, err := testTour().parseSchedule(parseHTML(t, scheduleHTML))
	if err != nil {
		t.Fatalf("parseSchedule() error = %v", err)
	}

	wantStarts := []time.Time{
		time.Date(2024, time.May, 18, 8, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 19, 8, 0, 0, 0, time.UTC),
	}
	for i, want := range wantStarts {
		evt := events[1+i]
		if !evt.Start().Equal(want) {
			t.Errorf("leg %d Start() = %v, want %v", i, evt.Start(), want)
		}
		if evt.Stage() != "第4戦" {
			t.Errorf("leg %d Stage() = %q", i, evt.Stage())
		}
	}
	if events[1].UID() == events[2].UID() {
		t.Error("legs on different days must have different UIDs")
	}
}

func TestParseSchedule_PublishedYearOverridesCurrent(t *testing.T) {
	// The page publishes 2024 while the clock says 2025.
	tour := testTour()
	tour.now = func() time.Time { return time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC) }

	events, err := tour.parseSchedule(parseHTML(t, scheduleHTML))
	if err != nil {
		t.Fatalf("parseSchedule() error = %v", err)
	}
	if got := events[0].Start().Year(); got != 2024 {
		t.Errorf("Start().Year() = %d, want published year 2024", got)
	}
}

func TestParseSchedule_FallbackYear(t *testing.T) {
	html := strings.Replace(scheduleHTML, "<span>2024</span>", "", 1)

	events, err := testTour().parseSchedule(parseHTML(t, html))
	if err != nil {
		t.Fatalf("parseSchedule() error = %v", err)
	}
	if got := events[0].Start().Year(); got != 2024 {
		t.Errorf("Start().Year() = %d, want current year 2024", got)
	}
}

func TestParseSchedule_MissingStage(t *testing.T) {
	html := `<html><body><table id="list">
<tr><td>東京</td><td>4月20日(土)</td><td>会場</td><td>A</td><td><img src="x.gif"></td><td><img src="x.gif"></td></tr>
</table></body></html>`

	if _, err := testTour().parseSchedule(parseHTML(t, html)); err == nil {
		t.Error("a row without a stage label should fail the parse")
	}
}

func TestOutlineURL(t *testing.T) {
	start := time.Date(2024, time.April, 20, 8, 0, 0, 0, time.UTC)
	want := "https://www.prodarts.jp/archives/outline/20240420"
	if got := OutlineURL(start); got != want {
		t.Errorf("OutlineURL() = %q, want %q", got, want)
	}
}
