package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/occupancy"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testHorizon() interval.Range {
	return interval.Range{Start: date(2024, 1, 1), End: date(2025, 1, 1)}
}

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Airbnb Inc//Hosting Calendar 1.0//EN
BEGIN:VEVENT
UID:abc123@airbnb.com
DTSTART;VALUE=DATE:20240310
DTEND;VALUE=DATE:20240315
SUMMARY:Reserved - Mario Rossi
END:VEVENT
BEGIN:VEVENT
UID:def456@airbnb.com
DTSTART;VALUE=DATE:20240401
DTEND;VALUE=DATE:20240403
SUMMARY:Not available
END:VEVENT
END:VCALENDAR
`

func TestParseBasicFeed(t *testing.T) {
	parser := NewParser(nil)

	events, err := parser.Parse(strings.NewReader(sampleICS), testHorizon())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	ev := events[0]
	if ev.UID != "abc123@airbnb.com" {
		t.Errorf("UID = %q", ev.UID)
	}
	if ev.Summary != "Reserved - Mario Rossi" {
		t.Errorf("Summary = %q", ev.Summary)
	}
	if !ev.Start.Equal(date(2024, 3, 10)) || !ev.End.Equal(date(2024, 3, 15)) {
		t.Errorf("range = [%v, %v)", ev.Start, ev.End)
	}
}

func TestParseMissingDTEND(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:oneday@example.com
DTSTART;VALUE=DATE:20240501
SUMMARY:Blocked
END:VEVENT
END:VCALENDAR
`
	parser := NewParser(nil)
	events, err := parser.Parse(strings.NewReader(ics), testHorizon())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if got := events[0].End.Sub(events[0].Start); got != 24*time.Hour {
		t.Errorf("dateless end should span one day, got %v", got)
	}
}

func TestParseMissingUIDGetsSynthetic(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
DTSTART;VALUE=DATE:20240601
DTEND;VALUE=DATE:20240603
SUMMARY:Booked
END:VEVENT
END:VCALENDAR
`
	parser := NewParser(nil)

	first, err := parser.Parse(strings.NewReader(ics), testHorizon())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := parser.Parse(strings.NewReader(ics), testHorizon())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if len(first) != 1 || first[0].UID == "" {
		t.Fatal("expected a synthetic UID")
	}
	// Synthetic UIDs must be stable across syncs for idempotent storage.
	if first[0].UID != second[0].UID {
		t.Errorf("synthetic UID not stable: %q vs %q", first[0].UID, second[0].UID)
	}
}

func TestParseKeepsExplicitEndBeforeStart(t *testing.T) {
	// An explicit DTEND at or before DTSTART is an invalid record, not a
	// missing end. The raw dates must survive parsing so normalization can
	// reject the event; substituting a one-day span here would fabricate a
	// night that was never booked.
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:backwards@example.com
DTSTART;VALUE=DATE:20240320
DTEND;VALUE=DATE:20240315
SUMMARY:Backwards
END:VEVENT
BEGIN:VEVENT
UID:zerolen@example.com
DTSTART;VALUE=DATE:20240401
DTEND;VALUE=DATE:20240401
SUMMARY:Zero length
END:VEVENT
END:VCALENDAR
`
	parser := NewParser(nil)
	events, err := parser.Parse(strings.NewReader(ics), testHorizon())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}

	for _, ev := range events {
		if ev.End.After(ev.Start) {
			t.Errorf("event %s: end %v after start %v, invalid range was rewritten", ev.UID, ev.End, ev.Start)
		}
		_, err := occupancy.NormalizeExternalEvent("prop-1", occupancy.RawFeedEvent{
			UID:     ev.UID,
			Summary: ev.Summary,
			Start:   ev.Start,
			End:     ev.End,
			Channel: "airbnb",
		})
		if err == nil {
			t.Errorf("event %s: normalization accepted an invalid range", ev.UID)
		}
	}
}

func TestParseSkipsMalformedEvent(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:nodate@example.com
SUMMARY:No dates at all
END:VEVENT
BEGIN:VEVENT
UID:good@example.com
DTSTART;VALUE=DATE:20240701
DTEND;VALUE=DATE:20240705
SUMMARY:Fine
END:VEVENT
END:VCALENDAR
`
	parser := NewParser(nil)
	events, err := parser.Parse(strings.NewReader(ics), testHorizon())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 1 || events[0].UID != "good@example.com" {
		t.Errorf("expected only the well-formed event, got %d events", len(events))
	}
}

func TestParseUnescapesSummary(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:esc@example.com
DTSTART;VALUE=DATE:20240801
DTEND;VALUE=DATE:20240803
SUMMARY:Rossi\, Mario\; late arrival
END:VEVENT
END:VCALENDAR
`
	parser := NewParser(nil)
	events, err := parser.Parse(strings.NewReader(ics), testHorizon())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := events[0].Summary; got != "Rossi, Mario; late arrival" {
		t.Errorf("Summary = %q", got)
	}
}

func TestParseExpandsRecurrence(t *testing.T) {
	// Weekly cleaning block, four occurrences, one cancelled via EXDATE.
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:cleaning@example.com
DTSTART;VALUE=DATE:20240902
DTEND;VALUE=DATE:20240903
RRULE:FREQ=WEEKLY;COUNT=4
EXDATE;VALUE=DATE:20240916
SUMMARY:Cleaning
END:VEVENT
END:VCALENDAR
`
	parser := NewParser(nil)
	events, err := parser.Parse(strings.NewReader(ics), testHorizon())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3 (4 occurrences minus 1 EXDATE)", len(events))
	}

	seen := map[string]bool{}
	for _, ev := range events {
		if seen[ev.UID] {
			t.Errorf("duplicate occurrence UID %q", ev.UID)
		}
		seen[ev.UID] = true

		if ev.Start.Format("20060102") == "20240916" {
			t.Error("EXDATE occurrence was not skipped")
		}
		if got := ev.End.Sub(ev.Start); got != 24*time.Hour {
			t.Errorf("occurrence duration = %v, want 24h", got)
		}
	}
}

func TestParseRecurrenceBoundedByHorizon(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//EN
BEGIN:VEVENT
UID:forever@example.com
DTSTART;VALUE=DATE:20240101
DTEND;VALUE=DATE:20240102
RRULE:FREQ=DAILY
SUMMARY:Unbounded
END:VEVENT
END:VCALENDAR
`
	horizon := interval.Range{Start: date(2024, 1, 1), End: date(2024, 1, 11)}
	parser := NewParser(nil)
	events, err := parser.Parse(strings.NewReader(ics), horizon)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(events) == 0 || len(events) > 11 {
		t.Errorf("len(events) = %d, want bounded by the 10 day horizon", len(events))
	}
	for _, ev := range events {
		if ev.Start.Before(horizon.Start) || ev.Start.After(horizon.End) {
			t.Errorf("occurrence %v outside horizon", ev.Start)
		}
	}
}

func TestParseGarbageDocument(t *testing.T) {
	parser := NewParser(nil)
	if _, err := parser.Parse(strings.NewReader("this is not a calendar"), testHorizon()); err == nil {
		t.Error("expected error for non-ICS input")
	}
}
