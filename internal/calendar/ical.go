// Package calendar implements the feed synchronization pipeline: fetching
// external iCal feeds, parsing them into events, normalizing those events and
// keeping per-feed sync status fresh without letting one bad feed affect its
// siblings.
package calendar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
)

// Maximum occurrences expanded from a single recurring event. Guards against
// unbounded RRULEs in misconfigured feeds.
const maxOccurrencesPerEvent = 1000

// Event is one occupancy entry parsed from an iCal feed. Recurring events
// are already expanded into concrete entries.
type Event struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
}

// Parser parses iCal/ICS calendar documents.
type Parser struct {
	httpClient *http.Client
}

// NewParser creates a parser with the given HTTP client. A nil client gets a
// default with a 30 second timeout.
func NewParser(client *http.Client) *Parser {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Parser{httpClient: client}
}

// FetchAndParse downloads and parses an iCal feed. Recurring events are
// expanded inside the given horizon.
func (p *Parser) FetchAndParse(ctx context.Context, url string, horizon interval.Range) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	return p.Parse(resp.Body, horizon)
}

// Parse reads iCal data from a reader. Individual malformed events are
// skipped; only an unreadable document fails the whole parse.
func (p *Parser) Parse(r io.Reader, horizon interval.Range) ([]Event, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}

	events := make([]Event, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		expanded, err := parseVEvent(ve, horizon)
		if err != nil {
			// Skip this VEVENT, keep the rest of the document.
			log.Printf("Skipping unparseable calendar event: %v", err)
			continue
		}
		events = append(events, expanded...)
	}
	return events, nil
}

func parseVEvent(ve *ics.VEvent, horizon interval.Range) ([]Event, error) {
	start, err := ve.GetStartAt()
	if err != nil || start.IsZero() {
		return nil, fmt.Errorf("event has no usable DTSTART")
	}

	end, err := ve.GetEndAt()
	if err != nil || end.IsZero() {
		// DTEND is optional for all-day entries; a dateless end means a
		// single occupied day. An explicit end at or before the start is
		// kept as-is so normalization rejects the record and the sync
		// counts it as skipped.
		end = start.Add(24 * time.Hour)
	}

	var summary string
	if prop := ve.GetProperty(ics.ComponentPropertySummary); prop != nil {
		summary = unescapeText(prop.Value)
	}

	uid := ""
	if prop := ve.GetProperty(ics.ComponentPropertyUniqueId); prop != nil {
		uid = prop.Value
	}
	if uid == "" {
		uid = syntheticUID(summary, start, end)
	}

	base := Event{UID: uid, Summary: summary, Start: start, End: end}

	rruleProp := ve.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil || rruleProp.Value == "" {
		return []Event{base}, nil
	}
	return expandRecurrence(base, rruleProp.Value, exceptionDates(ve), horizon)
}

// expandRecurrence turns an RRULE-bearing event into concrete occurrences
// inside the horizon, preserving the base event's duration. Each occurrence
// gets a date-suffixed UID so re-syncs stay idempotent.
func expandRecurrence(base Event, rawRule string, exdates map[string]bool, horizon interval.Range) ([]Event, error) {
	rule, err := rrule.StrToRRule(rawRule)
	if err != nil {
		return nil, fmt.Errorf("parsing RRULE: %w", err)
	}
	rule.DTStart(base.Start)

	duration := base.End.Sub(base.Start)
	starts := rule.Between(horizon.Start, horizon.End, true)
	if len(starts) > maxOccurrencesPerEvent {
		starts = starts[:maxOccurrencesPerEvent]
	}

	out := make([]Event, 0, len(starts))
	for _, occStart := range starts {
		if exdates[occStart.Format("20060102")] {
			continue
		}
		out = append(out, Event{
			UID:     base.UID + "/" + occStart.Format("20060102"),
			Summary: base.Summary,
			Start:   occStart,
			End:     occStart.Add(duration),
		})
	}
	return out, nil
}

func exceptionDates(ve *ics.VEvent) map[string]bool {
	out := make(map[string]bool)
	for _, prop := range ve.GetProperties(ics.ComponentPropertyExdate) {
		for _, part := range strings.Split(prop.Value, ",") {
			part = strings.TrimSpace(part)
			if len(part) >= 8 {
				out[part[:8]] = true
			}
		}
	}
	return out
}

func syntheticUID(summary string, start, end time.Time) string {
	sum := sha256.Sum256([]byte(summary))
	return fmt.Sprintf("%s-%s-%s",
		start.Format("20060102"), end.Format("20060102"), hex.EncodeToString(sum[:4]))
}

func unescapeText(v string) string {
	v = strings.ReplaceAll(v, `\n`, "\n")
	v = strings.ReplaceAll(v, `\,`, ",")
	v = strings.ReplaceAll(v, `\;`, ";")
	v = strings.ReplaceAll(v, `\\`, `\`)
	return v
}
