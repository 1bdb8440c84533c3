// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/interval"
)

// dateFormat is the wire format of calendar dates in query parameters and
// request bodies.
const dateFormat = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// parseDate parses a YYYY-MM-DD query value as midnight UTC.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, err
	}
	return interval.Midnight(t), nil
}

// parseWindow reads from/to query parameters into a rendering window.
// Missing values default to the current month.
func parseWindow(r *http.Request) (interval.Range, error) {
	now := interval.Midnight(time.Now())
	monthStart := interval.Day(now.Year(), now.Month(), 1)
	window := interval.Range{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}

	if v := r.URL.Query().Get("from"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return interval.Range{}, err
		}
		window.Start = from
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return interval.Range{}, err
		}
		window.End = to
	}
	return window, nil
}
