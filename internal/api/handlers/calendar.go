package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/HostSuite455/mind-wander-flow-sub000/internal/api/middleware"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/calendar"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/grid"
	"github.com/HostSuite455/mind-wander-flow-sub000/internal/occupancy"
)

// GetCalendar returns the aggregated occupancy view for a property scope and
// window. Filter parameters narrow the interval list; conflicts and
// statistics always describe the full window.
func GetCalendar(viewService *calendar.ViewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid from/to date")
			return
		}

		view, err := viewService.BuildView(r.Context(), r.URL.Query().Get("property"), window)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to build calendar view")
			return
		}

		filter, err := parseFilter(r)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
			return
		}
		view.Intervals = filter.Apply(view)

		writeJSON(w, http.StatusOK, view)
	}
}

// GetCalendarLayout returns the grid placement of every interval visible in
// the window, ready for a week or month grid.
func GetCalendarLayout(viewService *calendar.ViewService) http.HandlerFunc {
	type layoutResponse struct {
		Window    any                       `json:"window"`
		Rows      int                       `json:"rows"`
		Intervals []grid.PositionedInterval `json:"intervals"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		window, err := parseWindow(r)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid from/to date")
			return
		}

		// granularity=week narrows an explicit from date to a 7 day window;
		// the default remains the month parseWindow produced.
		if r.URL.Query().Get("granularity") == "week" && r.URL.Query().Get("to") == "" {
			window.End = window.Start.AddDate(0, 0, 7)
		}

		view, err := viewService.BuildView(r.Context(), r.URL.Query().Get("property"), window)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to build calendar view")
			return
		}

		positioned := grid.Layout(view.Intervals, window)
		writeJSON(w, http.StatusOK, layoutResponse{
			Window:    view.Window,
			Rows:      grid.RowCount(positioned),
			Intervals: positioned,
		})
	}
}

func parseFilter(r *http.Request) (occupancy.Filter, error) {
	q := r.URL.Query()
	filter := occupancy.Filter{
		Search:     q.Get("q"),
		SortBy:     occupancy.SortKey(q.Get("sort")),
		Descending: q.Get("order") == "desc",
	}

	if v := q.Get("status"); v != "" {
		for _, s := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, occupancy.Status(strings.TrimSpace(s)))
		}
	}
	if v := q.Get("channel"); v != "" {
		for _, c := range strings.Split(v, ",") {
			filter.Channels = append(filter.Channels, strings.TrimSpace(c))
		}
	}
	if v := q.Get("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errInvalidPrice
		}
		filter.MinPrice = &p
	}
	if v := q.Get("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return filter, errInvalidPrice
		}
		filter.MaxPrice = &p
	}

	return filter, nil
}

type filterError string

func (e filterError) Error() string { return string(e) }

const errInvalidPrice = filterError("min_price and max_price must be numbers")
