// Package dashboard computes the daily reservations chart shown on the
// console's dashboard.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/resdesk/internal/adapter"
	"github.com/julianstephens/resdesk/internal/constants"
	"github.com/julianstephens/resdesk/internal/models"
	"github.com/julianstephens/resdesk/internal/reservations"
)

// Range selects the chart window
type Range string

const (
	LastWeek  Range = "lastWeek"
	LastMonth Range = "lastMonth"
)

// Ranges lists the selectable windows in menu order
var Ranges = []Range{LastWeek, LastMonth}

func (r Range) Label() string {
	switch r {
	case LastMonth:
		return "Last month"
	default:
		return "Last week"
	}
}

// ParseRange accepts "lastWeek"/"week" and "lastMonth"/"month"
func ParseRange(s string) (Range, error) {
	switch s {
	case "", "lastWeek", "week":
		return LastWeek, nil
	case "lastMonth", "month":
		return LastMonth, nil
	}
	return "", fmt.Errorf("invalid range %q (expected lastWeek or lastMonth)", s)
}

// Window is an inclusive span of whole calendar days
type Window struct {
	Start time.Time // midnight of the first day
	End   time.Time // last instant of the final day
}

// WindowFor returns the window for r ending on the day of now, in now's
// location. lastWeek spans today and the six days before it; lastMonth
// starts on the same day one month earlier.
func WindowFor(r Range, now time.Time) Window {
	today := startOfDay(now)
	var start time.Time
	switch r {
	case LastMonth:
		start = today.AddDate(0, -1, 0)
	default:
		start = today.AddDate(0, 0, -6)
	}
	return Window{
		Start: start,
		End:   today.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
}

// Days is the number of calendar days in the window
func (w Window) Days() int {
	n := 0
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DailyCounts groups reservations by the calendar day of UpdatedAt in the
// window's location and returns one zero-filled point per day.
func DailyCounts(items []models.Reservation, w Window) []models.ChartPoint {
	loc := w.Start.Location()
	counts := make(map[string]int)
	for _, r := range items {
		if r.UpdatedAt.IsZero() {
			continue
		}
		day := r.UpdatedAt.In(loc).Format(constants.DateFormat)
		counts[day]++
	}

	points := make([]models.ChartPoint, 0, w.Days())
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		key := d.Format(constants.DateFormat)
		points = append(points, models.ChartPoint{Date: key, Value: counts[key]})
	}
	return points
}

// Trend is the last point's value minus the first's. Fewer than two points
// have no trend.
func Trend(points []models.ChartPoint) int {
	if len(points) < 2 {
		return 0
	}
	return points[len(points)-1].Value - points[0].Value
}

// Chart is a computed dashboard chart
type Chart struct {
	Range  Range
	Window Window
	Points []models.ChartPoint
	Trend  int
	// Total counts the reservations inside the window
	Total int
}

// Max returns the largest point value
func (c Chart) Max() int {
	m := 0
	for _, p := range c.Points {
		if p.Value > m {
			m = p.Value
		}
	}
	return m
}

// Source lists reservations
type Source interface {
	List(ctx context.Context, q reservations.Query) (reservations.Page, error)
}

// Loader fetches reservations and builds charts
type Loader struct {
	src Source
	loc *time.Location
	now func() time.Time
}

// NewLoader creates a loader that groups days in loc
func NewLoader(src Source, loc *time.Location) *Loader {
	if loc == nil {
		loc = time.Local
	}
	return &Loader{src: src, loc: loc, now: time.Now}
}

// Load fetches the most recently updated reservations and keeps those
// inside the window. The API only filters by equality, so the window is
// applied here.
func (l *Loader) Load(ctx context.Context, r Range) (Chart, error) {
	w := WindowFor(r, l.now().In(l.loc))

	page, err := l.src.List(ctx, reservations.Query{
		Page:     1,
		PageSize: constants.DashboardFetchSize,
		Sorters:  []adapter.Sorter{{Field: constants.DefaultSortField, Order: adapter.Desc}},
	})
	if err != nil {
		return Chart{}, err
	}

	inside := make([]models.Reservation, 0, len(page.Items))
	for _, item := range page.Items {
		if w.Contains(item.UpdatedAt) {
			inside = append(inside, item)
		}
	}

	points := DailyCounts(inside, w)
	return Chart{
		Range:  r,
		Window: w,
		Points: points,
		Trend:  Trend(points),
		Total:  len(inside),
	}, nil
}
