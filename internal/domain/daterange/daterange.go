package daterange

import (
	"fmt"
	"time"
)

// ISOFormat is the calendar-date layout used everywhere in the service:
// in run rows, rendered queries and progress output.
const ISOFormat = "2006-01-02"

// Range is an inclusive range of calendar dates. Both endpoints are
// normalized to midnight UTC; time-of-day on the inputs is discarded.
type Range struct {
	Start time.Time
	End   time.Time
}

// New builds a Range after validating that start does not come after end.
func New(start, end time.Time) (Range, error) {
	start = truncate(start)
	end = truncate(end)
	if end.Before(start) {
		return Range{}, fmt.Errorf("invalid date range: start %s is after end %s",
			start.Format(ISOFormat), end.Format(ISOFormat))
	}
	return Range{Start: start, End: end}, nil
}

// Parse parses an ISO calendar date (YYYY-MM-DD).
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(ISOFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// ParseRange parses two ISO dates and builds an inclusive Range from them.
func ParseRange(start, end string) (Range, error) {
	s, err := Parse(start)
	if err != nil {
		return Range{}, err
	}
	e, err := Parse(end)
	if err != nil {
		return Range{}, err
	}
	return New(s, e)
}

// Days returns the number of dates in the range, endpoints included.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Dates returns every date of the range in ascending order.
func (r Range) Dates() []time.Time {
	dates := make([]time.Time, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// Strings returns every date of the range formatted as an ISO calendar
// string, in ascending order.
func (r Range) Strings() []string {
	dates := r.Dates()
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(ISOFormat)
	}
	return out
}

// String renders the range as "start..end".
func (r Range) String() string {
	return r.Start.Format(ISOFormat) + ".." + r.End.Format(ISOFormat)
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
