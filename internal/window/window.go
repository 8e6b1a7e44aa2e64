// Package window resolves user-facing date/time inputs into the half-open
// nanosecond window the engine runs over.
package window

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the zone date/time inputs are interpreted in when the
// caller does not name one.
const DefaultTimezone = "America/New_York"

// Bounds is a half-open UTC nanosecond window: StartNS <= ts < EndNS.
type Bounds struct {
	StartNS int64
	EndNS   int64
}

// FromNS builds bounds from explicit nanosecond timestamps.
func FromNS(startNS, endNS int64) (Bounds, error) {
	if startNS >= endNS {
		return Bounds{}, fmt.Errorf("start must be before end")
	}
	return Bounds{StartNS: startNS, EndNS: endNS}, nil
}

// Resolve converts local dates (YYYY-MM-DD) and optional times
// (HH:MM or HH:MM:SS) in tzName to a UTC nanosecond window.
//
// With no times the window covers full days: [startDate 00:00 local,
// endDate+1d 00:00 local) — the end date is exclusive of the following
// midnight. With times it is [startDate startTime, endDate endTime).
func Resolve(startDate, endDate, startTime, endTime, tzName string) (Bounds, error) {
	if tzName == "" {
		tzName = DefaultTimezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Bounds{}, fmt.Errorf("invalid timezone %q: %w", tzName, err)
	}

	sDay, err := time.ParseInLocation("2006-01-02", startDate, loc)
	if err != nil {
		return Bounds{}, fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", startDate)
	}
	eDay, err := time.ParseInLocation("2006-01-02", endDate, loc)
	if err != nil {
		return Bounds{}, fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", endDate)
	}

	start := sDay
	if startTime != "" {
		h, m, s, err := parseHMS(startTime)
		if err != nil {
			return Bounds{}, err
		}
		start = time.Date(sDay.Year(), sDay.Month(), sDay.Day(), h, m, s, 0, loc)
	}

	var end time.Time
	if endTime != "" {
		h, m, s, err := parseHMS(endTime)
		if err != nil {
			return Bounds{}, err
		}
		end = time.Date(eDay.Year(), eDay.Month(), eDay.Day(), h, m, s, 0, loc)
	} else {
		end = eDay.AddDate(0, 0, 1)
	}

	if !start.Before(end) {
		return Bounds{}, fmt.Errorf("start must be before end")
	}
	return Bounds{StartNS: start.UnixNano(), EndNS: end.UnixNano()}, nil
}

// parseHMS accepts "HH:MM" or "HH:MM:SS", 24-hour clock.
func parseHMS(s string) (int, int, int, error) {
	layout := "15:04"
	if strings.Count(s, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid time %q, expected HH:MM or HH:MM:SS", s)
	}
	return t.Hour(), t.Minute(), t.Second(), nil
}
