// internal/timeutil/timeutil.go
package timeutil

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for calendar dates (YYYY-MM-DD).
	DateLayout = "2006-01-02"
	// ClockLayout is the wire format for wall-clock times of day (HH:MM).
	ClockLayout = "15:04"
)

// ParseDate validates and parses a YYYY-MM-DD calendar date.
func ParseDate(date string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return parsed, nil
}

// ParseClock validates and parses an HH:MM time of day.
func ParseClock(clock string) (time.Time, error) {
	parsed, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", clock, err)
	}
	return parsed, nil
}

// LoadZone resolves an IANA timezone identifier. An empty string means UTC.
func LoadZone(tz string) (*time.Location, error) {
	if tz == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// LocalToUTC interprets date+clock as wall-clock time in tz and returns the
// corresponding UTC instant. The UTC offset is the one observed in tz on that
// specific date, so conversions on either side of a DST transition differ.
func LocalToUTC(date, clock, tz string) (time.Time, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return time.Time{}, err
	}
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	local := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
	return local.UTC(), nil
}

// UTCToLocalTime returns the HH:MM wall-clock time of instant in tz.
func UTCToLocalTime(instant time.Time, tz string) (string, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(ClockLayout), nil
}

// UTCToLocalDate returns the YYYY-MM-DD calendar date of instant in tz.
// A date-boundary crossing (22:00 UTC landing after midnight local) is
// reflected in the returned date.
func UTCToLocalDate(instant time.Time, tz string) (string, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return "", err
	}
	return instant.In(loc).Format(DateLayout), nil
}

// TimeOfDayToUTC converts a timezone-agnostic HH:MM time of day to its UTC
// equivalent using the offset observed in tz on ref's date. The result may
// roll past midnight (22:00 local can become 03:00 UTC the next day), so
// callers must not assume same-day.
func TimeOfDayToUTC(clock, tz string, ref time.Time) (string, error) {
	instant, err := LocalToUTC(ref.Format(DateLayout), clock, tz)
	if err != nil {
		return "", err
	}
	return instant.Format(ClockLayout), nil
}

// UTCToTimeOfDay is the inverse of TimeOfDayToUTC: it converts an HH:MM time
// of day in UTC to the local wall-clock time in tz, using ref's date for the
// offset.
func UTCToTimeOfDay(clock, tz string, ref time.Time) (string, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return "", err
	}
	c, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	instant := time.Date(ref.Year(), ref.Month(), ref.Day(), c.Hour(), c.Minute(), 0, 0, time.UTC)
	return instant.In(loc).Format(ClockLayout), nil
}

// TodayInZone returns now's calendar date in tz, truncated to midnight in tz.
func TodayInZone(tz string, now time.Time) (time.Time, error) {
	loc, err := LoadZone(tz)
	if err != nil {
		return time.Time{}, err
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc), nil
}

// TodayStr returns now's calendar date in tz as YYYY-MM-DD.
func TodayStr(tz string, now time.Time) (string, error) {
	return UTCToLocalDate(now, tz)
}

// CurrentTimeInZone returns now's wall-clock time in tz as HH:MM.
func CurrentTimeInZone(tz string, now time.Time) (string, error) {
	return UTCToLocalTime(now, tz)
}

// WeekMonday returns the Monday on or before t, at t's time of day and
// location. Used to anchor calendar-aligned week views.
func WeekMonday(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
