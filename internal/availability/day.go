// internal/availability/day.go
package availability

import (
	"fmt"
	"time"

	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/hours"
	"github.com/courtdesk/courtdesk/internal/timeutil"
)

// CourtSlot is one court's status within one hour bucket.
type CourtSlot struct {
	CourtID int64  `json:"courtId"`
	Status  Status `json:"status"`
}

// Summary aggregates the per-court statuses of one bucket. Pending counts
// courts whose occupying booking is still awaiting payment confirmation.
type Summary struct {
	Available int `json:"available"`
	Partial   int `json:"partial"`
	Booked    int `json:"booked"`
	Pending   int `json:"pending"`
	Total     int `json:"total"`
}

// HourBucket is one slot of the business day. Start and End are UTC instants
// derived from the club-local bucket boundaries, so they line up with
// booking intervals regardless of the club's timezone or DST.
type HourBucket struct {
	Hour          int         `json:"hour"`
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	Courts        []CourtSlot `json:"courts"`
	Summary       Summary     `json:"summary"`
	OverallStatus Status      `json:"overallStatus"`
	// Blocked is advisory UI policy (past days and past hours are not
	// bookable from the calendar). The booking workflow enforces its own
	// acceptance check; this flag is never authoritative.
	Blocked bool `json:"blocked"`
}

// Day is the availability matrix of one club for one calendar date.
type Day struct {
	Date      string       `json:"date"`
	DayOfWeek int          `json:"dayOfWeek"`
	DayName   string       `json:"dayName"`
	IsToday   bool         `json:"isToday"`
	Closed    bool         `json:"closed"`
	Hours     []HourBucket `json:"hours"`
}

// BuildDay computes the per-court, per-hour availability of one date.
// window is the resolved business-hours window for that date, bookings are
// the (non-cancelled) bookings overlapping it, and now anchors the advisory
// past-hour blocking. Bucket boundaries are club-local hours converted to
// UTC for that specific date.
func BuildDay(date, tz string, window hours.Window, courts []db.Court, bookings []db.Booking, now time.Time) (Day, error) {
	parsed, err := timeutil.ParseDate(date)
	if err != nil {
		return Day{}, err
	}
	loc, err := timeutil.LoadZone(tz)
	if err != nil {
		return Day{}, err
	}

	today := now.In(loc).Format(timeutil.DateLayout)
	day := Day{
		Date:      date,
		DayOfWeek: int(parsed.Weekday()),
		DayName:   parsed.Weekday().String(),
		IsToday:   date == today,
	}

	if window.Closed || len(courts) == 0 {
		day.Closed = true
		return day, nil
	}

	startHour, endHour, err := bucketRange(window)
	if err != nil {
		return Day{}, err
	}

	byCourt := make(map[int64][]db.Booking, len(courts))
	for _, b := range bookings {
		byCourt[b.CourtID] = append(byCourt[b.CourtID], b)
	}

	pastDay := date < today
	currentHour := now.In(loc).Hour()

	for h := startHour; h < endHour; h++ {
		bucketStart := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), h, 0, 0, 0, loc).UTC()
		bucketEnd := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), h+1, 0, 0, 0, loc).UTC()

		bucket := HourBucket{
			Hour:   h,
			Start:  bucketStart,
			End:    bucketEnd,
			Courts: make([]CourtSlot, 0, len(courts)),
		}

		for _, court := range courts {
			status, pending := courtBucketStatus(byCourt[court.ID], bucketStart, bucketEnd)
			bucket.Courts = append(bucket.Courts, CourtSlot{CourtID: court.ID, Status: status})
			switch status {
			case StatusBooked:
				bucket.Summary.Booked++
			case StatusPartial:
				bucket.Summary.Partial++
			default:
				bucket.Summary.Available++
			}
			if pending {
				bucket.Summary.Pending++
			}
		}
		bucket.Summary.Total = len(courts)

		switch {
		case bucket.Summary.Booked == len(courts):
			bucket.OverallStatus = StatusBooked
		case bucket.Summary.Available == len(courts):
			bucket.OverallStatus = StatusAvailable
		default:
			bucket.OverallStatus = StatusPartial
		}

		// A bucket starting at the current hour stays open: a slot
		// already in progress may still be booked.
		bucket.Blocked = pastDay || (day.IsToday && h < currentHour)

		day.Hours = append(day.Hours, bucket)
	}

	return day, nil
}

// courtBucketStatus folds one court's bookings into a bucket status. A
// booking fully covering the bucket short-circuits to booked; any other
// overlap lifts the status to at least partial.
func courtBucketStatus(bookings []db.Booking, bucketStart, bucketEnd time.Time) (Status, bool) {
	status := StatusAvailable
	pending := false
	for _, b := range bookings {
		if !b.StartsAt.Before(bucketEnd) || !b.EndsAt.After(bucketStart) {
			continue
		}
		if b.Status == db.BookingStatusPending {
			pending = true
		}
		if !b.StartsAt.After(bucketStart) && !b.EndsAt.Before(bucketEnd) {
			status = StatusBooked
			continue
		}
		status = status.Max(StatusPartial)
	}
	return status, pending
}

// bucketRange converts the window into [startHour, endHour) hour buckets.
// A close time with minutes (21:30) still opens the final partial hour.
func bucketRange(window hours.Window) (int, int, error) {
	open, err := timeutil.ParseClock(window.Open)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid open time: %w", err)
	}
	closeAt, err := timeutil.ParseClock(window.Close)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid close time: %w", err)
	}

	startHour := open.Hour()
	endHour := closeAt.Hour()
	if closeAt.Minute() > 0 {
		endHour++
	}
	if endHour <= startHour {
		return 0, 0, fmt.Errorf("close time %s is not after open time %s", window.Close, window.Open)
	}
	return startHour, endHour, nil
}
