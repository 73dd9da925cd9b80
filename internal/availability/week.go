// internal/availability/week.go
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/hours"
	"github.com/courtdesk/courtdesk/internal/timeutil"
)

const weekDays = 7

// Week view modes.
const (
	ModeRolling  = "rolling"  // day 0 is today in the club's timezone
	ModeCalendar = "calendar" // day 0 is the Monday on/before today
)

// Store is the persistence surface the builder needs beyond the resolver's.
type Store interface {
	GetClubByID(ctx context.Context, id int64) (db.Club, error)
	ListActiveCourtsForClub(ctx context.Context, clubID int64) ([]db.Court, error)
	ListBookingsOverlapping(ctx context.Context, courtIDs []int64, from, to time.Time, excludeStatuses []string) ([]db.Booking, error)
}

// CourtInfo describes one court in the week response header.
type CourtInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Sport  string `json:"type"`
	Indoor bool   `json:"indoor"`
}

// Week is the full 7-day availability matrix returned to callers.
type Week struct {
	WeekStart string      `json:"weekStart"`
	WeekEnd   string      `json:"weekEnd"`
	Days      []Day       `json:"days"`
	Courts    []CourtInfo `json:"courts"`
}

// Builder assembles week views by running the hours resolver and the day
// calculator across a contiguous date range. Stateless per call; "today" is
// re-derived from the injected clock on every build.
type Builder struct {
	store    Store
	resolver *hours.Resolver
	now      func() time.Time
}

func NewBuilder(store Store, resolver *hours.Resolver) *Builder {
	return &Builder{store: store, resolver: resolver, now: time.Now}
}

// WithNow overrides the builder's clock. Test hook.
func (b *Builder) WithNow(now func() time.Time) *Builder {
	b.now = now
	return b
}

// BuildWeek produces the 7-day matrix for a club. start optionally anchors
// the range (YYYY-MM-DD); when empty, rolling mode anchors on today and
// calendar mode on the Monday of the current week, both in club-local time.
func (b *Builder) BuildWeek(ctx context.Context, clubID int64, start, mode string) (*Week, error) {
	if mode == "" {
		mode = ModeRolling
	}
	if mode != ModeRolling && mode != ModeCalendar {
		return nil, fmt.Errorf("invalid mode %q", mode)
	}

	club, err := b.store.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("load club: %w", err)
	}

	now := b.now().UTC()
	anchor, err := b.anchorDate(club.Timezone, start, mode, now)
	if err != nil {
		return nil, err
	}

	dates := make([]string, weekDays)
	for i := range dates {
		dates[i] = anchor.AddDate(0, 0, i).Format(timeutil.DateLayout)
	}

	courts, err := b.store.ListActiveCourtsForClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("load courts: %w", err)
	}

	bookings, err := b.rangeBookings(ctx, club, courts, dates)
	if err != nil {
		return nil, err
	}

	week := &Week{
		WeekStart: dates[0],
		WeekEnd:   dates[weekDays-1],
		Courts:    make([]CourtInfo, 0, len(courts)),
	}
	for _, court := range courts {
		week.Courts = append(week.Courts, CourtInfo{
			ID:     court.ID,
			Name:   court.Name,
			Sport:  court.Sport,
			Indoor: court.Indoor,
		})
	}

	for _, date := range dates {
		day, err := b.buildOne(ctx, clubID, club.Timezone, date, courts, bookings, now)
		if err != nil {
			// One date failing must not corrupt its siblings; the day
			// is reported closed and the rest of the week stands.
			log.Ctx(ctx).Error().Err(err).
				Int64("club_id", clubID).
				Str("date", date).
				Msg("Day availability computation failed")
			parsed, parseErr := timeutil.ParseDate(date)
			if parseErr != nil {
				continue
			}
			day = Day{
				Date:      date,
				DayOfWeek: int(parsed.Weekday()),
				DayName:   parsed.Weekday().String(),
				Closed:    true,
			}
		}
		week.Days = append(week.Days, day)
	}

	return week, nil
}

func (b *Builder) buildOne(ctx context.Context, clubID int64, tz, date string, courts []db.Court, bookings []db.Booking, now time.Time) (Day, error) {
	window, err := b.resolver.Resolve(ctx, clubID, date)
	if err != nil {
		return Day{}, err
	}
	return BuildDay(date, tz, window, courts, bookings, now)
}

// rangeBookings fetches every non-cancelled booking overlapping the whole
// week in one query; BuildDay intersects per bucket.
func (b *Builder) rangeBookings(ctx context.Context, club db.Club, courts []db.Court, dates []string) ([]db.Booking, error) {
	if len(courts) == 0 {
		return nil, nil
	}
	courtIDs := make([]int64, 0, len(courts))
	for _, court := range courts {
		courtIDs = append(courtIDs, court.ID)
	}

	from, err := timeutil.LocalToUTC(dates[0], "00:00", club.Timezone)
	if err != nil {
		return nil, err
	}
	lastStart, err := timeutil.ParseDate(dates[len(dates)-1])
	if err != nil {
		return nil, err
	}
	to, err := timeutil.LocalToUTC(lastStart.AddDate(0, 0, 1).Format(timeutil.DateLayout), "00:00", club.Timezone)
	if err != nil {
		return nil, err
	}

	bookings, err := b.store.ListBookingsOverlapping(ctx, courtIDs, from, to, []string{db.BookingStatusCancelled})
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}
	return bookings, nil
}

// anchorDate picks day 0 of the week view.
func (b *Builder) anchorDate(tz, start, mode string, now time.Time) (time.Time, error) {
	var anchor time.Time
	if start != "" {
		parsed, err := timeutil.ParseDate(start)
		if err != nil {
			return time.Time{}, err
		}
		anchor = parsed
	} else {
		today, err := timeutil.TodayInZone(tz, now)
		if err != nil {
			return time.Time{}, err
		}
		anchor = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	}
	if mode == ModeCalendar {
		anchor = timeutil.WeekMonday(anchor)
	}
	return anchor, nil
}
