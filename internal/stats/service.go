// internal/stats/service.go
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/hours"
	"github.com/courtdesk/courtdesk/internal/timeutil"
)

// bulkConcurrency caps the nightly job's per-club fan-out.
const bulkConcurrency = 4

// Store is the persistence surface of the aggregator.
type Store interface {
	GetClubByID(ctx context.Context, id int64) (db.Club, error)
	ListClubs(ctx context.Context) ([]db.Club, error)
	ListActiveCourtsForClub(ctx context.Context, clubID int64) ([]db.Court, error)
	ListBookingsOverlapping(ctx context.Context, courtIDs []int64, from, to time.Time, excludeStatuses []string) ([]db.Booking, error)
	UpsertDailyStatistics(ctx context.Context, s db.DailyStatistics) error
	GetDailyStatistics(ctx context.Context, clubID int64, date string) (*db.DailyStatistics, error)
	ListDailyStatisticsForMonth(ctx context.Context, clubID, month, year int64) ([]db.DailyStatistics, error)
	GetMonthlyStatistics(ctx context.Context, clubID, month, year int64) (*db.MonthlyStatistics, error)
	InsertMonthlyStatisticsIfAbsent(ctx context.Context, s db.MonthlyStatistics) error
}

// DateResult is one date's outcome of a multi-day recomputation.
type DateResult struct {
	Date  string
	Stats *db.DailyStatistics
	Err   error
}

// ClubResult is one club's outcome of the bulk nightly computation.
type ClubResult struct {
	ClubID  int64
	Success bool
	Skipped bool
	Err     error
}

// Service computes and stores daily and monthly occupancy statistics.
type Service struct {
	store    Store
	resolver *hours.Resolver
	now      func() time.Time
}

func NewService(store Store, resolver *hours.Resolver) *Service {
	return &Service{store: store, resolver: resolver, now: time.Now}
}

// WithNow overrides the service clock. Test hook.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// CalculateAndStoreDaily computes the (club, date) occupancy record and
// upserts it. Recomputation overwrites; it never accumulates. totalSlots is
// active courts × open hours, bookedSlots the summed duration in hours of
// non-cancelled bookings overlapping the club-local day, and the percentage
// is 0 whenever totalSlots is 0.
func (s *Service) CalculateAndStoreDaily(ctx context.Context, clubID int64, date string) (*db.DailyStatistics, error) {
	if _, err := timeutil.ParseDate(date); err != nil {
		return nil, err
	}

	club, err := s.store.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("load club: %w", err)
	}

	window, err := s.resolver.Resolve(ctx, clubID, date)
	if err != nil {
		return nil, err
	}

	courts, err := s.store.ListActiveCourtsForClub(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("load courts: %w", err)
	}

	var totalSlots, bookedSlots float64
	if !window.Closed && len(courts) > 0 {
		openHours, err := window.Hours()
		if err != nil {
			return nil, err
		}
		totalSlots = float64(len(courts)) * openHours

		bookedSlots, err = s.bookedHours(ctx, club, courts, date)
		if err != nil {
			return nil, err
		}
	}

	record := db.DailyStatistics{
		ClubID:      clubID,
		Date:        date,
		BookedSlots: bookedSlots,
		TotalSlots:  totalSlots,
		ComputedAt:  s.now().UTC(),
	}
	if totalSlots > 0 {
		record.OccupancyPercentage = bookedSlots / totalSlots * 100
	}

	if err := s.store.UpsertDailyStatistics(ctx, record); err != nil {
		return nil, fmt.Errorf("store daily statistics: %w", err)
	}
	return &record, nil
}

// bookedHours sums the duration in hours of every non-cancelled booking on
// the club's courts overlapping the club-local day.
func (s *Service) bookedHours(ctx context.Context, club db.Club, courts []db.Court, date string) (float64, error) {
	courtIDs := make([]int64, 0, len(courts))
	for _, court := range courts {
		courtIDs = append(courtIDs, court.ID)
	}

	dayStart, err := timeutil.LocalToUTC(date, "00:00", club.Timezone)
	if err != nil {
		return 0, err
	}
	parsed, err := timeutil.ParseDate(date)
	if err != nil {
		return 0, err
	}
	dayEnd, err := timeutil.LocalToUTC(parsed.AddDate(0, 0, 1).Format(timeutil.DateLayout), "00:00", club.Timezone)
	if err != nil {
		return 0, err
	}

	bookings, err := s.store.ListBookingsOverlapping(ctx, courtIDs, dayStart, dayEnd, []string{db.BookingStatusCancelled})
	if err != nil {
		return 0, fmt.Errorf("load bookings: %w", err)
	}

	var booked float64
	for _, b := range bookings {
		booked += b.EndsAt.Sub(b.StartsAt).Hours()
	}
	return booked, nil
}

// UpdateForBooking recomputes the daily record for every club-local calendar
// date the booking's interval touches, both endpoint dates included. Each
// date is processed independently; one date failing does not abort the rest,
// and the caller receives the per-date outcomes.
func (s *Service) UpdateForBooking(ctx context.Context, clubID int64, start, end time.Time) ([]DateResult, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("booking start %s is not before end %s", start, end)
	}

	club, err := s.store.GetClubByID(ctx, clubID)
	if err != nil {
		return nil, fmt.Errorf("load club: %w", err)
	}

	loc, err := timeutil.LoadZone(club.Timezone)
	if err != nil {
		return nil, err
	}

	first := start.In(loc)
	first = time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
	last := end.In(loc)
	last = time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, loc)

	var results []DateResult
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(timeutil.DateLayout)
		record, err := s.CalculateAndStoreDaily(ctx, clubID, date)
		results = append(results, DateResult{Date: date, Stats: record, Err: err})
	}
	return results, nil
}

// CalculateDailyForAllClubs runs the daily computation for every club. In
// fallback mode a club that already holds a record for the date is skipped
// (gap-fill pass); otherwise every club is recomputed unconditionally.
// Clubs run concurrently but results come back in club order, and one club's
// failure never stops the rest.
func (s *Service) CalculateDailyForAllClubs(ctx context.Context, date string, fallback bool) ([]ClubResult, error) {
	if _, err := timeutil.ParseDate(date); err != nil {
		return nil, err
	}

	clubs, err := s.store.ListClubs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}

	results := make([]ClubResult, len(clubs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkConcurrency)

	for i, club := range clubs {
		g.Go(func() error {
			results[i] = s.computeClubDay(gctx, club.ID, date, fallback)
			return nil
		})
	}
	// Workers never return errors; failures are carried per club.
	_ = g.Wait()

	return results, nil
}

func (s *Service) computeClubDay(ctx context.Context, clubID int64, date string, fallback bool) ClubResult {
	result := ClubResult{ClubID: clubID}

	if fallback {
		existing, err := s.store.GetDailyStatistics(ctx, clubID, date)
		if err != nil {
			result.Err = fmt.Errorf("check existing statistics: %w", err)
			return result
		}
		if existing != nil {
			result.Skipped = true
			return result
		}
	}

	if _, err := s.CalculateAndStoreDaily(ctx, clubID, date); err != nil {
		result.Err = err
		return result
	}
	result.Success = true
	return result
}

// GetOrCalculateMonthly is a read-through cache over monthly rollups. An
// existing row is returned unchanged; otherwise the month is averaged from
// its daily records, compared against the previous month, stored, and
// returned. No daily data for the month yields (nil, nil) and no row.
func (s *Service) GetOrCalculateMonthly(ctx context.Context, clubID, month, year int64) (*db.MonthlyStatistics, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	existing, err := s.store.GetMonthlyStatistics(ctx, clubID, month, year)
	if err != nil {
		return nil, fmt.Errorf("load monthly statistics: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	daily, err := s.store.ListDailyStatisticsForMonth(ctx, clubID, month, year)
	if err != nil {
		return nil, fmt.Errorf("list daily statistics: %w", err)
	}
	if len(daily) == 0 {
		return nil, nil
	}

	record := db.MonthlyStatistics{
		ClubID:           clubID,
		Month:            month,
		Year:             year,
		AverageOccupancy: meanOccupancy(daily),
		CreatedAt:        s.now().UTC(),
	}

	prevMonth, prevYear := month-1, year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, year-1
	}
	prevDaily, err := s.store.ListDailyStatisticsForMonth(ctx, clubID, prevMonth, prevYear)
	if err != nil {
		return nil, fmt.Errorf("list previous month statistics: %w", err)
	}
	if len(prevDaily) > 0 {
		previous := meanOccupancy(prevDaily)
		record.PreviousMonthOccupancy = sql.NullFloat64{Float64: previous, Valid: true}
		record.OccupancyChangePercent = sql.NullFloat64{
			Float64: changePercent(record.AverageOccupancy, previous),
			Valid:   true,
		}
	}

	if err := s.store.InsertMonthlyStatisticsIfAbsent(ctx, record); err != nil {
		return nil, fmt.Errorf("store monthly statistics: %w", err)
	}
	// Re-read so a concurrent creator's row wins consistently.
	stored, err := s.store.GetMonthlyStatistics(ctx, clubID, month, year)
	if err != nil {
		return nil, fmt.Errorf("load monthly statistics: %w", err)
	}
	return stored, nil
}

func meanOccupancy(daily []db.DailyStatistics) float64 {
	var sum float64
	for _, d := range daily {
		sum += d.OccupancyPercentage
	}
	return sum / float64(len(daily))
}

// changePercent is the month-over-month delta. A previous month at exactly 0
// with current activity is defined as +100 rather than a division by zero.
func changePercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}
