// internal/db/queries.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx so queries run inside or outside
// a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) GetClubByID(ctx context.Context, id int64) (Club, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT id, organization_id, name, slug, timezone, currency FROM clubs WHERE id = ?`, id)
	var c Club
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Slug, &c.Timezone, &c.Currency)
	return c, err
}

func (q *Queries) ListClubs(ctx context.Context) ([]Club, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, organization_id, name, slug, timezone, currency FROM clubs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clubs []Club
	for rows.Next() {
		var c Club
		if err := rows.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.Slug, &c.Timezone, &c.Currency); err != nil {
			return nil, err
		}
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

// ListActiveCourtsForClub returns the club's active courts in creation order.
// Inactive courts never participate in availability or occupancy.
func (q *Queries) ListActiveCourtsForClub(ctx context.Context, clubID int64) ([]Court, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, club_id, name, sport, indoor, active, hourly_price
		 FROM courts WHERE club_id = ? AND active = 1 ORDER BY id`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courts []Court
	for rows.Next() {
		var c Court
		if err := rows.Scan(&c.ID, &c.ClubID, &c.Name, &c.Sport, &c.Indoor, &c.Active, &c.HourlyPrice); err != nil {
			return nil, err
		}
		courts = append(courts, c)
	}
	return courts, rows.Err()
}

// GetBusinessHours returns the weekly-hours row for (club, dayOfWeek), or
// nil when none exists.
func (q *Queries) GetBusinessHours(ctx context.Context, clubID, dayOfWeek int64) (*BusinessHours, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT club_id, day_of_week, opens_at, closes_at, is_closed
		 FROM business_hours WHERE club_id = ? AND day_of_week = ?`, clubID, dayOfWeek)
	var h BusinessHours
	err := row.Scan(&h.ClubID, &h.DayOfWeek, &h.OpensAt, &h.ClosesAt, &h.IsClosed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (q *Queries) ListBusinessHours(ctx context.Context, clubID int64) ([]BusinessHours, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT club_id, day_of_week, opens_at, closes_at, is_closed
		 FROM business_hours WHERE club_id = ? ORDER BY day_of_week`, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hours []BusinessHours
	for rows.Next() {
		var h BusinessHours
		if err := rows.Scan(&h.ClubID, &h.DayOfWeek, &h.OpensAt, &h.ClosesAt, &h.IsClosed); err != nil {
			return nil, err
		}
		hours = append(hours, h)
	}
	return hours, rows.Err()
}

func (q *Queries) UpsertBusinessHours(ctx context.Context, h BusinessHours) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO business_hours (club_id, day_of_week, opens_at, closes_at, is_closed)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (club_id, day_of_week) DO UPDATE SET
		   opens_at = excluded.opens_at,
		   closes_at = excluded.closes_at,
		   is_closed = excluded.is_closed`,
		h.ClubID, h.DayOfWeek, h.OpensAt, h.ClosesAt, h.IsClosed)
	return err
}

func (q *Queries) DeleteBusinessHours(ctx context.Context, clubID, dayOfWeek int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM business_hours WHERE club_id = ? AND day_of_week = ?`, clubID, dayOfWeek)
	return err
}

// GetSpecialHours returns the date-specific override for (club, date), or
// nil when none exists.
func (q *Queries) GetSpecialHours(ctx context.Context, clubID int64, date string) (*SpecialHours, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT club_id, date, opens_at, closes_at, is_closed
		 FROM special_hours WHERE club_id = ? AND date = ?`, clubID, date)
	var h SpecialHours
	err := row.Scan(&h.ClubID, &h.Date, &h.OpensAt, &h.ClosesAt, &h.IsClosed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (q *Queries) UpsertSpecialHours(ctx context.Context, h SpecialHours) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO special_hours (club_id, date, opens_at, closes_at, is_closed)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (club_id, date) DO UPDATE SET
		   opens_at = excluded.opens_at,
		   closes_at = excluded.closes_at,
		   is_closed = excluded.is_closed`,
		h.ClubID, h.Date, h.OpensAt, h.ClosesAt, h.IsClosed)
	return err
}

func (q *Queries) DeleteSpecialHours(ctx context.Context, clubID int64, date string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM special_hours WHERE club_id = ? AND date = ?`, clubID, date)
	return err
}

// ListBookingsOverlapping returns bookings on the given courts that overlap
// [from, to), excluding the given statuses. Interval overlap is
// starts_at < to AND ends_at > from, so a booking spanning midnight shows
// up on both calendar dates it touches.
func (q *Queries) ListBookingsOverlapping(ctx context.Context, courtIDs []int64, from, to time.Time, excludeStatuses []string) ([]Booking, error) {
	if len(courtIDs) == 0 {
		return nil, nil
	}

	args := make([]any, 0, len(courtIDs)+len(excludeStatuses)+2)
	placeholders := make([]string, len(courtIDs))
	for i, id := range courtIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	query := fmt.Sprintf(
		`SELECT id, court_id, starts_at, ends_at, status FROM bookings
		 WHERE court_id IN (%s) AND starts_at < ? AND ends_at > ?`,
		strings.Join(placeholders, ","))
	args = append(args, to, from)
	for _, status := range excludeStatuses {
		query += " AND status != ?"
		args = append(args, status)
	}
	query += " ORDER BY starts_at"

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.CourtID, &b.StartsAt, &b.EndsAt, &b.Status); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (q *Queries) CreateBooking(ctx context.Context, b Booking) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO bookings (court_id, starts_at, ends_at, status) VALUES (?, ?, ?, ?)`,
		b.CourtID, b.StartsAt, b.EndsAt, b.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// UpsertDailyStatistics inserts or replaces the (club, date) record in a
// single statement. Concurrent writers (booking-triggered update racing the
// nightly job) cannot lose updates through read-modify-write.
func (q *Queries) UpsertDailyStatistics(ctx context.Context, s DailyStatistics) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO daily_statistics (club_id, date, booked_slots, total_slots, occupancy_pct, computed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (club_id, date) DO UPDATE SET
		   booked_slots = excluded.booked_slots,
		   total_slots = excluded.total_slots,
		   occupancy_pct = excluded.occupancy_pct,
		   computed_at = excluded.computed_at`,
		s.ClubID, s.Date, s.BookedSlots, s.TotalSlots, s.OccupancyPercentage, s.ComputedAt)
	return err
}

// GetDailyStatistics returns the record for (club, date), or nil when none
// has been computed yet.
func (q *Queries) GetDailyStatistics(ctx context.Context, clubID int64, date string) (*DailyStatistics, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT club_id, date, booked_slots, total_slots, occupancy_pct, computed_at
		 FROM daily_statistics WHERE club_id = ? AND date = ?`, clubID, date)
	var s DailyStatistics
	err := row.Scan(&s.ClubID, &s.Date, &s.BookedSlots, &s.TotalSlots, &s.OccupancyPercentage, &s.ComputedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListDailyStatisticsForMonth returns all daily records of a club whose date
// falls in the given month, ordered by date.
func (q *Queries) ListDailyStatisticsForMonth(ctx context.Context, clubID, month, year int64) ([]DailyStatistics, error) {
	prefix := fmt.Sprintf("%04d-%02d-", year, month)
	rows, err := q.db.QueryContext(ctx,
		`SELECT club_id, date, booked_slots, total_slots, occupancy_pct, computed_at
		 FROM daily_statistics WHERE club_id = ? AND date LIKE ? || '%' ORDER BY date`,
		clubID, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []DailyStatistics
	for rows.Next() {
		var s DailyStatistics
		if err := rows.Scan(&s.ClubID, &s.Date, &s.BookedSlots, &s.TotalSlots, &s.OccupancyPercentage, &s.ComputedAt); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// GetMonthlyStatistics returns the cached rollup for (club, month, year), or
// nil when none has been created.
func (q *Queries) GetMonthlyStatistics(ctx context.Context, clubID, month, year int64) (*MonthlyStatistics, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT club_id, month, year, average_occupancy, previous_month_occupancy, occupancy_change_pct, created_at
		 FROM monthly_statistics WHERE club_id = ? AND month = ? AND year = ?`,
		clubID, month, year)
	var s MonthlyStatistics
	err := row.Scan(&s.ClubID, &s.Month, &s.Year, &s.AverageOccupancy, &s.PreviousMonthOccupancy, &s.OccupancyChangePercent, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// InsertMonthlyStatisticsIfAbsent atomically creates the rollup unless one
// already exists for (club, month, year). Closes the duplicate-create race
// of the read-through cache's check-then-create.
func (q *Queries) InsertMonthlyStatisticsIfAbsent(ctx context.Context, s MonthlyStatistics) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO monthly_statistics
		   (club_id, month, year, average_occupancy, previous_month_occupancy, occupancy_change_pct, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ClubID, s.Month, s.Year, s.AverageOccupancy, s.PreviousMonthOccupancy, s.OccupancyChangePercent, s.CreatedAt)
	return err
}

func (q *Queries) CreateOrganization(ctx context.Context, name, slug string) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO organizations (name, slug) VALUES (?, ?)`, name, slug)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (q *Queries) CreateClub(ctx context.Context, c Club) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO clubs (organization_id, name, slug, timezone, currency) VALUES (?, ?, ?, ?, ?)`,
		c.OrganizationID, c.Name, c.Slug, c.Timezone, c.Currency)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (q *Queries) CreateCourt(ctx context.Context, c Court) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`INSERT INTO courts (club_id, name, sport, indoor, active, hourly_price) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ClubID, c.Name, c.Sport, c.Indoor, c.Active, c.HourlyPrice)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
