package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/testutil"
)

func seedClub(t *testing.T, database *db.DB) (int64, int64) {
	t.Helper()
	ctx := context.Background()

	orgID, err := database.Queries.CreateOrganization(ctx, "Test Org", "test-org")
	require.NoError(t, err)

	clubID, err := database.Queries.CreateClub(ctx, db.Club{
		OrganizationID: orgID,
		Name:           "Main Club",
		Slug:           "main-club",
		Timezone:       "UTC",
		Currency:       "EUR",
	})
	require.NoError(t, err)

	courtID, err := database.Queries.CreateCourt(ctx, db.Court{
		ClubID: clubID,
		Name:   "Court 1",
		Sport:  "padel",
		Active: true,
	})
	require.NoError(t, err)

	return clubID, courtID
}

func TestListBookingsOverlapping(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	_, courtID := seedClub(t, database)

	day := func(h int) time.Time {
		return time.Date(2026, 4, 6, h, 0, 0, 0, time.UTC)
	}

	inside := db.Booking{CourtID: courtID, StartsAt: day(10), EndsAt: day(11), Status: db.BookingStatusPaid}
	before := db.Booking{CourtID: courtID, StartsAt: day(6), EndsAt: day(8), Status: db.BookingStatusPaid}
	touching := db.Booking{CourtID: courtID, StartsAt: day(8), EndsAt: day(9), Status: db.BookingStatusPaid}
	cancelled := db.Booking{CourtID: courtID, StartsAt: day(12), EndsAt: day(13), Status: db.BookingStatusCancelled}
	for _, b := range []db.Booking{inside, before, touching, cancelled} {
		_, err := database.Queries.CreateBooking(ctx, b)
		require.NoError(t, err)
	}

	// [09:00, 14:00) excludes the booking ending exactly at 09:00 and the
	// cancelled one.
	got, err := database.Queries.ListBookingsOverlapping(ctx,
		[]int64{courtID}, day(9), day(14), []string{db.BookingStatusCancelled})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].StartsAt.Equal(inside.StartsAt))

	// Without the exclusion the cancelled booking shows up.
	got, err = database.Queries.ListBookingsOverlapping(ctx,
		[]int64{courtID}, day(9), day(14), nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// No court ids means no query at all.
	got, err = database.Queries.ListBookingsOverlapping(ctx, nil, day(9), day(14), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListActiveCourtsForClub_SkipsInactive(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	clubID, _ := seedClub(t, database)

	_, err := database.Queries.CreateCourt(ctx, db.Court{
		ClubID: clubID,
		Name:   "Court 2",
		Sport:  "padel",
		Active: false,
	})
	require.NoError(t, err)

	courts, err := database.Queries.ListActiveCourtsForClub(ctx, clubID)
	require.NoError(t, err)
	require.Len(t, courts, 1)
	assert.Equal(t, "Court 1", courts[0].Name)
}

func TestUpsertBusinessHours_Overwrites(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	clubID, _ := seedClub(t, database)

	require.NoError(t, database.Queries.UpsertBusinessHours(ctx, db.BusinessHours{
		ClubID: clubID, DayOfWeek: 1, OpensAt: "09:00", ClosesAt: "21:00",
	}))
	require.NoError(t, database.Queries.UpsertBusinessHours(ctx, db.BusinessHours{
		ClubID: clubID, DayOfWeek: 1, OpensAt: "08:00", ClosesAt: "22:00",
	}))

	hours, err := database.Queries.ListBusinessHours(ctx, clubID)
	require.NoError(t, err)
	require.Len(t, hours, 1)
	assert.Equal(t, "08:00", hours[0].OpensAt)
	assert.Equal(t, "22:00", hours[0].ClosesAt)
}

func TestUpsertDailyStatistics_Overwrites(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	clubID, _ := seedClub(t, database)

	first := db.DailyStatistics{
		ClubID: clubID, Date: "2026-04-06",
		BookedSlots: 2, TotalSlots: 14, OccupancyPercentage: 14.28,
		ComputedAt: time.Now().UTC(),
	}
	require.NoError(t, database.Queries.UpsertDailyStatistics(ctx, first))

	second := first
	second.BookedSlots = 4
	second.OccupancyPercentage = 28.57
	require.NoError(t, database.Queries.UpsertDailyStatistics(ctx, second))

	stored, err := database.Queries.GetDailyStatistics(ctx, clubID, "2026-04-06")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 4, stored.BookedSlots, 1e-9)
	assert.InDelta(t, 28.57, stored.OccupancyPercentage, 1e-9)
}

func TestGetDailyStatistics_AbsentReturnsNil(t *testing.T) {
	database := testutil.NewTestDB(t)
	clubID, _ := seedClub(t, database)

	stored, err := database.Queries.GetDailyStatistics(context.Background(), clubID, "2026-04-06")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestListDailyStatisticsForMonth(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	clubID, _ := seedClub(t, database)

	for _, date := range []string{"2026-03-31", "2026-04-01", "2026-04-30", "2026-05-01"} {
		require.NoError(t, database.Queries.UpsertDailyStatistics(ctx, db.DailyStatistics{
			ClubID: clubID, Date: date, ComputedAt: time.Now().UTC(),
		}))
	}

	stats, err := database.Queries.ListDailyStatisticsForMonth(ctx, clubID, 4, 2026)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2026-04-01", stats[0].Date)
	assert.Equal(t, "2026-04-30", stats[1].Date)
}

func TestInsertMonthlyStatisticsIfAbsent(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	clubID, _ := seedClub(t, database)

	first := db.MonthlyStatistics{
		ClubID: clubID, Month: 4, Year: 2026,
		AverageOccupancy: 60, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, database.Queries.InsertMonthlyStatisticsIfAbsent(ctx, first))

	// A second insert for the same month is silently ignored.
	second := first
	second.AverageOccupancy = 99
	require.NoError(t, database.Queries.InsertMonthlyStatisticsIfAbsent(ctx, second))

	stored, err := database.Queries.GetMonthlyStatistics(ctx, clubID, 4, 2026)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.InDelta(t, 60, stored.AverageOccupancy, 1e-9)
}

func TestSpecialHoursLifecycle(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	clubID, _ := seedClub(t, database)

	require.NoError(t, database.Queries.UpsertSpecialHours(ctx, db.SpecialHours{
		ClubID: clubID, Date: "2026-12-25", IsClosed: true,
	}))

	special, err := database.Queries.GetSpecialHours(ctx, clubID, "2026-12-25")
	require.NoError(t, err)
	require.NotNil(t, special)
	assert.True(t, special.IsClosed)

	require.NoError(t, database.Queries.DeleteSpecialHours(ctx, clubID, "2026-12-25"))

	special, err = database.Queries.GetSpecialHours(ctx, clubID, "2026-12-25")
	require.NoError(t, err)
	assert.Nil(t, special)
}
