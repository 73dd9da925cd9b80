package hours

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtdesk/courtdesk/internal/db"
)

type fakeStore struct {
	special map[string]*db.SpecialHours
	weekly  map[int64]*db.BusinessHours
	err     error
}

func (s *fakeStore) GetSpecialHours(_ context.Context, _ int64, date string) (*db.SpecialHours, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.special[date], nil
}

func (s *fakeStore) GetBusinessHours(_ context.Context, _ int64, dayOfWeek int64) (*db.BusinessHours, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.weekly[dayOfWeek], nil
}

func TestResolve_WeeklyHours(t *testing.T) {
	// 2026-04-06 is a Monday.
	store := &fakeStore{
		weekly: map[int64]*db.BusinessHours{
			1: {DayOfWeek: 1, OpensAt: "09:00", ClosesAt: "21:00"},
		},
	}

	window, err := NewResolver(store).Resolve(context.Background(), 1, "2026-04-06")
	require.NoError(t, err)
	assert.False(t, window.Closed)
	assert.Equal(t, "09:00", window.Open)
	assert.Equal(t, "21:00", window.Close)
}

func TestResolve_SpecialHoursOverrideWeekly(t *testing.T) {
	store := &fakeStore{
		weekly: map[int64]*db.BusinessHours{
			1: {DayOfWeek: 1, OpensAt: "09:00", ClosesAt: "21:00"},
		},
		special: map[string]*db.SpecialHours{
			"2026-04-06": {Date: "2026-04-06", OpensAt: "12:00", ClosesAt: "16:00"},
		},
	}

	window, err := NewResolver(store).Resolve(context.Background(), 1, "2026-04-06")
	require.NoError(t, err)
	assert.Equal(t, "12:00", window.Open)
	assert.Equal(t, "16:00", window.Close)
}

func TestResolve_SpecialClosedWinsOverWeeklyOpen(t *testing.T) {
	// A closed special-hours row beats an open weekly pattern outright.
	store := &fakeStore{
		weekly: map[int64]*db.BusinessHours{
			1: {DayOfWeek: 1, OpensAt: "09:00", ClosesAt: "21:00"},
		},
		special: map[string]*db.SpecialHours{
			"2026-04-06": {Date: "2026-04-06", IsClosed: true},
		},
	}

	window, err := NewResolver(store).Resolve(context.Background(), 1, "2026-04-06")
	require.NoError(t, err)
	assert.True(t, window.Closed)
}

func TestResolve_NoRecordsMeansClosed(t *testing.T) {
	window, err := NewResolver(&fakeStore{}).Resolve(context.Background(), 1, "2026-04-06")
	require.NoError(t, err)
	assert.True(t, window.Closed)
}

func TestResolve_WeeklyClosedFlag(t *testing.T) {
	store := &fakeStore{
		weekly: map[int64]*db.BusinessHours{
			1: {DayOfWeek: 1, OpensAt: "09:00", ClosesAt: "21:00", IsClosed: true},
		},
	}

	window, err := NewResolver(store).Resolve(context.Background(), 1, "2026-04-06")
	require.NoError(t, err)
	assert.True(t, window.Closed)
}

func TestResolve_InvalidDate(t *testing.T) {
	_, err := NewResolver(&fakeStore{}).Resolve(context.Background(), 1, "not-a-date")
	assert.Error(t, err)
}

func TestResolve_StoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	_, err := NewResolver(store).Resolve(context.Background(), 1, "2026-04-06")
	assert.Error(t, err)
}

func TestWindowMinutes(t *testing.T) {
	cases := []struct {
		window Window
		want   int
	}{
		{Window{Open: "08:00", Close: "22:00"}, 840},
		{Window{Open: "09:30", Close: "21:00"}, 690},
		{Window{Closed: true}, 0},
		{Window{Open: "20:00", Close: "08:00"}, 0},
	}
	for _, tc := range cases {
		minutes, err := tc.window.Minutes()
		require.NoError(t, err)
		assert.Equal(t, tc.want, minutes)
	}
}

func TestWindowHours_Fractional(t *testing.T) {
	hours, err := Window{Open: "08:00", Close: "21:30"}.Hours()
	require.NoError(t, err)
	assert.InDelta(t, 13.5, hours, 1e-9)
}
