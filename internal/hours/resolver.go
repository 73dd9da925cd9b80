// internal/hours/resolver.go
package hours

import (
	"context"
	"fmt"
	"time"

	"github.com/courtdesk/courtdesk/internal/db"
	"github.com/courtdesk/courtdesk/internal/timeutil"
)

// Store is the persistence surface the resolver needs. Both getters return
// nil (not an error) when no row exists.
type Store interface {
	GetSpecialHours(ctx context.Context, clubID int64, date string) (*db.SpecialHours, error)
	GetBusinessHours(ctx context.Context, clubID, dayOfWeek int64) (*db.BusinessHours, error)
}

// Window is a club's effective open window for one calendar date, in
// club-local wall-clock time.
type Window struct {
	Open   string
	Close  string
	Closed bool
}

// Minutes returns the window length in minutes, 0 when closed. A close time
// at or before the open time yields 0 rather than a negative span.
func (w Window) Minutes() (int, error) {
	if w.Closed {
		return 0, nil
	}
	open, err := timeutil.ParseClock(w.Open)
	if err != nil {
		return 0, err
	}
	closeAt, err := timeutil.ParseClock(w.Close)
	if err != nil {
		return 0, err
	}
	minutes := int(closeAt.Sub(open) / time.Minute)
	if minutes < 0 {
		return 0, nil
	}
	return minutes, nil
}

// Hours returns the window length in hours, fractional.
func (w Window) Hours() (float64, error) {
	minutes, err := w.Minutes()
	if err != nil {
		return 0, err
	}
	return float64(minutes) / 60, nil
}

// Resolver computes the effective open window for a club on a date.
// Precedence: a special-hours row for the date wins outright over the weekly
// pattern, even when it marks the day closed; absent both, the day is closed.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the effective window for (clubID, date). date must be
// YYYY-MM-DD. Pure read; a missing club simply resolves to closed.
func (r *Resolver) Resolve(ctx context.Context, clubID int64, date string) (Window, error) {
	parsed, err := timeutil.ParseDate(date)
	if err != nil {
		return Window{}, err
	}

	special, err := r.store.GetSpecialHours(ctx, clubID, date)
	if err != nil {
		return Window{}, fmt.Errorf("load special hours: %w", err)
	}
	if special != nil {
		if special.IsClosed {
			return Window{Closed: true}, nil
		}
		return Window{Open: special.OpensAt, Close: special.ClosesAt}, nil
	}

	weekly, err := r.store.GetBusinessHours(ctx, clubID, int64(parsed.Weekday()))
	if err != nil {
		return Window{}, fmt.Errorf("load business hours: %w", err)
	}
	if weekly == nil || weekly.IsClosed {
		return Window{Closed: true}, nil
	}
	return Window{Open: weekly.OpensAt, Close: weekly.ClosesAt}, nil
}
