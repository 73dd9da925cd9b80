// internal/db/models.go
package db

import (
	"database/sql"
	"time"
)

// Booking statuses. Everything except cancelled counts toward occupancy.
const (
	BookingStatusPending   = "pending"
	BookingStatusReserved  = "reserved"
	BookingStatusPaid      = "paid"
	BookingStatusCancelled = "cancelled"
)

type Organization struct {
	ID   int64
	Name string
	Slug string
}

type Club struct {
	ID             int64
	OrganizationID int64
	Name           string
	Slug           string
	Timezone       string
	Currency       string
}

type Court struct {
	ID          int64
	ClubID      int64
	Name        string
	Sport       string
	Indoor      bool
	Active      bool
	HourlyPrice float64
}

// BusinessHours is the weekly pattern: one row per (club, day_of_week),
// times stored as HH:MM wall-clock strings in the club's timezone.
type BusinessHours struct {
	ClubID    int64
	DayOfWeek int64
	OpensAt   string
	ClosesAt  string
	IsClosed  bool
}

// SpecialHours overrides BusinessHours entirely for one calendar date.
type SpecialHours struct {
	ClubID   int64
	Date     string
	OpensAt  string
	ClosesAt string
	IsClosed bool
}

type Booking struct {
	ID       int64
	CourtID  int64
	StartsAt time.Time
	EndsAt   time.Time
	Status   string
}

// DailyStatistics holds one occupancy record per (club, date). Slots are
// hour-units; fractional values are allowed (a 30-minute booking is 0.5).
type DailyStatistics struct {
	ClubID              int64
	Date                string
	BookedSlots         float64
	TotalSlots          float64
	OccupancyPercentage float64
	ComputedAt          time.Time
}

// MonthlyStatistics is a cached month rollup per (club, month, year).
// PreviousMonthOccupancy and OccupancyChangePercent are null when no prior
// baseline exists.
type MonthlyStatistics struct {
	ClubID                 int64
	Month                  int64
	Year                   int64
	AverageOccupancy       float64
	PreviousMonthOccupancy sql.NullFloat64
	OccupancyChangePercent sql.NullFloat64
	CreatedAt              time.Time
}
