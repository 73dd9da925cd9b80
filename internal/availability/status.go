// internal/availability/status.go
package availability

import "fmt"

// Status is the occupancy state of a court (or a whole bucket). The values
// form an ordered lattice: available < partial < booked. Merging overlapping
// bookings is a monotone max fold, so the result is independent of booking
// evaluation order.
type Status int

const (
	StatusAvailable Status = iota
	StatusPartial
	StatusBooked
)

// Max returns the stronger of the two statuses. Booked is terminal: once a
// court is booked for a bucket it cannot be downgraded by a weaker overlap.
func (s Status) Max(other Status) Status {
	if other > s {
		return other
	}
	return s
}

func (s Status) String() string {
	switch s {
	case StatusBooked:
		return "booked"
	case StatusPartial:
		return "partial"
	default:
		return "available"
	}
}

// MarshalJSON renders the status as its lowercase name, matching the wire
// format consumed by the calendar views.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"available"`:
		*s = StatusAvailable
	case `"partial"`:
		*s = StatusPartial
	case `"booked"`:
		*s = StatusBooked
	default:
		return fmt.Errorf("unknown status %s", data)
	}
	return nil
}
