package domain

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityState classifies the result of an availability evaluation.
type AvailabilityState string

const (
	// FullyAvailable: the candidate range overlaps nothing and no future
	// booking exists for the car.
	FullyAvailable AvailabilityState = "fully_available"

	// Booked: the candidate range overlaps an existing booking, or the car
	// is administratively blocked (maintenance/rented). AvailableFrom is set
	// only in the former case.
	Booked AvailabilityState = "booked"

	// AvailableUntilReservation: the candidate range is free, but a later
	// booking already exists; callers can warn that the car is only free
	// for DaysUntilNextBooking more days.
	AvailableUntilReservation AvailabilityState = "available_until_reservation"
)

// BookingWindow is the interval of one non-cancelled booking, the only part
// of a booking the evaluator needs.
type BookingWindow struct {
	BookingID  uuid.UUID
	PickupDate time.Time
	ReturnDate time.Time
}

// Availability is the outcome of an evaluation. All date fields are at day
// granularity.
type Availability struct {
	State AvailabilityState `json:"state"`

	// AvailableFrom is the first day the car is free again, set when State
	// is Booked because of an overlapping booking (never for an
	// administrative block).
	AvailableFrom *time.Time `json:"availableFrom,omitempty"`

	// BlockingBookingID names the booking that caused a Booked result.
	BlockingBookingID *uuid.UUID `json:"blockingBookingId,omitempty"`

	// DaysUntilNextBooking and NextBookingStarts describe the gap before an
	// upcoming reservation when State is AvailableUntilReservation.
	DaysUntilNextBooking *int       `json:"daysUntilNextBooking,omitempty"`
	NextBookingStarts    *time.Time `json:"nextBookingStarts,omitempty"`
}

// EvaluateAvailability decides whether a car can be newly booked for the
// closed day range [pickup, ret].
//
// It is a pure function: carStatus and windows are the car's current
// administrative status and its non-cancelled booking intervals as loaded by
// the caller, and now supplies "today" for gap reporting. Calling it twice
// with the same inputs returns the same result.
//
// The administrative block is absolute: any status other than available
// yields Booked with no date information, regardless of the calendar.
func EvaluateAvailability(carStatus CarStatus, windows []BookingWindow, pickup, ret, now time.Time) (Availability, error) {
	if err := ValidateDateRange(pickup, ret); err != nil {
		return Availability{}, err
	}

	if carStatus != CarAvailable {
		return Availability{State: Booked}, nil
	}

	// Overlap scan. Under the no-double-booking invariant at most one window
	// can overlap, but take the max return date across all of them anyway.
	var blocking *BookingWindow
	for i := range windows {
		w := windows[i]
		if !Overlaps(pickup, ret, w.PickupDate, w.ReturnDate) {
			continue
		}
		if blocking == nil || Day(w.ReturnDate).After(Day(blocking.ReturnDate)) {
			blocking = &w
		}
	}
	if blocking != nil {
		from := Day(blocking.ReturnDate).AddDate(0, 0, 1)
		id := blocking.BookingID
		return Availability{
			State:             Booked,
			AvailableFrom:     &from,
			BlockingBookingID: &id,
		}, nil
	}

	// No overlap: check for a later reservation so callers can warn that the
	// car will not stay free.
	today := Day(now)
	var next *BookingWindow
	for i := range windows {
		w := windows[i]
		if !Day(w.PickupDate).After(today) {
			continue
		}
		if next == nil || Day(w.PickupDate).Before(Day(next.PickupDate)) {
			next = &w
		}
	}
	if next != nil {
		starts := Day(next.PickupDate)
		gap := DaysBetween(today, starts)
		return Availability{
			State:                AvailableUntilReservation,
			DaysUntilNextBooking: &gap,
			NextBookingStarts:    &starts,
		}, nil
	}

	return Availability{State: FullyAvailable}, nil
}

// SummarizeAvailability reports a car's availability as of today, for catalog
// listings and detail pages. It is the single-day case of
// EvaluateAvailability: a car inside a booking's range today is Booked with
// the day after the latest overlapping return as AvailableFrom.
func SummarizeAvailability(carStatus CarStatus, windows []BookingWindow, now time.Time) Availability {
	today := Day(now)
	// The candidate range [today, today] is always well-formed, so the error
	// path is unreachable.
	a, _ := EvaluateAvailability(carStatus, windows, today, today, now)
	return a
}
