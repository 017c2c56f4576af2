package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingStatus is the persisted lifecycle state of a booking.
//
// Only user- or admin-triggered transitions are ever written to the store
// (cancel, payment confirmation, explicit admin override). The passage of
// time is never persisted eagerly: a stored "upcoming" or "active" booking
// whose return date has passed is reported as completed by EffectiveStatus,
// and the stored value is allowed to lag behind.
type BookingStatus string

const (
	// BookingPending is the initial state, before payment confirmation.
	BookingPending   BookingStatus = "pending"
	BookingUpcoming  BookingStatus = "upcoming"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// PaymentStatus tracks whether the external payment collaborator has
// confirmed payment. The booking engine only consumes this value.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// transitions lists the legal explicit moves out of each persisted state.
// Completed and cancelled are terminal.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingUpcoming, BookingActive, BookingCompleted, BookingCancelled},
	BookingUpcoming:  {BookingActive, BookingCompleted, BookingCancelled},
	BookingActive:    {BookingCompleted, BookingCancelled},
	BookingCompleted: {},
	BookingCancelled: {},
}

// CanTransition reports whether an explicit move from one persisted status
// to another is legal.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrValidation (wrapped with detail) when the
// move is illegal, so handlers can surface it as a 422.
func ValidateTransition(from, to BookingStatus) error {
	switch to {
	case BookingPending, BookingUpcoming, BookingActive, BookingCompleted, BookingCancelled:
	default:
		return fmt.Errorf("%w: unknown booking status %q", ErrValidation, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot change booking status from %s to %s", ErrValidation, from, to)
	}
	return nil
}

// CarSnapshot is the subset of Car fields copied into a booking at creation
// time. It is a historical record: editing or deleting the underlying Car
// must never change a booking that has already been made.
type CarSnapshot struct {
	CarID        uuid.UUID `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	DailyRate    float64   `json:"dailyRate"`
	Category     string    `json:"category"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuelType"`
	Mileage      int       `json:"mileage"`
	Image        string    `json:"image"`
}

// SnapshotCar copies the booking-relevant fields of a live Car.
func SnapshotCar(c Car) CarSnapshot {
	return CarSnapshot{
		CarID:        c.ID,
		Make:         c.Make,
		Model:        c.Model,
		Year:         c.Year,
		DailyRate:    c.DailyRate,
		Category:     c.Category,
		Seats:        c.Seats,
		Transmission: c.Transmission,
		FuelType:     c.FuelType,
		Mileage:      c.Mileage,
		Image:        c.Image,
	}
}

// Address is the delivery/billing address captured with a booking.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
}

// Booking reserves a car for a closed range of calendar days.
type Booking struct {
	ID              uuid.UUID     `json:"id"`
	UserID          uuid.UUID     `json:"userId"`
	Customer        string        `json:"customer"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone,omitempty"`
	Car             CarSnapshot   `json:"car"`
	PickupDate      time.Time     `json:"pickupDate"`
	ReturnDate      time.Time     `json:"returnDate"`
	Status          BookingStatus `json:"status"`
	Amount          float64       `json:"amount"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	SessionID       string        `json:"-"`
	PaymentIntentID string        `json:"-"`
	Address         Address       `json:"address"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// BookingAmount computes the charge for a date range at the given daily rate:
// rate times the whole-day length of the range, minimum one day.
func BookingAmount(dailyRate float64, pickup, ret time.Time) float64 {
	return dailyRate * float64(RentalDays(pickup, ret))
}

// ValidateDateRange rejects inverted ranges. Comparison is at day
// granularity; pickup and return on the same day is a valid one-day rental.
func ValidateDateRange(pickup, ret time.Time) error {
	if pickup.IsZero() || ret.IsZero() {
		return fmt.Errorf("%w: pickup and return dates are required", ErrValidation)
	}
	if Day(ret).Before(Day(pickup)) {
		return fmt.Errorf("%w: return date must not be before pickup date", ErrValidation)
	}
	return nil
}

// EffectiveStatus derives the display status from the stored status and the
// current date. Terminal states are reported as stored. For live states the
// return date wins: once it has passed the booking is completed regardless of
// what was persisted. A paid booking inside its range is active, before it is
// upcoming. Pending stays pending until its range has fully elapsed.
func (b Booking) EffectiveStatus(now time.Time) BookingStatus {
	switch b.Status {
	case BookingCompleted, BookingCancelled:
		return b.Status
	}
	today := Day(now)
	if today.After(Day(b.ReturnDate)) {
		return BookingCompleted
	}
	if b.Status == BookingPending {
		return BookingPending
	}
	if !today.Before(Day(b.PickupDate)) {
		return BookingActive
	}
	return BookingUpcoming
}

// StatusOnPayment is the status a pending booking enters when the payment
// collaborator confirms payment: active if the range has already started,
// upcoming otherwise.
func (b Booking) StatusOnPayment(now time.Time) BookingStatus {
	if !Day(now).Before(Day(b.PickupDate)) {
		return BookingActive
	}
	return BookingUpcoming
}
