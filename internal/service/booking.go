package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"carrental/internal/domain"
	"carrental/internal/repo"
)

// CreateBookingInput carries everything needed to reserve a car.
// Dates are calendar days; time-of-day components are ignored.
type CreateBookingInput struct {
	UserID     uuid.UUID
	CarID      uuid.UUID
	Customer   string
	Email      string
	Phone      string
	PickupDate time.Time
	ReturnDate time.Time
	Address    domain.Address
}

// BookingService implements the booking lifecycle: creation with the
// availability precondition, reads with date-derived status, explicit
// transitions, and stale-pending expiry.
type BookingService struct {
	bookings repo.BookingRepo
	cars     repo.CarRepo

	now func() time.Time
}

// NewBookingService constructs a BookingService backed by the provided repos.
func NewBookingService(bookings repo.BookingRepo, cars repo.CarRepo) *BookingService {
	return &BookingService{bookings: bookings, cars: cars, now: time.Now}
}

// Create reserves a car for a date range.
//
// The availability evaluator runs first so callers get a descriptive
// ErrConflict (naming the blocking booking and the first free day) in the
// common case. The evaluator result alone is not trusted: the insert can
// still lose a concurrent race, in which case the store's exclusion
// constraint rejects it and the repo surfaces the same ErrConflict. Either
// way, a failed create leaves no partial record.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (domain.Booking, error) {
	if err := domain.ValidateDateRange(in.PickupDate, in.ReturnDate); err != nil {
		return domain.Booking{}, err
	}
	if strings.TrimSpace(in.Customer) == "" || strings.TrimSpace(in.Email) == "" {
		return domain.Booking{}, fmt.Errorf("%w: customer name and email are required", domain.ErrValidation)
	}

	car, err := s.cars.GetByID(ctx, in.CarID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	windows, err := s.bookings.WindowsByCar(ctx, in.CarID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}

	avail, err := domain.EvaluateAvailability(car.Status, windows, in.PickupDate, in.ReturnDate, s.now())
	if err != nil {
		return domain.Booking{}, err
	}
	if avail.State == domain.Booked {
		return domain.Booking{}, conflictError(avail)
	}

	booking := domain.Booking{
		UserID:        in.UserID,
		Customer:      strings.TrimSpace(in.Customer),
		Email:         strings.TrimSpace(in.Email),
		Phone:         strings.TrimSpace(in.Phone),
		Car:           domain.SnapshotCar(car),
		PickupDate:    domain.Day(in.PickupDate),
		ReturnDate:    domain.Day(in.ReturnDate),
		Status:        domain.BookingPending,
		Amount:        domain.BookingAmount(car.DailyRate, in.PickupDate, in.ReturnDate),
		PaymentStatus: domain.PaymentPending,
		Address:       in.Address,
	}

	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a booking with its date-derived display status. Non-admin
// requesters only see their own bookings.
func (s *BookingService) GetByID(ctx context.Context, id, requesterID uuid.UUID, admin bool) (domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", err)
	}
	if !admin && b.UserID != requesterID {
		// Another user's booking is indistinguishable from a missing one.
		return domain.Booking{}, fmt.Errorf("service.BookingService.GetByID: %w", domain.ErrNotFound)
	}
	b.Status = b.EffectiveStatus(s.now())
	return b, nil
}

// ListAll returns every booking with date-derived display status.
// Always returns a non-nil slice so callers can safely range over it.
func (s *BookingService) ListAll(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListAll: %w", err)
	}
	return s.withEffectiveStatus(bookings), nil
}

// ListByUser returns a user's bookings with date-derived display status.
func (s *BookingService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListByUser: %w", err)
	}
	return s.withEffectiveStatus(bookings), nil
}

// Cancel moves a booking to cancelled, which immediately frees its date range
// for new reservations. Only the owner (or an admin) may cancel, and the
// transition is checked against the date-derived status so an elapsed booking
// cannot be cancelled even if its stored status lags.
func (s *BookingService) Cancel(ctx context.Context, id, requesterID uuid.UUID, admin bool) (domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}
	if !admin && b.UserID != requesterID {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", domain.ErrNotFound)
	}
	if err := domain.ValidateTransition(b.EffectiveStatus(s.now()), domain.BookingCancelled); err != nil {
		return domain.Booking{}, err
	}
	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingCancelled)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.Cancel: %w", err)
	}
	return updated, nil
}

// UpdateStatus applies an explicit administrative status change, subject to
// the state machine. Ownership checks do not apply to admins, which is the
// only caller the handler routes here.
func (s *BookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: %w", err)
	}
	if err := domain.ValidateTransition(b.EffectiveStatus(s.now()), status); err != nil {
		return domain.Booking{}, err
	}
	updated, err := s.bookings.UpdateStatus(ctx, id, status)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.BookingService.UpdateStatus: %w", err)
	}
	return updated, nil
}

// Delete removes a booking record entirely. Admin only.
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.bookings.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.BookingService.Delete: %w", err)
	}
	return nil
}

// ExpireStalePending cancels pending bookings whose payment never arrived
// within ttl. Run periodically; cancelling releases the held date ranges.
func (s *BookingService) ExpireStalePending(ctx context.Context, ttl time.Duration) (int64, error) {
	n, err := s.bookings.CancelStalePending(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("service.BookingService.ExpireStalePending: %w", err)
	}
	return n, nil
}

func (s *BookingService) withEffectiveStatus(bookings []domain.Booking) []domain.Booking {
	now := s.now()
	out := make([]domain.Booking, len(bookings))
	for i, b := range bookings {
		b.Status = b.EffectiveStatus(now)
		out[i] = b
	}
	return out
}

// conflictError builds the ErrConflict for a failed availability check,
// naming the blocking booking and the first free day when known.
func conflictError(a domain.Availability) error {
	if a.AvailableFrom == nil {
		return fmt.Errorf("%w: car is not available for booking", domain.ErrConflict)
	}
	if a.BlockingBookingID != nil {
		return fmt.Errorf("%w: car is booked (blocking booking %s); available from %s",
			domain.ErrConflict, a.BlockingBookingID, a.AvailableFrom.Format("2006-01-02"))
	}
	return fmt.Errorf("%w: car is booked; available from %s",
		domain.ErrConflict, a.AvailableFrom.Format("2006-01-02"))
}
