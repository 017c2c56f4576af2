package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"carrental/internal/domain"
	"carrental/internal/repo"
	"carrental/internal/stripe"
)

// CheckoutSession is what a storefront needs to redirect the user to the
// hosted payment page.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// PaymentService bridges bookings and the external payment collaborator.
// It creates checkout sessions for pending bookings and, on confirmation,
// records the paid status and the resulting explicit state transition.
// It never validates payment mechanics beyond what the collaborator reports.
type PaymentService struct {
	bookings repo.BookingRepo
	pay      stripe.Client

	successURL string
	cancelURL  string

	now func() time.Time
}

// NewPaymentService constructs a PaymentService. successURL and cancelURL are
// the storefront pages Stripe redirects to after checkout.
func NewPaymentService(bookings repo.BookingRepo, pay stripe.Client, successURL, cancelURL string) *PaymentService {
	return &PaymentService{
		bookings:   bookings,
		pay:        pay,
		successURL: successURL,
		cancelURL:  cancelURL,
		now:        time.Now,
	}
}

// CreateCheckoutSession opens a payment session for a pending, unpaid
// booking owned by the requester and records the session id on the booking.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, bookingID, requesterID uuid.UUID, admin bool) (CheckoutSession, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("service.PaymentService.CreateCheckoutSession: %w", err)
	}
	if !admin && b.UserID != requesterID {
		return CheckoutSession{}, fmt.Errorf("service.PaymentService.CreateCheckoutSession: %w", domain.ErrNotFound)
	}
	if b.PaymentStatus == domain.PaymentPaid {
		return CheckoutSession{}, fmt.Errorf("%w: booking is already paid", domain.ErrValidation)
	}
	if b.EffectiveStatus(s.now()) != domain.BookingPending {
		return CheckoutSession{}, fmt.Errorf("%w: only pending bookings can be paid", domain.ErrValidation)
	}

	sess, err := s.pay.CreateCheckoutSession(ctx, stripe.CreateSessionParams{
		AmountCents:       int64(math.Round(b.Amount * 100)),
		Currency:          "usd",
		ProductName:       fmt.Sprintf("%s %s rental", b.Car.Make, b.Car.Model),
		CustomerEmail:     b.Email,
		ClientReferenceID: b.ID.String(),
		SuccessURL:        s.successURL,
		CancelURL:         s.cancelURL,
	})
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("service.PaymentService.CreateCheckoutSession: %w", err)
	}

	if err := s.bookings.SetPaymentSession(ctx, b.ID, sess.ID); err != nil {
		return CheckoutSession{}, fmt.Errorf("service.PaymentService.CreateCheckoutSession: %w", err)
	}

	return CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// Confirm checks a checkout session with the payment collaborator and, when
// paid, marks the booking paid and moves it to upcoming or active depending
// on whether its pickup day has arrived. Confirming an already-confirmed
// session is a no-op returning the booking as stored.
func (s *PaymentService) Confirm(ctx context.Context, sessionID string) (domain.Booking, error) {
	if sessionID == "" {
		return domain.Booking{}, fmt.Errorf("%w: session id is required", domain.ErrValidation)
	}

	b, err := s.bookings.GetBySessionID(ctx, sessionID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.PaymentService.Confirm: %w", err)
	}
	if b.PaymentStatus == domain.PaymentPaid {
		return b, nil
	}

	sess, err := s.pay.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.PaymentService.Confirm: %w", err)
	}
	if !sess.Paid() {
		return domain.Booking{}, fmt.Errorf("%w: payment has not completed", domain.ErrValidation)
	}

	next := b.StatusOnPayment(s.now())
	// A booking cancelled while the user was paying (e.g. expired by the
	// stale-pending job) cannot come back to life.
	if err := domain.ValidateTransition(b.Status, next); err != nil {
		return domain.Booking{}, err
	}

	updated, err := s.bookings.MarkPaid(ctx, b.ID, next, sess.PaymentIntentID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("service.PaymentService.Confirm: %w", err)
	}
	return updated, nil
}
