package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/domain"
	"carrental/internal/repo"
)

// bookingEnv creates the user and car rows a booking needs, all inside the
// test's transaction.
type bookingEnv struct {
	bookings repo.BookingRepo
	user     domain.User
	car      domain.Car
}

func newBookingEnv(t *testing.T) (bookingEnv, context.Context) {
	t.Helper()
	tx := newTestTx(t)
	ctx := context.Background()

	user, err := repo.NewUserRepo(tx).Create(ctx, userFixture())
	require.NoError(t, err)

	car, err := repo.NewCarRepo(tx).Create(ctx, carFixture())
	require.NoError(t, err)

	return bookingEnv{
		bookings: repo.NewBookingRepo(tx),
		user:     user,
		car:      car,
	}, ctx
}

func (e bookingEnv) fixture(pickup, ret time.Time) domain.Booking {
	return domain.Booking{
		UserID:        e.user.ID,
		Customer:      "Jo Renter",
		Email:         "jo@example.com",
		Phone:         "555-0101",
		Car:           domain.SnapshotCar(e.car),
		PickupDate:    pickup,
		ReturnDate:    ret,
		Status:        domain.BookingPending,
		Amount:        domain.BookingAmount(e.car.DailyRate, pickup, ret),
		PaymentStatus: domain.PaymentPending,
		Address:       domain.Address{Street: "100 Main St", City: "Austin", State: "TX", ZipCode: "78701"},
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBookingRepo_Create(t *testing.T) {
	env, ctx := newBookingEnv(t)

	input := env.fixture(day(2025, 7, 1), day(2025, 7, 5))
	got, err := env.bookings.Create(ctx, input)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.Equal(t, env.user.ID, got.UserID)
	assert.Equal(t, env.car.ID, got.Car.CarID)
	assert.Equal(t, env.car.Make, got.Car.Make, "snapshot fields round-trip")
	assert.True(t, got.PickupDate.Equal(day(2025, 7, 1)), "pickup date mismatch")
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Equal(t, domain.PaymentPending, got.PaymentStatus)
	assert.Equal(t, input.Amount, got.Amount)
	assert.Equal(t, "Austin", got.Address.City)
}

// TestBookingRepo_Create_OverlapRejected drives the exclusion constraint
// directly: the second insert touches a day inside the first booking's
// inclusive range and must fail with ErrConflict.
func TestBookingRepo_Create_OverlapRejected(t *testing.T) {
	env, ctx := newBookingEnv(t)

	_, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	_, err = env.bookings.Create(ctx, env.fixture(day(2025, 7, 5), day(2025, 7, 8)))

	assert.ErrorIs(t, err, domain.ErrConflict,
		"pickup on another booking's return day conflicts: no same-day turnover")
}

func TestBookingRepo_Create_AdjacentDaysAllowed(t *testing.T) {
	env, ctx := newBookingEnv(t)

	_, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	// July 6 is the first day outside the inclusive [1, 5] range.
	_, err = env.bookings.Create(ctx, env.fixture(day(2025, 7, 6), day(2025, 7, 8)))

	assert.NoError(t, err)
}

func TestBookingRepo_Create_OtherCarUnaffected(t *testing.T) {
	env, ctx := newBookingEnv(t)

	_, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	other := env.fixture(day(2025, 7, 1), day(2025, 7, 5))
	other.Car.CarID = uuid.New()

	_, err = env.bookings.Create(ctx, other)

	assert.NoError(t, err, "the overlap constraint is per car")
}

// TestBookingRepo_CancellationFreesRange verifies the cancelled rows leave
// the exclusion constraint's predicate, so the dates open up immediately.
func TestBookingRepo_CancellationFreesRange(t *testing.T) {
	env, ctx := newBookingEnv(t)

	first, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	_, err = env.bookings.Create(ctx, env.fixture(day(2025, 7, 3), day(2025, 7, 6)))
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.bookings.UpdateStatus(ctx, first.ID, domain.BookingCancelled)
	require.NoError(t, err)

	_, err = env.bookings.Create(ctx, env.fixture(day(2025, 7, 3), day(2025, 7, 6)))

	assert.NoError(t, err, "cancelled booking no longer blocks the range")
}

func TestBookingRepo_GetByID_NotFound(t *testing.T) {
	env, ctx := newBookingEnv(t)

	_, err := env.bookings.GetByID(ctx, uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepo_ListByUser(t *testing.T) {
	env, ctx := newBookingEnv(t)

	_, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)
	_, err = env.bookings.Create(ctx, env.fixture(day(2025, 8, 1), day(2025, 8, 5)))
	require.NoError(t, err)

	mine, err := env.bookings.ListByUser(ctx, env.user.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	other, err := env.bookings.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestBookingRepo_WindowsByCar_ExcludesCancelled(t *testing.T) {
	env, ctx := newBookingEnv(t)

	kept, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	dropped, err := env.bookings.Create(ctx, env.fixture(day(2025, 8, 1), day(2025, 8, 5)))
	require.NoError(t, err)
	_, err = env.bookings.UpdateStatus(ctx, dropped.ID, domain.BookingCancelled)
	require.NoError(t, err)

	windows, err := env.bookings.WindowsByCar(ctx, env.car.ID)

	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, kept.ID, windows[0].BookingID)
	assert.True(t, windows[0].PickupDate.Equal(day(2025, 7, 1)))
	assert.True(t, windows[0].ReturnDate.Equal(day(2025, 7, 5)))
}

func TestBookingRepo_UpdateStatus(t *testing.T) {
	env, ctx := newBookingEnv(t)

	created, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	updated, err := env.bookings.UpdateStatus(ctx, created.ID, domain.BookingUpcoming)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingUpcoming, updated.Status)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt) || updated.UpdatedAt.Equal(updated.CreatedAt))
}

func TestBookingRepo_UpdateStatus_NotFound(t *testing.T) {
	env, ctx := newBookingEnv(t)

	_, err := env.bookings.UpdateStatus(ctx, uuid.New(), domain.BookingCancelled)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepo_PaymentRoundTrip(t *testing.T) {
	env, ctx := newBookingEnv(t)

	created, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	require.NoError(t, env.bookings.SetPaymentSession(ctx, created.ID, "cs_test_123"))

	bySession, err := env.bookings.GetBySessionID(ctx, "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySession.ID)

	paid, err := env.bookings.MarkPaid(ctx, created.ID, domain.BookingUpcoming, "pi_42")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, domain.BookingUpcoming, paid.Status)
	assert.Equal(t, "pi_42", paid.PaymentIntentID)
}

func TestBookingRepo_GetBySessionID_NotFound(t *testing.T) {
	env, ctx := newBookingEnv(t)

	_, err := env.bookings.GetBySessionID(ctx, "cs_missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingRepo_Delete(t *testing.T) {
	env, ctx := newBookingEnv(t)

	created, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	require.NoError(t, env.bookings.Delete(ctx, created.ID))

	_, err = env.bookings.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, env.bookings.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestBookingRepo_CancelStalePending(t *testing.T) {
	env, ctx := newBookingEnv(t)

	stale, err := env.bookings.Create(ctx, env.fixture(day(2025, 7, 1), day(2025, 7, 5)))
	require.NoError(t, err)

	paid, err := env.bookings.Create(ctx, env.fixture(day(2025, 8, 1), day(2025, 8, 5)))
	require.NoError(t, err)
	_, err = env.bookings.MarkPaid(ctx, paid.ID, domain.BookingUpcoming, "pi_42")
	require.NoError(t, err)

	// Both rows were created "now", so a cutoff in the future makes the
	// pending one stale while the paid one is protected by payment_status.
	n, err := env.bookings.CancelStalePending(ctx, time.Now().Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := env.bookings.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)

	kept, err := env.bookings.GetByID(ctx, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingUpcoming, kept.Status)
}

