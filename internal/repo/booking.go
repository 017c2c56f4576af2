package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"carrental/internal/domain"
)

// BookingRepo defines the persistence operations for bookings.
//
// Create is the one operation with a concurrency contract: the bookings table
// carries a Postgres exclusion constraint over (car_id, daterange(pickup_date,
// return_date, '[]')) restricted to non-cancelled rows, so two overlapping
// inserts for the same car can never both commit. The loser's insert fails
// with SQLSTATE 23P01, which Create maps to domain.ErrConflict. No partial
// row is left behind — the insert is a single atomic statement.
type BookingRepo interface {
	// Create inserts a new booking and returns the persisted record.
	// Returns domain.ErrConflict when the range overlaps an existing
	// non-cancelled booking for the same car.
	Create(ctx context.Context, b domain.Booking) (domain.Booking, error)

	// GetByID retrieves a booking by primary key.
	// Returns domain.ErrNotFound if no booking with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)

	// GetBySessionID retrieves the booking tied to a payment session.
	// Returns domain.ErrNotFound when no booking references the session.
	GetBySessionID(ctx context.Context, sessionID string) (domain.Booking, error)

	// List returns all bookings, newest first.
	List(ctx context.Context) ([]domain.Booking, error)

	// ListByUser returns all bookings owned by a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)

	// WindowsByCar returns the [pickup, return] intervals of every
	// non-cancelled booking for a car — the input the availability
	// evaluator needs.
	WindowsByCar(ctx context.Context, carID uuid.UUID) ([]domain.BookingWindow, error)

	// UpdateStatus persists an explicit status transition and returns the
	// updated record. Legality of the transition is the service's job.
	// Returns domain.ErrNotFound if the booking does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)

	// SetPaymentSession records the payment session id on a booking.
	SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error

	// MarkPaid sets payment_status to paid, records the payment intent, and
	// moves the booking to the given status, in one statement.
	MarkPaid(ctx context.Context, id uuid.UUID, status domain.BookingStatus, paymentIntentID string) (domain.Booking, error)

	// Delete removes a booking by ID. Returns domain.ErrNotFound if it does
	// not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// CancelStalePending cancels pending, unpaid bookings created before the
	// cutoff and returns how many rows changed.
	CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type pgBookingRepo struct {
	db db
}

// NewBookingRepo constructs a BookingRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewBookingRepo(db db) BookingRepo {
	return &pgBookingRepo{db: db}
}

const bookingColumns = `id, user_id, customer, email, phone,
	 car_id, car_make, car_model, car_year, car_daily_rate, car_category,
	 car_seats, car_transmission, car_fuel_type, car_mileage, car_image,
	 pickup_date, return_date, status, amount, payment_status,
	 session_id, payment_intent_id,
	 addr_street, addr_city, addr_state, addr_zip,
	 created_at, updated_at`

func (r *pgBookingRepo) Create(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	const q = `
		INSERT INTO bookings (user_id, customer, email, phone,
		                      car_id, car_make, car_model, car_year, car_daily_rate, car_category,
		                      car_seats, car_transmission, car_fuel_type, car_mileage, car_image,
		                      pickup_date, return_date, status, amount, payment_status,
		                      addr_street, addr_city, addr_state, addr_zip)
		VALUES (@user_id, @customer, @email, @phone,
		        @car_id, @car_make, @car_model, @car_year, @car_daily_rate, @car_category,
		        @car_seats, @car_transmission, @car_fuel_type, @car_mileage, @car_image,
		        @pickup_date, @return_date, @status, @amount, @payment_status,
		        @addr_street, @addr_city, @addr_state, @addr_zip)
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"user_id":          b.UserID,
		"customer":         b.Customer,
		"email":            b.Email,
		"phone":            b.Phone,
		"car_id":           b.Car.CarID,
		"car_make":         b.Car.Make,
		"car_model":        b.Car.Model,
		"car_year":         b.Car.Year,
		"car_daily_rate":   b.Car.DailyRate,
		"car_category":     b.Car.Category,
		"car_seats":        b.Car.Seats,
		"car_transmission": b.Car.Transmission,
		"car_fuel_type":    b.Car.FuelType,
		"car_mileage":      b.Car.Mileage,
		"car_image":        b.Car.Image,
		"pickup_date":      domain.Day(b.PickupDate),
		"return_date":      domain.Day(b.ReturnDate),
		"status":           string(b.Status),
		"amount":           b.Amount,
		"payment_status":   string(b.PaymentStatus),
		"addr_street":      b.Address.Street,
		"addr_city":        b.Address.City,
		"addr_state":       b.Address.State,
		"addr_zip":         b.Address.ZipCode,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanBooking(row)
	if err != nil {
		if isExclusionViolation(err) {
			return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: overlapping booking exists: %w", domain.ErrConflict)
		}
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) GetBySessionID(ctx context.Context, sessionID string) (domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE session_id = @session_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"session_id": sessionID})
	result, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.GetBySessionID: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) List(ctx context.Context) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.List: %w", err)
	}
	return collectBookings(rows, "repo.BookingRepo.List")
}

func (r *pgBookingRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	const q = `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = @user_id
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.ListByUser: %w", err)
	}
	return collectBookings(rows, "repo.BookingRepo.ListByUser")
}

func (r *pgBookingRepo) WindowsByCar(ctx context.Context, carID uuid.UUID) ([]domain.BookingWindow, error) {
	const q = `
		SELECT id, pickup_date, return_date
		FROM bookings
		WHERE car_id = @car_id
		  AND status <> 'cancelled'
		ORDER BY pickup_date`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"car_id": carID})
	if err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.WindowsByCar: %w", err)
	}
	defer rows.Close()

	var windows []domain.BookingWindow
	for rows.Next() {
		var (
			id     pgtype.UUID
			pickup pgtype.Date
			ret    pgtype.Date
		)
		if err := rows.Scan(&id, &pickup, &ret); err != nil {
			return nil, fmt.Errorf("repo.BookingRepo.WindowsByCar: scan: %w", err)
		}
		windows = append(windows, domain.BookingWindow{
			BookingID:  uuid.UUID(id.Bytes),
			PickupDate: pickup.Time,
			ReturnDate: ret.Time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BookingRepo.WindowsByCar: rows: %w", err)
	}

	return windows, nil
}

func (r *pgBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET status     = @status,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + bookingColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)})
	result, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	const q = `
		UPDATE bookings
		SET session_id = @session_id,
		    updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "session_id": sessionID})
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.SetPaymentSession: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookingRepo.SetPaymentSession: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgBookingRepo) MarkPaid(ctx context.Context, id uuid.UUID, status domain.BookingStatus, paymentIntentID string) (domain.Booking, error) {
	const q = `
		UPDATE bookings
		SET payment_status    = 'paid',
		    status            = @status,
		    payment_intent_id = @payment_intent_id,
		    updated_at        = now()
		WHERE id = @id
		RETURNING ` + bookingColumns

	args := pgx.NamedArgs{
		"id":                id,
		"status":            string(status),
		"payment_intent_id": paymentIntentID,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanBooking(row)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("repo.BookingRepo.MarkPaid: %w", err)
	}
	return result, nil
}

func (r *pgBookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM bookings WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.BookingRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.BookingRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgBookingRepo) CancelStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `
		UPDATE bookings
		SET status     = 'cancelled',
		    updated_at = now()
		WHERE status = 'pending'
		  AND payment_status = 'pending'
		  AND created_at < @cutoff`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return 0, fmt.Errorf("repo.BookingRepo.CancelStalePending: %w", err)
	}
	return tag.RowsAffected(), nil
}

// isExclusionViolation reports whether err is a Postgres exclusion constraint
// violation (SQLSTATE 23P01) — the signature of losing the booking race.
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

// collectBookings drains rows into a slice, closing rows when done.
func collectBookings(rows pgx.Rows, op string) ([]domain.Booking, error) {
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}

	return bookings, nil
}

// scanBooking maps a single database row into a domain.Booking, handling the
// UUID, DATE, and nullable payment reference conversions.
func scanBooking(s scanner) (domain.Booking, error) {
	var (
		b             domain.Booking
		id            pgtype.UUID
		userID        pgtype.UUID
		carID         pgtype.UUID
		pickup        pgtype.Date
		ret           pgtype.Date
		status        string
		payStatus     string
		sessionID     pgtype.Text
		paymentIntent pgtype.Text
	)

	err := s.Scan(&id, &userID, &b.Customer, &b.Email, &b.Phone,
		&carID, &b.Car.Make, &b.Car.Model, &b.Car.Year, &b.Car.DailyRate, &b.Car.Category,
		&b.Car.Seats, &b.Car.Transmission, &b.Car.FuelType, &b.Car.Mileage, &b.Car.Image,
		&pickup, &ret, &status, &b.Amount, &payStatus,
		&sessionID, &paymentIntent,
		&b.Address.Street, &b.Address.City, &b.Address.State, &b.Address.ZipCode,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}

	b.ID = uuid.UUID(id.Bytes)
	b.UserID = uuid.UUID(userID.Bytes)
	b.Car.CarID = uuid.UUID(carID.Bytes)
	b.PickupDate = pickup.Time
	b.ReturnDate = ret.Time
	b.Status = domain.BookingStatus(status)
	b.PaymentStatus = domain.PaymentStatus(payStatus)
	b.SessionID = sessionID.String
	b.PaymentIntentID = paymentIntent.String

	return b, nil
}
