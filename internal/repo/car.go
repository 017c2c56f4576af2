// Package repo contains all database access logic for the car-rental API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"carrental/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CarRepo defines the persistence operations for the car catalog.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type CarRepo interface {
	// Create inserts a new car and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, car domain.Car) (domain.Car, error)

	// GetByID retrieves a single car by its UUID primary key.
	// Returns domain.ErrNotFound if no car with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error)

	// List returns one page of cars matching the filter, newest first,
	// plus the total number of matching rows for pagination.
	List(ctx context.Context, filter domain.CarFilter, p domain.PaginationParams) ([]domain.Car, int64, error)

	// Update overwrites the mutable fields of an existing car and returns the
	// updated record. Returns domain.ErrNotFound if no car with that ID exists.
	Update(ctx context.Context, car domain.Car) (domain.Car, error)

	// Delete removes a car by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgCarRepo is the Postgres implementation of CarRepo.
type pgCarRepo struct {
	db db
}

// NewCarRepo constructs a CarRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCarRepo(db db) CarRepo {
	return &pgCarRepo{db: db}
}

const carColumns = `id, make, model, year, color, category, seats, transmission,
	 fuel_type, mileage, daily_rate, status, image, description, created_at, updated_at`

func (r *pgCarRepo) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	const q = `
		INSERT INTO cars (make, model, year, color, category, seats, transmission,
		                  fuel_type, mileage, daily_rate, status, image, description)
		VALUES (@make, @model, @year, @color, @category, @seats, @transmission,
		        @fuel_type, @mileage, @daily_rate, @status, @image, @description)
		RETURNING ` + carColumns

	row := r.db.QueryRow(ctx, q, carArgs(car))
	result, err := scanCar(row)
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgCarRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Car, error) {
	const q = `SELECT ` + carColumns + ` FROM cars WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanCar(row)
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.GetByID: %w", err)
	}
	return result, nil
}

// List filters with ILIKE on make/model/color for the search term; empty
// filter fields are skipped via the (@x = '' OR ...) pattern so one statement
// serves every filter combination.
func (r *pgCarRepo) List(ctx context.Context, filter domain.CarFilter, p domain.PaginationParams) ([]domain.Car, int64, error) {
	const where = `
		WHERE (@search = '' OR make ILIKE '%' || @search || '%'
		                    OR model ILIKE '%' || @search || '%'
		                    OR color ILIKE '%' || @search || '%')
		  AND (@category = '' OR category = @category)
		  AND (@status = '' OR status = @status)`

	args := pgx.NamedArgs{
		"search":   filter.Search,
		"category": filter.Category,
		"status":   string(filter.Status),
		"limit":    p.Limit,
		"offset":   p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM cars `+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.List: count: %w", err)
	}

	q := `SELECT ` + carColumns + ` FROM cars ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.List: %w", err)
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.CarRepo.List: scan: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.List: rows: %w", err)
	}

	return cars, total, nil
}

func (r *pgCarRepo) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	const q = `
		UPDATE cars
		SET make         = @make,
		    model        = @model,
		    year         = @year,
		    color        = @color,
		    category     = @category,
		    seats        = @seats,
		    transmission = @transmission,
		    fuel_type    = @fuel_type,
		    mileage      = @mileage,
		    daily_rate   = @daily_rate,
		    status       = @status,
		    image        = @image,
		    description  = @description,
		    updated_at   = now()
		WHERE id = @id
		RETURNING ` + carColumns

	args := carArgs(car)
	args["id"] = car.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanCar(row)
	if err != nil {
		return domain.Car{}, fmt.Errorf("repo.CarRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM cars WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.CarRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CarRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// carArgs maps the insertable/updatable fields of a car to named SQL args.
func carArgs(car domain.Car) pgx.NamedArgs {
	return pgx.NamedArgs{
		"make":         car.Make,
		"model":        car.Model,
		"year":         car.Year,
		"color":        car.Color,
		"category":     car.Category,
		"seats":        car.Seats,
		"transmission": car.Transmission,
		"fuel_type":    car.FuelType,
		"mileage":      car.Mileage,
		"daily_rate":   car.DailyRate,
		"status":       string(car.Status),
		"image":        car.Image,
		"description":  car.Description,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan helpers
// to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanCar maps a single database row into a domain.Car.
func scanCar(s scanner) (domain.Car, error) {
	var (
		c      domain.Car
		id     pgtype.UUID
		status string
	)

	err := s.Scan(&id, &c.Make, &c.Model, &c.Year, &c.Color, &c.Category,
		&c.Seats, &c.Transmission, &c.FuelType, &c.Mileage, &c.DailyRate,
		&status, &c.Image, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Car{}, domain.ErrNotFound
		}
		return domain.Car{}, err
	}

	c.ID = uuid.UUID(id.Bytes)
	c.Status = domain.CarStatus(status)

	return c, nil
}
