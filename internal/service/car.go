// Package service contains the business logic for the car-rental API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carrental/internal/domain"
	"carrental/internal/repo"
)

// CarListing pairs a catalog car with its availability summary as of today,
// so storefront views render a single authoritative availability value
// instead of recomputing it per component.
type CarListing struct {
	domain.Car
	Availability domain.Availability `json:"availability"`
}

// CarPage is one page of catalog results.
type CarPage struct {
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
	Total int64        `json:"total"`
	Data  []CarListing `json:"data"`
}

// CarService implements catalog operations and the availability evaluator.
type CarService struct {
	cars     repo.CarRepo
	bookings repo.BookingRepo

	// now is swapped for a fixed clock in tests.
	now func() time.Time
}

// NewCarService constructs a CarService backed by the provided repos.
func NewCarService(cars repo.CarRepo, bookings repo.BookingRepo) *CarService {
	return &CarService{cars: cars, bookings: bookings, now: time.Now}
}

// Create validates and persists a new car.
func (s *CarService) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	applyCarDefaults(&car)
	if err := domain.ValidateCar(car); err != nil {
		return domain.Car{}, err
	}
	result, err := s.cars.Create(ctx, car)
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns a single car with its availability summary.
func (s *CarService) GetByID(ctx context.Context, id uuid.UUID) (CarListing, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.GetByID: %w", err)
	}
	windows, err := s.bookings.WindowsByCar(ctx, id)
	if err != nil {
		return CarListing{}, fmt.Errorf("service.CarService.GetByID: %w", err)
	}
	return CarListing{
		Car:          car,
		Availability: domain.SummarizeAvailability(car.Status, windows, s.now()),
	}, nil
}

// List returns one page of catalog cars, each with an availability summary.
func (s *CarService) List(ctx context.Context, filter domain.CarFilter, p domain.PaginationParams) (CarPage, error) {
	cars, total, err := s.cars.List(ctx, filter, p)
	if err != nil {
		return CarPage{}, fmt.Errorf("service.CarService.List: %w", err)
	}

	now := s.now()
	data := make([]CarListing, 0, len(cars))
	for _, car := range cars {
		windows, err := s.bookings.WindowsByCar(ctx, car.ID)
		if err != nil {
			return CarPage{}, fmt.Errorf("service.CarService.List: %w", err)
		}
		data = append(data, CarListing{
			Car:          car,
			Availability: domain.SummarizeAvailability(car.Status, windows, now),
		})
	}

	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return CarPage{Page: p.Page, Pages: pages, Total: total, Data: data}, nil
}

// Update validates and updates an existing car. The update never touches
// existing bookings — their car snapshots are historical copies.
func (s *CarService) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	applyCarDefaults(&car)
	if err := domain.ValidateCar(car); err != nil {
		return domain.Car{}, err
	}
	result, err := s.cars.Update(ctx, car)
	if err != nil {
		return domain.Car{}, fmt.Errorf("service.CarService.Update: %w", err)
	}
	return result, nil
}

// Delete removes a car by ID. Release of the associated image resource is the
// storage collaborator's job, keyed off the returned record.
func (s *CarService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.cars.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.CarService.Delete: %w", err)
	}
	return nil
}

// CheckAvailability runs the availability evaluator for a candidate
// [pickup, ret] range. Pure read: no state changes.
// Returns domain.ErrNotFound for an unknown car and domain.ErrValidation for
// an inverted range.
func (s *CarService) CheckAvailability(ctx context.Context, carID uuid.UUID, pickup, ret time.Time) (domain.Availability, error) {
	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("service.CarService.CheckAvailability: %w", err)
	}
	windows, err := s.bookings.WindowsByCar(ctx, carID)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("service.CarService.CheckAvailability: %w", err)
	}
	return domain.EvaluateAvailability(car.Status, windows, pickup, ret, s.now())
}

// applyCarDefaults fills the optional fields an admin may omit, mirroring the
// storefront's catalog defaults.
func applyCarDefaults(car *domain.Car) {
	if car.Category == "" {
		car.Category = domain.CategorySedan
	}
	if car.Seats == 0 {
		car.Seats = 4
	}
	if car.Transmission == "" {
		car.Transmission = "Automatic"
	}
	if car.FuelType == "" {
		car.FuelType = "Gasoline"
	}
	if car.Status == "" {
		car.Status = domain.CarAvailable
	}
}
