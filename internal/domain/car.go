// Package domain contains the core data types and booking logic for the
// car-rental marketplace. This package has zero external dependencies beyond
// uuid and is imported by every other internal package (repo, service,
// handler).
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CarStatus is the administrator-controlled state of a car. It is independent
// of computed availability: a car in maintenance is never bookable no matter
// what its booking calendar looks like.
type CarStatus string

const (
	CarAvailable   CarStatus = "available"
	CarRented      CarStatus = "rented"
	CarMaintenance CarStatus = "maintenance"
)

// Car categories offered by the marketplace.
const (
	CategorySedan     = "Sedan"
	CategorySUV       = "SUV"
	CategorySports    = "Sports"
	CategoryCoupe     = "Coupe"
	CategoryHatchback = "Hatchback"
	CategoryLuxury    = "Luxury"
)

var validCategories = map[string]bool{
	CategorySedan: true, CategorySUV: true, CategorySports: true,
	CategoryCoupe: true, CategoryHatchback: true, CategoryLuxury: true,
}

var validTransmissions = map[string]bool{
	"Automatic": true, "Manual": true, "CVT": true,
}

var validFuelTypes = map[string]bool{
	"Gasoline": true, "Petrol": true, "Diesel": true,
	"Electric": true, "Hybrid": true, "CNG": true,
}

// Car is a vehicle listed in the catalog.
// Image is an opaque reference to an externally stored file.
type Car struct {
	ID           uuid.UUID `json:"id"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Color        string    `json:"color,omitempty"`
	Category     string    `json:"category"`
	Seats        int       `json:"seats"`
	Transmission string    `json:"transmission"`
	FuelType     string    `json:"fuelType"`
	Mileage      int       `json:"mileage"`
	DailyRate    float64   `json:"dailyRate"`
	Status       CarStatus `json:"status"`
	Image        string    `json:"image,omitempty"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidateCar enforces catalog invariants common to create and update.
func ValidateCar(c Car) error {
	if strings.TrimSpace(c.Make) == "" {
		return fmt.Errorf("%w: make is required", ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model is required", ErrValidation)
	}
	if c.DailyRate <= 0 {
		return fmt.Errorf("%w: daily rate must be positive", ErrValidation)
	}
	if c.Seats < 1 {
		return fmt.Errorf("%w: seats must be at least 1", ErrValidation)
	}
	if !validCategories[c.Category] {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, c.Category)
	}
	if !validTransmissions[c.Transmission] {
		return fmt.Errorf("%w: unknown transmission %q", ErrValidation, c.Transmission)
	}
	if !validFuelTypes[c.FuelType] {
		return fmt.Errorf("%w: unknown fuel type %q", ErrValidation, c.FuelType)
	}
	switch c.Status {
	case CarAvailable, CarRented, CarMaintenance:
	default:
		return fmt.Errorf("%w: unknown car status %q", ErrValidation, c.Status)
	}
	return nil
}

// CarFilter narrows catalog listings. Zero values mean "no filter".
type CarFilter struct {
	// Search matches make, model, or color case-insensitively.
	Search   string
	Category string
	Status   CarStatus
}
