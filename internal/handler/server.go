// Package handler implements the HTTP layer of the car rental API.
// Handlers decode and validate requests, call services, and translate
// domain errors into the JSON error envelope. Business rules live in the
// service layer, not here.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"carrental/internal/domain"
	"carrental/internal/middleware"
	"carrental/internal/service"
	"carrental/spec"
)

// validate checks the `validate` tags on request payloads before the
// service layer sees them.
var validate = validator.New()

// CarService is the car catalog surface the handlers depend on.
type CarService interface {
	Create(ctx context.Context, car domain.Car) (domain.Car, error)
	GetByID(ctx context.Context, id uuid.UUID) (service.CarListing, error)
	List(ctx context.Context, filter domain.CarFilter, p domain.PaginationParams) (service.CarPage, error)
	Update(ctx context.Context, car domain.Car) (domain.Car, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CheckAvailability(ctx context.Context, carID uuid.UUID, pickup, ret time.Time) (domain.Availability, error)
}

// BookingService is the booking lifecycle surface the handlers depend on.
type BookingService interface {
	Create(ctx context.Context, in service.CreateBookingInput) (domain.Booking, error)
	GetByID(ctx context.Context, id, requesterID uuid.UUID, admin bool) (domain.Booking, error)
	ListAll(ctx context.Context) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	Cancel(ctx context.Context, id, requesterID uuid.UUID, admin bool) (domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthService is the account surface the handlers depend on.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (domain.User, string, error)
	Login(ctx context.Context, email, password string) (domain.User, string, error)
}

// PaymentService is the checkout surface the handlers depend on.
type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, bookingID, requesterID uuid.UUID, admin bool) (service.CheckoutSession, error)
	Confirm(ctx context.Context, sessionID string) (domain.Booking, error)
}

// Server holds the services and implements every HTTP endpoint.
type Server struct {
	cars     CarService
	bookings BookingService
	auth     AuthService
	payments PaymentService
	log      *slog.Logger
}

// NewServer constructs a Server. log must not be nil.
func NewServer(cars CarService, bookings BookingService, auth AuthService, payments PaymentService, log *slog.Logger) *Server {
	return &Server{
		cars:     cars,
		bookings: bookings,
		auth:     auth,
		payments: payments,
		log:      log,
	}
}

// Routes mounts every endpoint on a chi router. Authentication middleware
// is expected to run before these routes; Routes only enforces the
// per-route auth requirements.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.handleHealth)
	r.Get("/openapi.yaml", spec.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", s.handleRegister)
		r.Post("/users/login", s.handleLogin)

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", s.handleListCars)
			r.Get("/{id}", s.handleGetCar)
			r.Get("/{id}/availability", s.handleCarAvailability)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", s.handleCreateCar)
				r.Put("/{id}", s.handleUpdateCar)
				r.Delete("/{id}", s.handleDeleteCar)
			})
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", s.handleCreateBooking)
				r.Get("/mybookings", s.handleMyBookings)
				r.Get("/{id}", s.handleGetBooking)
				r.Post("/{id}/cancel", s.handleCancelBooking)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", s.handleListBookings)
				r.Patch("/{id}/status", s.handleUpdateBookingStatus)
				r.Delete("/{id}", s.handleDeleteBooking)
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.With(middleware.RequireAuth).Post("/create-checkout-session", s.handleCreateCheckoutSession)
			r.Get("/confirm", s.handleConfirmPayment)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// idParam parses the {id} URL parameter as a UUID.
func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, badRequestf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}
