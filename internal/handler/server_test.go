package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carrental/internal/domain"
	"carrental/internal/handler"
	"carrental/internal/middleware"
	"carrental/internal/service"
)

// ---- mock services ---------------------------------------------------------

type mockCarService struct {
	create            func(ctx context.Context, car domain.Car) (domain.Car, error)
	getByID           func(ctx context.Context, id uuid.UUID) (service.CarListing, error)
	list              func(ctx context.Context, f domain.CarFilter, p domain.PaginationParams) (service.CarPage, error)
	update            func(ctx context.Context, car domain.Car) (domain.Car, error)
	delete            func(ctx context.Context, id uuid.UUID) error
	checkAvailability func(ctx context.Context, carID uuid.UUID, pickup, ret time.Time) (domain.Availability, error)
}

func (m *mockCarService) Create(ctx context.Context, car domain.Car) (domain.Car, error) {
	return m.create(ctx, car)
}
func (m *mockCarService) GetByID(ctx context.Context, id uuid.UUID) (service.CarListing, error) {
	return m.getByID(ctx, id)
}
func (m *mockCarService) List(ctx context.Context, f domain.CarFilter, p domain.PaginationParams) (service.CarPage, error) {
	return m.list(ctx, f, p)
}
func (m *mockCarService) Update(ctx context.Context, car domain.Car) (domain.Car, error) {
	return m.update(ctx, car)
}
func (m *mockCarService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockCarService) CheckAvailability(ctx context.Context, carID uuid.UUID, pickup, ret time.Time) (domain.Availability, error) {
	return m.checkAvailability(ctx, carID, pickup, ret)
}

var _ handler.CarService = (*mockCarService)(nil)

type mockBookingService struct {
	create       func(ctx context.Context, in service.CreateBookingInput) (domain.Booking, error)
	getByID      func(ctx context.Context, id, requesterID uuid.UUID, admin bool) (domain.Booking, error)
	listAll      func(ctx context.Context) ([]domain.Booking, error)
	listByUser   func(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	cancel       func(ctx context.Context, id, requesterID uuid.UUID, admin bool) (domain.Booking, error)
	updateStatus func(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error)
	delete       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBookingService) Create(ctx context.Context, in service.CreateBookingInput) (domain.Booking, error) {
	return m.create(ctx, in)
}
func (m *mockBookingService) GetByID(ctx context.Context, id, requesterID uuid.UUID, admin bool) (domain.Booking, error) {
	return m.getByID(ctx, id, requesterID, admin)
}
func (m *mockBookingService) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return m.listAll(ctx)
}
func (m *mockBookingService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockBookingService) Cancel(ctx context.Context, id, requesterID uuid.UUID, admin bool) (domain.Booking, error) {
	return m.cancel(ctx, id, requesterID, admin)
}
func (m *mockBookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) (domain.Booking, error) {
	return m.updateStatus(ctx, id, status)
}
func (m *mockBookingService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ handler.BookingService = (*mockBookingService)(nil)

type mockAuthService struct {
	register func(ctx context.Context, name, email, password string) (domain.User, string, error)
	login    func(ctx context.Context, email, password string) (domain.User, string, error)
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (domain.User, string, error) {
	return m.register(ctx, name, email, password)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	return m.login(ctx, email, password)
}

var _ handler.AuthService = (*mockAuthService)(nil)

type mockPaymentService struct {
	createSession func(ctx context.Context, bookingID, requesterID uuid.UUID, admin bool) (service.CheckoutSession, error)
	confirm       func(ctx context.Context, sessionID string) (domain.Booking, error)
}

func (m *mockPaymentService) CreateCheckoutSession(ctx context.Context, bookingID, requesterID uuid.UUID, admin bool) (service.CheckoutSession, error) {
	return m.createSession(ctx, bookingID, requesterID, admin)
}
func (m *mockPaymentService) Confirm(ctx context.Context, sessionID string) (domain.Booking, error) {
	return m.confirm(ctx, sessionID)
}

var _ handler.PaymentService = (*mockPaymentService)(nil)

// ---- harness ---------------------------------------------------------------

type services struct {
	cars     *mockCarService
	bookings *mockBookingService
	auth     *mockAuthService
	payments *mockPaymentService
}

func newTestRouter(svcs services) http.Handler {
	if svcs.cars == nil {
		svcs.cars = &mockCarService{}
	}
	if svcs.bookings == nil {
		svcs.bookings = &mockBookingService{}
	}
	if svcs.auth == nil {
		svcs.auth = &mockAuthService{}
	}
	if svcs.payments == nil {
		svcs.payments = &mockPaymentService{}
	}

	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	srv := handler.NewServer(svcs.cars, svcs.bookings, svcs.auth, svcs.payments, log)

	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func doRequest(h http.Handler, method, target, body string, caller *middleware.Identity) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *caller))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func asUser(id uuid.UUID) *middleware.Identity {
	return &middleware.Identity{UserID: id, Role: domain.RoleUser}
}

func asAdmin() *middleware.Identity {
	return &middleware.Identity{UserID: uuid.New(), Role: domain.RoleAdmin}
}
