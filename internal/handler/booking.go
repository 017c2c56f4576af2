package handler

import (
	"net/http"

	"github.com/google/uuid"

	"carrental/internal/domain"
	"carrental/internal/middleware"
	"carrental/internal/service"
)

type createBookingRequest struct {
	CarID      string         `json:"carId" validate:"required,uuid4"`
	Customer   string         `json:"customer" validate:"required"`
	Email      string         `json:"email" validate:"required,email"`
	Phone      string         `json:"phone"`
	PickupDate string         `json:"pickupDate" validate:"required"`
	ReturnDate string         `json:"returnDate" validate:"required"`
	Address    domain.Address `json:"address"`
}

type updateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())

	var req createBookingRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		s.writeError(w, r, badRequestf("invalid carId %q", req.CarID))
		return
	}
	pickup, err := parseDate("pickupDate", req.PickupDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ret, err := parseDate("returnDate", req.ReturnDate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	booking, err := s.bookings.Create(r.Context(), service.CreateBookingInput{
		UserID:     caller.UserID,
		CarID:      carID,
		Customer:   req.Customer,
		Email:      req.Email,
		Phone:      req.Phone,
		PickupDate: pickup,
		ReturnDate: ret,
		Address:    req.Address,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, booking)
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.ListAll(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())

	bookings, err := s.bookings.ListByUser(r.Context(), caller.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())

	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	booking, err := s.bookings.GetByID(r.Context(), id, caller.UserID, caller.IsAdmin())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())

	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	booking, err := s.bookings.Cancel(r.Context(), id, caller.UserID, caller.IsAdmin())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleUpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateBookingStatusRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	booking, err := s.bookings.UpdateStatus(r.Context(), id, domain.BookingStatus(req.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}

func (s *Server) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.bookings.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
