package handler

import (
	"net/http"

	"github.com/google/uuid"

	"carrental/internal/middleware"
)

type createCheckoutSessionRequest struct {
	BookingID string `json:"bookingId" validate:"required,uuid4"`
}

func (s *Server) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	caller, _ := middleware.IdentityFrom(r.Context())

	var req createCheckoutSessionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		s.writeError(w, r, badRequestf("invalid bookingId %q", req.BookingID))
		return
	}

	sess, err := s.payments.CreateCheckoutSession(r.Context(), bookingID, caller.UserID, caller.IsAdmin())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

// handleConfirmPayment is the success-redirect target: Stripe sends the
// customer back with the session id in the query string, and this endpoint
// settles the booking. It stays idempotent because customers reload it.
func (s *Server) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	booking, err := s.payments.Confirm(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, booking)
}
