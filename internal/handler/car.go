package handler

import (
	"net/http"

	"carrental/internal/domain"
)

// carRequest is the write payload for creating and updating catalog cars.
// Defaults for omitted optional fields are applied by the service.
type carRequest struct {
	Make         string  `json:"make" validate:"required"`
	Model        string  `json:"model" validate:"required"`
	Year         int     `json:"year" validate:"required,min=1950"`
	Color        string  `json:"color"`
	Category     string  `json:"category"`
	Seats        int     `json:"seats"`
	Transmission string  `json:"transmission"`
	FuelType     string  `json:"fuelType"`
	Mileage      int     `json:"mileage" validate:"min=0"`
	DailyRate    float64 `json:"dailyRate" validate:"required,gt=0"`
	Status       string  `json:"status"`
	Image        string  `json:"image"`
	Description  string  `json:"description"`
}

func (req carRequest) toCar() domain.Car {
	return domain.Car{
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		Color:        req.Color,
		Category:     req.Category,
		Seats:        req.Seats,
		Transmission: req.Transmission,
		FuelType:     req.FuelType,
		Mileage:      req.Mileage,
		DailyRate:    req.DailyRate,
		Status:       domain.CarStatus(req.Status),
		Image:        req.Image,
		Description:  req.Description,
	}
}

func (s *Server) handleListCars(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.CarFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Status:   domain.CarStatus(q.Get("status")),
	}

	page, err := s.cars.List(r.Context(), filter, pagination(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetCar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.cars.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listing)
}

// handleCarAvailability answers "can I book this car for these dates" with
// the full availability verdict, including the blocking booking and the
// first free day when the answer is no.
func (s *Server) handleCarAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	pickup, err := parseDate("pickup", q.Get("pickup"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ret, err := parseDate("return", q.Get("return"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	avail, err := s.cars.CheckAvailability(r.Context(), id, pickup, ret)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, avail)
}

func (s *Server) handleCreateCar(w http.ResponseWriter, r *http.Request) {
	var req carRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	car, err := s.cars.Create(r.Context(), req.toCar())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, car)
}

func (s *Server) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req carRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	car := req.toCar()
	car.ID = id

	updated, err := s.cars.Update(r.Context(), car)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.cars.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
