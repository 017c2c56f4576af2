package service

import "time"

// Clock-pinning helpers, visible to the service_test package only.
// Booking math is date-sensitive, so tests fix "now" instead of racing
// the wall clock.

func (s *CarService) WithClock(now func() time.Time) *CarService {
	s.now = now
	return s
}

func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

func (s *PaymentService) WithClock(now func() time.Time) *PaymentService {
	s.now = now
	return s
}

func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}
