package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. inverted date range, illegal status transition).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a booking request loses to an existing or
// concurrently created booking for an overlapping date range, or when a
// uniqueness constraint (e.g. duplicate email) is violated.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrUnauthorized is returned when credentials are missing or wrong.
// Handlers should map this to HTTP 401.
var ErrUnauthorized = errors.New("unauthorized")
