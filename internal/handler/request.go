package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"carrental/internal/domain"
)

// dateLayout is the wire format for calendar dates. Time-of-day is never
// part of the booking model.
const dateLayout = "2006-01-02"

// decode reads the request body as JSON into dst and runs the struct's
// `validate` tags. Failures come back as domain.ErrValidation so the
// caller can hand them straight to writeError.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return badRequestf("invalid JSON body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return badRequestf("%v", err)
	}
	return nil
}

// parseDate parses a yyyy-mm-dd query or body field.
func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, badRequestf("%s must be a date in the form %s", field, dateLayout)
	}
	return t, nil
}

// pagination reads page and limit query parameters, falling back to the
// catalog defaults when absent or malformed.
func pagination(r *http.Request) domain.PaginationParams {
	q := r.URL.Query()
	var page, limit *int
	if v, err := strconv.Atoi(q.Get("page")); err == nil {
		page = &v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil {
		limit = &v
	}
	return domain.NewPaginationParams(page, limit)
}
