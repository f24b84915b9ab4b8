package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/atinyakov/ExpenseKeeper/internal/apperr"
	"github.com/atinyakov/ExpenseKeeper/internal/middleware"
	"github.com/atinyakov/ExpenseKeeper/internal/models"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 20
	maxBodyBytes     = 1 << 20
)

var errNoIdentity = errors.New("handler reached without an authenticated identity")

// decodeBody reads a JSON object from the request body into dst.
// Unknown fields are ignored.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("Invalid request body")
	}
	return nil
}

// fieldErrors accumulates per-field validation failures.
type fieldErrors []apperr.FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, apperr.FieldError{Field: field, Message: message})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperr.Validation("Invalid request body", f...)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func checkLength(errs *fieldErrors, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		errs.add(field, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max)+" characters")
	}
}

// pathID parses the {id} URL parameter as a positive integer.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid id", apperr.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

// pageParams reads ?page and ?limit, applying defaults.
func pageParams(r *http.Request) (models.Page, error) {
	q := r.URL.Query()
	p := models.Page{Page: 1, Limit: defaultPageLimit}
	var errs fieldErrors

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			errs.add("page", "must be an integer greater than or equal to 1")
		}
		p.Page = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			errs.add("limit", "must be an integer between 1 and "+strconv.Itoa(maxPageLimit))
		}
		p.Limit = n
	}
	if len(errs) == 0 && p.Overflows() {
		errs.add("page", "is too large")
	}
	if len(errs) > 0 {
		return models.Page{}, apperr.Validation("Invalid query parameters", errs...)
	}
	return p, nil
}

// callerID returns the identity published by middleware.Authenticate.
func callerID(r *http.Request) (models.AccountID, error) {
	id, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		return 0, apperr.Internal(errNoIdentity)
	}
	return id, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
