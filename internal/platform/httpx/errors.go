package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel error kinds for the service layer. Services wrap these with
// fmt.Errorf("%w: ...") so handlers can branch on kind while the message
// stays human readable.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrUnavailable  = errors.New("storage unavailable")
)

type apiError struct {
	kind error
	msg  string
}

func (e *apiError) Error() string { return e.msg }
func (e *apiError) Unwrap() error { return e.kind }

// NotFound builds a not-found error with a caller-facing message.
func NotFound(msg string) error { return &apiError{kind: ErrNotFound, msg: msg} }

// Validation builds a validation error with a caller-facing message.
func Validation(msg string) error { return &apiError{kind: ErrValidation, msg: msg} }

// Conflict builds a conflict error with a caller-facing message.
func Conflict(msg string) error { return &apiError{kind: ErrConflict, msg: msg} }

// Forbidden builds a forbidden error with a caller-facing message.
func Forbidden(msg string) error { return &apiError{kind: ErrForbidden, msg: msg} }

// PostgreSQL error codes relevant to constraint classification.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ClassifyPG converts a raw pgx error into one of the sentinel kinds,
// keeping the driver message for the envelope. Unknown errors pass through
// untouched so the handler reports them as infrastructure failures.
func ClassifyPG(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &apiError{kind: ErrConflict, msg: "duplicate value: " + pgErr.Detail}
		case pgForeignKeyViolation:
			return &apiError{kind: ErrConflict, msg: "record is referenced by dependent rows"}
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &apiError{kind: ErrUnavailable, msg: "storage timeout"}
	}
	return err
}

// RespondError maps a service error to the failure envelope. The service
// layer is the only boundary converting storage errors into kinds; callers
// never see a raw exception, only success=false with a message.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		JSON(w, http.StatusNotFound, Envelope{Success: false, Message: err.Error()})
	case errors.Is(err, ErrValidation):
		JSON(w, http.StatusBadRequest, Envelope{Success: false, Message: err.Error()})
	case errors.Is(err, ErrConflict):
		JSON(w, http.StatusBadRequest, Envelope{Success: false, Message: err.Error()})
	case errors.Is(err, ErrUnauthorized):
		JSON(w, http.StatusUnauthorized, Envelope{Success: false, Message: err.Error()})
	case errors.Is(err, ErrForbidden):
		JSON(w, http.StatusForbidden, Envelope{Success: false, Message: err.Error()})
	case errors.Is(err, ErrUnavailable):
		JSON(w, http.StatusServiceUnavailable, Envelope{Success: false, Message: "storage unavailable"})
	default:
		JSON(w, http.StatusInternalServerError, Envelope{Success: false, Message: "internal error"})
	}
}
