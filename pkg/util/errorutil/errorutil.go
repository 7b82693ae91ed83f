package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("INVALID_INPUT", message, http.StatusBadRequest, details)
}

func NewInvalidDate(value string) error {
	return NewDomainError("INVALID_DATE", "please enter a valid date", http.StatusBadRequest,
		map[string]any{"value": value})
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewNotAuthenticated() error {
	return NewDomainError("NOT_AUTHENTICATED", "please login first", http.StatusUnauthorized, nil)
}

func NewWrongRole(required string) error {
	return NewDomainError("WRONG_ROLE", fmt.Sprintf("please login as a %s", required),
		http.StatusForbidden, nil)
}

func NewInvalidCredentials() error {
	return NewDomainError("INVALID_CREDENTIALS", "login failed", http.StatusUnauthorized, nil)
}

func NewDuplicateUsername(username string) error {
	return NewDomainError("DUPLICATE_USERNAME", "username taken", http.StatusConflict,
		map[string]any{"username": username})
}

func NewWeakPassword() error {
	return NewDomainError("WEAK_PASSWORD",
		"password must be at least 8 characters and mix upper, lower, digits and one of !@#?",
		http.StatusBadRequest, nil)
}

func NewDuplicateSlot(caregiver, date string) error {
	return NewDomainError("DUPLICATE_SLOT", "availability already published for that day",
		http.StatusConflict, map[string]any{"caregiver": caregiver, "date": date})
}

func NewOutOfStock(vaccine string) error {
	return NewDomainError("OUT_OF_STOCK", "not enough available doses",
		http.StatusConflict, map[string]any{"vaccine": vaccine})
}

func NewUnknownVaccine(vaccine string) error {
	return NewDomainError("UNKNOWN_VACCINE", "vaccine not found",
		http.StatusNotFound, map[string]any{"vaccine": vaccine})
}

func NewNoCaregiverAvailable(date string) error {
	return NewDomainError("NO_CAREGIVER_AVAILABLE", "no caregiver is available",
		http.StatusConflict, map[string]any{"date": date})
}

func NewAlreadyLoggedIn() error {
	return NewDomainError("ALREADY_LOGGED_IN", "user already logged in", http.StatusConflict, nil)
}

func NewNoActiveSession() error {
	return NewDomainError("NO_ACTIVE_SESSION", "no user logged in", http.StatusConflict, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewStorageFailure(err error) error {
	return &DomainError{
		Code:       "STORAGE_FAILURE",
		Message:    "storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err carries the given DomainError code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError. Unrecognized
// storage errors surface as STORAGE_FAILURE, never silently swallowed.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if de, ok := NewStorageFailure(err).(*DomainError); ok {
			return de
		}
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
