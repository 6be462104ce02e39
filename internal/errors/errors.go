package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when request input is missing or malformed.
	ErrValidation = errors.New("invalid input")
	// ErrInvalidCredentials is returned for unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned when a session token is missing, malformed or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller's role or permissions are insufficient.
	ErrForbidden = errors.New("forbidden")
	// ErrAccountSuspended is returned when a suspended account attempts to log in.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrAccountPending is returned when an account has not accepted its invitation yet.
	ErrAccountPending = errors.New("account pending activation")
	// ErrNotFound is returned when no user, profile or QR code matches.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken is returned when a profile username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidOrExpiredToken is returned for invitation tokens that do not match
	// or whose expiry has passed.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrRateLimited is returned when a caller exceeds the request window.
	ErrRateLimited = errors.New("too many requests")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Expected domain errors
// become structured client errors; anything else collapses to a generic 500
// so internal detail never reaches the caller.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidOrExpiredToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrAccountSuspended):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ACCOUNT_SUSPENDED")
	case errors.Is(err, ErrAccountPending):
		return NewHTTPError(http.StatusForbidden, err.Error(), "ACCOUNT_PENDING")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrUsernameTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, ErrRateLimited):
		return NewHTTPError(http.StatusTooManyRequests, err.Error(), "RATE_LIMITED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
