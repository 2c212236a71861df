// Package errors provides custom error types for the FinTrack backend.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & session errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidState = &AppError{Code: "INVALID_STATE", Message: "Invalid or expired authorization state", StatusCode: http.StatusBadRequest}
	ErrAuthExchange = &AppError{Code: "AUTH_EXCHANGE_FAILED", Message: "Authentication failed", StatusCode: http.StatusInternalServerError}
	ErrSessionStore = &AppError{Code: "SESSION_STORE_ERROR", Message: "Session could not be persisted", StatusCode: http.StatusInternalServerError}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Document store errors.
var (
	ErrDriveUnavailable = &AppError{Code: "DRIVE_UNAVAILABLE", Message: "Failed to reach the document store", StatusCode: http.StatusInternalServerError}
	ErrDriveRead        = &AppError{Code: "DRIVE_READ_FAILED", Message: "Failed to read from Drive", StatusCode: http.StatusInternalServerError}
	ErrDriveWrite       = &AppError{Code: "DRIVE_WRITE_FAILED", Message: "Failed to save to Drive", StatusCode: http.StatusInternalServerError}
)

// Upstream service errors.
var (
	ErrInsightsUnavailable = &AppError{Code: "INSIGHTS_UNAVAILABLE", Message: "Insight generation is currently unavailable", StatusCode: http.StatusBadGateway}
	ErrRatesUnavailable    = &AppError{Code: "RATES_UNAVAILABLE", Message: "Exchange rates are currently unavailable", StatusCode: http.StatusBadGateway}
)
