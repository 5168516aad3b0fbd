package domain

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrListingNotFound    = errors.New("listing not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("username or email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("operation not permitted for this user")
	ErrAccountDisabled    = errors.New("account is not active")
)

// ErrorCode represents a specific error condition.
type ErrorCode string

const (
	ErrCodeUnauthorized     ErrorCode = "Unauthorized"        // HTTP 401
	ErrCodeForbidden        ErrorCode = "Forbidden"           // HTTP 403
	ErrCodeNotFound         ErrorCode = "NotFound"            // HTTP 404
	ErrCodeConflict         ErrorCode = "Conflict"            // HTTP 409
	ErrCodeBadRequest       ErrorCode = "BadRequest"          // HTTP 400
	ErrCodeValidation       ErrorCode = "ValidationFailed"    // HTTP 400
	ErrCodeMethodNotAllowed ErrorCode = "MethodNotAllowed"    // HTTP 405
	ErrCodeInternal         ErrorCode = "InternalServerError" // HTTP 500
)

// ErrorResponse is the standard error body returned by every API route.
// success and statusCode are kept for clients written against the earlier API.
type ErrorResponse struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"statusCode"`
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
}

// NewErrorResponse creates a new ErrorResponse struct.
func NewErrorResponse(code ErrorCode, message string, details string) ErrorResponse {
	return ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// WriteJSON sends an ErrorResponse as JSON with the given HTTP status code.
func (er ErrorResponse) WriteJSON(w http.ResponseWriter, httpStatusCode int) {
	er.Success = false
	er.StatusCode = httpStatusCode
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	json.NewEncoder(w).Encode(er) // Best effort, the status line is already out.
}
