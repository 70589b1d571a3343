package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger (BAL) ----

// ErrInvalidLedgerInput exposes the validation reason, which never contains
// anything but amounts and split ids.
func ErrInvalidLedgerInput(err error) *AppError {
	return Wrap("BAL_001", fmt.Sprintf("Invalid ledger input: %v", err), http.StatusBadRequest, err)
}

func ErrImbalancedLedger(err error) *AppError {
	return Wrap("BAL_002", "Event balances do not sum to zero", http.StatusUnprocessableEntity, err)
}

// ---- Events (EVT) ----

func ErrEventNotFound(eventID string) *AppError {
	return New("EVT_001", fmt.Sprintf("Event %s not found", eventID), http.StatusNotFound)
}

func ErrNotParticipant() *AppError {
	return New("EVT_002", "Caller is not a participant of this event", http.StatusForbidden)
}

// ---- Upstream backend (UPS) ----

func ErrBackendUnavailable(err error) *AppError {
	return Wrap("UPS_001", "Event backend unavailable", http.StatusBadGateway, err)
}

func ErrBackendTimeout(err error) *AppError {
	return Wrap("UPS_002", "Event backend timed out", http.StatusGatewayTimeout, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Webhook security (SEC) ----

func ErrMissingSignature() *AppError {
	return New("SEC_001", "Missing signature headers", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Invalid signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("SEC_003", "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New("SEC_004", "Nonce has already been used", http.StatusForbidden)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Request validation (VAL) ----

// Validation returns a VAL_001 error for malformed requests.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrPayloadTooLarge() *AppError {
	return New("VAL_003", "Request body too large", http.StatusRequestEntityTooLarge)
}

func ErrNotFound(entity string) *AppError {
	return New("VAL_002", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrCacheError(err error) *AppError {
	return Wrap("SYS_002", "Cache unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
