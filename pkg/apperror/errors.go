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

// ---- Input Validation (VAL) ----

// Validation returns a generic validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidDestination(address string) *AppError {
	return New("VAL_002", fmt.Sprintf("'%s' is not a well-formed ledger address", address), http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_003", "Amount must be a positive number of drops", http.StatusBadRequest)
}

// ---- Escrow Business Logic (ESC) ----

// ErrInsufficientBalance is returned before submission when the spendable
// balance cannot cover amount + fee + the reserve for one more open escrow.
func ErrInsufficientBalance(requiredDrops, availableDrops int64) *AppError {
	return New("ESC_001",
		fmt.Sprintf("Insufficient balance: required %d drops (including reserve), available %d drops", requiredDrops, availableDrops),
		http.StatusPaymentRequired)
}

func ErrForbidden(message string) *AppError {
	return New("ESC_002", message, http.StatusForbidden)
}

// ErrAlreadyResolved rejects an action on an escrow that left Pending.
func ErrAlreadyResolved(sequence uint32) *AppError {
	return New("ESC_003", fmt.Sprintf("Escrow %d has already been released or cancelled", sequence), http.StatusConflict)
}

func ErrEscrowNotFound(sequence uint32) *AppError {
	return New("ESC_004", fmt.Sprintf("No escrow found with sequence %d", sequence), http.StatusNotFound)
}

// ErrNotYetEligible blocks a release/cancel attempt before its time window opens.
func ErrNotYetEligible(action string, eligibleAt int64) *AppError {
	return New("ESC_005", fmt.Sprintf("Escrow not yet eligible for %s (eligible at unix %d)", action, eligibleAt), http.StatusUnprocessableEntity)
}

// ---- Ledger Gateway (LGR) ----

// ErrSubmissionRejected surfaces a definitive ledger rejection verbatim.
// Never retried automatically.
func ErrSubmissionRejected(resultCode string) *AppError {
	return New("LGR_001", fmt.Sprintf("Ledger rejected transaction: %s", resultCode), http.StatusBadGateway)
}

// ErrSubmissionTimeout marks a submission with no definitive result. The
// transaction may still validate later, so callers must re-reconcile rather
// than assume failure.
func ErrSubmissionTimeout(err error) *AppError {
	return Wrap("LGR_002", "No definitive ledger result within the bounded wait", http.StatusGatewayTimeout, err)
}

// ErrLedgerUnavailable wraps a transport-level query failure.
func ErrLedgerUnavailable(err error) *AppError {
	return Wrap("LGR_003", "Ledger query failed", http.StatusBadGateway, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}
