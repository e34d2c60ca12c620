package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict is returned by compare-and-set writes when the stored value no longer matches the expected one.
var ErrConflict = errors.New("stored value changed concurrently")

// ErrInvalidStatusTransition is returned when a transaction status change would leave a terminal state.
var ErrInvalidStatusTransition = errors.New("invalid transaction status transition")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrRefreshTokenExpired is an ErrUnauthorized for a refresh token past its expiry.
var ErrRefreshTokenExpired = fmt.Errorf("refresh token expired: %w", ErrUnauthorized)

// Workflow and query errors surfaced to clients.
var (
	ErrFundNotFound         = errors.New("fund not found")
	ErrFundInactive         = errors.New("fund is not active")
	ErrBelowMinimumAmount   = errors.New("amount is below the fund minimum")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrAlreadySubscribed    = errors.New("account is already subscribed to this fund")
	ErrSubscriptionNotFound = errors.New("no active subscription to this fund")
	ErrAccountNotFound      = errors.New("account not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrNotAuthorized        = errors.New("not authorized to access this resource")
	ErrConcurrencyConflict  = errors.New("concurrent update conflict, retry the operation")
	ErrOperationFailed      = errors.New("operation failed")
)

// Error codes returned in API error bodies.
const (
	CodeFundNotFound         = "FUND_NOT_FOUND"
	CodeFundInactive         = "FUND_INACTIVE"
	CodeBelowMinimumAmount   = "BELOW_MINIMUM_AMOUNT"
	CodeInsufficientFunds    = "INSUFFICIENT_FUNDS"
	CodeAlreadySubscribed    = "ALREADY_SUBSCRIBED"
	CodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
	CodeAccountNotFound      = "ACCOUNT_NOT_FOUND"
	CodeTransactionNotFound  = "TRANSACTION_NOT_FOUND"
	CodeNotAuthorized        = "NOT_AUTHORIZED"
	CodeConcurrencyConflict  = "CONCURRENCY_CONFLICT"
	CodeOperationFailed      = "OPERATION_FAILED"
	CodeValidation           = "VALIDATION_ERROR"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeRefreshTokenExpired  = "REFRESH_TOKEN_EXPIRED"
	CodeDuplicate            = "DUPLICATE"
	CodeNotFound             = "NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
)

// codes is ordered: the first sentinel matched wins.
var codes = []struct {
	err  error
	code string
}{
	{ErrFundNotFound, CodeFundNotFound},
	{ErrFundInactive, CodeFundInactive},
	{ErrBelowMinimumAmount, CodeBelowMinimumAmount},
	{ErrInsufficientFunds, CodeInsufficientFunds},
	{ErrAlreadySubscribed, CodeAlreadySubscribed},
	{ErrSubscriptionNotFound, CodeSubscriptionNotFound},
	{ErrAccountNotFound, CodeAccountNotFound},
	{ErrTransactionNotFound, CodeTransactionNotFound},
	{ErrNotAuthorized, CodeNotAuthorized},
	{ErrConcurrencyConflict, CodeConcurrencyConflict},
	{ErrOperationFailed, CodeOperationFailed},
	{ErrValidation, CodeValidation},
	{ErrRefreshTokenExpired, CodeRefreshTokenExpired},
	{ErrUnauthorized, CodeUnauthorized},
	{ErrDuplicate, CodeDuplicate},
	{ErrNotFound, CodeNotFound},
}

// AppError pairs an error code with a message and an optional cause.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code string, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// CodeOf returns the API error code for err. Unknown errors map to CodeInternal.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeInternal
}
