package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies errors surfaced by the ledger, notifier and repository.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInsufficientBalance
	KindInvalidInput
	KindStorageUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindInvalidInput:
		return "invalid_input"
	case KindStorageUnavailable:
		return "storage_unavailable"
	default:
		return "unknown"
	}
}

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InsufficientBalanceError is returned when a debit exceeds the user's balance
type InsufficientBalanceError struct {
	Balance  int
	Required int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("%s: balance %d is below required %d", KindInsufficientBalance, e.Balance, e.Required)
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps a collaborator failure. A nil err yields nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	// Already classified errors pass through untouched
	if KindOf(err) != KindUnknown {
		return err
	}
	return &Error{Kind: KindStorageUnavailable, Message: op, Err: err}
}

func InsufficientBalance(balance, required int) *InsufficientBalanceError {
	return &InsufficientBalanceError{Balance: balance, Required: required}
}

// KindOf walks the wrap chain and returns the first classified kind
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var ib *InsufficientBalanceError
	if errors.As(err, &ib) {
		return KindInsufficientBalance
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error to the status the HTTP layer responds with
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientBalance:
		return http.StatusConflict
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-facing text for err
func Message(err error) string {
	var ib *InsufficientBalanceError
	if errors.As(err, &ib) {
		return "Insufficient points"
	}
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind == KindStorageUnavailable {
			return "Storage unavailable"
		}
		return ae.Message
	}
	return "Internal server error"
}
