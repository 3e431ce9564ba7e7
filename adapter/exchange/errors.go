package exchange

import (
	"errors"
	"fmt"
)

var (
	ErrExchange             = errors.New("exchange error")
	ErrAuthentication       = errors.New("authentication error")
	ErrMissingCredentials   = errors.New("missing credentials")
	ErrArgumentsRequired    = errors.New("arguments required")
	ErrBadSymbol            = errors.New("unknown market")
	ErrBadCurrency          = errors.New("unknown currency")
	ErrInvalidOrder         = errors.New("invalid order")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrNotSupported         = errors.New("not supported")
	ErrNetwork              = errors.New("network error")
	ErrRateLimited          = errors.New("rate limited")
	ErrExchangeNotAvailable = errors.New("exchange not available")
	ErrBadResponse          = errors.New("bad response")
)

// Error is returned by every adapter operation. Its message starts with the
// exchange id; errors.Is matches its Kind and, when set, its Cause.
type Error struct {
	Kind     error
	Exchange string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	return e.Exchange + " " + e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind error, exchange, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Exchange: exchange,
		Message:  fmt.Sprintf(format, args...),
	}
}
