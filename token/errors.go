package token

import "fmt"

// ErrorCode identifies a token-ledger failure kind (spec §7).
type ErrorCode string

const (
	ErrInsufficientBalance ErrorCode = "InsufficientBalance"
	ErrInsufficientStake   ErrorCode = "InsufficientStake"
	ErrPoolExhausted       ErrorCode = "PoolExhausted"
	ErrInvalidAmount       ErrorCode = "InvalidAmount"
)

// Error is a code-tagged token-ledger failure.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func newErr(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
