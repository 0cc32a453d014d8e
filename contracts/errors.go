package contracts

import "fmt"

// ErrorCode identifies a contract dispatch or state-machine failure kind
// (spec §7).
type ErrorCode string

const (
	ErrContractNotFound    ErrorCode = "ContractNotFound"
	ErrInvalidContractCall ErrorCode = "InvalidContractCall"
)

// Error is a code-tagged contract failure.
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
