package archive

import "fmt"

// ErrorCode identifies an archive-validation failure kind (spec §4.3, §7).
type ErrorCode string

const (
	ErrInvalidArchive  ErrorCode = "InvalidArchive"
	ErrDuplicateURL    ErrorCode = "DuplicateArchive"
	ErrArchiveNotFound ErrorCode = "ArchiveNotFound"
)

// Error is a code-tagged archive failure.
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
