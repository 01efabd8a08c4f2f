package astc

import (
	"github.com/pkg/errors"
)

// ErrorCode classifies the errors returned by the codec API.
type ErrorCode uint32

const (
	// Success is returned by ErrorCodeOf for a nil error.
	Success ErrorCode = 0

	// ErrBadParam reports an out-of-range or inconsistent parameter.
	ErrBadParam ErrorCode = 1

	// ErrBadBlockSize reports a footprint ASTC does not define.
	ErrBadBlockSize ErrorCode = 2

	// ErrBadProfile reports an unknown profile, or a profile the requested
	// operation does not support.
	ErrBadProfile ErrorCode = 3

	// ErrBadQuality reports a quality preset outside 0..100.
	ErrBadQuality ErrorCode = 4

	// ErrBadData reports truncated or malformed input data.
	ErrBadData ErrorCode = 5
)

// ErrorString returns the name of code, or "" for unknown codes.
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "SUCCESS"
	case ErrBadParam:
		return "ERR_BAD_PARAM"
	case ErrBadBlockSize:
		return "ERR_BAD_BLOCK_SIZE"
	case ErrBadProfile:
		return "ERR_BAD_PROFILE"
	case ErrBadQuality:
		return "ERR_BAD_QUALITY"
	case ErrBadData:
		return "ERR_BAD_DATA"
	default:
		return ""
	}
}

func (c ErrorCode) String() string {
	if s := ErrorString(c); s != "" {
		return s
	}
	return "ERR_UNKNOWN"
}

// Error is a typed error that carries an ErrorCode.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "astc: " + s
	}
	return "astc: error"
}

// ErrorCodeOf returns the code carried by err or anything it wraps, Success
// for nil, and ErrBadParam for errors from outside the package.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

// errUnexpectedEOF reports a short read of what.
func errUnexpectedEOF(what string, want, got int) error {
	return errors.Wrapf(&Error{Code: ErrBadData, Msg: "astc: unexpected EOF"}, "%s: want %d bytes, got %d", what, want, got)
}
