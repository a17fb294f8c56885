// Package errcode defines the error kinds returned by the decoding core.
package errcode

import "errors"

// Code is a stable error identifier. It is comparable and implements error,
// so callers can match with errors.Is(err, errcode.FrameTooShort).
type Code string

func (c Code) Error() string { return string(c) }

const (
	OK                 Code = "ok"
	InvalidArgument    Code = "invalid_argument"
	FrameTooShort      Code = "frame_too_short"
	InvalidHeader      Code = "invalid_header"
	UnsupportedStation Code = "unsupported_station"
	UnsupportedSensor  Code = "unsupported_sensor"

	// CRCMismatch is only produced by station transports; the decoder itself
	// never checks the trailing CRC.
	CRCMismatch Code = "crc_mismatch"

	Error Code = "error" // generic fallback
)

// E carries a Code together with the failing operation and an optional cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

// New builds an *E for op with a formatted message.
func New(c Code, op, msg string) *E {
	return &E{C: c, Op: op, Msg: msg}
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is reports a match against a bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}
