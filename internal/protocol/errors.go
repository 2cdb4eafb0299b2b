package protocol

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of protocol failure
type ErrorKind int

const (
	// KindMalformedLength indicates the length byte points past the received data
	KindMalformedLength ErrorKind = iota
	// KindCRCMismatch indicates the envelope checksum does not match its payload
	KindCRCMismatch
	// KindEchoMismatch indicates the device did not confirm the command as sent
	KindEchoMismatch
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindMalformedLength:
		return "Malformed Length"
	case KindCRCMismatch:
		return "CRC Mismatch"
	case KindEchoMismatch:
		return "Echo Mismatch"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Device exception codes carried in 01 (0x80|op) code replies
const (
	ExceptionUnknownCommand byte = 0x01
	ExceptionLengthInvalid  byte = 0x02
	ExceptionWrongLength    byte = 0x03
)

// ExceptionName returns the description of a device exception code.
func ExceptionName(code byte) string {
	switch code {
	case ExceptionUnknownCommand:
		return "unknown command"
	case ExceptionLengthInvalid:
		return "length missing or too large"
	case ExceptionWrongLength:
		return "wrong length"
	default:
		return fmt.Sprintf("exception 0x%02x", code)
	}
}

// Error is returned for envelope and echo failures.
type Error struct {
	Kind      ErrorKind
	Message   string
	Request   []byte // request payload (echo failures only)
	Response  []byte // response payload or raw envelope
	Exception byte   // device exception code, 0 when the reply was not an exception
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func newError(kind ErrorKind, response []byte, format string, args ...interface{}) *Error {
	return &Error{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Response: append([]byte(nil), response...),
	}
}

func kindOf(err error) (ErrorKind, bool) {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind, true
	}
	return 0, false
}

// IsMalformedLength checks if an error is a length failure
func IsMalformedLength(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindMalformedLength
}

// IsCRCMismatch checks if an error is a checksum failure
func IsCRCMismatch(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindCRCMismatch
}

// IsEchoMismatch checks if an error is an echo failure.
// Callers must drop their authenticated session when this is true.
func IsEchoMismatch(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindEchoMismatch
}
