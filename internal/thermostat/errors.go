package thermostat

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/muurk/hysenctl/internal/profile"
	"github.com/muurk/hysenctl/internal/protocol"
)

// ErrNotAuthenticated is returned when the transport refuses to authenticate.
var ErrNotAuthenticated = errors.New("device not authenticated")

// ErrorType represents the category of validation failure
type ErrorType int

const (
	// ErrTypeInvalidEnum indicates a value outside an enumerated set
	ErrTypeInvalidEnum ErrorType = iota
	// ErrTypeOutOfRange indicates a value outside a closed interval
	ErrTypeOutOfRange
	// ErrTypeConstraint indicates a value that conflicts with live device state
	ErrTypeConstraint
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeInvalidEnum:
		return "Invalid Value"
	case ErrTypeOutOfRange:
		return "Out Of Range"
	case ErrTypeConstraint:
		return "Constraint Violated"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ValidationError is returned when a setter argument is rejected. It is
// always raised before anything is sent to the device.
type ValidationError struct {
	Type    ErrorType
	Field   string      // setter field name, e.g. "target_temp"
	Value   interface{} // offending value
	Allowed []int       // enumerated values (ErrTypeInvalidEnum)
	Min     float64     // interval bounds (ErrTypeOutOfRange, some constraints)
	Max     float64
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewInvalidEnumError creates an error for a value outside allowed
func NewInvalidEnumError(field string, value int, allowed []int) *ValidationError {
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = fmt.Sprint(a)
	}
	return &ValidationError{
		Type:    ErrTypeInvalidEnum,
		Field:   field,
		Value:   value,
		Allowed: append([]int(nil), allowed...),
		Message: fmt.Sprintf("%s must be one of {%s}, got %d", field, strings.Join(parts, ", "), value),
	}
}

// NewOutOfRangeError creates an error for a value outside [min, max]
func NewOutOfRangeError(field string, value interface{}, min, max float64) *ValidationError {
	return &ValidationError{
		Type:    ErrTypeOutOfRange,
		Field:   field,
		Value:   value,
		Min:     min,
		Max:     max,
		Message: fmt.Sprintf("%s must be %g..%g, got %v", field, min, max, value),
	}
}

// NewConstraintError creates an error for a cross-field conflict
func NewConstraintError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Type:    ErrTypeConstraint,
		Field:   field,
		Value:   value,
		Message: message,
	}
}

func validationType(err error) (ErrorType, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Type, true
	}
	return 0, false
}

// IsValidationError checks if an error is any validation failure
func IsValidationError(err error) bool {
	_, ok := validationType(err)
	return ok
}

// IsInvalidEnum checks if an error is an enumerated-value failure
func IsInvalidEnum(err error) bool {
	t, ok := validationType(err)
	return ok && t == ErrTypeInvalidEnum
}

// IsOutOfRange checks if an error is a range failure
func IsOutOfRange(err error) bool {
	t, ok := validationType(err)
	return ok && t == ErrTypeOutOfRange
}

// IsConstraintViolated checks if an error is a cross-field failure
func IsConstraintViolated(err error) bool {
	t, ok := validationType(err)
	return ok && t == ErrTypeConstraint
}

// TroubleshootingHints returns user-facing advice for an error
func TroubleshootingHints(err error) []string {
	var pErr *protocol.Error
	var vErr *ValidationError
	var netErr net.Error

	switch {
	case err == nil:
		return nil

	case errors.As(err, &vErr):
		hints := []string{"Nothing was sent to the device."}
		switch vErr.Type {
		case ErrTypeInvalidEnum:
			hints = append(hints, fmt.Sprintf("Use one of %v for %s", vErr.Allowed, vErr.Field))
		case ErrTypeOutOfRange:
			hints = append(hints, fmt.Sprintf("Use a value between %g and %g", vErr.Min, vErr.Max))
		case ErrTypeConstraint:
			hints = append(hints, "Run 'hysenctl status' to see the current limits and mode")
		}
		return hints

	case errors.As(err, &pErr):
		switch pErr.Kind {
		case protocol.KindEchoMismatch:
			hints := []string{"The device did not confirm the command."}
			if pErr.Exception != 0 {
				hints = append(hints, "Device reported: "+protocol.ExceptionName(pErr.Exception))
			}
			return append(hints,
				"The session re-authenticates on the next command",
				"Check that the configured profile matches the device model")
		default:
			return []string{
				"The response envelope was corrupted.",
				"Check the bridge link quality and retry",
			}
		}

	case errors.Is(err, profile.ErrTruncatedStatus):
		return []string{
			"The status block was shorter than expected.",
			"Check that the profile (heating or fancoil) matches the device",
		}

	case errors.Is(err, ErrNotAuthenticated):
		return []string{
			"The bridge refused the session.",
			"Check the bridge username and password",
			"Make sure no other client holds the device session",
		}

	case errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return []string{
			"The device did not respond in time.",
			"Check that the thermostat is powered and in range of the bridge",
			"Try increasing --timeout",
		}

	default:
		return []string{"Check the bridge connection and retry"}
	}
}
