package thermostat

import (
	"fmt"

	"github.com/muurk/hysenctl/internal/profile"
)

// Device is the part of the API shared by both controller kinds.
type Device interface {
	Kind() profile.Kind
	Authenticated() bool
	AuthState() AuthState

	// Snapshot refreshes and returns profile.HeatingState or
	// profile.FanCoilState.
	Snapshot() (interface{}, error)

	SetPower(power int) error
	SetKeyLock(lock int) error
	SetTime(hour, minute, second, weekday *int) error
}

var (
	_ Device = (*HeatingDevice)(nil)
	_ Device = (*FanCoilDevice)(nil)
)

// New creates a device of the given kind.
func New(kind profile.Kind, transport Transport, opts Options) (Device, error) {
	switch kind {
	case profile.KindHeating:
		return NewHeating(transport, opts), nil
	case profile.KindFanCoil:
		return NewFanCoil(transport, opts), nil
	default:
		return nil, fmt.Errorf("unknown profile %q", kind)
	}
}
