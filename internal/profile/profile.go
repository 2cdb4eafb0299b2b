package profile

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrTruncatedStatus is returned when a status block is shorter than the
// profile layout.
var ErrTruncatedStatus = errors.New("truncated status")

// Kind identifies a device profile.
type Kind string

const (
	KindHeating Kind = "heating"
	KindFanCoil Kind = "fancoil"
)

// ParseKind parses a profile name as used in config files and flags.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "heating", "hy03":
		return KindHeating, nil
	case "fancoil", "fan-coil", "2pfc", "hy03ac":
		return KindFanCoil, nil
	default:
		return "", fmt.Errorf("unknown profile %q (want heating or fancoil)", s)
	}
}

// Profile is implemented by the Heating and FanCoil register maps.
type Profile interface {
	Kind() Kind
	Layout() Layout
	StatusCommand() Command
}

// ForKind returns the profile for kind.
func ForKind(kind Kind) (Profile, error) {
	switch kind {
	case KindHeating:
		return Heating, nil
	case KindFanCoil:
		return FanCoil, nil
	default:
		return nil, fmt.Errorf("unknown profile %q", kind)
	}
}

// Clock is the device real-time clock. Weekday runs 1 (Monday) to 7 (Sunday).
type Clock struct {
	Hour    int `json:"hour" yaml:"hour"`
	Minute  int `json:"minute" yaml:"minute"`
	Second  int `json:"second" yaml:"second"`
	Weekday int `json:"weekday" yaml:"weekday"`
}

// ClockFromTime converts a wall-clock time to the device representation.
func ClockFromTime(t time.Time) Clock {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Weekday: wd}
}

// String formats the clock as "Mon 14:05:09"
func (c Clock) String() string {
	return fmt.Sprintf("%s %02d:%02d:%02d", WeekdayName(c.Weekday), c.Hour, c.Minute, c.Second)
}

func (c Clock) bytes() []byte {
	return []byte{byte(c.Hour), byte(c.Minute), byte(c.Second), byte(c.Weekday)}
}

// WeekdayName returns the short name of an ISO weekday.
func WeekdayName(wd int) string {
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	if wd < 1 || wd > 7 {
		return fmt.Sprintf("day%d", wd)
	}
	return names[wd-1]
}

// Minutes returns hour*60+minute, the key for schedule ordering.
func Minutes(hour, minute int) int {
	return hour*60 + minute
}

// Common on/off values
const (
	Off = 0
	On  = 1
)
