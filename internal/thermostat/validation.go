package thermostat

import (
	"fmt"
	"math"

	"github.com/muurk/hysenctl/internal/profile"
)

// ValidateEnum checks that value is one of allowed.
func ValidateEnum(field string, value int, allowed ...int) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return NewInvalidEnumError(field, value, allowed)
}

// ValidateIntRange checks min <= value <= max.
func ValidateIntRange(field string, value, min, max int) error {
	if value < min || value > max {
		return NewOutOfRangeError(field, value, float64(min), float64(max))
	}
	return nil
}

// ValidateRange checks min <= value <= max. NaN and infinities never pass.
func ValidateRange(field string, value, min, max float64) error {
	if !finite(value) || value < min || value > max {
		return NewOutOfRangeError(field, value, min, max)
	}
	return nil
}

// ValidateClock checks hour 0-23, minute and second 0-59 and ISO weekday 1-7.
func ValidateClock(c profile.Clock) error {
	if err := ValidateIntRange("hour", c.Hour, 0, 23); err != nil {
		return err
	}
	if err := ValidateIntRange("minute", c.Minute, 0, 59); err != nil {
		return err
	}
	if err := ValidateIntRange("second", c.Second, 0, 59); err != nil {
		return err
	}
	return ValidateIntRange("weekday", c.Weekday, 1, 7)
}

// ValidateClockFields checks the fields of a clock change that are set.
func ValidateClockFields(hour, minute, second, weekday *int) error {
	checks := []struct {
		field    string
		value    *int
		min, max int
	}{
		{"hour", hour, 0, 23},
		{"minute", minute, 0, 59},
		{"second", second, 0, 59},
		{"weekday", weekday, 1, 7},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := ValidateIntRange(c.field, *c.value, c.min, c.max); err != nil {
			return err
		}
	}
	return nil
}

// ValidateUpperBound checks a proposed maximum against the stored minimum
// and target: it may not drop below either.
func ValidateUpperBound(field string, proposed, currentMin, target float64) error {
	if !finite(proposed) || proposed < currentMin {
		return boundError(field, proposed, fmt.Sprintf("%s %g is below the minimum %g", field, proposed, currentMin))
	}
	if proposed < target {
		return boundError(field, proposed, fmt.Sprintf("%s %g is below the target %g", field, proposed, target))
	}
	return nil
}

// ValidateLowerBound checks a proposed minimum against the stored maximum
// and target: it may not rise above either.
func ValidateLowerBound(field string, proposed, currentMax, target float64) error {
	if !finite(proposed) || proposed > currentMax {
		return boundError(field, proposed, fmt.Sprintf("%s %g is above the maximum %g", field, proposed, currentMax))
	}
	if proposed > target {
		return boundError(field, proposed, fmt.Sprintf("%s %g is above the target %g", field, proposed, target))
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func boundError(field string, value float64, message string) error {
	return NewConstraintError(field, value, message)
}

// ValidateTargetBand checks that a target lies within the active band.
func ValidateTargetBand(field string, target, min, max float64) error {
	if !finite(target) || target < min || target > max {
		err := NewConstraintError(field, target,
			fmt.Sprintf("%s %g is outside the active band %g..%g", field, target, min, max))
		err.Min, err.Max = min, max
		return err
	}
	return nil
}

// FanCoil rules

// ValidateFanCoilModeFan rejects fan-only mode combined with automatic fan
// speed. Either side may be the one being changed; field names it.
func ValidateFanCoilModeFan(field string, mode, fan int) error {
	if mode == profile.ModeFan && fan == profile.FanAuto {
		return NewConstraintError(field, mode,
			"fan-only mode cannot be combined with automatic fan speed")
	}
	return nil
}

// ValidateFanCoilTarget checks a target temperature against the mode band.
func ValidateFanCoilTarget(s profile.FanCoilState, temp int) error {
	min, max, ok := s.TargetBand()
	if !ok {
		return NewConstraintError("target_temp", temp,
			"target temperature cannot be set in fan-only mode")
	}
	return ValidateTargetBand("target_temp", float64(temp), float64(min), float64(max))
}

// ValidatePeriodTime checks a schedule boundary.
func ValidatePeriodTime(name string, t profile.PeriodTime) error {
	if err := ValidateIntRange(name+"_hour", t.Hour, 0, 23); err != nil {
		return err
	}
	return ValidateIntRange(name+"_min", t.Minute, 0, 59)
}

// validateTimeFields checks an explicit hour and minute of a period edit.
func validateTimeFields(name string, hour, minute *int) error {
	if hour != nil {
		if err := ValidateIntRange(name+"_hour", *hour, 0, 23); err != nil {
			return err
		}
	}
	if minute != nil {
		return ValidateIntRange(name+"_min", *minute, 0, 59)
	}
	return nil
}

// ValidateFanCoilSchedule checks both periods of a proposed daily schedule:
// each boundary in range and p1 start < p1 end < p2 start < p2 end.
func ValidateFanCoilSchedule(p1, p2 profile.FanCoilPeriod) error {
	times := []struct {
		name string
		t    profile.PeriodTime
	}{
		{"period1_start", p1.Start},
		{"period1_end", p1.End},
		{"period2_start", p2.Start},
		{"period2_end", p2.End},
	}

	for _, bt := range times {
		if err := ValidatePeriodTime(bt.name, bt.t); err != nil {
			return err
		}
	}

	for i := 1; i < len(times); i++ {
		prev, cur := times[i-1], times[i]
		if cur.t.Minutes() <= prev.t.Minutes() {
			return NewConstraintError(cur.name, fmt.Sprintf("%02d:%02d", cur.t.Hour, cur.t.Minute),
				fmt.Sprintf("%s %02d:%02d must be after %s %02d:%02d",
					cur.name, cur.t.Hour, cur.t.Minute, prev.name, prev.t.Hour, prev.t.Minute))
		}
	}
	return nil
}

// Heating rules

// ValidateHeatingTarget checks a target temperature against the stored
// min/max limits.
func ValidateHeatingTarget(s profile.HeatingState, temp float64) error {
	return ValidateTargetBand("target_temp", temp, float64(s.MinTemp), float64(s.MaxTemp))
}

// ValidateHeatingSchedule checks every period of a proposed schedule: times
// in range, temperatures within the stored limits, and switch points strictly
// increasing within the weekday and weekend groups.
func ValidateHeatingSchedule(s profile.HeatingState) error {
	check := func(prefix string, periods []profile.HeatingPeriod) error {
		for i, p := range periods {
			name := fmt.Sprintf("%s%d", prefix, i+1)
			if err := ValidateIntRange(name+"_hour", p.Hour, 0, 23); err != nil {
				return err
			}
			if err := ValidateIntRange(name+"_min", p.Minute, 0, 59); err != nil {
				return err
			}
			if err := ValidateRange(name+"_temp", p.Temp, float64(s.MinTemp), float64(s.MaxTemp)); err != nil {
				return err
			}
			if i > 0 && p.Minutes() <= periods[i-1].Minutes() {
				return NewConstraintError(name, fmt.Sprintf("%02d:%02d", p.Hour, p.Minute),
					fmt.Sprintf("%s %02d:%02d must be after %s%d %02d:%02d",
						name, p.Hour, p.Minute, prefix, i, periods[i-1].Hour, periods[i-1].Minute))
			}
		}
		return nil
	}

	if err := check("period", s.Weekday[:]); err != nil {
		return err
	}
	return check("we_period", s.Weekend[:])
}
