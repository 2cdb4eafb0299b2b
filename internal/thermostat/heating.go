package thermostat

import (
	"fmt"

	"github.com/muurk/hysenctl/internal/profile"
)

// HeatingDevice drives a HY03 floor heating controller.
type HeatingDevice struct {
	*session
	state profile.HeatingState
}

// NewHeating creates a heating device. No I/O happens until the first call.
func NewHeating(transport Transport, opts Options) *HeatingDevice {
	return &HeatingDevice{
		session: newSession(transport, opts),
		state:   profile.DefaultHeatingState(),
	}
}

// Kind returns profile.KindHeating
func (d *HeatingDevice) Kind() profile.Kind { return profile.KindHeating }

// State returns the last decoded state without touching the device.
func (d *HeatingDevice) State() profile.HeatingState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Refresh reads the status block and returns the new state.
func (d *HeatingDevice) Refresh() (profile.HeatingState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refresh()
}

// Snapshot implements Device
func (d *HeatingDevice) Snapshot() (interface{}, error) {
	return d.Refresh()
}

func (d *HeatingDevice) refresh() (profile.HeatingState, error) {
	block, err := d.readStatus(profile.Heating, profile.Heating.EncodeTime)
	if err != nil {
		return profile.HeatingState{}, err
	}
	state, err := profile.Heating.Decode(block)
	if err != nil {
		return profile.HeatingState{}, err
	}
	d.state = state
	return state, nil
}

func (d *HeatingDevice) apply(
	encode func(profile.HeatingState) profile.Command,
	change func(current profile.HeatingState) (profile.HeatingState, error),
) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, err := d.refresh()
	if err != nil {
		return err
	}
	proposed, err := change(current)
	if err != nil {
		return err
	}
	_, err = d.execute(encode(proposed))
	return err
}

func (d *HeatingDevice) setOption(change func(*profile.HeatingState) error) error {
	return d.apply(profile.Heating.EncodeOptions, func(s profile.HeatingState) (profile.HeatingState, error) {
		err := change(&s)
		return s, err
	})
}

// SetKeyLock locks or unlocks the keypad.
func (d *HeatingDevice) SetKeyLock(lock int) error {
	if err := ValidateEnum("key_lock", lock, profile.Off, profile.On); err != nil {
		return err
	}
	return d.apply(profile.Heating.EncodeLockPower, func(s profile.HeatingState) (profile.HeatingState, error) {
		s.KeyLock = lock
		return s, nil
	})
}

// SetPower switches the controller on or off.
func (d *HeatingDevice) SetPower(power int) error {
	if err := ValidateEnum("power", power, profile.Off, profile.On); err != nil {
		return err
	}
	return d.apply(profile.Heating.EncodeLockPower, func(s profile.HeatingState) (profile.HeatingState, error) {
		s.Power = power
		return s, nil
	})
}

// SetTargetTemp sets the target in half degrees; finer values are truncated.
// It must lie within the stored min/max limits.
func (d *HeatingDevice) SetTargetTemp(temp float64) error {
	if err := ValidateRange("target_temp", temp, profile.HeatingMinTemp, profile.HeatingMaxTemp); err != nil {
		return err
	}
	return d.apply(profile.Heating.EncodeTarget, func(s profile.HeatingState) (profile.HeatingState, error) {
		if err := ValidateHeatingTarget(s, temp); err != nil {
			return s, err
		}
		s.TargetTemp = temp
		return s, nil
	})
}

// SetSensor selects the internal, external or combined sensor.
func (d *HeatingDevice) SetSensor(sensor int) error {
	if err := ValidateEnum("sensor", sensor,
		profile.SensorInternal, profile.SensorExternal, profile.SensorInternalExternal); err != nil {
		return err
	}
	return d.apply(profile.Heating.EncodeModeSensor, func(s profile.HeatingState) (profile.HeatingState, error) {
		s.Sensor = sensor
		return s, nil
	})
}

// SetOperationMode selects manual or auto (schedule) mode.
func (d *HeatingDevice) SetOperationMode(mode int) error {
	if err := ValidateEnum("operation_mode", mode, profile.HeatingModeManual, profile.HeatingModeAuto); err != nil {
		return err
	}
	return d.apply(profile.Heating.EncodeModeSensor, func(s profile.HeatingState) (profile.HeatingState, error) {
		s.OperationMode = mode
		return s, nil
	})
}

// SetWeeklySchedule selects how the week splits into weekday and weekend.
func (d *HeatingDevice) SetWeeklySchedule(schedule int) error {
	if err := ValidateEnum("schedule", schedule,
		profile.HeatingSchedule5Plus2, profile.HeatingSchedule6Plus1, profile.HeatingSchedule7); err != nil {
		return err
	}
	return d.apply(profile.Heating.EncodeModeSensor, func(s profile.HeatingState) (profile.HeatingState, error) {
		s.Schedule = schedule
		return s, nil
	})
}

// SetExternalMaxTemp sets the floor sensor limit.
func (d *HeatingDevice) SetExternalMaxTemp(t int) error {
	if err := ValidateIntRange("external_max_temp", t, profile.HeatingMinTemp, profile.HeatingMaxTemp); err != nil {
		return err
	}
	return d.setOption(func(s *profile.HeatingState) error {
		s.ExternalMaxTemp = t
		return nil
	})
}

// SetHysteresis sets the switching hysteresis in degrees.
func (d *HeatingDevice) SetHysteresis(h int) error {
	if err := ValidateIntRange("hysteresis", h, profile.HeatingHysteresisMin, profile.HeatingHysteresisMax); err != nil {
		return err
	}
	return d.setOption(func(s *profile.HeatingState) error {
		s.Hysteresis = h
		return nil
	})
}

// SetMaxTemp sets the upper limit. It may not drop below the stored minimum
// or target.
func (d *HeatingDevice) SetMaxTemp(t int) error {
	if err := ValidateIntRange("max_temp", t, profile.HeatingMinTemp, profile.HeatingMaxTemp); err != nil {
		return err
	}
	return d.setOption(func(s *profile.HeatingState) error {
		if err := ValidateUpperBound("max_temp", float64(t), float64(s.MinTemp), s.TargetTemp); err != nil {
			return err
		}
		s.MaxTemp = t
		return nil
	})
}

// SetMinTemp sets the lower limit. It may not rise above the stored maximum
// or target.
func (d *HeatingDevice) SetMinTemp(t int) error {
	if err := ValidateIntRange("min_temp", t, profile.HeatingMinTemp, profile.HeatingMaxTemp); err != nil {
		return err
	}
	return d.setOption(func(s *profile.HeatingState) error {
		if err := ValidateLowerBound("min_temp", float64(t), float64(s.MaxTemp), s.TargetTemp); err != nil {
			return err
		}
		s.MinTemp = t
		return nil
	})
}

// SetCalibration sets the sensor offset in half degrees.
func (d *HeatingDevice) SetCalibration(c float64) error {
	if err := ValidateRange("calibration", c, profile.HeatingCalibrationMin, profile.HeatingCalibrationMax); err != nil {
		return err
	}
	return d.setOption(func(s *profile.HeatingState) error {
		s.Calibration = c
		return nil
	})
}

// SetFrostProtection enables or disables frost protection.
func (d *HeatingDevice) SetFrostProtection(v int) error {
	if err := ValidateEnum("frost_protection", v, profile.Off, profile.On); err != nil {
		return err
	}
	return d.setOption(func(s *profile.HeatingState) error {
		s.FrostProtection = v
		return nil
	})
}

// SetPowerOn selects whether the controller restores power after an outage.
func (d *HeatingDevice) SetPowerOn(v int) error {
	if err := ValidateEnum("poweron", v, profile.Off, profile.On); err != nil {
		return err
	}
	return d.setOption(func(s *profile.HeatingState) error {
		s.PowerOn = v
		return nil
	})
}

// HeatingPeriodChange edits one switch point. Nil fields keep the device value.
type HeatingPeriodChange struct {
	Hour   *int
	Minute *int
	Temp   *float64
}

func (c HeatingPeriodChange) apply(p profile.HeatingPeriod) profile.HeatingPeriod {
	if c.Hour != nil {
		p.Hour = *c.Hour
	}
	if c.Minute != nil {
		p.Minute = *c.Minute
	}
	if c.Temp != nil {
		p.Temp = *c.Temp
	}
	return p
}

// SetPeriod edits weekday switch point index (1-6).
func (d *HeatingDevice) SetPeriod(index int, change HeatingPeriodChange) error {
	if err := ValidateIntRange("period", index, 1, profile.HeatingWeekdayPeriods); err != nil {
		return err
	}
	if err := validateTimeFields(fmt.Sprintf("period%d", index), change.Hour, change.Minute); err != nil {
		return err
	}
	return d.setSchedule(func(s *profile.HeatingState) {
		s.Weekday[index-1] = change.apply(s.Weekday[index-1])
	})
}

// SetWeekendPeriod edits weekend switch point index (1-2).
func (d *HeatingDevice) SetWeekendPeriod(index int, change HeatingPeriodChange) error {
	if err := ValidateIntRange("we_period", index, 1, profile.HeatingWeekendPeriods); err != nil {
		return err
	}
	if err := validateTimeFields(fmt.Sprintf("we_period%d", index), change.Hour, change.Minute); err != nil {
		return err
	}
	return d.setSchedule(func(s *profile.HeatingState) {
		s.Weekend[index-1] = change.apply(s.Weekend[index-1])
	})
}

// SetDailySchedule replaces every switch point.
func (d *HeatingDevice) SetDailySchedule(
	weekday [profile.HeatingWeekdayPeriods]profile.HeatingPeriod,
	weekend [profile.HeatingWeekendPeriods]profile.HeatingPeriod,
) error {
	for i, p := range weekday {
		if err := validateTimeFields(fmt.Sprintf("period%d", i+1), &p.Hour, &p.Minute); err != nil {
			return err
		}
	}
	for i, p := range weekend {
		if err := validateTimeFields(fmt.Sprintf("we_period%d", i+1), &p.Hour, &p.Minute); err != nil {
			return err
		}
	}
	return d.setSchedule(func(s *profile.HeatingState) {
		s.Weekday = weekday
		s.Weekend = weekend
	})
}

// setSchedule validates the whole proposed day, so an edit to one period can
// be rejected because of its neighbours.
func (d *HeatingDevice) setSchedule(change func(*profile.HeatingState)) error {
	return d.apply(profile.Heating.EncodeDailySchedule, func(s profile.HeatingState) (profile.HeatingState, error) {
		change(&s)
		if err := ValidateHeatingSchedule(s); err != nil {
			return s, err
		}
		return s, nil
	})
}

// SetTime sets the device clock. Nil fields keep the device value.
func (d *HeatingDevice) SetTime(hour, minute, second, weekday *int) error {
	if err := ValidateClockFields(hour, minute, second, weekday); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	current, err := d.refresh()
	if err != nil {
		return err
	}
	c := mergeClock(current.Clock, hour, minute, second, weekday)
	if err := ValidateClock(c); err != nil {
		return err
	}
	_, err = d.execute(profile.Heating.EncodeTime(c))
	return err
}
