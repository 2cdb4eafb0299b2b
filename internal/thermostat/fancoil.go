package thermostat

import (
	"github.com/muurk/hysenctl/internal/profile"
)

// FanCoilDevice drives a HY03AC 2-pipe fan coil controller.
type FanCoilDevice struct {
	*session
	state profile.FanCoilState
}

// NewFanCoil creates a fan coil device. No I/O happens until the first call.
func NewFanCoil(transport Transport, opts Options) *FanCoilDevice {
	return &FanCoilDevice{
		session: newSession(transport, opts),
		state:   profile.DefaultFanCoilState(),
	}
}

// Kind returns profile.KindFanCoil
func (d *FanCoilDevice) Kind() profile.Kind { return profile.KindFanCoil }

// State returns the last decoded state without touching the device.
func (d *FanCoilDevice) State() profile.FanCoilState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Refresh reads the status block and returns the new state.
func (d *FanCoilDevice) Refresh() (profile.FanCoilState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.refresh()
}

// Snapshot implements Device
func (d *FanCoilDevice) Snapshot() (interface{}, error) {
	return d.Refresh()
}

func (d *FanCoilDevice) refresh() (profile.FanCoilState, error) {
	block, err := d.readStatus(profile.FanCoil, profile.FanCoil.EncodeTime)
	if err != nil {
		return profile.FanCoilState{}, err
	}
	state, err := profile.FanCoil.Decode(block)
	if err != nil {
		return profile.FanCoilState{}, err
	}
	d.state = state
	return state, nil
}

// apply runs the read-before-write sequence: refresh, let change validate
// and build the proposed state, then send the encoded command. The cached
// state is only replaced by the next successful read.
func (d *FanCoilDevice) apply(
	encode func(profile.FanCoilState) profile.Command,
	change func(current profile.FanCoilState) (profile.FanCoilState, error),
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

// SetKeyLock selects the key lock type. Any type other than all-unlocked
// turns the key lock on.
func (d *FanCoilDevice) SetKeyLock(lockType int) error {
	if err := ValidateEnum("key_lock_type", lockType,
		profile.KeyAllUnlocked, profile.KeyPowerUnlocked, profile.KeyAllLocked); err != nil {
		return err
	}
	return d.apply(profile.FanCoil.EncodeLockPower, func(s profile.FanCoilState) (profile.FanCoilState, error) {
		s.KeyLockType = lockType
		s.KeyLock = profile.On
		if lockType == profile.KeyAllUnlocked {
			s.KeyLock = profile.Off
		}
		return s, nil
	})
}

// SetPower switches the controller on or off.
func (d *FanCoilDevice) SetPower(power int) error {
	if err := ValidateEnum("power", power, profile.Off, profile.On); err != nil {
		return err
	}
	return d.apply(profile.FanCoil.EncodeLockPower, func(s profile.FanCoilState) (profile.FanCoilState, error) {
		s.Power = power
		return s, nil
	})
}

// SetOperationMode selects fan, cool or heat.
func (d *FanCoilDevice) SetOperationMode(mode int) error {
	if err := ValidateEnum("operation_mode", mode,
		profile.ModeFan, profile.ModeCool, profile.ModeHeat); err != nil {
		return err
	}
	return d.apply(profile.FanCoil.EncodeModeFan, func(s profile.FanCoilState) (profile.FanCoilState, error) {
		if err := ValidateFanCoilModeFan("operation_mode", mode, s.FanMode); err != nil {
			return s, err
		}
		s.OperationMode = mode
		return s, nil
	})
}

// SetFanMode selects low, medium, high or auto fan speed.
func (d *FanCoilDevice) SetFanMode(fan int) error {
	if err := ValidateEnum("fan_mode", fan,
		profile.FanLow, profile.FanMedium, profile.FanHigh, profile.FanAuto); err != nil {
		return err
	}
	return d.apply(profile.FanCoil.EncodeModeFan, func(s profile.FanCoilState) (profile.FanCoilState, error) {
		if err := ValidateFanCoilModeFan("fan_mode", s.OperationMode, fan); err != nil {
			return s, err
		}
		s.FanMode = fan
		return s, nil
	})
}

// SetTargetTemp sets the target in whole degrees. It must lie within the
// cooling or heating band of the current mode and is refused in fan mode.
func (d *FanCoilDevice) SetTargetTemp(temp int) error {
	if err := ValidateIntRange("target_temp", temp, profile.FanCoilMinTemp, profile.FanCoilMaxTemp); err != nil {
		return err
	}
	return d.apply(profile.FanCoil.EncodeTarget, func(s profile.FanCoilState) (profile.FanCoilState, error) {
		if err := ValidateFanCoilTarget(s, temp); err != nil {
			return s, err
		}
		s.TargetTemp = temp
		return s, nil
	})
}

// SetHysteresis selects half or whole degree hysteresis.
func (d *FanCoilDevice) SetHysteresis(h int) error {
	if err := ValidateEnum("hysteresis", h, profile.HysteresisHalve, profile.HysteresisWhole); err != nil {
		return err
	}
	return d.setOption(func(s *profile.FanCoilState) error {
		s.Hysteresis = h
		return nil
	})
}

// SetCalibration sets the sensor offset in tenths of a degree.
func (d *FanCoilDevice) SetCalibration(c float64) error {
	if err := ValidateRange("calibration", c, profile.FanCoilCalibrationMin, profile.FanCoilCalibrationMax); err != nil {
		return err
	}
	return d.setOption(func(s *profile.FanCoilState) error {
		s.Calibration = c
		return nil
	})
}

// SetCoolingMaxTemp sets the upper cooling limit.
func (d *FanCoilDevice) SetCoolingMaxTemp(t int) error {
	return d.setLimit("cooling_max_temp", t, func(s *profile.FanCoilState) error {
		if err := ValidateUpperBound("cooling_max_temp", float64(t), float64(s.CoolingMinTemp), float64(s.TargetTemp)); err != nil {
			return err
		}
		s.CoolingMaxTemp = t
		return nil
	})
}

// SetCoolingMinTemp sets the lower cooling limit.
func (d *FanCoilDevice) SetCoolingMinTemp(t int) error {
	return d.setLimit("cooling_min_temp", t, func(s *profile.FanCoilState) error {
		if err := ValidateLowerBound("cooling_min_temp", float64(t), float64(s.CoolingMaxTemp), float64(s.TargetTemp)); err != nil {
			return err
		}
		s.CoolingMinTemp = t
		return nil
	})
}

// SetHeatingMaxTemp sets the upper heating limit.
func (d *FanCoilDevice) SetHeatingMaxTemp(t int) error {
	return d.setLimit("heating_max_temp", t, func(s *profile.FanCoilState) error {
		if err := ValidateUpperBound("heating_max_temp", float64(t), float64(s.HeatingMinTemp), float64(s.TargetTemp)); err != nil {
			return err
		}
		s.HeatingMaxTemp = t
		return nil
	})
}

// SetHeatingMinTemp sets the lower heating limit.
func (d *FanCoilDevice) SetHeatingMinTemp(t int) error {
	return d.setLimit("heating_min_temp", t, func(s *profile.FanCoilState) error {
		if err := ValidateLowerBound("heating_min_temp", float64(t), float64(s.HeatingMaxTemp), float64(s.TargetTemp)); err != nil {
			return err
		}
		s.HeatingMinTemp = t
		return nil
	})
}

// SetFanControl enables or disables fan control (FanControlOn/Off).
func (d *FanCoilDevice) SetFanControl(v int) error {
	if err := ValidateEnum("fan_control", v, profile.FanControlOn, profile.FanControlOff); err != nil {
		return err
	}
	return d.setOption(func(s *profile.FanCoilState) error {
		s.FanControl = v
		return nil
	})
}

// SetFrostProtection enables or disables frost protection.
func (d *FanCoilDevice) SetFrostProtection(v int) error {
	if err := ValidateEnum("frost_protection", v, profile.Off, profile.On); err != nil {
		return err
	}
	return d.setOption(func(s *profile.FanCoilState) error {
		s.FrostProtection = v
		return nil
	})
}

func (d *FanCoilDevice) setLimit(field string, t int, change func(*profile.FanCoilState) error) error {
	if err := ValidateIntRange(field, t, profile.FanCoilMinTemp, profile.FanCoilMaxTemp); err != nil {
		return err
	}
	return d.setOption(change)
}

func (d *FanCoilDevice) setOption(change func(*profile.FanCoilState) error) error {
	return d.apply(profile.FanCoil.EncodeOptions, func(s profile.FanCoilState) (profile.FanCoilState, error) {
		err := change(&s)
		return s, err
	})
}

// SetWeeklySchedule selects the days the daily schedule runs on.
func (d *FanCoilDevice) SetWeeklySchedule(schedule int) error {
	if err := ValidateEnum("schedule", schedule,
		profile.ScheduleToday, profile.Schedule12345, profile.Schedule123456, profile.Schedule1234567); err != nil {
		return err
	}
	return d.apply(profile.FanCoil.EncodeWeeklySchedule, func(s profile.FanCoilState) (profile.FanCoilState, error) {
		s.Schedule = schedule
		return s, nil
	})
}

// PeriodChange edits one schedule boundary. Nil fields keep the device value.
type PeriodChange struct {
	Enabled *bool
	Hour    *int
	Minute  *int
}

func (c PeriodChange) validate(name string) error {
	return validateTimeFields(name, c.Hour, c.Minute)
}

func (c PeriodChange) apply(t profile.PeriodTime) profile.PeriodTime {
	if c.Enabled != nil {
		t.Enabled = *c.Enabled
	}
	if c.Hour != nil {
		t.Hour = *c.Hour
	}
	if c.Minute != nil {
		t.Minute = *c.Minute
	}
	return t
}

// FanCoilScheduleChange edits the daily schedule.
type FanCoilScheduleChange struct {
	Period1Start PeriodChange
	Period1End   PeriodChange
	Period2Start PeriodChange
	Period2End   PeriodChange
}

// SetDailySchedule applies change on top of the device schedule. The result
// must keep p1 start < p1 end < p2 start < p2 end.
func (d *FanCoilDevice) SetDailySchedule(change FanCoilScheduleChange) error {
	edits := []struct {
		name   string
		change PeriodChange
	}{
		{"period1_start", change.Period1Start},
		{"period1_end", change.Period1End},
		{"period2_start", change.Period2Start},
		{"period2_end", change.Period2End},
	}
	for _, e := range edits {
		if err := e.change.validate(e.name); err != nil {
			return err
		}
	}

	return d.apply(profile.FanCoil.EncodeDailySchedule, func(s profile.FanCoilState) (profile.FanCoilState, error) {
		s.Period1.Start = change.Period1Start.apply(s.Period1.Start)
		s.Period1.End = change.Period1End.apply(s.Period1.End)
		s.Period2.Start = change.Period2Start.apply(s.Period2.Start)
		s.Period2.End = change.Period2End.apply(s.Period2.End)
		if err := ValidateFanCoilSchedule(s.Period1, s.Period2); err != nil {
			return s, err
		}
		return s, nil
	})
}

// SetTime sets the device clock. Nil fields keep the device value.
func (d *FanCoilDevice) SetTime(hour, minute, second, weekday *int) error {
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
	_, err = d.execute(profile.FanCoil.EncodeTime(c))
	return err
}

func mergeClock(c profile.Clock, hour, minute, second, weekday *int) profile.Clock {
	if hour != nil {
		c.Hour = *hour
	}
	if minute != nil {
		c.Minute = *minute
	}
	if second != nil {
		c.Second = *second
	}
	if weekday != nil {
		c.Weekday = *weekday
	}
	return c
}
