package profile

import "encoding/binary"

// FanCoil register map (HY03AC 2-pipe fan coil controller)
const (
	FanCoilStatusAddress = 0x0000
	FanCoilStatusWords   = 0x10
	FanCoilStatusLength  = FanCoilStatusWords * 2

	fanCoilLockPowerAddress = 0x0000
	fanCoilModeFanAddress   = 0x0001
	fanCoilTargetAddress    = 0x0002
	fanCoilOptionsAddress   = 0x0003
	fanCoilTimeAddress      = 0x0007
	fanCoilWeeklyAddress    = 0x0009
	fanCoilDailyAddress     = 0x000A
)

// FanCoil limits
const (
	FanCoilMaxTemp          = 40
	FanCoilMinTemp          = 10
	FanCoilCalibrationMin   = -5.0
	FanCoilCalibrationMax   = 5.0
	FanCoilCalibrationScale = 10
)

// FanCoil key lock types
const (
	KeyAllUnlocked   = 0
	KeyPowerUnlocked = 1
	KeyAllLocked     = 2
)

// FanCoil operation modes
const (
	ModeFan  = 1
	ModeCool = 2
	ModeHeat = 3
)

// FanCoil fan speeds
const (
	FanLow    = 1
	FanMedium = 2
	FanHigh   = 3
	FanAuto   = 4
)

// FanCoil hysteresis granularity
const (
	HysteresisHalve = 0
	HysteresisWhole = 1
)

// FanCoil fan control. The device stores 0 for on.
const (
	FanControlOn  = 0
	FanControlOff = 1
)

// FanCoil weekly schedules
const (
	ScheduleToday   = 0
	Schedule12345   = 1
	Schedule123456  = 2
	Schedule1234567 = 3
)

// PeriodTime is a schedule boundary with its own enable flag.
type PeriodTime struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
	Hour    int  `json:"hour" yaml:"hour"`
	Minute  int  `json:"minute" yaml:"minute"`
}

// Minutes returns the boundary as minutes since midnight.
func (p PeriodTime) Minutes() int {
	return Minutes(p.Hour, p.Minute)
}

// FanCoilPeriod is one on/off window of the daily schedule.
type FanCoilPeriod struct {
	Start PeriodTime `json:"start" yaml:"start"`
	End   PeriodTime `json:"end" yaml:"end"`
}

// FanCoilState is the decoded status of a fan coil controller.
type FanCoilState struct {
	KeyLock         int           `json:"key_lock" yaml:"key_lock"`
	KeyLockType     int           `json:"key_lock_type" yaml:"key_lock_type"`
	Valve           int           `json:"valve" yaml:"valve"`
	Power           int           `json:"power" yaml:"power"`
	OperationMode   int           `json:"operation_mode" yaml:"operation_mode"`
	FanMode         int           `json:"fan_mode" yaml:"fan_mode"`
	RoomTemp        int           `json:"room_temp" yaml:"room_temp"`
	TargetTemp      int           `json:"target_temp" yaml:"target_temp"`
	Hysteresis      int           `json:"hysteresis" yaml:"hysteresis"`
	Calibration     float64       `json:"calibration" yaml:"calibration"`
	CoolingMaxTemp  int           `json:"cooling_max_temp" yaml:"cooling_max_temp"`
	CoolingMinTemp  int           `json:"cooling_min_temp" yaml:"cooling_min_temp"`
	HeatingMaxTemp  int           `json:"heating_max_temp" yaml:"heating_max_temp"`
	HeatingMinTemp  int           `json:"heating_min_temp" yaml:"heating_min_temp"`
	FanControl      int           `json:"fan_control" yaml:"fan_control"`
	FrostProtection int           `json:"frost_protection" yaml:"frost_protection"`
	Clock           Clock         `json:"clock" yaml:"clock"`
	Unknown         int           `json:"unknown" yaml:"unknown"`
	Schedule        int           `json:"schedule" yaml:"schedule"`
	Period1         FanCoilPeriod `json:"period1" yaml:"period1"`
	Period2         FanCoilPeriod `json:"period2" yaml:"period2"`
	TimeValveOn     uint32        `json:"time_valve_on" yaml:"time_valve_on"`
}

// DefaultFanCoilState returns the power-on state used until the first read.
func DefaultFanCoilState() FanCoilState {
	return FanCoilState{
		KeyLock:         Off,
		KeyLockType:     KeyAllUnlocked,
		Valve:           Off,
		Power:           On,
		OperationMode:   ModeFan,
		FanMode:         FanLow,
		TargetTemp:      22,
		Hysteresis:      HysteresisWhole,
		Calibration:     0.0,
		CoolingMaxTemp:  FanCoilMaxTemp,
		CoolingMinTemp:  FanCoilMinTemp,
		HeatingMaxTemp:  FanCoilMaxTemp,
		HeatingMinTemp:  FanCoilMinTemp,
		FanControl:      FanControlOn,
		FrostProtection: On,
		Schedule:        ScheduleToday,
		Period1: FanCoilPeriod{
			Start: PeriodTime{Hour: 8, Minute: 0},
			End:   PeriodTime{Hour: 11, Minute: 30},
		},
		Period2: FanCoilPeriod{
			Start: PeriodTime{Hour: 12, Minute: 30},
			End:   PeriodTime{Hour: 17, Minute: 30},
		},
	}
}

// TargetBand returns the target limits of the active operation mode.
// Fan-only mode has no target; ok is false.
func (s FanCoilState) TargetBand() (min, max int, ok bool) {
	switch s.OperationMode {
	case ModeFan:
		return 0, 0, false
	case ModeHeat:
		return s.HeatingMinTemp, s.HeatingMaxTemp, true
	default:
		return s.CoolingMinTemp, s.CoolingMaxTemp, true
	}
}

// Offsets index the register data following the 01 03 count header.
var (
	fcKeyLock         = Bit("key_lock", 0, 4)
	fcKeyLockType     = Field{Name: "key_lock_type", Offset: 0, Mask: 0x03}
	fcValve           = Bit("valve", 1, 4)
	fcPower           = Bit("power", 1, 0)
	fcOperationMode   = Byte("operation_mode", 2)
	fcFanMode         = Byte("fan_mode", 3)
	fcRoomTemp        = Byte("room_temp", 4)
	fcTargetTemp      = Byte("target_temp", 5)
	fcHysteresis      = Byte("hysteresis", 6)
	fcCalibration     = Field{Name: "calibration", Offset: 7, Width: 1, Signed: true, Scale: FanCoilCalibrationScale}
	fcCoolingMaxTemp  = Byte("cooling_max_temp", 8)
	fcCoolingMinTemp  = Byte("cooling_min_temp", 9)
	fcHeatingMaxTemp  = Byte("heating_max_temp", 10)
	fcHeatingMinTemp  = Byte("heating_min_temp", 11)
	fcFanControl      = Byte("fan_control", 12)
	fcFrostProtection = Byte("frost_protection", 13)
	fcClockHour       = Byte("clock_hour", 14)
	fcClockMinute     = Byte("clock_minute", 15)
	fcClockSecond     = Byte("clock_second", 16)
	fcClockWeekday    = Byte("clock_weekday", 17)
	fcUnknown         = Byte("unknown", 18)
	fcSchedule        = Byte("schedule", 19)
	fcTimeValveOn     = Field{Name: "time_valve_on", Offset: 28, Width: 4}
)

// fanCoilPeriodOffsets holds the hour byte offset of p1 start, p1 end,
// p2 start and p2 end. Each minute byte follows its hour.
var fanCoilPeriodOffsets = [4]int{20, 22, 24, 26}

var fanCoilPeriodNames = [4]string{"period1_start", "period1_end", "period2_start", "period2_end"}

func periodFields(name string, offset int) (enabled, hour, minute Field) {
	return Bit(name+"_enabled", offset, 7),
		Field{Name: name + "_hour", Offset: offset, Mask: 0x1F},
		Field{Name: name + "_minute", Offset: offset + 1, Mask: 0x3F}
}

func fanCoilLayout() Layout {
	fields := []Field{
		fcKeyLock, fcKeyLockType, fcValve, fcPower, fcOperationMode, fcFanMode,
		fcRoomTemp, fcTargetTemp, fcHysteresis, fcCalibration,
		fcCoolingMaxTemp, fcCoolingMinTemp, fcHeatingMaxTemp, fcHeatingMinTemp,
		fcFanControl, fcFrostProtection,
		fcClockHour, fcClockMinute, fcClockSecond, fcClockWeekday,
		fcUnknown, fcSchedule,
	}
	for i, offset := range fanCoilPeriodOffsets {
		enabled, hour, minute := periodFields(fanCoilPeriodNames[i], offset)
		fields = append(fields, enabled, hour, minute)
	}
	fields = append(fields, fcTimeValveOn)
	return Layout{Name: string(KindFanCoil), Length: FanCoilStatusLength, Fields: fields}
}

// FanCoilProfile encodes and decodes the fan coil register map.
type FanCoilProfile struct {
	layout Layout
}

// FanCoil is the HY03AC profile.
var FanCoil = FanCoilProfile{layout: fanCoilLayout()}

var _ Profile = FanCoil

// Kind returns KindFanCoil
func (FanCoilProfile) Kind() Kind { return KindFanCoil }

// Layout returns the status field table
func (p FanCoilProfile) Layout() Layout { return p.layout }

// StatusCommand reads the 16-word status block
func (FanCoilProfile) StatusCommand() Command {
	return ReadBlock("status", FanCoilStatusAddress, FanCoilStatusWords)
}

// Decode parses a status block. It fails with ErrTruncatedStatus when
// block is shorter than FanCoilStatusLength.
func (p FanCoilProfile) Decode(block []byte) (FanCoilState, error) {
	if err := p.layout.check(block); err != nil {
		return FanCoilState{}, err
	}

	s := FanCoilState{
		KeyLock:         fcKeyLock.Int(block),
		KeyLockType:     fcKeyLockType.Int(block),
		Valve:           fcValve.Int(block),
		Power:           fcPower.Int(block),
		OperationMode:   fcOperationMode.Int(block),
		FanMode:         fcFanMode.Int(block),
		RoomTemp:        fcRoomTemp.Int(block),
		TargetTemp:      fcTargetTemp.Int(block),
		Hysteresis:      fcHysteresis.Int(block),
		Calibration:     fcCalibration.Float(block),
		CoolingMaxTemp:  fcCoolingMaxTemp.Int(block),
		CoolingMinTemp:  fcCoolingMinTemp.Int(block),
		HeatingMaxTemp:  fcHeatingMaxTemp.Int(block),
		HeatingMinTemp:  fcHeatingMinTemp.Int(block),
		FanControl:      fcFanControl.Int(block),
		FrostProtection: fcFrostProtection.Int(block),
		Clock: Clock{
			Hour:    fcClockHour.Int(block),
			Minute:  fcClockMinute.Int(block),
			Second:  fcClockSecond.Int(block),
			Weekday: fcClockWeekday.Int(block),
		},
		Unknown:     fcUnknown.Int(block),
		Schedule:    fcSchedule.Int(block),
		TimeValveOn: fcTimeValveOn.Raw(block),
	}

	var times [4]PeriodTime
	for i, offset := range fanCoilPeriodOffsets {
		enabled, hour, minute := periodFields(fanCoilPeriodNames[i], offset)
		times[i] = PeriodTime{
			Enabled: enabled.Bool(block),
			Hour:    hour.Int(block),
			Minute:  minute.Int(block),
		}
	}
	s.Period1 = FanCoilPeriod{Start: times[0], End: times[1]}
	s.Period2 = FanCoilPeriod{Start: times[2], End: times[3]}

	return s, nil
}

// EncodeLockPower writes the key lock nibble, lock type and power state.
func (FanCoilProfile) EncodeLockPower(s FanCoilState) Command {
	return WriteWord("lock/power", fanCoilLockPowerAddress,
		byte(s.KeyLock<<4|s.KeyLockType), byte(s.Power))
}

// EncodeModeFan writes the operation mode and fan speed.
func (FanCoilProfile) EncodeModeFan(s FanCoilState) Command {
	return WriteWord("mode/fan", fanCoilModeFanAddress, byte(s.OperationMode), byte(s.FanMode))
}

// EncodeTarget writes the target temperature in whole degrees.
func (FanCoilProfile) EncodeTarget(s FanCoilState) Command {
	return WriteWord("target", fanCoilTargetAddress, 0x00, byte(s.TargetTemp))
}

// EncodeOptions writes the 4-word options block: hysteresis, calibration,
// cooling max/min, heating max/min, fan control and frost protection.
func (FanCoilProfile) EncodeOptions(s FanCoilState) Command {
	return WriteBlock("options", fanCoilOptionsAddress, []byte{
		byte(s.Hysteresis),
		byte(EncodeSigned(s.Calibration, 1, FanCoilCalibrationScale)),
		byte(s.CoolingMaxTemp),
		byte(s.CoolingMinTemp),
		byte(s.HeatingMaxTemp),
		byte(s.HeatingMinTemp),
		byte(s.FanControl),
		byte(s.FrostProtection),
	})
}

// EncodeTime sets the device clock.
func (FanCoilProfile) EncodeTime(c Clock) Command {
	return WriteBlock("time", fanCoilTimeAddress, c.bytes())
}

// EncodeWeeklySchedule selects the days the daily schedule applies to.
func (FanCoilProfile) EncodeWeeklySchedule(s FanCoilState) Command {
	return WriteBlock("weekly schedule", fanCoilWeeklyAddress, []byte{0x00, byte(s.Schedule)})
}

// EncodeDailySchedule writes both periods with their enable flags.
func (FanCoilProfile) EncodeDailySchedule(s FanCoilState) Command {
	data := make([]byte, 0, 8)
	for _, t := range []PeriodTime{s.Period1.Start, s.Period1.End, s.Period2.Start, s.Period2.End} {
		data = append(data, PackHour(t.Enabled, t.Hour), byte(t.Minute))
	}
	return WriteBlock("daily schedule", fanCoilDailyAddress, data)
}

// EncodeStatus renders a state back into a status block, the inverse of
// Decode. Fake transports use it to answer status reads.
func (FanCoilProfile) EncodeStatus(s FanCoilState) []byte {
	b := make([]byte, FanCoilStatusLength)
	b[0] = byte(s.KeyLock<<4 | s.KeyLockType&0x03)
	b[1] = byte(s.Valve<<4 | s.Power&0x01)
	b[2] = byte(s.OperationMode)
	b[3] = byte(s.FanMode)
	b[4] = byte(s.RoomTemp)
	b[5] = byte(s.TargetTemp)
	b[6] = byte(s.Hysteresis)
	b[7] = byte(EncodeSigned(s.Calibration, 1, FanCoilCalibrationScale))
	b[8] = byte(s.CoolingMaxTemp)
	b[9] = byte(s.CoolingMinTemp)
	b[10] = byte(s.HeatingMaxTemp)
	b[11] = byte(s.HeatingMinTemp)
	b[12] = byte(s.FanControl)
	b[13] = byte(s.FrostProtection)
	copy(b[14:18], s.Clock.bytes())
	b[18] = byte(s.Unknown)
	b[19] = byte(s.Schedule)
	for i, t := range []PeriodTime{s.Period1.Start, s.Period1.End, s.Period2.Start, s.Period2.End} {
		b[fanCoilPeriodOffsets[i]] = PackHour(t.Enabled, t.Hour)
		b[fanCoilPeriodOffsets[i]+1] = byte(t.Minute)
	}
	binary.BigEndian.PutUint32(b[28:32], s.TimeValveOn)
	return b
}
