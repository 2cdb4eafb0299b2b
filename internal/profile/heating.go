package profile

import (
	"encoding/binary"
	"fmt"
)

// Heating register map (HY03 floor heating controller)
const (
	HeatingStatusAddress = 0x0000
	HeatingStatusWords   = 0x17
	HeatingStatusLength  = HeatingStatusWords * 2

	heatingLockPowerAddress  = 0x0000
	heatingTargetAddress     = 0x0001
	heatingModeSensorAddress = 0x0002
	heatingOptionsAddress    = 0x0003
	heatingTimeAddress       = 0x0008
	heatingDailyAddress      = 0x000A
)

// Heating limits
const (
	HeatingMaxTemp          = 99
	HeatingMinTemp          = 5
	HeatingHysteresisMin    = 1
	HeatingHysteresisMax    = 9
	HeatingCalibrationMin   = -5.0
	HeatingCalibrationMax   = 5.0
	HeatingCalibrationScale = 2
	HeatingTempScale        = 2
)

// Heating operation modes
const (
	HeatingModeManual = 0
	HeatingModeAuto   = 1
)

// Heating weekly schedules: weekdays plus weekend split.
const (
	HeatingSchedule5Plus2 = 1 // 12345,67
	HeatingSchedule6Plus1 = 2 // 123456,7
	HeatingSchedule7      = 3 // 1234567
)

// Heating temperature sensors
const (
	SensorInternal         = 0
	SensorExternal         = 1
	SensorInternalExternal = 2
)

// Number of schedule periods per day type
const (
	HeatingWeekdayPeriods = 6
	HeatingWeekendPeriods = 2
)

// HeatingPeriod is a schedule switch point with its target temperature.
type HeatingPeriod struct {
	Hour   int     `json:"hour" yaml:"hour"`
	Minute int     `json:"minute" yaml:"minute"`
	Temp   float64 `json:"temp" yaml:"temp"`
}

// Minutes returns the switch point as minutes since midnight.
func (p HeatingPeriod) Minutes() int {
	return Minutes(p.Hour, p.Minute)
}

// HeatingState is the decoded status of a heating controller.
type HeatingState struct {
	KeyLock         int                                  `json:"key_lock" yaml:"key_lock"`
	ManualInAuto    int                                  `json:"manual_in_auto" yaml:"manual_in_auto"`
	Valve           int                                  `json:"valve" yaml:"valve"`
	Power           int                                  `json:"power" yaml:"power"`
	RoomTemp        float64                              `json:"room_temp" yaml:"room_temp"`
	TargetTemp      float64                              `json:"target_temp" yaml:"target_temp"`
	OperationMode   int                                  `json:"operation_mode" yaml:"operation_mode"`
	Schedule        int                                  `json:"schedule" yaml:"schedule"`
	Sensor          int                                  `json:"sensor" yaml:"sensor"`
	ExternalMaxTemp int                                  `json:"external_max_temp" yaml:"external_max_temp"`
	Hysteresis      int                                  `json:"hysteresis" yaml:"hysteresis"`
	MaxTemp         int                                  `json:"max_temp" yaml:"max_temp"`
	MinTemp         int                                  `json:"min_temp" yaml:"min_temp"`
	Calibration     float64                              `json:"calibration" yaml:"calibration"`
	FrostProtection int                                  `json:"frost_protection" yaml:"frost_protection"`
	PowerOn         int                                  `json:"poweron" yaml:"poweron"`
	Unknown1        int                                  `json:"unknown1" yaml:"unknown1"`
	ExternalTemp    float64                              `json:"external_temp" yaml:"external_temp"`
	Clock           Clock                                `json:"clock" yaml:"clock"`
	Weekday         [HeatingWeekdayPeriods]HeatingPeriod `json:"weekday" yaml:"weekday"`
	Weekend         [HeatingWeekendPeriods]HeatingPeriod `json:"weekend" yaml:"weekend"`
	Unknown2        int                                  `json:"unknown2" yaml:"unknown2"`
	Unknown3        int                                  `json:"unknown3" yaml:"unknown3"`
}

// DefaultHeatingState returns the power-on state used until the first read.
func DefaultHeatingState() HeatingState {
	return HeatingState{
		KeyLock:         Off,
		Valve:           Off,
		Power:           On,
		ManualInAuto:    Off,
		TargetTemp:      22,
		OperationMode:   HeatingModeManual,
		Schedule:        HeatingSchedule7,
		Sensor:          SensorInternal,
		ExternalMaxTemp: 42,
		Hysteresis:      2,
		MaxTemp:         35,
		MinTemp:         5,
		Calibration:     0.0,
		FrostProtection: Off,
		PowerOn:         Off,
	}
}

// Offsets index the register data following the 01 03 count header.
var (
	htKeyLock         = Bit("key_lock", 0, 0)
	htManualInAuto    = Bit("manual_in_auto", 1, 6)
	htValve           = Bit("valve", 1, 4)
	htPower           = Bit("power", 1, 0)
	htRoomTemp        = Field{Name: "room_temp", Offset: 2, Scale: HeatingTempScale}
	htTargetTemp      = Field{Name: "target_temp", Offset: 3, Scale: HeatingTempScale}
	htOperationMode   = Bit("operation_mode", 4, 0)
	htSchedule        = Field{Name: "schedule", Offset: 4, Shift: 4, Mask: 0x0F}
	htSensor          = Byte("sensor", 5)
	htExternalMaxTemp = Byte("external_max_temp", 6)
	htHysteresis      = Byte("hysteresis", 7)
	htMaxTemp         = Byte("max_temp", 8)
	htMinTemp         = Byte("min_temp", 9)
	htCalibration     = Field{Name: "calibration", Offset: 10, Width: 2, Signed: true, Scale: HeatingCalibrationScale}
	htFrostProtection = Byte("frost_protection", 12)
	htPowerOn         = Byte("poweron", 13)
	htUnknown1        = Byte("unknown1", 14)
	htExternalTemp    = Field{Name: "external_temp", Offset: 15, Scale: HeatingTempScale}
	htClockHour       = Byte("clock_hour", 16)
	htClockMinute     = Byte("clock_minute", 17)
	htClockSecond     = Byte("clock_second", 18)
	htClockWeekday    = Byte("clock_weekday", 19)
	htUnknown2        = Byte("unknown2", 44)
	htUnknown3        = Byte("unknown3", 45)
)

// Schedule times occupy 20..35 as (hour, minute) pairs, weekday periods
// first. Temperatures follow at 36..43 in the same order.
const (
	heatingPeriodTimeOffset = 20
	heatingPeriodTempOffset = 36
	heatingPeriodCount      = HeatingWeekdayPeriods + HeatingWeekendPeriods
)

func heatingPeriodName(i int) string {
	if i < HeatingWeekdayPeriods {
		return fmt.Sprintf("period%d", i+1)
	}
	return fmt.Sprintf("we_period%d", i-HeatingWeekdayPeriods+1)
}

func heatingPeriodFields(i int) (hour, minute, temp Field) {
	name := heatingPeriodName(i)
	return Byte(name+"_hour", heatingPeriodTimeOffset+2*i),
		Byte(name+"_min", heatingPeriodTimeOffset+2*i+1),
		Field{Name: name + "_temp", Offset: heatingPeriodTempOffset + i, Scale: HeatingTempScale}
}

func heatingLayout() Layout {
	fields := []Field{
		htKeyLock, htManualInAuto, htValve, htPower, htRoomTemp, htTargetTemp,
		htOperationMode, htSchedule, htSensor, htExternalMaxTemp, htHysteresis,
		htMaxTemp, htMinTemp, htCalibration, htFrostProtection, htPowerOn,
		htUnknown1, htExternalTemp,
		htClockHour, htClockMinute, htClockSecond, htClockWeekday,
	}
	for i := 0; i < heatingPeriodCount; i++ {
		hour, minute, temp := heatingPeriodFields(i)
		fields = append(fields, hour, minute, temp)
	}
	fields = append(fields, htUnknown2, htUnknown3)
	return Layout{Name: string(KindHeating), Length: HeatingStatusLength, Fields: fields}
}

// HeatingProfile encodes and decodes the heating register map.
type HeatingProfile struct {
	layout Layout
}

// Heating is the HY03 profile.
var Heating = HeatingProfile{layout: heatingLayout()}

var _ Profile = Heating

// Kind returns KindHeating
func (HeatingProfile) Kind() Kind { return KindHeating }

// Layout returns the status field table
func (p HeatingProfile) Layout() Layout { return p.layout }

// StatusCommand reads the 23-word status block
func (HeatingProfile) StatusCommand() Command {
	return ReadBlock("status", HeatingStatusAddress, HeatingStatusWords)
}

// Decode parses a status block. It fails with ErrTruncatedStatus when
// block is shorter than HeatingStatusLength.
func (p HeatingProfile) Decode(block []byte) (HeatingState, error) {
	if err := p.layout.check(block); err != nil {
		return HeatingState{}, err
	}

	s := HeatingState{
		KeyLock:         htKeyLock.Int(block),
		ManualInAuto:    htManualInAuto.Int(block),
		Valve:           htValve.Int(block),
		Power:           htPower.Int(block),
		RoomTemp:        htRoomTemp.Float(block),
		TargetTemp:      htTargetTemp.Float(block),
		OperationMode:   htOperationMode.Int(block),
		Schedule:        htSchedule.Int(block),
		Sensor:          htSensor.Int(block),
		ExternalMaxTemp: htExternalMaxTemp.Int(block),
		Hysteresis:      htHysteresis.Int(block),
		MaxTemp:         htMaxTemp.Int(block),
		MinTemp:         htMinTemp.Int(block),
		Calibration:     htCalibration.Float(block),
		FrostProtection: htFrostProtection.Int(block),
		PowerOn:         htPowerOn.Int(block),
		Unknown1:        htUnknown1.Int(block),
		ExternalTemp:    htExternalTemp.Float(block),
		Clock: Clock{
			Hour:    htClockHour.Int(block),
			Minute:  htClockMinute.Int(block),
			Second:  htClockSecond.Int(block),
			Weekday: htClockWeekday.Int(block),
		},
		Unknown2: htUnknown2.Int(block),
		Unknown3: htUnknown3.Int(block),
	}

	for i := 0; i < heatingPeriodCount; i++ {
		hour, minute, temp := heatingPeriodFields(i)
		period := HeatingPeriod{Hour: hour.Int(block), Minute: minute.Int(block), Temp: temp.Float(block)}
		if i < HeatingWeekdayPeriods {
			s.Weekday[i] = period
		} else {
			s.Weekend[i-HeatingWeekdayPeriods] = period
		}
	}

	return s, nil
}

// Periods returns weekday then weekend periods in register order.
func (s HeatingState) Periods() []HeatingPeriod {
	periods := make([]HeatingPeriod, 0, heatingPeriodCount)
	periods = append(periods, s.Weekday[:]...)
	return append(periods, s.Weekend[:]...)
}

// EncodeLockPower writes the key lock and power state.
func (HeatingProfile) EncodeLockPower(s HeatingState) Command {
	return WriteWord("lock/power", heatingLockPowerAddress, byte(s.KeyLock), byte(s.Power))
}

// EncodeTarget writes the target temperature in half degrees.
func (HeatingProfile) EncodeTarget(s HeatingState) Command {
	return WriteWord("target", heatingTargetAddress, 0x00, byte(ScaleToInt(s.TargetTemp, HeatingTempScale)))
}

// EncodeModeSensor writes the schedule/mode nibbles and the sensor selection.
func (HeatingProfile) EncodeModeSensor(s HeatingState) Command {
	return WriteWord("mode/sensor", heatingModeSensorAddress,
		byte(s.Schedule<<4|s.OperationMode&0x01), byte(s.Sensor))
}

// EncodeOptions writes the 4-word options block.
func (HeatingProfile) EncodeOptions(s HeatingState) Command {
	cal := EncodeSigned(s.Calibration, 2, HeatingCalibrationScale)
	return WriteBlock("options", heatingOptionsAddress, []byte{
		byte(s.ExternalMaxTemp),
		byte(s.Hysteresis),
		byte(s.MaxTemp),
		byte(s.MinTemp),
		byte(cal >> 8),
		byte(cal),
		byte(s.FrostProtection),
		byte(s.PowerOn),
	})
}

// EncodeTime sets the device clock.
func (HeatingProfile) EncodeTime(c Clock) Command {
	return WriteBlock("time", heatingTimeAddress, c.bytes())
}

// EncodeDailySchedule writes all eight switch points and their temperatures.
func (HeatingProfile) EncodeDailySchedule(s HeatingState) Command {
	periods := s.Periods()
	data := make([]byte, 0, 3*heatingPeriodCount)
	for _, p := range periods {
		data = append(data, byte(p.Hour), byte(p.Minute))
	}
	for _, p := range periods {
		data = append(data, byte(ScaleToInt(p.Temp, HeatingTempScale)))
	}
	return WriteBlock("daily schedule", heatingDailyAddress, data)
}

// EncodeStatus renders a state back into a status block, the inverse of
// Decode. Fake transports use it to answer status reads.
func (HeatingProfile) EncodeStatus(s HeatingState) []byte {
	b := make([]byte, HeatingStatusLength)
	b[0] = byte(s.KeyLock & 0x01)
	b[1] = byte(s.ManualInAuto<<6 | s.Valve<<4 | s.Power&0x01)
	b[2] = byte(ScaleToInt(s.RoomTemp, HeatingTempScale))
	b[3] = byte(ScaleToInt(s.TargetTemp, HeatingTempScale))
	b[4] = byte(s.Schedule<<4 | s.OperationMode&0x01)
	b[5] = byte(s.Sensor)
	b[6] = byte(s.ExternalMaxTemp)
	b[7] = byte(s.Hysteresis)
	b[8] = byte(s.MaxTemp)
	b[9] = byte(s.MinTemp)
	binary.BigEndian.PutUint16(b[10:12], uint16(EncodeSigned(s.Calibration, 2, HeatingCalibrationScale)))
	b[12] = byte(s.FrostProtection)
	b[13] = byte(s.PowerOn)
	b[14] = byte(s.Unknown1)
	b[15] = byte(ScaleToInt(s.ExternalTemp, HeatingTempScale))
	copy(b[16:20], s.Clock.bytes())
	for i, p := range s.Periods() {
		b[heatingPeriodTimeOffset+2*i] = byte(p.Hour)
		b[heatingPeriodTimeOffset+2*i+1] = byte(p.Minute)
		b[heatingPeriodTempOffset+i] = byte(ScaleToInt(p.Temp, HeatingTempScale))
	}
	b[44] = byte(s.Unknown2)
	b[45] = byte(s.Unknown3)
	return b
}
