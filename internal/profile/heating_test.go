package profile

import (
	"bytes"
	"errors"
	"testing"
)

var heatingStatusBlock = []byte{
	0x01,       // key lock on
	0x51,       // manual in auto, valve on, power on
	0x2B,       // room 21.5
	0x2C,       // target 22.0
	0x31,       // schedule 1234567, auto
	0x02,       // internal + external sensor
	0x2A,       // external max 42
	0x02,       // hysteresis 2
	0x23,       // max 35
	0x05,       // min 5
	0xFF, 0xFD, // calibration -1.5
	0x01,                   // frost protection on
	0x00,                   // poweron off
	0x00,                   // unknown1
	0x30,                   // external 24.0
	0x06, 0x1E, 0x00, 0x01, // 06:30:00 Monday
	0x06, 0x00, 0x08, 0x00, 0x0B, 0x1E, 0x0C, 0x1E, 0x11, 0x00, 0x16, 0x00, // weekday periods
	0x08, 0x00, 0x17, 0x00, // weekend periods
	0x2A, 0x20, 0x2A, 0x20, 0x2C, 0x1E, // weekday temps
	0x2C, 0x1E, // weekend temps
	0x00, 0x00, // unknown2, unknown3
}

func TestHeatingDecode(t *testing.T) {
	if len(heatingStatusBlock) != HeatingStatusLength {
		t.Fatalf("fixture has %d bytes, want %d", len(heatingStatusBlock), HeatingStatusLength)
	}

	got, err := Heating.Decode(heatingStatusBlock)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	want := HeatingState{
		KeyLock:         1,
		ManualInAuto:    1,
		Valve:           1,
		Power:           1,
		RoomTemp:        21.5,
		TargetTemp:      22.0,
		OperationMode:   HeatingModeAuto,
		Schedule:        HeatingSchedule7,
		Sensor:          SensorInternalExternal,
		ExternalMaxTemp: 42,
		Hysteresis:      2,
		MaxTemp:         35,
		MinTemp:         5,
		Calibration:     -1.5,
		FrostProtection: On,
		PowerOn:         Off,
		ExternalTemp:    24.0,
		Clock:           Clock{Hour: 6, Minute: 30, Second: 0, Weekday: 1},
		Weekday: [HeatingWeekdayPeriods]HeatingPeriod{
			{Hour: 6, Minute: 0, Temp: 21},
			{Hour: 8, Minute: 0, Temp: 16},
			{Hour: 11, Minute: 30, Temp: 21},
			{Hour: 12, Minute: 30, Temp: 16},
			{Hour: 17, Minute: 0, Temp: 22},
			{Hour: 22, Minute: 0, Temp: 15},
		},
		Weekend: [HeatingWeekendPeriods]HeatingPeriod{
			{Hour: 8, Minute: 0, Temp: 22},
			{Hour: 23, Minute: 0, Temp: 15},
		},
	}

	if got != want {
		t.Errorf("Decode() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestHeatingDecodeTruncated(t *testing.T) {
	_, err := Heating.Decode(heatingStatusBlock[:20])
	if !errors.Is(err, ErrTruncatedStatus) {
		t.Errorf("Decode() error = %v, want ErrTruncatedStatus", err)
	}
}

func TestHeatingEncodeStatusRoundTrip(t *testing.T) {
	state, err := Heating.Decode(heatingStatusBlock)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got := Heating.EncodeStatus(state); !bytes.Equal(got, heatingStatusBlock) {
		t.Errorf("EncodeStatus() = % x, want % x", got, heatingStatusBlock)
	}
}

func TestHeatingCommands(t *testing.T) {
	s, err := Heating.Decode(heatingStatusBlock)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	s.KeyLock = Off
	s.TargetTemp = 22.5
	s.OperationMode = HeatingModeManual
	s.Schedule = HeatingSchedule5Plus2
	s.Sensor = SensorExternal

	tests := []struct {
		name string
		cmd  Command
		want []byte
	}{
		{
			name: "lock/power",
			cmd:  Heating.EncodeLockPower(s),
			want: []byte{0x01, 0x06, 0x00, 0x00, 0x00, 0x01},
		},
		{
			name: "target",
			cmd:  Heating.EncodeTarget(s),
			want: []byte{0x01, 0x06, 0x00, 0x01, 0x00, 0x2D},
		},
		{
			name: "mode/sensor",
			cmd:  Heating.EncodeModeSensor(s),
			want: []byte{0x01, 0x06, 0x00, 0x02, 0x10, 0x01},
		},
		{
			name: "options",
			cmd:  Heating.EncodeOptions(s),
			want: []byte{0x01, 0x10, 0x00, 0x03, 0x00, 0x04, 0x08,
				0x2A, 0x02, 0x23, 0x05, 0xFF, 0xFD, 0x01, 0x00},
		},
		{
			name: "time at address 8",
			cmd:  Heating.EncodeTime(Clock{Hour: 23, Minute: 59, Second: 58, Weekday: 7}),
			want: []byte{0x01, 0x10, 0x00, 0x08, 0x00, 0x02, 0x04, 0x17, 0x3B, 0x3A, 0x07},
		},
		{
			name: "status read",
			cmd:  Heating.StatusCommand(),
			want: []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x17},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Payload(); !bytes.Equal(got, tt.want) {
				t.Errorf("Payload() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestHeatingDailySchedule(t *testing.T) {
	s, err := Heating.Decode(heatingStatusBlock)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	cmd := Heating.EncodeDailySchedule(s)
	if cmd.Address != 0x000A || cmd.Words != 12 {
		t.Errorf("daily schedule at 0x%04x x%d, want 0x000a x12", cmd.Address, cmd.Words)
	}

	payload := cmd.Payload()
	header := []byte{0x01, 0x10, 0x00, 0x0A, 0x00, 0x0C, 0x18}
	if !bytes.Equal(payload[:7], header) {
		t.Errorf("header = % x, want % x", payload[:7], header)
	}
	// Schedule data mirrors status bytes 20..43.
	if !bytes.Equal(payload[7:], heatingStatusBlock[20:44]) {
		t.Errorf("data = % x, want % x", payload[7:], heatingStatusBlock[20:44])
	}
}
