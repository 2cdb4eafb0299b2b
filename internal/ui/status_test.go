package ui

import (
	"strings"
	"testing"

	"github.com/muurk/hysenctl/internal/profile"
)

func TestRenderHeatingStatus(t *testing.T) {
	s := profile.DefaultHeatingState()
	s.RoomTemp = 21.5
	s.TargetTemp = 22.5
	s.Valve = 1
	s.OperationMode = profile.HeatingModeAuto
	s.ManualInAuto = 1
	s.Sensor = profile.SensorExternal
	s.Calibration = -1.5
	s.Weekday[0] = profile.HeatingPeriod{Hour: 6, Minute: 30, Temp: 20}
	s.Weekend[1] = profile.HeatingPeriod{Hour: 22, Minute: 0, Temp: 17.5}

	out := RenderHeatingStatus(s, 80)

	for _, want := range []string{
		"21.5°C",
		"heating",
		"22.5°C",
		"auto (manual override)",
		"external",
		"1234567",
		"5–35°C",
		"-1.5°C",
		"06:30  20.0°C",
		"22:00  17.5°C",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("heating status missing %q\n%s", want, out)
		}
	}
}

func TestRenderFanCoilStatus(t *testing.T) {
	tests := []struct {
		name   string
		modify func(s *profile.FanCoilState)
		want   []string
		absent []string
	}{
		{
			name: "fan mode hides target",
			modify: func(s *profile.FanCoilState) {
				s.RoomTemp = 24
			},
			want:   []string{"24°C", "n/a in fan mode", "fan", "low", "today", "08:00", "17:30"},
			absent: []string{"22°C"},
		},
		{
			name: "cooling",
			modify: func(s *profile.FanCoilState) {
				s.OperationMode = profile.ModeCool
				s.FanMode = profile.FanAuto
				s.CoolingMinTemp = 18
				s.Hysteresis = profile.HysteresisHalve
				s.KeyLock = 1
				s.KeyLockType = profile.KeyAllLocked
			},
			want: []string{"22°C", "cool", "auto", "18–40°C", "0.5°C", "all locked"},
		},
		{
			name: "unknown enum",
			modify: func(s *profile.FanCoilState) {
				s.FanMode = 9
			},
			want: []string{"unknown (9)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := profile.DefaultFanCoilState()
			tt.modify(&s)
			out := RenderFanCoilStatus(s, 80)

			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("status missing %q\n%s", want, out)
				}
			}
			for _, absent := range tt.absent {
				if strings.Contains(out, absent) {
					t.Errorf("status contains %q\n%s", absent, out)
				}
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	heating := profile.DefaultHeatingState()
	fanCoil := profile.DefaultFanCoilState()

	tests := []struct {
		name    string
		state   interface{}
		wantErr bool
	}{
		{"heating value", heating, false},
		{"heating pointer", &heating, false},
		{"fancoil value", fanCoil, false},
		{"fancoil pointer", &fanCoil, false},
		{"unsupported", "status", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := RenderStatus(tt.state, 70)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RenderStatus() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !strings.Contains(out, "Temperatures") {
				t.Errorf("RenderStatus() = %q", out)
			}
		})
	}
}
