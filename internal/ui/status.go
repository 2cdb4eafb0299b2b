package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/hysenctl/internal/profile"
)

var (
	heatingModeNames = map[int]string{
		profile.HeatingModeManual: "manual",
		profile.HeatingModeAuto:   "auto",
	}
	heatingScheduleNames = map[int]string{
		profile.HeatingSchedule5Plus2: "12345,67",
		profile.HeatingSchedule6Plus1: "123456,7",
		profile.HeatingSchedule7:      "1234567",
	}
	sensorNames = map[int]string{
		profile.SensorInternal:         "internal",
		profile.SensorExternal:         "external",
		profile.SensorInternalExternal: "internal + external",
	}
	fanCoilModeNames = map[int]string{
		profile.ModeFan:  "fan",
		profile.ModeCool: "cool",
		profile.ModeHeat: "heat",
	}
	fanSpeedNames = map[int]string{
		profile.FanLow:    "low",
		profile.FanMedium: "medium",
		profile.FanHigh:   "high",
		profile.FanAuto:   "auto",
	}
	keyLockTypeNames = map[int]string{
		profile.KeyAllUnlocked:   "unlocked",
		profile.KeyPowerUnlocked: "power key unlocked",
		profile.KeyAllLocked:     "all locked",
	}
	fanCoilScheduleNames = map[int]string{
		profile.ScheduleToday:   "today",
		profile.Schedule12345:   "12345",
		profile.Schedule123456:  "123456",
		profile.Schedule1234567: "1234567",
	}
)

// label looks up v in names, falling back to the raw number
func label(names map[int]string, v int) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%d)", v)
}

func celsius(v float64) string {
	return fmt.Sprintf("%.1f°C", v)
}

func hhmm(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// RenderStatus renders a profile.HeatingState or profile.FanCoilState.
func RenderStatus(state interface{}, width int) (string, error) {
	switch s := state.(type) {
	case profile.HeatingState:
		return RenderHeatingStatus(s, width), nil
	case *profile.HeatingState:
		return RenderHeatingStatus(*s, width), nil
	case profile.FanCoilState:
		return RenderFanCoilStatus(s, width), nil
	case *profile.FanCoilState:
		return RenderFanCoilStatus(*s, width), nil
	default:
		return "", fmt.Errorf("cannot render status of type %T", state)
	}
}

// RenderHeatingStatus renders the status of a heating controller.
func RenderHeatingStatus(s profile.HeatingState, width int) string {
	room := BigTempStyle.Render(celsius(s.RoomTemp))
	if s.Valve != 0 {
		room += "  " + HeatStyle.Render("heating")
	}

	mode := label(heatingModeNames, s.OperationMode)
	if s.OperationMode == profile.HeatingModeAuto && s.ManualInAuto != 0 {
		mode += " (manual override)"
	}

	sections := []string{
		section("Temperatures",
			Detail{"Room", room},
			Detail{"Target", celsius(s.TargetTemp)},
			Detail{"External", celsius(s.ExternalTemp)},
		),
		section("Controls",
			Detail{"Power", OnOff(s.Power)},
			Detail{"Key lock", OnOff(s.KeyLock)},
			Detail{"Mode", mode},
			Detail{"Sensor", label(sensorNames, s.Sensor)},
			Detail{"Schedule", label(heatingScheduleNames, s.Schedule)},
		),
		section("Limits",
			Detail{"Target range", fmt.Sprintf("%d–%d°C", s.MinTemp, s.MaxTemp)},
			Detail{"External max", fmt.Sprintf("%d°C", s.ExternalMaxTemp)},
			Detail{"Hysteresis", fmt.Sprintf("%d°C", s.Hysteresis)},
			Detail{"Calibration", fmt.Sprintf("%+.1f°C", s.Calibration)},
			Detail{"Frost protect", OnOff(s.FrostProtection)},
			Detail{"Power-on memory", OnOff(s.PowerOn)},
		),
		heatingScheduleSection(s),
	}

	return box(width, sections)
}

func heatingScheduleSection(s profile.HeatingState) string {
	var rows []Detail
	for i, p := range s.Weekday {
		rows = append(rows, Detail{fmt.Sprintf("Weekday %d", i+1), hhmm(p.Hour, p.Minute) + "  " + celsius(p.Temp)})
	}
	for i, p := range s.Weekend {
		rows = append(rows, Detail{fmt.Sprintf("Weekend %d", i+1), hhmm(p.Hour, p.Minute) + "  " + celsius(p.Temp)})
	}
	return section("Schedule", rows...)
}

// RenderFanCoilStatus renders the status of a fan coil controller.
func RenderFanCoilStatus(s profile.FanCoilState, width int) string {
	mode := label(fanCoilModeNames, s.OperationMode)
	switch s.OperationMode {
	case profile.ModeHeat:
		mode = HeatStyle.Render(mode)
	case profile.ModeCool:
		mode = CoolStyle.Render(mode)
	}

	target := "n/a in fan mode"
	if _, _, ok := s.TargetBand(); ok {
		target = fmt.Sprintf("%d°C", s.TargetTemp)
	}

	hysteresis := "1.0°C"
	if s.Hysteresis == profile.HysteresisHalve {
		hysteresis = "0.5°C"
	}

	// The device stores 0 for fan control on.
	fanControl := OnOff(1)
	if s.FanControl == profile.FanControlOff {
		fanControl = OnOff(0)
	}

	sections := []string{
		section("Temperatures",
			Detail{"Room", BigTempStyle.Render(fmt.Sprintf("%d°C", s.RoomTemp))},
			Detail{"Target", target},
		),
		section("Controls",
			Detail{"Power", OnOff(s.Power)},
			Detail{"Key lock", OnOff(s.KeyLock) + "  " + OffStyle.Render(label(keyLockTypeNames, s.KeyLockType))},
			Detail{"Mode", mode},
			Detail{"Fan", label(fanSpeedNames, s.FanMode)},
			Detail{"Valve", OnOff(s.Valve)},
			Detail{"Schedule", label(fanCoilScheduleNames, s.Schedule)},
		),
		section("Limits",
			Detail{"Cooling range", fmt.Sprintf("%d–%d°C", s.CoolingMinTemp, s.CoolingMaxTemp)},
			Detail{"Heating range", fmt.Sprintf("%d–%d°C", s.HeatingMinTemp, s.HeatingMaxTemp)},
			Detail{"Hysteresis", hysteresis},
			Detail{"Calibration", fmt.Sprintf("%+.1f°C", s.Calibration)},
			Detail{"Fan control", fanControl},
			Detail{"Frost protect", OnOff(s.FrostProtection)},
			Detail{"Valve on time", fmt.Sprint(s.TimeValveOn)},
		),
		section("Schedule",
			Detail{"Period 1", fanCoilPeriod(s.Period1)},
			Detail{"Period 2", fanCoilPeriod(s.Period2)},
		),
	}

	return box(width, sections)
}

func fanCoilPeriod(p profile.FanCoilPeriod) string {
	edge := func(t profile.PeriodTime) string {
		if t.Enabled {
			return OnStyle.Render(hhmm(t.Hour, t.Minute))
		}
		return OffStyle.Render(hhmm(t.Hour, t.Minute))
	}
	return edge(p.Start) + " – " + edge(p.End)
}

func section(title string, rows ...Detail) string {
	lines := []string{SectionTitleStyle.Render(title)}
	for _, r := range rows {
		lines = append(lines, ResultKeyStyle.Render("   "+r.Key)+" "+ResultValueStyle.Render(r.Value))
	}
	return strings.Join(lines, "\n")
}

func box(width int, sections []string) string {
	width = clampWidth(width)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width-2).
		Padding(0, 1).
		Render(strings.Join(sections, "\n\n"))
}
