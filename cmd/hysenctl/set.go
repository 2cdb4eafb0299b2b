package main

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/hysenctl/internal/profile"
	"github.com/muurk/hysenctl/internal/thermostat"
	"github.com/muurk/hysenctl/internal/ui"
)

// setter applies one "set <field> <value>" command
type setter struct {
	help  string
	apply func(d thermostat.Device, arg string) error
}

// Named values accepted in place of numbers
var (
	onOffNames = map[string]int{"off": profile.Off, "on": profile.On}

	heatingModeNames = map[string]int{
		"manual": profile.HeatingModeManual,
		"auto":   profile.HeatingModeAuto,
	}
	heatingScheduleNames = map[string]int{
		"12345,67": profile.HeatingSchedule5Plus2,
		"123456,7": profile.HeatingSchedule6Plus1,
		"1234567":  profile.HeatingSchedule7,
	}
	sensorNames = map[string]int{
		"internal": profile.SensorInternal,
		"external": profile.SensorExternal,
		"both":     profile.SensorInternalExternal,
	}
	keyLockTypeNames = map[string]int{
		"unlocked": profile.KeyAllUnlocked,
		"power":    profile.KeyPowerUnlocked,
		"locked":   profile.KeyAllLocked,
	}
	fanCoilModeNames = map[string]int{
		"fan":  profile.ModeFan,
		"cool": profile.ModeCool,
		"heat": profile.ModeHeat,
	}
	fanSpeedNames = map[string]int{
		"low":    profile.FanLow,
		"medium": profile.FanMedium,
		"high":   profile.FanHigh,
		"auto":   profile.FanAuto,
	}
	hysteresisNames = map[string]int{
		"halve": profile.HysteresisHalve,
		"whole": profile.HysteresisWhole,
	}
	fanControlNames = map[string]int{
		"on":  profile.FanControlOn,
		"off": profile.FanControlOff,
	}
	fanCoilScheduleNames = map[string]int{
		"today":   profile.ScheduleToday,
		"12345":   profile.Schedule12345,
		"123456":  profile.Schedule123456,
		"1234567": profile.Schedule1234567,
	}
)

var heatingSetters = map[string]setter{
	"power":             heatingInt("0/1 or off/on", onOffNames, (*thermostat.HeatingDevice).SetPower),
	"key_lock":          heatingInt("0/1 or off/on", onOffNames, (*thermostat.HeatingDevice).SetKeyLock),
	"target_temp":       heatingFloat("°C in 0.5 steps, within min_temp..max_temp", (*thermostat.HeatingDevice).SetTargetTemp),
	"sensor":            heatingInt("internal, external, both", sensorNames, (*thermostat.HeatingDevice).SetSensor),
	"mode":              heatingInt("manual, auto", heatingModeNames, (*thermostat.HeatingDevice).SetOperationMode),
	"schedule":          heatingInt("12345,67 / 123456,7 / 1234567", heatingScheduleNames, (*thermostat.HeatingDevice).SetWeeklySchedule),
	"external_max_temp": heatingInt("°C, 5-99", nil, (*thermostat.HeatingDevice).SetExternalMaxTemp),
	"hysteresis":        heatingInt("°C, 1-9", nil, (*thermostat.HeatingDevice).SetHysteresis),
	"max_temp":          heatingInt("°C, 5-99, not below target or min_temp", nil, (*thermostat.HeatingDevice).SetMaxTemp),
	"min_temp":          heatingInt("°C, 5-99, not above target or max_temp", nil, (*thermostat.HeatingDevice).SetMinTemp),
	"calibration":       heatingFloat("°C, -5.0..5.0 in 0.5 steps", (*thermostat.HeatingDevice).SetCalibration),
	"frost_protection":  heatingInt("0/1 or off/on", onOffNames, (*thermostat.HeatingDevice).SetFrostProtection),
	"poweron":           heatingInt("0/1 or off/on (restore power state after outage)", onOffNames, (*thermostat.HeatingDevice).SetPowerOn),
}

var fanCoilSetters = map[string]setter{
	"power":            fanCoilInt("0/1 or off/on", onOffNames, (*thermostat.FanCoilDevice).SetPower),
	"key_lock":         fanCoilInt("unlocked, power, locked", keyLockTypeNames, (*thermostat.FanCoilDevice).SetKeyLock),
	"mode":             fanCoilInt("fan, cool, heat", fanCoilModeNames, (*thermostat.FanCoilDevice).SetOperationMode),
	"fan":              fanCoilInt("low, medium, high, auto (auto not in fan mode)", fanSpeedNames, (*thermostat.FanCoilDevice).SetFanMode),
	"target_temp":      fanCoilInt("°C within the active mode's min..max", nil, (*thermostat.FanCoilDevice).SetTargetTemp),
	"hysteresis":       fanCoilInt("halve (0.5°C), whole (1°C)", hysteresisNames, (*thermostat.FanCoilDevice).SetHysteresis),
	"calibration":      fanCoilFloat("°C, -5.0..5.0 in 0.1 steps", (*thermostat.FanCoilDevice).SetCalibration),
	"cooling_max_temp": fanCoilInt("°C, 10-40", nil, (*thermostat.FanCoilDevice).SetCoolingMaxTemp),
	"cooling_min_temp": fanCoilInt("°C, 10-40", nil, (*thermostat.FanCoilDevice).SetCoolingMinTemp),
	"heating_max_temp": fanCoilInt("°C, 10-40", nil, (*thermostat.FanCoilDevice).SetHeatingMaxTemp),
	"heating_min_temp": fanCoilInt("°C, 10-40", nil, (*thermostat.FanCoilDevice).SetHeatingMinTemp),
	"fan_control":      fanCoilInt("on, off", fanControlNames, (*thermostat.FanCoilDevice).SetFanControl),
	"frost_protection": fanCoilInt("0/1 or off/on", onOffNames, (*thermostat.FanCoilDevice).SetFrostProtection),
	"schedule":         fanCoilInt("today, 12345, 123456, 1234567", fanCoilScheduleNames, (*thermostat.FanCoilDevice).SetWeeklySchedule),
}

// argError is a malformed command-line value. It is raised before anything
// is sent to the device.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func argErrorf(format string, args ...interface{}) error {
	return &argError{msg: fmt.Sprintf(format, args...)}
}

// hints returns troubleshooting lines for errors raised by a command
func hints(err error) []string {
	var aErr *argError
	if errors.As(err, &aErr) {
		return []string{
			"Nothing was sent to the device.",
			"Run the command with --help for accepted values",
		}
	}
	return thermostat.TroubleshootingHints(err)
}

// parseChoice accepts a name from names (case-insensitive) or a number
func parseChoice(arg string, names map[string]int) (int, error) {
	if v, ok := names[strings.ToLower(strings.TrimSpace(arg))]; ok {
		return v, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		if len(names) == 0 {
			return 0, argErrorf("invalid number %q", arg)
		}
		return 0, argErrorf("invalid value %q (use a number or one of %s)", arg, strings.Join(sortedKeys(names), ", "))
	}
	return v, nil
}

func parseFloat(arg string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, argErrorf("invalid number %q", arg)
	}
	return v, nil
}

func heatingInt(help string, names map[string]int, set func(*thermostat.HeatingDevice, int) error) setter {
	return setter{help: help, apply: func(d thermostat.Device, arg string) error {
		v, err := parseChoice(arg, names)
		if err != nil {
			return err
		}
		return set(d.(*thermostat.HeatingDevice), v)
	}}
}

func heatingFloat(help string, set func(*thermostat.HeatingDevice, float64) error) setter {
	return setter{help: help, apply: func(d thermostat.Device, arg string) error {
		v, err := parseFloat(arg)
		if err != nil {
			return err
		}
		return set(d.(*thermostat.HeatingDevice), v)
	}}
}

func fanCoilInt(help string, names map[string]int, set func(*thermostat.FanCoilDevice, int) error) setter {
	return setter{help: help, apply: func(d thermostat.Device, arg string) error {
		v, err := parseChoice(arg, names)
		if err != nil {
			return err
		}
		return set(d.(*thermostat.FanCoilDevice), v)
	}}
}

func fanCoilFloat(help string, set func(*thermostat.FanCoilDevice, float64) error) setter {
	return setter{help: help, apply: func(d thermostat.Device, arg string) error {
		v, err := parseFloat(arg)
		if err != nil {
			return err
		}
		return set(d.(*thermostat.FanCoilDevice), v)
	}}
}

// settersFor returns the setter table of a profile
func settersFor(kind profile.Kind) map[string]setter {
	if kind == profile.KindFanCoil {
		return fanCoilSetters
	}
	return heatingSetters
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// fieldsHelp lists the settable fields of both profiles
func fieldsHelp() string {
	var b strings.Builder
	for _, p := range []struct {
		kind    profile.Kind
		setters map[string]setter
	}{
		{profile.KindHeating, heatingSetters},
		{profile.KindFanCoil, fanCoilSetters},
	} {
		fmt.Fprintf(&b, "\n%s fields:\n", p.kind)
		for _, name := range sortedKeys(p.setters) {
			fmt.Fprintf(&b, "  %-18s %s\n", name, p.setters[name].help)
		}
	}
	return b.String()
}

// setCmd writes one field
var setCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set a thermostat field",
	Long: `Set one field on the thermostat.

The current status is read first and the new value is checked against it
(ranges, the active mode, min/max limits). Nothing is sent when the check
fails. The write is confirmed by the device echo.
`,
	Example: `  # Heating target of 22.5°C
  hysenctl set target_temp 22.5 --device bathroom

  # Fan coil to cooling with automatic fan
  hysenctl set mode cool --device office
  hysenctl set fan auto --device office`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Long += fieldsHelp()
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	field, value := strings.ToLower(args[0]), args[1]

	return withDevice(cmd, "Set "+field+" failed", func(dev thermostat.Device, t *target) (*ui.Result, error) {
		s, ok := settersFor(dev.Kind())[field]
		if !ok {
			return nil, argErrorf("unknown %s field %q (see 'hysenctl set --help')", dev.Kind(), field)
		}
		if err := s.apply(dev, value); err != nil {
			return nil, err
		}
		return ui.NewSuccessResult(field+" updated",
			ui.Detail{Key: "Device", Value: t.Label()},
			ui.Detail{Key: "Field", Value: field},
			ui.Detail{Key: "Value", Value: value},
		), nil
	})
}

// withDevice runs op against the resolved device and prints its result
func withDevice(cmd *cobra.Command, failTitle string, op func(thermostat.Device, *target) (*ui.Result, error)) error {
	cmd.SilenceUsage = true
	printer := ui.NewPrinter(cmd.OutOrStdout())

	reg, err := loadRegistry()
	if err != nil {
		printer.PrintError("Configuration error", err, []string{"Check the file shown in the error message"})
		return err
	}

	dev, br, t, err := connect(cmd, reg)
	if err != nil {
		printer.PrintError("Connection setup failed", err, []string{
			"Check the device entry with 'hysenctl devices list'",
			"Or pass --url or --port with --profile",
		})
		return err
	}
	defer br.Close()

	result, err := op(dev, t)
	if err != nil {
		printer.PrintError(failTitle, err, hints(err))
		return err
	}
	printer.PrintResult(result)
	return nil
}
