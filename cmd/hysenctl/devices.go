package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/muurk/hysenctl/internal/config"
	"github.com/muurk/hysenctl/internal/ui"
)

var (
	makeDefault bool
	assumeYes   bool
)

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesAddCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)

	devicesAddCmd.Flags().BoolVar(&makeDefault, "default", false, "Use this device when --device is not given")
	devicesRemoveCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage the device registry",
	Long: `List, add and remove named thermostats in the registry.

Registry entries store the profile, bridge connection and clock sync policy.
Bridge passwords are never stored.`,
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		names := reg.Names()
		if len(names) == 0 {
			fmt.Fprintln(out, "No devices registered.")
			fmt.Fprintln(out, "Use 'hysenctl devices add <name> --profile heating --url wss://...' to add one.")
			return nil
		}

		defaultDevice := ""
		if reg.Preferences != nil {
			defaultDevice = reg.Preferences.DefaultDevice
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPROFILE\tTRANSPORT\tENDPOINT\tCLOCK SYNC\tLAST SEEN")
		for _, name := range names {
			d := reg.GetDevice(name)
			marker := " "
			if name == defaultDevice {
				marker = "*"
			}
			sync := "off"
			if d.SyncClock {
				sync = fmt.Sprintf("%02d:00", d.SyncHour)
			}
			seen := "never"
			if !d.LastSeen.IsZero() {
				seen = d.LastSeen.Local().Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%s\n", marker, name, d.Kind(), d.Transport, d.Endpoint(), sync, seen)
		}
		return w.Flush()
	},
}

var devicesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a registered device",
	Long: `Add a named device to the registry using the connection flags.

An existing entry with the same name is replaced.`,
	Example: `  # WebSocket bridge with Basic auth
  hysenctl devices add bathroom --profile heating --url wss://bridge.local/hysen --username admin

  # Fan coil on a serial bridge, clock pushed daily at 04:00
  hysenctl devices add office --profile fancoil --port /dev/ttyUSB0 --baud 9600 --sync-clock --sync-hour 4 --default`,
	Args: cobra.ExactArgs(1),
	RunE: runDevicesAdd,
}

func runDevicesAdd(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	printer := ui.NewPrinter(cmd.OutOrStdout())
	name := args[0]

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	d := &config.Device{Baud: baudRate, SyncHour: syncHour}
	if reg.Preferences != nil {
		d.Profile = reg.Preferences.DefaultProfile
		d.SyncHour = reg.Preferences.SyncHour
	}
	applyFlags(cmd, d)

	if err := reg.AddDevice(name, d); err != nil {
		printer.PrintError("Device not added", err, []string{
			"Give --url ws://... or --port /dev/tty... for the bridge",
			"Give --profile heating or --profile fancoil",
		})
		return err
	}
	if makeDefault {
		if reg.Preferences == nil {
			reg.Preferences = &config.Preferences{}
		}
		reg.Preferences.DefaultDevice = name
	}

	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	result := ui.NewSuccessResult("Device added",
		ui.Detail{Key: "Name", Value: name},
		ui.Detail{Key: "Profile", Value: string(d.Kind())},
		ui.Detail{Key: "Endpoint", Value: d.Endpoint()},
	)
	if makeDefault {
		result.AddDetail("Default", "yes")
	}
	printer.PrintResult(result)
	return nil
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a registered device",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		printer := ui.NewPrinter(cmd.OutOrStdout())
		name := args[0]

		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		d := reg.GetDevice(name)
		if d == nil {
			return fmt.Errorf("device %q not found", name)
		}

		if !assumeYes {
			warnings := []string{fmt.Sprintf("%s (%s, %s) will be removed from the registry", name, d.Kind(), d.Endpoint())}
			if reg.Preferences != nil && reg.Preferences.DefaultDevice == name {
				warnings = append(warnings, "It is the default device; commands will need --device afterwards")
			}
			if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Remove device", warnings) {
				printer.Println("Cancelled.")
				return nil
			}
		}

		if err := reg.RemoveDevice(name); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}

		printer.PrintSuccess("Device removed", ui.Detail{Key: "Name", Value: name})
		return nil
	},
}
