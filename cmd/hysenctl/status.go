package main

import (
	"encoding/json"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/hysenctl/internal/config"
	"github.com/muurk/hysenctl/internal/logging"
	"github.com/muurk/hysenctl/internal/thermostat"
	"github.com/muurk/hysenctl/internal/ui"
)

var (
	statusFormat  string
	watchInterval time.Duration
)

// loadRegistry is replaced in tests
var loadRegistry = config.LoadRegistry

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)

	statusCmd.Flags().StringVar(&statusFormat, "format", "detailed", "Output format (detailed, json, yaml)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 30*time.Second, "Time between status reads")
}

// statusCmd reads and prints the device status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show thermostat status",
	Long: `Read the full status block from a thermostat and display it.

If clock sync is enabled for the device and the sync hour has come, the
wall clock is pushed to the device before the status is read.`,
	Example: `  # Status of the default registry device
  hysenctl status

  # Status of a named device as JSON
  hysenctl status --device bathroom --format json

  # Ad-hoc fan coil on a serial bridge
  hysenctl status --profile fancoil --port /dev/ttyUSB0`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Suppress usage on execution errors (we're past argument parsing)
	cmd.SilenceUsage = true
	printer := ui.NewPrinter(cmd.OutOrStdout())

	switch statusFormat {
	case "detailed", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (use detailed, json or yaml)", statusFormat)
	}

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

	state, err := dev.Snapshot()
	if err != nil {
		printer.PrintError("Status read failed", err, thermostat.TroubleshootingHints(err))
		return fmt.Errorf("status read failed: %w", err)
	}

	if t.Name != "" {
		reg.UpdateDeviceLastSeen(t.Name)
		if err := reg.Save(); err != nil {
			logging.Warn("Failed to record last seen", zap.String("device", t.Name), zap.Error(err))
		}
	}

	if statusFormat == "detailed" {
		printer.PrintHeader(ui.NewHeader(t.Label(), subtitle(dev.Kind(), br), sessionDetails(dev)...))
	}
	return printState(printer, statusFormat, state)
}

// printState writes a device state in the given output format
func printState(printer *ui.Printer, format string, state interface{}) error {
	switch format {
	case "json":
		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		printer.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		printer.Print(string(data))
	default:
		return printer.PrintStatus(state)
	}
	return nil
}

// sessionDetails summarises the session for the status header
func sessionDetails(dev thermostat.Device) []ui.Detail {
	auth := dev.AuthState()
	session := "not authenticated"
	if auth.Authenticated {
		session = "authenticated"
	}
	sync := "pending"
	if auth.SyncDoneToday {
		sync = "done today"
	}
	return []ui.Detail{
		{Key: "Session", Value: session},
		{Key: "Clock sync", Value: sync},
	}
}

// watchCmd polls the device and redraws its status
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch thermostat status live",
	Long: `Poll the thermostat on an interval and redraw its status.

Press r to read immediately and q to quit. A failed read keeps the last good
status on screen together with the error.`,
	Example: `  # Refresh every 30 seconds (default)
  hysenctl watch --device bathroom

  # Refresh every 5 seconds
  hysenctl watch --device office --interval 5s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	printer := ui.NewPrinter(cmd.OutOrStdout())

	if watchInterval < time.Second {
		return fmt.Errorf("--interval must be at least 1s, got %s", watchInterval)
	}

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

	model := ui.NewWatchModel(t.Label(), subtitle(dev.Kind(), br), watchInterval, dev.Snapshot)
	model.Hints = thermostat.TroubleshootingHints

	if err := ui.RunWatch(model, tea.WithAltScreen()); err != nil {
		return fmt.Errorf("watch error: %w", err)
	}
	return nil
}
