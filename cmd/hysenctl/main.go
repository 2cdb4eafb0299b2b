// Hysenctl reads and configures Hysen HY03 heating and HY03AC fan coil
// thermostats.
//
// Commands travel as register writes through a bridge that owns the device
// session: a WebSocket bridge on the network or a serial bridge attached to
// this machine. Every write is confirmed by the device echo; a missing or
// wrong echo drops the session and the next command authenticates again.
//
// Usage:
//
//	hysenctl [command] [flags]
//
// See 'hysenctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/hysenctl/internal/logging"
	"github.com/muurk/hysenctl/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hysenctl",
	Short: "Hysen Thermostat Control Utility",
	Long: `Read status from and configure Hysen thermostats.

Supported profiles:
  heating    HY03 floor heating controller (0.5°C target steps, 8-period schedule)
  fancoil    HY03AC 2-pipe fan coil controller (cool/heat/fan modes, 2 on/off periods)

Connection modes:
  Registry:  --device bathroom (see 'hysenctl devices')
  WebSocket: --url ws://host/path [--username user]
  Serial:    --port /dev/ttyUSB0 [--baud 115200]

For WebSocket authentication, the password is read from the HYSEN_PASSWORD
environment variable, or prompted interactively if not set. There is no
--password flag, so credentials never end up in shell history.`,
	Version:       version.Version,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "hysenctl %s (commit: %s, %s %s)\n",
			info.Version, info.Commit, info.GoVersion, info.Platform)
	},
}
