package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muurk/hysenctl/internal/config"
	"github.com/muurk/hysenctl/internal/profile"
	"github.com/muurk/hysenctl/internal/thermostat"
	"github.com/muurk/hysenctl/internal/transport/serialbridge"
	"github.com/muurk/hysenctl/internal/transport/wsbridge"
)

// PasswordEnvVar holds the bridge password for non-interactive use.
const PasswordEnvVar = "HYSEN_PASSWORD"

var (
	// Registry selection
	deviceName  string
	profileName string

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Serial connection flags
	portName string
	baudRate int

	// Session flags
	timeoutSecs int
	syncClock   bool
	syncHour    int
	logLevel    string
)

// passwordPrompt is replaced in tests
var passwordPrompt = GetPassword

func init() {
	rootCmd.PersistentFlags().StringVarP(&deviceName, "device", "d", "", "Registry device name (default: preferences.default_device)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "Device profile: heating or fancoil")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial bridge device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", serialbridge.DefaultBaud, "Baud rate (serial only)")

	rootCmd.PersistentFlags().IntVar(&timeoutSecs, "timeout", 0, "Response timeout in seconds (default: preferences.default_timeout)")
	rootCmd.PersistentFlags().BoolVar(&syncClock, "sync-clock", false, "Push the wall clock to the device once a day")
	rootCmd.PersistentFlags().IntVar(&syncHour, "sync-hour", 3, "Local hour (0-23) for the daily clock push")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: $HYSEN_LOG_LEVEL, silent)")
}

// bridge is a transport the CLI can close and describe
type bridge interface {
	thermostat.Transport
	io.Closer
	fmt.Stringer
}

// target is the resolved connection for one command
type target struct {
	Name   string // registry name, empty for ad-hoc connections
	Device config.Device
}

// Label names the target in headers and results
func (t *target) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Device.Endpoint()
}

// resolveTarget merges the registry entry selected by --device (or the
// default device) with the connection flags. Flags that were set win.
func resolveTarget(cmd *cobra.Command, reg *config.Registry) (*target, error) {
	flags := cmd.Flags()
	name := deviceName
	adHoc := flags.Changed("url") || flags.Changed("port")
	if name == "" && !adHoc && reg.Preferences != nil {
		name = reg.Preferences.DefaultDevice
	}

	t := &target{Name: name}
	if name != "" {
		d := reg.GetDevice(name)
		if d == nil {
			return nil, fmt.Errorf("device %q not found (see 'hysenctl devices list')", name)
		}
		t.Device = *d
	} else {
		if !adHoc {
			return nil, fmt.Errorf("either --device, --url or --port must be specified")
		}
		t.Device = config.Device{SyncHour: syncHour}
		if reg.Preferences != nil {
			t.Device.Profile = reg.Preferences.DefaultProfile
			t.Device.SyncHour = reg.Preferences.SyncHour
		}
	}

	applyFlags(cmd, &t.Device)

	if err := t.Device.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// applyFlags copies every connection flag the user set onto d
func applyFlags(cmd *cobra.Command, d *config.Device) {
	flags := cmd.Flags()
	if flags.Changed("profile") {
		d.Profile = profileName
	}
	if flags.Changed("url") {
		d.Transport = config.TransportWebSocket
		d.URL = wsURL
		d.Port = ""
	}
	if flags.Changed("username") {
		d.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		d.SkipSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("port") {
		d.Transport = config.TransportSerial
		d.Port = portName
		d.URL = ""
	}
	if flags.Changed("baud") {
		d.Baud = baudRate
	}
	if flags.Changed("timeout") {
		d.Timeout = timeoutSecs
	}
	if flags.Changed("sync-clock") {
		d.SyncClock = syncClock
	}
	if flags.Changed("sync-hour") {
		d.SyncHour = syncHour
	}
}

// openBridge creates the transport for d. Nothing is dialed or opened until
// the device authenticates.
func openBridge(d config.Device, prefs *config.Preferences) (bridge, error) {
	timeout := d.TimeoutDuration(prefs)

	switch d.Transport {
	case config.TransportWebSocket:
		password := ""
		if d.Username != "" {
			var err error
			password, err = passwordPrompt()
			if err != nil {
				return nil, err
			}
		}
		tr, err := wsbridge.New(wsbridge.Config{
			URL:           d.URL,
			Username:      d.Username,
			Password:      password,
			SkipSSLVerify: d.SkipSSLVerify,
			Timeout:       timeout,
		})
		if err != nil {
			return nil, err
		}
		return tr, nil

	case config.TransportSerial:
		return serialbridge.New(serialbridge.Config{
			Port:    d.Port,
			Baud:    d.Baud,
			Timeout: timeout,
		}), nil

	default:
		return nil, fmt.Errorf("unknown transport %q", d.Transport)
	}
}

// connect resolves the target and builds its device session. The caller
// closes the returned bridge.
func connect(cmd *cobra.Command, reg *config.Registry) (thermostat.Device, bridge, *target, error) {
	t, err := resolveTarget(cmd, reg)
	if err != nil {
		return nil, nil, nil, err
	}

	br, err := openBridge(t.Device, reg.Preferences)
	if err != nil {
		return nil, nil, nil, err
	}

	dev, err := thermostat.New(t.Device.Kind(), br, thermostat.Options{
		Name:      t.Label(),
		SyncClock: t.Device.SyncClock,
		SyncHour:  t.Device.SyncHour,
	})
	if err != nil {
		br.Close()
		return nil, nil, nil, err
	}
	return dev, br, t, nil
}

// subtitle describes the profile and bridge of a target
func subtitle(kind profile.Kind, br bridge) string {
	return fmt.Sprintf("%s · %s", kind, br)
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv(PasswordEnvVar); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	// Read password without echo
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr) // newline after password
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr) // newline after password
	return string(passwordBytes), nil
}
