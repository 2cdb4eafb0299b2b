// Package config provides the device registry for hysenctl.
//
// The registry is a YAML file that maps a user-chosen name to the settings
// needed to reach one thermostat: its profile, the bridge transport and the
// clock sync policy. Command-line flags override registry values.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/hysenctl/config.yaml or $HOME/.config/hysenctl/config.yaml
//   - macOS: $HOME/.config/hysenctl/config.yaml
//   - Windows: %LOCALAPPDATA%\hysenctl\config.yaml
//
// # Security
//
// Bridge passwords are never written to the file. They come from the
// HYSEN_PASSWORD environment variable or an interactive prompt.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = registry.AddDevice("bathroom", &config.Device{
//	    Profile:   "heating",
//	    Transport: config.TransportWebSocket,
//	    URL:       "wss://bridge.local/hysen",
//	    Username:  "admin",
//	    SyncClock: true,
//	    SyncHour:  3,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File writes are serialized by a mutex and replace the file atomically.
package config
