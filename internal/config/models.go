package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/muurk/hysenctl/internal/profile"
)

// Transport kinds
const (
	TransportWebSocket = "websocket"
	TransportSerial    = "serial"
)

// Registry represents the entire user configuration file.
// It stores connection settings for named thermostats and application
// preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by user-chosen name
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device holds the connection settings for one thermostat.
type Device struct {
	Profile       string    `yaml:"profile"`                 // heating or fancoil
	Transport     string    `yaml:"transport"`               // websocket or serial
	URL           string    `yaml:"url,omitempty"`           // ws:// or wss:// bridge URL
	Username      string    `yaml:"username,omitempty"`      // Basic auth user (password is never stored)
	SkipSSLVerify bool      `yaml:"no_ssl_verify,omitempty"` // Accept self-signed bridge certificates
	Port          string    `yaml:"port,omitempty"`          // Serial device path
	Baud          int       `yaml:"baud,omitempty"`          // Serial baud rate
	Timeout       int       `yaml:"timeout,omitempty"`       // Response timeout in seconds
	SyncClock     bool      `yaml:"sync_clock,omitempty"`    // Push the wall clock once a day
	SyncHour      int       `yaml:"sync_hour,omitempty"`     // Local hour for the clock push
	LastSeen      time.Time `yaml:"last_seen,omitempty"`     // Last successful status read
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultDevice  string `yaml:"default_device,omitempty"` // Used when --device is not given
	DefaultProfile string `yaml:"default_profile"`          // Profile for ad-hoc connections
	DefaultTimeout int    `yaml:"default_timeout"`          // Seconds
	SyncHour       int    `yaml:"sync_hour"`                // Default clock sync hour
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DefaultProfile: string(profile.KindHeating),
		DefaultTimeout: 5,
		SyncHour:       3,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Devices:     make(map[string]*Device),
		Preferences: defaultPreferences(),
	}
}

// GetDevice retrieves device settings by name.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(name string) *Device {
	return r.Devices[name]
}

// AddDevice validates d and stores it under name, replacing any existing
// entry.
func (r *Registry) AddDevice(name string, d *Device) error {
	if name == "" {
		return fmt.Errorf("device name must not be empty")
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("device %q: %w", name, err)
	}
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	r.Devices[name] = d
	return nil
}

// RemoveDevice deletes a device entry.
func (r *Registry) RemoveDevice(name string) error {
	if _, ok := r.Devices[name]; !ok {
		return fmt.Errorf("device %q not found", name)
	}
	delete(r.Devices, name)
	if r.Preferences != nil && r.Preferences.DefaultDevice == name {
		r.Preferences.DefaultDevice = ""
	}
	return nil
}

// Names returns the device names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UpdateDeviceLastSeen records a successful status read.
func (r *Registry) UpdateDeviceLastSeen(name string) {
	if d := r.Devices[name]; d != nil {
		d.LastSeen = time.Now()
	}
}

// Validate checks every device entry and the preferences.
func (r *Registry) Validate() error {
	if r.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", r.Version)
	}
	for _, name := range r.Names() {
		if err := r.Devices[name].Validate(); err != nil {
			return fmt.Errorf("device %q: %w", name, err)
		}
	}
	if p := r.Preferences; p != nil {
		if p.DefaultDevice != "" && r.Devices[p.DefaultDevice] == nil {
			return fmt.Errorf("default device %q is not configured", p.DefaultDevice)
		}
		if p.DefaultProfile != "" {
			if _, err := profile.ParseKind(p.DefaultProfile); err != nil {
				return err
			}
		}
		if p.SyncHour < 0 || p.SyncHour > 23 {
			return fmt.Errorf("sync_hour must be 0-23, got %d", p.SyncHour)
		}
	}
	return nil
}

// Validate checks profile, transport and sync hour.
func (d *Device) Validate() error {
	if d == nil {
		return fmt.Errorf("empty device entry")
	}
	if _, err := profile.ParseKind(d.Profile); err != nil {
		return err
	}

	switch d.Transport {
	case TransportWebSocket:
		if d.URL == "" {
			return fmt.Errorf("websocket transport needs a url")
		}
	case TransportSerial:
		if d.Port == "" {
			return fmt.Errorf("serial transport needs a port")
		}
		if d.Baud < 0 {
			return fmt.Errorf("baud must be positive, got %d", d.Baud)
		}
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", d.Transport, TransportWebSocket, TransportSerial)
	}

	if d.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %d", d.Timeout)
	}
	if d.SyncHour < 0 || d.SyncHour > 23 {
		return fmt.Errorf("sync_hour must be 0-23, got %d", d.SyncHour)
	}
	return nil
}

// Kind returns the parsed profile. Call Validate first.
func (d *Device) Kind() profile.Kind {
	kind, _ := profile.ParseKind(d.Profile)
	return kind
}

// TimeoutDuration returns the response timeout, falling back to the
// preferences and then to zero (transport default).
func (d *Device) TimeoutDuration(prefs *Preferences) time.Duration {
	switch {
	case d.Timeout > 0:
		return time.Duration(d.Timeout) * time.Second
	case prefs != nil && prefs.DefaultTimeout > 0:
		return time.Duration(prefs.DefaultTimeout) * time.Second
	default:
		return 0
	}
}

// Endpoint describes where the device is reached
func (d *Device) Endpoint() string {
	if d.Transport == TransportSerial {
		return d.Port
	}
	return d.URL
}
