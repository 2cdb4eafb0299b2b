package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS == "linux" {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	}

	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}

	if !strings.Contains(configDir, "hysenctl") {
		t.Errorf("GetConfigDir() = %v, should contain 'hysenctl'", configDir)
	}

	switch runtime.GOOS {
	case "linux":
		if configDir != filepath.Join("/tmp/xdg", "hysenctl") {
			t.Errorf("GetConfigDir() = %v, want XDG_CONFIG_HOME/hysenctl", configDir)
		}
	case "darwin":
		if !strings.Contains(configDir, ".config") {
			t.Errorf("Unix config dir should contain '.config', got: %v", configDir)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != 1 {
		t.Errorf("NewRegistry().Version = %v, want 1", reg.Version)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}
	if reg.Preferences == nil {
		t.Fatal("NewRegistry().Preferences should not be nil")
	}
	if reg.Preferences.DefaultProfile != "heating" {
		t.Errorf("DefaultProfile = %q, want heating", reg.Preferences.DefaultProfile)
	}
	if reg.Preferences.SyncHour != 3 {
		t.Errorf("SyncHour = %d, want 3", reg.Preferences.SyncHour)
	}
	if err := reg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func bathroom() *Device {
	return &Device{
		Profile:   "heating",
		Transport: TransportWebSocket,
		URL:       "wss://bridge.local/hysen",
		Username:  "admin",
		SyncClock: true,
		SyncHour:  3,
	}
}

func TestDeviceValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(d *Device)
		wantErr string
	}{
		{"valid websocket", func(d *Device) {}, ""},
		{"valid serial", func(d *Device) {
			d.Transport, d.URL, d.Port, d.Baud = TransportSerial, "", "/dev/ttyUSB0", 9600
		}, ""},
		{"fancoil alias", func(d *Device) { d.Profile = "HY03AC" }, ""},
		{"unknown profile", func(d *Device) { d.Profile = "boiler" }, "unknown profile"},
		{"unknown transport", func(d *Device) { d.Transport = "udp" }, "unknown transport"},
		{"websocket without url", func(d *Device) { d.URL = "" }, "needs a url"},
		{"serial without port", func(d *Device) { d.Transport = TransportSerial }, "needs a port"},
		{"sync hour", func(d *Device) { d.SyncHour = 24 }, "sync_hour"},
		{"negative timeout", func(d *Device) { d.Timeout = -1 }, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := bathroom()
			tt.modify(d)

			err := d.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestRegistryAddRemove(t *testing.T) {
	reg := NewRegistry()

	if err := reg.AddDevice("bathroom", bathroom()); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	if err := reg.AddDevice("office", &Device{Profile: "fancoil", Transport: TransportSerial, Port: "/dev/ttyACM0"}); err != nil {
		t.Fatalf("AddDevice() error = %v", err)
	}
	if err := reg.AddDevice("", bathroom()); err == nil {
		t.Error("AddDevice() accepted an empty name")
	}
	if err := reg.AddDevice("broken", &Device{Profile: "heating"}); err == nil {
		t.Error("AddDevice() accepted an invalid device")
	}

	if got := reg.Names(); len(got) != 2 || got[0] != "bathroom" || got[1] != "office" {
		t.Errorf("Names() = %v", got)
	}
	if d := reg.GetDevice("office"); d == nil || d.Endpoint() != "/dev/ttyACM0" {
		t.Errorf("GetDevice(office) = %+v", d)
	}

	reg.Preferences.DefaultDevice = "office"
	if err := reg.RemoveDevice("office"); err != nil {
		t.Fatalf("RemoveDevice() error = %v", err)
	}
	if reg.Preferences.DefaultDevice != "" {
		t.Error("DefaultDevice still points at removed device")
	}
	if err := reg.RemoveDevice("office"); err == nil {
		t.Error("RemoveDevice() of missing device succeeded")
	}
}

func TestRegistryUpdateDeviceLastSeen(t *testing.T) {
	reg := NewRegistry()
	if err := reg.AddDevice("bathroom", bathroom()); err != nil {
		t.Fatal(err)
	}

	before := time.Now()
	reg.UpdateDeviceLastSeen("bathroom")
	reg.UpdateDeviceLastSeen("unknown")
	after := time.Now()

	seen := reg.GetDevice("bathroom").LastSeen
	if seen.Before(before) || seen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", seen, before, after)
	}
	if reg.GetDevice("unknown") != nil {
		t.Error("UpdateDeviceLastSeen() created an entry")
	}
}

func TestTimeoutDuration(t *testing.T) {
	prefs := &Preferences{DefaultTimeout: 7}

	d := bathroom()
	if got := d.TimeoutDuration(prefs); got != 7*time.Second {
		t.Errorf("TimeoutDuration() = %v, want preference 7s", got)
	}
	d.Timeout = 2
	if got := d.TimeoutDuration(prefs); got != 2*time.Second {
		t.Errorf("TimeoutDuration() = %v, want 2s", got)
	}
	if got := bathroom().TimeoutDuration(nil); got != 0 {
		t.Errorf("TimeoutDuration(nil) = %v, want 0", got)
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	reg := NewRegistry()
	if err := reg.AddDevice("bathroom", bathroom()); err != nil {
		t.Fatal(err)
	}
	reg.Preferences.DefaultDevice = "bathroom"

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file missing: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# hysenctl configuration file") {
		t.Error("header comment missing")
	}
	if strings.Contains(string(data), "password:") {
		t.Error("config file mentions a password field")
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	got := loaded.GetDevice("bathroom")
	if got == nil {
		t.Fatal("device missing after reload")
	}
	if *got != *bathroom() {
		t.Errorf("loaded device = %+v, want %+v", got, bathroom())
	}
	if loaded.Preferences.DefaultDevice != "bathroom" {
		t.Errorf("DefaultDevice = %q", loaded.Preferences.DefaultDevice)
	}
}

func TestLoadRegistryFrom(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "minimal",
			content: `version: 1
devices:
  office:
    profile: fancoil
    transport: serial
    port: /dev/ttyUSB0
    baud: 9600
`,
		},
		{"wrong version", "version: 2\n", "unsupported config version"},
		{"bad yaml", "version: [1\n", "failed to parse"},
		{
			name: "bad device",
			content: `version: 1
devices:
  office:
    profile: fancoil
    transport: carrier-pigeon
`,
			wantErr: "unknown transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}

			reg, err := LoadRegistryFrom(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("LoadRegistryFrom() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadRegistryFrom() error = %v", err)
			}
			if reg.Preferences == nil {
				t.Error("Preferences not defaulted")
			}
			if d := reg.GetDevice("office"); d == nil || d.Baud != 9600 {
				t.Errorf("office = %+v", d)
			}
		})
	}
}

func TestLoadRegistryFromMissingFile(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if len(reg.Devices) != 0 || reg.Version != 1 {
		t.Errorf("got %+v, want a default registry", reg)
	}
}

func BenchmarkGetConfigDir(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = GetConfigDir()
	}
}
