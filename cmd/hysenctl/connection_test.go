package main

import (
	"strings"
	"testing"

	"github.com/muurk/hysenctl/internal/config"
	"github.com/muurk/hysenctl/internal/profile"
	"github.com/muurk/hysenctl/internal/thermostat"
	"github.com/muurk/hysenctl/internal/transport/serialbridge"
	"github.com/muurk/hysenctl/internal/transport/wsbridge"
)

func parseRootFlags(t *testing.T, args ...string) {
	t.Helper()
	resetFlags(t, rootCmd)
	if err := rootCmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v) error = %v", args, err)
	}
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantName  string
		wantKind  profile.Kind
		wantEnd   string
		wantSync  bool
		wantHour  int
		wantError string
	}{
		{
			name:     "default device",
			wantName: "bathroom",
			wantKind: profile.KindHeating,
			wantEnd:  "ws://bridge.local/hysen",
			wantHour: 3,
		},
		{
			name:     "named device",
			args:     []string{"--device", "office"},
			wantName: "office",
			wantKind: profile.KindFanCoil,
			wantEnd:  "/dev/ttyUSB0",
			wantSync: true,
			wantHour: 4,
		},
		{
			name:     "flags override registry entry",
			args:     []string{"-d", "office", "--sync-clock=false", "--port", "/dev/ttyUSB1"},
			wantName: "office",
			wantKind: profile.KindFanCoil,
			wantEnd:  "/dev/ttyUSB1",
			wantHour: 4,
		},
		{
			name:     "url switches transport",
			args:     []string{"-d", "office", "--url", "wss://other/hysen"},
			wantName: "office",
			wantKind: profile.KindFanCoil,
			wantEnd:  "wss://other/hysen",
			wantSync: true,
			wantHour: 4,
		},
		{
			name:     "ad-hoc serial",
			args:     []string{"--port", "/dev/ttyS0", "--profile", "fancoil"},
			wantKind: profile.KindFanCoil,
			wantEnd:  "/dev/ttyS0",
			wantHour: 3,
		},
		{
			name:     "ad-hoc uses default profile",
			args:     []string{"--url", "ws://10.0.0.5/ws", "--sync-hour", "22"},
			wantKind: profile.KindHeating,
			wantEnd:  "ws://10.0.0.5/ws",
			wantHour: 22,
		},
		{
			name:      "unknown device",
			args:      []string{"--device", "attic"},
			wantError: `device "attic" not found`,
		},
		{
			name:      "bad profile",
			args:      []string{"--port", "/dev/ttyS0", "--profile", "boiler"},
			wantError: "boiler",
		},
		{
			name:      "bad sync hour",
			args:      []string{"--device", "bathroom", "--sync-hour", "24"},
			wantError: "sync_hour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := testRegistry(t)
			parseRootFlags(t, tt.args...)

			got, err := resolveTarget(rootCmd, reg)
			if tt.wantError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantError) {
					t.Fatalf("resolveTarget() error = %v, want containing %q", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveTarget() error = %v", err)
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.Device.Kind() != tt.wantKind {
				t.Errorf("Kind = %q, want %q", got.Device.Kind(), tt.wantKind)
			}
			if got.Device.Endpoint() != tt.wantEnd {
				t.Errorf("Endpoint = %q, want %q", got.Device.Endpoint(), tt.wantEnd)
			}
			if got.Device.SyncClock != tt.wantSync || got.Device.SyncHour != tt.wantHour {
				t.Errorf("sync = %v@%d, want %v@%d", got.Device.SyncClock, got.Device.SyncHour, tt.wantSync, tt.wantHour)
			}
		})
	}
}

func TestResolveTargetDoesNotModifyRegistry(t *testing.T) {
	reg := testRegistry(t)
	parseRootFlags(t, "-d", "office", "--port", "/dev/ttyUSB9")

	if _, err := resolveTarget(rootCmd, reg); err != nil {
		t.Fatalf("resolveTarget() error = %v", err)
	}
	if port := reg.GetDevice("office").Port; port != "/dev/ttyUSB0" {
		t.Errorf("registry port = %q, want /dev/ttyUSB0", port)
	}
}

func TestResolveTargetNoDevice(t *testing.T) {
	reg := config.NewRegistry()
	parseRootFlags(t)

	_, err := resolveTarget(rootCmd, reg)
	if err == nil || !strings.Contains(err.Error(), "--device, --url or --port") {
		t.Errorf("resolveTarget() error = %v", err)
	}
}

func TestTargetLabel(t *testing.T) {
	named := &target{Name: "bathroom", Device: config.Device{Transport: config.TransportSerial, Port: "/dev/ttyS0"}}
	if got := named.Label(); got != "bathroom" {
		t.Errorf("Label() = %q, want bathroom", got)
	}
	adHoc := &target{Device: config.Device{Transport: config.TransportSerial, Port: "/dev/ttyS0"}}
	if got := adHoc.Label(); got != "/dev/ttyS0" {
		t.Errorf("Label() = %q, want /dev/ttyS0", got)
	}
}

func TestOpenBridge(t *testing.T) {
	prefs := &config.Preferences{DefaultTimeout: 7}

	t.Run("serial", func(t *testing.T) {
		br, err := openBridge(config.Device{Transport: config.TransportSerial, Port: "/dev/ttyS0", Baud: 9600}, prefs)
		if err != nil {
			t.Fatalf("openBridge() error = %v", err)
		}
		if _, ok := br.(*serialbridge.Transport); !ok {
			t.Fatalf("openBridge() = %T, want *serialbridge.Transport", br)
		}
		if got := br.String(); got != "Serial: /dev/ttyS0 @ 9600 baud" {
			t.Errorf("String() = %q", got)
		}
	})

	t.Run("websocket prompts for password", func(t *testing.T) {
		prompted := false
		orig := passwordPrompt
		passwordPrompt = func() (string, error) {
			prompted = true
			return "secret", nil
		}
		defer func() { passwordPrompt = orig }()

		br, err := openBridge(config.Device{
			Transport: config.TransportWebSocket,
			URL:       "ws://bridge.local/hysen",
			Username:  "admin",
		}, prefs)
		if err != nil {
			t.Fatalf("openBridge() error = %v", err)
		}
		if _, ok := br.(*wsbridge.Transport); !ok {
			t.Errorf("openBridge() = %T, want *wsbridge.Transport", br)
		}
		if !prompted {
			t.Error("password was not requested")
		}
	})

	t.Run("websocket without username", func(t *testing.T) {
		orig := passwordPrompt
		passwordPrompt = func() (string, error) {
			t.Error("password requested without a username")
			return "", nil
		}
		defer func() { passwordPrompt = orig }()

		if _, err := openBridge(config.Device{Transport: config.TransportWebSocket, URL: "ws://bridge.local/hysen"}, prefs); err != nil {
			t.Fatalf("openBridge() error = %v", err)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		if _, err := openBridge(config.Device{Transport: config.TransportWebSocket, URL: "http://bridge.local"}, prefs); err == nil {
			t.Error("openBridge() expected error for http:// URL")
		}
	})
}

func TestGetPasswordFromEnv(t *testing.T) {
	t.Setenv(PasswordEnvVar, "from-env")
	got, err := GetPassword()
	if err != nil {
		t.Fatalf("GetPassword() error = %v", err)
	}
	if got != "from-env" {
		t.Errorf("GetPassword() = %q, want from-env", got)
	}
}

func TestSessionDetails(t *testing.T) {
	dev := thermostat.NewHeating(&stubTransport{status: profile.Heating.EncodeStatus(profile.DefaultHeatingState())}, thermostat.Options{})

	details := sessionDetails(dev)
	if details[0].Value != "not authenticated" {
		t.Errorf("session before read = %q", details[0].Value)
	}
	if _, err := dev.Snapshot(); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	details = sessionDetails(dev)
	if details[0].Value != "authenticated" {
		t.Errorf("session after read = %q", details[0].Value)
	}
}
