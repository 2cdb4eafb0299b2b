package main

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/muurk/hysenctl/internal/profile"
	"github.com/muurk/hysenctl/internal/protocol"
)

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "0a0b", want: "0a0b"},
		{in: "0a 0b", want: "0a0b"},
		{in: "0A:0B", want: "0a0b"},
		{in: " 0x0a0b ", want: "0a0b"},
		{in: "0a0", wantErr: true},
		{in: "zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && hex.EncodeToString(got) != tt.want {
				t.Errorf("parseHex(%q) = %x, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	fanCoil := profile.DefaultFanCoilState()
	fanCoil.OperationMode = profile.ModeCool
	fanCoilReply := protocol.Frame(append([]byte{protocol.SlaveAddress, protocol.OpReadBlock, profile.FanCoilStatusLength},
		profile.FanCoil.EncodeStatus(fanCoil)...))

	corrupt := protocol.Frame([]byte{0x01, 0x06, 0x00, 0x00, 0x01, 0x01})
	corrupt[3] ^= 0xFF

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{
			name: "write word",
			args: []string{"decode", "08 00 01 06 00 00 01 01 49 9a"},
			want: []string{"Envelope OK", "0x06 write word", "0x0000", "01 01"},
		},
		{
			name: "trailing bytes",
			args: []string{"decode", "08 00 01 06 00 00 01 01 49 9a aa bb"},
			want: []string{"WARNING", "trailing bytes ignored", "aa bb", "0x06 write word"},
		},
		{
			name: "read request",
			args: []string{"decode", hex.EncodeToString(protocol.Frame([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x10}))},
			want: []string{"0x03 read request", "16"},
		},
		{
			name: "exception",
			args: []string{"decode", hex.EncodeToString(protocol.Frame([]byte{0x01, 0x86, 0x02}))},
			want: []string{"error reply to 0x06", "Exception"},
		},
		{
			name: "fan coil status",
			args: []string{"decode", "--profile", "fancoil", hex.EncodeToString(fanCoilReply)},
			want: []string{"0x03 read reply", "32 (received 32)", "cool"},
		},
		{
			name: "fan coil status as json",
			args: []string{"decode", "--profile", "fancoil", "--format", "json", hex.EncodeToString(fanCoilReply)},
			want: []string{`"operation_mode": 2`},
		},
		{
			name: "fan coil register fields",
			args: []string{"decode", "--profile", "fancoil", "--format", "fields", hex.EncodeToString(fanCoilReply)},
			want: []string{"OFFSET", "operation_mode", "period2_end_hour"},
		},
		{
			name:    "wrong profile",
			args:    []string{"decode", hex.EncodeToString(fanCoilReply)},
			want:    []string{"Status decode failed"},
			wantErr: true,
		},
		{
			name:    "crc mismatch",
			args:    []string{"decode", hex.EncodeToString(corrupt)},
			want:    []string{"Invalid envelope"},
			wantErr: true,
		},
		{
			name:    "not hex",
			args:    []string{"decode", "hello"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decode error = %v, wantErr %v\n%s", err, tt.wantErr, out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}
