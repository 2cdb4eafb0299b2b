package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func TestFrame(t *testing.T) {
	payload := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01}
	want := []byte{0x08, 0x00, 0x01, 0x03, 0x00, 0x00, 0x00, 0x01, 0x84, 0x0A}

	if got := Frame(payload); !bytes.Equal(got, want) {
		t.Errorf("Frame() = % x, want % x", got, want)
	}
}

func TestFrameUnframeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x01},
		{0x01, 0x06, 0x00, 0x01, 0x00, 0x16},
		{0x01, 0x10, 0x00, 0x07, 0x00, 0x02, 0x04, 0x0c, 0x1e, 0x00, 0x03},
		bytes.Repeat([]byte{0xA5}, MaxPayload),
	}

	for _, payload := range payloads {
		got, err := Unframe(Frame(payload))
		if err != nil {
			t.Fatalf("Unframe(Frame(% x)) error = %v", payload, err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("Unframe(Frame(% x)) = % x", payload, got)
		}
	}
}

func TestUnframe(t *testing.T) {
	valid := Frame([]byte{0x01, 0x06, 0x00, 0x02, 0x00, 0x16})

	tests := []struct {
		name    string
		raw     []byte
		want    []byte
		isError func(error) bool
	}{
		{
			name: "valid envelope",
			raw:  valid,
			want: valid[2:8],
		},
		{
			name: "trailing bytes ignored",
			raw:  append(append([]byte(nil), valid...), 0xDE, 0xAD),
			want: valid[2:8],
		},
		{
			name:    "empty input",
			raw:     []byte{},
			isError: IsMalformedLength,
		},
		{
			name:    "length past end",
			raw:     []byte{0x20, 0x00, 0x01, 0x03, 0xFF, 0xFF},
			isError: IsMalformedLength,
		},
		{
			name:    "length smaller than header",
			raw:     []byte{0x01, 0x00, 0xFF, 0xFF},
			isError: IsMalformedLength,
		},
		{
			name:    "truncated crc",
			raw:     valid[:len(valid)-1],
			isError: IsMalformedLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unframe(tt.raw)
			if tt.isError != nil {
				if !tt.isError(err) {
					t.Fatalf("Unframe() error = %v, wrong kind", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unframe() unexpected error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Unframe() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestUnframeDetectsCorruption(t *testing.T) {
	payload := []byte{0x01, 0x03, 0x20, 0x00, 0x01, 0x01, 0x01, 0x16, 0x16}
	frame := Frame(payload)

	// Every single-bit flip in the payload or the CRC must be caught.
	for i := HeaderSize; i < len(frame); i++ {
		for bit := 0; bit < 8; bit++ {
			corrupted := append([]byte(nil), frame...)
			corrupted[i] ^= 1 << bit

			_, err := Unframe(corrupted)
			if !IsCRCMismatch(err) {
				t.Errorf("flip byte %d bit %d: error = %v, want CRC mismatch", i, bit, err)
			}
		}
	}
}

func TestFormatEnvelope(t *testing.T) {
	got := FormatEnvelope(Frame([]byte{0x01, 0x06, 0x00, 0x02, 0x00, 0x16}))
	if !strings.Contains(got, "op=0x06") {
		t.Errorf("FormatEnvelope() = %q, want opcode annotation", got)
	}

	got = FormatEnvelope([]byte{0x09})
	if !strings.HasPrefix(got, "invalid envelope") {
		t.Errorf("FormatEnvelope() = %q, want invalid envelope", got)
	}
}
