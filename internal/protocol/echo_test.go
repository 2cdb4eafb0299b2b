package protocol

import (
	"errors"
	"testing"
)

func TestValidateEcho(t *testing.T) {
	writeWord := []byte{0x01, 0x06, 0x00, 0x01, 0x00, 0x16}
	writeBlock := []byte{0x01, 0x10, 0x00, 0x07, 0x00, 0x02, 0x04, 0x0c, 0x1e, 0x00, 0x03}
	readBlock := []byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x02}

	tests := []struct {
		name     string
		request  []byte
		response []byte
		wantErr  bool
	}{
		{
			name:     "write word echoed verbatim",
			request:  writeWord,
			response: []byte{0x01, 0x06, 0x00, 0x01, 0x00, 0x16},
		},
		{
			name:     "write word value differs",
			request:  writeWord,
			response: []byte{0x01, 0x06, 0x00, 0x01, 0x00, 0x17},
			wantErr:  true,
		},
		{
			name:     "write word truncated echo",
			request:  writeWord,
			response: []byte{0x01, 0x06, 0x00, 0x01},
			wantErr:  true,
		},
		{
			name:     "write block acknowledged",
			request:  writeBlock,
			response: []byte{0x01, 0x10, 0x00, 0x07, 0x00, 0x02},
		},
		{
			name:     "write block wrong word count",
			request:  writeBlock,
			response: []byte{0x01, 0x10, 0x00, 0x07, 0x00, 0x03},
			wantErr:  true,
		},
		{
			name:     "write block short ack",
			request:  writeBlock,
			response: []byte{0x01, 0x10, 0x00},
			wantErr:  true,
		},
		{
			name:     "read block with matching count",
			request:  readBlock,
			response: []byte{0x01, 0x03, 0x04, 0x00, 0x01, 0x02, 0x03},
		},
		{
			name:     "read block wrong declared count",
			request:  readBlock,
			response: []byte{0x01, 0x03, 0x02, 0x00, 0x01},
			wantErr:  true,
		},
		{
			name:     "read block data shorter than count",
			request:  readBlock,
			response: []byte{0x01, 0x03, 0x04, 0x00, 0x01},
			wantErr:  true,
		},
		{
			name:     "read block wrong opcode",
			request:  readBlock,
			response: []byte{0x01, 0x04, 0x04, 0x00, 0x01, 0x02, 0x03},
			wantErr:  true,
		},
		{
			name:     "unsupported opcode",
			request:  []byte{0x01, 0x05, 0x00, 0x00},
			response: []byte{0x01, 0x05, 0x00, 0x00},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEcho(tt.request, tt.response)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateEcho() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !IsEchoMismatch(err) {
				t.Errorf("ValidateEcho() error = %v, want echo mismatch", err)
			}
		})
	}
}

func TestValidateEchoException(t *testing.T) {
	tests := []struct {
		name     string
		request  []byte
		response []byte
		wantCode byte
	}{
		{
			name:     "unknown command",
			request:  []byte{0x01, 0x06, 0x00, 0x01, 0x00, 0x16},
			response: []byte{0x01, 0x86, 0x01},
			wantCode: ExceptionUnknownCommand,
		},
		{
			name:     "wrong length on block write",
			request:  []byte{0x01, 0x10, 0x00, 0x03, 0x00, 0x04, 0x08, 1, 2, 3, 4, 5, 6, 7, 8},
			response: []byte{0x01, 0x90, 0x03},
			wantCode: ExceptionWrongLength,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEcho(tt.request, tt.response)

			var pErr *Error
			if !errors.As(err, &pErr) {
				t.Fatalf("ValidateEcho() error = %v, want *Error", err)
			}
			if pErr.Kind != KindEchoMismatch {
				t.Errorf("Kind = %v, want %v", pErr.Kind, KindEchoMismatch)
			}
			if pErr.Exception != tt.wantCode {
				t.Errorf("Exception = 0x%02x, want 0x%02x", pErr.Exception, tt.wantCode)
			}
		})
	}
}

func TestExceptionName(t *testing.T) {
	if got := ExceptionName(ExceptionLengthInvalid); got != "length missing or too large" {
		t.Errorf("ExceptionName(2) = %q", got)
	}
	if got := ExceptionName(0x42); got != "exception 0x42" {
		t.Errorf("ExceptionName(0x42) = %q", got)
	}
}
