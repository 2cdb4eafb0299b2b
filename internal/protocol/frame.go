package protocol

import (
	"encoding/binary"
	"fmt"
)

// Envelope layout
const (
	HeaderSize   = 2 // length byte + reserved byte
	TrailerSize  = 2 // CRC16, little-endian
	MaxPayload   = 0xFF - TrailerSize
	reservedByte = 0x00
)

// Frame wraps a command payload in the length and CRC16 envelope:
// [len(payload)+2][0x00][payload...][crc_lo][crc_hi].
func Frame(payload []byte) []byte {
	frame := make([]byte, 0, HeaderSize+len(payload)+TrailerSize)
	frame = append(frame, byte(len(payload)+TrailerSize), reservedByte)
	frame = append(frame, payload...)
	return binary.LittleEndian.AppendUint16(frame, CalculateCRC(payload))
}

// Unframe validates an envelope and returns its payload.
//
// The length byte counts the payload plus the two header bytes, so the CRC
// sits at raw[L:L+2]. Trailing bytes past the CRC are ignored.
func Unframe(raw []byte) ([]byte, error) {
	if len(raw) < HeaderSize+TrailerSize {
		return nil, newError(KindMalformedLength, raw,
			"envelope too short: %d bytes", len(raw))
	}

	length := int(raw[0])
	if length < HeaderSize || length+TrailerSize > len(raw) {
		return nil, newError(KindMalformedLength, raw,
			"length byte %d does not fit %d received bytes", length, len(raw))
	}

	payload := raw[HeaderSize:length]
	want := binary.LittleEndian.Uint16(raw[length : length+TrailerSize])
	got := CalculateCRC(payload)
	if got != want {
		return nil, newError(KindCRCMismatch, raw,
			"crc 0x%04x, envelope carries 0x%04x", got, want)
	}

	return payload, nil
}

// FormatEnvelope returns a short annotated description of an envelope.
func FormatEnvelope(raw []byte) string {
	payload, err := Unframe(raw)
	if err != nil {
		return fmt.Sprintf("invalid envelope (%d bytes): %v", len(raw), err)
	}
	if len(payload) < 2 {
		return fmt.Sprintf("envelope len=%d payload=% x", raw[0], payload)
	}
	return fmt.Sprintf("envelope len=%d slave=0x%02x op=0x%02x data=% x",
		raw[0], payload[0], payload[1], payload[2:])
}
