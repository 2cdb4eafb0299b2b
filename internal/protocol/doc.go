// Package protocol implements the Hysen thermostat register protocol envelope.
//
// Hysen controllers (HY03 heating, HY03AC fan coil) sit behind a Broadlink
// radio module. Once the Broadlink session is established, every request is a
// small register command wrapped in a length and CRC16 envelope. This package
// builds and validates that envelope, checks the device's echo, and plugs both
// into github.com/goburrow/modbus as a ClientHandler so register reads and
// writes use the standard Modbus client calls.
//
// # Envelope Format
//
// Requests and responses share the same layout:
//   - Length: 1 byte, payload length + 2
//   - Reserved: 1 byte, always 0x00
//   - Payload: Variable length register command
//   - CRC: 2 bytes, CRC-16/MODBUS of the payload, little-endian
//
// # Payload Commands
//
// The payload always starts with slave address 0x01 followed by an opcode:
//   - 0x03 read block:  01 03 addr(2) words(2)
//   - 0x06 write word:  01 06 addr(2) value(2)
//   - 0x10 write block: 01 10 addr(2) words(2) count data...
//
// Read responses are 01 03 count data.... Write responses echo the request
// (the whole payload for 0x06, the first six bytes for 0x10). A rejected
// command comes back as 01 (0x80|opcode) code.
//
// # Usage Example
//
//	handler := protocol.NewHandler(transport)
//	client := modbus.NewClient(handler)
//
//	data, err := client.ReadHoldingRegisters(0x0000, 0x0010)
//	if protocol.IsEchoMismatch(err) {
//	    // session must re-authenticate before the next call
//	}
//
// # Error Handling
//
// Frame-level failures (MalformedLength, CrcMismatch) and echo failures
// (EchoMismatch) are returned as *Error values. Transport errors pass through
// unchanged.
//
// # Thread Safety
//
// Frame, Unframe, CalculateCRC and ValidateEcho are stateless and safe for
// concurrent use. A Handler must not be shared by concurrent callers; the
// thermostat package serializes access per device.
package protocol
