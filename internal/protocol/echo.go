package protocol

import "bytes"

// SlaveAddress is the fixed register-bus address of the thermostat
const SlaveAddress byte = 0x01

// Payload opcodes
const (
	OpReadBlock  byte = 0x03
	OpWriteWord  byte = 0x06
	OpWriteBlock byte = 0x10

	exceptionFlag byte = 0x80
)

// writeBlockAckSize is slave + opcode + address(2) + word count(2)
const writeBlockAckSize = 6

// ValidateEcho checks that response is the confirmation the device should
// send for request. Both arguments are envelope payloads.
//
//   - write word: the response equals the request
//   - write block: the first 6 bytes match (address and word count)
//   - read block: opcode matches and the byte count equals twice the
//     requested word count and the remaining data length
//
// Any failure, including a device exception reply, is an EchoMismatch.
func ValidateEcho(request, response []byte) error {
	if len(request) < 2 {
		return echoError(request, response, "request payload too short: %d bytes", len(request))
	}

	if isException(request, response) {
		err := echoError(request, response, "device rejected opcode 0x%02x: %s",
			request[1], ExceptionName(response[2]))
		err.Exception = response[2]
		return err
	}

	switch request[1] {
	case OpWriteWord:
		if !bytes.Equal(request, response) {
			return echoError(request, response, "write word echo % x, want % x", response, request)
		}

	case OpWriteBlock:
		if len(request) < writeBlockAckSize || len(response) < writeBlockAckSize ||
			!bytes.Equal(request[:writeBlockAckSize], response[:writeBlockAckSize]) {
			return echoError(request, response, "write block ack % x does not match request header", response)
		}

	case OpReadBlock:
		if len(request) < 6 {
			return echoError(request, response, "read request too short: %d bytes", len(request))
		}
		if len(response) < 3 || response[0] != request[0] || response[1] != request[1] {
			return echoError(request, response, "read response header % x does not match request", response)
		}
		want := int(request[5]) * 2
		if int(response[2]) != want {
			return echoError(request, response, "read response declares %d bytes, want %d", response[2], want)
		}
		if len(response)-3 != want {
			return echoError(request, response, "read response carries %d data bytes, want %d", len(response)-3, want)
		}

	default:
		return echoError(request, response, "unsupported opcode 0x%02x", request[1])
	}

	return nil
}

func isException(request, response []byte) bool {
	return len(response) >= 3 &&
		response[0] == request[0] &&
		response[1] == request[1]|exceptionFlag
}

func echoError(request, response []byte, format string, args ...interface{}) *Error {
	err := newError(KindEchoMismatch, response, format, args...)
	err.Request = append([]byte(nil), request...)
	return err
}
