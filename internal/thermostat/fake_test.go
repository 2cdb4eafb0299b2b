package thermostat

import (
	"bytes"
	"fmt"
	"time"

	"github.com/muurk/hysenctl/internal/protocol"
)

// fakeTransport answers status reads from a fixed register block and echoes
// writes. Individual opcodes can be overridden.
type fakeTransport struct {
	status []byte

	authReject bool
	authErr    error
	authCalls  int

	// override replaces the default reply for one opcode; returning nil, nil
	// falls through to the default.
	override map[byte]func(payload []byte) ([]byte, error)

	payloads [][]byte
}

func newFakeTransport(status []byte) *fakeTransport {
	return &fakeTransport{status: status, override: map[byte]func([]byte) ([]byte, error){}}
}

func (f *fakeTransport) Authenticate() (bool, error) {
	f.authCalls++
	if f.authErr != nil {
		return false, f.authErr
	}
	return !f.authReject, nil
}

func (f *fakeTransport) Send(envelope []byte) ([]byte, error) {
	payload, err := protocol.Unframe(envelope)
	if err != nil {
		return nil, fmt.Errorf("fake transport: bad request: %w", err)
	}
	f.payloads = append(f.payloads, append([]byte(nil), payload...))

	op := payload[1]
	if fn, ok := f.override[op]; ok {
		resp, err := fn(payload)
		if err != nil || resp != nil {
			return resp, err
		}
	}

	switch op {
	case protocol.OpReadBlock:
		n := 2 * int(payload[5])
		if n > len(f.status) {
			n = len(f.status)
		}
		resp := append([]byte{protocol.SlaveAddress, op, byte(2 * int(payload[5]))}, f.status[:n]...)
		return protocol.Frame(resp), nil
	case protocol.OpWriteWord:
		return envelope, nil
	case protocol.OpWriteBlock:
		return protocol.Frame(payload[:6]), nil
	default:
		return protocol.Frame([]byte{protocol.SlaveAddress, op | 0x80, protocol.ExceptionUnknownCommand}), nil
	}
}

// writes returns every non-read payload in order.
func (f *fakeTransport) writes() [][]byte {
	var out [][]byte
	for _, p := range f.payloads {
		if p[1] != protocol.OpReadBlock {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeTransport) reads() int {
	n := 0
	for _, p := range f.payloads {
		if p[1] == protocol.OpReadBlock {
			n++
		}
	}
	return n
}

func (f *fakeTransport) reset() {
	f.payloads = nil
}

func sameWrites(got, want [][]byte) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !bytes.Equal(got[i], want[i]) {
			return false
		}
	}
	return true
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func floatPtr(v float64) *float64 { return &v }

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
