package serialbridge

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"go.bug.st/serial"

	"github.com/muurk/hysenctl/internal/protocol"
)

// scriptedPort queues the next entry of replies on every Write, returns the
// queued chunks one Read at a time and reports a timeout (0, nil) once they
// run out.
type scriptedPort struct {
	replies [][][]byte
	chunks  [][]byte
	written bytes.Buffer
	closed  bool
	readErr error
	resets  int
}

func (p *scriptedPort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.chunks) == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	p.chunks[0] = p.chunks[0][n:]
	if len(p.chunks[0]) == 0 {
		p.chunks = p.chunks[1:]
	}
	return n, nil
}

func (p *scriptedPort) Write(b []byte) (int, error) {
	if len(p.replies) > 0 {
		p.chunks = append(p.chunks, p.replies[0]...)
		p.replies = p.replies[1:]
	}
	return p.written.Write(b)
}

func (p *scriptedPort) ResetInputBuffer() error {
	p.resets++
	p.chunks = nil
	return nil
}

func (p *scriptedPort) Close() error {
	p.closed = true
	return nil
}

func (p *scriptedPort) SetReadTimeout(time.Duration) error { return nil }

func newTestTransport(port *scriptedPort, timeout time.Duration) (*Transport, *serial.Mode) {
	var opened serial.Mode
	tr := NewWithOpener(Config{Port: "/dev/ttyUSB0", Baud: 9600, Timeout: timeout},
		func(name string, mode *serial.Mode) (Port, error) {
			opened = *mode
			return port, nil
		})
	return tr, &opened
}

func TestSendReadsAnnouncedLength(t *testing.T) {
	request := protocol.Frame([]byte{0x01, 0x06, 0x00, 0x02, 0x00, 0x16})
	// Split the response across reads, including a split header.
	port := &scriptedPort{replies: [][][]byte{{request[:1], request[1:5], request[5:]}}}
	tr, mode := newTestTransport(port, time.Second)

	ok, err := tr.Authenticate()
	if !ok || err != nil {
		t.Fatalf("Authenticate() = %v, %v", ok, err)
	}
	if mode.BaudRate != 9600 || mode.DataBits != 8 || mode.Parity != serial.NoParity || mode.StopBits != serial.OneStopBit {
		t.Errorf("mode = %+v, want 9600 8N1", *mode)
	}

	resp, err := tr.Send(request)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !bytes.Equal(resp, request) {
		t.Errorf("Send() = % x, want % x", resp, request)
	}
	if !bytes.Equal(port.written.Bytes(), request) {
		t.Errorf("written = % x, want % x", port.written.Bytes(), request)
	}
}

func TestSendIgnoresTrailingBytes(t *testing.T) {
	response := protocol.Frame([]byte{0x01, 0x03, 0x02, 0x00, 0x01})
	next := []byte{0xAA, 0xBB}
	port := &scriptedPort{replies: [][][]byte{{append(append([]byte(nil), response...), next...)}}}
	tr, _ := newTestTransport(port, time.Second)

	resp, err := tr.Send(protocol.Frame([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x01}))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !bytes.Equal(resp, response) {
		t.Errorf("Send() = % x, want % x", resp, response)
	}
}

func TestSendTimeout(t *testing.T) {
	port := &scriptedPort{replies: [][][]byte{{{0x08, 0x00, 0x01}}}}
	tr, _ := newTestTransport(port, 20*time.Millisecond)

	_, err := tr.Send(protocol.Frame([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x10}))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Send() error = %v, want ErrTimeout", err)
	}
}

func TestSendDiscardsLateReply(t *testing.T) {
	first := protocol.Frame([]byte{0x01, 0x06, 0x00, 0x02, 0x00, 0x16})
	second := protocol.Frame([]byte{0x01, 0x06, 0x00, 0x02, 0x00, 0x18})
	port := &scriptedPort{replies: [][][]byte{{first[:3]}, {second}}}
	tr, _ := newTestTransport(port, 20*time.Millisecond)

	if _, err := tr.Send(first); !errors.Is(err, ErrTimeout) {
		t.Fatalf("first Send() error = %v, want ErrTimeout", err)
	}

	// The rest of the first reply turns up after the timeout.
	port.chunks = append(port.chunks, first[3:])

	resp, err := tr.Send(second)
	if err != nil {
		t.Fatalf("second Send() error = %v", err)
	}
	if !bytes.Equal(resp, second) {
		t.Errorf("second Send() = % x, want % x", resp, second)
	}
	if port.resets != 2 {
		t.Errorf("input flushed %d times, want 2", port.resets)
	}
}

func TestSendReadErrorDropsPort(t *testing.T) {
	readErr := errors.New("device unplugged")
	port := &scriptedPort{readErr: readErr}
	tr, _ := newTestTransport(port, time.Second)

	_, err := tr.Send(protocol.Frame([]byte{0x01, 0x03, 0x00, 0x00, 0x00, 0x10}))
	if err != readErr {
		t.Fatalf("Send() error = %v, want %v", err, readErr)
	}
	if !port.closed {
		t.Error("failed port not closed")
	}
}

func TestSendInvalidLength(t *testing.T) {
	port := &scriptedPort{replies: [][][]byte{{{0x01, 0x00}}}}
	tr, _ := newTestTransport(port, time.Second)

	if _, err := tr.Send([]byte{0x00}); err == nil {
		t.Fatal("Send() accepted length byte 1")
	}
}

func TestClose(t *testing.T) {
	port := &scriptedPort{}
	tr, _ := newTestTransport(port, time.Second)

	if _, err := tr.Authenticate(); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !port.closed {
		t.Error("port not closed")
	}
	if _, err := tr.Send([]byte{0x00}); !errors.Is(err, ErrClosed) {
		t.Errorf("Send() after Close error = %v, want ErrClosed", err)
	}
}

func TestOpenFailure(t *testing.T) {
	openErr := errors.New("no such device")
	tr := NewWithOpener(Config{Port: "/dev/missing"}, func(string, *serial.Mode) (Port, error) {
		return nil, openErr
	})

	ok, err := tr.Authenticate()
	if ok || !errors.Is(err, openErr) {
		t.Errorf("Authenticate() = %v, %v", ok, err)
	}
}

func TestDefaults(t *testing.T) {
	tr := New(Config{Port: "/dev/ttyUSB0"})
	if tr.cfg.Baud != DefaultBaud || tr.cfg.Timeout != DefaultTimeout {
		t.Errorf("cfg = %+v", tr.cfg)
	}
	if got := tr.String(); got != "Serial: /dev/ttyUSB0 @ 115200 baud" {
		t.Errorf("String() = %q", got)
	}
}
