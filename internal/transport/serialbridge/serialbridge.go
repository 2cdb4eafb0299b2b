// Package serialbridge carries envelopes over a serial link to a bridge that
// forwards them to the thermostat unchanged.
//
// The bridge owns the encrypted device session; from the host side the link
// is authenticated as soon as the port is open.
package serialbridge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/muurk/hysenctl/internal/logging"
	"github.com/muurk/hysenctl/internal/protocol"
)

// Defaults
const (
	DefaultBaud    = 115200
	DefaultTimeout = 3 * time.Second

	// readSlice bounds each blocking Read so the overall deadline is honoured
	readSlice = 100 * time.Millisecond
)

// ErrTimeout is returned when a response does not arrive in time.
var ErrTimeout = fmt.Errorf("serial bridge: %w", os.ErrDeadlineExceeded)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("serial bridge: port closed")

// Port is the part of serial.Port the transport uses.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
}

// Opener opens a port. serial.Open is the default.
type Opener func(name string, mode *serial.Mode) (Port, error)

// Config describes a serial bridge.
type Config struct {
	Port    string
	Baud    int
	Timeout time.Duration
}

// Transport implements thermostat.Transport over a serial port.
type Transport struct {
	cfg  Config
	open Opener

	mu     sync.Mutex
	port   Port
	closed bool
}

// New creates a transport. The port is opened by Authenticate.
func New(cfg Config) *Transport {
	return NewWithOpener(cfg, func(name string, mode *serial.Mode) (Port, error) {
		return serial.Open(name, mode)
	})
}

// NewWithOpener creates a transport that opens ports with open.
func NewWithOpener(cfg Config, open Opener) *Transport {
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Transport{cfg: cfg, open: open}
}

// Authenticate opens the port if needed. The bridge has no credentials, so
// an open port always counts as authenticated.
func (t *Transport) Authenticate() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return true, nil
	}
	if err := t.openPort(); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Transport) openPort() error {
	mode := &serial.Mode{
		BaudRate: t.cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := t.open(t.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", t.cfg.Port, err)
	}

	t.port = port
	t.closed = false
	logging.LogTransport("serial", fmt.Sprintf("%s@%d", t.cfg.Port, t.cfg.Baud), "opened")
	return nil
}

// Send writes one envelope and reads the response envelope: the two header
// bytes, then as many bytes as the length byte announces.
//
// Pending input is discarded before the write, so a reply that arrived after
// an earlier timeout is never read as the answer to this request.
func (t *Transport) Send(envelope []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}
	if t.port == nil {
		if err := t.openPort(); err != nil {
			return nil, err
		}
	}

	if err := t.port.ResetInputBuffer(); err != nil {
		t.drop(err)
		return nil, fmt.Errorf("serial bridge: failed to flush input: %w", err)
	}
	if _, err := t.port.Write(envelope); err != nil {
		t.drop(err)
		return nil, err
	}

	deadline := time.Now().Add(t.cfg.Timeout)

	header := make([]byte, protocol.HeaderSize)
	if err := t.readFull(header, deadline); err != nil {
		return nil, err
	}

	length := int(header[0])
	if length < protocol.HeaderSize {
		return nil, fmt.Errorf("serial bridge: invalid length byte %d", length)
	}

	// length covers the header and payload; the CRC follows
	rest := make([]byte, length-protocol.HeaderSize+protocol.TrailerSize)
	if err := t.readFull(rest, deadline); err != nil {
		return nil, err
	}

	return append(header, rest...), nil
}

// readFull fills buf before deadline. serial ports report a timed-out Read
// as zero bytes and no error.
func (t *Transport) readFull(buf []byte, deadline time.Time) error {
	got := 0
	for got < len(buf) {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		if remaining > readSlice {
			remaining = readSlice
		}
		if err := t.port.SetReadTimeout(remaining); err != nil {
			return err
		}

		n, err := t.port.Read(buf[got:])
		got += n
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			t.drop(err)
			return err
		}
	}
	return nil
}

// drop closes a failed port so the next Send reopens it.
func (t *Transport) drop(cause error) {
	logging.Debug("Serial port dropped", zap.String("port", t.cfg.Port), zap.Error(cause))
	_ = t.port.Close()
	t.port = nil
}

// Close releases the port.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// String describes the endpoint for display
func (t *Transport) String() string {
	return fmt.Sprintf("Serial: %s @ %d baud", t.cfg.Port, t.cfg.Baud)
}
