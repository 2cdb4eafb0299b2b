// Package wsbridge carries envelopes over a WebSocket bridge.
//
// Each request envelope is sent as one binary message and the next binary
// message is the response. Text messages (bridge status chatter) are
// skipped. The bridge authenticates clients with HTTP Basic auth during the
// upgrade; a 401 or 403 there is reported as a refused session.
package wsbridge

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/hysenctl/internal/logging"
)

// Defaults
const (
	DefaultTimeout   = 5 * time.Second
	handshakeTimeout = 10 * time.Second
	dialTimeout      = 15 * time.Second
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("websocket bridge: connection closed")

// Config describes a WebSocket bridge.
type Config struct {
	URL           string
	Username      string
	Password      string
	SkipSSLVerify bool
	Timeout       time.Duration
}

// Transport implements thermostat.Transport over a WebSocket.
type Transport struct {
	cfg    Config
	dialer websocket.Dialer
	header http.Header

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// New validates cfg and creates a transport. Nothing is dialed until
// Authenticate or Send.
func New(cfg Config) (*Transport, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: cfg.SkipSSLVerify,
		}
	}

	header := http.Header{}
	if cfg.Username != "" && cfg.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(cfg.Username + ":" + cfg.Password))
		header.Set("Authorization", "Basic "+credentials)
	}

	return &Transport{cfg: cfg, dialer: dialer, header: header}, nil
}

// Authenticate (re)dials the bridge. A rejected upgrade returns false and no
// error; any other failure returns the error.
func (t *Transport) Authenticate() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closeConn()
	t.closed = false

	err := t.dial()
	if err == nil {
		return true, nil
	}

	var rejected *rejectedError
	if errors.As(err, &rejected) {
		logging.Warn("Bridge refused session",
			zap.String("url", t.cfg.URL),
			zap.Int("status", rejected.status))
		return false, nil
	}
	return false, err
}

type rejectedError struct {
	status int
}

func (e *rejectedError) Error() string {
	return fmt.Sprintf("websocket bridge rejected credentials (HTTP %d)", e.status)
}

func (t *Transport) dial() error {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	conn, resp, err := t.dialer.DialContext(ctx, t.cfg.URL, t.header)
	if err != nil {
		if resp != nil {
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return &rejectedError{status: resp.StatusCode}
			}
			return fmt.Errorf("WebSocket connection failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("WebSocket connection failed: %w", err)
	}

	t.conn = conn
	logging.LogTransport("websocket", t.cfg.URL, "connected")
	return nil
}

// Send writes one binary message and returns the next binary message.
// A failed connection is closed and redialed by the next Send.
func (t *Transport) Send(envelope []byte) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, ErrClosed
	}
	if t.conn == nil {
		if err := t.dial(); err != nil {
			return nil, err
		}
	}

	deadline := time.Now().Add(t.cfg.Timeout)
	if err := t.conn.SetWriteDeadline(deadline); err != nil {
		t.closeConn()
		return nil, err
	}
	if err := t.conn.WriteMessage(websocket.BinaryMessage, envelope); err != nil {
		t.closeConn()
		return nil, err
	}

	if err := t.conn.SetReadDeadline(deadline); err != nil {
		t.closeConn()
		return nil, err
	}
	for {
		messageType, data, err := t.conn.ReadMessage()
		if err != nil {
			// gorilla connections are unusable after a read error
			t.closeConn()
			return nil, err
		}
		if messageType != websocket.BinaryMessage {
			logging.Debug("Skipping non-binary message", zap.Int("type", messageType))
			continue
		}
		return data, nil
	}
}

func (t *Transport) closeConn() {
	if t.conn == nil {
		return
	}
	_ = t.conn.Close()
	t.conn = nil
	logging.LogTransport("websocket", t.cfg.URL, "closed")
}

// Close shuts the connection down. Authenticate reopens it.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	if t.conn == nil {
		return nil
	}
	_ = t.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := t.conn.Close()
	t.conn = nil
	return err
}

// String describes the endpoint for display
func (t *Transport) String() string {
	return "WebSocket: " + t.cfg.URL
}
