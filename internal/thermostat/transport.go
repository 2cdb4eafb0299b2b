package thermostat

// Transport carries envelopes to a thermostat over an authenticated session.
//
// Send delivers one request envelope and returns the raw response envelope.
// Its errors, including timeouts, are returned to callers unchanged.
// Authenticate (re)establishes the session and reports whether the device
// accepted it.
//
// Transport satisfies goburrow's modbus.Transporter.
type Transport interface {
	Send(envelope []byte) ([]byte, error)
	Authenticate() (bool, error)
}
