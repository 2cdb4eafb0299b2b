package protocol

import (
	"fmt"

	"github.com/goburrow/modbus"
	"go.uber.org/zap"

	"github.com/muurk/hysenctl/internal/logging"
)

// Handler adapts the Hysen envelope to goburrow/modbus.
//
// It implements modbus.ClientHandler: Encode and Decode translate between a
// ProtocolDataUnit and an envelope, Verify runs the CRC and echo checks, and
// Send hands the envelope to the underlying transporter.
type Handler struct {
	Transporter modbus.Transporter
	SlaveID     byte
}

var _ modbus.ClientHandler = (*Handler)(nil)

// NewHandler creates a handler that sends envelopes over transporter.
func NewHandler(transporter modbus.Transporter) *Handler {
	return &Handler{
		Transporter: transporter,
		SlaveID:     SlaveAddress,
	}
}

// Encode builds the envelope for a protocol data unit.
func (h *Handler) Encode(pdu *modbus.ProtocolDataUnit) ([]byte, error) {
	payload := make([]byte, 0, 2+len(pdu.Data))
	payload = append(payload, h.SlaveID, pdu.FunctionCode)
	payload = append(payload, pdu.Data...)

	if len(payload) > MaxPayload {
		return nil, fmt.Errorf("payload of %d bytes exceeds envelope limit %d", len(payload), MaxPayload)
	}
	return Frame(payload), nil
}

// Verify checks the response envelope integrity and the device echo.
func (h *Handler) Verify(aduRequest, aduResponse []byte) error {
	request, err := Unframe(aduRequest)
	if err != nil {
		return fmt.Errorf("request envelope: %w", err)
	}
	response, err := Unframe(aduResponse)
	if err != nil {
		return err
	}
	if err := ValidateEcho(request, response); err != nil {
		logging.Debug("Echo check failed",
			zap.String("request", FormatEnvelope(aduRequest)),
			zap.String("response", FormatEnvelope(aduResponse)))
		return err
	}
	return nil
}

// Decode extracts the protocol data unit from a response envelope.
func (h *Handler) Decode(adu []byte) (*modbus.ProtocolDataUnit, error) {
	payload, err := Unframe(adu)
	if err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, newError(KindMalformedLength, adu, "payload too short: %d bytes", len(payload))
	}

	data := payload[2:]
	// Only the address and word count of a block write are acknowledged.
	if payload[1] == OpWriteBlock && len(data) > 4 {
		data = data[:4]
	}

	return &modbus.ProtocolDataUnit{
		FunctionCode: payload[1],
		Data:         append([]byte(nil), data...),
	}, nil
}

// Send transmits a request envelope and returns the raw response.
// Transporter errors are returned unchanged.
func (h *Handler) Send(aduRequest []byte) ([]byte, error) {
	logging.LogFrame("tx", aduRequest)

	aduResponse, err := h.Transporter.Send(aduRequest)
	if err != nil {
		logging.Debug("Transport send failed", zap.Error(err))
		return nil, err
	}

	logging.LogFrame("rx", aduResponse)
	return aduResponse, nil
}
