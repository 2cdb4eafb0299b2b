package protocol

// CRC-16/MODBUS parameters (reflected polynomial 0x8005).
const (
	crcInitial    = 0xFFFF
	crcPolynomial = 0xA001
)

// CalculateCRC computes the CRC-16/MODBUS checksum used by the envelope.
func CalculateCRC(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&0x0001 != 0 {
				crc = (crc >> 1) ^ crcPolynomial
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}
