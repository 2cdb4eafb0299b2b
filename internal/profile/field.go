package profile

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Field describes one value in a status block.
//
// The raw value is read big-endian from Width bytes at Offset, shifted right
// by Shift and masked with Mask (0 keeps every bit). Signed fields are
// two's-complement over Width bytes. Scale divides the result; 0 means the
// field is an integer.
type Field struct {
	Name   string
	Offset int
	Width  int
	Shift  uint
	Mask   uint32
	Scale  float64
	Signed bool
}

// Bit is a single-bit flag field.
func Bit(name string, offset int, shift uint) Field {
	return Field{Name: name, Offset: offset, Width: 1, Shift: shift, Mask: 0x01}
}

// Byte is a plain unsigned byte field.
func Byte(name string, offset int) Field {
	return Field{Name: name, Offset: offset, Width: 1}
}

func (f Field) width() int {
	if f.Width == 0 {
		return 1
	}
	return f.Width
}

// End returns the offset just past the field.
func (f Field) End() int {
	return f.Offset + f.width()
}

// Raw extracts the unscaled value from a status block.
func (f Field) Raw(block []byte) uint32 {
	var raw uint32
	switch f.width() {
	case 1:
		raw = uint32(block[f.Offset])
	case 2:
		raw = uint32(binary.BigEndian.Uint16(block[f.Offset:]))
	case 4:
		raw = binary.BigEndian.Uint32(block[f.Offset:])
	default:
		panic(fmt.Sprintf("profile: field %s has unsupported width %d", f.Name, f.Width))
	}
	raw >>= f.Shift
	if f.Mask != 0 {
		raw &= f.Mask
	}
	return raw
}

// Int returns the field as an integer, applying sign but not scale.
func (f Field) Int(block []byte) int {
	raw := f.Raw(block)
	if f.Signed {
		return signExtend(raw, f.width())
	}
	return int(raw)
}

// Float returns the field as a scaled value.
func (f Field) Float(block []byte) float64 {
	v := float64(f.Int(block))
	if f.Scale != 0 {
		v /= f.Scale
	}
	return v
}

// Bool reports whether the field is non-zero.
func (f Field) Bool(block []byte) bool {
	return f.Raw(block) != 0
}

// Value returns the field in its natural Go type: float64 for scaled
// fields and int otherwise.
func (f Field) Value(block []byte) interface{} {
	if f.Scale != 0 {
		return f.Float(block)
	}
	return f.Int(block)
}

// signExtend treats raw as a two's-complement number over width bytes:
// values above the midpoint (0x7F, 0x7FFF) have the modulus subtracted.
func signExtend(raw uint32, width int) int {
	modulus := int64(1) << (8 * uint(width))
	v := int64(raw)
	if v > modulus/2-1 {
		v -= modulus
	}
	return int(v)
}

// DecodeSigned converts a raw calibration byte or word to degrees.
func DecodeSigned(raw uint32, width int, scale float64) float64 {
	return float64(signExtend(raw, width)) / scale
}

// EncodeSigned converts degrees to a raw calibration byte or word.
// The scaled value is truncated toward zero, then reduced modulo the width.
func EncodeSigned(value float64, width int, scale float64) uint32 {
	modulus := int64(1) << (8 * uint(width))
	v := int64(ScaleToInt(value, scale))
	return uint32((v + modulus) & (modulus - 1))
}

// ScaleToInt multiplies value by scale and truncates toward zero.
// A small bias absorbs binary rounding so 2.3*10 yields 23, not 22.
func ScaleToInt(value, scale float64) int {
	x := value * scale
	return int(math.Trunc(x + math.Copysign(1e-9, x)))
}

// PackHour stores an enable flag in bit 7 above a 5-bit hour.
func PackHour(enabled bool, hour int) byte {
	b := byte(hour) & 0x1F
	if enabled {
		b |= 0x80
	}
	return b
}

// UnpackHour splits a packed hour byte into its enable flag and hour.
func UnpackHour(b byte) (bool, int) {
	return b&0x80 != 0, int(b & 0x1F)
}

// Layout is the field table of a status block.
type Layout struct {
	Name   string
	Length int
	Fields []Field
}

// Decode returns every field of block keyed by name.
func (l Layout) Decode(block []byte) (map[string]interface{}, error) {
	if err := l.check(block); err != nil {
		return nil, err
	}
	values := make(map[string]interface{}, len(l.Fields))
	for _, f := range l.Fields {
		values[f.Name] = f.Value(block)
	}
	return values, nil
}

// Field looks up a field by name.
func (l Layout) Field(name string) (Field, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (l Layout) check(block []byte) error {
	if len(block) < l.Length {
		return fmt.Errorf("%w: %s status has %d bytes, want %d",
			ErrTruncatedStatus, l.Name, len(block), l.Length)
	}
	return nil
}
