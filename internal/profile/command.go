package profile

import (
	"encoding/binary"
	"fmt"

	"github.com/muurk/hysenctl/internal/protocol"
)

// Command is a single register operation. Commands are values and are never
// modified after they are built.
type Command struct {
	Name    string
	Op      byte
	Address uint16
	Words   uint16 // read and block write
	Value   uint16 // word write
	Data    []byte // block write
}

// ReadBlock builds a register read.
func ReadBlock(name string, address, words uint16) Command {
	return Command{Name: name, Op: protocol.OpReadBlock, Address: address, Words: words}
}

// WriteWord builds a single register write from its high and low bytes.
func WriteWord(name string, address uint16, hi, lo byte) Command {
	return Command{Name: name, Op: protocol.OpWriteWord, Address: address, Value: uint16(hi)<<8 | uint16(lo)}
}

// WriteBlock builds a multi-register write. data must hold an even number of
// bytes.
func WriteBlock(name string, address uint16, data []byte) Command {
	return Command{
		Name:    name,
		Op:      protocol.OpWriteBlock,
		Address: address,
		Words:   uint16(len(data) / 2),
		Data:    append([]byte(nil), data...),
	}
}

// Payload returns the exact envelope payload for the command.
func (c Command) Payload() []byte {
	p := []byte{protocol.SlaveAddress, c.Op}
	p = binary.BigEndian.AppendUint16(p, c.Address)

	switch c.Op {
	case protocol.OpWriteWord:
		p = binary.BigEndian.AppendUint16(p, c.Value)
	case protocol.OpWriteBlock:
		p = binary.BigEndian.AppendUint16(p, c.Words)
		p = append(p, byte(len(c.Data)))
		p = append(p, c.Data...)
	default:
		p = binary.BigEndian.AppendUint16(p, c.Words)
	}
	return p
}

// String returns a short description for logs
func (c Command) String() string {
	switch c.Op {
	case protocol.OpWriteWord:
		return fmt.Sprintf("%s: write 0x%04x = 0x%04x", c.Name, c.Address, c.Value)
	case protocol.OpWriteBlock:
		return fmt.Sprintf("%s: write %d words at 0x%04x [% x]", c.Name, c.Words, c.Address, c.Data)
	default:
		return fmt.Sprintf("%s: read %d words at 0x%04x", c.Name, c.Words, c.Address)
	}
}
