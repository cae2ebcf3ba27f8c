// Package stream reads and writes MMB command streams: the binary encoding,
// a line-oriented assembly form, a disassembler and the bundle container.
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/funvibe/mmbconv/internal/opcode"
)

// A command byte holds the opcode in its low 6 bits and the operand width in
// the high 2: 0 = no operand, 1 = u8, 2 = u16, 3 = u32, little-endian.
const (
	opMask    = 0x3F
	sizeShift = 6
)

var operandWidth = [4]int{0, 1, 2, 4}

var (
	ErrTruncated     = errors.New("truncated command")
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrOpcodeRange   = errors.New("opcode does not fit in 6 bits")
)

// Writer accumulates encoded commands
type Writer struct {
	// Code is the encoded stream so far
	Code []byte
}

// NewWriter creates an empty writer
func NewWriter() *Writer {
	return &Writer{Code: make([]byte, 0, 256)}
}

// Write appends one command using the narrowest operand width
func (w *Writer) Write(op byte, operand uint32) error {
	if op&^opMask != 0 {
		return fmt.Errorf("%w: %#x", ErrOpcodeRange, op)
	}
	switch {
	case operand == 0:
		w.Code = append(w.Code, op)
	case operand <= 0xFF:
		w.Code = append(w.Code, op|1<<sizeShift, byte(operand))
	case operand <= 0xFFFF:
		w.Code = append(w.Code, op|2<<sizeShift)
		w.Code = binary.LittleEndian.AppendUint16(w.Code, uint16(operand))
	default:
		w.Code = append(w.Code, op|3<<sizeShift)
		w.Code = binary.LittleEndian.AppendUint32(w.Code, operand)
	}
	return nil
}

// End terminates the stream
func (w *Writer) End() {
	w.Code = append(w.Code, 0)
}

// Len returns the number of bytes written
func (w *Writer) Len() int {
	return len(w.Code)
}

// Encode writes cmds followed by an END command.
func Encode[O opcode.Opcode](cmds []opcode.Command[O]) ([]byte, error) {
	w := NewWriter()
	for i, c := range cmds {
		if err := w.Write(byte(c.Opcode), c.Operand); err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
	}
	w.End()
	return w.Code, nil
}

// DecodeUnify reads unify commands up to and including END and returns them
// without the END, along with the number of bytes consumed.
func DecodeUnify(data []byte) ([]opcode.UnifyCommand, int, error) {
	return decode[opcode.Unify](data)
}

// DecodeProof is DecodeUnify for proof streams.
func DecodeProof(data []byte) ([]opcode.ProofCommand, int, error) {
	return decode[opcode.Proof](data)
}

func decode[O opcode.Opcode](data []byte) ([]opcode.Command[O], int, error) {
	var cmds []opcode.Command[O]
	offset := 0
	for offset < len(data) {
		b := data[offset]
		op := O(b & opMask)
		width := operandWidth[b>>sizeShift]
		if op == 0 {
			return cmds, offset + 1, nil
		}
		if !op.Valid() {
			return nil, offset, fmt.Errorf("%w %#x at offset %d", ErrUnknownOpcode, byte(op), offset)
		}
		if offset+1+width > len(data) {
			return nil, offset, fmt.Errorf("%w at offset %d: need %d operand bytes, have %d",
				ErrTruncated, offset, width, len(data)-offset-1)
		}
		operand := readOperand(data[offset+1 : offset+1+width])
		cmds = append(cmds, opcode.Command[O]{Opcode: op, Operand: operand})
		offset += 1 + width
	}
	return cmds, offset, nil
}

func readOperand(b []byte) uint32 {
	switch len(b) {
	case 1:
		return uint32(b[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(b))
	case 4:
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}
