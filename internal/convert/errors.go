package convert

import (
	"fmt"

	"github.com/funvibe/mmbconv/internal/opcode"
)

// List of conversion failures for Errno
const (
	InvalidTermIndex = Errno(iota)
	StackUnderflow
	HeapOrderMismatch
)

var strError = []string{
	"invalid term index",
	"evaluation stack underflow",
	"heap slot order mismatch",
}

// Errno describes why a conversion was aborted.
type Errno int

func (e Errno) Error() string {
	return strError[e]
}

// ErrInvalidTermIndex matches any error raised for a term id the arity lookup
// cannot resolve.
var ErrInvalidTermIndex error = InvalidTermIndex

// ConversionError describes the cause and the context of an aborted conversion.
type ConversionError struct {
	Errno   Errno        // nature of the failure
	Pos     int          // index of the offending command in the input stream, -1 if none
	Opcode  opcode.Unify // offending unify command, when Pos >= 0
	Operand uint32       // term id, or heap slot for HeapOrderMismatch
}

func (e *ConversionError) Error() string {
	switch e.Errno {
	case InvalidTermIndex:
		return fmt.Sprintf("convert: %s %d at command %d (%s)", e.Errno, e.Operand, e.Pos, e.Opcode)
	case StackUnderflow:
		return fmt.Sprintf("convert: %s at command %d (%s %d)", e.Errno, e.Pos, e.Opcode, e.Operand)
	default:
		return fmt.Sprintf("convert: %s at heap slot %d", e.Errno, e.Operand)
	}
}

func (e *ConversionError) Unwrap() error {
	return e.Errno
}
