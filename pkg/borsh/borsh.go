// Package borsh implements the primitives of the borsh positional binary format:
// fixed-width little-endian integers, u32 length-prefixed byte strings and
// single-byte enum and option tags.
//
// Composite values are encoded by writing their fields in declaration order, with
// no names and no padding. Callers own the field order.
package borsh

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrTrailingBytes reports input left over after a complete value was decoded.
	ErrTrailingBytes = errors.New("borsh: trailing bytes after value")
	// ErrInvalidUTF8 reports a string field that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("borsh: string is not valid utf-8")
	// ErrInvalidOption reports an option tag other than 0 or 1.
	ErrInvalidOption = errors.New("borsh: invalid option tag")
)

// TruncatedError reports a field that needed more bytes than the input had left.
type TruncatedError struct {
	Field string
	Need  int
	Have  int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("borsh: truncated %s: need %d bytes, have %d", e.Field, e.Need, e.Have)
}

// Unwrap makes truncation match io.ErrUnexpectedEOF.
func (e *TruncatedError) Unwrap() error {
	return io.ErrUnexpectedEOF
}
