package bitcoin

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrMissingField matches every *MissingFieldError.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidLockTime reports a height or time outside its half of the lock time range.
	ErrInvalidLockTime = errors.New("invalid lock time")
	// ErrValueRange reports an output value above the total money supply.
	ErrValueRange = errors.New("output value out of range")
)

// MissingFieldError is returned by Builder.Build when a required field was never set.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("build transaction: missing %s", e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// TruncatedError reports a fixed-width field that ran out of input.
type TruncatedError struct {
	Field string
	Need  int
	Have  int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("decode %s: need %d bytes, have %d", e.Field, e.Need, e.Have)
}

// Unwrap makes truncation match io.ErrUnexpectedEOF.
func (e *TruncatedError) Unwrap() error {
	return io.ErrUnexpectedEOF
}

// readFixed reads exactly len(buf) bytes for field, reporting a short read as *TruncatedError.
func readFixed(r io.Reader, field string, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &TruncatedError{Field: field, Need: len(buf), Have: n}
	}
	return fmt.Errorf("decode %s: %w", field, err)
}
