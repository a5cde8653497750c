package borsh

import (
	"encoding/binary"
	"fmt"

	"github.com/goodnatureofminers/multichain-tx/pkg/safe"
)

// Writer accumulates an encoding. The first error is sticky: later writes are
// ignored and Finish reports it.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// U8 writes a single byte, used for enum discriminants and key types.
func (w *Writer) U8(v uint8) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, v)
}

// U32 writes v as 4 little-endian bytes.
func (w *Writer) U32(v uint32) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// U64 writes v as 8 little-endian bytes.
func (w *Writer) U64(v uint64) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// U128 writes a 128-bit value given as its low and high 64-bit halves.
func (w *Writer) U128(lo, hi uint64) {
	w.U64(lo)
	w.U64(hi)
}

// Fixed writes b verbatim, for fixed-size arrays.
func (w *Writer) Fixed(b []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, b...)
}

// Bytes writes a u32 length prefix followed by b.
func (w *Writer) Bytes(b []byte) {
	w.Len(len(b))
	w.Fixed(b)
}

// String writes a u32 byte-length prefix followed by the UTF-8 bytes of s.
func (w *Writer) String(s string) {
	w.Len(len(s))
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, s...)
}

// Len writes a collection length as a u32 prefix.
func (w *Writer) Len(n int) {
	if w.err != nil {
		return
	}
	l, err := safe.Uint32(n)
	if err != nil {
		w.err = fmt.Errorf("borsh: length prefix: %w", err)
		return
	}
	w.U32(l)
}

// Option writes the option tag: 1 when present, 0 otherwise.
func (w *Writer) Option(present bool) {
	if present {
		w.U8(1)
		return
	}
	w.U8(0)
}

// Fail records err unless an earlier error is already recorded.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Err returns the first recorded error.
func (w *Writer) Err() error {
	return w.err
}

// Finish returns the encoded bytes or the first recorded error.
func (w *Writer) Finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}
