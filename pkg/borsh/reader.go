package borsh

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/goodnatureofminers/multichain-tx/pkg/safe"
)

// Reader decodes primitives from a byte slice. Decoding never reads past the
// input: a short field fails with *TruncatedError.
type Reader struct {
	data []byte
	off  int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Done fails with ErrTrailingBytes unless all input was consumed.
func (r *Reader) Done() error {
	if n := r.Remaining(); n != 0 {
		return fmt.Errorf("%w: %d left at offset %d", ErrTrailingBytes, n, r.off)
	}
	return nil
}

func (r *Reader) take(field string, n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, &TruncatedError{Field: field, Need: n, Have: r.Remaining()}
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// U8 reads a single byte.
func (r *Reader) U8(field string) (uint8, error) {
	b, err := r.take(field, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U32 reads 4 little-endian bytes.
func (r *Reader) U32(field string) (uint32, error) {
	b, err := r.take(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 reads 8 little-endian bytes.
func (r *Reader) U64(field string) (uint64, error) {
	b, err := r.take(field, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// U128 reads 16 little-endian bytes and returns the low and high halves.
func (r *Reader) U128(field string) (lo, hi uint64, err error) {
	b, err := r.take(field, 16)
	if err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]), nil
}

// Fixed reads exactly n bytes into a fresh slice.
func (r *Reader) Fixed(field string, n int) ([]byte, error) {
	b, err := r.take(field, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Len reads a u32 collection length. The length is not checked against the
// remaining input; element reads report truncation.
func (r *Reader) Len(field string) (int, error) {
	n, err := r.U32(field + " length")
	if err != nil {
		return 0, err
	}
	l, err := safe.Int(n)
	if err != nil {
		return 0, fmt.Errorf("decode %s length: %w", field, err)
	}
	return l, nil
}

// Bytes reads a u32 length prefix and that many bytes. An empty value decodes as nil.
func (r *Reader) Bytes(field string) ([]byte, error) {
	n, err := r.Len(field)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return r.Fixed(field, n)
}

// String reads a u32 length-prefixed UTF-8 string.
func (r *Reader) String(field string) (string, error) {
	n, err := r.Len(field)
	if err != nil {
		return "", err
	}
	b, err := r.take(field, n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%s: %w", field, ErrInvalidUTF8)
	}
	return string(b), nil
}

// Option reads an option tag and reports whether a value follows.
func (r *Reader) Option(field string) (bool, error) {
	tag, err := r.U8(field)
	if err != nil {
		return false, err
	}
	switch tag {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%s: %w %d", field, ErrInvalidOption, tag)
	}
}
