// Package bitcoin models unsigned Bitcoin transactions and their consensus encoding.
package bitcoin

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// Version is the transaction version field.
//
// Only versions 1 and 2 are standard (BIP-68), but any int32 is a valid value:
// non-standard versions encode fine and are merely not relayed by the network.
type Version int32

const (
	// VersionOne is the original transaction version.
	VersionOne Version = 1
	// VersionTwo enables BIP-68 relative lock times.
	VersionTwo Version = 2
)

// VersionSize is the encoded width of a Version.
const VersionSize = 4

// Encode writes v as 4 little-endian bytes.
func (v Version) Encode(w io.Writer) error {
	var buf [VersionSize]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("encode version: %w", err)
	}
	return nil
}

// DecodeVersion reads exactly 4 little-endian bytes.
func DecodeVersion(r io.Reader) (Version, error) {
	var buf [VersionSize]byte
	if err := readFixed(r, "version", buf[:]); err != nil {
		return 0, err
	}
	return Version(int32(binary.LittleEndian.Uint32(buf[:]))), nil
}

// Bytes returns the encoded form.
func (v Version) Bytes() []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(v))
}

// Hex returns the encoded form as lowercase hex.
func (v Version) Hex() string {
	return hex.EncodeToString(v.Bytes())
}

// IsStandard reports whether relay policy accepts the version.
func (v Version) IsStandard() bool {
	return v == VersionOne || v == VersionTwo
}
