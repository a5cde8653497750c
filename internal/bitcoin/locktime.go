package bitcoin

import (
	"encoding/binary"
	"fmt"
	"io"
)

// LockTimeThreshold splits the lock time range: values below it are block heights,
// values at or above it are unix timestamps.
const LockTimeThreshold = 500_000_000

// LockTime is the absolute lock time in its consensus representation.
type LockTime uint32

// LockTimeFromHeight returns a lock time that unlocks at block height.
func LockTimeFromHeight(height uint32) (LockTime, error) {
	if height >= LockTimeThreshold {
		return 0, fmt.Errorf("%w: height %d is not below %d", ErrInvalidLockTime, height, LockTimeThreshold)
	}
	return LockTime(height), nil
}

// LockTimeFromTime returns a lock time that unlocks at a unix timestamp.
func LockTimeFromTime(unix uint32) (LockTime, error) {
	if unix < LockTimeThreshold {
		return 0, fmt.Errorf("%w: time %d is below %d", ErrInvalidLockTime, unix, LockTimeThreshold)
	}
	return LockTime(unix), nil
}

// IsBlockHeight reports whether l is interpreted as a block height.
func (l LockTime) IsBlockHeight() bool {
	return l < LockTimeThreshold
}

// IsBlockTime reports whether l is interpreted as a unix timestamp.
func (l LockTime) IsBlockTime() bool {
	return !l.IsBlockHeight()
}

// Height returns the block height and true when l is height based.
func (l LockTime) Height() (uint32, bool) {
	return uint32(l), l.IsBlockHeight()
}

// Time returns the unix timestamp and true when l is time based.
func (l LockTime) Time() (uint32, bool) {
	return uint32(l), l.IsBlockTime()
}

// Encode writes the consensus value as 4 little-endian bytes.
func (l LockTime) Encode(w io.Writer) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(l))
	if _, err := w.Write(buf[:]); err != nil {
		return fmt.Errorf("encode lock time: %w", err)
	}
	return nil
}

// DecodeLockTime reads exactly 4 little-endian bytes.
func DecodeLockTime(r io.Reader) (LockTime, error) {
	var buf [4]byte
	if err := readFixed(r, "lock_time", buf[:]); err != nil {
		return 0, err
	}
	return LockTime(binary.LittleEndian.Uint32(buf[:])), nil
}

func (l LockTime) String() string {
	if l.IsBlockHeight() {
		return fmt.Sprintf("height %d", uint32(l))
	}
	return fmt.Sprintf("time %d", uint32(l))
}
