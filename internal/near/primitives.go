// Package near models NEAR transaction actions and their two encodings: a tagged
// JSON form for interchange and the canonical borsh form that signatures commit to.
package near

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"strconv"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
)

const (
	minAccountIDLen = 2
	maxAccountIDLen = 64
)

// AccountID is a NEAR account name such as "alice.near".
type AccountID string

// ParseAccountID validates s against the NEAR account naming rules.
func ParseAccountID(s string) (AccountID, error) {
	id := AccountID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks the length bounds and that the name is lowercase alphanumeric
// parts joined by single '.', '-' or '_' separators.
func (id AccountID) Validate() error {
	if len(id) < minAccountIDLen || len(id) > maxAccountIDLen {
		return fmt.Errorf("%w: %q length %d not in [%d, %d]", ErrInvalidAccountID, string(id), len(id), minAccountIDLen, maxAccountIDLen)
	}
	lastSeparator := true
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			lastSeparator = false
		case c == '-' || c == '_' || c == '.':
			if lastSeparator {
				return fmt.Errorf("%w: %q has a misplaced separator at %d", ErrInvalidAccountID, string(id), i)
			}
			lastSeparator = true
		default:
			return fmt.Errorf("%w: %q has invalid character %q", ErrInvalidAccountID, string(id), c)
		}
	}
	if lastSeparator {
		return fmt.Errorf("%w: %q ends with a separator", ErrInvalidAccountID, string(id))
	}
	return nil
}

func (id AccountID) String() string {
	return string(id)
}

func (id AccountID) MarshalText() ([]byte, error) {
	return []byte(id), nil
}

func (id *AccountID) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// U64 is a 64-bit amount whose text form is a decimal string, so it survives JSON
// consumers limited to 53-bit numbers.
type U64 uint64

func (u U64) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(u), 10), nil
}

func (u *U64) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		return fmt.Errorf("near: parse u64: %w", err)
	}
	*u = U64(v)
	return nil
}

// U128 is an unsigned 128-bit amount, such as a yoctoNEAR balance.
type U128 struct {
	v uint256.Int
}

// NewU128 returns v as a U128.
func NewU128(v uint64) U128 {
	var u U128
	u.v.SetUint64(v)
	return u
}

// U128FromHalves builds a value from its low and high 64-bit words.
func U128FromHalves(lo, hi uint64) U128 {
	var u U128
	u.v[0], u.v[1] = lo, hi
	return u
}

// ParseU128 parses a decimal string.
func ParseU128(s string) (U128, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return U128{}, fmt.Errorf("near: parse u128 %q: %w", s, err)
	}
	if v.BitLen() > 128 {
		return U128{}, fmt.Errorf("%w: %s", ErrU128Overflow, s)
	}
	return U128{v: *v}, nil
}

// U128FromBig converts a non-negative big integer below 2^128.
func U128FromBig(b *big.Int) (U128, error) {
	if b.Sign() < 0 {
		return U128{}, fmt.Errorf("near: negative u128 %s", b)
	}
	v, overflow := uint256.FromBig(b)
	if overflow || v.BitLen() > 128 {
		return U128{}, fmt.Errorf("%w: %s", ErrU128Overflow, b)
	}
	return U128{v: *v}, nil
}

// Halves returns the low and high 64-bit words.
func (u U128) Halves() (lo, hi uint64) {
	return u.v[0], u.v[1]
}

// Big returns the value as a big integer.
func (u U128) Big() *big.Int {
	return u.v.ToBig()
}

// Uint64 returns the value and whether it fits in 64 bits.
func (u U128) Uint64() (uint64, bool) {
	return u.v.Uint64(), u.v.IsUint64()
}

// IsZero reports whether the value is zero.
func (u U128) IsZero() bool {
	return u.v.IsZero()
}

func (u U128) String() string {
	return u.v.Dec()
}

func (u U128) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *U128) UnmarshalText(text []byte) error {
	parsed, err := ParseU128(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// CryptoHashSize is the length of a NEAR hash.
const CryptoHashSize = 32

// CryptoHash is a 32-byte SHA-256 digest, written as base58 in text form.
type CryptoHash [CryptoHashSize]byte

func (h CryptoHash) String() string {
	return base58.Encode(h[:])
}

func (h CryptoHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *CryptoHash) UnmarshalText(text []byte) error {
	b, err := base58.Decode(string(text))
	if err != nil {
		return fmt.Errorf("near: decode hash: %w", err)
	}
	if len(b) != CryptoHashSize {
		return fmt.Errorf("near: hash length %d, want %d", len(b), CryptoHashSize)
	}
	copy(h[:], b)
	return nil
}

// Base64VecU8 is a byte vector written as standard base64 in text form, used for
// contract code.
type Base64VecU8 []byte

func (b Base64VecU8) MarshalText() ([]byte, error) {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(b)))
	base64.StdEncoding.Encode(out, b)
	return out, nil
}

func (b *Base64VecU8) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*b = nil
		return nil
	}
	out := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(out, text)
	if err != nil {
		return fmt.Errorf("near: decode base64: %w", err)
	}
	*b = out[:n]
	return nil
}
