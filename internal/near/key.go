package near

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// KeyType is the curve of a key or signature. Its value is the borsh tag.
type KeyType uint8

const (
	ED25519   KeyType = 0
	SECP256K1 KeyType = 1
)

var keyTypeNames = map[KeyType]string{
	ED25519:   "ed25519",
	SECP256K1: "secp256k1",
}

func (k KeyType) String() string {
	if name, ok := keyTypeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KeyType(%d)", uint8(k))
}

func parseKeyType(name string) (KeyType, error) {
	for k, n := range keyTypeNames {
		if n == name {
			return k, nil
		}
	}
	return 0, &UnknownVariantError{Type: "KeyType", Value: name}
}

func publicKeyLen(k KeyType) (int, error) {
	switch k {
	case ED25519:
		return 32, nil
	case SECP256K1:
		return 64, nil
	default:
		return 0, &UnknownVariantError{Type: "KeyType", Value: fmt.Sprint(uint8(k))}
	}
}

func signatureLen(k KeyType) (int, error) {
	switch k {
	case ED25519:
		return 64, nil
	case SECP256K1:
		return 65, nil
	default:
		return 0, &UnknownVariantError{Type: "KeyType", Value: fmt.Sprint(uint8(k))}
	}
}

// PublicKey is a curve-tagged public key. Text form is "<curve>:<base58>".
type PublicKey struct {
	Type KeyType
	Data []byte
}

// NewPublicKey checks the key length for the curve.
func NewPublicKey(k KeyType, data []byte) (PublicKey, error) {
	want, err := publicKeyLen(k)
	if err != nil {
		return PublicKey{}, err
	}
	if len(data) != want {
		return PublicKey{}, fmt.Errorf("%w: %s public key is %d bytes, want %d", ErrInvalidKey, k, len(data), want)
	}
	return PublicKey{Type: k, Data: append([]byte(nil), data...)}, nil
}

// ParsePublicKey parses "<curve>:<base58>". A key without a curve prefix is ed25519.
func ParsePublicKey(s string) (PublicKey, error) {
	k, data, err := parseCurveString(s)
	if err != nil {
		return PublicKey{}, err
	}
	return NewPublicKey(k, data)
}

func (p PublicKey) String() string {
	return p.Type.String() + ":" + base58.Encode(p.Data)
}

func (p PublicKey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := ParsePublicKey(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Signature is a curve-tagged signature produced by an external signer.
// It is carried, never verified, by this package.
type Signature struct {
	Type KeyType
	Data []byte
}

// NewSignature checks the signature length for the curve.
func NewSignature(k KeyType, data []byte) (Signature, error) {
	want, err := signatureLen(k)
	if err != nil {
		return Signature{}, err
	}
	if len(data) != want {
		return Signature{}, fmt.Errorf("%w: %s signature is %d bytes, want %d", ErrInvalidKey, k, len(data), want)
	}
	return Signature{Type: k, Data: append([]byte(nil), data...)}, nil
}

// ParseSignature parses "<curve>:<base58>".
func ParseSignature(s string) (Signature, error) {
	k, data, err := parseCurveString(s)
	if err != nil {
		return Signature{}, err
	}
	return NewSignature(k, data)
}

func (s Signature) String() string {
	return s.Type.String() + ":" + base58.Encode(s.Data)
}

func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Signature) UnmarshalText(text []byte) error {
	parsed, err := ParseSignature(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func parseCurveString(s string) (KeyType, []byte, error) {
	k := ED25519
	encoded := s
	if curve, rest, ok := strings.Cut(s, ":"); ok {
		parsed, err := parseKeyType(curve)
		if err != nil {
			return 0, nil, err
		}
		k, encoded = parsed, rest
	}
	data, err := base58.Decode(encoded)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return k, data, nil
}
