package near

import (
	"bytes"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePublicKey(t *testing.T) {
	t.Parallel()

	ed := bytes.Repeat([]byte{1}, 32)
	secp := bytes.Repeat([]byte{2}, 64)

	tests := []struct {
		name    string
		input   string
		want    PublicKey
		wantErr error
	}{
		{
			name:  "ed25519",
			input: "ed25519:" + base58.Encode(ed),
			want:  PublicKey{Type: ED25519, Data: ed},
		},
		{
			name:  "no curve prefix",
			input: base58.Encode(ed),
			want:  PublicKey{Type: ED25519, Data: ed},
		},
		{
			name:  "secp256k1",
			input: "secp256k1:" + base58.Encode(secp),
			want:  PublicKey{Type: SECP256K1, Data: secp},
		},
		{
			name:    "wrong length",
			input:   "secp256k1:" + base58.Encode(ed),
			wantErr: ErrInvalidKey,
		},
		{
			name:    "unknown curve",
			input:   "rsa:" + base58.Encode(ed),
			wantErr: ErrUnknownVariant,
		},
		{
			name:    "bad base58",
			input:   "ed25519:0OIl",
			wantErr: ErrInvalidKey,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePublicKey(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			text, err := got.MarshalText()
			require.NoError(t, err)
			var back PublicKey
			require.NoError(t, back.UnmarshalText(text))
			assert.Equal(t, got, back)
		})
	}
}

func TestSignature_Text(t *testing.T) {
	t.Parallel()

	sig, err := NewSignature(SECP256K1, bytes.Repeat([]byte{5}, 65))
	require.NoError(t, err)
	assert.True(t, len(sig.String()) > len("secp256k1:"))

	parsed, err := ParseSignature(sig.String())
	require.NoError(t, err)
	assert.Equal(t, sig, parsed)

	_, err = NewSignature(ED25519, make([]byte, 65))
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = NewSignature(KeyType(7), make([]byte, 64))
	assert.ErrorIs(t, err, ErrUnknownVariant)
	assert.Equal(t, "KeyType(7)", KeyType(7).String())
}
