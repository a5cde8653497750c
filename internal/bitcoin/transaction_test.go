package bitcoin

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransaction(t *testing.T, witness bool) Transaction {
	t.Helper()

	prev, err := chainhash.NewHashFromStr("4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b")
	require.NoError(t, err)

	in := NewTxIn(OutPoint{Hash: *prev, Index: 1})
	in.Sequence = wire.MaxTxInSequenceNum - 2
	if witness {
		in.Witness = []HexBytes{{0x30, 0x44}, {0x02, 0x21}}
	} else {
		in.SignatureScript = HexBytes{0x47, 0x30, 0x44}
	}

	tx, err := NewBuilder().
		Version(VersionTwo).
		LockTime(mustLockTime(t, 840000)).
		Inputs([]TxIn{in}).
		Outputs([]TxOut{
			{Value: 150_000_000, PkScript: HexBytes{0x00, 0x14, 0x75, 0x1e}},
			{Value: 1, PkScript: HexBytes{0x6a}},
		}).
		Build()
	require.NoError(t, err)
	return tx
}

func TestTransaction_MatchesWireEncoding(t *testing.T) {
	for _, witness := range []bool{false, true} {
		tx := sampleTransaction(t, witness)

		got, err := tx.Bytes()
		require.NoError(t, err)

		var want bytes.Buffer
		require.NoError(t, tx.ToWire().Serialize(&want))
		assert.Equal(t, want.Bytes(), got, "witness=%v", witness)

		txid, err := tx.TxHash()
		require.NoError(t, err)
		assert.Equal(t, tx.ToWire().TxHash(), txid)

		wtxid, err := tx.WitnessHash()
		require.NoError(t, err)
		assert.Equal(t, tx.ToWire().WitnessHash(), wtxid)
	}
}

func TestTransaction_BinaryRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tx   Transaction
	}{
		{name: "legacy", tx: sampleTransaction(t, false)},
		{name: "segwit", tx: sampleTransaction(t, true)},
		{name: "no inputs or outputs", tx: Transaction{Version: VersionOne, LockTime: 10000, Inputs: []TxIn{}, Outputs: []TxOut{}}},
		{name: "no inputs one output", tx: Transaction{
			Version:  VersionOne,
			LockTime: 0,
			Inputs:   []TxIn{},
			Outputs:  []TxOut{{Value: 256, PkScript: HexBytes{0x6a, 0x04, 0xde, 0xad, 0xbe, 0xef}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.tx.Hex()
			require.NoError(t, err)

			got, err := TransactionFromHex(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.tx, got)

			msg := wire.NewMsgTx(0)
			if len(tt.tx.Inputs) > 0 {
				b, _ := hex.DecodeString(raw)
				require.NoError(t, msg.Deserialize(bytes.NewReader(b)))
				assert.Equal(t, tt.tx, TransactionFromWire(msg))
			}
		})
	}
}

func TestTransaction_EmptyLayout(t *testing.T) {
	tx := Transaction{Version: VersionOne, LockTime: 10000, Inputs: []TxIn{}, Outputs: []TxOut{}}

	raw, err := tx.Hex()
	require.NoError(t, err)
	assert.Equal(t, "0100000000001027"+"0000", raw)
}

func TestTransactionFromHex_NoInputsIsLegacy(t *testing.T) {
	got, err := TransactionFromHex("0100000000010001000000000000066a04deadbeef00000000")
	require.NoError(t, err)

	assert.Empty(t, got.Inputs)
	require.Len(t, got.Outputs, 1)
	assert.Equal(t, TxOut{Value: 256, PkScript: HexBytes{0x6a, 0x04, 0xde, 0xad, 0xbe, 0xef}}, got.Outputs[0])
}

func TestDeserializeTransaction_WitnessWithoutData(t *testing.T) {
	emptyStack := []byte{1, 0, 0, 0, 0, 1, 1}
	emptyStack = append(emptyStack, make([]byte, 36)...)
	emptyStack = append(emptyStack, 0, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0, 0)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "no inputs after marker", data: []byte{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0}},
		{name: "empty witness stacks", data: emptyStack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeTransaction(bytes.NewReader(tt.data))
			if !errors.Is(err, ErrEmptyWitness) {
				t.Fatalf("DeserializeTransaction() error = %v, want %v", err, ErrEmptyWitness)
			}
		})
	}
}

func TestDeserializeTransaction_ValueRange(t *testing.T) {
	data := []byte{1, 0, 0, 0, 0, 1, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0, 0, 0, 0, 0}

	_, err := DeserializeTransactionNoWitness(bytes.NewReader(data))
	if !errors.Is(err, ErrValueRange) {
		t.Fatalf("DeserializeTransactionNoWitness() error = %v, want %v", err, ErrValueRange)
	}
	if _, err := TransactionFromBytes(data); err == nil {
		t.Fatalf("TransactionFromBytes() expected value range error")
	}

	negative := Transaction{Version: VersionOne, Inputs: []TxIn{}, Outputs: []TxOut{{Value: -1}}}
	if _, err := negative.Bytes(); !errors.Is(err, ErrValueRange) {
		t.Fatalf("Bytes() error = %v, want %v", err, ErrValueRange)
	}
}

func TestDeserializeTransaction_Errors(t *testing.T) {
	tx := sampleTransaction(t, true)
	full, err := tx.Bytes()
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{name: "truncated version", data: full[:2], wantErr: io.ErrUnexpectedEOF},
		{name: "truncated lock time", data: full[:len(full)-1], wantErr: io.ErrUnexpectedEOF},
		{name: "bad witness flag", data: []byte{1, 0, 0, 0, 0, 2, 0, 0, 0, 0, 0}, wantErr: ErrInvalidWitnessFlag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeTransaction(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("DeserializeTransaction() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := TransactionFromBytes(append(full, 0x00)); err == nil {
		t.Fatalf("TransactionFromBytes() expected trailing bytes error")
	}
}

func TestTransaction_JSONRoundTrip(t *testing.T) {
	tx := sampleTransaction(t, true)

	data, err := json.Marshal(tx)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.JSONEq(t, `2`, string(fields["version"]))
	assert.JSONEq(t, `840000`, string(fields["lock_time"]))
	assert.Contains(t, string(fields["input"]), `"previous_output":"4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:1"`)
	assert.Contains(t, string(fields["output"]), `"script_pubkey":"0014751e"`)

	var got Transaction
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, tx, got)
}

func TestOutPoint_UnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{name: "valid", text: "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b:0"},
		{name: "missing vout", text: "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b", wantErr: true},
		{name: "bad vout", text: "00:x", wantErr: true},
		{name: "bad txid", text: "zz:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var o OutPoint
			err := o.UnmarshalText([]byte(tt.text))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && o.String() != tt.text {
				t.Fatalf("UnmarshalText() got = %s, want %s", o.String(), tt.text)
			}
		})
	}
}
