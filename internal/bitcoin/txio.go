package bitcoin

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/multichain-tx/pkg/safe"
)

const (
	// minTxInPayload is outpoint(36) + script length varint(1) + sequence(4).
	minTxInPayload = 41
	// minTxOutPayload is value(8) + script length varint(1).
	minTxOutPayload = 9

	maxTxInPerMessage  = wire.MaxMessagePayload/minTxInPayload + 1
	maxTxOutPerMessage = wire.MaxMessagePayload/minTxOutPayload + 1
	maxWitnessItems    = 4_000_000
	maxScriptSize      = wire.MaxMessagePayload
)

// HexBytes is a byte string whose text form is lowercase hex.
type HexBytes []byte

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

func (h *HexBytes) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*h = nil
		return nil
	}
	b := make([]byte, hex.DecodedLen(len(text)))
	if _, err := hex.Decode(b, text); err != nil {
		return err
	}
	*h = b
	return nil
}

// OutPoint references an output of a previous transaction.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// String returns "<txid>:<vout>" with the txid in display byte order.
func (o OutPoint) String() string {
	return o.Hash.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

func (o OutPoint) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *OutPoint) UnmarshalText(text []byte) error {
	txid, vout, ok := strings.Cut(string(text), ":")
	if !ok {
		return fmt.Errorf("outpoint %q: expected <txid>:<vout>", text)
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return fmt.Errorf("outpoint txid: %w", err)
	}
	index, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return fmt.Errorf("outpoint vout: %w", err)
	}
	*o = OutPoint{Hash: *hash, Index: uint32(index)}
	return nil
}

// TxIn spends a previous output.
type TxIn struct {
	PreviousOutput  OutPoint   `json:"previous_output"`
	SignatureScript HexBytes   `json:"script_sig"`
	Sequence        uint32     `json:"sequence"`
	Witness         []HexBytes `json:"witness,omitempty"`
}

// NewTxIn returns an unsigned input spending prev with the final sequence number.
func NewTxIn(prev OutPoint) TxIn {
	return TxIn{PreviousOutput: prev, Sequence: wire.MaxTxInSequenceNum}
}

// TxOut locks value to a script.
type TxOut struct {
	Value    btcutil.Amount `json:"value"`
	PkScript HexBytes       `json:"script_pubkey"`
}

func writeTxIn(w io.Writer, in TxIn) error {
	if _, err := w.Write(in.PreviousOutput.Hash[:]); err != nil {
		return err
	}
	if err := writeUint32(w, in.PreviousOutput.Index); err != nil {
		return err
	}
	if err := wire.WriteVarBytes(w, wire.ProtocolVersion, in.SignatureScript); err != nil {
		return err
	}
	return writeUint32(w, in.Sequence)
}

func readTxIn(r io.Reader, index int) (TxIn, error) {
	var in TxIn
	if err := readFixed(r, fmt.Sprintf("input %d previous txid", index), in.PreviousOutput.Hash[:]); err != nil {
		return TxIn{}, err
	}
	vout, err := readUint32(r, fmt.Sprintf("input %d previous vout", index))
	if err != nil {
		return TxIn{}, err
	}
	in.PreviousOutput.Index = vout

	script, err := readScript(r, fmt.Sprintf("input %d script_sig", index))
	if err != nil {
		return TxIn{}, err
	}
	in.SignatureScript = script

	if in.Sequence, err = readUint32(r, fmt.Sprintf("input %d sequence", index)); err != nil {
		return TxIn{}, err
	}
	return in, nil
}

func writeWitness(w io.Writer, witness []HexBytes) error {
	if err := wire.WriteVarInt(w, wire.ProtocolVersion, uint64(len(witness))); err != nil {
		return err
	}
	for _, item := range witness {
		if err := wire.WriteVarBytes(w, wire.ProtocolVersion, item); err != nil {
			return err
		}
	}
	return nil
}

func readWitness(r io.Reader, index int) ([]HexBytes, error) {
	count, err := wire.ReadVarInt(r, wire.ProtocolVersion)
	if err != nil {
		return nil, fmt.Errorf("decode input %d witness count: %w", index, err)
	}
	if count > maxWitnessItems {
		return nil, fmt.Errorf("input %d witness count %d exceeds %d", index, count, maxWitnessItems)
	}
	if count == 0 {
		return nil, nil
	}
	witness := make([]HexBytes, 0, count)
	for i := uint64(0); i < count; i++ {
		item, err := readScript(r, fmt.Sprintf("input %d witness item %d", index, i))
		if err != nil {
			return nil, err
		}
		witness = append(witness, item)
	}
	return witness, nil
}

func writeTxOut(w io.Writer, out TxOut) error {
	value, err := safe.Uint64(out.Value)
	if err != nil {
		return fmt.Errorf("value %d: %w", int64(out.Value), ErrValueRange)
	}
	if err := writeUint64(w, value); err != nil {
		return err
	}
	return wire.WriteVarBytes(w, wire.ProtocolVersion, out.PkScript)
}

func readTxOut(r io.Reader, index int) (TxOut, error) {
	value, err := readUint64(r, fmt.Sprintf("output %d value", index))
	if err != nil {
		return TxOut{}, err
	}
	if value > uint64(btcutil.MaxSatoshi) {
		return TxOut{}, fmt.Errorf("decode output %d value %d: %w", index, value, ErrValueRange)
	}
	script, err := readScript(r, fmt.Sprintf("output %d script_pubkey", index))
	if err != nil {
		return TxOut{}, err
	}
	return TxOut{Value: btcutil.Amount(int64(value)), PkScript: script}, nil
}

func readScript(r io.Reader, field string) (HexBytes, error) {
	b, err := wire.ReadVarBytes(r, wire.ProtocolVersion, maxScriptSize, field)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", field, err)
	}
	if len(b) == 0 {
		return nil, nil
	}
	return b, nil
}

func writeUint32(w io.Writer, v uint32) error {
	_, err := w.Write(binary.LittleEndian.AppendUint32(nil, v))
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	_, err := w.Write(binary.LittleEndian.AppendUint64(nil, v))
	return err
}

func readUint32(r io.Reader, field string) (uint32, error) {
	var buf [4]byte
	if err := readFixed(r, field, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readUint64(r io.Reader, field string) (uint64, error) {
	var buf [8]byte
	if err := readFixed(r, field, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
