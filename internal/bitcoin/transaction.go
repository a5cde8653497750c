package bitcoin

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	witnessMarker = 0x00
	witnessFlag   = 0x01
)

var (
	// ErrInvalidWitnessFlag reports a segwit marker that is not followed by flag 0x01.
	ErrInvalidWitnessFlag = errors.New("invalid witness flag")
	// ErrEmptyWitness reports a BIP-144 encoding without inputs or without any
	// witness data, which the layout forbids.
	ErrEmptyWitness = errors.New("witness encoding without witness data")
)

// Transaction is an unsigned Bitcoin transaction. Values are produced by Builder
// or by decoding and are not modified afterwards.
type Transaction struct {
	Version  Version  `json:"version"`
	LockTime LockTime `json:"lock_time"`
	Inputs   []TxIn   `json:"input"`
	Outputs  []TxOut  `json:"output"`
}

// HasWitness reports whether any input carries witness data.
func (tx Transaction) HasWitness() bool {
	for _, in := range tx.Inputs {
		if len(in.Witness) > 0 {
			return true
		}
	}
	return false
}

// Serialize writes the consensus encoding, using the BIP-144 layout when any
// input carries witness data.
func (tx Transaction) Serialize(w io.Writer) error {
	return tx.serialize(w, tx.HasWitness())
}

// SerializeNoWitness writes the legacy encoding that the txid commits to.
func (tx Transaction) SerializeNoWitness(w io.Writer) error {
	return tx.serialize(w, false)
}

func (tx Transaction) serialize(w io.Writer, witness bool) error {
	if err := tx.Version.Encode(w); err != nil {
		return err
	}
	if witness {
		if _, err := w.Write([]byte{witnessMarker, witnessFlag}); err != nil {
			return fmt.Errorf("encode witness marker: %w", err)
		}
	}

	if err := wire.WriteVarInt(w, wire.ProtocolVersion, uint64(len(tx.Inputs))); err != nil {
		return fmt.Errorf("encode input count: %w", err)
	}
	for i, in := range tx.Inputs {
		if err := writeTxIn(w, in); err != nil {
			return fmt.Errorf("encode input %d: %w", i, err)
		}
	}

	if err := wire.WriteVarInt(w, wire.ProtocolVersion, uint64(len(tx.Outputs))); err != nil {
		return fmt.Errorf("encode output count: %w", err)
	}
	for i, out := range tx.Outputs {
		if err := writeTxOut(w, out); err != nil {
			return fmt.Errorf("encode output %d: %w", i, err)
		}
	}

	if witness {
		for i, in := range tx.Inputs {
			if err := writeWitness(w, in.Witness); err != nil {
				return fmt.Errorf("encode input %d witness: %w", i, err)
			}
		}
	}

	return tx.LockTime.Encode(w)
}

// DeserializeTransaction reads a transaction in either the legacy or the BIP-144 layout.
// A zero input count is read as the segwit marker, as btcd does.
func DeserializeTransaction(r io.Reader) (Transaction, error) {
	return deserialize(r, true)
}

// DeserializeTransactionNoWitness reads the legacy layout only, which is the one
// way to decode a transaction without inputs.
func DeserializeTransactionNoWitness(r io.Reader) (Transaction, error) {
	return deserialize(r, false)
}

func deserialize(r io.Reader, allowWitness bool) (Transaction, error) {
	version, err := DecodeVersion(r)
	if err != nil {
		return Transaction{}, err
	}

	inCount, err := wire.ReadVarInt(r, wire.ProtocolVersion)
	if err != nil {
		return Transaction{}, fmt.Errorf("decode input count: %w", err)
	}

	witness := false
	if allowWitness && inCount == witnessMarker {
		var flag [1]byte
		if err := readFixed(r, "witness flag", flag[:]); err != nil {
			return Transaction{}, err
		}
		if flag[0] != witnessFlag {
			return Transaction{}, fmt.Errorf("%w: 0x%02x", ErrInvalidWitnessFlag, flag[0])
		}
		witness = true
		if inCount, err = wire.ReadVarInt(r, wire.ProtocolVersion); err != nil {
			return Transaction{}, fmt.Errorf("decode input count: %w", err)
		}
		if inCount == 0 {
			return Transaction{}, fmt.Errorf("decode input count: %w", ErrEmptyWitness)
		}
	}
	if inCount > maxTxInPerMessage {
		return Transaction{}, fmt.Errorf("input count %d exceeds %d", inCount, maxTxInPerMessage)
	}

	inputs := make([]TxIn, 0, inCount)
	for i := 0; i < int(inCount); i++ {
		in, err := readTxIn(r, i)
		if err != nil {
			return Transaction{}, err
		}
		inputs = append(inputs, in)
	}

	outCount, err := wire.ReadVarInt(r, wire.ProtocolVersion)
	if err != nil {
		return Transaction{}, fmt.Errorf("decode output count: %w", err)
	}
	if outCount > maxTxOutPerMessage {
		return Transaction{}, fmt.Errorf("output count %d exceeds %d", outCount, maxTxOutPerMessage)
	}
	outputs := make([]TxOut, 0, outCount)
	for i := 0; i < int(outCount); i++ {
		out, err := readTxOut(r, i)
		if err != nil {
			return Transaction{}, err
		}
		outputs = append(outputs, out)
	}

	if witness {
		for i := range inputs {
			if inputs[i].Witness, err = readWitness(r, i); err != nil {
				return Transaction{}, err
			}
		}
		if !(Transaction{Inputs: inputs}).HasWitness() {
			return Transaction{}, ErrEmptyWitness
		}
	}

	lockTime, err := DecodeLockTime(r)
	if err != nil {
		return Transaction{}, err
	}

	return Transaction{
		Version:  version,
		LockTime: lockTime,
		Inputs:   inputs,
		Outputs:  outputs,
	}, nil
}

// TransactionFromBytes decodes b and fails if bytes remain after the transaction.
// Input that does not parse in the BIP-144 layout is retried in the legacy layout,
// which covers transactions without inputs.
func TransactionFromBytes(b []byte) (Transaction, error) {
	tx, err := transactionFromBytes(b, true)
	if err == nil {
		return tx, nil
	}
	if legacy, legacyErr := transactionFromBytes(b, false); legacyErr == nil {
		return legacy, nil
	}
	return Transaction{}, err
}

func transactionFromBytes(b []byte, allowWitness bool) (Transaction, error) {
	r := bytes.NewReader(b)
	tx, err := deserialize(r, allowWitness)
	if err != nil {
		return Transaction{}, err
	}
	if r.Len() != 0 {
		return Transaction{}, fmt.Errorf("decode transaction: %d trailing bytes", r.Len())
	}
	return tx, nil
}

// TransactionFromHex decodes a hex encoded transaction.
func TransactionFromHex(s string) (Transaction, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Transaction{}, fmt.Errorf("decode transaction hex: %w", err)
	}
	return TransactionFromBytes(b)
}

// Bytes returns the consensus encoding.
func (tx Transaction) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hex returns the consensus encoding as lowercase hex.
func (tx Transaction) Hex() (string, error) {
	b, err := tx.Bytes()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// TxHash returns the txid: double SHA-256 of the encoding without witness data.
func (tx Transaction) TxHash() (chainhash.Hash, error) {
	var buf bytes.Buffer
	if err := tx.SerializeNoWitness(&buf); err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.DoubleHashH(buf.Bytes()), nil
}

// WitnessHash returns the wtxid. It equals TxHash when no input has witness data.
func (tx Transaction) WitnessHash() (chainhash.Hash, error) {
	b, err := tx.Bytes()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.DoubleHashH(b), nil
}

// TotalOutput sums the output values.
func (tx Transaction) TotalOutput() btcutil.Amount {
	var total btcutil.Amount
	for _, out := range tx.Outputs {
		total += out.Value
	}
	return total
}

// ToWire converts tx to a btcd message, for sighash computation with txscript.
func (tx Transaction) ToWire() *wire.MsgTx {
	msg := wire.NewMsgTx(int32(tx.Version))
	msg.LockTime = uint32(tx.LockTime)
	for _, in := range tx.Inputs {
		txIn := &wire.TxIn{
			PreviousOutPoint: wire.OutPoint{Hash: in.PreviousOutput.Hash, Index: in.PreviousOutput.Index},
			SignatureScript:  append([]byte(nil), in.SignatureScript...),
			Sequence:         in.Sequence,
		}
		for _, item := range in.Witness {
			txIn.Witness = append(txIn.Witness, append([]byte(nil), item...))
		}
		msg.AddTxIn(txIn)
	}
	for _, out := range tx.Outputs {
		msg.AddTxOut(wire.NewTxOut(int64(out.Value), append([]byte(nil), out.PkScript...)))
	}
	return msg
}

// TransactionFromWire copies a btcd message into a Transaction.
func TransactionFromWire(msg *wire.MsgTx) Transaction {
	tx := Transaction{
		Version:  Version(msg.Version),
		LockTime: LockTime(msg.LockTime),
		Inputs:   make([]TxIn, 0, len(msg.TxIn)),
		Outputs:  make([]TxOut, 0, len(msg.TxOut)),
	}
	for _, in := range msg.TxIn {
		txIn := TxIn{
			PreviousOutput:  OutPoint{Hash: in.PreviousOutPoint.Hash, Index: in.PreviousOutPoint.Index},
			SignatureScript: nonEmpty(in.SignatureScript),
			Sequence:        in.Sequence,
		}
		for _, item := range in.Witness {
			txIn.Witness = append(txIn.Witness, nonEmpty(item))
		}
		tx.Inputs = append(tx.Inputs, txIn)
	}
	for _, out := range msg.TxOut {
		tx.Outputs = append(tx.Outputs, TxOut{Value: btcutil.Amount(out.Value), PkScript: nonEmpty(out.PkScript)})
	}
	return tx
}

func nonEmpty(b []byte) HexBytes {
	if len(b) == 0 {
		return nil
	}
	return append(HexBytes(nil), b...)
}
