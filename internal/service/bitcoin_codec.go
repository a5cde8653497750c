package service

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/multichain-tx/internal/bitcoin"
	"github.com/goodnatureofminers/multichain-tx/internal/chain"
)

type (
	// TransactionTemplate describes an unsigned transaction. Absent fields stay
	// unset on the builder, so Build reports the first one missing.
	TransactionTemplate struct {
		Version  *bitcoin.Version  `json:"version"`
		LockTime *bitcoin.LockTime `json:"lock_time"`
		Inputs   []InputTemplate   `json:"input"`
		Outputs  []OutputTemplate  `json:"output"`
	}
	// InputTemplate spends PreviousOutput. Sequence defaults to final.
	InputTemplate struct {
		PreviousOutput bitcoin.OutPoint   `json:"previous_output"`
		Sequence       *uint32            `json:"sequence,omitempty"`
		ScriptSig      bitcoin.HexBytes   `json:"script_sig,omitempty"`
		Witness        []bitcoin.HexBytes `json:"witness,omitempty"`
	}
	// OutputTemplate pays Value to Address, or to PkScript when no address is given.
	OutputTemplate struct {
		Value    btcutil.Amount   `json:"value"`
		Address  string           `json:"address,omitempty"`
		PkScript bitcoin.HexBytes `json:"script_pubkey,omitempty"`
	}
)

// BuiltTransaction is a built transaction with its raw encoding and id.
type BuiltTransaction struct {
	Transaction bitcoin.Transaction `json:"transaction"`
	Hex         string              `json:"hex"`
	TxID        string              `json:"txid"`
}

// BitcoinCodec builds, encodes and decodes unsigned Bitcoin transactions.
type BitcoinCodec struct {
	network chain.Network
	metrics Metrics
	logger  *zap.Logger
}

// NewBitcoinCodec constructs the codec for network, which is used to resolve
// output addresses.
func NewBitcoinCodec(network chain.Network, metrics Metrics, logger *zap.Logger) (*BitcoinCodec, error) {
	if _, err := bitcoin.ChainParams(network); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BitcoinCodec{network: network, metrics: metrics, logger: logger}, nil
}

// Build drives a bitcoin.Builder from tmpl and encodes the result.
func (c *BitcoinCodec) Build(tmpl TransactionTemplate) (built BuiltTransaction, err error) {
	started := time.Now()
	defer func() {
		c.observe("build", err, started)
	}()

	b := bitcoin.NewBuilder()
	if tmpl.Version != nil {
		b = b.Version(*tmpl.Version)
	}
	if tmpl.LockTime != nil {
		b = b.LockTime(*tmpl.LockTime)
	}
	if tmpl.Inputs != nil {
		b = b.Inputs(c.inputs(tmpl.Inputs))
	}
	if tmpl.Outputs != nil {
		outputs, err := c.outputs(tmpl.Outputs)
		if err != nil {
			c.logger.Error("resolve outputs failed", zap.Error(err))
			return BuiltTransaction{}, err
		}
		b = b.Outputs(outputs)
	}

	tx, err := b.Build()
	if err != nil {
		c.logger.Error("build transaction failed", zap.Error(err))
		return BuiltTransaction{}, fmt.Errorf("build transaction: %w", err)
	}

	built, err = c.describe(tx)
	if err != nil {
		return BuiltTransaction{}, err
	}
	c.logger.Debug("built transaction",
		zap.String("txid", built.TxID),
		zap.Int("inputs", len(tx.Inputs)),
		zap.Int("outputs", len(tx.Outputs)),
		zap.Int64("total_output", int64(tx.TotalOutput())))
	return built, nil
}

// Encode returns the raw transaction as hex.
func (c *BitcoinCodec) Encode(tx bitcoin.Transaction) (raw string, err error) {
	started := time.Now()
	defer func() {
		c.observe("encode", err, started)
	}()

	raw, err = tx.Hex()
	if err != nil {
		c.logger.Error("encode transaction failed", zap.Error(err))
		return "", fmt.Errorf("encode transaction: %w", err)
	}
	return raw, nil
}

// Decode parses a raw hex transaction.
func (c *BitcoinCodec) Decode(raw string) (built BuiltTransaction, err error) {
	started := time.Now()
	defer func() {
		c.observe("decode", err, started)
	}()

	tx, err := bitcoin.TransactionFromHex(raw)
	if err != nil {
		c.logger.Error("decode transaction failed", zap.Int("hex_len", len(raw)), zap.Error(err))
		return BuiltTransaction{}, fmt.Errorf("decode transaction: %w", err)
	}
	return c.describe(tx)
}

// OutputAddresses returns the addresses each output pays to. Outputs with
// non-standard scripts get an empty list.
func (c *BitcoinCodec) OutputAddresses(tx bitcoin.Transaction) ([][]string, error) {
	result := make([][]string, 0, len(tx.Outputs))
	for i, out := range tx.Outputs {
		addrs, err := bitcoin.OutputAddresses(out, c.network)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		result = append(result, addrs)
	}
	return result, nil
}

func (c *BitcoinCodec) describe(tx bitcoin.Transaction) (BuiltTransaction, error) {
	raw, err := tx.Hex()
	if err != nil {
		return BuiltTransaction{}, fmt.Errorf("encode transaction: %w", err)
	}
	hash, err := tx.TxHash()
	if err != nil {
		return BuiltTransaction{}, fmt.Errorf("hash transaction: %w", err)
	}
	return BuiltTransaction{Transaction: tx, Hex: raw, TxID: hash.String()}, nil
}

func (c *BitcoinCodec) inputs(tmpl []InputTemplate) []bitcoin.TxIn {
	inputs := make([]bitcoin.TxIn, 0, len(tmpl))
	for _, in := range tmpl {
		txIn := bitcoin.NewTxIn(in.PreviousOutput)
		if in.Sequence != nil {
			txIn.Sequence = *in.Sequence
		}
		txIn.SignatureScript = in.ScriptSig
		txIn.Witness = in.Witness
		inputs = append(inputs, txIn)
	}
	return inputs
}

func (c *BitcoinCodec) outputs(tmpl []OutputTemplate) ([]bitcoin.TxOut, error) {
	outputs := make([]bitcoin.TxOut, 0, len(tmpl))
	for i, out := range tmpl {
		if out.Value < 0 || out.Value > btcutil.MaxSatoshi {
			return nil, fmt.Errorf("output %d: value %d out of range", i, int64(out.Value))
		}
		switch {
		case out.Address != "":
			txOut, err := bitcoin.PayToAddress(out.Address, c.network, out.Value)
			if err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			outputs = append(outputs, txOut)
		case len(out.PkScript) > 0:
			if len(out.PkScript) > wire.MaxMessagePayload {
				return nil, fmt.Errorf("output %d: script too large", i)
			}
			outputs = append(outputs, bitcoin.TxOut{Value: out.Value, PkScript: out.PkScript})
		default:
			return nil, fmt.Errorf("output %d: address or script_pubkey required", i)
		}
	}
	return outputs, nil
}

func (c *BitcoinCodec) observe(operation string, err error, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.Observe(operation, err, started)
}
