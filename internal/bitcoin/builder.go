package bitcoin

import "github.com/goodnatureofminers/multichain-tx/internal/chain"

var _ chain.TxBuilder[Transaction] = Builder{}

// Builder accumulates the fields of a Transaction. Setters return an updated copy,
// so a Builder value can be chained and reused; calling a setter twice keeps the
// last value. A Builder is not safe for concurrent writers.
type Builder struct {
	version  *Version
	lockTime *LockTime
	inputs   []TxIn
	outputs  []TxOut

	inputsSet  bool
	outputsSet bool
}

// NewBuilder returns a Builder with no fields set.
func NewBuilder() Builder {
	return Builder{}
}

// Version sets the transaction version.
func (b Builder) Version(v Version) Builder {
	b.version = &v
	return b
}

// LockTime sets the absolute lock time.
func (b Builder) LockTime(l LockTime) Builder {
	b.lockTime = &l
	return b
}

// Inputs sets the ordered input list. An empty list counts as set.
func (b Builder) Inputs(inputs []TxIn) Builder {
	b.inputs = inputs
	b.inputsSet = true
	return b
}

// Outputs sets the ordered output list. An empty list counts as set.
func (b Builder) Outputs(outputs []TxOut) Builder {
	b.outputs = outputs
	b.outputsSet = true
	return b
}

// Build returns the transaction, or a *MissingFieldError naming the first unset
// field in the order version, lock_time, inputs, outputs. Only completeness is
// checked; values are not validated against each other.
func (b Builder) Build() (Transaction, error) {
	switch {
	case b.version == nil:
		return Transaction{}, &MissingFieldError{Field: "version"}
	case b.lockTime == nil:
		return Transaction{}, &MissingFieldError{Field: "lock_time"}
	case !b.inputsSet:
		return Transaction{}, &MissingFieldError{Field: "inputs"}
	case !b.outputsSet:
		return Transaction{}, &MissingFieldError{Field: "outputs"}
	}

	inputs := make([]TxIn, len(b.inputs))
	for i, in := range b.inputs {
		inputs[i] = cloneTxIn(in)
	}
	outputs := make([]TxOut, len(b.outputs))
	for i, out := range b.outputs {
		outputs[i] = TxOut{Value: out.Value, PkScript: cloneBytes(out.PkScript)}
	}

	return Transaction{
		Version:  *b.version,
		LockTime: *b.lockTime,
		Inputs:   inputs,
		Outputs:  outputs,
	}, nil
}

func cloneTxIn(in TxIn) TxIn {
	out := TxIn{
		PreviousOutput:  in.PreviousOutput,
		SignatureScript: cloneBytes(in.SignatureScript),
		Sequence:        in.Sequence,
	}
	if in.Witness != nil {
		out.Witness = make([]HexBytes, len(in.Witness))
		for i, item := range in.Witness {
			out.Witness[i] = cloneBytes(item)
		}
	}
	return out
}

func cloneBytes(b HexBytes) HexBytes {
	if b == nil {
		return nil
	}
	return append(HexBytes{}, b...)
}
