//go:generate mockgen -destination=mocks_test.go -package=near github.com/goodnatureofminers/multichain-tx/internal/chain Signer

package near

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"github.com/goodnatureofminers/multichain-tx/internal/chain"
	"github.com/goodnatureofminers/multichain-tx/pkg/borsh"
)

// DelegateSignaturePrefix is the borsh u32 written before a DelegateAction when
// computing the bytes a delegate signature commits to (NEP-366: 2^30 + 366).
const DelegateSignaturePrefix uint32 = 1<<30 + 366

// NewNonDelegateAction narrows a to a NonDelegateAction. It fails with
// ErrNestedDelegate for a SignedDelegateAction and ErrNilAction for nil.
func NewNonDelegateAction(a Action) (NonDelegateAction, error) {
	if a == nil {
		return nil, ErrNilAction
	}
	nd, ok := a.(NonDelegateAction)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrNestedDelegate, a.Kind())
	}
	return nd, nil
}

// DelegateAction is a batch of actions a relayer submits on behalf of SenderID
// (meta transaction).
type DelegateAction struct {
	SenderID       AccountID
	ReceiverID     AccountID
	Actions        []NonDelegateAction
	Nonce          U64
	MaxBlockHeight U64
	PublicKey      PublicKey
}

// NewDelegateAction narrows every action and fails on the first one that cannot
// be delegated.
func NewDelegateAction(sender, receiver AccountID, actions []Action, nonce, maxBlockHeight uint64, key PublicKey) (DelegateAction, error) {
	var narrowed []NonDelegateAction
	for i, a := range actions {
		nd, err := NewNonDelegateAction(a)
		if err != nil {
			return DelegateAction{}, fmt.Errorf("action %d: %w", i, err)
		}
		narrowed = append(narrowed, nd)
	}
	return DelegateAction{
		SenderID:       sender,
		ReceiverID:     receiver,
		Actions:        narrowed,
		Nonce:          U64(nonce),
		MaxBlockHeight: U64(maxBlockHeight),
		PublicKey:      key,
	}, nil
}

// SigningPayload returns the prefixed borsh encoding a delegate signature is made over.
func (d DelegateAction) SigningPayload() ([]byte, error) {
	w := borsh.NewWriter()
	w.U32(DelegateSignaturePrefix)
	writeDelegateAction(w, d)
	return w.Finish()
}

// Hash returns the SHA-256 of the signing payload.
func (d DelegateAction) Hash() (CryptoHash, error) {
	payload, err := d.SigningPayload()
	if err != nil {
		return CryptoHash{}, err
	}
	return sha256.Sum256(payload), nil
}

type delegateActionJSON struct {
	SenderID       AccountID         `json:"sender_id"`
	ReceiverID     AccountID         `json:"receiver_id"`
	Actions        []json.RawMessage `json:"actions"`
	Nonce          U64               `json:"nonce"`
	MaxBlockHeight U64               `json:"max_block_height"`
	PublicKey      PublicKey         `json:"public_key"`
}

func (d DelegateAction) MarshalJSON() ([]byte, error) {
	v := delegateActionJSON{
		SenderID:       d.SenderID,
		ReceiverID:     d.ReceiverID,
		Actions:        make([]json.RawMessage, 0, len(d.Actions)),
		Nonce:          d.Nonce,
		MaxBlockHeight: d.MaxBlockHeight,
		PublicKey:      d.PublicKey,
	}
	for i, a := range d.Actions {
		raw, err := MarshalActionJSON(a)
		if err != nil {
			return nil, fmt.Errorf("delegate action %d: %w", i, err)
		}
		v.Actions = append(v.Actions, raw)
	}
	return json.Marshal(v)
}

// UnmarshalJSON fails with ErrNestedDelegate when an inner action is a Delegate.
func (d *DelegateAction) UnmarshalJSON(data []byte) error {
	err := requireFields("DelegateAction", data,
		"sender_id", "receiver_id", "actions", "nonce", "max_block_height", "public_key")
	if err != nil {
		return err
	}
	var v delegateActionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var actions []NonDelegateAction
	for i, raw := range v.Actions {
		a, err := UnmarshalActionJSON(raw)
		if err != nil {
			return fmt.Errorf("delegate action %d: %w", i, err)
		}
		nd, err := NewNonDelegateAction(a)
		if err != nil {
			return fmt.Errorf("delegate action %d: %w", i, err)
		}
		actions = append(actions, nd)
	}
	*d = DelegateAction{
		SenderID:       v.SenderID,
		ReceiverID:     v.ReceiverID,
		Actions:        actions,
		Nonce:          v.Nonce,
		MaxBlockHeight: v.MaxBlockHeight,
		PublicKey:      v.PublicKey,
	}
	return nil
}

// SignedDelegateAction is a DelegateAction with the sender's signature. As an
// Action it is the Delegate variant.
type SignedDelegateAction struct {
	DelegateAction DelegateAction `json:"delegate_action"`
	Signature      Signature      `json:"signature"`
}

func (SignedDelegateAction) Kind() ActionKind { return KindDelegate }

// Sign asks signer for a signature over the delegate action hash and wraps the
// result. The signature is not verified.
func Sign(ctx context.Context, signer chain.Signer, d DelegateAction) (SignedDelegateAction, error) {
	hash, err := d.Hash()
	if err != nil {
		return SignedDelegateAction{}, fmt.Errorf("hash delegate action: %w", err)
	}
	raw, err := signer.Sign(ctx, hash[:])
	if err != nil {
		return SignedDelegateAction{}, fmt.Errorf("sign delegate action: %w", err)
	}
	sig, err := NewSignature(d.PublicKey.Type, raw)
	if err != nil {
		return SignedDelegateAction{}, err
	}
	return SignedDelegateAction{DelegateAction: d, Signature: sig}, nil
}
