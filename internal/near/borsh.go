package near

import (
	"fmt"

	"github.com/goodnatureofminers/multichain-tx/pkg/borsh"
)

// EncodeAction returns the borsh encoding of a: the kind discriminant byte
// followed by the payload fields in declaration order.
func EncodeAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, ErrNilAction
	}
	w := borsh.NewWriter()
	writeAction(w, a)
	return w.Finish()
}

// DecodeAction decodes exactly one action from data.
func DecodeAction(data []byte) (Action, error) {
	r := borsh.NewReader(data)
	a, err := readAction(r, "action")
	if err != nil {
		return nil, err
	}
	if err := r.Done(); err != nil {
		return nil, err
	}
	return a, nil
}

// EncodeDelegateAction returns the borsh encoding of d without the signing prefix.
func EncodeDelegateAction(d DelegateAction) ([]byte, error) {
	w := borsh.NewWriter()
	writeDelegateAction(w, d)
	return w.Finish()
}

// DecodeDelegateAction decodes exactly one delegate action from data.
func DecodeDelegateAction(data []byte) (DelegateAction, error) {
	r := borsh.NewReader(data)
	d, err := readDelegateAction(r)
	if err != nil {
		return DelegateAction{}, err
	}
	if err := r.Done(); err != nil {
		return DelegateAction{}, err
	}
	return d, nil
}

// EncodeSignedDelegateAction returns the borsh encoding of s, without the
// Delegate discriminant.
func EncodeSignedDelegateAction(s SignedDelegateAction) ([]byte, error) {
	w := borsh.NewWriter()
	s.encodeBorsh(w)
	return w.Finish()
}

// DecodeSignedDelegateAction decodes exactly one signed delegate action from data.
func DecodeSignedDelegateAction(data []byte) (SignedDelegateAction, error) {
	r := borsh.NewReader(data)
	s, err := readSignedDelegateAction(r)
	if err != nil {
		return SignedDelegateAction{}, err
	}
	if err := r.Done(); err != nil {
		return SignedDelegateAction{}, err
	}
	return s, nil
}

func writeAction(w *borsh.Writer, a Action) {
	if a == nil {
		w.Fail(ErrNilAction)
		return
	}
	if !a.Kind().valid() {
		w.Fail(&UnknownVariantError{Type: "Action", Value: a.Kind().String()})
		return
	}
	w.U8(a.Kind().Discriminant())
	a.encodeBorsh(w)
}

func (CreateAccountAction) encodeBorsh(*borsh.Writer) {}

func (a DeployContractAction) encodeBorsh(w *borsh.Writer) {
	w.Bytes(a.Code)
}

func (a FunctionCallAction) encodeBorsh(w *borsh.Writer) {
	w.String(a.MethodName)
	w.Bytes(a.Args)
	w.U64(uint64(a.Gas))
	writeU128(w, a.Deposit)
}

func (a TransferAction) encodeBorsh(w *borsh.Writer) {
	writeU128(w, a.Deposit)
}

func (a StakeAction) encodeBorsh(w *borsh.Writer) {
	writeU128(w, a.Stake)
	writePublicKey(w, a.PublicKey)
}

func (a AddKeyAction) encodeBorsh(w *borsh.Writer) {
	writePublicKey(w, a.PublicKey)
	writeAccessKey(w, a.AccessKey)
}

func (a DeleteKeyAction) encodeBorsh(w *borsh.Writer) {
	writePublicKey(w, a.PublicKey)
}

func (a DeleteAccountAction) encodeBorsh(w *borsh.Writer) {
	writeAccountID(w, a.BeneficiaryID)
}

func (a SignedDelegateAction) encodeBorsh(w *borsh.Writer) {
	writeDelegateAction(w, a.DelegateAction)
	writeSignature(w, a.Signature)
}

func (a DeployGlobalContractAction) encodeBorsh(w *borsh.Writer) {
	w.Bytes(a.Code)
	writeDeployMode(w, a.DeployMode)
}

func (a UseGlobalContractAction) encodeBorsh(w *borsh.Writer) {
	writeGlobalContractIdentifier(w, a.ContractIdentifier)
}

func writeU128(w *borsh.Writer, v U128) {
	w.U128(v.Halves())
}

func writeAccountID(w *borsh.Writer, id AccountID) {
	if err := id.Validate(); err != nil {
		w.Fail(err)
		return
	}
	w.String(string(id))
}

func writePublicKey(w *borsh.Writer, k PublicKey) {
	want, err := publicKeyLen(k.Type)
	if err != nil {
		w.Fail(err)
		return
	}
	if len(k.Data) != want {
		w.Fail(fmt.Errorf("%w: %s public key is %d bytes, want %d", ErrInvalidKey, k.Type, len(k.Data), want))
		return
	}
	w.U8(uint8(k.Type))
	w.Fixed(k.Data)
}

func writeSignature(w *borsh.Writer, s Signature) {
	want, err := signatureLen(s.Type)
	if err != nil {
		w.Fail(err)
		return
	}
	if len(s.Data) != want {
		w.Fail(fmt.Errorf("%w: %s signature is %d bytes, want %d", ErrInvalidKey, s.Type, len(s.Data), want))
		return
	}
	w.U8(uint8(s.Type))
	w.Fixed(s.Data)
}

func writeAccessKey(w *borsh.Writer, k AccessKey) {
	w.U64(uint64(k.Nonce))
	if k.Permission.IsFullAccess() {
		w.U8(permissionFullAccess)
		return
	}
	p := k.Permission.FunctionCall
	w.U8(permissionFunctionCall)
	w.Option(p.Allowance != nil)
	if p.Allowance != nil {
		writeU128(w, *p.Allowance)
	}
	w.String(p.ReceiverID)
	w.Len(len(p.MethodNames))
	for _, name := range p.MethodNames {
		w.String(name)
	}
}

func writeDeployMode(w *borsh.Writer, m GlobalContractDeployMode) {
	if m > DeployByAccountID {
		w.Fail(&UnknownVariantError{Type: "GlobalContractDeployMode", Value: fmt.Sprint(uint8(m))})
		return
	}
	w.U8(uint8(m))
}

func writeGlobalContractIdentifier(w *borsh.Writer, g GlobalContractIdentifier) {
	writeDeployMode(w, g.Mode)
	switch g.Mode {
	case DeployByCodeHash:
		w.Fixed(g.CodeHash[:])
	case DeployByAccountID:
		writeAccountID(w, g.AccountID)
	}
}

func writeDelegateAction(w *borsh.Writer, d DelegateAction) {
	writeAccountID(w, d.SenderID)
	writeAccountID(w, d.ReceiverID)
	w.Len(len(d.Actions))
	for _, a := range d.Actions {
		if a == nil {
			w.Fail(ErrNilAction)
			return
		}
		writeAction(w, a)
	}
	w.U64(uint64(d.Nonce))
	w.U64(uint64(d.MaxBlockHeight))
	writePublicKey(w, d.PublicKey)
}

const (
	permissionFunctionCall uint8 = 0
	permissionFullAccess   uint8 = 1
)

func readAction(r *borsh.Reader, field string) (Action, error) {
	tag, err := r.U8(field + " kind")
	if err != nil {
		return nil, err
	}
	return readActionBody(r, ActionKind(tag))
}

// readNonDelegateAction rejects a Delegate by its tag, before reading its body.
func readNonDelegateAction(r *borsh.Reader, field string) (NonDelegateAction, error) {
	tag, err := r.U8(field + " kind")
	if err != nil {
		return nil, err
	}
	if ActionKind(tag) == KindDelegate {
		return nil, ErrNestedDelegate
	}
	a, err := readActionBody(r, ActionKind(tag))
	if err != nil {
		return nil, err
	}
	return NewNonDelegateAction(a)
}

func readActionBody(r *borsh.Reader, kind ActionKind) (Action, error) {
	switch kind {
	case KindCreateAccount:
		return CreateAccountAction{}, nil
	case KindDeployContract:
		code, err := r.Bytes("deploy_contract.code")
		if err != nil {
			return nil, err
		}
		return DeployContractAction{Code: code}, nil
	case KindFunctionCall:
		return readFunctionCall(r)
	case KindTransfer:
		deposit, err := readU128(r, "transfer.deposit")
		if err != nil {
			return nil, err
		}
		return TransferAction{Deposit: deposit}, nil
	case KindStake:
		stake, err := readU128(r, "stake.stake")
		if err != nil {
			return nil, err
		}
		key, err := readPublicKey(r, "stake.public_key")
		if err != nil {
			return nil, err
		}
		return StakeAction{Stake: stake, PublicKey: key}, nil
	case KindAddKey:
		key, err := readPublicKey(r, "add_key.public_key")
		if err != nil {
			return nil, err
		}
		ak, err := readAccessKey(r)
		if err != nil {
			return nil, err
		}
		return AddKeyAction{PublicKey: key, AccessKey: ak}, nil
	case KindDeleteKey:
		key, err := readPublicKey(r, "delete_key.public_key")
		if err != nil {
			return nil, err
		}
		return DeleteKeyAction{PublicKey: key}, nil
	case KindDeleteAccount:
		id, err := readAccountID(r, "delete_account.beneficiary_id")
		if err != nil {
			return nil, err
		}
		return DeleteAccountAction{BeneficiaryID: id}, nil
	case KindDelegate:
		return readSignedDelegateAction(r)
	case KindDeployGlobalContract:
		code, err := r.Bytes("deploy_global_contract.code")
		if err != nil {
			return nil, err
		}
		mode, err := readDeployMode(r, "deploy_global_contract.deploy_mode")
		if err != nil {
			return nil, err
		}
		return DeployGlobalContractAction{Code: code, DeployMode: mode}, nil
	case KindUseGlobalContract:
		id, err := readGlobalContractIdentifier(r)
		if err != nil {
			return nil, err
		}
		return UseGlobalContractAction{ContractIdentifier: id}, nil
	default:
		return nil, &UnknownVariantError{Type: "Action", Value: fmt.Sprint(uint8(kind))}
	}
}

func readFunctionCall(r *borsh.Reader) (FunctionCallAction, error) {
	method, err := r.String("function_call.method_name")
	if err != nil {
		return FunctionCallAction{}, err
	}
	args, err := r.Bytes("function_call.args")
	if err != nil {
		return FunctionCallAction{}, err
	}
	gas, err := r.U64("function_call.gas")
	if err != nil {
		return FunctionCallAction{}, err
	}
	deposit, err := readU128(r, "function_call.deposit")
	if err != nil {
		return FunctionCallAction{}, err
	}
	return FunctionCallAction{MethodName: method, Args: args, Gas: U64(gas), Deposit: deposit}, nil
}

func readU128(r *borsh.Reader, field string) (U128, error) {
	lo, hi, err := r.U128(field)
	if err != nil {
		return U128{}, err
	}
	return U128FromHalves(lo, hi), nil
}

func readAccountID(r *borsh.Reader, field string) (AccountID, error) {
	s, err := r.String(field)
	if err != nil {
		return "", err
	}
	id, err := ParseAccountID(s)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return id, nil
}

func readPublicKey(r *borsh.Reader, field string) (PublicKey, error) {
	tag, err := r.U8(field + " type")
	if err != nil {
		return PublicKey{}, err
	}
	n, err := publicKeyLen(KeyType(tag))
	if err != nil {
		return PublicKey{}, err
	}
	data, err := r.Fixed(field, n)
	if err != nil {
		return PublicKey{}, err
	}
	return PublicKey{Type: KeyType(tag), Data: data}, nil
}

func readSignature(r *borsh.Reader, field string) (Signature, error) {
	tag, err := r.U8(field + " type")
	if err != nil {
		return Signature{}, err
	}
	n, err := signatureLen(KeyType(tag))
	if err != nil {
		return Signature{}, err
	}
	data, err := r.Fixed(field, n)
	if err != nil {
		return Signature{}, err
	}
	return Signature{Type: KeyType(tag), Data: data}, nil
}

func readAccessKey(r *borsh.Reader) (AccessKey, error) {
	nonce, err := r.U64("access_key.nonce")
	if err != nil {
		return AccessKey{}, err
	}
	tag, err := r.U8("access_key.permission")
	if err != nil {
		return AccessKey{}, err
	}
	switch tag {
	case permissionFullAccess:
		return AccessKey{Nonce: U64(nonce), Permission: FullAccess()}, nil
	case permissionFunctionCall:
	default:
		return AccessKey{}, &UnknownVariantError{Type: "AccessKeyPermission", Value: fmt.Sprint(tag)}
	}

	var p FunctionCallPermission
	present, err := r.Option("function_call_permission.allowance")
	if err != nil {
		return AccessKey{}, err
	}
	if present {
		allowance, err := readU128(r, "function_call_permission.allowance")
		if err != nil {
			return AccessKey{}, err
		}
		p.Allowance = &allowance
	}
	if p.ReceiverID, err = r.String("function_call_permission.receiver_id"); err != nil {
		return AccessKey{}, err
	}
	count, err := r.Len("function_call_permission.method_names")
	if err != nil {
		return AccessKey{}, err
	}
	for i := 0; i < count; i++ {
		name, err := r.String(fmt.Sprintf("function_call_permission.method_names[%d]", i))
		if err != nil {
			return AccessKey{}, err
		}
		p.MethodNames = append(p.MethodNames, name)
	}
	return AccessKey{Nonce: U64(nonce), Permission: FunctionCallAccess(p)}, nil
}

func readDeployMode(r *borsh.Reader, field string) (GlobalContractDeployMode, error) {
	tag, err := r.U8(field)
	if err != nil {
		return 0, err
	}
	m := GlobalContractDeployMode(tag)
	if m > DeployByAccountID {
		return 0, &UnknownVariantError{Type: "GlobalContractDeployMode", Value: fmt.Sprint(tag)}
	}
	return m, nil
}

func readGlobalContractIdentifier(r *borsh.Reader) (GlobalContractIdentifier, error) {
	mode, err := readDeployMode(r, "contract_identifier")
	if err != nil {
		return GlobalContractIdentifier{}, err
	}
	if mode == DeployByAccountID {
		id, err := readAccountID(r, "contract_identifier.account_id")
		if err != nil {
			return GlobalContractIdentifier{}, err
		}
		return GlobalContractByAccountID(id), nil
	}
	raw, err := r.Fixed("contract_identifier.code_hash", CryptoHashSize)
	if err != nil {
		return GlobalContractIdentifier{}, err
	}
	var h CryptoHash
	copy(h[:], raw)
	return GlobalContractByCodeHash(h), nil
}

func readDelegateAction(r *borsh.Reader) (DelegateAction, error) {
	var d DelegateAction
	var err error
	if d.SenderID, err = readAccountID(r, "delegate_action.sender_id"); err != nil {
		return DelegateAction{}, err
	}
	if d.ReceiverID, err = readAccountID(r, "delegate_action.receiver_id"); err != nil {
		return DelegateAction{}, err
	}
	count, err := r.Len("delegate_action.actions")
	if err != nil {
		return DelegateAction{}, err
	}
	for i := 0; i < count; i++ {
		nd, err := readNonDelegateAction(r, fmt.Sprintf("delegate_action.actions[%d]", i))
		if err != nil {
			return DelegateAction{}, fmt.Errorf("delegate action %d: %w", i, err)
		}
		d.Actions = append(d.Actions, nd)
	}
	nonce, err := r.U64("delegate_action.nonce")
	if err != nil {
		return DelegateAction{}, err
	}
	maxHeight, err := r.U64("delegate_action.max_block_height")
	if err != nil {
		return DelegateAction{}, err
	}
	d.Nonce, d.MaxBlockHeight = U64(nonce), U64(maxHeight)
	if d.PublicKey, err = readPublicKey(r, "delegate_action.public_key"); err != nil {
		return DelegateAction{}, err
	}
	return d, nil
}

func readSignedDelegateAction(r *borsh.Reader) (SignedDelegateAction, error) {
	d, err := readDelegateAction(r)
	if err != nil {
		return SignedDelegateAction{}, err
	}
	sig, err := readSignature(r, "signed_delegate_action.signature")
	if err != nil {
		return SignedDelegateAction{}, err
	}
	return SignedDelegateAction{DelegateAction: d, Signature: sig}, nil
}
