package near

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/goodnatureofminers/multichain-tx/pkg/borsh"
)

// ActionKind identifies an action variant. Its value is the borsh discriminant,
// so the declaration order is part of the wire format.
type ActionKind uint8

const (
	KindCreateAccount ActionKind = iota
	KindDeployContract
	KindFunctionCall
	KindTransfer
	KindStake
	KindAddKey
	KindDeleteKey
	KindDeleteAccount
	KindDelegate
	KindDeployGlobalContract
	KindUseGlobalContract
)

var actionKindNames = [...]string{
	KindCreateAccount:        "CreateAccount",
	KindDeployContract:       "DeployContract",
	KindFunctionCall:         "FunctionCall",
	KindTransfer:             "Transfer",
	KindStake:                "Stake",
	KindAddKey:               "AddKey",
	KindDeleteKey:            "DeleteKey",
	KindDeleteAccount:        "DeleteAccount",
	KindDelegate:             "Delegate",
	KindDeployGlobalContract: "DeployGlobalContract",
	KindUseGlobalContract:    "UseGlobalContract",
}

// ActionKinds returns every kind in discriminant order.
func ActionKinds() []ActionKind {
	kinds := make([]ActionKind, len(actionKindNames))
	for i := range kinds {
		kinds[i] = ActionKind(i)
	}
	return kinds
}

// ParseActionKind maps a variant name, as used for the JSON tag, to its kind.
func ParseActionKind(name string) (ActionKind, error) {
	for i, n := range actionKindNames {
		if n == name {
			return ActionKind(i), nil
		}
	}
	return 0, &UnknownVariantError{Type: "Action", Value: strconv.Quote(name)}
}

func (k ActionKind) valid() bool {
	return int(k) < len(actionKindNames)
}

func (k ActionKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("ActionKind(%d)", uint8(k))
	}
	return actionKindNames[k]
}

// Discriminant returns the borsh tag byte of the kind.
func (k ActionKind) Discriminant() uint8 {
	return uint8(k)
}

// Action is one NEAR action. The set of implementations is closed: the payload
// types of this package.
type Action interface {
	Kind() ActionKind
	encodeBorsh(w *borsh.Writer)
}

// NonDelegateAction is an Action that may appear inside a DelegateAction. Every
// payload type except SignedDelegateAction implements it.
type NonDelegateAction interface {
	Action
	nonDelegate()
}

// CreateAccountAction creates the receiver account.
type CreateAccountAction struct{}

// DeployContractAction sets the receiver's contract code.
type DeployContractAction struct {
	Code Base64VecU8 `json:"code"`
}

// FunctionCallAction calls a contract method with raw argument bytes.
type FunctionCallAction struct {
	MethodName string `json:"method_name"`
	Args       []byte `json:"args"`
	Gas        U64    `json:"gas"`
	Deposit    U128   `json:"deposit"`
}

// TransferAction moves Deposit yoctoNEAR to the receiver.
type TransferAction struct {
	Deposit U128 `json:"deposit"`
}

// StakeAction stakes with the given validator key.
type StakeAction struct {
	Stake     U128      `json:"stake"`
	PublicKey PublicKey `json:"public_key"`
}

// AddKeyAction adds an access key to the receiver account.
type AddKeyAction struct {
	PublicKey PublicKey `json:"public_key"`
	AccessKey AccessKey `json:"access_key"`
}

// DeleteKeyAction removes an access key.
type DeleteKeyAction struct {
	PublicKey PublicKey `json:"public_key"`
}

// DeleteAccountAction deletes the receiver and sends its balance to BeneficiaryID.
type DeleteAccountAction struct {
	BeneficiaryID AccountID `json:"beneficiary_id"`
}

// DeployGlobalContractAction publishes code that other accounts can reference.
type DeployGlobalContractAction struct {
	Code       Base64VecU8              `json:"code"`
	DeployMode GlobalContractDeployMode `json:"deploy_mode"`
}

// UseGlobalContractAction points the receiver at a published global contract.
type UseGlobalContractAction struct {
	ContractIdentifier GlobalContractIdentifier `json:"contract_identifier"`
}

func (CreateAccountAction) Kind() ActionKind        { return KindCreateAccount }
func (DeployContractAction) Kind() ActionKind       { return KindDeployContract }
func (FunctionCallAction) Kind() ActionKind         { return KindFunctionCall }
func (TransferAction) Kind() ActionKind             { return KindTransfer }
func (StakeAction) Kind() ActionKind                { return KindStake }
func (AddKeyAction) Kind() ActionKind               { return KindAddKey }
func (DeleteKeyAction) Kind() ActionKind            { return KindDeleteKey }
func (DeleteAccountAction) Kind() ActionKind        { return KindDeleteAccount }
func (DeployGlobalContractAction) Kind() ActionKind { return KindDeployGlobalContract }
func (UseGlobalContractAction) Kind() ActionKind    { return KindUseGlobalContract }

func (CreateAccountAction) nonDelegate()        {}
func (DeployContractAction) nonDelegate()       {}
func (FunctionCallAction) nonDelegate()         {}
func (TransferAction) nonDelegate()             {}
func (StakeAction) nonDelegate()                {}
func (AddKeyAction) nonDelegate()               {}
func (DeleteKeyAction) nonDelegate()            {}
func (DeleteAccountAction) nonDelegate()        {}
func (DeployGlobalContractAction) nonDelegate() {}
func (UseGlobalContractAction) nonDelegate()    {}

type functionCallJSON struct {
	MethodName string    `json:"method_name"`
	Args       byteArray `json:"args"`
	Gas        U64       `json:"gas"`
	Deposit    U128      `json:"deposit"`
}

// MarshalJSON writes args as an array of byte values.
func (a FunctionCallAction) MarshalJSON() ([]byte, error) {
	return json.Marshal(functionCallJSON{
		MethodName: a.MethodName,
		Args:       a.Args,
		Gas:        a.Gas,
		Deposit:    a.Deposit,
	})
}

func (a *FunctionCallAction) UnmarshalJSON(data []byte) error {
	var v functionCallJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = FunctionCallAction{
		MethodName: v.MethodName,
		Args:       v.Args,
		Gas:        v.Gas,
		Deposit:    v.Deposit,
	}
	return nil
}

// byteArray is a byte vector whose JSON form is an array of numbers.
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+4*len(b))
	out = append(out, '[')
	for i, c := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(c), 10)
	}
	return append(out, ']'), nil
}

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var raw []uint8
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("near: decode byte array: %w", err)
	}
	if len(raw) == 0 {
		raw = nil
	}
	*b = raw
	return nil
}
