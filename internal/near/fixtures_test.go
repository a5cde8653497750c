package near

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T, fill byte) PublicKey {
	t.Helper()
	key, err := NewPublicKey(ED25519, bytes.Repeat([]byte{fill}, 32))
	require.NoError(t, err)
	return key
}

func testSignature(t *testing.T, fill byte) Signature {
	t.Helper()
	sig, err := NewSignature(ED25519, bytes.Repeat([]byte{fill}, 64))
	require.NoError(t, err)
	return sig
}

func testDelegateAction(t *testing.T) DelegateAction {
	t.Helper()
	d, err := NewDelegateAction("alice.near", "bob.near", []Action{
		TransferAction{Deposit: NewU128(1)},
		FunctionCallAction{MethodName: "ping", Gas: 30_000_000_000_000},
	}, 7, 100, testKey(t, 5))
	require.NoError(t, err)
	return d
}

func testSignedDelegateAction(t *testing.T) SignedDelegateAction {
	t.Helper()
	return SignedDelegateAction{
		DelegateAction: testDelegateAction(t),
		Signature:      testSignature(t, 9),
	}
}

// testActions returns one action of every kind, in discriminant order.
func testActions(t *testing.T) []Action {
	t.Helper()
	var codeHash CryptoHash
	for i := range codeHash {
		codeHash[i] = 4
	}
	return []Action{
		CreateAccountAction{},
		DeployContractAction{Code: Base64VecU8{1, 2, 3}},
		FunctionCallAction{MethodName: "test", Args: []byte{4, 5, 6}, Gas: 1_000_000, Deposit: NewU128(0)},
		TransferAction{Deposit: NewU128(1_000_000_000)},
		StakeAction{Stake: NewU128(100_000_000), PublicKey: testKey(t, 0)},
		AddKeyAction{PublicKey: testKey(t, 1), AccessKey: AccessKey{Nonce: 0, Permission: FullAccess()}},
		DeleteKeyAction{PublicKey: testKey(t, 2)},
		DeleteAccountAction{BeneficiaryID: "alice.near"},
		testSignedDelegateAction(t),
		DeployGlobalContractAction{Code: Base64VecU8{3, 4, 5}, DeployMode: DeployByCodeHash},
		UseGlobalContractAction{ContractIdentifier: GlobalContractByCodeHash(codeHash)},
	}
}

// extraActions covers payload shapes testActions leaves out.
func extraActions(t *testing.T) []Action {
	t.Helper()
	allowance := NewU128(250_000_000_000_000)
	return []Action{
		AddKeyAction{
			PublicKey: testKey(t, 3),
			AccessKey: AccessKey{
				Nonce: 42,
				Permission: FunctionCallAccess(FunctionCallPermission{
					Allowance:   &allowance,
					ReceiverID:  "app.near",
					MethodNames: []string{"ping", "pong"},
				}),
			},
		},
		AddKeyAction{
			PublicKey: testKey(t, 3),
			AccessKey: AccessKey{Permission: FunctionCallAccess(FunctionCallPermission{ReceiverID: "app.near"})},
		},
		DeployGlobalContractAction{Code: Base64VecU8{9}, DeployMode: DeployByAccountID},
		UseGlobalContractAction{ContractIdentifier: GlobalContractByAccountID("publisher.near")},
		FunctionCallAction{MethodName: "max", Gas: 1<<64 - 1, Deposit: U128FromHalves(1<<64-1, 1<<64-1)},
		StakeAction{Stake: NewU128(1), PublicKey: PublicKey{Type: SECP256K1, Data: bytes.Repeat([]byte{7}, 64)}},
	}
}
