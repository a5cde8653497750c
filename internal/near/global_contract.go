package near

import (
	"encoding/json"
	"fmt"
)

// GlobalContractDeployMode selects how a published global contract is referenced.
type GlobalContractDeployMode uint8

const (
	// DeployByCodeHash publishes immutable code referenced by its hash.
	DeployByCodeHash GlobalContractDeployMode = 0
	// DeployByAccountID publishes code under the deployer account, which may update it.
	DeployByAccountID GlobalContractDeployMode = 1
)

func (m GlobalContractDeployMode) String() string {
	switch m {
	case DeployByCodeHash:
		return "CodeHash"
	case DeployByAccountID:
		return "AccountId"
	default:
		return fmt.Sprintf("GlobalContractDeployMode(%d)", uint8(m))
	}
}

func parseDeployMode(s string) (GlobalContractDeployMode, error) {
	switch s {
	case "CodeHash":
		return DeployByCodeHash, nil
	case "AccountId":
		return DeployByAccountID, nil
	default:
		return 0, &UnknownVariantError{Type: "GlobalContractDeployMode", Value: s}
	}
}

func (m GlobalContractDeployMode) MarshalText() ([]byte, error) {
	if m > DeployByAccountID {
		return nil, &UnknownVariantError{Type: "GlobalContractDeployMode", Value: fmt.Sprint(uint8(m))}
	}
	return []byte(m.String()), nil
}

func (m *GlobalContractDeployMode) UnmarshalText(text []byte) error {
	parsed, err := parseDeployMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// GlobalContractIdentifier references a global contract by code hash or by the
// account that deployed it. Only the field selected by Mode is meaningful.
type GlobalContractIdentifier struct {
	Mode      GlobalContractDeployMode
	CodeHash  CryptoHash
	AccountID AccountID
}

// GlobalContractByCodeHash identifies a contract by its code hash.
func GlobalContractByCodeHash(h CryptoHash) GlobalContractIdentifier {
	return GlobalContractIdentifier{Mode: DeployByCodeHash, CodeHash: h}
}

// GlobalContractByAccountID identifies a contract by its deployer account.
func GlobalContractByAccountID(id AccountID) GlobalContractIdentifier {
	return GlobalContractIdentifier{Mode: DeployByAccountID, AccountID: id}
}

// MarshalJSON writes {"CodeHash":"<base58>"} or {"AccountId":"<account>"}.
func (g GlobalContractIdentifier) MarshalJSON() ([]byte, error) {
	switch g.Mode {
	case DeployByCodeHash:
		return json.Marshal(map[string]CryptoHash{"CodeHash": g.CodeHash})
	case DeployByAccountID:
		return json.Marshal(map[string]AccountID{"AccountId": g.AccountID})
	default:
		return nil, &UnknownVariantError{Type: "GlobalContractIdentifier", Value: fmt.Sprint(uint8(g.Mode))}
	}
}

func (g *GlobalContractIdentifier) UnmarshalJSON(data []byte) error {
	tag, body, err := singleTag("global contract identifier", data)
	if err != nil {
		return err
	}
	mode, err := parseDeployMode(tag)
	if err != nil {
		return &UnknownVariantError{Type: "GlobalContractIdentifier", Value: tag}
	}
	if isNull(body) {
		return &MissingFieldError{Type: "GlobalContractIdentifier", Field: tag}
	}
	switch mode {
	case DeployByCodeHash:
		var h CryptoHash
		if err := json.Unmarshal(body, &h); err != nil {
			return err
		}
		*g = GlobalContractByCodeHash(h)
	case DeployByAccountID:
		var id AccountID
		if err := json.Unmarshal(body, &id); err != nil {
			return err
		}
		*g = GlobalContractByAccountID(id)
	}
	return nil
}
