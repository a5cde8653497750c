package near

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// actionFields lists the members every payload must carry. Allowance is the
// only optional member anywhere in the action tree.
var actionFields = map[ActionKind][]string{
	KindCreateAccount:        nil,
	KindDeployContract:       {"code"},
	KindFunctionCall:         {"method_name", "args", "gas", "deposit"},
	KindTransfer:             {"deposit"},
	KindStake:                {"stake", "public_key"},
	KindAddKey:               {"public_key", "access_key"},
	KindDeleteKey:            {"public_key"},
	KindDeleteAccount:        {"beneficiary_id"},
	KindDelegate:             {"delegate_action", "signature"},
	KindDeployGlobalContract: {"code", "deploy_mode"},
	KindUseGlobalContract:    {"contract_identifier"},
}

// MarshalActionJSON writes a in externally tagged form, {"<Kind>":{...}}.
func MarshalActionJSON(a Action) ([]byte, error) {
	if a == nil {
		return nil, ErrNilAction
	}
	if !a.Kind().valid() {
		return nil, &UnknownVariantError{Type: "Action", Value: a.Kind().String()}
	}
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", a.Kind(), err)
	}
	return json.Marshal(map[string]json.RawMessage{a.Kind().String(): body})
}

// UnmarshalActionJSON reads a single externally tagged action.
func UnmarshalActionJSON(data []byte) (Action, error) {
	tag, body, err := singleTag("action", data)
	if err != nil {
		return nil, err
	}
	kind, err := ParseActionKind(tag)
	if err != nil {
		return nil, err
	}
	if err := requireFields(kind.String(), body, actionFields[kind]...); err != nil {
		return nil, err
	}
	a, err := unmarshalPayload(kind, body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return a, nil
}

// singleTag splits an externally tagged value {"<tag>":<body>}.
func singleTag(typ string, data []byte) (string, json.RawMessage, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return "", nil, fmt.Errorf("near: decode %s: %w", typ, err)
	}
	if len(tagged) != 1 {
		return "", nil, fmt.Errorf("near: %s needs exactly one tag, got %d", typ, len(tagged))
	}
	var (
		tag  string
		body json.RawMessage
	)
	for k, v := range tagged {
		tag, body = k, v
	}
	return tag, body, nil
}

// requireFields fails unless data is a JSON object holding every name with a
// non-null value.
func requireFields(typ string, data []byte, names ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("near: decode %s: %w", typ, err)
	}
	if fields == nil {
		return fmt.Errorf("near: decode %s: %w", typ, ErrNotObject)
	}
	for _, name := range names {
		if raw, ok := fields[name]; !ok || isNull(raw) {
			return &MissingFieldError{Type: typ, Field: name}
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func unmarshalPayload(kind ActionKind, body json.RawMessage) (Action, error) {
	switch kind {
	case KindCreateAccount:
		return decodeJSONPayload[CreateAccountAction](body)
	case KindDeployContract:
		return decodeJSONPayload[DeployContractAction](body)
	case KindFunctionCall:
		return decodeJSONPayload[FunctionCallAction](body)
	case KindTransfer:
		return decodeJSONPayload[TransferAction](body)
	case KindStake:
		return decodeJSONPayload[StakeAction](body)
	case KindAddKey:
		return decodeJSONPayload[AddKeyAction](body)
	case KindDeleteKey:
		return decodeJSONPayload[DeleteKeyAction](body)
	case KindDeleteAccount:
		return decodeJSONPayload[DeleteAccountAction](body)
	case KindDelegate:
		return decodeJSONPayload[SignedDelegateAction](body)
	case KindDeployGlobalContract:
		return decodeJSONPayload[DeployGlobalContractAction](body)
	case KindUseGlobalContract:
		return decodeJSONPayload[UseGlobalContractAction](body)
	default:
		return nil, &UnknownVariantError{Type: "Action", Value: kind.String()}
	}
}

func decodeJSONPayload[T Action](body json.RawMessage) (Action, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarshalActionsJSON writes a JSON array of tagged actions. A nil list is [].
func MarshalActionsJSON(actions []Action) ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(actions))
	for i, a := range actions {
		raw, err := MarshalActionJSON(a)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		raws = append(raws, raw)
	}
	return json.Marshal(raws)
}

// UnmarshalActionsJSON reads a JSON array of tagged actions.
func UnmarshalActionsJSON(data []byte) ([]Action, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("near: decode actions: %w", err)
	}
	var actions []Action
	for i, raw := range raws {
		a, err := UnmarshalActionJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}
