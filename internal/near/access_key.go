package near

import (
	"bytes"
	"encoding/json"
)

const fullAccessTag = "FullAccess"

// AccessKey is the nonce and permission attached to a public key.
type AccessKey struct {
	Nonce      U64                 `json:"nonce"`
	Permission AccessKeyPermission `json:"permission"`
}

// AccessKeyPermission is either full access or a function-call grant. The zero
// value is full access.
type AccessKeyPermission struct {
	FunctionCall *FunctionCallPermission
}

// FunctionCallPermission limits a key to calling methods on one receiver.
type FunctionCallPermission struct {
	// Allowance is the fee budget; nil means unlimited.
	Allowance   *U128    `json:"allowance"`
	ReceiverID  string   `json:"receiver_id"`
	MethodNames []string `json:"method_names"`
}

// FullAccess returns the full access permission.
func FullAccess() AccessKeyPermission {
	return AccessKeyPermission{}
}

// FunctionCallAccess returns a function-call permission.
func FunctionCallAccess(p FunctionCallPermission) AccessKeyPermission {
	return AccessKeyPermission{FunctionCall: &p}
}

// IsFullAccess reports whether the permission grants full access.
func (p AccessKeyPermission) IsFullAccess() bool {
	return p.FunctionCall == nil
}

type accessKeyJSON AccessKey

func (k *AccessKey) UnmarshalJSON(data []byte) error {
	if err := requireFields("AccessKey", data, "nonce", "permission"); err != nil {
		return err
	}
	var v accessKeyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*k = AccessKey(v)
	return nil
}

// MarshalJSON writes "FullAccess" or {"FunctionCall":{...}}.
func (p AccessKeyPermission) MarshalJSON() ([]byte, error) {
	if p.IsFullAccess() {
		return json.Marshal(fullAccessTag)
	}
	return json.Marshal(map[string]FunctionCallPermission{"FunctionCall": *p.FunctionCall})
}

func (p *AccessKeyPermission) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		if tag != fullAccessTag {
			return &UnknownVariantError{Type: "AccessKeyPermission", Value: tag}
		}
		*p = FullAccess()
		return nil
	}
	tag, body, err := singleTag("access key permission", data)
	if err != nil {
		return err
	}
	if tag != "FunctionCall" {
		return &UnknownVariantError{Type: "AccessKeyPermission", Value: tag}
	}
	var fc FunctionCallPermission
	if err := json.Unmarshal(body, &fc); err != nil {
		return err
	}
	*p = FunctionCallAccess(fc)
	return nil
}

type functionCallPermissionJSON FunctionCallPermission

// MarshalJSON writes a nil method list as [].
func (p FunctionCallPermission) MarshalJSON() ([]byte, error) {
	v := functionCallPermissionJSON(p)
	if v.MethodNames == nil {
		v.MethodNames = []string{}
	}
	return json.Marshal(v)
}

func (p *FunctionCallPermission) UnmarshalJSON(data []byte) error {
	if err := requireFields("FunctionCallPermission", data, "receiver_id", "method_names"); err != nil {
		return err
	}
	var v functionCallPermissionJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if len(v.MethodNames) == 0 {
		v.MethodNames = nil
	}
	*p = FunctionCallPermission(v)
	return nil
}
