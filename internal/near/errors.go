package near

import (
	"errors"
	"fmt"
)

var (
	// ErrNestedDelegate rejects a Delegate action where only non-delegate actions are allowed.
	ErrNestedDelegate = errors.New("near: delegate action cannot be nested in a delegate action")
	// ErrNilAction rejects a nil Action.
	ErrNilAction = errors.New("near: nil action")
	// ErrInvalidAccountID reports an account id that breaks the NEAR naming rules.
	ErrInvalidAccountID = errors.New("near: invalid account id")
	// ErrInvalidKey reports a malformed public key or signature.
	ErrInvalidKey = errors.New("near: invalid key")
	// ErrU128Overflow reports a value that does not fit in 128 bits.
	ErrU128Overflow = errors.New("near: value overflows u128")
	// ErrUnknownVariant matches every *UnknownVariantError.
	ErrUnknownVariant = errors.New("near: unknown variant")
	// ErrMissingField matches every *MissingFieldError.
	ErrMissingField = errors.New("near: missing field")
	// ErrNotObject reports null or a non-object where a JSON object is required.
	ErrNotObject = errors.New("near: expected a JSON object")
)

// MissingFieldError reports a required JSON member that is absent or null.
type MissingFieldError struct {
	Type  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("near: %s is missing field %s", e.Type, e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// UnknownVariantError reports a discriminant or tag name outside a closed variant set.
type UnknownVariantError struct {
	Type  string
	Value string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("near: unknown %s variant %s", e.Type, e.Value)
}

// Is reports whether target is ErrUnknownVariant.
func (e *UnknownVariantError) Is(target error) bool {
	return target == ErrUnknownVariant
}
