package coerce

import (
	"fmt"

	"github.com/vicentereig/structprompt/schema"
)

// TypeCoercionError reports a value that cannot be reconciled with its
// descriptor. It carries the offending value, the expected shape, and the
// field path at which coercion failed, so callers can explain which
// structured field went wrong rather than that "something" did.
type TypeCoercionError struct {
	Descriptor *schema.TypeDescriptor
	Value      interface{}
	Field      string
	Cause      error
}

func (e *TypeCoercionError) Error() string {
	where := ""
	if e.Field != "" {
		where = fmt.Sprintf(" at %q", e.Field)
	}
	if e.Cause != nil {
		return fmt.Sprintf("cannot coerce %v (%T) to %s%s: %v", e.Value, e.Value, e.Descriptor.Kind, where, e.Cause)
	}
	return fmt.Sprintf("cannot coerce %v (%T) to %s%s", e.Value, e.Value, e.Descriptor.Kind, where)
}

func (e *TypeCoercionError) Unwrap() error {
	return e.Cause
}

func coercionErr(field string, value interface{}, d *schema.TypeDescriptor, cause error) *TypeCoercionError {
	return &TypeCoercionError{Descriptor: d, Value: value, Field: field, Cause: cause}
}
