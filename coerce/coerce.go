// Package coerce converts untyped decoded JSON values into typed values per
// a schema.TypeDescriptor. Coercion is a pure function: no registries, no
// global state, safe for any number of concurrent callers.
package coerce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vicentereig/structprompt/schema"
)

// StructValue is a coerced struct instance. Fields holds only declared
// members; discriminator/tag keys used for union routing never appear here
// unless the struct declares them.
type StructValue struct {
	TypeName string
	Fields   map[string]interface{}
}

// Get returns a field value by name.
func (s *StructValue) Get(name string) (interface{}, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// Has reports whether the instance carries the named field.
func (s *StructValue) Has(name string) bool {
	_, ok := s.Fields[name]
	return ok
}

// MarshalJSON renders the instance as a plain JSON object of its fields.
func (s *StructValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields)
}

// Coerce converts a decoded JSON value into the shape the descriptor
// demands. It is total over well-formed (value, descriptor) pairs: nil
// against a Nilable descriptor yields nil, unions degrade to the raw value
// when no variant matches, and every other irreconcilable mismatch returns a
// *TypeCoercionError.
func Coerce(value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	return coerceAt("", value, d, Context{})
}

// CoerceField coerces a single named field, threading the union
// discriminator context computed from its siblings.
func CoerceField(field string, value interface{}, d *schema.TypeDescriptor, ctx Context) (interface{}, error) {
	return coerceAt(field, value, d, ctx)
}

func coerceAt(path string, value interface{}, d *schema.TypeDescriptor, ctx Context) (interface{}, error) {
	switch d.Kind {
	case schema.KindNilable:
		if value == nil {
			return nil, nil
		}
		return coerceAt(path, value, d.Elem, ctx)
	case schema.KindAny:
		return value, nil
	case schema.KindUnion:
		return coerceUnion(path, value, d, ctx)
	}

	if value == nil {
		return nil, coercionErr(path, value, d, fmt.Errorf("value is nil and type is not nilable"))
	}

	switch d.Kind {
	case schema.KindString:
		return coerceString(path, value, d)
	case schema.KindInt:
		return coerceInt(path, value, d)
	case schema.KindFloat:
		return coerceFloat(path, value, d)
	case schema.KindBool:
		return coerceBool(path, value, d)
	case schema.KindArray:
		return coerceArray(path, value, d)
	case schema.KindMap:
		return coerceMap(path, value, d)
	case schema.KindEnum:
		return coerceEnum(path, value, d)
	case schema.KindStruct:
		return coerceStruct(path, value, d)
	default:
		return nil, coercionErr(path, value, d, fmt.Errorf("unknown descriptor kind %q", d.Kind))
	}
}

func coerceString(path string, value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, coercionErr(path, value, d, fmt.Errorf("no canonical string form"))
	}
}

func coerceInt(path string, value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		// Decoded JSON numbers arrive as float64. Integral values convert;
		// fractional values would lose precision and fail loudly.
		if v == float64(int(v)) {
			return int(v), nil
		}
		return nil, coercionErr(path, value, d, fmt.Errorf("fractional value %v", v))
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return nil, coercionErr(path, value, d, err)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, coercionErr(path, value, d, err)
		}
		return i, nil
	default:
		return nil, coercionErr(path, value, d, fmt.Errorf("not an integer"))
	}
}

func coerceFloat(path string, value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, coercionErr(path, value, d, err)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, coercionErr(path, value, d, err)
		}
		return f, nil
	default:
		return nil, coercionErr(path, value, d, fmt.Errorf("not a number"))
	}
}

func coerceBool(path string, value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, coercionErr(path, value, d, fmt.Errorf("not a boolean token"))
	default:
		return nil, coercionErr(path, value, d, fmt.Errorf("not a boolean"))
	}
}

func coerceArray(path string, value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	arr, ok := value.([]interface{})
	if !ok {
		return nil, coercionErr(path, value, d, fmt.Errorf("not an array"))
	}
	out := make([]interface{}, len(arr))
	for i, elem := range arr {
		coerced, err := coerceAt(fmt.Sprintf("%s[%d]", path, i), elem, d.Elem, Context{})
		if err != nil {
			return nil, err
		}
		out[i] = coerced
	}
	return out, nil
}

func coerceMap(path string, value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		return nil, coercionErr(path, value, d, fmt.Errorf("not an object"))
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		// Keys are opaque strings and never coerced.
		coerced, err := coerceAt(joinPath(path, k), v, d.Elem, Context{})
		if err != nil {
			return nil, err
		}
		out[k] = coerced
	}
	return out, nil
}

func coerceEnum(path string, value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	token, ok := value.(string)
	if !ok {
		return nil, coercionErr(path, value, d, fmt.Errorf("enum value must be a string"))
	}
	if d.HasEnumValue(token) {
		return token, nil
	}
	return nil, coercionErr(path, value, d, fmt.Errorf("unknown enum token %q (declared: %s)", token, strings.Join(d.Values, ", ")))
}

func coerceStruct(path string, value interface{}, d *schema.TypeDescriptor) (interface{}, error) {
	m, ok := value.(map[string]interface{})
	if !ok {
		// Struct coercion only applies to object-shaped input; anything else
		// (including an already-coerced *StructValue) passes through.
		return value, nil
	}

	fields := make(map[string]interface{}, len(d.Fields))
	for i, f := range d.Fields {
		raw, present := m[f.Name]
		if !present {
			if f.Default != nil {
				fields[f.Name] = f.Default
				continue
			}
			if f.Required {
				return nil, coercionErr(joinPath(path, f.Name), nil, f.Type, fmt.Errorf("required field absent"))
			}
			continue
		}
		ctx := siblingContext(d, i, m)
		coerced, err := coerceAt(joinPath(path, f.Name), raw, f.Type, ctx)
		if err != nil {
			return nil, err
		}
		fields[f.Name] = coerced
	}
	// Undeclared input keys (discriminator tags included) are dropped here:
	// only declared members were copied.
	return &StructValue{TypeName: d.Name, Fields: fields}, nil
}

// siblingContext derives the union discriminator context for field index i:
// the immediately preceding declared field, when String- or Enum-typed and
// present in the raw object as a string, acts as a co-located discriminator.
func siblingContext(d *schema.TypeDescriptor, i int, raw map[string]interface{}) Context {
	if i == 0 {
		return Context{}
	}
	prev := d.Fields[i-1]
	t := prev.Type
	if t.Kind == schema.KindNilable {
		t = t.Elem
	}
	if t.Kind != schema.KindString && t.Kind != schema.KindEnum {
		return Context{}
	}
	token, ok := raw[prev.Name].(string)
	if !ok || token == "" {
		return Context{}
	}
	return Context{SiblingField: prev.Name, SiblingToken: token}
}

func coerceUnion(path string, value interface{}, d *schema.TypeDescriptor, ctx Context) (interface{}, error) {
	variant := Resolve(value, d, ctx)
	if variant == nil {
		// Graceful degradation: hand the raw payload back untouched so
		// upstream validation can produce a field-specific error.
		return value, nil
	}
	return coerceStruct(path, value, variant)
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}
