// Package schema describes the shapes of values exchanged with a language
// model: typed field contracts (signatures) and the TypeDescriptor sum type
// the coercion engine dispatches on.
package schema

import (
	"fmt"
	"strings"
)

// Kind identifies which variant of TypeDescriptor a descriptor is.
type Kind string

const (
	KindString  Kind = "string"
	KindInt     Kind = "integer"
	KindFloat   Kind = "float"
	KindBool    Kind = "boolean"
	KindAny     Kind = "any"
	KindArray   Kind = "array"
	KindMap     Kind = "map"
	KindEnum    Kind = "enum"
	KindStruct  Kind = "struct"
	KindUnion   Kind = "union"
	KindNilable Kind = "nilable"
)

// Field is one named, typed member of a struct or signature.
type Field struct {
	Name        string
	Type        *TypeDescriptor
	Required    bool
	Default     interface{}
	Description string
}

// TypeDescriptor is a language-agnostic description of an expected value's
// shape. Exactly one variant's data is populated, selected by Kind:
//
//   - primitives (String/Int/Float/Bool/Any): no extra data
//   - Array: Elem is the element type
//   - Map: Elem is the value type; keys are opaque strings
//   - Enum: Values holds the token set in declaration order
//   - Struct: Name and Fields (declaration order)
//   - Union: Variants (declaration order); each variant must be a Struct or a
//     Nilable-wrapped Struct
//   - Nilable: Elem is the inner type
type TypeDescriptor struct {
	Kind     Kind
	Name     string
	Elem     *TypeDescriptor
	Values   []string
	Fields   []Field
	Variants []*TypeDescriptor

	// variantTokens maps normalized discriminator tokens to variants. Built
	// once by UnionOf and never mutated afterwards.
	variantTokens map[string]*TypeDescriptor
}

// StringType returns the string primitive descriptor.
func StringType() *TypeDescriptor { return &TypeDescriptor{Kind: KindString} }

// IntType returns the integer primitive descriptor.
func IntType() *TypeDescriptor { return &TypeDescriptor{Kind: KindInt} }

// FloatType returns the float primitive descriptor.
func FloatType() *TypeDescriptor { return &TypeDescriptor{Kind: KindFloat} }

// BoolType returns the boolean primitive descriptor.
func BoolType() *TypeDescriptor { return &TypeDescriptor{Kind: KindBool} }

// AnyType returns a descriptor that accepts any decoded JSON value unchanged.
func AnyType() *TypeDescriptor { return &TypeDescriptor{Kind: KindAny} }

// ArrayOf returns an array descriptor with the given element type.
func ArrayOf(elem *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindArray, Elem: elem}
}

// MapOf returns a mapping descriptor. Keys are always treated as opaque
// strings; only values carry a type.
func MapOf(value *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindMap, Elem: value}
}

// EnumOf returns an enum descriptor over the given tokens, in declaration
// order.
func EnumOf(tokens ...string) *TypeDescriptor {
	vals := make([]string, len(tokens))
	copy(vals, tokens)
	return &TypeDescriptor{Kind: KindEnum, Values: vals}
}

// StructOf returns a struct descriptor with the given name and ordered
// fields.
func StructOf(name string, fields ...Field) *TypeDescriptor {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return &TypeDescriptor{Kind: KindStruct, Name: name, Fields: fs}
}

// NilableOf wraps a descriptor so that nil/absent values pass through.
func NilableOf(inner *TypeDescriptor) *TypeDescriptor {
	return &TypeDescriptor{Kind: KindNilable, Elem: inner}
}

// UnionOf returns a tagged-union descriptor over the given struct variants.
// Variants are tried in declaration order during structural inference. The
// discriminator token registry is built here, once, so resolution never
// consults global state.
//
// UnionOf panics if a variant is not a Struct (or Nilable-wrapped Struct);
// union declarations are static programmer input, like regexp patterns.
func UnionOf(variants ...*TypeDescriptor) *TypeDescriptor {
	u := &TypeDescriptor{
		Kind:          KindUnion,
		Variants:      make([]*TypeDescriptor, 0, len(variants)),
		variantTokens: make(map[string]*TypeDescriptor, len(variants)),
	}
	for _, v := range variants {
		st := v
		if st.Kind == KindNilable {
			st = st.Elem
		}
		if st == nil || st.Kind != KindStruct {
			panic(fmt.Sprintf("schema: union variant must be a struct, got %v", v.Kind))
		}
		u.Variants = append(u.Variants, st)
		token := NormalizeToken(st.Name)
		if _, exists := u.variantTokens[token]; !exists {
			u.variantTokens[token] = st
		}
	}
	return u
}

// FieldNamed returns the declared field with the given name. Only meaningful
// for struct descriptors.
func (d *TypeDescriptor) FieldNamed(name string) (*Field, bool) {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i], true
		}
	}
	return nil, false
}

// HasField reports whether the struct descriptor declares the field.
func (d *TypeDescriptor) HasField(name string) bool {
	_, ok := d.FieldNamed(name)
	return ok
}

// VariantFor returns the union variant whose name matches the given
// discriminator token under normalized comparison (case-insensitive,
// underscores/dashes ignored). A variant named SpawnSubtask matches the
// tokens "SpawnSubtask", "spawn_subtask" and "spawn-subtask".
func (d *TypeDescriptor) VariantFor(token string) (*TypeDescriptor, bool) {
	v, ok := d.variantTokens[NormalizeToken(token)]
	return v, ok
}

// HasEnumValue reports whether the token is a member of the enum.
func (d *TypeDescriptor) HasEnumValue(token string) bool {
	for _, v := range d.Values {
		if v == token {
			return true
		}
	}
	return false
}

// NormalizeToken canonicalizes a discriminator token or variant name for
// matching: lowercase with spaces, underscores and dashes removed.
func NormalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
