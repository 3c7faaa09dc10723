package coerce

import (
	"github.com/vicentereig/structprompt/schema"
)

// TagKey is the reserved embedded discriminator key. Model output may tag a
// union payload with it; the key is stripped during struct construction
// unless the chosen variant declares a field of the same name.
const TagKey = "_type"

// Context carries sibling-discriminator information into union resolution:
// when coercing a union-typed field of an enclosing struct, the String- or
// Enum-typed field immediately preceding it supplies the token.
type Context struct {
	SiblingField string
	SiblingToken string
}

// Resolve decides which variant of the union a candidate value represents.
// Three tiers are consulted in order, first match wins:
//
//  1. the co-located sibling discriminator token from ctx
//  2. an embedded TagKey entry inside the value itself
//  3. structural matching: the first variant, in declaration order, whose
//     required fields are all present by name in the candidate object
//
// Field types are deliberately not checked in tier 3; presence alone decides.
// Resolve returns nil when no variant matches by any tier; the caller treats
// that as "leave the value unconverted", never as an error. Model output is
// unreliable about tagging conventions, so ambiguity degrades instead of
// crashing the pipeline.
func Resolve(value interface{}, union *schema.TypeDescriptor, ctx Context) *schema.TypeDescriptor {
	if ctx.SiblingToken != "" {
		if v, ok := union.VariantFor(ctx.SiblingToken); ok {
			return v
		}
	}

	obj, isObject := value.(map[string]interface{})
	if !isObject {
		return nil
	}

	if tag, ok := obj[TagKey].(string); ok {
		if v, ok := union.VariantFor(tag); ok {
			return v
		}
	}

	for _, variant := range union.Variants {
		if structurallyMatches(obj, variant) {
			return variant
		}
	}
	return nil
}

func structurallyMatches(obj map[string]interface{}, variant *schema.TypeDescriptor) bool {
	for _, f := range variant.Fields {
		if !f.Required || f.Default != nil {
			continue
		}
		if _, present := obj[f.Name]; !present {
			return false
		}
	}
	return true
}
