package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/vicentereig/structprompt/coerce"
	"github.com/vicentereig/structprompt/schema"
)

// outputValidator checks assembled output values against the signature's
// output schema. The schema is compiled once per module.
type outputValidator struct {
	sig      *schema.Signature
	compiled *jsonschema.Schema
}

func newOutputValidator(sig *schema.Signature) (*outputValidator, error) {
	doc, err := json.Marshal(sig.OutputJSONSchema())
	if err != nil {
		return nil, fmt.Errorf("rendering output schema for %s: %w", sig.Name, err)
	}
	compiled, err := jsonschema.CompileString(sig.Name+"_outputs.json", string(doc))
	if err != nil {
		return nil, fmt.Errorf("compiling output schema for %s: %w", sig.Name, err)
	}
	return &outputValidator{sig: sig, compiled: compiled}, nil
}

// assemble turns a raw decoded payload into final output values. Coercion
// runs first so lenient conversions ("42" into an int field), defaults and
// union resolution happen before the schema gate; validation then runs on
// the coerced result, which is what catches degraded unions and anything
// else coercion let pass through.
func (v *outputValidator) assemble(raw map[string]interface{}) (map[string]interface{}, error) {
	coerced, err := coerce.Coerce(raw, v.sig.OutputStruct())
	if err != nil {
		var tce *coerce.TypeCoercionError
		field := ""
		if errors.As(err, &tce) {
			field = tce.Field
		}
		return nil, &InvalidPredictionError{
			Field: field,
			Stage: StageCoercion,
			Cause: err,
		}
	}

	sv, ok := coerced.(*coerce.StructValue)
	if !ok {
		return nil, &InvalidPredictionError{
			Stage: StageCoercion,
			Cause: fmt.Errorf("output payload is not an object"),
		}
	}

	if err := v.compiled.Validate(normalizeInstance(sv)); err != nil {
		return nil, &InvalidPredictionError{
			Field: validationField(err),
			Stage: StageValidation,
			Cause: err,
		}
	}
	return sv.Fields, nil
}

// normalizeInstance round-trips the coerced value through encoding/json so
// the validator sees plain decoded JSON (struct values render as objects).
func normalizeInstance(v interface{}) interface{} {
	doc, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(doc, &out); err != nil {
		return v
	}
	return out
}

// validationField pulls the offending field name out of a validation error's
// instance pointer, when one is present.
func validationField(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return ""
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}
	loc := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if loc == "" {
		// Required-property violations point at the enclosing object; the
		// offending name only appears in the message, quoted.
		if strings.Contains(leaf.Message, "missing propert") {
			if start := strings.IndexByte(leaf.Message, '\''); start != -1 {
				if end := strings.IndexByte(leaf.Message[start+1:], '\''); end != -1 {
					return leaf.Message[start+1 : start+1+end]
				}
			}
		}
		return ""
	}
	if idx := strings.IndexByte(loc, '/'); idx != -1 {
		loc = loc[:idx]
	}
	return loc
}
