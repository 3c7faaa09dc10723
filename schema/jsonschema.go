package schema

// JSONSchema renders a descriptor as a JSON Schema fragment suitable both for
// provider-native structured output constraints and for instance validation.
//
// Struct schemas deliberately allow additional properties: discriminator/tag
// fields ride along in transport and are stripped during coercion, not
// rejected at the schema gate.
func JSONSchema(d *TypeDescriptor) map[string]interface{} {
	switch d.Kind {
	case KindString:
		return map[string]interface{}{"type": "string"}
	case KindInt:
		return map[string]interface{}{"type": "integer"}
	case KindFloat:
		return map[string]interface{}{"type": "number"}
	case KindBool:
		return map[string]interface{}{"type": "boolean"}
	case KindAny:
		return map[string]interface{}{}
	case KindArray:
		return map[string]interface{}{
			"type":  "array",
			"items": JSONSchema(d.Elem),
		}
	case KindMap:
		return map[string]interface{}{
			"type":                 "object",
			"additionalProperties": JSONSchema(d.Elem),
		}
	case KindEnum:
		tokens := make([]interface{}, len(d.Values))
		for i, v := range d.Values {
			tokens[i] = v
		}
		return map[string]interface{}{"type": "string", "enum": tokens}
	case KindStruct:
		return structSchema(d)
	case KindUnion:
		variants := make([]interface{}, len(d.Variants))
		for i, v := range d.Variants {
			variants[i] = structSchema(v)
		}
		return map[string]interface{}{"anyOf": variants}
	case KindNilable:
		return map[string]interface{}{
			"anyOf": []interface{}{
				JSONSchema(d.Elem),
				map[string]interface{}{"type": "null"},
			},
		}
	default:
		return map[string]interface{}{}
	}
}

func structSchema(d *TypeDescriptor) map[string]interface{} {
	properties := make(map[string]interface{}, len(d.Fields))
	var required []interface{}
	for _, f := range d.Fields {
		properties[f.Name] = fieldSchema(f)
		// Fields with defaults are satisfiable when absent.
		if f.Required && f.Default == nil {
			required = append(required, f.Name)
		}
	}
	out := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if d.Name != "" {
		out["title"] = d.Name
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func fieldSchema(f Field) map[string]interface{} {
	s := JSONSchema(f.Type)
	if f.Description != "" {
		// Copy before annotating so shared descriptors stay pristine.
		annotated := make(map[string]interface{}, len(s)+1)
		for k, v := range s {
			annotated[k] = v
		}
		annotated["description"] = f.Description
		return annotated
	}
	return s
}

// OutputJSONSchema renders the signature's output contract as a complete
// JSON Schema object.
func (s *Signature) OutputJSONSchema() map[string]interface{} {
	return JSONSchema(s.OutputStruct())
}
