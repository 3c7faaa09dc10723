package schema

import "testing"

func sampleSignature() *Signature {
	return NewSignature("ExtractContact", "Extract contact details from text.").
		WithInput(Field{Name: "text", Type: StringType(), Required: true}).
		WithOutput(Field{Name: "name", Type: StringType(), Required: true}).
		WithOutput(Field{Name: "age", Type: IntType()})
}

func TestSignatureLookup(t *testing.T) {
	sig := sampleSignature()

	in, ok := sig.Input("text")
	if !ok || in.Type.Kind != KindString {
		t.Fatalf("Input(text) = %+v, %v", in, ok)
	}
	out, ok := sig.Output("age")
	if !ok || out.Type.Kind != KindInt {
		t.Fatalf("Output(age) = %+v, %v", out, ok)
	}
	if _, ok := sig.Output("missing"); ok {
		t.Error("expected no match for undeclared output")
	}
}

func TestSignatureStructDescriptors(t *testing.T) {
	sig := sampleSignature()

	in := sig.InputStruct()
	if in.Kind != KindStruct || in.Name != "ExtractContactInputs" {
		t.Errorf("InputStruct = %s %s", in.Kind, in.Name)
	}
	out := sig.OutputStruct()
	if out.Name != "ExtractContactOutputs" || len(out.Fields) != 2 {
		t.Errorf("OutputStruct = %s with %d fields", out.Name, len(out.Fields))
	}
}

func TestSignatureClone(t *testing.T) {
	sig := sampleSignature()
	clone := sig.Clone()
	clone.WithOutput(Field{Name: "email", Type: StringType()})

	if len(sig.Outputs) != 2 {
		t.Errorf("clone mutation leaked into original: %d outputs", len(sig.Outputs))
	}
	if len(clone.Outputs) != 3 {
		t.Errorf("expected 3 outputs on clone, got %d", len(clone.Outputs))
	}
}
