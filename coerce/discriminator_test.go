package coerce

import (
	"testing"

	"github.com/vicentereig/structprompt/schema"
)

func actionUnion() *schema.TypeDescriptor {
	spawn := schema.StructOf("SpawnSubtask",
		schema.Field{Name: "task_description", Type: schema.StringType(), Required: true},
		schema.Field{Name: "priority", Type: schema.IntType(), Required: true, Default: 5},
	)
	cont := schema.StructOf("Continue",
		schema.Field{Name: "summary", Type: schema.StringType(), Required: true},
	)
	return schema.UnionOf(spawn, cont)
}

func TestResolveSiblingToken(t *testing.T) {
	u := actionUnion()
	v := Resolve(map[string]interface{}{"summary": "done"},
		u, Context{SiblingField: "action_type", SiblingToken: "spawn_subtask"})
	if v == nil || v.Name != "SpawnSubtask" {
		t.Fatalf("sibling token should win outright, got %v", v)
	}
}

func TestResolveSiblingBeatsEmbeddedTag(t *testing.T) {
	u := actionUnion()
	obj := map[string]interface{}{
		"_type":   "Continue",
		"summary": "done",
	}
	v := Resolve(obj, u, Context{SiblingToken: "SpawnSubtask"})
	if v == nil || v.Name != "SpawnSubtask" {
		t.Fatalf("sibling discriminator must outrank the embedded tag, got %v", v)
	}
}

func TestResolveEmbeddedTag(t *testing.T) {
	u := actionUnion()
	obj := map[string]interface{}{
		"_type":   "continue",
		"summary": "done",
	}
	v := Resolve(obj, u, Context{})
	if v == nil || v.Name != "Continue" {
		t.Fatalf("embedded tag resolution failed, got %v", v)
	}
}

func TestResolveStructuralMatch(t *testing.T) {
	u := actionUnion()

	v := Resolve(map[string]interface{}{"task_description": "index the corpus"}, u, Context{})
	if v == nil || v.Name != "SpawnSubtask" {
		t.Fatalf("structural match on required fields failed, got %v", v)
	}

	// priority has a default, so its absence does not disqualify the variant.
	v = Resolve(map[string]interface{}{"summary": "all set"}, u, Context{})
	if v == nil || v.Name != "Continue" {
		t.Fatalf("expected Continue, got %v", v)
	}
}

func TestResolveStructuralDeclarationOrderWins(t *testing.T) {
	a := schema.StructOf("First", schema.Field{Name: "x", Type: schema.StringType(), Required: true})
	b := schema.StructOf("Second", schema.Field{Name: "x", Type: schema.StringType(), Required: true})
	u := schema.UnionOf(a, b)

	v := Resolve(map[string]interface{}{"x": "ambiguous"}, u, Context{})
	if v == nil || v.Name != "First" {
		t.Fatalf("declaration order should break structural ties, got %v", v)
	}
}

func TestResolveNoMatch(t *testing.T) {
	u := actionUnion()
	if v := Resolve(map[string]interface{}{"unrelated": true}, u, Context{}); v != nil {
		t.Errorf("expected nil for unmatchable object, got %v", v)
	}
	if v := Resolve("not an object", u, Context{}); v != nil {
		t.Errorf("expected nil for non-object value, got %v", v)
	}
}

// Full pipeline: a struct whose union-typed field is discriminated by the
// immediately preceding enum field.
func agentDecisionType() *schema.TypeDescriptor {
	return schema.StructOf("AgentDecision",
		schema.Field{Name: "reasoning", Type: schema.StringType(), Required: true},
		schema.Field{Name: "action_type", Type: schema.EnumOf("spawn_subtask", "continue"), Required: true},
		schema.Field{Name: "action", Type: actionUnion(), Required: true},
	)
}

func TestCoerceUnionViaSiblingDiscriminator(t *testing.T) {
	got, err := Coerce(map[string]interface{}{
		"reasoning":   "needs a subtask",
		"action_type": "spawn_subtask",
		"action": map[string]interface{}{
			"task_description": "summarize the report",
		},
	}, agentDecisionType())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sv := got.(*StructValue)
	action, _ := sv.Get("action")
	variant := action.(*StructValue)
	if variant.TypeName != "SpawnSubtask" {
		t.Fatalf("variant = %s", variant.TypeName)
	}
	if v, _ := variant.Get("priority"); v != 5 {
		t.Errorf("variant default not applied: priority = %v", v)
	}
}

func TestCoerceUnionViaEmbeddedTag(t *testing.T) {
	d := schema.StructOf("Wrapper",
		schema.Field{Name: "action", Type: actionUnion(), Required: true},
	)
	got, err := Coerce(map[string]interface{}{
		"action": map[string]interface{}{
			"_type":   "Continue",
			"summary": "wrapping up",
		},
	}, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sv := got.(*StructValue)
	variant := sv.Fields["action"].(*StructValue)
	if variant.TypeName != "Continue" {
		t.Fatalf("variant = %s", variant.TypeName)
	}
	if variant.Has("_type") {
		t.Error("tag key must be stripped from the coerced variant")
	}
}

func TestCoerceUnionGracefulDegradation(t *testing.T) {
	d := schema.StructOf("Wrapper",
		schema.Field{Name: "action", Type: actionUnion(), Required: true},
	)
	raw := map[string]interface{}{"unmatchable": true}
	got, err := Coerce(map[string]interface{}{"action": raw}, d)
	if err != nil {
		t.Fatalf("union mismatch must not error: %v", err)
	}
	sv := got.(*StructValue)
	action := sv.Fields["action"].(map[string]interface{})
	if action["unmatchable"] != true {
		t.Errorf("raw value should pass through unchanged, got %v", action)
	}
}

func TestSiblingContextRequiresStringOrEnumType(t *testing.T) {
	// The preceding field is an int, so no sibling discrimination applies;
	// the embedded tag decides instead.
	d := schema.StructOf("Wrapper",
		schema.Field{Name: "count", Type: schema.IntType(), Required: true},
		schema.Field{Name: "action", Type: actionUnion(), Required: true},
	)
	got, err := Coerce(map[string]interface{}{
		"count": 1,
		"action": map[string]interface{}{
			"_type":            "spawn_subtask",
			"task_description": "work",
		},
	}, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sv := got.(*StructValue)
	variant := sv.Fields["action"].(*StructValue)
	if variant.TypeName != "SpawnSubtask" {
		t.Errorf("variant = %s", variant.TypeName)
	}
}
