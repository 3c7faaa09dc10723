package schema

// Signature is a named, typed input/output field contract for one logical
// language-model call. Field order is significant: output order drives both
// prompt rendering and sibling-discriminator resolution during coercion.
type Signature struct {
	Name        string
	Description string
	Inputs      []Field
	Outputs     []Field
}

// NewSignature creates a signature with the given name and description.
func NewSignature(name, description string) *Signature {
	return &Signature{Name: name, Description: description}
}

// WithInput appends an input field and returns the signature for chaining.
func (s *Signature) WithInput(f Field) *Signature {
	s.Inputs = append(s.Inputs, f)
	return s
}

// WithOutput appends an output field and returns the signature for chaining.
func (s *Signature) WithOutput(f Field) *Signature {
	s.Outputs = append(s.Outputs, f)
	return s
}

// Input returns the declared input field with the given name.
func (s *Signature) Input(name string) (*Field, bool) {
	return fieldNamed(s.Inputs, name)
}

// Output returns the declared output field with the given name.
func (s *Signature) Output(name string) (*Field, bool) {
	return fieldNamed(s.Outputs, name)
}

func fieldNamed(fields []Field, name string) (*Field, bool) {
	for i := range fields {
		if fields[i].Name == name {
			return &fields[i], true
		}
	}
	return nil, false
}

// InputStruct returns the signature's inputs as an anonymous struct
// descriptor, for validation and coercion of caller-supplied values.
func (s *Signature) InputStruct() *TypeDescriptor {
	return StructOf(s.Name+"Inputs", s.Inputs...)
}

// OutputStruct returns the signature's outputs as an anonymous struct
// descriptor. Coercing a raw extracted object against it applies field
// defaults, drops undeclared keys, and resolves union-typed fields.
func (s *Signature) OutputStruct() *TypeDescriptor {
	return StructOf(s.Name+"Outputs", s.Outputs...)
}

// Clone returns a deep-enough copy of the signature for per-module
// customization (descriptors themselves are immutable once built).
func (s *Signature) Clone() *Signature {
	out := &Signature{Name: s.Name, Description: s.Description}
	out.Inputs = append([]Field(nil), s.Inputs...)
	out.Outputs = append([]Field(nil), s.Outputs...)
	return out
}
