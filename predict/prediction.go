package predict

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/vicentereig/structprompt/llm"
)

// Validation stages, recorded on InvalidPredictionError so callers can tell
// a malformed model payload apart from a contract violation.
const (
	StageInput      = "input_validation"
	StageParse      = "parse"
	StageValidation = "schema_validation"
	StageCoercion   = "coercion"
)

// Prediction is one completed structured-output call: the coerced output
// values plus everything needed to account for how they were obtained.
type Prediction struct {
	ID       string
	Values   map[string]interface{}
	Usage    llm.Usage
	Strategy string
	Attempts int
	Metadata map[string]interface{}
}

func newPrediction() *Prediction {
	return &Prediction{
		ID:       "pred_" + uuid.NewString(),
		Values:   make(map[string]interface{}),
		Metadata: make(map[string]interface{}),
	}
}

// Get returns an output value by field name.
func (p *Prediction) Get(name string) (interface{}, bool) {
	v, ok := p.Values[name]
	return v, ok
}

// GetString returns a string-typed output value by field name.
func (p *Prediction) GetString(name string) (string, bool) {
	v, ok := p.Values[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetInt returns an int-typed output value by field name.
func (p *Prediction) GetInt(name string) (int, bool) {
	v, ok := p.Values[name]
	if !ok {
		return 0, false
	}
	i, ok := v.(int)
	return i, ok
}

// GetBool returns a bool-typed output value by field name.
func (p *Prediction) GetBool(name string) (bool, bool) {
	v, ok := p.Values[name]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// InvalidPredictionError reports that a model payload (or caller input)
// failed validation or coercion against the signature contract.
type InvalidPredictionError struct {
	Field    string
	Stage    string
	Strategy string
	Attempt  int
	Cause    error
}

func (e *InvalidPredictionError) Error() string {
	msg := fmt.Sprintf("invalid prediction (stage=%s", e.Stage)
	if e.Field != "" {
		msg += fmt.Sprintf(", field=%s", e.Field)
	}
	if e.Strategy != "" {
		msg += fmt.Sprintf(", strategy=%s", e.Strategy)
	}
	msg += ")"
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *InvalidPredictionError) Unwrap() error {
	return e.Cause
}
