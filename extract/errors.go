package extract

import "fmt"

// ExtractionError reports that a strategy could not produce parseable JSON
// from a response: either ExtractJSON found nothing JSON-shaped, or the
// extracted string failed to decode. Retryable under the handler's normal
// per-strategy policy.
type ExtractionError struct {
	Strategy string
	Message  string
	Cause    error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed (strategy=%s): %s: %v", e.Strategy, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed (strategy=%s): %s", e.Strategy, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// AllStrategiesExhausted is raised when the fallback chain is fully consumed
// without a success. It preserves the last underlying error for diagnostics.
type AllStrategiesExhausted struct {
	Attempts int
	LastErr  error
}

func (e *AllStrategiesExhausted) Error() string {
	if e.LastErr != nil {
		return fmt.Sprintf("all extraction strategies exhausted after %d attempts: %v", e.Attempts, e.LastErr)
	}
	return fmt.Sprintf("all extraction strategies exhausted after %d attempts", e.Attempts)
}

func (e *AllStrategiesExhausted) Unwrap() error {
	return e.LastErr
}
