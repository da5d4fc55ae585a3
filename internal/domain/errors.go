package domain

import "fmt"

// Stage errors form a small taxonomy. None of them ever escape the request
// boundary: every caller maps exhausted errors to a default value or a
// user-facing fallback message.

// ConfigurationError means a required credential or setting is absent.
// Retrying cannot help, so the stage is disabled for the request.
type ConfigurationError struct {
	Stage string
	Key   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: missing configuration %s", e.Stage, e.Key)
}

// Permanent marks the error as non-retryable for the gateway.
func (e *ConfigurationError) Permanent() bool { return true }

// UpstreamError is a non-2xx or structurally malformed response from an
// external service. Retried up to the stage's attempt budget.
type UpstreamError struct {
	Stage  string
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: upstream status %d: %s", e.Stage, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: upstream error: %s", e.Stage, e.Detail)
}

// ParseError is a well-formed response whose content is unusable, e.g. a
// non-numeric sentiment reply. Counts as a failed attempt under the retry
// predicate rather than surfacing as a bogus success.
type ParseError struct {
	Stage  string
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unparseable response: %s", e.Stage, e.Detail)
}

// ModelUnavailableError means the prediction model failed after all attempts
// and the snapshot fallback is being (or has been) consulted.
type ModelUnavailableError struct {
	Cause error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("prediction model unavailable: %v", e.Cause)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Cause }
