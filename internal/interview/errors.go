package interview

import "errors"

// Error taxonomy. Validation errors are caller mistakes and never mutate
// a session; provider errors wrap the upstream cause.
var (
	// ErrNotFound is returned when a job id or session id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrEmptyAnswer is returned when a submitted answer is empty after
	// trimming surrounding whitespace.
	ErrEmptyAnswer = errors.New("answer cannot be empty")

	// ErrAlreadyComplete is returned when an operation requires an active
	// session but the session has completed.
	ErrAlreadyComplete = errors.New("interview is already complete")

	// ErrNotComplete is returned when evaluation is requested for a
	// session that has not completed.
	ErrNotComplete = errors.New("interview is not complete")
)

// ProviderError wraps a question-provider failure. The session is left
// unmodified when one of these is returned.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return "question provider: " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
