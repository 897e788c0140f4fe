package api

import (
	"errors"
	"fmt"
)

// Error kinds mirror the failure taxonomy of the upload pipeline.
// Callers match with errors.Is.
var (
	// ErrValidation marks an input that fails a structural invariant
	// (bad SHA, malformed slug, unknown git service).
	ErrValidation = errors.New("validation error")

	// ErrMissingRequired marks a required field no fallback layer
	// could resolve.
	ErrMissingRequired = errors.New("missing required field")

	// ErrNetwork marks a transport failure after retries were
	// exhausted.
	ErrNetwork = errors.New("network error")

	// ErrBackendRefused marks a 4xx response other than 408/429.
	ErrBackendRefused = errors.New("backend refused request")

	// ErrBackendTransient marks a 5xx/408/429 that kept failing after
	// retries.
	ErrBackendTransient = errors.New("backend transient error")

	// ErrNoArtifacts marks a run where discovery found nothing and
	// the run treats that as fatal.
	ErrNoArtifacts = errors.New("no artifacts found")

	// ErrCancelled marks a user-initiated interruption.
	ErrCancelled = errors.New("cancelled")
)

// PhaseError wraps a terminal failure with the protocol phase that
// produced it.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error { return e.Err }
