package synth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials reports that an engine was constructed
	// without the credentials it needs to reach its backend.
	ErrMissingCredentials = errors.New("missing synthesis credentials")

	// ErrEmptyText reports that there was nothing to synthesize.
	ErrEmptyText = errors.New("empty text")
)

// SynthesisError wraps an engine failure with the engine's name.
type SynthesisError struct {
	Engine string
	Err    error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s: %v", e.Engine, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
