// Package synth coordinates text-to-speech synthesis across engines.
package synth

import "context"

// Voice identifies a synthesis voice.
type Voice struct {
	// Name is the engine-specific voice identifier,
	// e.g. "en-US-JennyNeural".
	Name string
	// Locale is the BCP 47 tag for the voice, e.g. "en-US".
	Locale string
}

// Engine converts text to encoded audio.
type Engine interface {
	// Name identifies the engine in logs and errors.
	Name() string
	// Synthesize returns encoded audio for the given text. The returned
	// bytes are a complete, playable unit in the engine's output format.
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}
