package synth

import (
	"context"
	"sync"
	"time"
)

// MockEngine is an Engine for tests and dry runs. It records every
// synthesis call and returns configurable fake audio.
type MockEngine struct {
	mu     sync.Mutex
	delay  time.Duration
	output []byte
	err    error
	texts  []string
	voices []Voice
}

// NewMockEngine creates a mock engine producing 100 bytes of fake audio
// per call with no delay.
func NewMockEngine() *MockEngine {
	return &MockEngine{output: make([]byte, 100)}
}

func (e *MockEngine) Name() string { return "mock" }

// SetDelay makes each call sleep for d before returning.
func (e *MockEngine) SetDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = d
}

// SetOutput sets the audio bytes returned per call.
func (e *MockEngine) SetOutput(data []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.output = data
}

// Fail makes every subsequent call return err. A nil err restores
// normal operation.
func (e *MockEngine) Fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.err = err
}

// Calls returns how many times Synthesize has been invoked.
func (e *MockEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.texts)
}

// Texts returns the text of every call, in order.
func (e *MockEngine) Texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.texts))
	copy(out, e.texts)
	return out
}

// Voices returns the voice of every call, in order.
func (e *MockEngine) Voices() []Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Voice, len(e.voices))
	copy(out, e.voices)
	return out
}

func (e *MockEngine) Synthesize(ctx context.Context, input string, voice Voice) ([]byte, error) {
	e.mu.Lock()
	e.texts = append(e.texts, input)
	e.voices = append(e.voices, voice)
	delay, output, err := e.delay, e.output, e.err
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(output))
	copy(out, output)
	return out, nil
}
