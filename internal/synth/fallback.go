package synth

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// FallbackEngine wraps a primary engine with automatic fallback to a
// secondary engine when the primary fails consistently.
type FallbackEngine struct {
	mu            sync.Mutex
	primary       Engine
	fallback      Engine
	failures      int
	maxFailures   int
	usingFallback bool
}

// NewFallbackEngine creates an engine that switches to fallback after
// maxFailures consecutive primary failures.
func NewFallbackEngine(primary, fallback Engine, maxFailures int) *FallbackEngine {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &FallbackEngine{
		primary:     primary,
		fallback:    fallback,
		maxFailures: maxFailures,
	}
}

func (f *FallbackEngine) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.usingFallback {
		return f.fallback.Name()
	}
	return f.primary.Name()
}

func (f *FallbackEngine) Synthesize(ctx context.Context, input string, voice Voice) ([]byte, error) {
	f.mu.Lock()
	useFallback := f.usingFallback
	f.mu.Unlock()

	if useFallback {
		return f.fallback.Synthesize(ctx, input, voice)
	}

	data, err := f.primary.Synthesize(ctx, input, voice)
	if err == nil {
		f.mu.Lock()
		if f.failures > 0 {
			log.Info("Primary engine recovered", "engine", f.primary.Name(), "failures", f.failures)
			f.failures = 0
		}
		f.mu.Unlock()
		return data, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	f.mu.Lock()
	f.failures++
	failures := f.failures
	switchNow := failures >= f.maxFailures
	if switchNow {
		f.usingFallback = true
	}
	f.mu.Unlock()

	log.Warn("Primary engine failed", "engine", f.primary.Name(), "attempt", failures, "max", f.maxFailures, "error", err)
	if !switchNow {
		return nil, err
	}

	log.Warn("Switching to fallback engine", "fallback", f.fallback.Name())
	data, fbErr := f.fallback.Synthesize(ctx, input, voice)
	if fbErr != nil {
		return nil, fmt.Errorf("both engines failed: primary=%v, fallback=%v", err, fbErr)
	}
	return data, nil
}

// Reset returns the engine to the primary and clears the failure count.
func (f *FallbackEngine) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = 0
	f.usingFallback = false
	log.Info("Reset to primary engine", "engine", f.primary.Name())
}
