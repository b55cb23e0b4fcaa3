package synth

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/narrator/internal/audio"
	"github.com/dgnsrekt/narrator/internal/text"
)

// ProgressFunc reports chunked synthesis progress as chunks complete.
type ProgressFunc func(done, total int)

// Synthesizer drives an Engine, splitting long texts into chunks and
// recombining the resulting audio. Texts at or under the short-text
// limit go through in a single engine call.
type Synthesizer struct {
	engine        Engine
	shortLimit    int
	chunkSize     int
	chunkInterval time.Duration
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithShortTextLimit sets the length at or below which text is
// synthesized in a single call.
func WithShortTextLimit(n int) Option {
	return func(s *Synthesizer) { s.shortLimit = n }
}

// WithChunkSize sets the maximum chunk length for long texts.
func WithChunkSize(n int) Option {
	return func(s *Synthesizer) { s.chunkSize = n }
}

// WithChunkInterval sets the minimum delay between chunk requests.
func WithChunkInterval(d time.Duration) Option {
	return func(s *Synthesizer) { s.chunkInterval = d }
}

// New creates a Synthesizer over the given engine.
func New(engine Engine, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		engine:        engine,
		shortLimit:    text.ShortTextLimit,
		chunkSize:     text.DefaultChunkSize,
		chunkInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize converts text to audio. onProgress may be nil; when set it
// is called after each completed chunk with (done, total). Short texts
// report a single (1, 1) completion.
func (s *Synthesizer) Synthesize(ctx context.Context, input string, voice Voice, onProgress ProgressFunc) ([]byte, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyText
	}

	if len([]rune(input)) <= s.shortLimit {
		data, err := s.engine.Synthesize(ctx, input, voice)
		if err != nil {
			return nil, &SynthesisError{Engine: s.engine.Name(), Err: err}
		}
		if onProgress != nil {
			onProgress(1, 1)
		}
		return data, nil
	}

	chunks := text.Chunks(input, s.chunkSize)
	log.Debug("Synthesizing in chunks", "engine", s.engine.Name(), "chunks", len(chunks), "voice", voice.Name)

	// Burst of one keeps the first chunk immediate while spacing the
	// rest at the configured interval.
	limiter := rate.NewLimiter(rate.Every(s.chunkInterval), 1)

	buffers := make([][]byte, 0, len(chunks))
	for i, chunk := range chunks {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		data, err := s.engine.Synthesize(ctx, chunk, voice)
		if err != nil {
			return nil, &SynthesisError{Engine: s.engine.Name(), Err: err}
		}
		buffers = append(buffers, data)

		if onProgress != nil {
			onProgress(i+1, len(chunks))
		}
	}

	return audio.Combine(buffers), nil
}
