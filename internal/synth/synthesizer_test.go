package synth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSynthesize_ShortTextSingleCall(t *testing.T) {
	engine := NewMockEngine()
	s := New(engine)

	input := strings.Repeat("a", 4000)
	data, err := s.Synthesize(context.Background(), input, Voice{Name: "en-US-JennyNeural"}, nil)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if len(data) != 100 {
		t.Errorf("len(data) = %d, want 100", len(data))
	}
	if engine.Calls() != 1 {
		t.Errorf("engine calls = %d, want 1 (short text must bypass chunking)", engine.Calls())
	}
}

func TestSynthesize_LongTextChunksAndCombines(t *testing.T) {
	engine := NewMockEngine()
	engine.SetOutput([]byte{1, 2, 3})
	s := New(engine, WithChunkInterval(time.Millisecond))

	input := strings.Repeat("This is a complete sentence. ", 400) // ~11600 chars

	var progress [][2]int
	data, err := s.Synthesize(context.Background(), input, Voice{Name: "en-US-JennyNeural"}, func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	calls := engine.Calls()
	if calls < 2 {
		t.Fatalf("engine calls = %d, expected chunked synthesis", calls)
	}
	if len(data) != calls*3 {
		t.Errorf("len(data) = %d, want %d (concatenated chunk audio)", len(data), calls*3)
	}
	if len(progress) != calls {
		t.Fatalf("progress callbacks = %d, want %d", len(progress), calls)
	}
	last := progress[len(progress)-1]
	if last[0] != calls || last[1] != calls {
		t.Errorf("final progress = %v, want (%d, %d)", last, calls, calls)
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	s := New(NewMockEngine())
	if _, err := s.Synthesize(context.Background(), "   ", Voice{}, nil); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("Expected ErrEmptyText, got %v", err)
	}
}

func TestSynthesize_EngineErrorWrapped(t *testing.T) {
	engine := NewMockEngine()
	boom := errors.New("backend down")
	engine.Fail(boom)

	_, err := New(engine).Synthesize(context.Background(), "hello", Voice{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Expected wrapped engine error, got %v", err)
	}
	var serr *SynthesisError
	if !errors.As(err, &serr) || serr.Engine != "mock" {
		t.Fatalf("Expected SynthesisError naming the engine, got %v", err)
	}
}

func TestSynthesize_ContextCancelled(t *testing.T) {
	engine := NewMockEngine()
	engine.SetDelay(time.Second)
	s := New(engine)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Synthesize(ctx, "hello", Voice{}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestFallbackEngine_SwitchesAfterFailures(t *testing.T) {
	primary := NewMockEngine()
	primary.Fail(errors.New("primary down"))
	secondary := NewMockEngine()
	secondary.SetOutput([]byte{9})

	f := NewFallbackEngine(primary, secondary, 2)
	ctx := context.Background()

	if _, err := f.Synthesize(ctx, "one", Voice{}); err == nil {
		t.Fatal("Expected first failure to surface")
	}
	data, err := f.Synthesize(ctx, "two", Voice{})
	if err != nil {
		t.Fatalf("Expected fallback to serve second call: %v", err)
	}
	if len(data) != 1 || data[0] != 9 {
		t.Errorf("Unexpected fallback audio: %v", data)
	}

	// Switched: primary must not be called again.
	before := primary.Calls()
	if _, err := f.Synthesize(ctx, "three", Voice{}); err != nil {
		t.Fatalf("Fallback call failed: %v", err)
	}
	if primary.Calls() != before {
		t.Error("Primary engine called after switch to fallback")
	}
}

func TestFallbackEngine_RecoveryResetsCounter(t *testing.T) {
	primary := NewMockEngine()
	secondary := NewMockEngine()
	f := NewFallbackEngine(primary, secondary, 3)
	ctx := context.Background()

	primary.Fail(errors.New("flaky"))
	if _, err := f.Synthesize(ctx, "one", Voice{}); err == nil {
		t.Fatal("Expected failure")
	}
	primary.Fail(nil)
	if _, err := f.Synthesize(ctx, "two", Voice{}); err != nil {
		t.Fatalf("Expected recovery: %v", err)
	}
	if f.Name() != "mock" {
		t.Errorf("Name = %q, want primary engine name", f.Name())
	}
	if secondary.Calls() != 0 {
		t.Errorf("Fallback called %d times despite recovery", secondary.Calls())
	}
}

func TestBuildSSML_EscapesText(t *testing.T) {
	ssml := string(buildSSML(`Tom & Jerry <3 "quotes"`, Voice{Name: "en-US-JennyNeural", Locale: "en-US"}))
	if strings.Contains(ssml, "& ") || strings.Contains(ssml, "<3") {
		t.Errorf("SSML not escaped: %s", ssml)
	}
	for _, want := range []string{"&amp;", "&lt;3", `name='en-US-JennyNeural'`, `xml:lang='en-US'`} {
		if !strings.Contains(ssml, want) {
			t.Errorf("SSML missing %q: %s", want, ssml)
		}
	}
}
