package text

import (
	"strings"
	"testing"
)

func TestChunks_ShortTextSingleChunk(t *testing.T) {
	chunks := Chunks("Hello world. This is a test.", 100)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "Hello world. This is a test." {
		t.Errorf("Unexpected chunk: %q", chunks[0])
	}
}

func TestChunks_SentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence here. Third sentence here."
	maxLen := 45 // fits two sentences at most

	chunks := Chunks(text, maxLen)

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d: %v", len(chunks), chunks)
	}
	for i, c := range chunks {
		if c == "" {
			t.Fatalf("Chunk %d is empty", i)
		}
		if runeLen(c) > maxLen {
			t.Errorf("Chunk %d exceeds max length: %d > %d", i, runeLen(c), maxLen)
		}
	}

	// Concatenation preserves sentence order and content.
	joined := strings.Join(chunks, " ")
	for _, want := range []string{"First sentence here", "Second sentence here", "Third sentence here"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected %q in chunk output, got %q", want, joined)
		}
	}
	if strings.Index(joined, "First") > strings.Index(joined, "Second") ||
		strings.Index(joined, "Second") > strings.Index(joined, "Third") {
		t.Errorf("Sentence order not preserved: %q", joined)
	}
}

func TestChunks_ReappendsPeriod(t *testing.T) {
	chunks := Chunks("Really! Are you sure?", 100)
	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Really. Are you sure." {
		t.Errorf("Expected terminators normalized to periods, got %q", chunks[0])
	}
}

func TestChunks_NoBoundaryFallback(t *testing.T) {
	text := strings.Repeat("a", 20000)
	chunks := Chunks(text, 8000)

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks for 20000 chars at width 8000, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c == "" {
			t.Fatalf("Chunk %d is empty", i)
		}
	}
	if len(chunks[0]) != 8000 || len(chunks[1]) != 8000 || len(chunks[2]) != 4000 {
		t.Errorf("Unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
	if strings.Join(chunks, "") != text {
		t.Error("Fallback slicing dropped or altered content")
	}
}

func TestChunks_OversizedSentence(t *testing.T) {
	text := strings.Repeat("word ", 100) + "end. Short one."
	chunks := Chunks(text, 50)

	for i, c := range chunks {
		if runeLen(c) > 50 {
			t.Errorf("Chunk %d exceeds max length: %d", i, runeLen(c))
		}
		if c == "" {
			t.Errorf("Chunk %d is empty", i)
		}
	}
}

func TestChunks_EmptyInput(t *testing.T) {
	if chunks := Chunks("", 100); chunks != nil {
		t.Errorf("Expected nil for empty input, got %v", chunks)
	}
	if chunks := Chunks("   \n\t ", 100); chunks != nil {
		t.Errorf("Expected nil for blank input, got %v", chunks)
	}
}
