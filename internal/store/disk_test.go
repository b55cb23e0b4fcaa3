package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"How Queues Work", "How_Queues_Work"},
		{"a/b\\c:d*e?f", "a_b_c_d_e_f"},
		{"  spaced  ", "spaced"},
		{"...", "audio"},
		{"", "audio"},
		{"already-safe_name.v2", "already-safe_name.v2"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDiskStore_SaveAndReadBack(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	artifact := NewArtifact("My Video", []byte("mp3-bytes"), "en-US-JennyNeural", "hello", QueueArtifactTTL)
	if err := s.SaveAudioFile(context.Background(), "user-1", artifact); err != nil {
		t.Fatalf("SaveAudioFile failed: %v", err)
	}

	path := s.Path("user-1", artifact)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read saved audio: %v", err)
	}
	if !bytes.Equal(data, []byte("mp3-bytes")) {
		t.Errorf("Saved audio = %q", data)
	}
	if _, err := os.Stat(path + ".json"); err != nil {
		t.Errorf("Metadata sidecar missing: %v", err)
	}
}

func TestDiskStore_SaveReplacesExisting(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	ctx := context.Background()

	first := NewArtifact("Title", []byte("old"), "v", "t", time.Hour)
	second := NewArtifact("Title", []byte("new"), "v", "t", time.Hour)
	if err := s.SaveAudioFile(ctx, "u", first); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAudioFile(ctx, "u", second); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path("u", second))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("Expected replacement, got %q", data)
	}
}

func TestDiskStore_SweepRemovesExpired(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}
	ctx := context.Background()

	fresh := NewArtifact("Fresh", []byte("a"), "v", "t", time.Hour)
	stale := NewArtifact("Stale", []byte("b"), "v", "t", -time.Hour)
	if err := s.SaveAudioFile(ctx, "u", fresh); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveAudioFile(ctx, "u", stale); err != nil {
		t.Fatal(err)
	}

	removed, err := s.Sweep(time.Now())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, err := os.Stat(s.Path("u", stale)); !os.IsNotExist(err) {
		t.Error("Expired artifact still present")
	}
	if _, err := os.Stat(s.Path("u", fresh)); err != nil {
		t.Errorf("Fresh artifact removed: %v", err)
	}
}

func TestDiskStore_CancelledContext(t *testing.T) {
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	artifact := NewArtifact("Title", []byte("x"), "v", "t", time.Hour)
	if err := s.SaveAudioFile(ctx, "u", artifact); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}
