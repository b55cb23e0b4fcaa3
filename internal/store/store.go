// Package store persists synthesized audio artifacts.
package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// QueueArtifactTTL is how long queue-produced audio is retained.
	QueueArtifactTTL = 30 * 24 * time.Hour
	// AdhocArtifactTTL is how long one-off synthesis audio is retained.
	AdhocArtifactTTL = 24 * time.Hour
)

// Artifact is a synthesized audio file with its metadata.
type Artifact struct {
	Filename  string    `json:"filename"`
	Data      []byte    `json:"-"`
	Size      int       `json:"size"`
	Voice     string    `json:"voice"`
	Text      string    `json:"text"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewArtifact builds an Artifact for the given title and audio, expiring
// after ttl from now.
func NewArtifact(title string, data []byte, voice, text string, ttl time.Duration) Artifact {
	return Artifact{
		Filename:  SanitizeFilename(title) + ".mp3",
		Data:      data,
		Size:      len(data),
		Voice:     voice,
		Text:      text,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Store persists artifacts for users.
type Store interface {
	// SaveAudioFile writes the artifact under the given user's space,
	// replacing any artifact with the same filename.
	SaveAudioFile(ctx context.Context, userID string, artifact Artifact) error
}

// PersistenceError wraps a storage failure with the operation that
// produced it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

var unsafeFilenameRe = regexp.MustCompile(`[^\w.-]+`)

// SanitizeFilename reduces a title to a safe filename stem: word
// characters, dots and dashes, runs of anything else collapsed to a
// single underscore. An empty result becomes "audio".
func SanitizeFilename(title string) string {
	name := unsafeFilenameRe.ReplaceAllString(strings.TrimSpace(title), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "audio"
	}
	const maxStem = 120
	if len(name) > maxStem {
		name = name[:maxStem]
	}
	return name
}
