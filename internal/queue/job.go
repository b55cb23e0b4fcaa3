// Package queue holds transcript jobs and processes them into audio.
package queue

import (
	"time"

	"github.com/dgnsrekt/narrator/internal/store"
)

// Status is a job's position in its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Job is one transcript queued for synthesis.
type Job struct {
	ID    string
	Title string
	// Transcript is the text that will be synthesized. It may differ
	// from OriginalTranscript after edits.
	Transcript         string
	OriginalTitle      string
	OriginalTranscript string
	// Language is the requested language name or ISO code.
	Language string
	// Voice and VoiceLocale identify the synthesis voice, resolved once
	// at enqueue time.
	Voice       string
	VoiceLocale string
	// Modifications records user edits applied before processing,
	// e.g. "trimmed intro".
	Modifications []string
	Status        Status
	// Progress is 0-100. Milestones mark processing phases.
	Progress    int
	Error       string
	CreatedAt   time.Time
	ProcessedAt time.Time
	// Audio is set once the job completes.
	Audio     *store.Artifact
	SourceURL string
	UserID    string
}

// clone returns a copy safe to hand to observers. Slices and the
// artifact pointer are duplicated so callers cannot mutate queue state.
func (j *Job) clone() Job {
	out := *j
	if j.Modifications != nil {
		out.Modifications = append([]string(nil), j.Modifications...)
	}
	if j.Audio != nil {
		audio := *j.Audio
		out.Audio = &audio
	}
	return out
}

// Stats summarizes the queue by status.
type Stats struct {
	Total      int
	Pending    int
	Processing int
	Completed  int
	Failed     int
}

// Snapshot is the queue state delivered to observers after every
// mutation.
type Snapshot struct {
	Jobs  []Job
	Stats Stats
}
